// Package plans loads workout and routine definitions from YAML.
package plans

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/claude/repcoach/internal/models"
)

type file struct {
	Plans []models.Plan `yaml:"plans"`
}

// Catalog is the set of plans available to start. Plans are validated when a
// session starts, not at load, so one bad entry does not hide the rest.
type Catalog struct {
	plans []models.Plan
	index map[string]int
}

// Load reads a plans file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plans file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML. Duplicate names are an error.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing plans file: %w", err)
	}
	c := &Catalog{plans: f.Plans, index: make(map[string]int, len(f.Plans))}
	for i, p := range f.Plans {
		key := normalize(p.Name)
		if key == "" {
			return nil, fmt.Errorf("plan %d has no name", i+1)
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate plan %q", p.Name)
		}
		c.index[key] = i
	}
	return c, nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Plan returns a copy of the named plan. Lookup ignores case.
func (c *Catalog) Plan(name string) (*models.Plan, bool) {
	i, ok := c.index[normalize(name)]
	if !ok {
		return nil, false
	}
	p := c.plans[i]
	p.Exercises = append([]models.Exercise(nil), p.Exercises...)
	return &p, true
}

// List returns every plan in file order.
func (c *Catalog) List() []models.Plan {
	return append([]models.Plan(nil), c.plans...)
}

// Problems validates every plan and returns the errors keyed by plan name.
func (c *Catalog) Problems() map[string]error {
	out := make(map[string]error)
	for i := range c.plans {
		if err := c.plans[i].Validate(); err != nil {
			out[c.plans[i].Name] = err
		}
	}
	return out
}
