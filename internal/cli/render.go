package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/claude/repcoach/internal/models"
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Width(10)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

var stateColors = map[models.SessionState]lipgloss.Color{
	models.StateIdle:    "240",
	models.StatePending: "214",
	models.StateActive:  "42",
	models.StateResting: "39",
	models.StatePaused:  "214",
	models.StateStopped: "196",
}

func stateBadge(st models.SessionState) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(stateColors[st]).
		Render(strings.ToUpper(string(st)))
}

func row(label, value string) string {
	return labelStyle.Render(label) + value
}

// renderStatus formats a session snapshot as a small block of labelled lines.
func renderStatus(st models.Status) string {
	lines := []string{stateBadge(st.State)}
	if st.Plan == "" {
		lines[0] += mutedStyle.Render("  no session")
		return strings.Join(lines, "\n")
	}
	lines[0] += "  " + titleStyle.Render(st.Plan) + mutedStyle.Render("  "+shortID(st.SessionID))

	if st.ExerciseName != "" {
		set := "set " + strconv.Itoa(st.Set)
		if st.TotalSets > 0 {
			set += " of " + strconv.Itoa(st.TotalSets)
		}
		lines = append(lines, row("Exercise", st.ExerciseName+"  "+countStyle.Render(set)))
	}
	if st.Side != models.SideNone {
		lines = append(lines, row("Side", string(st.Side)))
	}
	if st.WeightKg != nil {
		lines = append(lines, row("Weight", strconv.FormatFloat(*st.WeightKg, 'f', -1, 64)+" kg"))
	}
	if st.AwaitingInput != "" {
		lines = append(lines, row("Waiting", st.AwaitingInput))
	}
	for _, t := range st.Timers {
		v := fmt.Sprintf("%s  %.0fs / %.0fs  (%.0fs left)", t.Kind, t.ElapsedSeconds, t.DurationSeconds, t.RemainingSeconds)
		if t.Paused {
			v += mutedStyle.Render("  paused")
		}
		lines = append(lines, row("Timer", v))
	}
	if st.LastMessage != "" {
		lines = append(lines, row("Said", mutedStyle.Render(st.LastMessage)))
	}
	return strings.Join(lines, "\n")
}

func renderPlans(w io.Writer, plans []models.Plan) {
	if len(plans) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No plans loaded"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d plan(s)", len(plans))))
	for _, p := range plans {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render(p.Name)+mutedStyle.Render("  "+string(p.Kind)))
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		for _, ex := range p.Exercises {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t\n", ex.Label(), countStyle.Render(strconv.Itoa(p.SetCount(ex))+"x"), exerciseTarget(ex))
		}
		_ = tw.Flush()
	}
}

func exerciseTarget(ex models.Exercise) string {
	var s string
	switch ex.Mode() {
	case models.ModeRepBased:
		s = strconv.Itoa(*ex.Reps) + " reps"
	case models.ModeTimedHold:
		s = strconv.FormatFloat(*ex.DurationSeconds, 'f', -1, 64) + "s hold"
	default:
		return mutedStyle.Render("invalid")
	}
	if ex.PerSide {
		s += " per side"
	}
	if ex.Weighted {
		s += ", weighted"
	}
	return s
}

func renderHistory(w io.Writer, sessions []models.SessionSummary) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No finished sessions"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d session(s)", len(sessions))))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "ID\tPlan\tStatus\tSets\tSkipped\tReps\tVolume\tFinished\t")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t\n",
			shortID(s.SessionID),
			s.PlanName,
			s.Status,
			s.SetsCompleted,
			s.SetsSkipped,
			s.TotalReps,
			strconv.FormatFloat(s.VolumeKg, 'f', -1, 64)+" kg",
			formatWhen(s.FinishedAt),
		)
	}
	_ = tw.Flush()
}

func renderSets(w io.Writer, sets []models.SessionSetRow) {
	if len(sets) == 0 {
		fmt.Fprintln(w, headerStyle.Render("No sets recorded"))
		return
	}
	fmt.Fprintln(w, headerStyle.Render(sets[0].PlanName+"  "+sets[0].SessionID))
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Exercise\tSet\tResult\t")
	for _, s := range sets {
		fmt.Fprintf(tw, "%s\t%d\t%s\t\n", s.ExerciseID, s.SetNumber, setResult(s))
	}
	_ = tw.Flush()
}

func setResult(s models.SessionSetRow) string {
	if s.Skipped {
		return "skipped"
	}
	var parts []string
	if s.Reps != nil {
		parts = append(parts, strconv.Itoa(*s.Reps)+" reps")
	}
	if s.WeightKg != nil {
		parts = append(parts, "@ "+strconv.FormatFloat(*s.WeightKg, 'f', -1, 64)+" kg")
	}
	if s.DurationSeconds > 0 {
		parts = append(parts, strconv.FormatFloat(s.DurationSeconds, 'f', 0, 64)+"s")
	}
	if len(parts) == 0 {
		return "done"
	}
	return strings.Join(parts, " ")
}

func renderStats(w io.Writer, days int, st models.HistoryStats) {
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("Last %d days", days)))
	fmt.Fprintln(w, row("Sessions", countStyle.Render(strconv.FormatInt(st.Sessions, 10))+
		mutedStyle.Render(fmt.Sprintf("  (%d completed)", st.SessionsCompleted))))
	fmt.Fprintln(w, row("Sets", strconv.FormatInt(st.Sets, 10)))
	fmt.Fprintln(w, row("Reps", strconv.FormatInt(st.Reps, 10)))
	fmt.Fprintln(w, row("Holds", (time.Duration(st.HoldSeconds)*time.Second).String()))
	if st.LastSession != nil {
		fmt.Fprintln(w, row("Last", formatWhen(*st.LastSession)))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatWhen(t time.Time) string {
	t = t.Local()
	diff := time.Since(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}
