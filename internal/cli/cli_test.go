package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/claude/repcoach/internal/models"
)

func writeTestJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// run executes the command tree against server and returns stdout.
func run(t *testing.T, server string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--server", server, "--api-key", "k"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func intPtr(v int) *int { return &v }

// TestSayJoinsWords verifies multi-word utterances arrive as one text.
func TestSayJoinsWords(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/utterances" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		got = body["text"]
		writeTestJSON(t, w, http.StatusAccepted, map[string]string{"status": "queued"})
	}))
	defer ts.Close()

	if _, err := run(t, ts.URL, "say", "20", "kilos"); err != nil {
		t.Fatal(err)
	}
	if got != "20 kilos" {
		t.Errorf("text = %q, want %q", got, "20 kilos")
	}
}

// TestStartShowsDaemonError verifies the daemon's rejection reaches the user.
func TestStartShowsDaemonError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, http.StatusNotFound, map[string]string{"error": "unknown plan: legs"})
	}))
	defer ts.Close()

	_, err := run(t, ts.URL, "start", "legs")
	if err == nil || !strings.Contains(err.Error(), "unknown plan: legs") {
		t.Errorf("err = %v, want unknown plan", err)
	}
}

// TestStatusRendersSession verifies the status block carries the exercise,
// set and timer.
func TestStatusRendersSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, http.StatusOK, models.Status{
			State:        models.StateResting,
			SessionID:    "0123456789abcdef",
			Plan:         "morning core",
			ExerciseName: "Plank",
			Set:          1,
			TotalSets:    3,
			Timers:       []models.TimerStatus{{Kind: "rest", DurationSeconds: 60, ElapsedSeconds: 15, RemainingSeconds: 45}},
		})
	}))
	defer ts.Close()

	out, err := run(t, ts.URL, "status")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"RESTING", "morning core", "01234567", "Plank", "set 1 of 3", "rest", "45s left"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestStatusIdle verifies an idle daemon is reported without session details.
func TestStatusIdle(t *testing.T) {
	out := renderStatus(models.Status{State: models.StateIdle})
	if !strings.Contains(out, "IDLE") || !strings.Contains(out, "no session") {
		t.Errorf("output = %q", out)
	}
}

// TestPlansListing verifies each exercise line shows sets and target.
func TestPlansListing(t *testing.T) {
	hold := 30.0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(t, w, http.StatusOK, []models.Plan{{
			Name: "core",
			Kind: models.KindWorkout,
			Exercises: []models.Exercise{
				{ID: "pushup", Name: "Push-up", Sets: 3, Reps: intPtr(10)},
				{ID: "side_plank", Sets: 2, DurationSeconds: &hold, PerSide: true},
			},
		}})
	}))
	defer ts.Close()

	out, err := run(t, ts.URL, "plans")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"core", "Push-up", "3x", "10 reps", "side plank", "30s hold per side"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestHistoryCommands verifies the session list and the per-session view.
func TestHistoryCommands(t *testing.T) {
	weight := 20.0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/history":
			if got := r.URL.Query().Get("limit"); got != "2" {
				t.Errorf("limit = %q, want 2", got)
			}
			writeTestJSON(t, w, http.StatusOK, []models.SessionSummary{{
				SessionLogRow: models.SessionLogRow{SessionID: "abcdef0123", PlanName: "strength", Status: "completed", FinishedAt: time.Now()},
				SetsCompleted: 6,
				TotalReps:     48,
				VolumeKg:      960,
			}})
		case "/api/v1/history/abcdef0123":
			writeTestJSON(t, w, http.StatusOK, []models.SessionSetRow{
				{SessionID: "abcdef0123", PlanName: "strength", ExerciseID: "squat", SetNumber: 1, Reps: intPtr(8), WeightKg: &weight},
				{SessionID: "abcdef0123", PlanName: "strength", ExerciseID: "squat", SetNumber: 2, Skipped: true},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer ts.Close()

	out, err := run(t, ts.URL, "history", "-n", "2")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"abcdef01", "strength", "completed", "48", "960 kg"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, ts.URL, "history", "abcdef0123")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"squat", "8 reps @ 20 kg", "skipped"} {
		if !strings.Contains(out, want) {
			t.Errorf("sets missing %q:\n%s", want, out)
		}
	}
}

// TestStatsRejectsZeroDays verifies the window flag is validated locally.
func TestStatsRejectsZeroDays(t *testing.T) {
	if _, err := run(t, "http://127.0.0.1:1", "stats", "--days", "0"); err == nil {
		t.Error("expected error for --days 0")
	}
}

// TestStreamURL verifies http and https map onto ws and wss.
func TestStreamURL(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"http://localhost:8080/", "ws://localhost:8080/api/v1/status/stream", false},
		{"https://repcoach.tail.ts.net", "wss://repcoach.tail.ts.net/api/v1/status/stream", false},
		{"localhost:8080", "", true},
	}
	for _, tt := range tests {
		got, err := streamURL(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("streamURL(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("streamURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestFollowStatus verifies each pushed status is printed until the daemon
// closes the stream.
func TestFollowStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(models.Status{State: models.StatePending, Plan: "core"})
		_ = conn.WriteJSON(models.Status{State: models.StateActive, Plan: "core"})
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var out bytes.Buffer
	if err := followStatus(ctx, ts.URL, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "PENDING") || !strings.Contains(out.String(), "ACTIVE") {
		t.Errorf("output = %s", out.String())
	}
}
