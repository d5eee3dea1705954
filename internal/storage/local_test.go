package storage

import (
	"context"
	"testing"
	"time"

	"github.com/claude/repcoach/internal/models"
)

func openTestLocal(t *testing.T) *LocalDB {
	t.Helper()
	db, err := OpenLocal(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// TestLocalRoundTrip verifies sets and logs come back with optional fields
// intact and summaries add up.
func TestLocalRoundTrip(t *testing.T) {
	db := openTestLocal(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)

	sets := []models.SessionSetRow{
		{SessionID: "s1", PlanName: "legs", ExerciseID: "squat", SetNumber: 1, Reps: intPtr(8), WeightKg: floatPtr(60), CompletedAt: base},
		{SessionID: "s1", PlanName: "legs", ExerciseID: "squat", SetNumber: 2, Reps: intPtr(6), WeightKg: floatPtr(60), CompletedAt: base.Add(2 * time.Minute)},
		{SessionID: "s1", PlanName: "legs", ExerciseID: "plank", SetNumber: 1, DurationSeconds: 30, Skipped: true, CompletedAt: base.Add(4 * time.Minute)},
	}
	for _, s := range sets {
		if err := db.InsertSessionSet(ctx, s); err != nil {
			t.Fatalf("insert set: %v", err)
		}
	}
	log := models.SessionLogRow{SessionID: "s1", PlanName: "legs", Status: "completed", FinishedAt: base.Add(5 * time.Minute)}
	if err := db.InsertSessionLog(ctx, log); err != nil {
		t.Fatalf("insert log: %v", err)
	}
	// A second log for the same session is ignored.
	log.Status = "stopped"
	if err := db.InsertSessionLog(ctx, log); err != nil {
		t.Fatalf("insert duplicate log: %v", err)
	}

	got, err := db.SessionSets(ctx, "s1")
	if err != nil {
		t.Fatalf("query sets: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("sets = %d, want 3", len(got))
	}
	if got[0].Reps == nil || *got[0].Reps != 8 || got[0].WeightKg == nil || *got[0].WeightKg != 60 {
		t.Errorf("first set = %+v", got[0])
	}
	if got[2].Reps != nil || !got[2].Skipped || got[2].DurationSeconds != 30 {
		t.Errorf("skipped set = %+v", got[2])
	}
	if !got[1].CompletedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("completed_at = %s", got[1].CompletedAt)
	}

	summaries, err := db.RecentSessions(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	s := summaries[0]
	if s.Status != "completed" || s.SetsCompleted != 2 || s.SetsSkipped != 1 || s.TotalReps != 14 || s.VolumeKg != 840 {
		t.Errorf("summary = %+v", s)
	}
}

// TestLocalStats verifies totals respect the since bound and skip skipped
// sets.
func TestLocalStats(t *testing.T) {
	db := openTestLocal(t)
	ctx := context.Background()
	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	rows := []models.SessionSetRow{
		{SessionID: "a", PlanName: "p", ExerciseID: "x", SetNumber: 1, Reps: intPtr(10), CompletedAt: old},
		{SessionID: "b", PlanName: "p", ExerciseID: "x", SetNumber: 1, Reps: intPtr(5), CompletedAt: recent},
		{SessionID: "b", PlanName: "p", ExerciseID: "h", SetNumber: 1, DurationSeconds: 45, CompletedAt: recent},
		{SessionID: "b", PlanName: "p", ExerciseID: "h", SetNumber: 2, DurationSeconds: 45, Skipped: true, CompletedAt: recent},
	}
	for _, r := range rows {
		if err := db.InsertSessionSet(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	db.InsertSessionLog(ctx, models.SessionLogRow{SessionID: "a", PlanName: "p", Status: "completed", FinishedAt: old})
	db.InsertSessionLog(ctx, models.SessionLogRow{SessionID: "b", PlanName: "p", Status: "stopped", FinishedAt: recent})

	stats, err := db.Stats(ctx, recent.Add(-time.Hour))
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Sessions != 1 || stats.SessionsCompleted != 0 {
		t.Errorf("sessions = %d/%d", stats.Sessions, stats.SessionsCompleted)
	}
	if stats.Sets != 2 || stats.Reps != 5 || stats.HoldSeconds != 45 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LastSession == nil || !stats.LastSession.Equal(recent) {
		t.Errorf("last session = %v", stats.LastSession)
	}
}

// TestLocalStatsEmpty verifies an empty database reports zeros, not errors.
func TestLocalStatsEmpty(t *testing.T) {
	db := openTestLocal(t)
	stats, err := db.Stats(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Sessions != 0 || stats.LastSession != nil {
		t.Errorf("stats = %+v", stats)
	}
}

// TestOpenLocalReopens verifies data survives closing and reopening.
func TestOpenLocalReopens(t *testing.T) {
	dir := t.TempDir()
	db, err := OpenLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := db.InsertSessionLog(ctx, models.SessionLogRow{SessionID: "x", PlanName: "p", Status: "completed", FinishedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = OpenLocal(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	got, err := db.RecentSessions(ctx, 5)
	if err != nil || len(got) != 1 {
		t.Errorf("after reopen: %v, %v", got, err)
	}
}
