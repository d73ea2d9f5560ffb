package store

import (
	"context"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestJournal_AppendAndList(t *testing.T) {
	ctx := context.Background()
	j := testStore(t).Journal()

	events := []SessionEventData{
		{SessionID: "s-1", Activity: "vocab", SubjectID: "unit-3", Action: "start"},
		{SessionID: "s-1", Activity: "vocab", SubjectID: "unit-3", Action: "confirmed",
			Score: 40, TotalItems: 5, ItemsResolved: 5, Percentage: 80, Passed: true},
		{SessionID: "s-2", Activity: "debate", SubjectID: "tablets", Action: "abandoned",
			Score: 10, TotalItems: 3, ItemsResolved: 1},
	}
	for _, e := range events {
		if err := j.AppendSessionEvent(ctx, e); err != nil {
			t.Fatalf("AppendSessionEvent(%s): %v", e.Action, err)
		}
	}

	attempts, err := j.RecentAttempts(ctx, 10)
	if err != nil {
		t.Fatalf("RecentAttempts: %v", err)
	}
	// "start" events are bookkeeping, not attempts.
	if len(attempts) != 2 {
		t.Fatalf("got %d attempts, want 2: %+v", len(attempts), attempts)
	}

	byID := make(map[string]AttemptSummary)
	for _, a := range attempts {
		byID[a.SessionID] = a
	}
	confirmed := byID["s-1"]
	if confirmed.Action != "confirmed" || !confirmed.Passed || confirmed.Score != 40 {
		t.Errorf("s-1 = %+v", confirmed)
	}
	if confirmed.Percentage != 80 {
		t.Errorf("s-1 percentage = %v, want 80", confirmed.Percentage)
	}
	abandoned := byID["s-2"]
	if abandoned.Action != "abandoned" || abandoned.Passed {
		t.Errorf("s-2 = %+v", abandoned)
	}
}

func TestJournal_Limit(t *testing.T) {
	ctx := context.Background()
	j := testStore(t).Journal()

	for i := 0; i < 5; i++ {
		if err := j.AppendSessionEvent(ctx, SessionEventData{
			SessionID: "s", Activity: "vocab", SubjectID: "u", Action: "confirmed",
		}); err != nil {
			t.Fatal(err)
		}
	}

	attempts, err := j.RecentAttempts(ctx, 3)
	if err != nil {
		t.Fatalf("RecentAttempts: %v", err)
	}
	if len(attempts) != 3 {
		t.Errorf("got %d attempts, want limit of 3", len(attempts))
	}
}

func TestJournal_SubmissionEvents(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)

	if err := st.Journal().AppendSubmissionEvent(ctx, SubmissionEventData{
		SessionID: "s-1", RequestID: "r-1", ItemOrdinal: 2, Outcome: "accepted", Points: 10,
	}); err != nil {
		t.Fatalf("AppendSubmissionEvent: %v", err)
	}

	var outcome string
	var points int
	row := st.DB().QueryRowContext(ctx,
		"SELECT outcome, points FROM submission_events WHERE session_id = 's-1'")
	if err := row.Scan(&outcome, &points); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if outcome != "accepted" || points != 10 {
		t.Errorf("stored outcome/points = %q/%d", outcome, points)
	}
}
