package session

import (
	"errors"
	"testing"

	"github.com/studyhall/studyhall/internal/api"
)

func testSession(total int) api.Session {
	return api.Session{
		ID:         "sess-1",
		Activity:   api.ActivityVocab,
		SubjectID:  "unit-3",
		TotalItems: total,
		Item:       &api.Item{ID: "item-0", Prompt: "first"},
	}
}

func acceptedResult(points int, next *api.Item) api.SubmissionResult {
	return api.SubmissionResult{Correct: true, PointsEarned: points, NextItem: next}
}

func TestApplyResult_AcceptAdvances(t *testing.T) {
	st := NewState(testSession(3))

	out, err := ApplyResult(st, acceptedResult(10, &api.Item{ID: "item-1"}), Policy{})
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if out != OutcomeAccepted {
		t.Errorf("outcome = %v, want OutcomeAccepted", out)
	}
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", st.CurrentIndex)
	}
	if st.Score != 10 {
		t.Errorf("Score = %d, want 10", st.Score)
	}
	if st.CurrentItem == nil || st.CurrentItem.ID != "item-1" {
		t.Errorf("CurrentItem = %+v, want item-1", st.CurrentItem)
	}
}

func TestApplyResult_RejectHoldsCursor(t *testing.T) {
	st := NewState(testSession(3))

	out, err := ApplyResult(st, api.SubmissionResult{Correct: false, Feedback: "nope"}, Policy{})
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if out != OutcomeRejected {
		t.Errorf("outcome = %v, want OutcomeRejected", out)
	}
	if st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0 (retry same item)", st.CurrentIndex)
	}
	if st.Score != 0 {
		t.Errorf("Score = %d, want 0", st.Score)
	}
	if st.AttemptsOnItem != 1 {
		t.Errorf("AttemptsOnItem = %d, want 1", st.AttemptsOnItem)
	}
}

func TestApplyResult_PolicyExhaustsAttempts(t *testing.T) {
	st := NewState(testSession(3))
	policy := Policy{MaxAttempts: 2}

	if out, _ := ApplyResult(st, api.SubmissionResult{}, policy); out != OutcomeRejected {
		t.Fatalf("first reject: outcome = %v, want OutcomeRejected", out)
	}
	out, err := ApplyResult(st, api.SubmissionResult{NextItem: &api.Item{ID: "item-1"}}, policy)
	if err != nil {
		t.Fatalf("second reject: %v", err)
	}
	if out != OutcomeExhausted {
		t.Errorf("outcome = %v, want OutcomeExhausted", out)
	}
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1 (advance without points)", st.CurrentIndex)
	}
	if st.Score != 0 {
		t.Errorf("Score = %d, want 0", st.Score)
	}
}

func TestApplyResult_ServerExhaustsAttempts(t *testing.T) {
	// The backend can force-settle an item regardless of the local policy.
	st := NewState(testSession(3))

	out, err := ApplyResult(st, api.SubmissionResult{
		AttemptsExhausted: true,
		NextItem:          &api.Item{ID: "item-1"},
	}, Policy{MaxAttempts: 5})
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if out != OutcomeExhausted {
		t.Errorf("outcome = %v, want OutcomeExhausted", out)
	}
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1", st.CurrentIndex)
	}
}

func TestApplyResult_Regeneration(t *testing.T) {
	st := NewState(testSession(3))

	out, err := ApplyResult(st, api.SubmissionResult{
		NeedsRegeneration: true,
		NextItem:          &api.Item{ID: "item-0b", Prompt: "fresh"},
	}, Policy{})
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if out != OutcomeNeedsRegeneration {
		t.Errorf("outcome = %v, want OutcomeNeedsRegeneration", out)
	}
	if st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0 (same ordinal)", st.CurrentIndex)
	}
	if st.CurrentItem == nil || st.CurrentItem.ID != "item-0b" {
		t.Errorf("CurrentItem = %+v, want replacement item", st.CurrentItem)
	}
	if st.Score != 0 {
		t.Errorf("Score = %d, want 0 (regeneration never scores)", st.Score)
	}
}

func TestApplyResult_AwaitResponse(t *testing.T) {
	st := NewState(testSession(3))

	out, err := ApplyResult(st, api.SubmissionResult{
		Correct:    true,
		NextAction: api.NextActionAwaitResponse,
		Posts:      []api.Post{{Author: "you", Text: "hi"}},
	}, Policy{})
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if out != OutcomeAwaitResponse {
		t.Errorf("outcome = %v, want OutcomeAwaitResponse", out)
	}
	if st.NextAction != api.NextActionAwaitResponse {
		t.Errorf("NextAction = %q, want await_response", st.NextAction)
	}
	if len(st.Posts) != 1 {
		t.Errorf("Posts = %d entries, want 1", len(st.Posts))
	}
	if st.Score != 0 {
		t.Errorf("Score = %d, want 0 (no accept while awaiting)", st.Score)
	}
}

func TestApplyResult_CompletionGate(t *testing.T) {
	st := NewState(testSession(1))

	out, err := ApplyResult(st, api.SubmissionResult{
		Correct:           true,
		PointsEarned:      10,
		IsComplete:        true,
		NeedsConfirmation: true,
		PercentageScore:   100,
		Passed:            true,
	}, Policy{})
	if err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if out != OutcomeAwaitingConfirmation {
		t.Errorf("outcome = %v, want OutcomeAwaitingConfirmation", out)
	}
	if st.Status() != StatusAwaitingConfirmation {
		t.Errorf("Status = %v, want StatusAwaitingConfirmation", st.Status())
	}
	if st.Pending == nil || !st.Pending.Passed {
		t.Errorf("Pending = %+v, want passed pending completion", st.Pending)
	}
	if !st.GuardActive() {
		t.Error("leave guard must stay up while awaiting confirmation")
	}
}

func TestApplyResult_GateBlocksFurtherSubmissions(t *testing.T) {
	st := NewState(testSession(1))
	if _, err := ApplyResult(st, api.SubmissionResult{
		Correct: true, IsComplete: true, NeedsConfirmation: true,
	}, Policy{}); err != nil {
		t.Fatalf("reach gate: %v", err)
	}

	_, err := ApplyResult(st, acceptedResult(10, nil), Policy{})
	if !errors.Is(err, ErrNotActive) {
		t.Errorf("err = %v, want ErrNotActive", err)
	}
}

func TestConfirm_CommitsAndDropsGuard(t *testing.T) {
	st := NewState(testSession(1))
	if _, err := ApplyResult(st, api.SubmissionResult{
		Correct: true, PointsEarned: 10, IsComplete: true,
		NeedsConfirmation: true, PercentageScore: 100, Passed: true,
	}, Policy{}); err != nil {
		t.Fatalf("reach gate: %v", err)
	}

	committed, err := Confirm(st)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if !committed.Passed || committed.PercentageScore != 100 {
		t.Errorf("committed = %+v, want passed 100%%", committed)
	}
	if st.Status() != StatusComplete {
		t.Errorf("Status = %v, want StatusComplete", st.Status())
	}
	if st.GuardActive() {
		t.Error("leave guard must drop after confirmation")
	}
	if _, err := Confirm(st); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("second Confirm err = %v, want ErrNotAwaiting", err)
	}
}

func TestConfirm_WithoutPending(t *testing.T) {
	st := NewState(testSession(3))
	if _, err := Confirm(st); !errors.Is(err, ErrNotAwaiting) {
		t.Errorf("err = %v, want ErrNotAwaiting", err)
	}
}

func TestDecline_ReopensAtFirstUnresolved(t *testing.T) {
	// 3 items: resolve 0, exhaust 1, resolve 2 → gate at 2/3. Declining
	// must reopen at ordinal 1, keeping the 20 earned points.
	st := NewState(testSession(3))
	policy := Policy{MaxAttempts: 1}

	mustApply(t, st, acceptedResult(10, &api.Item{ID: "item-1"}), policy)
	mustApply(t, st, api.SubmissionResult{NextItem: &api.Item{ID: "item-2"}}, policy)
	out, err := ApplyResult(st, api.SubmissionResult{
		Correct: true, PointsEarned: 10, IsComplete: true,
		NeedsConfirmation: true, PercentageScore: 66.7,
	}, policy)
	if err != nil || out != OutcomeAwaitingConfirmation {
		t.Fatalf("reach gate: out=%v err=%v", out, err)
	}

	reopened := testSession(3)
	reopened.Item = &api.Item{ID: "item-1b", Prompt: "retake"}
	if err := Decline(st, reopened); err != nil {
		t.Fatalf("Decline: %v", err)
	}

	if st.Status() != StatusActive {
		t.Errorf("Status = %v, want StatusActive", st.Status())
	}
	if st.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d, want 1 (first unresolved)", st.CurrentIndex)
	}
	if st.Score != 20 {
		t.Errorf("Score = %d, want 20 (earned points preserved)", st.Score)
	}

	// Accepting the retaken item must not double-count the others.
	mustApply(t, st, acceptedResult(10, nil), policy)
	if st.Score != 30 {
		t.Errorf("Score = %d, want 30 after retake", st.Score)
	}
}

func TestScoreLedgerInvariant(t *testing.T) {
	st := NewState(testSession(4))
	policy := Policy{MaxAttempts: 2}

	steps := []api.SubmissionResult{
		{Correct: true, PointsEarned: 10, NextItem: &api.Item{ID: "i1"}},
		{}, // reject
		{Correct: true, PointsEarned: 5, NextItem: &api.Item{ID: "i2"}},
		{}, // reject
		{NextItem: &api.Item{ID: "i3"}}, // exhausted
		{Correct: true, PointsEarned: 10, IsComplete: true, NeedsConfirmation: true},
	}
	for i, res := range steps {
		if _, err := ApplyResult(st, res, policy); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if st.Score != st.LedgerTotal() {
			t.Fatalf("step %d: Score = %d, ledger = %d", i, st.Score, st.LedgerTotal())
		}
	}
	if st.Score != 25 {
		t.Errorf("Score = %d, want 25", st.Score)
	}
}

func TestNewState_ResumeKeepsScoreBaseline(t *testing.T) {
	s := testSession(10)
	s.CurrentIndex = 4
	s.Score = 40
	s.IsResuming = true

	st := NewState(s)
	if st.Score != 40 {
		t.Errorf("Score = %d, want 40", st.Score)
	}
	if st.LedgerTotal() != 40 {
		t.Errorf("LedgerTotal = %d, want 40 (resumed baseline)", st.LedgerTotal())
	}
	if st.ResolvedCount() != 4 {
		t.Errorf("ResolvedCount = %d, want 4 (items before the cursor)", st.ResolvedCount())
	}

	// New points stack on the baseline.
	if _, err := ApplyResult(st, acceptedResult(10, &api.Item{ID: "i5"}), Policy{}); err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
	if st.Score != 50 || st.LedgerTotal() != 50 {
		t.Errorf("Score = %d, ledger = %d, want 50/50", st.Score, st.LedgerTotal())
	}
}

func TestAdvance_PastEndRequiresResync(t *testing.T) {
	st := NewState(testSession(1))

	_, err := ApplyResult(st, acceptedResult(10, nil), Policy{})
	if !errors.Is(err, ErrResync) {
		t.Errorf("err = %v, want ErrResync", err)
	}
}

func TestFinishEarly(t *testing.T) {
	st := NewState(testSession(5))

	if st.FinishEarlyAllowed() {
		t.Error("finish early must be unavailable before any item resolves")
	}
	if err := ApplyFinishEarly(st, api.FinishEarlyResult{}); !errors.Is(err, ErrFinishEarlyUnavailable) {
		t.Errorf("err = %v, want ErrFinishEarlyUnavailable", err)
	}

	mustApply(t, st, acceptedResult(10, &api.Item{ID: "i1"}), Policy{})
	if !st.FinishEarlyAllowed() {
		t.Error("finish early must be available after one resolved item")
	}

	if err := ApplyFinishEarly(st, api.FinishEarlyResult{
		Success: true, FinalScore: 10, ItemsCompleted: 1, PercentageScore: 20,
	}); err != nil {
		t.Fatalf("ApplyFinishEarly: %v", err)
	}
	if st.Status() != StatusComplete {
		t.Errorf("Status = %v, want StatusComplete", st.Status())
	}
	if st.GuardActive() {
		t.Error("leave guard must drop after finishing early")
	}
}

func TestApplyProgress(t *testing.T) {
	st := NewState(testSession(3))
	st.NextAction = api.NextActionAwaitResponse

	still := api.Session{ID: "sess-1", TotalItems: 3, NextAction: api.NextActionAwaitResponse}
	if ApplyProgress(st, still) {
		t.Error("ApplyProgress = true while backend still computing, want false")
	}

	ready := api.Session{
		ID: "sess-1", TotalItems: 3, CurrentIndex: 1,
		Item:  &api.Item{ID: "item-1", Prompt: "next turn"},
		Posts: []api.Post{{Author: "opponent", Text: "counterpoint"}},
	}
	if !ApplyProgress(st, ready) {
		t.Error("ApplyProgress = false with response ready, want true")
	}
	if st.NextAction != api.NextActionNone {
		t.Errorf("NextAction = %q, want none", st.NextAction)
	}
	if st.CurrentIndex != 1 || st.CurrentItem == nil || st.CurrentItem.ID != "item-1" {
		t.Errorf("cursor = %d item = %+v, want index 1 item-1", st.CurrentIndex, st.CurrentItem)
	}
	if len(st.Posts) != 1 {
		t.Errorf("Posts = %d entries, want 1", len(st.Posts))
	}
}

func TestAbandon(t *testing.T) {
	st := NewState(testSession(3))
	Abandon(st)
	if st.Status() != StatusAbandoned {
		t.Errorf("Status = %v, want StatusAbandoned", st.Status())
	}
	if st.GuardActive() {
		t.Error("leave guard must drop after abandoning")
	}
	if _, err := ApplyResult(st, acceptedResult(10, nil), Policy{}); !errors.Is(err, ErrNotActive) {
		t.Errorf("err = %v, want ErrNotActive", err)
	}
}

func mustApply(t *testing.T, st *State, res api.SubmissionResult, policy Policy) {
	t.Helper()
	if _, err := ApplyResult(st, res, policy); err != nil {
		t.Fatalf("ApplyResult: %v", err)
	}
}
