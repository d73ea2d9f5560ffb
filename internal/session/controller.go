package session

import (
	"errors"
	"fmt"

	"github.com/studyhall/studyhall/internal/api"
)

// Outcome classifies what a submission response did to the session.
type Outcome int

const (
	// OutcomeAccepted — answer recorded, cursor advanced.
	OutcomeAccepted Outcome = iota
	// OutcomeRejected — answer below threshold; same item, another attempt.
	OutcomeRejected
	// OutcomeExhausted — retry policy spent; item marked failed, cursor
	// advanced without points.
	OutcomeExhausted
	// OutcomeNeedsRegeneration — backend wants the item replaced; same
	// ordinal, new content.
	OutcomeNeedsRegeneration
	// OutcomeAwaitingConfirmation — session complete, gate entered.
	OutcomeAwaitingConfirmation
	// OutcomeComplete — session complete and committed, no gate.
	OutcomeComplete
	// OutcomeAwaitResponse — backend is computing asynchronously; poll.
	OutcomeAwaitResponse
)

// ErrNotActive is returned when an operation requires an active session.
var ErrNotActive = errors.New("session is not active")

// ErrNotAwaiting is returned when confirm/decline is attempted without a
// pending completion.
var ErrNotAwaiting = errors.New("no completion awaiting confirmation")

// ErrResync indicates the cursor would pass the last item without the
// backend reporting completion. Local state can no longer be trusted; the
// caller should re-bootstrap.
var ErrResync = errors.New("no more items but session not complete, resync required")

// ErrFinishEarlyUnavailable is returned when finish-early is requested
// before any item has been resolved.
var ErrFinishEarlyUnavailable = errors.New("finish early requires at least one completed item")

// Policy is the per-activity retry configuration. The backend owns the
// real rule; MaxAttempts == 0 defers to it entirely.
type Policy struct {
	MaxAttempts int
	MinWords    int
	MaxWords    int
}

// ApplyResult folds a submission response into the state and classifies it.
// Every score change goes through the resolved ledger so the running score
// invariant stays checkable.
func ApplyResult(st *State, res api.SubmissionResult, policy Policy) (Outcome, error) {
	if st.status != StatusActive {
		return 0, fmt.Errorf("apply result in %s: %w", st.status, ErrNotActive)
	}

	if len(res.Posts) > 0 {
		st.Posts = res.Posts
	}

	if res.NextAction == api.NextActionAwaitResponse {
		st.NextAction = api.NextActionAwaitResponse
		return OutcomeAwaitResponse, nil
	}
	st.NextAction = api.NextActionNone

	if res.NeedsRegeneration {
		if res.NextItem != nil {
			st.CurrentItem = res.NextItem
			st.CurrentItem.Ordinal = st.CurrentIndex
		} else {
			st.CurrentItem = nil
		}
		return OutcomeNeedsRegeneration, nil
	}

	if res.IsComplete {
		if res.Correct {
			st.accept(res.PointsEarned)
		}
		if res.NeedsConfirmation {
			st.status = StatusAwaitingConfirmation
			st.Pending = &PendingCompletion{
				PercentageScore: res.PercentageScore,
				Passed:          res.Passed,
			}
			return OutcomeAwaitingConfirmation, nil
		}
		st.status = StatusComplete
		return OutcomeComplete, nil
	}

	if res.Correct {
		st.accept(res.PointsEarned)
		return OutcomeAccepted, st.advance(res.NextItem)
	}

	// Rejected. Same index is retried until the backend or the configured
	// policy marks the item failed.
	st.AttemptsOnItem++
	exhausted := res.AttemptsExhausted ||
		(policy.MaxAttempts > 0 && st.AttemptsOnItem >= policy.MaxAttempts)
	if exhausted {
		st.failed[st.CurrentIndex] = true
		st.AttemptsOnItem = 0
		return OutcomeExhausted, st.advance(res.NextItem)
	}
	return OutcomeRejected, nil
}

// accept records the delta for the current item. Already-resolved ordinals
// are not double-counted; a retried session only pays for new items.
func (st *State) accept(delta int) {
	if _, done := st.resolved[st.CurrentIndex]; done {
		return
	}
	st.resolved[st.CurrentIndex] = delta
	delete(st.failed, st.CurrentIndex)
	st.Score += delta
	st.AttemptsOnItem = 0
}

// advance moves the cursor forward. Passing the last item without a
// completion report is an error condition, not a silent wrap.
func (st *State) advance(next *api.Item) error {
	if st.CurrentIndex >= st.TotalItems-1 {
		st.CurrentItem = nil
		return ErrResync
	}
	st.CurrentIndex++
	// During a retake, ordinals resolved before the decline are skipped.
	for st.CurrentIndex < st.TotalItems-1 {
		if _, done := st.resolved[st.CurrentIndex]; !done {
			break
		}
		st.CurrentIndex++
	}
	st.CurrentItem = next
	if st.CurrentItem != nil && st.CurrentItem.Ordinal == 0 {
		st.CurrentItem.Ordinal = st.CurrentIndex
	}
	return nil
}

// Confirm commits the pending completion. The session becomes terminal and
// the navigation guard drops.
func Confirm(st *State) (PendingCompletion, error) {
	if st.status != StatusAwaitingConfirmation || st.Pending == nil {
		return PendingCompletion{}, ErrNotAwaiting
	}
	committed := *st.Pending
	st.Pending = nil
	st.status = StatusComplete
	return committed, nil
}

// Decline discards the pending completion and reopens the session at the
// first unresolved item. Accepted deltas are preserved so a retake never
// double-counts earlier items.
func Decline(st *State, reopened api.Session) error {
	if st.status != StatusAwaitingConfirmation || st.Pending == nil {
		return ErrNotAwaiting
	}
	st.Pending = nil
	st.status = StatusActive
	st.AttemptsOnItem = 0

	idx := st.firstUnresolved()
	if idx >= st.TotalItems {
		// Everything resolved; retake resumes at the declined item.
		idx = st.CurrentIndex
	}
	st.CurrentIndex = idx
	st.CurrentItem = reopened.Item
	if st.CurrentItem != nil {
		st.CurrentItem.Ordinal = idx
	}
	return nil
}

// ApplyFinishEarly commits a finish-early result: remaining items are
// skipped and the partial score becomes final.
func ApplyFinishEarly(st *State, res api.FinishEarlyResult) error {
	if !st.FinishEarlyAllowed() {
		if st.status != StatusActive {
			return ErrNotActive
		}
		return ErrFinishEarlyUnavailable
	}
	st.Score = res.FinalScore
	st.Pending = nil
	st.status = StatusComplete
	return nil
}

// ApplyProgress folds a polled progress payload into the state. It returns
// true when the awaited response has arrived and polling should stop.
func ApplyProgress(st *State, s api.Session) bool {
	if len(s.Posts) > 0 {
		st.Posts = s.Posts
	}
	if s.NextAction == api.NextActionAwaitResponse {
		return false
	}
	st.NextAction = api.NextActionNone
	if s.Item != nil {
		st.CurrentItem = s.Item
		if s.CurrentIndex >= st.CurrentIndex {
			st.CurrentIndex = s.CurrentIndex
		}
	}
	return true
}

// Abandon marks the session terminal after the learner leaves through the
// guard. In-flight requests are not cancelled; their results are simply no
// longer observed.
func Abandon(st *State) {
	if st.status == StatusActive || st.status == StatusAwaitingConfirmation {
		st.status = StatusAbandoned
		st.Pending = nil
	}
}
