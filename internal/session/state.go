package session

import (
	"github.com/studyhall/studyhall/internal/api"
)

// Status is the lifecycle state of a session.
type Status int

const (
	// StatusActive — serving items, accepting submissions.
	StatusActive Status = iota
	// StatusAwaitingConfirmation — backend reported completion with
	// needs_confirmation; the learner must confirm or decline before the
	// score is committed.
	StatusAwaitingConfirmation
	// StatusComplete — score committed. Terminal.
	StatusComplete
	// StatusAbandoned — learner left through the guard without finishing.
	// Terminal.
	StatusAbandoned
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusAwaitingConfirmation:
		return "awaiting-confirmation"
	case StatusComplete:
		return "complete"
	case StatusAbandoned:
		return "abandoned"
	}
	return "unknown"
}

// PendingCompletion holds a completion the learner has not yet accepted.
// It exists only between "server says complete" and confirm/decline.
type PendingCompletion struct {
	PercentageScore float64
	Passed          bool
}

// State is the client-held, server-confirmed session. Exactly one State is
// live per activity screen; nothing here is shared across screens.
type State struct {
	SessionID    string
	Activity     api.ActivityType
	SubjectID    string
	TotalItems   int
	CurrentIndex int
	Score        int

	// CurrentItem is the item at CurrentIndex (nil while awaiting one).
	CurrentItem *api.Item

	// Posts is the running debate transcript, when the activity has one.
	Posts []api.Post

	// NextAction mirrors the backend's latest instruction; polling runs
	// only while this is NextActionAwaitResponse.
	NextAction api.NextAction

	// Pending is set only in StatusAwaitingConfirmation.
	Pending *PendingCompletion

	// AttemptsOnItem counts rejected submissions for the current item.
	AttemptsOnItem int

	// IsResuming is true when the bootstrap call resumed an earlier
	// attempt; the screen shows a transient notice for it.
	IsResuming bool

	status Status

	// resolved records the accepted score delta per item ordinal. The
	// running Score must always equal the sum of these deltas plus the
	// resumed baseline. Items the backend marked permanently failed are
	// tracked in failed instead and stay eligible for a retake.
	resolved map[int]int
	failed   map[int]bool

	// resumedScore is the score carried over by a resumed session; it was
	// earned by accepted submissions in a previous mount.
	resumedScore int
}

// NewState seeds a State from a normalized bootstrap payload.
func NewState(s api.Session) *State {
	st := &State{
		SessionID:    s.ID,
		Activity:     s.Activity,
		SubjectID:    s.SubjectID,
		TotalItems:   s.TotalItems,
		CurrentIndex: s.CurrentIndex,
		Score:        s.Score,
		CurrentItem:  s.Item,
		Posts:        s.Posts,
		NextAction:   s.NextAction,
		IsResuming:   s.IsResuming,
		status:       StatusActive,
		resolved:     make(map[int]int),
		failed:       make(map[int]bool),
		resumedScore: s.Score,
	}
	// Items below the resumed cursor were settled in the previous mount;
	// mark them resolved so the cursor and finish-early logic see them.
	for i := 0; i < s.CurrentIndex && i < s.TotalItems; i++ {
		st.resolved[i] = 0
	}
	return st
}

// Status returns the session lifecycle state.
func (st *State) Status() Status { return st.status }

// GuardActive reports whether leaving the session must be confirmed.
// The guard drops once the session reaches a terminal state.
func (st *State) GuardActive() bool {
	return st.status == StatusActive || st.status == StatusAwaitingConfirmation
}

// ResolvedCount returns the number of items with an accepted submission.
func (st *State) ResolvedCount() int { return len(st.resolved) }

// FinishEarlyAllowed reports whether the finish-early command is available:
// at least one item must be resolved.
func (st *State) FinishEarlyAllowed() bool {
	return st.status == StatusActive && len(st.resolved) >= 1
}

// firstUnresolved returns the lowest ordinal with no accepted submission,
// or TotalItems when every item is resolved.
func (st *State) firstUnresolved() int {
	for i := 0; i < st.TotalItems; i++ {
		if _, ok := st.resolved[i]; !ok {
			return i
		}
	}
	return st.TotalItems
}

// LedgerTotal returns the resumed baseline plus the sum of all accepted
// score deltas. It must equal Score at every point before confirmation.
func (st *State) LedgerTotal() int {
	total := st.resumedScore
	for _, d := range st.resolved {
		total += d
	}
	return total
}
