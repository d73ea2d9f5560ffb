package api

import "context"

// ActivityType identifies which practice flow a session belongs to.
type ActivityType string

const (
	ActivityVocab      ActivityType = "vocab"
	ActivityConceptMap ActivityType = "conceptmap"
	ActivityDebate     ActivityType = "debate"
)

// NextAction tells the client what the backend expects next.
type NextAction string

const (
	// NextActionNone means the client drives the session normally.
	NextActionNone NextAction = ""
	// NextActionAwaitResponse means the backend is computing an asynchronous
	// response (e.g. an opponent turn) and the client should poll progress.
	NextActionAwaitResponse NextAction = "await_response"
)

// Item is a single question, word, or debate turn within a session.
// Immutable once fetched; owned by the session that requested it.
type Item struct {
	ID         string
	Ordinal    int
	Prompt     string
	Choices    []string
	Difficulty string
}

// Post is one entry in a debate transcript.
type Post struct {
	Author string
	Text   string
}

// Session is the canonical bootstrap payload, normalized from whatever
// field spelling the backend used.
type Session struct {
	ID           string
	Activity     ActivityType
	SubjectID    string
	TotalItems   int
	CurrentIndex int
	Score        int
	IsResuming   bool
	Item         *Item
	NextAction   NextAction
	Posts        []Post
}

// SubmissionResult is the canonical response to a submit call. It is
// consumed once to update session state and then discarded.
type SubmissionResult struct {
	Correct           bool
	PointsEarned      int
	TotalScore        int
	Feedback          string
	IsComplete        bool
	NeedsConfirmation bool
	PercentageScore   float64
	Passed            bool
	NeedsRegeneration bool
	AttemptsExhausted bool
	NextItem          *Item
	NextAction        NextAction
	Posts             []Post
}

// FinishEarlyResult is the canonical response to a finish-early call.
type FinishEarlyResult struct {
	Success         bool
	Passed          bool
	FinalScore      int
	ItemsCompleted  int
	PercentageScore float64
}

// Submission is the answer payload sent to the backend. RequestID is a
// client-generated idempotency key.
type Submission struct {
	RequestID string `json:"request_id"`
	ItemID    string `json:"item_id"`
	Ordinal   int    `json:"ordinal"`
	Response  string `json:"response"`
	Position  string `json:"position,omitempty"`
}

// Service is the backend boundary consumed by the session controller.
// Implementations must be safe for use from a single session at a time;
// callers guarantee at most one in-flight submission per session.
type Service interface {
	StartOrResume(ctx context.Context, activity ActivityType, subjectID string) (Session, error)
	Submit(ctx context.Context, sessionID string, sub Submission) (SubmissionResult, error)
	ConfirmCompletion(ctx context.Context, sessionID string) (FinishEarlyResult, error)
	DeclineCompletion(ctx context.Context, sessionID string) (Session, error)
	FinishEarly(ctx context.Context, sessionID string) (FinishEarlyResult, error)
	Progress(ctx context.Context, sessionID string) (Session, error)
}
