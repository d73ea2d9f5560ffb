package activity

import (
	"github.com/studyhall/studyhall/internal/api"
)

// bootstrapDoneMsg is sent when the start-or-resume call finishes.
type bootstrapDoneMsg struct {
	Session api.Session
	Err     error
}

// resumeNoticeExpiredMsg hides the "continuing previous session" banner.
type resumeNoticeExpiredMsg struct{}

// submitDoneMsg is sent when a submission round-trip finishes.
type submitDoneMsg struct {
	Result api.SubmissionResult
	Err    error
}

// confirmDoneMsg is sent when the pending completion was committed.
type confirmDoneMsg struct {
	Result api.FinishEarlyResult
	Err    error
}

// declineDoneMsg is sent when the pending completion was discarded and the
// session reopened.
type declineDoneMsg struct {
	Session api.Session
	Err     error
}

// finishEarlyDoneMsg is sent when the finish-early call finishes.
type finishEarlyDoneMsg struct {
	Result api.FinishEarlyResult
	Err    error
}

// progressMsg carries one polled progress payload while awaiting an
// asynchronous backend response.
type progressMsg struct {
	Session api.Session
	Err     error
}

// refreshDoneMsg is sent when the one-shot item refresh after a
// regeneration finishes.
type refreshDoneMsg struct {
	Session api.Session
	Err     error
}
