package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"

	"github.com/studyhall/studyhall/internal/api"
	"github.com/studyhall/studyhall/internal/poll"
	"github.com/studyhall/studyhall/internal/router"
	"github.com/studyhall/studyhall/internal/screen"
	"github.com/studyhall/studyhall/internal/screens/results"
	sess "github.com/studyhall/studyhall/internal/session"
	"github.com/studyhall/studyhall/internal/store"
	"github.com/studyhall/studyhall/internal/ui/components"
	"github.com/studyhall/studyhall/internal/ui/layout"
)

// resumeNoticeDuration is how long the "continuing previous session"
// banner stays up.
const resumeNoticeDuration = 3 * time.Second

// Screen drives one activity session against the backend: bootstrap,
// submissions, the completion confirmation gate, the leave guard, and the
// await-response poll. It owns exactly one session.
type Screen struct {
	svc       api.Service
	journal   store.Journal
	activity  api.ActivityType
	subjectID string
	policy    sess.Policy
	pollEvery time.Duration

	state *sess.State
	input components.TextInput

	// submitting serializes submissions: a second submit while one is in
	// flight is ignored, never queued.
	submitting bool

	resumeNotice     bool
	showLeaveConfirm bool
	awaiting         bool
	resyncNeeded     bool
	refreshNeeded    bool

	position  string
	fieldErrs []sess.FieldError
	feedback  string
	goodNews  bool

	errMsg       string
	errRetryable bool

	// pendingSub is the last submission sent; retries resend it with the
	// same request id so the backend's dedupe prevents double-grading.
	pendingSub    *api.Submission
	lastRequestID string

	poller *poll.Poller
	pollCh chan progressMsg
}

var _ screen.Screen = (*Screen)(nil)
var _ screen.KeyHintProvider = (*Screen)(nil)
var _ screen.StatusProvider = (*Screen)(nil)
var _ screen.LeaveGuard = (*Screen)(nil)
var _ screen.Teardown = (*Screen)(nil)

// New creates an activity screen with injected dependencies.
func New(svc api.Service, journal store.Journal, activity api.ActivityType, subjectID string, policy sess.Policy, pollEvery time.Duration) *Screen {
	if pollEvery <= 0 {
		pollEvery = 30 * time.Second
	}
	return &Screen{
		svc:       svc,
		journal:   journal,
		activity:  activity,
		subjectID: subjectID,
		policy:    policy,
		pollEvery: pollEvery,
		input:     newInput(activity),
		poller:    poll.New(nil),
		pollCh:    make(chan progressMsg, 1),
	}
}

func newInput(activity api.ActivityType) components.TextInput {
	switch activity {
	case api.ActivityDebate:
		return components.NewTextInput("Make your argument...", 2000, true)
	case api.ActivityConceptMap:
		return components.NewTextInput("Describe the connection...", 500, true)
	default:
		return components.NewTextInput("Type your answer...", 120, false)
	}
}

func (s *Screen) Init() tea.Cmd {
	return tea.Batch(s.bootstrap(), s.input.Init())
}

func (s *Screen) Title() string {
	switch s.activity {
	case api.ActivityVocab:
		return "Vocabulary Challenge"
	case api.ActivityConceptMap:
		return "Concept Map"
	case api.ActivityDebate:
		return "Debate Practice"
	}
	return "Practice"
}

// HeaderStatus shows the running score and cursor in the header.
func (s *Screen) HeaderStatus() string {
	if s.state == nil {
		return ""
	}
	return fmt.Sprintf("Score %d · %d/%d",
		s.state.Score, s.state.ResolvedCount(), s.state.TotalItems)
}

func (s *Screen) KeyHints() []layout.KeyHint {
	if s.showLeaveConfirm {
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Stay"},
		}
	}
	if s.errMsg != "" {
		if s.errRetryable {
			return []layout.KeyHint{
				{Key: "R", Description: "Retry"},
				{Key: "Esc", Description: "Back"},
			}
		}
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	}
	if s.state != nil && s.state.Status() == sess.StatusAwaitingConfirmation {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Confirm"},
			{Key: "R", Description: "Retake later"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Leave"},
	}
	if s.activity == api.ActivityDebate {
		hints = append([]layout.KeyHint{{Key: "Tab", Description: "Switch side"}}, hints...)
	}
	if s.state != nil && s.state.FinishEarlyAllowed() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+E", Description: "Finish early"})
	}
	return hints
}

// HandleLeave intercepts Esc while the session is open and unconfirmed.
// Esc with the dialog already up means "stay".
func (s *Screen) HandleLeave() bool {
	if s.showLeaveConfirm {
		s.showLeaveConfirm = false
		return true
	}
	if s.state != nil && s.state.GuardActive() {
		s.showLeaveConfirm = true
		return true
	}
	return false
}

// Teardown releases the poll timer when the screen is popped.
func (s *Screen) Teardown() {
	s.poller.Stop()
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case bootstrapDoneMsg:
		return s.handleBootstrapDone(msg)
	case resumeNoticeExpiredMsg:
		s.resumeNotice = false
		return s, nil
	case submitDoneMsg:
		return s.handleSubmitDone(msg)
	case confirmDoneMsg:
		return s.handleConfirmDone(msg)
	case declineDoneMsg:
		return s.handleDeclineDone(msg)
	case finishEarlyDoneMsg:
		return s.handleFinishEarlyDone(msg)
	case progressMsg:
		return s.handleProgress(msg)
	case refreshDoneMsg:
		return s.handleRefreshDone(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.inputActive() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// inputActive reports whether keystrokes should feed the answer input.
func (s *Screen) inputActive() bool {
	return s.state != nil &&
		s.state.Status() == sess.StatusActive &&
		!s.awaiting &&
		!s.showLeaveConfirm &&
		s.errMsg == ""
}

// bootstrap starts or resumes the session.
func (s *Screen) bootstrap() tea.Cmd {
	return func() tea.Msg {
		session, err := s.svc.StartOrResume(context.Background(), s.activity, s.subjectID)
		return bootstrapDoneMsg{Session: session, Err: err}
	}
}

func (s *Screen) handleBootstrapDone(msg bootstrapDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = userMessage(msg.Err)
		s.errRetryable = api.IsRetryable(msg.Err)
		return s, nil
	}

	s.state = sess.NewState(msg.Session)
	s.resyncNeeded = false
	s.errMsg = ""

	action := "start"
	if s.state.IsResuming {
		action = "resume"
	}
	s.appendSessionEvent(action)

	var cmds []tea.Cmd
	if s.state.IsResuming {
		s.resumeNotice = true
		cmds = append(cmds, tea.Tick(resumeNoticeDuration, func(time.Time) tea.Msg {
			return resumeNoticeExpiredMsg{}
		}))
	}
	if s.state.NextAction == api.NextActionAwaitResponse {
		cmds = append(cmds, s.startPolling())
	}
	return s, tea.Batch(cmds...)
}

func (s *Screen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	// Blocking error: retry or go back.
	if s.errMsg != "" {
		if s.errRetryable && (key == "r" || key == "R") {
			s.errMsg = ""
			return s, s.retry()
		}
		if !s.errRetryable || key == "esc" {
			s.Teardown()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	// Leave confirmation dialog.
	if s.showLeaveConfirm {
		switch key {
		case "y", "Y":
			s.showLeaveConfirm = false
			s.abandon()
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.showLeaveConfirm = false
		}
		return s, nil
	}

	if s.state == nil {
		return s, nil
	}

	// Completion confirmation gate.
	if s.state.Status() == sess.StatusAwaitingConfirmation {
		switch key {
		case "enter", "c", "C":
			return s, s.confirm()
		case "r", "R", "d", "D":
			return s, s.decline()
		}
		return s, nil
	}

	if s.state.Status() != sess.StatusActive || s.awaiting {
		return s, nil
	}

	switch key {
	case "enter":
		return s.submit()
	case "ctrl+e":
		if s.state.FinishEarlyAllowed() {
			return s, s.finishEarly()
		}
		return s, nil
	case "tab":
		if s.activity == api.ActivityDebate {
			s.togglePosition()
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *Screen) togglePosition() {
	switch s.position {
	case "pro":
		s.position = "con"
	default:
		s.position = "pro"
	}
}

// submit validates locally and posts the answer. A submission already in
// flight makes this a no-op.
func (s *Screen) submit() (screen.Screen, tea.Cmd) {
	if s.submitting || s.state.CurrentItem == nil {
		return s, nil
	}

	answer := sess.Answer{
		Response:         strings.TrimSpace(s.input.Value()),
		Position:         s.position,
		PositionRequired: s.activity == api.ActivityDebate,
	}
	s.fieldErrs = sess.ValidateAnswer(answer, s.policy)
	if len(s.fieldErrs) > 0 {
		return s, nil
	}

	s.submitting = true
	s.feedback = ""

	sub := api.Submission{
		RequestID: uuid.New().String(),
		ItemID:    s.state.CurrentItem.ID,
		Ordinal:   s.state.CurrentIndex,
		Response:  answer.Response,
		Position:  answer.Position,
	}
	s.lastRequestID = sub.RequestID
	s.pendingSub = &sub
	return s, s.sendSubmission(sub)
}

func (s *Screen) sendSubmission(sub api.Submission) tea.Cmd {
	sessionID := s.state.SessionID
	return func() tea.Msg {
		res, err := s.svc.Submit(context.Background(), sessionID, sub)
		return submitDoneMsg{Result: res, Err: err}
	}
}

func (s *Screen) handleSubmitDone(msg submitDoneMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false

	if msg.Err != nil {
		s.errMsg = userMessage(msg.Err)
		s.errRetryable = api.IsRetryable(msg.Err)
		return s, nil
	}

	s.pendingSub = nil

	outcome, err := sess.ApplyResult(s.state, msg.Result, s.policy)
	if err != nil {
		if errors.Is(err, sess.ErrResync) {
			s.resyncNeeded = true
			s.errMsg = "Session out of sync with the server."
			s.errRetryable = true
			return s, nil
		}
		s.errMsg = err.Error()
		s.errRetryable = false
		return s, nil
	}

	s.appendSubmissionEvent(outcome, msg.Result.PointsEarned)

	switch outcome {
	case sess.OutcomeAccepted:
		s.input.Reset()
		s.fieldErrs = nil
		s.goodNews = true
		s.feedback = fmt.Sprintf("Correct! +%d points", msg.Result.PointsEarned)
		if msg.Result.Feedback != "" {
			s.feedback = msg.Result.Feedback
		}

	case sess.OutcomeRejected:
		s.goodNews = false
		s.feedback = msg.Result.Feedback
		if s.feedback == "" {
			s.feedback = "Not quite. Try again."
		}

	case sess.OutcomeExhausted:
		s.input.Reset()
		s.goodNews = false
		s.feedback = "Out of attempts for this one. Moving on."

	case sess.OutcomeNeedsRegeneration:
		s.input.Reset()
		s.goodNews = false
		s.feedback = "That prompt was replaced. Here is a fresh one."
		if s.state.CurrentItem == nil {
			return s, s.refreshItem()
		}

	case sess.OutcomeAwaitingConfirmation:
		s.input.Reset()
		s.fieldErrs = nil

	case sess.OutcomeComplete:
		s.appendSessionEvent("confirmed")
		return s, s.showResults(msg.Result.PercentageScore, msg.Result.Passed, false)

	case sess.OutcomeAwaitResponse:
		s.input.Reset()
		s.fieldErrs = nil
		return s, s.startPolling()
	}

	return s, nil
}

func (s *Screen) confirm() tea.Cmd {
	sessionID := s.state.SessionID
	return func() tea.Msg {
		res, err := s.svc.ConfirmCompletion(context.Background(), sessionID)
		return confirmDoneMsg{Result: res, Err: err}
	}
}

func (s *Screen) handleConfirmDone(msg confirmDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = userMessage(msg.Err)
		s.errRetryable = api.IsRetryable(msg.Err)
		return s, nil
	}

	committed, err := sess.Confirm(s.state)
	if err != nil {
		s.errMsg = err.Error()
		s.errRetryable = false
		return s, nil
	}

	s.appendSessionEvent("confirmed")
	return s, s.showResults(committed.PercentageScore, committed.Passed, false)
}

func (s *Screen) decline() tea.Cmd {
	sessionID := s.state.SessionID
	return func() tea.Msg {
		reopened, err := s.svc.DeclineCompletion(context.Background(), sessionID)
		return declineDoneMsg{Session: reopened, Err: err}
	}
}

func (s *Screen) handleDeclineDone(msg declineDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = userMessage(msg.Err)
		s.errRetryable = api.IsRetryable(msg.Err)
		return s, nil
	}

	if err := sess.Decline(s.state, msg.Session); err != nil {
		s.errMsg = err.Error()
		s.errRetryable = false
		return s, nil
	}

	s.appendSessionEvent("declined")
	s.goodNews = false
	s.feedback = "Result discarded. Pick up where you left off."
	return s, nil
}

func (s *Screen) finishEarly() tea.Cmd {
	sessionID := s.state.SessionID
	return func() tea.Msg {
		res, err := s.svc.FinishEarly(context.Background(), sessionID)
		return finishEarlyDoneMsg{Result: res, Err: err}
	}
}

func (s *Screen) handleFinishEarlyDone(msg finishEarlyDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = userMessage(msg.Err)
		s.errRetryable = api.IsRetryable(msg.Err)
		return s, nil
	}

	if err := sess.ApplyFinishEarly(s.state, msg.Result); err != nil {
		s.errMsg = err.Error()
		s.errRetryable = false
		return s, nil
	}

	s.appendSessionEvent("finished-early")
	return s, s.showResults(msg.Result.PercentageScore, msg.Result.Passed, true)
}

// startPolling acquires the poll timer for the await-response state and
// returns the command that relays polled payloads into the update loop.
func (s *Screen) startPolling() tea.Cmd {
	s.awaiting = true
	sessionID := s.state.SessionID
	s.poller.Start(s.pollEvery, func() {
		session, err := s.svc.Progress(context.Background(), sessionID)
		select {
		case s.pollCh <- progressMsg{Session: session, Err: err}:
		default:
			// Never block the poll goroutine on a slow consumer.
		}
	})
	return s.waitForPoll()
}

func (s *Screen) waitForPoll() tea.Cmd {
	ch := s.pollCh
	return func() tea.Msg {
		return <-ch
	}
}

func (s *Screen) handleProgress(msg progressMsg) (screen.Screen, tea.Cmd) {
	if !s.awaiting {
		// Stale poll result after the poller was released.
		return s, nil
	}
	if msg.Err != nil {
		// Transient poll failures are absorbed; the next tick retries.
		return s, s.waitForPoll()
	}
	if sess.ApplyProgress(s.state, msg.Session) {
		s.poller.Stop()
		s.awaiting = false
		return s, nil
	}
	return s, s.waitForPoll()
}

// refreshItem pulls the session once, outside the poll loop, to recover
// the current item after a regeneration.
func (s *Screen) refreshItem() tea.Cmd {
	sessionID := s.state.SessionID
	return func() tea.Msg {
		session, err := s.svc.Progress(context.Background(), sessionID)
		return refreshDoneMsg{Session: session, Err: err}
	}
}

// handleRefreshDone folds the one-shot refresh result. No poller feeds
// this path, so a failed refresh must surface with a retry affordance
// rather than wait for a tick that never comes.
func (s *Screen) handleRefreshDone(msg refreshDoneMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.refreshNeeded = true
		s.errMsg = userMessage(msg.Err)
		s.errRetryable = api.IsRetryable(msg.Err)
		return s, nil
	}
	s.refreshNeeded = false
	if !sess.ApplyProgress(s.state, msg.Session) {
		// Replacement still being generated; hand over to the poll loop.
		return s, s.startPolling()
	}
	return s, nil
}

// retry re-runs the failed operation: a resync or unbootstrapped screen
// starts over, a failed item refresh is fetched again, a failed
// submission is resent verbatim.
func (s *Screen) retry() tea.Cmd {
	if s.state == nil || s.resyncNeeded {
		s.state = nil
		s.pendingSub = nil
		s.refreshNeeded = false
		return s.bootstrap()
	}
	if s.refreshNeeded {
		return s.refreshItem()
	}
	if s.pendingSub != nil && s.state.Status() == sess.StatusActive {
		s.submitting = true
		return s.sendSubmission(*s.pendingSub)
	}
	return nil
}

func (s *Screen) abandon() {
	s.poller.Stop()
	s.awaiting = false
	if s.state != nil {
		// Journal first: Abandon drops the pending completion.
		s.appendSessionEvent("abandoned")
		sess.Abandon(s.state)
	}
}

func (s *Screen) appendSessionEvent(action string) {
	if s.journal == nil || s.state == nil {
		return
	}
	var percentage float64
	var passed bool
	if s.state.Pending != nil {
		percentage = s.state.Pending.PercentageScore
		passed = s.state.Pending.Passed
	}
	_ = s.journal.AppendSessionEvent(context.Background(), store.SessionEventData{
		SessionID:     s.state.SessionID,
		Activity:      string(s.activity),
		SubjectID:     s.subjectID,
		Action:        action,
		Score:         s.state.Score,
		TotalItems:    s.state.TotalItems,
		ItemsResolved: s.state.ResolvedCount(),
		Percentage:    percentage,
		Passed:        passed,
	})
}

func (s *Screen) appendSubmissionEvent(outcome sess.Outcome, points int) {
	if s.journal == nil {
		return
	}
	_ = s.journal.AppendSubmissionEvent(context.Background(), store.SubmissionEventData{
		SessionID:   s.state.SessionID,
		RequestID:   s.lastRequestID,
		ItemOrdinal: s.state.CurrentIndex,
		Outcome:     outcomeString(outcome),
		Points:      points,
	})
}

func outcomeString(o sess.Outcome) string {
	switch o {
	case sess.OutcomeAccepted:
		return "accepted"
	case sess.OutcomeRejected:
		return "rejected"
	case sess.OutcomeExhausted:
		return "exhausted"
	case sess.OutcomeNeedsRegeneration:
		return "regenerated"
	case sess.OutcomeAwaitingConfirmation:
		return "awaiting-confirmation"
	case sess.OutcomeComplete:
		return "complete"
	case sess.OutcomeAwaitResponse:
		return "await-response"
	}
	return "unknown"
}

func (s *Screen) showResults(percentage float64, passed, early bool) tea.Cmd {
	summary := results.Summary{
		Activity:   s.Title(),
		Score:      s.state.Score,
		TotalItems: s.state.TotalItems,
		Resolved:   s.state.ResolvedCount(),
		Percentage: percentage,
		Passed:     passed,
		Early:      early,
	}
	s.poller.Stop()
	s.awaiting = false
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: results.New(summary)}
	}
}

// userMessage maps boundary errors to the single line shown to the user.
func userMessage(err error) string {
	switch {
	case errors.Is(err, api.ErrSubjectNotFound):
		return "This assignment could not be found."
	case errors.Is(err, api.ErrSubjectUnavailable):
		return "This assignment is not available right now."
	case errors.Is(err, api.ErrAlreadyCompleted):
		return "You have already completed this assignment."
	}
	var cerr *api.ContractError
	if errors.As(err, &cerr) {
		return "The server sent an unexpected response."
	}
	return "Could not reach the server. Check your connection."
}
