// Package devserver is an in-memory stand-in for the platform backend,
// used for local development and end-to-end testing of the client. It
// reproduces the backend's per-activity endpoint quirks on purpose: each
// activity speaks its own field dialect, so the client's normalization
// layer gets exercised for real.
package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const (
	pointsPerItem = 10
	passThreshold = 70.0
)

// replyDelay is how long a debate opponent "thinks" before the progress
// endpoint hands back its post.
var replyDelay = 2 * time.Second

type sessionState struct {
	ID        string
	Activity  string
	SubjectID string

	Items []item
	Index int
	Score int

	AttemptsOnItem int
	Resolved       map[int]bool
	Failed         map[int]bool

	PendingComplete bool
	Confirmed       bool

	Posts      []post
	ReplyDueAt time.Time

	// lastRequestID dedupes submit retries.
	lastRequestID string
	lastResponse  []byte
}

type post struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Server is the in-memory backend.
type Server struct {
	mu sync.Mutex

	// sessions by id, plus an index by activity+subject so a restart of
	// the client resumes instead of forking a second attempt.
	sessions map[string]*sessionState
	open     map[string]string
}

// New creates a dev server with no sessions.
func New() *Server {
	return &Server{
		sessions: make(map[string]*sessionState),
		open:     make(map[string]string),
	}
}

// Handler returns the HTTP handler for the dev server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	r.Post("/api/activities/{activity}/{subjectID}/start", s.handleStart)
	r.Post("/api/sessions/{sessionID}/submit", s.handleSubmit)
	r.Post("/api/sessions/{sessionID}/confirm-completion", s.handleConfirm)
	r.Post("/api/sessions/{sessionID}/decline-completion", s.handleDecline)
	r.Post("/api/sessions/{sessionID}/finish-early", s.handleFinishEarly)
	r.Get("/api/sessions/{sessionID}/progress", s.handleProgress)

	return r
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	activity := chi.URLParam(r, "activity")
	subjectID := chi.URLParam(r, "subjectID")

	items, ok := buildItems(activity, subjectID)
	if !ok {
		http.Error(w, "unknown subject", http.StatusNotFound)
		return
	}
	if strings.HasPrefix(subjectID, "locked-") {
		http.Error(w, "subject locked", http.StatusForbidden)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := activity + "/" + subjectID
	if id, ok := s.open[key]; ok {
		sess := s.sessions[id]
		if !sess.Confirmed {
			writeJSON(w, http.StatusOK, sessionPayload(sess, true))
			return
		}
		delete(s.open, key)
	}

	sess := &sessionState{
		ID:        uuid.New().String(),
		Activity:  activity,
		SubjectID: subjectID,
		Items:     items,
		Resolved:  make(map[int]bool),
		Failed:    make(map[int]bool),
	}
	if activity == "debate" {
		sess.Posts = []post{{Author: "opponent", Text: items[0].Prompt}}
	}
	s.sessions[sess.ID] = sess
	s.open[key] = sess.ID

	writeJSON(w, http.StatusOK, sessionPayload(sess, false))
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RequestID string `json:"request_id"`
		ItemID    string `json:"item_id"`
		Ordinal   int    `json:"ordinal"`
		Response  string `json:"response"`
		Position  string `json:"position"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chi.URLParam(r, "sessionID")]
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	if sess.Confirmed {
		http.Error(w, "already completed", http.StatusConflict)
		return
	}

	// Idempotent retry: hand back the previous answer verbatim.
	if body.RequestID != "" && body.RequestID == sess.lastRequestID {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(sess.lastResponse)
		return
	}

	payload := s.gradeLocked(sess, body.Response, body.Position)

	buf, _ := json.Marshal(payload)
	sess.lastRequestID = body.RequestID
	sess.lastResponse = buf
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(buf)
}

// gradeLocked scores one submission. Caller holds the lock.
func (s *Server) gradeLocked(sess *sessionState, response, position string) map[string]any {
	current := sess.Items[sess.Index]
	correct := current.accepts(response)

	if sess.Activity == "debate" {
		return s.gradeDebateLocked(sess, response, position)
	}

	payload := map[string]any{
		"correct":  correct,
		"feedback": current.feedback(correct),
	}

	if correct {
		sess.Score += pointsPerItem
		sess.Resolved[sess.Index] = true
		delete(sess.Failed, sess.Index)
		sess.AttemptsOnItem = 0
		payload["points_earned"] = pointsPerItem
	} else {
		sess.AttemptsOnItem++
		payload["points_earned"] = 0
		if sess.AttemptsOnItem < maxAttempts(sess.Activity) {
			payload[scoreKey(sess.Activity)] = sess.Score
			return payload
		}
		// Out of attempts: settle the item without points.
		sess.Failed[sess.Index] = true
		sess.AttemptsOnItem = 0
		payload["attempts_exhausted"] = true
	}

	payload[scoreKey(sess.Activity)] = sess.Score

	next := nextUnsettled(sess)
	if next < 0 {
		sess.PendingComplete = true
		pct := percentage(sess)
		payload["is_complete"] = true
		payload["needs_confirmation"] = true
		payload["percentage_score"] = pct
		payload["passed"] = pct >= passThreshold
		return payload
	}

	sess.Index = next
	payload[nextItemKey(sess.Activity)] = itemPayload(sess.Activity, sess.Items[next])
	return payload
}

func (s *Server) gradeDebateLocked(sess *sessionState, response, position string) map[string]any {
	sess.Posts = append(sess.Posts, post{Author: "you", Text: response})
	sess.Score += pointsPerItem
	sess.Resolved[sess.Index] = true
	sess.AttemptsOnItem = 0

	if nextUnsettled(sess) < 0 {
		sess.PendingComplete = true
		pct := percentage(sess)
		return map[string]any{
			"correct":            true,
			"points_earned":      pointsPerItem,
			"current_score":      sess.Score,
			"currentPosts":       sess.Posts,
			"is_complete":        true,
			"needs_confirmation": true,
			"percentage_score":   pct,
			"passed":             pct >= passThreshold,
		}
	}

	// The opponent replies asynchronously; the client polls progress.
	sess.ReplyDueAt = time.Now().Add(replyDelay)
	return map[string]any{
		"correct":       true,
		"points_earned": 0,
		"current_score": sess.Score,
		"currentPosts":  sess.Posts,
		"nextAction":    "await_response",
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chi.URLParam(r, "sessionID")]
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	if sess.Activity == "debate" && !sess.ReplyDueAt.IsZero() {
		if time.Now().Before(sess.ReplyDueAt) {
			payload := sessionPayload(sess, false)
			payload["nextAction"] = "await_response"
			writeJSON(w, http.StatusOK, payload)
			return
		}
		// Reply is ready: post it and move to the next turn.
		sess.ReplyDueAt = time.Time{}
		next := nextUnsettled(sess)
		if next >= 0 {
			sess.Index = next
			sess.Posts = append(sess.Posts, post{Author: "opponent", Text: sess.Items[next].Prompt})
		}
	}

	writeJSON(w, http.StatusOK, sessionPayload(sess, false))
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chi.URLParam(r, "sessionID")]
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	if !sess.PendingComplete {
		http.Error(w, "nothing to confirm", http.StatusConflict)
		return
	}

	sess.PendingComplete = false
	sess.Confirmed = true
	delete(s.open, sess.Activity+"/"+sess.SubjectID)

	pct := percentage(sess)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"final_score":      sess.Score,
		"items_completed":  len(sess.Resolved),
		"percentage_score": pct,
		"passed":           pct >= passThreshold,
	})
}

func (s *Server) handleDecline(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chi.URLParam(r, "sessionID")]
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	if !sess.PendingComplete {
		http.Error(w, "nothing to decline", http.StatusConflict)
		return
	}

	// Reopen at the first item without points; failed marks clear so the
	// retake gets fresh attempts.
	sess.PendingComplete = false
	sess.Failed = make(map[int]bool)
	sess.AttemptsOnItem = 0
	if next := nextUnsettled(sess); next >= 0 {
		sess.Index = next
	}

	writeJSON(w, http.StatusOK, sessionPayload(sess, false))
}

func (s *Server) handleFinishEarly(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chi.URLParam(r, "sessionID")]
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}
	if sess.Confirmed {
		http.Error(w, "already completed", http.StatusConflict)
		return
	}
	if len(sess.Resolved) == 0 {
		http.Error(w, "nothing completed yet", http.StatusConflict)
		return
	}

	sess.PendingComplete = false
	sess.Confirmed = true
	delete(s.open, sess.Activity+"/"+sess.SubjectID)

	pct := percentage(sess)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"final_score":      sess.Score,
		"items_completed":  len(sess.Resolved),
		"percentage_score": pct,
		"passed":           pct >= passThreshold,
	})
}

// nextUnsettled returns the lowest ordinal with neither points nor a
// failed mark, or -1 when every item is settled.
func nextUnsettled(sess *sessionState) int {
	for i := range sess.Items {
		if !sess.Resolved[i] && !sess.Failed[i] {
			return i
		}
	}
	return -1
}

func percentage(sess *sessionState) float64 {
	max := len(sess.Items) * pointsPerItem
	if max == 0 {
		return 0
	}
	return float64(sess.Score) / float64(max) * 100
}

func maxAttempts(activity string) int {
	if activity == "vocab" {
		return 2
	}
	return 3
}

// sessionPayload renders the session in the activity's field dialect.
func sessionPayload(sess *sessionState, resuming bool) map[string]any {
	current := sess.Items[sess.Index]

	switch sess.Activity {
	case "vocab":
		return map[string]any{
			"session_id":    sess.ID,
			"list_id":       sess.SubjectID,
			"total_words":   len(sess.Items),
			"current_index": sess.Index,
			"current_score": sess.Score,
			"is_resuming":   resuming,
			"word":          itemPayload(sess.Activity, current),
		}
	case "conceptmap":
		return map[string]any{
			"id":              sess.ID,
			"topic_id":        sess.SubjectID,
			"total_questions": len(sess.Items),
			"current_index":   sess.Index,
			"score":           sess.Score,
			"is_resuming":     resuming,
			"question":        itemPayload(sess.Activity, current),
		}
	default: // debate
		return map[string]any{
			"sessionId":    sess.ID,
			"topic_id":     sess.SubjectID,
			"totalItems":   len(sess.Items),
			"currentIndex": sess.Index,
			"score":        sess.Score,
			"isResuming":   resuming,
			"item":         itemPayload(sess.Activity, current),
			"currentPosts": sess.Posts,
		}
	}
}

func itemPayload(activity string, it item) any {
	switch activity {
	case "vocab":
		// The vocab handler historically sent the bare word.
		return it.Prompt
	case "conceptmap":
		return map[string]any{
			"question_id": it.ID,
			"question":    it.Prompt,
			"options":     it.Choices,
			"difficulty":  it.Difficulty,
		}
	default:
		return map[string]any{
			"id":     it.ID,
			"prompt": it.Prompt,
		}
	}
}

func scoreKey(activity string) string {
	if activity == "conceptmap" {
		return "score"
	}
	return "current_score"
}

func nextItemKey(activity string) string {
	switch activity {
	case "vocab":
		return "next_word"
	case "conceptmap":
		return "next_question"
	}
	return "next_item"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		fmt.Println("devserver: write response:", err)
	}
}
