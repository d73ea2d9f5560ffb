package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SessionEventData records a lifecycle event for one session.
type SessionEventData struct {
	SessionID     string
	Activity      string
	SubjectID     string
	Action        string // "start", "resume", "confirmed", "declined", "finished-early", "abandoned"
	Score         int
	TotalItems    int
	ItemsResolved int
	Percentage    float64
	Passed        bool
}

// SubmissionEventData records one submission and its outcome.
type SubmissionEventData struct {
	SessionID   string
	RequestID   string
	ItemOrdinal int
	Outcome     string
	Points      int
}

// AttemptSummary is one row of local history.
type AttemptSummary struct {
	SessionID  string
	Activity   string
	SubjectID  string
	Action     string
	Score      int
	TotalItems int
	Percentage float64
	Passed     bool
	When       time.Time
}

// Journal is the append-and-list interface over the local attempt log.
type Journal interface {
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendSubmissionEvent(ctx context.Context, data SubmissionEventData) error
	RecentAttempts(ctx context.Context, limit int) ([]AttemptSummary, error)
}

type sqlJournal struct {
	db *sql.DB
}

func (j *sqlJournal) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO session_events
			(session_id, activity, subject_id, action, score, total_items, items_resolved, percentage, passed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.Activity, data.SubjectID, data.Action,
		data.Score, data.TotalItems, data.ItemsResolved, data.Percentage, boolInt(data.Passed))
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (j *sqlJournal) AppendSubmissionEvent(ctx context.Context, data SubmissionEventData) error {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO submission_events
			(session_id, request_id, item_ordinal, outcome, points)
		 VALUES (?, ?, ?, ?, ?)`,
		data.SessionID, data.RequestID, data.ItemOrdinal, data.Outcome, data.Points)
	if err != nil {
		return fmt.Errorf("save submission event: %w", err)
	}
	return nil
}

func (j *sqlJournal) RecentAttempts(ctx context.Context, limit int) ([]AttemptSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT session_id, activity, subject_id, action, score, total_items, percentage, passed, created_at
		 FROM session_events
		 WHERE action IN ('confirmed', 'finished-early', 'abandoned', 'declined')
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptSummary
	for rows.Next() {
		var a AttemptSummary
		var passed int
		if err := rows.Scan(&a.SessionID, &a.Activity, &a.SubjectID, &a.Action,
			&a.Score, &a.TotalItems, &a.Percentage, &passed, &a.When); err != nil {
			return nil, fmt.Errorf("scan attempt row: %w", err)
		}
		a.Passed = passed != 0
		out = append(out, a)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
