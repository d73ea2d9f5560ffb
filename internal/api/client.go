package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Client talks to the platform backend over REST. The *http.Client is
// injected so callers control auth transport and tests can run against
// httptest servers; the Client never reaches into ambient singletons.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

var _ Service = (*Client)(nil)

// NewClient creates a Client against baseURL. token, when non-empty, is
// sent as a bearer credential on every request.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// StartOrResume starts a new session for the subject or resumes the
// learner's in-progress one. The backend decides which.
func (c *Client) StartOrResume(ctx context.Context, activity ActivityType, subjectID string) (Session, error) {
	op := "start session"
	path := fmt.Sprintf("/api/activities/%s/%s/start", activity, subjectID)
	raw, err := c.post(ctx, op, path, nil)
	if err != nil {
		return Session{}, err
	}
	if err := checkContract("session", sessionSchemaDef, raw); err != nil {
		return Session{}, &ContractError{Op: op, Err: err}
	}
	s, err := normalizeSession(raw)
	if err != nil {
		return Session{}, &ContractError{Op: op, Err: err}
	}
	if s.Activity == "" {
		s.Activity = activity
	}
	if s.SubjectID == "" {
		s.SubjectID = subjectID
	}
	return s, nil
}

// Submit posts an answer for the session's current item.
func (c *Client) Submit(ctx context.Context, sessionID string, sub Submission) (SubmissionResult, error) {
	op := "submit answer"
	raw, err := c.post(ctx, op, "/api/sessions/"+sessionID+"/submit", sub)
	if err != nil {
		return SubmissionResult{}, err
	}
	if err := checkContract("result", resultSchemaDef, raw); err != nil {
		return SubmissionResult{}, &ContractError{Op: op, Err: err}
	}
	r, err := normalizeResult(raw)
	if err != nil {
		return SubmissionResult{}, &ContractError{Op: op, Err: err}
	}
	return r, nil
}

// ConfirmCompletion commits a pending completion. The score becomes final.
func (c *Client) ConfirmCompletion(ctx context.Context, sessionID string) (FinishEarlyResult, error) {
	op := "confirm completion"
	raw, err := c.post(ctx, op, "/api/sessions/"+sessionID+"/confirm-completion", nil)
	if err != nil {
		return FinishEarlyResult{}, err
	}
	f, err := normalizeFinish(raw)
	if err != nil {
		return FinishEarlyResult{}, &ContractError{Op: op, Err: err}
	}
	return f, nil
}

// DeclineCompletion discards a pending completion and reopens the session.
// The response is a fresh session payload positioned at the first
// unresolved item.
func (c *Client) DeclineCompletion(ctx context.Context, sessionID string) (Session, error) {
	op := "decline completion"
	raw, err := c.post(ctx, op, "/api/sessions/"+sessionID+"/decline-completion", nil)
	if err != nil {
		return Session{}, err
	}
	if err := checkContract("session", sessionSchemaDef, raw); err != nil {
		return Session{}, &ContractError{Op: op, Err: err}
	}
	s, err := normalizeSession(raw)
	if err != nil {
		return Session{}, &ContractError{Op: op, Err: err}
	}
	return s, nil
}

// FinishEarly short-circuits remaining items and computes a partial score.
func (c *Client) FinishEarly(ctx context.Context, sessionID string) (FinishEarlyResult, error) {
	op := "finish early"
	raw, err := c.post(ctx, op, "/api/sessions/"+sessionID+"/finish-early", nil)
	if err != nil {
		return FinishEarlyResult{}, err
	}
	if err := checkContract("finish", finishSchemaDef, raw); err != nil {
		return FinishEarlyResult{}, &ContractError{Op: op, Err: err}
	}
	f, err := normalizeFinish(raw)
	if err != nil {
		return FinishEarlyResult{}, &ContractError{Op: op, Err: err}
	}
	return f, nil
}

// Progress fetches current session state; used while awaiting an
// asynchronous backend response.
func (c *Client) Progress(ctx context.Context, sessionID string) (Session, error) {
	op := "fetch progress"
	raw, err := c.get(ctx, op, "/api/sessions/"+sessionID+"/progress")
	if err != nil {
		return Session{}, err
	}
	if err := checkContract("session", sessionSchemaDef, raw); err != nil {
		return Session{}, &ContractError{Op: op, Err: err}
	}
	s, err := normalizeSession(raw)
	if err != nil {
		return Session{}, &ContractError{Op: op, Err: err}
	}
	return s, nil
}

func (c *Client) post(ctx context.Context, op, path string, body any) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, rd)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(op, req)
}

func (c *Client) get(ctx context.Context, op, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	switch {
	case res.StatusCode/100 == 2:
		return raw, nil
	case res.StatusCode == http.StatusNotFound:
		return nil, ErrSubjectNotFound
	case res.StatusCode == http.StatusForbidden:
		return nil, ErrSubjectUnavailable
	case res.StatusCode == http.StatusConflict:
		return nil, ErrAlreadyCompleted
	default:
		return nil, &TransportError{Op: op, Status: res.StatusCode}
	}
}
