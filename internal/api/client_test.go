package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL, "test-token"), srv
}

func TestClient_StartOrResume(t *testing.T) {
	var gotPath, gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session_id": "s-1", "total_words": 5, "word": "candid", "is_resuming": true}`))
	})

	s, err := client.StartOrResume(context.Background(), ActivityVocab, "unit-3")
	if err != nil {
		t.Fatalf("StartOrResume: %v", err)
	}
	if gotPath != "/api/activities/vocab/unit-3/start" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if s.ID != "s-1" || s.TotalItems != 5 || !s.IsResuming {
		t.Errorf("session = %+v", s)
	}
	// Fields absent from the payload fall back to the request.
	if s.Activity != ActivityVocab || s.SubjectID != "unit-3" {
		t.Errorf("activity/subject = %q/%q, want request values", s.Activity, s.SubjectID)
	}
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrSubjectNotFound},
		{http.StatusForbidden, ErrSubjectUnavailable},
		{http.StatusConflict, ErrAlreadyCompleted},
	}
	for _, tt := range tests {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := client.StartOrResume(context.Background(), ActivityVocab, "unit-3")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		if IsRetryable(err) {
			t.Errorf("status %d must not be retryable", tt.status)
		}
	}
}

func TestClient_ServerErrorIsRetryableTransport(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.StartOrResume(context.Background(), ActivityVocab, "unit-3")
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if terr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", terr.Status)
	}
	if !IsRetryable(err) {
		t.Error("a 500 must be retryable")
	}
}

func TestClient_NetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	client := NewClient(&http.Client{}, url, "")
	_, err := client.StartOrResume(context.Background(), ActivityVocab, "unit-3")
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err = %v, want TransportError", err)
	}
	if !IsRetryable(err) {
		t.Error("a network failure must be retryable")
	}
}

func TestClient_ContractViolation(t *testing.T) {
	// A 200 with no session id in any spelling breaks the contract.
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_items": 5}`))
	})

	_, err := client.StartOrResume(context.Background(), ActivityVocab, "unit-3")
	var cerr *ContractError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want ContractError", err)
	}
}

func TestClient_SubmitSendsPayload(t *testing.T) {
	var got Submission
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s-1/submit" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"correct": true, "points_earned": 10}`))
	})

	sub := Submission{RequestID: "req-1", ItemID: "i-0", Response: "candid", Position: "pro"}
	res, err := client.Submit(context.Background(), "s-1", sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got.RequestID != "req-1" || got.Response != "candid" || got.Position != "pro" {
		t.Errorf("sent payload = %+v", got)
	}
	if !res.Correct || res.PointsEarned != 10 {
		t.Errorf("result = %+v", res)
	}
}

func TestClient_ProgressUsesGet(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %q, want GET", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "s-1", "total_items": 3, "next_action": "await_response"}`))
	})

	s, err := client.Progress(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if s.NextAction != NextActionAwaitResponse {
		t.Errorf("NextAction = %q, want await_response", s.NextAction)
	}
}

func TestClient_FinishEarly(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/sessions/s-1/finish-early" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": true, "final_score": 20, "words_completed": 2, "percentage_score": 40}`))
	})

	f, err := client.FinishEarly(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("FinishEarly: %v", err)
	}
	if !f.Success || f.FinalScore != 20 || f.ItemsCompleted != 2 {
		t.Errorf("finish = %+v", f)
	}
}
