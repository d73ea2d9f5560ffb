package api

import (
	"context"
	"sync"
)

// MockService is a deterministic Service for testing. Submit responses are
// returned in FIFO order; every call is recorded.
type MockService struct {
	mu sync.Mutex

	StartResponse    Session
	StartErr         error
	submitQueue      []SubmissionResult
	submitErrs       []error
	ConfirmResponse  FinishEarlyResult
	ConfirmErr       error
	DeclineResponse  Session
	DeclineErr       error
	FinishResponse   FinishEarlyResult
	FinishErr        error
	ProgressQueue    []Session
	ProgressErr      error
	SubmitCalls      []Submission
	ProgressCalls    int
	ConfirmCalls     int
	DeclineCalls     int
	FinishEarlyCalls int
}

var _ Service = (*MockService)(nil)

// QueueSubmit appends a canned submit response.
func (m *MockService) QueueSubmit(res SubmissionResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitQueue = append(m.submitQueue, res)
	m.submitErrs = append(m.submitErrs, err)
}

func (m *MockService) StartOrResume(context.Context, ActivityType, string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StartResponse, m.StartErr
}

func (m *MockService) Submit(_ context.Context, _ string, sub Submission) (SubmissionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitCalls = append(m.SubmitCalls, sub)
	if len(m.submitQueue) == 0 {
		return SubmissionResult{}, &TransportError{Op: "submit answer", Status: 503}
	}
	res, err := m.submitQueue[0], m.submitErrs[0]
	m.submitQueue = m.submitQueue[1:]
	m.submitErrs = m.submitErrs[1:]
	return res, err
}

func (m *MockService) ConfirmCompletion(context.Context, string) (FinishEarlyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmCalls++
	return m.ConfirmResponse, m.ConfirmErr
}

func (m *MockService) DeclineCompletion(context.Context, string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeclineCalls++
	return m.DeclineResponse, m.DeclineErr
}

func (m *MockService) FinishEarly(context.Context, string) (FinishEarlyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinishEarlyCalls++
	return m.FinishResponse, m.FinishErr
}

func (m *MockService) Progress(context.Context, string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgressCalls++
	if m.ProgressErr != nil {
		return Session{}, m.ProgressErr
	}
	if len(m.ProgressQueue) == 0 {
		return m.StartResponse, nil
	}
	s := m.ProgressQueue[0]
	if len(m.ProgressQueue) > 1 {
		m.ProgressQueue = m.ProgressQueue[1:]
	}
	return s, nil
}
