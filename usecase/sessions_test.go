package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/model"
)

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.FocusSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*model.FocusSession)}
}

func (s *memSessionStore) CreateSession(_ context.Context, session *model.FocusSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.SessionID] = &cp
	return nil
}

func (s *memSessionStore) GetSession(_ context.Context, sessionID string, userID string) (*model.FocusSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (s *memSessionStore) GetUserSessions(_ context.Context, userID string) ([]*model.FocusSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.FocusSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			cp := *session
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memSessionStore) FinishSession(_ context.Context, sessionID string, userID string, status model.SessionStatus, actualDurationMinutes int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.UserID != userID || session.Status != model.SessionActive {
		return errors.New("session not found or not active")
	}
	session.Status = status
	session.ActualDurationMinutes = actualDurationMinutes
	session.CompletedAt = now
	session.UpdatedAt = now
	return nil
}

func (s *memSessionStore) CountActiveSessions(_ context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, session := range s.sessions {
		if session.UserID == userID && session.Status == model.SessionActive {
			count++
		}
	}
	return count, nil
}

type memGoalReader struct {
	goals map[string]*model.Goal
}

func (r *memGoalReader) GetGoal(_ context.Context, goalID string, userID string) (*model.Goal, error) {
	goal, ok := r.goals[goalID]
	if !ok || goal.UserID != userID {
		return nil, nil
	}
	return goal, nil
}

func newSessionFixture(t *testing.T) (*SessionService, *memSessionStore, *memStatsStore) {
	t.Helper()
	statsStore := newMemStatsStore()
	statsService := NewStatsService(statsStore, nil)
	sessionStore := newMemSessionStore()
	goals := &memGoalReader{goals: map[string]*model.Goal{
		"goal-1": {GoalID: "goal-1", UserID: "user-1", Title: "Run more", Category: model.CategoryPhysical},
	}}
	return NewSessionService(sessionStore, goals, statsService), sessionStore, statsStore
}

func startSession(t *testing.T, svc *SessionService, planned int) *model.FocusSession {
	t.Helper()
	session, err := svc.StartSession(context.Background(), "user-1", &dto.StartSessionRequest{
		GoalID:                 "goal-1",
		PlannedDurationMinutes: planned,
	})
	if err != nil {
		t.Fatalf("StartSession failed: %v", err)
	}
	return session
}

func TestStartSessionRejectsUnknownGoal(t *testing.T) {
	svc, _, _ := newSessionFixture(t)

	_, err := svc.StartSession(context.Background(), "user-1", &dto.StartSessionRequest{
		GoalID:                 "missing",
		PlannedDurationMinutes: 25,
	})
	if err == nil || err.Error() != "goal not found" {
		t.Errorf("err = %v, want goal not found", err)
	}
}

func TestStartSessionRejectsConcurrentSession(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	startSession(t, svc, 25)

	_, err := svc.StartSession(context.Background(), "user-1", &dto.StartSessionRequest{
		GoalID:                 "goal-1",
		PlannedDurationMinutes: 25,
	})
	if err == nil || err.Error() != "another session is already active" {
		t.Errorf("err = %v, want another session is already active", err)
	}
}

func TestCompleteSessionRecordsStats(t *testing.T) {
	svc, _, statsStore := newSessionFixture(t)
	session := startSession(t, svc, 25)

	actual := 40
	completed, err := svc.CompleteSession(context.Background(), "user-1", session.SessionID,
		&dto.CompleteSessionRequest{ActualDurationMinutes: &actual})
	if err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}

	if completed.Status != model.SessionCompleted {
		t.Errorf("status = %s, want COMPLETED", completed.Status)
	}
	if completed.ActualDurationMinutes != 40 {
		t.Errorf("actual duration = %d, want 40", completed.ActualDurationMinutes)
	}

	stats := statsStore.get("user-1", model.CategoryPhysical)
	if stats.CompletedSessions != 1 {
		t.Errorf("completed sessions = %d, want 1", stats.CompletedSessions)
	}
	if stats.TotalDurationMinutes != 40 {
		t.Errorf("stats minutes = %d, want the actual duration 40", stats.TotalDurationMinutes)
	}
}

func TestCompleteSessionFallsBackToPlannedDuration(t *testing.T) {
	svc, _, statsStore := newSessionFixture(t)
	session := startSession(t, svc, 25)

	completed, err := svc.CompleteSession(context.Background(), "user-1", session.SessionID,
		&dto.CompleteSessionRequest{})
	if err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	if completed.ActualDurationMinutes != 25 {
		t.Errorf("actual duration = %d, want planned 25", completed.ActualDurationMinutes)
	}

	stats := statsStore.get("user-1", model.CategoryPhysical)
	if stats.TotalDurationMinutes != 25 {
		t.Errorf("stats minutes = %d, want planned 25", stats.TotalDurationMinutes)
	}
}

func TestCompleteSessionSwallowsStatsFailure(t *testing.T) {
	svc, _, statsStore := newSessionFixture(t)
	session := startSession(t, svc, 25)
	statsStore.failAll = true

	completed, err := svc.CompleteSession(context.Background(), "user-1", session.SessionID,
		&dto.CompleteSessionRequest{})
	if err != nil {
		t.Fatalf("CompleteSession must succeed even when stats fail, got: %v", err)
	}
	if completed.Status != model.SessionCompleted {
		t.Errorf("status = %s, want COMPLETED despite stats failure", completed.Status)
	}
}

func TestCompleteSessionTwiceFails(t *testing.T) {
	svc, _, _ := newSessionFixture(t)
	session := startSession(t, svc, 25)

	if _, err := svc.CompleteSession(context.Background(), "user-1", session.SessionID, &dto.CompleteSessionRequest{}); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if _, err := svc.CompleteSession(context.Background(), "user-1", session.SessionID, &dto.CompleteSessionRequest{}); err == nil {
		t.Error("second completion should fail")
	}
}

func TestAbandonSessionSkipsStats(t *testing.T) {
	svc, _, statsStore := newSessionFixture(t)
	session := startSession(t, svc, 25)

	abandoned, err := svc.AbandonSession(context.Background(), "user-1", session.SessionID)
	if err != nil {
		t.Fatalf("AbandonSession failed: %v", err)
	}
	if abandoned.Status != model.SessionAbandoned {
		t.Errorf("status = %s, want ABANDONED", abandoned.Status)
	}

	statsStore.mu.Lock()
	defer statsStore.mu.Unlock()
	if len(statsStore.records) != 0 {
		t.Error("abandoned sessions must not create stats rows")
	}
}
