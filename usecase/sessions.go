package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/appdotbuilder/octa-focus/dto"
	"github.com/appdotbuilder/octa-focus/model"
	"github.com/appdotbuilder/octa-focus/utils"

	"github.com/google/uuid"
)

// SessionStore is the persistence contract for focus sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *model.FocusSession) error
	GetSession(ctx context.Context, sessionID string, userID string) (*model.FocusSession, error)
	GetUserSessions(ctx context.Context, userID string) ([]*model.FocusSession, error)
	FinishSession(ctx context.Context, sessionID string, userID string, status model.SessionStatus, actualDurationMinutes int, now time.Time) error
	CountActiveSessions(ctx context.Context, userID string) (int, error)
}

// GoalReader is the slice of the goals repository the session flow needs.
type GoalReader interface {
	GetGoal(ctx context.Context, goalID string, userID string) (*model.Goal, error)
}

type SessionService struct {
	sessions SessionStore
	goals    GoalReader
	stats    *StatsService
}

func NewSessionService(sessions SessionStore, goals GoalReader, stats *StatsService) *SessionService {
	return &SessionService{sessions: sessions, goals: goals, stats: stats}
}

// StartSession opens a new ACTIVE focus session against one of the user's
// goals. Only one session may be active at a time.
func (svc *SessionService) StartSession(ctx context.Context, userID string, req *dto.StartSessionRequest) (*model.FocusSession, error) {
	goal, err := svc.goals.GetGoal(ctx, req.GoalID, userID)
	if err != nil {
		return nil, err
	}
	if goal == nil {
		return nil, errors.New("goal not found")
	}

	active, err := svc.sessions.CountActiveSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, errors.New("another session is already active")
	}

	now := time.Now()
	session := &model.FocusSession{
		SessionID:              uuid.New().String(),
		UserID:                 userID,
		GoalID:                 req.GoalID,
		Status:                 model.SessionActive,
		PlannedDurationMinutes: req.PlannedDurationMinutes,
		BlockedApps:            req.BlockedApps,
		BlockedSites:           req.BlockedSites,
		StartedAt:              now,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := svc.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// CompleteSession closes an active session and credits it to the user's
// stats. When the client did not measure an actual duration the planned
// duration is credited instead. A stats failure is logged and swallowed:
// the session is already completed and must report as such.
func (svc *SessionService) CompleteSession(ctx context.Context, userID string, sessionID string, req *dto.CompleteSessionRequest) (*model.FocusSession, error) {
	session, err := svc.sessions.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("session not found")
	}
	if session.Status != model.SessionActive {
		return nil, errors.New("session is not active")
	}

	duration := session.PlannedDurationMinutes
	if req != nil && req.ActualDurationMinutes != nil {
		duration = *req.ActualDurationMinutes
	}

	now := time.Now()
	if err := svc.sessions.FinishSession(ctx, sessionID, userID, model.SessionCompleted, duration, now); err != nil {
		return nil, err
	}

	session.Status = model.SessionCompleted
	session.ActualDurationMinutes = duration
	session.CompletedAt = now
	session.UpdatedAt = now

	goal, err := svc.goals.GetGoal(ctx, session.GoalID, userID)
	if err != nil || goal == nil {
		utils.TrackError("stats", "category_resolution_failed")
		log.Printf("Failed to resolve goal %s for completed session %s: %v", session.GoalID, sessionID, err)
		return session, nil
	}

	if _, err := svc.stats.RecordCompletion(ctx, userID, goal.Category, duration, now); err != nil {
		utils.TrackError("stats", "completion_aggregation_failed")
		log.Printf("Failed to record stats for session %s: %v", sessionID, err)
	} else {
		utils.TrackSessionCompletion(string(goal.Category))
	}

	return session, nil
}

// AbandonSession closes an active session without crediting any stats.
func (svc *SessionService) AbandonSession(ctx context.Context, userID string, sessionID string) (*model.FocusSession, error) {
	session, err := svc.sessions.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, errors.New("session not found")
	}
	if session.Status != model.SessionActive {
		return nil, errors.New("session is not active")
	}

	now := time.Now()
	if err := svc.sessions.FinishSession(ctx, sessionID, userID, model.SessionAbandoned, 0, now); err != nil {
		return nil, err
	}

	session.Status = model.SessionAbandoned
	session.CompletedAt = now
	session.UpdatedAt = now
	return session, nil
}

// GetUserSessions lists the user's sessions, newest first.
func (svc *SessionService) GetUserSessions(ctx context.Context, userID string) ([]*model.FocusSession, error) {
	return svc.sessions.GetUserSessions(ctx, userID)
}
