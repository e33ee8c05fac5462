package model

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionAbandoned SessionStatus = "ABANDONED"
)

// FocusSession is one timed work block against a goal. BlockedApps and
// BlockedSites are enforced client-side; the backend only stores them.
type FocusSession struct {
	SessionID              string        `bson:"_id,omitempty" json:"id"`
	UserID                 string        `bson:"user_id" json:"user_id"`
	GoalID                 string        `bson:"goal_id" json:"goal_id" binding:"required"`
	Status                 SessionStatus `bson:"status" json:"status"`
	PlannedDurationMinutes int           `bson:"planned_duration_minutes" json:"planned_duration_minutes" binding:"required,min=1"`
	ActualDurationMinutes  int           `bson:"actual_duration_minutes,omitempty" json:"actual_duration_minutes,omitempty"`
	BlockedApps            []string      `bson:"blocked_apps,omitempty" json:"blocked_apps,omitempty"`
	BlockedSites           []string      `bson:"blocked_sites,omitempty" json:"blocked_sites,omitempty"`
	StartedAt              time.Time     `bson:"started_at" json:"started_at"`
	CompletedAt            time.Time     `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt              time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time     `bson:"updated_at" json:"updated_at"`
}
