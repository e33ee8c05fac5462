package model

import (
	"math"
	"time"
)

// Score policy constants. DecayFactor is the per-day multiplier applied to
// stale scores; DecayGrace is how long a score stays untouched after its last
// update before the sweep may decay it.
const (
	SessionPoints  = 10
	MinutesPerUnit = 10
	StreakPoints   = 5
	StreakBonusCap = 100

	DecayFactor = 0.98
	DecayGrace  = 24 * time.Hour
)

// UserStats is the per-user-per-category aggregate behind the leaderboard.
// Both the completion path and the decay sweep write it; whichever touches
// LeaderboardScore must also advance LastScoreUpdate.
type UserStats struct {
	UserID               string    `bson:"user_id" json:"user_id"`
	Category             Category  `bson:"category" json:"category"`
	TotalSessions        int       `bson:"total_sessions" json:"total_sessions"`
	CompletedSessions    int       `bson:"completed_sessions" json:"completed_sessions"`
	TotalDurationMinutes int       `bson:"total_duration_minutes" json:"total_duration_minutes"`
	StreakDays           int       `bson:"streak_days" json:"streak_days"`
	LastActivity         time.Time `bson:"last_activity,omitempty" json:"last_activity,omitempty"`
	LeaderboardScore     float64   `bson:"leaderboard_score" json:"leaderboard_score"`
	LastScoreUpdate      time.Time `bson:"last_score_update" json:"last_score_update"`
	CreatedAt            time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt            time.Time `bson:"updated_at" json:"updated_at"`
}

// Score computes the leaderboard score from the three aggregate signals.
// Monotonic in all inputs; the streak bonus is capped so tenure alone cannot
// dominate volume and frequency.
func Score(completedSessions, totalDurationMinutes, streakDays int) float64 {
	base := completedSessions * SessionPoints
	volume := totalDurationMinutes / MinutesPerUnit
	bonus := streakDays * StreakPoints
	if bonus > StreakBonusCap {
		bonus = StreakBonusCap
	}
	return float64(base + volume + bonus)
}

// NextStreak returns the streak after a completion at now, given the streak
// and last activity recorded so far. Same-day completions hold the streak
// flat, a completion on the following day extends it, and a gap of more than
// one day starts over with the completing session as day one.
func NextStreak(prevStreak int, lastActivity time.Time, now time.Time) int {
	if lastActivity.IsZero() {
		return 1
	}
	days := int(math.Floor(now.Sub(lastActivity).Hours() / 24))
	switch {
	case days <= 0:
		if prevStreak < 1 {
			return 1
		}
		return prevStreak
	case days == 1:
		return prevStreak + 1
	default:
		return 1
	}
}

// DecayedScore applies the per-day decay multiplier over the fractional
// number of days elapsed since the score was last updated.
func DecayedScore(score float64, lastScoreUpdate, now time.Time) float64 {
	elapsedDays := now.Sub(lastScoreUpdate).Hours() / 24
	if elapsedDays <= 0 {
		return score
	}
	return score * math.Pow(DecayFactor, elapsedDays)
}

// CurrentStreak is the read-path view of StreakDays: once more than a day
// has passed without activity the streak is reported as broken, even if the
// stored row has not been rewritten yet. Nothing is persisted here.
func (s *UserStats) CurrentStreak(now time.Time) int {
	if s.LastActivity.IsZero() {
		return 0
	}
	if now.Sub(s.LastActivity) > DecayGrace {
		return 0
	}
	return s.StreakDays
}
