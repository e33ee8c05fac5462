package model

import (
	"math"
	"testing"
	"time"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		minutes   int
		streak    int
		want      float64
	}{
		{"first session", 1, 35, 1, 18},                // 10 + 3 + 5
		{"second consecutive day", 2, 60, 2, 36},       // 20 + 6 + 10
		{"duration rounds down", 1, 9, 1, 15},          // 10 + 0 + 5
		{"streak bonus caps at 100", 10, 100, 50, 210}, // 100 + 10 + 100
		{"bonus exactly at cap", 1, 0, 20, 110},        // 10 + 0 + 100
		{"zero everything", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.completed, tt.minutes, tt.streak)
			if got != tt.want {
				t.Errorf("Score(%d, %d, %d) = %v, want %v",
					tt.completed, tt.minutes, tt.streak, got, tt.want)
			}
		})
	}
}

func TestScoreMonotonic(t *testing.T) {
	base := Score(5, 120, 3)
	if Score(6, 120, 3) <= base {
		t.Error("score should grow with completed sessions")
	}
	if Score(5, 130, 3) <= base {
		t.Error("score should grow with duration")
	}
	if Score(5, 120, 4) <= base {
		t.Error("score should grow with streak below the cap")
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		prevStreak   int
		lastActivity time.Time
		want         int
	}{
		{"first ever completion", 0, time.Time{}, 1},
		{"same day holds flat", 3, now.Add(-2 * time.Hour), 3},
		{"next day extends", 3, now.Add(-25 * time.Hour), 4},
		{"exactly one day extends", 5, now.Add(-24 * time.Hour), 6},
		{"two day gap resets", 5, now.Add(-3 * 24 * time.Hour), 1},
		{"long gap resets", 40, now.Add(-30 * 24 * time.Hour), 1},
		{"same day with corrupt zero streak", 0, now.Add(-time.Hour), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStreak(tt.prevStreak, tt.lastActivity, now)
			if got != tt.want {
				t.Errorf("NextStreak(%d, %v) = %d, want %d",
					tt.prevStreak, tt.lastActivity, got, tt.want)
			}
		})
	}
}

func TestDecayedScore(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("two days of decay", func(t *testing.T) {
		got := DecayedScore(100, now.Add(-48*time.Hour), now)
		want := 100 * math.Pow(DecayFactor, 2)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("DecayedScore = %v, want %v", got, want)
		}
		if got >= 100 {
			t.Error("decayed score should be strictly less than the original")
		}
	})

	t.Run("fractional days", func(t *testing.T) {
		got := DecayedScore(50, now.Add(-36*time.Hour), now)
		want := 50 * math.Pow(DecayFactor, 1.5)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("DecayedScore = %v, want %v", got, want)
		}
	})

	t.Run("never negative", func(t *testing.T) {
		got := DecayedScore(0.0001, now.Add(-365*24*time.Hour), now)
		if got < 0 {
			t.Errorf("DecayedScore = %v, want >= 0", got)
		}
	})

	t.Run("no elapsed time is a no-op", func(t *testing.T) {
		if got := DecayedScore(75, now, now); got != 75 {
			t.Errorf("DecayedScore = %v, want 75", got)
		}
	})
}

func TestCurrentStreak(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		stats UserStats
		want  int
	}{
		{"recent activity keeps streak", UserStats{StreakDays: 7, LastActivity: now.Add(-2 * time.Hour)}, 7},
		{"stale activity reads as broken", UserStats{StreakDays: 7, LastActivity: now.Add(-26 * time.Hour)}, 0},
		{"never active", UserStats{StreakDays: 0}, 0},
		{"exactly at the window edge", UserStats{StreakDays: 4, LastActivity: now.Add(-DecayGrace)}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.stats.CurrentStreak(now); got != tt.want {
				t.Errorf("CurrentStreak = %d, want %d", got, tt.want)
			}
		})
	}
}
