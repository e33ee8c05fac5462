package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/appdotbuilder/octa-focus/model"
)

// memStatsStore is an in-memory StatsStore with the same update semantics as
// the Mongo repository, for exercising the service without a database.
type memStatsStore struct {
	mu      sync.Mutex
	records map[string]*model.UserStats
	failAll bool
}

func newMemStatsStore() *memStatsStore {
	return &memStatsStore{records: make(map[string]*model.UserStats)}
}

func statsKey(userID string, category model.Category) string {
	return userID + "/" + string(category)
}

func (s *memStatsStore) ApplyCompletion(_ context.Context, userID string, category model.Category, durationMinutes int, now time.Time) (*model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return nil, errors.New("store unavailable")
	}

	key := statsKey(userID, category)
	current, ok := s.records[key]
	if !ok {
		fresh := &model.UserStats{
			UserID:               userID,
			Category:             category,
			TotalSessions:        1,
			CompletedSessions:    1,
			TotalDurationMinutes: durationMinutes,
			StreakDays:           1,
			LastActivity:         now,
			LeaderboardScore:     model.Score(1, durationMinutes, 1),
			LastScoreUpdate:      now,
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		s.records[key] = fresh
		out := *fresh
		return &out, nil
	}

	streak := model.NextStreak(current.StreakDays, current.LastActivity, now)
	current.TotalSessions++
	current.CompletedSessions++
	current.TotalDurationMinutes += durationMinutes
	current.StreakDays = streak
	current.LastActivity = now
	current.LeaderboardScore = model.Score(current.CompletedSessions, current.TotalDurationMinutes, streak)
	current.LastScoreUpdate = now
	current.UpdatedAt = now

	out := *current
	return &out, nil
}

func (s *memStatsStore) DecayStale(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return 0, errors.New("store unavailable")
	}

	cutoff := now.Add(-model.DecayGrace)
	var updated int64
	for _, rec := range s.records {
		if !rec.LastScoreUpdate.Before(cutoff) || rec.LeaderboardScore <= 0 {
			continue
		}
		rec.LeaderboardScore = model.DecayedScore(rec.LeaderboardScore, rec.LastScoreUpdate, now)
		rec.LastScoreUpdate = now
		rec.UpdatedAt = now
		updated++
	}
	return updated, nil
}

func (s *memStatsStore) TopByScore(_ context.Context, category model.Category, limit int64) ([]*model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return nil, errors.New("store unavailable")
	}

	var out []*model.UserStats
	for _, rec := range s.records {
		if category != "" && rec.Category != category {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LeaderboardScore != out[j].LeaderboardScore {
			return out[i].LeaderboardScore > out[j].LeaderboardScore
		}
		return out[i].UserID < out[j].UserID
	})
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStatsStore) ByUser(_ context.Context, userID string, category model.Category) ([]*model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failAll {
		return nil, errors.New("store unavailable")
	}

	var out []*model.UserStats
	for _, rec := range s.records {
		if rec.UserID != userID {
			continue
		}
		if category != "" && rec.Category != category {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

// seed bypasses the completion path so tests can set up arbitrary rows.
func (s *memStatsStore) seed(rec model.UserStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := rec
	s.records[statsKey(rec.UserID, rec.Category)] = &cp
}

func (s *memStatsStore) get(userID string, category model.Category) model.UserStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.records[statsKey(userID, category)]
}

func TestRecordCompletionCreatesRecord(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	rec, err := svc.RecordCompletion(context.Background(), "user-1", model.CategoryPhysical, 35, now)
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}

	if rec.TotalSessions != 1 || rec.CompletedSessions != 1 {
		t.Errorf("counters = %d/%d, want 1/1", rec.TotalSessions, rec.CompletedSessions)
	}
	if rec.TotalDurationMinutes != 35 {
		t.Errorf("duration = %d, want 35", rec.TotalDurationMinutes)
	}
	if rec.StreakDays != 1 {
		t.Errorf("streak = %d, want 1", rec.StreakDays)
	}
	if want := model.Score(1, 35, 1); rec.LeaderboardScore != want {
		t.Errorf("score = %v, want %v", rec.LeaderboardScore, want)
	}
	if !rec.LastScoreUpdate.Equal(now) || !rec.LastActivity.Equal(now) {
		t.Error("timestamps should be set to the completion time")
	}
}

func TestRecordCompletionAccumulates(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	ctx := context.Background()
	day1 := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	if _, err := svc.RecordCompletion(ctx, "user-1", model.CategoryPhysical, 35, day1); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	rec, err := svc.RecordCompletion(ctx, "user-1", model.CategoryPhysical, 25, day2)
	if err != nil {
		t.Fatalf("second completion failed: %v", err)
	}

	if rec.TotalSessions != 2 || rec.CompletedSessions != 2 {
		t.Errorf("counters = %d/%d, want 2/2", rec.TotalSessions, rec.CompletedSessions)
	}
	if rec.TotalDurationMinutes != 60 {
		t.Errorf("duration = %d, want 60", rec.TotalDurationMinutes)
	}
	if rec.StreakDays != 2 {
		t.Errorf("streak = %d, want 2 (consecutive days)", rec.StreakDays)
	}
	// 2*10 + 60/10 + min(2*5, 100)
	if rec.LeaderboardScore != 36 {
		t.Errorf("score = %v, want 36", rec.LeaderboardScore)
	}
}

func TestRecordCompletionStreakResetOnGap(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	store.seed(model.UserStats{
		UserID:               "user-1",
		Category:             model.CategoryMental,
		TotalSessions:        9,
		CompletedSessions:    9,
		TotalDurationMinutes: 200,
		StreakDays:           5,
		LastActivity:         now.Add(-3 * 24 * time.Hour),
		LeaderboardScore:     model.Score(9, 200, 5),
		LastScoreUpdate:      now.Add(-3 * 24 * time.Hour),
	})

	rec, err := svc.RecordCompletion(context.Background(), "user-1", model.CategoryMental, 30, now)
	if err != nil {
		t.Fatalf("RecordCompletion failed: %v", err)
	}
	if rec.StreakDays != 1 {
		t.Errorf("streak = %d, want 1 after a 3-day gap", rec.StreakDays)
	}
}

func TestRecordCompletionSameDayHoldsStreak(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	ctx := context.Background()
	morning := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	evening := morning.Add(9 * time.Hour)

	if _, err := svc.RecordCompletion(ctx, "user-1", model.CategoryLearning, 20, morning); err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	rec, err := svc.RecordCompletion(ctx, "user-1", model.CategoryLearning, 20, evening)
	if err != nil {
		t.Fatalf("second completion failed: %v", err)
	}

	if rec.StreakDays != 1 {
		t.Errorf("streak = %d, want 1 (same-day completions do not stack)", rec.StreakDays)
	}
	if rec.CompletedSessions != 2 {
		t.Errorf("completed = %d, want 2", rec.CompletedSessions)
	}
}

func TestRecordCompletionRejectsBadInput(t *testing.T) {
	svc := NewStatsService(newMemStatsStore(), nil)
	ctx := context.Background()
	now := time.Now()

	if _, err := svc.RecordCompletion(ctx, "", model.CategoryPhysical, 10, now); err == nil {
		t.Error("expected error for empty user ID")
	}
	if _, err := svc.RecordCompletion(ctx, "u", "knitting", 10, now); err == nil {
		t.Error("expected error for unknown category")
	}
	if _, err := svc.RecordCompletion(ctx, "u", model.CategoryPhysical, 0, now); err == nil {
		t.Error("expected error for non-positive duration")
	}
}

func TestSweepAndDecayAppliesDecay(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	store.seed(model.UserStats{
		UserID:           "user-1",
		Category:         model.CategoryPhysical,
		LeaderboardScore: 100,
		LastScoreUpdate:  now.Add(-2 * 24 * time.Hour),
	})

	updated, err := svc.SweepAndDecay(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepAndDecay failed: %v", err)
	}
	if updated != 1 {
		t.Errorf("updated = %d, want 1", updated)
	}

	rec := store.get("user-1", model.CategoryPhysical)
	want := 100 * math.Pow(model.DecayFactor, 2)
	if math.Abs(rec.LeaderboardScore-want) > 1e-9 {
		t.Errorf("score = %v, want %v", rec.LeaderboardScore, want)
	}
	if rec.LeaderboardScore >= 100 {
		t.Error("decayed score must be strictly less than the original")
	}
	if !rec.LastScoreUpdate.Equal(now) {
		t.Error("decay must advance last_score_update")
	}
}

func TestSweepAndDecayExclusions(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	store.seed(model.UserStats{
		UserID:           "fresh",
		Category:         model.CategoryPhysical,
		LeaderboardScore: 50.0,
		LastScoreUpdate:  now.Add(-12 * time.Hour),
	})
	store.seed(model.UserStats{
		UserID:           "zeroed",
		Category:         model.CategoryPhysical,
		LeaderboardScore: 0,
		LastScoreUpdate:  now.Add(-10 * 24 * time.Hour),
	})

	updated, err := svc.SweepAndDecay(context.Background(), now)
	if err != nil {
		t.Fatalf("SweepAndDecay failed: %v", err)
	}
	if updated != 0 {
		t.Errorf("updated = %d, want 0 (both rows are excluded)", updated)
	}

	if got := store.get("fresh", model.CategoryPhysical).LeaderboardScore; got != 50.0 {
		t.Errorf("fresh score = %v, want exactly 50.0", got)
	}
	if got := store.get("zeroed", model.CategoryPhysical).LeaderboardScore; got != 0 {
		t.Errorf("zero score = %v, want 0", got)
	}
}

func TestSweepAndDecayIdempotent(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		store.seed(model.UserStats{
			UserID:           fmt.Sprintf("user-%d", i),
			Category:         model.CategoryMental,
			LeaderboardScore: float64(100 + i),
			LastScoreUpdate:  now.Add(-48 * time.Hour),
		})
	}

	first, err := svc.SweepAndDecay(context.Background(), now)
	if err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if first != 3 {
		t.Errorf("first sweep updated = %d, want 3", first)
	}

	second, err := svc.SweepAndDecay(context.Background(), now)
	if err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if second != 0 {
		t.Errorf("second sweep updated = %d, want 0", second)
	}
}

func TestSweepAndDecayPropagatesErrors(t *testing.T) {
	store := newMemStatsStore()
	store.failAll = true
	svc := NewStatsService(store, nil)

	if _, err := svc.SweepAndDecay(context.Background(), time.Now()); err == nil {
		t.Error("sweep errors must propagate to the scheduler")
	}
}

func TestGetLeaderboardOrderingAndFiltering(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Now()

	store.seed(model.UserStats{UserID: "a", Category: model.CategoryPhysical, LeaderboardScore: 245.75, LastScoreUpdate: now})
	store.seed(model.UserStats{UserID: "b", Category: model.CategoryMental, LeaderboardScore: 150.5, LastScoreUpdate: now})
	store.seed(model.UserStats{UserID: "c", Category: model.CategoryPhysical, LeaderboardScore: 85.25, LastScoreUpdate: now})

	all, err := svc.GetLeaderboard(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].LeaderboardScore > all[i-1].LeaderboardScore {
			t.Error("leaderboard must be ordered by score descending")
		}
	}

	physical, err := svc.GetLeaderboard(context.Background(), model.CategoryPhysical, 0)
	if err != nil {
		t.Fatalf("filtered GetLeaderboard failed: %v", err)
	}
	if len(physical) != 2 {
		t.Fatalf("filtered len = %d, want 2", len(physical))
	}
	if physical[0].UserID != "a" || physical[1].UserID != "c" {
		t.Errorf("filtered order = %s, %s; want a, c", physical[0].UserID, physical[1].UserID)
	}
}

func TestGetLeaderboardLimits(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Now()

	for i := 0; i < 15; i++ {
		store.seed(model.UserStats{
			UserID:           fmt.Sprintf("user-%02d", i),
			Category:         model.CategoryPhysical,
			LeaderboardScore: float64(10 * (i + 1)),
			LastScoreUpdate:  now,
		})
	}

	defaulted, err := svc.GetLeaderboard(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(defaulted) != DefaultLeaderboardLimit {
		t.Errorf("default limit returned %d rows, want %d", len(defaulted), DefaultLeaderboardLimit)
	}

	top2, err := svc.GetLeaderboard(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(top2) != 2 {
		t.Fatalf("limit 2 returned %d rows", len(top2))
	}
	if top2[0].LeaderboardScore != 150 || top2[1].LeaderboardScore != 140 {
		t.Errorf("limit 2 scores = %v, %v; want 150, 140",
			top2[0].LeaderboardScore, top2[1].LeaderboardScore)
	}

	capped, err := svc.GetLeaderboard(context.Background(), "", 500)
	if err != nil {
		t.Fatalf("GetLeaderboard failed: %v", err)
	}
	if len(capped) != 15 {
		t.Errorf("oversized limit returned %d rows, want all 15", len(capped))
	}
}

func TestGetLeaderboardRejectsUnknownCategory(t *testing.T) {
	svc := NewStatsService(newMemStatsStore(), nil)
	if _, err := svc.GetLeaderboard(context.Background(), "knitting", 0); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestGetUserStatsCorrectsStaleStreakOnRead(t *testing.T) {
	store := newMemStatsStore()
	svc := NewStatsService(store, nil)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	store.seed(model.UserStats{
		UserID:           "user-1",
		Category:         model.CategoryPhysical,
		StreakDays:       9,
		LastActivity:     now.Add(-48 * time.Hour),
		LeaderboardScore: 90,
		LastScoreUpdate:  now.Add(-48 * time.Hour),
	})
	store.seed(model.UserStats{
		UserID:           "user-1",
		Category:         model.CategoryMental,
		StreakDays:       4,
		LastActivity:     now.Add(-2 * time.Hour),
		LeaderboardScore: 40,
		LastScoreUpdate:  now.Add(-2 * time.Hour),
	})

	records, err := svc.GetUserStats(context.Background(), "user-1", "", now)
	if err != nil {
		t.Fatalf("GetUserStats failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}

	byCategory := map[model.Category]int{}
	for _, rec := range records {
		byCategory[rec.Category] = rec.StreakDays
	}
	if byCategory[model.CategoryPhysical] != 0 {
		t.Errorf("stale streak = %d, want 0 on read", byCategory[model.CategoryPhysical])
	}
	if byCategory[model.CategoryMental] != 4 {
		t.Errorf("fresh streak = %d, want 4", byCategory[model.CategoryMental])
	}

	// The read must not write the correction back.
	if stored := store.get("user-1", model.CategoryPhysical); stored.StreakDays != 9 {
		t.Errorf("stored streak = %d, want 9 (reads are pure)", stored.StreakDays)
	}
}
