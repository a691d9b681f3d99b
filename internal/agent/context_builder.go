package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vitalis/internal/models"
	"vitalis/internal/services"
	"vitalis/internal/trends"
)

// Lookback windows and fetch sizes for one decision context
const (
	trendLookbackDays = 7
	actionTailSize    = 10
	memoryFactCount   = 10
	streakRiskWindow  = 6.0 // hours remaining below which the streak counts as at risk
)

// HealthContext is the immutable snapshot one decision invocation reasons
// over. Built once per trigger; nothing mutates it afterwards.
type HealthContext struct {
	User  *models.User
	Prefs *models.AgentPreferences

	BPSummary    trends.Summary
	SugarSummary trends.Summary

	Streak        models.StreakState
	StreakAtRisk  bool
	StreakHours   float64 // hours remaining before the streak breaks
	Score         *models.HealthScore
	Goals         []models.Goal
	ActionTail    []models.ActionLogEntry
	MemoryFacts   []models.MemoryFact
	Model         *models.UserModel

	BuiltAt time.Time
}

// ContextBuilder assembles HealthContexts from the stores. Read-only: no
// builder fetch has side effects beyond memory-fact access counting.
type ContextBuilder struct {
	users     *services.UserService
	health    *services.HealthService
	prefs     *services.PreferencesService
	actionLog *services.ActionLogService
	memory    *services.MemoryService
	userModel *services.UserModelService
}

// NewContextBuilder creates a context builder
func NewContextBuilder(
	users *services.UserService,
	health *services.HealthService,
	prefs *services.PreferencesService,
	actionLog *services.ActionLogService,
	memory *services.MemoryService,
	userModel *services.UserModelService,
) *ContextBuilder {
	return &ContextBuilder{
		users:     users,
		health:    health,
		prefs:     prefs,
		actionLog: actionLog,
		memory:    memory,
		userModel: userModel,
	}
}

// Build fetches all context inputs concurrently and assembles the snapshot.
// Any single fetch failure fails the build: deciding on partial context
// risks wrong actions.
func (b *ContextBuilder) Build(ctx context.Context, userID string, now time.Time) (*HealthContext, error) {
	hc := &HealthContext{BuiltAt: now}
	since := now.AddDate(0, 0, -trendLookbackDays)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", name, err)
				}
				mu.Unlock()
			}
		}()
	}

	run("user", func() error {
		user, err := b.users.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return fmt.Errorf("user %s not found", userID)
		}
		hc.User = user
		return nil
	})

	run("preferences", func() error {
		prefs, err := b.prefs.Get(ctx, userID)
		if err != nil {
			return err
		}
		hc.Prefs = prefs
		return nil
	})

	run("blood pressure trend", func() error {
		readings, err := b.health.RecentVitals(ctx, userID, models.MetricBloodPressure, since)
		if err != nil {
			return err
		}
		hc.BPSummary = trends.AnalyzeBloodPressure(readings)
		return nil
	})

	run("blood sugar trend", func() error {
		readings, err := b.health.RecentVitals(ctx, userID, models.MetricBloodSugar, since)
		if err != nil {
			return err
		}
		hc.SugarSummary = trends.AnalyzeBloodSugar(readings)
		return nil
	})

	run("streak", func() error {
		streak, err := b.health.Streak(ctx, userID, now)
		if err != nil {
			return err
		}
		hc.Streak = streak
		return nil
	})

	run("score", func() error {
		score, err := b.health.LatestScore(ctx, userID)
		if err != nil {
			return err
		}
		hc.Score = score
		return nil
	})

	run("goals", func() error {
		goals, err := b.health.ActiveGoals(ctx, userID)
		if err != nil {
			return err
		}
		hc.Goals = goals
		return nil
	})

	run("action log", func() error {
		tail, err := b.actionLog.RecentTail(ctx, userID, actionTailSize)
		if err != nil {
			return err
		}
		hc.ActionTail = tail
		return nil
	})

	run("memory facts", func() error {
		facts, err := b.memory.TopFacts(ctx, userID, memoryFactCount)
		if err != nil {
			return err
		}
		hc.MemoryFacts = facts
		return nil
	})

	run("user model", func() error {
		model, err := b.userModel.Get(ctx, userID)
		if err != nil {
			return err
		}
		hc.Model = model
		return nil
	})

	wg.Wait()
	if firstErr != nil {
		return nil, fmt.Errorf("failed to build health context: %w", firstErr)
	}

	hc.StreakHours = hc.Streak.AtRiskHours(now)
	hc.StreakAtRisk = hc.Streak.Current > 0 && hc.StreakHours > 0 && hc.StreakHours <= streakRiskWindow

	return hc, nil
}
