package learning

import (
	"context"
	"fmt"
	"log"
	"time"

	"vitalis/internal/logging"
	"vitalis/internal/models"
	"vitalis/internal/services"
)

// Miner input window
const windowDays = 30

// Service runs the learning path: fetch 30-day windows, run the miners,
// merge the results.
type Service struct {
	users     *services.UserService
	health    *services.HealthService
	actionLog *services.ActionLogService
	outcomes  *services.OutcomeService
	updater   *Updater
}

// NewService creates the learning service
func NewService(
	users *services.UserService,
	health *services.HealthService,
	actionLog *services.ActionLogService,
	outcomes *services.OutcomeService,
	updater *Updater,
) *Service {
	return &Service{
		users:     users,
		health:    health,
		actionLog: actionLog,
		outcomes:  outcomes,
		updater:   updater,
	}
}

// UserResult is one user's outcome in a batch run
type UserResult struct {
	UserID string `json:"user_id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// RunUser executes one user's learning run end to end
func (s *Service) RunUser(ctx context.Context, userID string) error {
	logger := logging.WithLearningRun(userID)
	start := time.Now()
	since := start.UTC().AddDate(0, 0, -windowDays)

	outcomes, err := s.outcomes.WindowForUser(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("failed to load outcomes: %w", err)
	}
	logs, err := s.health.HealthLogsSince(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("failed to load health logs: %w", err)
	}
	actions, err := s.actionLog.EntriesSince(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("failed to load action log: %w", err)
	}
	streak, err := s.health.Streak(ctx, userID, start.UTC())
	if err != nil {
		return fmt.Errorf("failed to load streak: %w", err)
	}

	upd := models.UserModelUpdate{
		EngagementPatterns: MineEngagement(outcomes),
		HealthPriorities:   MinePriorities(logs),
		SuccessPatterns:    MineSuccess(actions, logs),
		PainPoints:         MinePainPoints(outcomes, streak),
	}

	if err := s.updater.Apply(ctx, userID, upd); err != nil {
		return err
	}

	logger.Info("learning run complete",
		"outcomes", len(outcomes),
		"health_logs", len(logs),
		"actions", len(actions),
		"duration_ms", time.Since(start).Milliseconds())
	return nil
}

// RunBatch runs every onboarded user. One user's failure (or panic) never
// stops the rest; the per-user results go back to the caller.
func (s *Service) RunBatch(ctx context.Context) ([]UserResult, error) {
	userIDs, err := s.users.OnboardedUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users for learning batch: %w", err)
	}

	log.Printf("🧠 [LEARNING] Starting batch over %d users", len(userIDs))

	results := make([]UserResult, 0, len(userIDs))
	for _, userID := range userIDs {
		result := UserResult{UserID: userID, OK: true}
		if err := s.runUserSafe(ctx, userID); err != nil {
			result.OK = false
			result.Error = err.Error()
			log.Printf("⚠️ [LEARNING] Run failed for user %s: %v", userID, err)
		}
		if m := services.GetMetrics(); m != nil {
			outcome := "success"
			if !result.OK {
				outcome = "error"
			}
			m.LearningRuns.WithLabelValues(outcome).Inc()
		}
		results = append(results, result)
	}

	log.Printf("✅ [LEARNING] Batch complete (%d users)", len(results))
	return results, nil
}

// runUserSafe converts a per-user panic into an error so the batch survives
func (s *Service) runUserSafe(ctx context.Context, userID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("learning run panicked: %v", r)
		}
	}()
	return s.RunUser(ctx, userID)
}
