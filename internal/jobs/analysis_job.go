package jobs

import (
	"context"
	"log"

	"vitalis/internal/agent"
	"vitalis/internal/services"
)

// AnalysisJob fans a scheduled analysis trigger out to every onboarded
// user. The same job type serves morning and evening analysis; only the
// trigger type differs.
type AnalysisJob struct {
	users       *services.UserService
	engine      *agent.Engine
	triggerType string
}

// NewAnalysisJob creates an analysis fan-out job for the given trigger type
func NewAnalysisJob(users *services.UserService, engine *agent.Engine, triggerType string) *AnalysisJob {
	return &AnalysisJob{
		users:       users,
		engine:      engine,
		triggerType: triggerType,
	}
}

// Run invokes the decision path once per onboarded user. One user's failed
// invocation never stops the fan-out.
func (j *AnalysisJob) Run(ctx context.Context) error {
	userIDs, err := j.users.OnboardedUserIDs(ctx)
	if err != nil {
		return err
	}

	failed := 0
	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if _, err := j.engine.RunTrigger(ctx, userID, j.triggerType, nil); err != nil {
			failed++
			log.Printf("⚠️ [ANALYSIS-JOB] %s failed for user %s: %v", j.triggerType, userID, err)
		}
	}

	log.Printf("☀️ [ANALYSIS-JOB] %s fan-out complete: %d users, %d failed",
		j.triggerType, len(userIDs), failed)
	return nil
}
