package jobs

import (
	"context"
	"log"
	"time"

	"vitalis/internal/agent"
	"vitalis/internal/models"
	"vitalis/internal/services"
)

const dispatchBatchSize = 50

// FollowupDispatcher drains the scheduled-task queue. Each due task becomes
// one decision-path invocation with a "scheduled" trigger carrying the task
// context. MarkDispatched claims the task before dispatch, so a task that
// loses the claim race is simply skipped.
type FollowupDispatcher struct {
	tasks  *services.TaskService
	engine *agent.Engine
}

// NewFollowupDispatcher creates a new follow-up dispatcher
func NewFollowupDispatcher(tasks *services.TaskService, engine *agent.Engine) *FollowupDispatcher {
	return &FollowupDispatcher{
		tasks:  tasks,
		engine: engine,
	}
}

// Run dispatches all tasks whose scheduled time has passed
func (d *FollowupDispatcher) Run(ctx context.Context) error {
	due, err := d.tasks.DuePending(ctx, time.Now().UTC(), dispatchBatchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return nil
	}

	dispatched := 0
	for _, task := range due {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		claimed, err := d.tasks.MarkDispatched(ctx, task.ID)
		if err != nil {
			log.Printf("⚠️ [DISPATCHER] Failed to claim task %s: %v", task.ID.Hex(), err)
			continue
		}
		if !claimed {
			continue
		}

		payload := map[string]any{
			"task_id":       task.ID.Hex(),
			"task_type":     task.TaskType,
			"scheduled_for": task.ScheduledFor.Format(time.RFC3339),
		}
		for k, v := range task.Payload {
			payload[k] = v
		}

		if _, err := d.engine.RunTrigger(ctx, task.UserID, models.TriggerScheduled, payload); err != nil {
			// The task stays dispatched: a failed invocation is an agent
			// outcome, not a reason to re-deliver the follow-up later.
			log.Printf("⚠️ [DISPATCHER] Task %s trigger failed for user %s: %v",
				task.ID.Hex(), task.UserID, err)
			continue
		}
		dispatched++
	}

	log.Printf("📬 [DISPATCHER] Dispatched %d/%d due tasks", dispatched, len(due))
	return nil
}
