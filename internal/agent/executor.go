package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"vitalis/internal/models"
	"vitalis/internal/services"
)

// Executor carries out parsed tool calls. Read tools are answered from the
// prebuilt HealthContext; write tools pass the guardrail gate, apply their
// effect, then append exactly one action-log entry (effect first, log
// second). Blocked calls touch no state.
type Executor struct {
	health    *services.HealthService
	nudges    *services.NudgeService
	actionLog *services.ActionLogService
	tasks     *services.TaskService
	events    *services.EventService
}

// NewExecutor creates a tool executor
func NewExecutor(
	health *services.HealthService,
	nudges *services.NudgeService,
	actionLog *services.ActionLogService,
	tasks *services.TaskService,
	events *services.EventService,
) *Executor {
	return &Executor{
		health:    health,
		nudges:    nudges,
		actionLog: actionLog,
		tasks:     tasks,
		events:    events,
	}
}

// Execute runs one parsed call and reports its outcome. Errors are captured
// in the result, never returned: one failing action must not abort its
// siblings.
func (e *Executor) Execute(ctx context.Context, hc *HealthContext, call ParsedCall, triggerType, triggerReason string, now time.Time) models.ActionResult {
	result := models.ActionResult{Tool: call.Name, Args: call.Raw}

	if !call.IsWrite() {
		answer, err := e.answerReadTool(hc, call, now)
		if err != nil {
			result.Error = err.Error()
			return result
		}
		result.Success = true
		result.Result = answer
		return result
	}

	userID := hc.User.UserID

	counts, err := e.loadCounts(ctx, userID, now)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read action counts: %v", err)
		return result
	}

	decision := EvaluateGuardrails(call.Name, hc.Prefs, now, counts)
	if !decision.Allowed {
		log.Printf("🚫 [GUARDRAIL] Blocked %s for user %s: %s", call.Name, userID, decision.Reason)
		if m := services.GetMetrics(); m != nil {
			m.ActionsBlocked.WithLabelValues(call.Name, decision.Code).Inc()
		}
		result.Blocked = true
		result.Reason = decision.Reason
		return result
	}

	payload, effectErr := e.applyEffect(ctx, hc, call, now)

	entry := &models.ActionLogEntry{
		UserID:        userID,
		ActionType:    call.ActionType(),
		Payload:       payload,
		TriggerReason: triggerReason,
		TriggerType:   triggerType,
		Status:        models.ActionStatusExecuted,
	}
	if effectErr != nil {
		entry.Status = models.ActionStatusFailed
		entry.Payload = map[string]any{"error": effectErr.Error()}
	}
	if logErr := e.actionLog.Append(ctx, entry); logErr != nil {
		// The effect already happened; losing the log entry is the worse
		// failure, so surface it loudly.
		log.Printf("❌ [TOOL-EXEC] Failed to append action log for %s (user %s): %v", call.Name, userID, logErr)
	}

	if effectErr != nil {
		result.Error = effectErr.Error()
		return result
	}

	if m := services.GetMetrics(); m != nil {
		m.ActionsExecuted.WithLabelValues(call.Name).Inc()
	}
	e.events.PublishAction(ctx, userID, entry.ActionType, payload)

	log.Printf("✅ [TOOL-EXEC] Executed %s for user %s", call.Name, userID)
	result.Success = true
	result.Result = "ok"
	return result
}

func (e *Executor) loadCounts(ctx context.Context, userID string, now time.Time) (ActionCounts, error) {
	nudges, err := e.actionLog.CountByTypeSince(ctx, userID, models.ActionNudge, now.Add(-24*time.Hour))
	if err != nil {
		return ActionCounts{}, err
	}
	adjustments, err := e.actionLog.CountByTypeSince(ctx, userID, models.ActionGoalAdjustment, now.AddDate(0, 0, -7))
	if err != nil {
		return ActionCounts{}, err
	}
	return ActionCounts{NudgesLast24h: nudges, GoalAdjustmentsLast7d: adjustments}, nil
}

// answerReadTool serves read tools from the snapshot: no second model call,
// no extra queries.
func (e *Executor) answerReadTool(hc *HealthContext, call ParsedCall, now time.Time) (string, error) {
	var payload any

	switch call.Name {
	case ToolGetHealthSummary:
		summary := map[string]any{
			"streak_days":  hc.Streak.Current,
			"active_goals": hc.Goals,
		}
		if hc.Score != nil {
			summary["health_score"] = hc.Score.Score
		}
		payload = summary

	case ToolGetRecentTrends:
		payload = map[string]any{
			"blood_pressure": hc.BPSummary,
			"blood_sugar":    hc.SugarSummary,
		}

	case ToolCheckStreakRisk:
		payload = map[string]any{
			"streak_days":     hc.Streak.Current,
			"at_risk":         hc.StreakAtRisk,
			"hours_remaining": hc.StreakHours,
		}

	default:
		return "", fmt.Errorf("unknown read tool %q", call.Name)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal read result: %w", err)
	}
	return string(data), nil
}

// applyEffect performs the write tool's side effect and returns the payload
// recorded in the action log.
func (e *Executor) applyEffect(ctx context.Context, hc *HealthContext, call ParsedCall, now time.Time) (map[string]any, error) {
	userID := hc.User.UserID

	switch call.Name {
	case ToolSendNudge:
		n := &models.Nudge{
			UserID:   userID,
			Message:  call.Nudge.Message,
			Category: call.Nudge.Category,
			Urgency:  call.Nudge.Urgency,
		}
		if err := e.nudges.InsertNudge(ctx, n); err != nil {
			return nil, err
		}
		return map[string]any{
			"message":  n.Message,
			"category": n.Category,
			"urgency":  n.Urgency,
		}, nil

	case ToolCelebrate:
		exists, err := e.nudges.HasAchievement(ctx, userID, call.Celebrate.AchievementType)
		if err != nil {
			return nil, err
		}
		if !exists {
			a := &models.Achievement{
				UserID:          userID,
				AchievementType: call.Celebrate.AchievementType,
				Message:         call.Celebrate.Message,
			}
			if err := e.nudges.InsertAchievement(ctx, a); err != nil {
				return nil, err
			}
		}
		// The congratulatory nudge goes out either way
		n := &models.Nudge{
			UserID:   userID,
			Message:  call.Celebrate.Message,
			Category: "celebration",
			Urgency:  models.NudgeUrgencyLow,
		}
		if err := e.nudges.InsertNudge(ctx, n); err != nil {
			return nil, err
		}
		return map[string]any{
			"achievement_type": call.Celebrate.AchievementType,
			"message":          call.Celebrate.Message,
			"already_earned":   exists,
		}, nil

	case ToolAdjustGoal:
		goal, err := e.health.ActiveGoalByType(ctx, userID, call.AdjustGoal.GoalType)
		if err != nil {
			return nil, err
		}
		auditNote := fmt.Sprintf("agent adjustment: previous target %.2f; %s", goal.Target, call.AdjustGoal.Reason)
		if err := e.health.AdjustGoalTarget(ctx, goal.ID, call.AdjustGoal.NewTarget, auditNote); err != nil {
			return nil, err
		}
		return map[string]any{
			"goal_type":       call.AdjustGoal.GoalType,
			"previous_target": goal.Target,
			"new_target":      call.AdjustGoal.NewTarget,
			"reason":          call.AdjustGoal.Reason,
		}, nil

	case ToolScheduleFollowup:
		task := &models.ScheduledTask{
			UserID:       userID,
			TaskType:     call.Followup.CheckType,
			ScheduledFor: now.Add(time.Duration(call.Followup.DelayHours) * time.Hour),
		}
		if call.Followup.Message != "" {
			task.Payload = map[string]any{"message": call.Followup.Message}
		}
		if err := e.tasks.Schedule(ctx, task); err != nil {
			return nil, err
		}
		return map[string]any{
			"check_type":    task.TaskType,
			"scheduled_for": task.ScheduledFor,
			"message":       call.Followup.Message,
		}, nil

	case ToolEscalateConcern:
		n := &models.Nudge{
			UserID:   userID,
			Message:  fmt.Sprintf("[%s] %s", call.Escalate.ConcernType, call.Escalate.Recommendation),
			Category: "escalation",
			Urgency:  models.NudgeUrgencyHigh,
			IsAlert:  true,
		}
		if err := e.nudges.InsertNudge(ctx, n); err != nil {
			return nil, err
		}
		return map[string]any{
			"concern_type":   call.Escalate.ConcernType,
			"severity":       call.Escalate.Severity,
			"recommendation": call.Escalate.Recommendation,
		}, nil
	}

	return nil, fmt.Errorf("unknown write tool %q", call.Name)
}
