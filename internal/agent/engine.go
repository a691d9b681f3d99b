// Package agent implements the decision path: one stateless
// context-decide-act pass per trigger.
package agent

import (
	"context"
	"fmt"
	"time"

	"vitalis/internal/logging"
	"vitalis/internal/models"
	"vitalis/internal/services"
)

// Engine runs one decision invocation per trigger. It holds no per-user
// state: everything an invocation needs is fetched fresh into a
// HealthContext, and everything it decides lands in the stores.
type Engine struct {
	builder    *ContextBuilder
	completion *CompletionClient
	executor   *Executor
	model      string // completion model name; empty means provider default
	maxActions int
}

// NewEngine creates a decision engine
func NewEngine(builder *ContextBuilder, completion *CompletionClient, executor *Executor, model string, maxActions int) *Engine {
	if maxActions <= 0 {
		maxActions = 2
	}
	return &Engine{
		builder:    builder,
		completion: completion,
		executor:   executor,
		model:      model,
		maxActions: maxActions,
	}
}

// RunTrigger executes one full decision pass. A completion failure or
// timeout fails the whole invocation with zero side effects; there is no
// in-process retry — triggers recur.
func (e *Engine) RunTrigger(ctx context.Context, userID, triggerType string, triggerPayload map[string]any) (*models.DecisionResponse, error) {
	logger := logging.WithInvocation(userID, triggerType)
	now := time.Now().UTC()
	start := now

	outcome := "error"
	defer func() {
		if m := services.GetMetrics(); m != nil {
			m.DecisionInvocations.WithLabelValues(triggerType, outcome).Inc()
			m.DecisionLatency.Observe(time.Since(start).Seconds())
		}
	}()

	hc, err := e.builder.Build(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	logger.Info("decision context built",
		"streak", hc.Streak.Current,
		"bp_status", hc.BPSummary.Status,
		"sugar_status", hc.SugarSummary.Status,
		"autonomy", hc.Prefs.AutonomyLevel)

	messages := composeMessages(hc, triggerType, triggerPayload, now)
	tools := ToolSchemas(hc.Prefs.AutonomyLevel)

	completion, err := e.completion.Complete(ctx, e.model, messages, tools)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	triggerReason := fmt.Sprintf("trigger: %s", triggerType)
	calls := completion.ToolCalls
	if len(calls) > e.maxActions {
		logger.Warn("model proposed too many actions, truncating",
			"proposed", len(calls), "max", e.maxActions)
		calls = calls[:e.maxActions]
	}

	response := &models.DecisionResponse{
		Success:  true,
		Analysis: completion.Content,
		Actions:  []models.ActionResult{},
		Context: models.ContextSnapshot{
			Streak:     hc.Streak.Current,
			BPTrend:    hc.BPSummary.Trend,
			SugarTrend: hc.SugarSummary.Trend,
		},
	}
	if hc.Score != nil {
		response.Context.Score = hc.Score.Score
	}

	for _, raw := range calls {
		parsed, err := ParseToolCall(raw.Name, raw.Arguments)
		if err != nil {
			response.Actions = append(response.Actions, models.ActionResult{
				Tool:  raw.Name,
				Args:  raw.Arguments,
				Error: err.Error(),
			})
			continue
		}
		result := e.executor.Execute(ctx, hc, parsed, triggerType, triggerReason, now)
		response.Actions = append(response.Actions, result)
	}

	executed := 0
	for _, a := range response.Actions {
		if a.Success {
			executed++
		}
	}
	logger.Info("decision invocation complete",
		"proposed", len(completion.ToolCalls),
		"executed", executed,
		"duration_ms", time.Since(start).Milliseconds())

	outcome = "success"
	return response, nil
}
