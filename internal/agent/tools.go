package agent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"vitalis/internal/models"
)

// Tool names advertised to the completion model. This set is closed: any
// other name in a model response is rejected at parse time.
const (
	ToolGetHealthSummary = "get_health_summary"
	ToolGetRecentTrends  = "get_recent_trends"
	ToolCheckStreakRisk  = "check_streak_risk"
	ToolSendNudge        = "auto_send_nudge"
	ToolCelebrate        = "auto_celebrate"
	ToolAdjustGoal       = "auto_adjust_goal"
	ToolScheduleFollowup = "schedule_followup"
	ToolEscalateConcern  = "escalate_concern"
)

// NudgeArgs are the arguments of auto_send_nudge
type NudgeArgs struct {
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
	Urgency  string `json:"urgency,omitempty"`
}

// CelebrateArgs are the arguments of auto_celebrate
type CelebrateArgs struct {
	AchievementType string `json:"achievement_type"`
	Message         string `json:"message"`
}

// AdjustGoalArgs are the arguments of auto_adjust_goal
type AdjustGoalArgs struct {
	GoalType  string  `json:"goal_type"`
	NewTarget float64 `json:"new_target"`
	Reason    string  `json:"reason"`
}

// FollowupArgs are the arguments of schedule_followup
type FollowupArgs struct {
	CheckType  string `json:"check_type"`
	DelayHours int    `json:"delay_hours"`
	Message    string `json:"message,omitempty"`
}

// EscalateArgs are the arguments of escalate_concern
type EscalateArgs struct {
	ConcernType    string `json:"concern_type"`
	Severity       string `json:"severity"`
	Recommendation string `json:"recommendation"`
}

// ParsedCall is the decoded form of one model tool call. Exactly one args
// pointer is set for write tools; read tools carry no arguments.
type ParsedCall struct {
	Name string
	Raw  json.RawMessage

	Nudge      *NudgeArgs
	Celebrate  *CelebrateArgs
	AdjustGoal *AdjustGoalArgs
	Followup   *FollowupArgs
	Escalate   *EscalateArgs
}

// IsWrite reports whether the call has side effects
func (c ParsedCall) IsWrite() bool {
	switch c.Name {
	case ToolSendNudge, ToolCelebrate, ToolAdjustGoal, ToolScheduleFollowup, ToolEscalateConcern:
		return true
	}
	return false
}

// ActionType maps a write tool to its action-log action type
func (c ParsedCall) ActionType() string {
	switch c.Name {
	case ToolSendNudge:
		return models.ActionNudge
	case ToolCelebrate:
		return models.ActionCelebration
	case ToolAdjustGoal:
		return models.ActionGoalAdjustment
	case ToolScheduleFollowup:
		return models.ActionFollowup
	case ToolEscalateConcern:
		return models.ActionEscalation
	}
	return ""
}

// ParseToolCall validates and decodes one raw tool call from the model.
// Unknown tools and malformed arguments fail here, before any guardrail or
// effect runs.
func ParseToolCall(name string, args json.RawMessage) (ParsedCall, error) {
	call := ParsedCall{Name: name, Raw: args}

	decode := func(dst any) error {
		if len(args) == 0 {
			args = json.RawMessage("{}")
		}
		dec := json.NewDecoder(bytes.NewReader(args))
		if err := dec.Decode(dst); err != nil {
			return fmt.Errorf("tool %s: invalid arguments: %w", name, err)
		}
		return nil
	}

	switch name {
	case ToolGetHealthSummary, ToolGetRecentTrends, ToolCheckStreakRisk:
		return call, nil

	case ToolSendNudge:
		a := &NudgeArgs{}
		if err := decode(a); err != nil {
			return call, err
		}
		if a.Message == "" {
			return call, fmt.Errorf("tool %s: message is required", name)
		}
		switch a.Urgency {
		case "", models.NudgeUrgencyLow, models.NudgeUrgencyNormal, models.NudgeUrgencyHigh:
		default:
			return call, fmt.Errorf("tool %s: invalid urgency %q", name, a.Urgency)
		}
		call.Nudge = a
		return call, nil

	case ToolCelebrate:
		a := &CelebrateArgs{}
		if err := decode(a); err != nil {
			return call, err
		}
		if a.AchievementType == "" || a.Message == "" {
			return call, fmt.Errorf("tool %s: achievement_type and message are required", name)
		}
		call.Celebrate = a
		return call, nil

	case ToolAdjustGoal:
		a := &AdjustGoalArgs{}
		if err := decode(a); err != nil {
			return call, err
		}
		if a.GoalType == "" {
			return call, fmt.Errorf("tool %s: goal_type is required", name)
		}
		if a.NewTarget <= 0 {
			return call, fmt.Errorf("tool %s: new_target must be positive", name)
		}
		call.AdjustGoal = a
		return call, nil

	case ToolScheduleFollowup:
		a := &FollowupArgs{}
		if err := decode(a); err != nil {
			return call, err
		}
		if a.DelayHours <= 0 {
			return call, fmt.Errorf("tool %s: delay_hours must be positive", name)
		}
		if a.CheckType == "" {
			a.CheckType = "followup_check"
		}
		call.Followup = a
		return call, nil

	case ToolEscalateConcern:
		a := &EscalateArgs{}
		if err := decode(a); err != nil {
			return call, err
		}
		if a.ConcernType == "" {
			return call, fmt.Errorf("tool %s: concern_type is required", name)
		}
		if a.Recommendation == "" {
			return call, fmt.Errorf("tool %s: recommendation is required", name)
		}
		call.Escalate = a
		return call, nil
	}

	return call, fmt.Errorf("unknown tool %q", name)
}

// ToolSchemas returns the OpenAI-style tool definitions advertised for an
// autonomy level. Minimal gets read-only tools; balanced gets everything but
// goal adjustment; full gets the whole set. Restricting the advertised list
// is the first enforcement layer — the guardrail evaluator is the second.
func ToolSchemas(autonomyLevel string) []map[string]any {
	read := []map[string]any{
		toolDef(ToolGetHealthSummary, "Get the user's current health summary: streak, score, and active goals.", map[string]any{}),
		toolDef(ToolGetRecentTrends, "Get the user's blood pressure and blood sugar trend summaries over the last 7 days.", map[string]any{}),
		toolDef(ToolCheckStreakRisk, "Check whether the user's logging streak is at risk of breaking and how many hours remain.", map[string]any{}),
	}

	if autonomyLevel == models.AutonomyMinimal {
		return read
	}

	write := []map[string]any{
		toolDef(ToolSendNudge, "Send the user a short proactive health nudge.", map[string]any{
			"message":  prop("string", "The nudge text shown to the user"),
			"category": prop("string", "Topic category, e.g. hydration, blood_pressure, streak"),
			"urgency":  prop("string", "low, normal, or high"),
		}, "message"),
		toolDef(ToolCelebrate, "Celebrate a milestone the user just reached. Skipped if already celebrated.", map[string]any{
			"achievement_type": prop("string", "Stable identifier, e.g. streak_7_days"),
			"message":          prop("string", "The celebration text shown to the user"),
		}, "achievement_type", "message"),
		toolDef(ToolScheduleFollowup, "Schedule a follow-up check on this user after a delay.", map[string]any{
			"check_type":  prop("string", "Kind of follow-up, e.g. followup_check"),
			"delay_hours": prop("integer", "Hours from now to run the follow-up"),
			"message":     prop("string", "Optional note carried to the follow-up"),
		}, "delay_hours"),
		toolDef(ToolEscalateConcern, "Raise a high-visibility alert about a concerning health pattern.", map[string]any{
			"concern_type":   prop("string", "Kind of concerning pattern, e.g. bp_trend_worsening"),
			"severity":       prop("string", "Severity hint, e.g. moderate or urgent"),
			"recommendation": prop("string", "What the user should do, shown in the alert"),
		}, "concern_type", "recommendation"),
	}

	tools := append(read, write...)

	if autonomyLevel == models.AutonomyFull {
		tools = append(tools, toolDef(ToolAdjustGoal, "Adjust the target of the user's active goal of a given type.", map[string]any{
			"goal_type":  prop("string", "Goal type, e.g. water, sleep"),
			"new_target": prop("number", "The new target value"),
			"reason":     prop("string", "Why the target is being changed"),
		}, "goal_type", "new_target", "reason"))
	}

	return tools
}

func toolDef(name, description string, properties map[string]any, required ...string) map[string]any {
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type": "function",
		"function": map[string]any{
			"name":        name,
			"description": description,
			"parameters": map[string]any{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}
