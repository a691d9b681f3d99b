package agent

import (
	"fmt"
	"time"

	"vitalis/internal/models"
)

// ActionCounts are the rolling-window counts read from the action log before
// guardrail evaluation. The action log is the sole authority for these.
type ActionCounts struct {
	NudgesLast24h         int
	GoalAdjustmentsLast7d int
}

// Coarse denial categories, used as the metric label so reason text stays
// free-form without blowing up label cardinality
const (
	DenyAutonomy    = "autonomy"
	DenyDisabled    = "disabled"
	DenyQuietHours  = "quiet_hours"
	DenyQuota       = "quota"
	DenyUnknownTool = "unknown_tool"
)

// Decision is one guardrail verdict
type Decision struct {
	Allowed bool
	Code    string // Denial category; empty when allowed
	Reason  string // Human-readable denial reason; empty when allowed
}

var allow = Decision{Allowed: true}

func deny(code, reason string) Decision {
	return Decision{Allowed: false, Code: code, Reason: reason}
}

// EvaluateGuardrails decides whether a write action may run. Pure function:
// no I/O, no clock reads. Checks run in a fixed order — autonomy level,
// per-action toggle, quiet hours, frequency caps — and the first failure
// wins.
//
// The autonomy check repeats what tool advertisement already restricts. The
// completion service can return a tool it was never offered, so the level
// must hold here even when the schema filtering is bypassed.
//
// Escalations are exempt from quiet hours: a concerning pattern at 3am is
// exactly what the alert path exists for.
func EvaluateGuardrails(toolName string, prefs *models.AgentPreferences, now time.Time, counts ActionCounts) Decision {
	switch prefs.AutonomyLevel {
	case models.AutonomyMinimal:
		return deny(DenyAutonomy, "autonomy level minimal permits no write actions")
	case models.AutonomyBalanced:
		if toolName == ToolAdjustGoal {
			return deny(DenyAutonomy, "goal adjustment requires full autonomy")
		}
	case models.AutonomyFull:
	default:
		return deny(DenyAutonomy, fmt.Sprintf("unrecognized autonomy level %q", prefs.AutonomyLevel))
	}

	switch toolName {
	case ToolSendNudge:
		if !prefs.NudgesEnabled {
			return deny(DenyDisabled, "nudges are disabled in agent preferences")
		}
	case ToolCelebrate:
		if !prefs.CelebrationsEnabled {
			return deny(DenyDisabled, "celebrations are disabled in agent preferences")
		}
	case ToolAdjustGoal:
		if !prefs.GoalAdjustEnabled {
			return deny(DenyDisabled, "goal adjustments are disabled in agent preferences")
		}
	case ToolEscalateConcern:
		if !prefs.EscalationsEnabled {
			return deny(DenyDisabled, "escalations are disabled in agent preferences")
		}
	case ToolScheduleFollowup:
		// No toggle: scheduling a follow-up delivers nothing to the user
	default:
		return deny(DenyUnknownTool, fmt.Sprintf("tool %s is not a recognized write action", toolName))
	}

	if toolName != ToolEscalateConcern && inQuietHours(now.Hour(), prefs.QuietHoursStart, prefs.QuietHoursEnd) {
		return deny(DenyQuietHours, fmt.Sprintf("quiet hours are active (%02d:00-%02d:00)", prefs.QuietHoursStart, prefs.QuietHoursEnd))
	}

	switch toolName {
	case ToolSendNudge:
		if counts.NudgesLast24h >= prefs.MaxNudgesPerDay {
			return deny(DenyQuota, fmt.Sprintf("nudge limit reached (%d per 24h)", prefs.MaxNudgesPerDay))
		}
	case ToolAdjustGoal:
		if counts.GoalAdjustmentsLast7d >= prefs.MaxGoalAdjustmentsPerWeek {
			return deny(DenyQuota, fmt.Sprintf("goal adjustment limit reached (%d per 7d)", prefs.MaxGoalAdjustmentsPerWeek))
		}
	}

	return allow
}

// inQuietHours reports whether hour falls inside [start, end). A start after
// the end means the window wraps midnight (22 → 7 covers 22:00-06:59).
// Start == end means quiet hours are disabled.
func inQuietHours(hour, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
