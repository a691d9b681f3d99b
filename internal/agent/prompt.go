package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vitalis/internal/models"
)

const systemPromptBase = `You are a proactive health care agent for one user of a personal health tracker.
You observe the user's vitals, trends, logging streak, and goals, and decide whether any action is worth taking right now.
Ground every action in the data you are given. Prefer doing nothing over acting on weak evidence.
Never give medical diagnoses. For concerning vital patterns, escalate rather than advise.`

// autonomyInstructions maps each autonomy level to its behavior block
var autonomyInstructions = map[string]string{
	models.AutonomyMinimal: `Autonomy: MINIMAL. You may only observe and summarize. You have read-only tools; take no actions.`,
	models.AutonomyBalanced: `Autonomy: BALANCED. You may send nudges, celebrate milestones, schedule follow-ups, and escalate concerns.
You must not adjust goals. Take at most 2 actions, and only when the data clearly warrants them.`,
	models.AutonomyFull: `Autonomy: FULL. All tools are available, including goal adjustment.
Take at most 2 actions, and only when the data clearly warrants them. Adjust a goal only with a strong pattern behind it.`,
}

// composeMessages builds the single prompt for one decision invocation
func composeMessages(hc *HealthContext, triggerType string, triggerPayload map[string]any, now time.Time) []ChatMessage {
	system := systemPromptBase + "\n\n" + autonomyInstructions[hc.Prefs.AutonomyLevel]

	var b strings.Builder

	fmt.Fprintf(&b, "Current time: %s (hour %d)\n\n", now.Format(time.RFC3339), now.Hour())

	fmt.Fprintf(&b, "## User\nName: %s\n", hc.User.Name)
	if len(hc.User.Conditions) > 0 {
		fmt.Fprintf(&b, "Self-reported conditions: %s\n", strings.Join(hc.User.Conditions, ", "))
	}

	b.WriteString("\n## Vitals (last 7 days)\n")
	fmt.Fprintf(&b, "Blood pressure: status=%s trend=%s samples=%d", hc.BPSummary.Status, hc.BPSummary.Trend, hc.BPSummary.SampleCount)
	if len(hc.BPSummary.Averages) > 0 {
		fmt.Fprintf(&b, " avg=%.0f/%.0f", hc.BPSummary.Averages["systolic"], hc.BPSummary.Averages["diastolic"])
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Blood sugar: status=%s trend=%s samples=%d", hc.SugarSummary.Status, hc.SugarSummary.Trend, hc.SugarSummary.SampleCount)
	if len(hc.SugarSummary.Averages) > 0 {
		fmt.Fprintf(&b, " avg=%.0f mg/dL", hc.SugarSummary.Averages["glucose"])
	}
	b.WriteString("\n")

	b.WriteString("\n## Engagement\n")
	fmt.Fprintf(&b, "Logging streak: %d days", hc.Streak.Current)
	if hc.StreakAtRisk {
		fmt.Fprintf(&b, " (AT RISK: %.1f hours left to log)", hc.StreakHours)
	}
	b.WriteString("\n")
	if hc.Score != nil {
		fmt.Fprintf(&b, "Health score: %.0f\n", hc.Score.Score)
	}

	if len(hc.Goals) > 0 {
		b.WriteString("\n## Active goals\n")
		for _, g := range hc.Goals {
			fmt.Fprintf(&b, "- %s: target %.1f %s\n", g.GoalType, g.Target, g.Unit)
		}
	}

	if len(hc.MemoryFacts) > 0 {
		b.WriteString("\n## What you have learned about this user\n")
		for _, f := range hc.MemoryFacts {
			value, _ := json.Marshal(f.Value)
			fmt.Fprintf(&b, "- [%s] %s = %s (confidence %.2f)\n", f.MemoryType, f.Key, value, f.Confidence)
		}
	}

	if hc.Model != nil {
		writeModelSummary(&b, hc.Model)
	}

	if len(hc.ActionTail) > 0 {
		b.WriteString("\n## Your recent actions (newest first)\n")
		for _, entry := range hc.ActionTail {
			fmt.Fprintf(&b, "- %s %s (%s): %s\n",
				entry.CreatedAt.Format("Jan 2 15:04"), entry.ActionType, entry.Status, entry.TriggerReason)
		}
		b.WriteString("Do not repeat a recent action for the same reason.\n")
	}

	fmt.Fprintf(&b, "\n## Trigger\nThis invocation was triggered by: %s\n", triggerType)
	if len(triggerPayload) > 0 {
		payload, _ := json.Marshal(triggerPayload)
		fmt.Fprintf(&b, "Trigger details: %s\n", payload)
	}

	b.WriteString("\nDecide what, if anything, to do now. Explain your reasoning briefly, then use tools for any actions.")

	return []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: b.String()},
	}
}

func writeModelSummary(b *strings.Builder, m *models.UserModel) {
	b.WriteString("\n## Behavioral profile\n")
	if ep := m.EngagementPatterns; ep != nil {
		if len(ep.PreferredHours) > 0 {
			fmt.Fprintf(b, "Most responsive hours: %v\n", ep.PreferredHours)
		}
		if len(ep.ResponsiveCategories) > 0 {
			fmt.Fprintf(b, "Responds well to: %s\n", strings.Join(ep.ResponsiveCategories, ", "))
		}
		if len(ep.IgnoredCategories) > 0 {
			fmt.Fprintf(b, "Tends to ignore: %s\n", strings.Join(ep.IgnoredCategories, ", "))
		}
	}
	if hp := m.HealthPriorities; hp != nil && hp.PrimaryFocus != "" {
		fmt.Fprintf(b, "Primary health focus: %s", hp.PrimaryFocus)
		if hp.SecondaryFocus != "" {
			fmt.Fprintf(b, " (secondary: %s)", hp.SecondaryFocus)
		}
		b.WriteString("\n")
	}
	if sp := m.SuccessPatterns; sp != nil && len(sp.SuccessfulActions) > 0 {
		fmt.Fprintf(b, "Actions that have worked before: %s\n", strings.Join(sp.SuccessfulActions, ", "))
	}
	if pp := m.PainPoints; pp != nil {
		if pp.NudgeFatigue {
			b.WriteString("CAUTION: the user shows nudge fatigue. Be very conservative about nudging.\n")
		}
		if pp.StreakStruggles {
			b.WriteString("The user struggles to keep logging streaks.\n")
		}
	}
}
