package agent

import (
	"testing"
	"time"

	"vitalis/internal/models"
)

func defaultPrefs() *models.AgentPreferences {
	return &models.AgentPreferences{
		AutonomyLevel:             models.AutonomyFull,
		NudgesEnabled:             true,
		CelebrationsEnabled:       true,
		GoalAdjustEnabled:         true,
		EscalationsEnabled:        true,
		QuietHoursStart:           22,
		QuietHoursEnd:             7,
		MaxNudgesPerDay:           3,
		MaxGoalAdjustmentsPerWeek: 1,
	}
}

func at(hour int) time.Time {
	return time.Date(2026, 8, 28, hour, 30, 0, 0, time.UTC)
}

func TestEvaluateGuardrails_Toggles(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		mutate  func(p *models.AgentPreferences)
		allowed bool
	}{
		{
			name:    "nudge allowed by default",
			tool:    ToolSendNudge,
			mutate:  func(p *models.AgentPreferences) {},
			allowed: true,
		},
		{
			name:    "nudges disabled",
			tool:    ToolSendNudge,
			mutate:  func(p *models.AgentPreferences) { p.NudgesEnabled = false },
			allowed: false,
		},
		{
			name:    "celebrations disabled",
			tool:    ToolCelebrate,
			mutate:  func(p *models.AgentPreferences) { p.CelebrationsEnabled = false },
			allowed: false,
		},
		{
			name:    "goal adjust disabled",
			tool:    ToolAdjustGoal,
			mutate:  func(p *models.AgentPreferences) { p.GoalAdjustEnabled = false },
			allowed: false,
		},
		{
			name:    "escalations disabled",
			tool:    ToolEscalateConcern,
			mutate:  func(p *models.AgentPreferences) { p.EscalationsEnabled = false },
			allowed: false,
		},
		{
			name:    "followup has no toggle",
			tool:    ToolScheduleFollowup,
			mutate:  func(p *models.AgentPreferences) { p.NudgesEnabled = false },
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := defaultPrefs()
			tt.mutate(prefs)
			d := EvaluateGuardrails(tt.tool, prefs, at(12), ActionCounts{})
			if d.Allowed != tt.allowed {
				t.Errorf("allowed = %v, want %v (reason %q)", d.Allowed, tt.allowed, d.Reason)
			}
			if !d.Allowed && d.Reason == "" {
				t.Error("denied decision must carry a reason")
			}
		})
	}
}

func TestEvaluateGuardrails_AutonomyLevels(t *testing.T) {
	writeTools := []string{ToolSendNudge, ToolCelebrate, ToolAdjustGoal, ToolScheduleFollowup, ToolEscalateConcern}

	// Minimal autonomy denies every write action, even with all toggles on,
	// zero quota used, and the middle of the day. The completion service can
	// return a tool it was never advertised, so the level must hold here.
	t.Run("minimal denies all writes", func(t *testing.T) {
		prefs := defaultPrefs()
		prefs.AutonomyLevel = models.AutonomyMinimal
		for _, tool := range writeTools {
			d := EvaluateGuardrails(tool, prefs, at(12), ActionCounts{})
			if d.Allowed {
				t.Errorf("%s allowed under minimal autonomy", tool)
			}
			if !d.Allowed && d.Code != DenyAutonomy {
				t.Errorf("%s denial code = %q, want %q", tool, d.Code, DenyAutonomy)
			}
		}
	})

	t.Run("balanced denies only goal adjustment", func(t *testing.T) {
		prefs := defaultPrefs()
		prefs.AutonomyLevel = models.AutonomyBalanced
		for _, tool := range writeTools {
			d := EvaluateGuardrails(tool, prefs, at(12), ActionCounts{})
			if tool == ToolAdjustGoal {
				if d.Allowed {
					t.Error("goal adjustment allowed under balanced autonomy")
				}
				continue
			}
			if !d.Allowed {
				t.Errorf("%s denied under balanced autonomy: %s", tool, d.Reason)
			}
		}
	})

	t.Run("unrecognized level denies", func(t *testing.T) {
		prefs := defaultPrefs()
		prefs.AutonomyLevel = "supervisor"
		if d := EvaluateGuardrails(ToolSendNudge, prefs, at(12), ActionCounts{}); d.Allowed {
			t.Error("unrecognized autonomy level must deny writes")
		}
	})
}

func TestEvaluateGuardrails_QuietHours(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		hour    int
		allowed bool
	}{
		{name: "nudge during day", tool: ToolSendNudge, hour: 14, allowed: true},
		{name: "nudge late evening blocked", tool: ToolSendNudge, hour: 23, allowed: false},
		{name: "nudge after midnight blocked", tool: ToolSendNudge, hour: 3, allowed: false},
		{name: "nudge at quiet start blocked", tool: ToolSendNudge, hour: 22, allowed: false},
		{name: "nudge at quiet end allowed", tool: ToolSendNudge, hour: 7, allowed: true},
		{name: "celebration blocked at night", tool: ToolCelebrate, hour: 2, allowed: false},
		{name: "followup blocked at night", tool: ToolScheduleFollowup, hour: 2, allowed: false},
		{name: "escalation exempt at night", tool: ToolEscalateConcern, hour: 3, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateGuardrails(tt.tool, defaultPrefs(), at(tt.hour), ActionCounts{})
			if d.Allowed != tt.allowed {
				t.Errorf("allowed = %v, want %v (reason %q)", d.Allowed, tt.allowed, d.Reason)
			}
		})
	}
}

func TestEvaluateGuardrails_NonWrappingQuietHours(t *testing.T) {
	prefs := defaultPrefs()
	prefs.QuietHoursStart = 13
	prefs.QuietHoursEnd = 15

	if d := EvaluateGuardrails(ToolSendNudge, prefs, at(14), ActionCounts{}); d.Allowed {
		t.Error("hour 14 should fall inside 13-15 quiet window")
	}
	if d := EvaluateGuardrails(ToolSendNudge, prefs, at(16), ActionCounts{}); !d.Allowed {
		t.Errorf("hour 16 should be outside 13-15 quiet window: %s", d.Reason)
	}
}

func TestEvaluateGuardrails_EqualStartEndDisablesQuietHours(t *testing.T) {
	prefs := defaultPrefs()
	prefs.QuietHoursStart = 8
	prefs.QuietHoursEnd = 8

	if d := EvaluateGuardrails(ToolSendNudge, prefs, at(3), ActionCounts{}); !d.Allowed {
		t.Errorf("equal start/end must disable quiet hours: %s", d.Reason)
	}
}

func TestEvaluateGuardrails_FrequencyCaps(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		counts  ActionCounts
		allowed bool
	}{
		{
			name:    "under nudge cap",
			tool:    ToolSendNudge,
			counts:  ActionCounts{NudgesLast24h: 2},
			allowed: true,
		},
		{
			name:    "at nudge cap",
			tool:    ToolSendNudge,
			counts:  ActionCounts{NudgesLast24h: 3},
			allowed: false,
		},
		{
			name:    "at goal adjustment cap",
			tool:    ToolAdjustGoal,
			counts:  ActionCounts{GoalAdjustmentsLast7d: 1},
			allowed: false,
		},
		{
			name:    "under goal adjustment cap",
			tool:    ToolAdjustGoal,
			counts:  ActionCounts{GoalAdjustmentsLast7d: 0},
			allowed: true,
		},
		{
			name:    "nudge cap does not block celebrations",
			tool:    ToolCelebrate,
			counts:  ActionCounts{NudgesLast24h: 5},
			allowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := EvaluateGuardrails(tt.tool, defaultPrefs(), at(12), tt.counts)
			if d.Allowed != tt.allowed {
				t.Errorf("allowed = %v, want %v (reason %q)", d.Allowed, tt.allowed, d.Reason)
			}
		})
	}
}

func TestEvaluateGuardrails_ToggleBeatsQuietHours(t *testing.T) {
	prefs := defaultPrefs()
	prefs.NudgesEnabled = false

	// Both the toggle and quiet hours would deny; the toggle reason must win
	d := EvaluateGuardrails(ToolSendNudge, prefs, at(23), ActionCounts{})
	if d.Allowed {
		t.Fatal("expected denial")
	}
	if d.Reason != "nudges are disabled in agent preferences" {
		t.Errorf("reason = %q, want the toggle reason", d.Reason)
	}
}
