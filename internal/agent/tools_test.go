package agent

import (
	"encoding/json"
	"testing"

	"vitalis/internal/models"
)

func TestParseToolCall(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    string
		wantErr bool
		check   func(t *testing.T, c ParsedCall)
	}{
		{
			name: "read tool without arguments",
			tool: ToolGetHealthSummary,
			args: "",
			check: func(t *testing.T, c ParsedCall) {
				if c.IsWrite() {
					t.Error("read tool classified as write")
				}
			},
		},
		{
			name: "valid nudge",
			tool: ToolSendNudge,
			args: `{"message":"Time to log your water intake","category":"hydration","urgency":"low"}`,
			check: func(t *testing.T, c ParsedCall) {
				if c.Nudge == nil || c.Nudge.Message != "Time to log your water intake" {
					t.Errorf("nudge args not decoded: %+v", c.Nudge)
				}
				if c.ActionType() != models.ActionNudge {
					t.Errorf("action type = %q", c.ActionType())
				}
			},
		},
		{
			name:    "nudge without message",
			tool:    ToolSendNudge,
			args:    `{"category":"hydration"}`,
			wantErr: true,
		},
		{
			name:    "nudge with bogus urgency",
			tool:    ToolSendNudge,
			args:    `{"message":"hi","urgency":"critical"}`,
			wantErr: true,
		},
		{
			name: "valid celebration",
			tool: ToolCelebrate,
			args: `{"achievement_type":"streak_7_days","message":"One week straight!"}`,
			check: func(t *testing.T, c ParsedCall) {
				if c.Celebrate == nil || c.Celebrate.AchievementType != "streak_7_days" {
					t.Errorf("celebrate args not decoded: %+v", c.Celebrate)
				}
			},
		},
		{
			name:    "celebration missing achievement type",
			tool:    ToolCelebrate,
			args:    `{"message":"Nice!"}`,
			wantErr: true,
		},
		{
			name: "valid goal adjustment",
			tool: ToolAdjustGoal,
			args: `{"goal_type":"water","new_target":2.5,"reason":"consistently exceeding"}`,
			check: func(t *testing.T, c ParsedCall) {
				if c.AdjustGoal == nil || c.AdjustGoal.NewTarget != 2.5 {
					t.Errorf("adjust goal args not decoded: %+v", c.AdjustGoal)
				}
			},
		},
		{
			name:    "goal adjustment with zero target",
			tool:    ToolAdjustGoal,
			args:    `{"goal_type":"water","new_target":0,"reason":"x"}`,
			wantErr: true,
		},
		{
			name: "followup defaults check type",
			tool: ToolScheduleFollowup,
			args: `{"delay_hours":4}`,
			check: func(t *testing.T, c ParsedCall) {
				if c.Followup == nil || c.Followup.CheckType != "followup_check" {
					t.Errorf("followup args = %+v", c.Followup)
				}
			},
		},
		{
			name: "followup carries message",
			tool: ToolScheduleFollowup,
			args: `{"check_type":"bp_recheck","delay_hours":12,"message":"See if the evening readings settle"}`,
			check: func(t *testing.T, c ParsedCall) {
				if c.Followup == nil || c.Followup.CheckType != "bp_recheck" || c.Followup.Message == "" {
					t.Errorf("followup args = %+v", c.Followup)
				}
			},
		},
		{
			name:    "followup with negative delay",
			tool:    ToolScheduleFollowup,
			args:    `{"delay_hours":-2}`,
			wantErr: true,
		},
		{
			name: "valid escalation",
			tool: ToolEscalateConcern,
			args: `{"concern_type":"bp_trend_worsening","severity":"moderate","recommendation":"Check in with your doctor about the last week of readings"}`,
			check: func(t *testing.T, c ParsedCall) {
				if c.Escalate == nil || c.Escalate.ConcernType != "bp_trend_worsening" {
					t.Errorf("escalate args not decoded: %+v", c.Escalate)
				}
				if c.Escalate != nil && c.Escalate.Recommendation == "" {
					t.Error("escalation recommendation not decoded")
				}
			},
		},
		{
			name:    "escalation without recommendation",
			tool:    ToolEscalateConcern,
			args:    `{"concern_type":"bp_trend_worsening"}`,
			wantErr: true,
		},
		{
			name:    "unknown tool rejected",
			tool:    "delete_all_data",
			args:    `{}`,
			wantErr: true,
		},
		{
			name:    "malformed JSON",
			tool:    ToolSendNudge,
			args:    `{"message":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := ParseToolCall(tt.tool, json.RawMessage(tt.args))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, call)
			}
		})
	}
}

func toolNames(schemas []map[string]any) map[string]bool {
	names := make(map[string]bool)
	for _, s := range schemas {
		fn := s["function"].(map[string]any)
		names[fn["name"].(string)] = true
	}
	return names
}

func TestToolSchemas_AutonomyLevels(t *testing.T) {
	minimal := toolNames(ToolSchemas(models.AutonomyMinimal))
	balanced := toolNames(ToolSchemas(models.AutonomyBalanced))
	full := toolNames(ToolSchemas(models.AutonomyFull))

	if len(minimal) != 3 {
		t.Errorf("minimal advertises %d tools, want 3 read tools", len(minimal))
	}
	for _, writeTool := range []string{ToolSendNudge, ToolCelebrate, ToolAdjustGoal, ToolScheduleFollowup, ToolEscalateConcern} {
		if minimal[writeTool] {
			t.Errorf("minimal must not advertise %s", writeTool)
		}
	}

	if balanced[ToolAdjustGoal] {
		t.Error("balanced must not advertise goal adjustment")
	}
	for _, tool := range []string{ToolSendNudge, ToolCelebrate, ToolScheduleFollowup, ToolEscalateConcern, ToolGetHealthSummary} {
		if !balanced[tool] {
			t.Errorf("balanced should advertise %s", tool)
		}
	}

	if !full[ToolAdjustGoal] {
		t.Error("full must advertise goal adjustment")
	}
	if len(full) != len(balanced)+1 {
		t.Errorf("full advertises %d tools, want %d", len(full), len(balanced)+1)
	}
}

func TestToolSchemas_EveryAdvertisedToolParses(t *testing.T) {
	for name := range toolNames(ToolSchemas(models.AutonomyFull)) {
		args := json.RawMessage(`{"message":"m","achievement_type":"a","goal_type":"g","new_target":1,"reason":"r","delay_hours":1,"concern_type":"c","recommendation":"see a doctor"}`)
		if _, err := ParseToolCall(name, args); err != nil {
			t.Errorf("advertised tool %s does not parse: %v", name, err)
		}
	}
}
