package learning

import (
	"testing"
	"time"

	"vitalis/internal/models"
)

func logAt(metric string, t time.Time) models.HealthLog {
	return models.HealthLog{UserID: "u1", MetricType: metric, LoggedAt: t}
}

func TestMinePriorities(t *testing.T) {
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	t.Run("empty window", func(t *testing.T) {
		if got := MinePriorities(nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("primary and secondary focus", func(t *testing.T) {
		logs := []models.HealthLog{
			logAt(models.MetricBloodPressure, base),
			logAt(models.MetricBloodPressure, base.Add(time.Hour)),
			logAt(models.MetricBloodPressure, base.Add(2*time.Hour)),
			logAt(models.MetricWater, base),
			logAt(models.MetricWater, base.Add(time.Hour)),
			logAt(models.MetricSleep, base),
		}

		got := MinePriorities(logs)
		if got.PrimaryFocus != models.MetricBloodPressure {
			t.Errorf("primary = %q, want blood_pressure", got.PrimaryFocus)
		}
		if got.SecondaryFocus != models.MetricWater {
			t.Errorf("secondary = %q, want water", got.SecondaryFocus)
		}
		if got.MetricFrequency[models.MetricBloodPressure] != 3 {
			t.Errorf("frequency = %v", got.MetricFrequency)
		}
	})

	t.Run("single metric has no secondary", func(t *testing.T) {
		got := MinePriorities([]models.HealthLog{logAt(models.MetricWeight, base)})
		if got.PrimaryFocus != models.MetricWeight || got.SecondaryFocus != "" {
			t.Errorf("got primary=%q secondary=%q", got.PrimaryFocus, got.SecondaryFocus)
		}
	})
}

func actionAt(actionType string, t time.Time) models.ActionLogEntry {
	return models.ActionLogEntry{
		UserID:     "u1",
		ActionType: actionType,
		Status:     models.ActionStatusExecuted,
		CreatedAt:  t,
	}
}

func TestMineSuccess(t *testing.T) {
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	t.Run("no actions", func(t *testing.T) {
		if got := MineSuccess(nil, nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("failed actions are excluded", func(t *testing.T) {
		actions := []models.ActionLogEntry{
			{ActionType: models.ActionNudge, Status: models.ActionStatusFailed, CreatedAt: base},
		}
		if got := MineSuccess(actions, nil); got != nil {
			t.Errorf("expected nil when only failed actions exist, got %+v", got)
		}
	})

	t.Run("activity within the hour counts", func(t *testing.T) {
		actions := []models.ActionLogEntry{
			actionAt(models.ActionNudge, base),                   // log 30m later -> success
			actionAt(models.ActionNudge, base.Add(4*time.Hour)),  // log 2h later -> miss
			actionAt(models.ActionNudge, base.Add(10*time.Hour)), // log 59m later -> success
		}
		logs := []models.HealthLog{
			logAt(models.MetricWater, base.Add(30*time.Minute)),
			logAt(models.MetricWater, base.Add(6*time.Hour)),
			logAt(models.MetricWater, base.Add(10*time.Hour+59*time.Minute)),
		}

		got := MineSuccess(actions, logs)
		rate := got.ActionSuccessRates[models.ActionNudge]
		if rate < 0.66 || rate > 0.67 {
			t.Errorf("nudge success rate = %v, want 2/3", rate)
		}
		if len(got.SuccessfulActions) != 1 || got.SuccessfulActions[0] != models.ActionNudge {
			t.Errorf("successful actions = %v, want [nudge]", got.SuccessfulActions)
		}
		if got.SampleCounts[models.ActionNudge] != 3 {
			t.Errorf("sample counts = %v", got.SampleCounts)
		}
	})

	t.Run("under three samples never qualifies", func(t *testing.T) {
		actions := []models.ActionLogEntry{
			actionAt(models.ActionCelebration, base),
			actionAt(models.ActionCelebration, base.Add(time.Hour * 5)),
		}
		logs := []models.HealthLog{
			logAt(models.MetricWater, base.Add(10*time.Minute)),
			logAt(models.MetricWater, base.Add(5*time.Hour+10*time.Minute)),
		}

		got := MineSuccess(actions, logs)
		if got.ActionSuccessRates[models.ActionCelebration] != 1.0 {
			t.Errorf("rate = %v, want 1.0", got.ActionSuccessRates[models.ActionCelebration])
		}
		if len(got.SuccessfulActions) != 0 {
			t.Errorf("successful actions = %v, want none with 2 samples", got.SuccessfulActions)
		}
	})

	t.Run("activity before the action does not count", func(t *testing.T) {
		actions := []models.ActionLogEntry{actionAt(models.ActionNudge, base)}
		logs := []models.HealthLog{logAt(models.MetricWater, base.Add(-10*time.Minute))}

		got := MineSuccess(actions, logs)
		if got.ActionSuccessRates[models.ActionNudge] != 0 {
			t.Errorf("rate = %v, want 0", got.ActionSuccessRates[models.ActionNudge])
		}
	})
}

func ignoredOutcomes(n int) []models.InteractionOutcome {
	base := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	out := make([]models.InteractionOutcome, n)
	for i := range out {
		out[i] = models.InteractionOutcome{
			DeliveredAt:    base.Add(time.Duration(i) * time.Hour),
			EngagementType: models.EngagementIgnored,
		}
	}
	return out
}

func TestMinePainPoints(t *testing.T) {
	goodStreak := models.StreakState{Current: 10}

	t.Run("streak struggles", func(t *testing.T) {
		got := MinePainPoints(nil, models.StreakState{Current: 2})
		if !got.StreakStruggles {
			t.Error("streak of 2 should flag streak struggles")
		}
		got = MinePainPoints(nil, models.StreakState{Current: 3})
		if got.StreakStruggles {
			t.Error("streak of 3 should not flag streak struggles")
		}
	})

	t.Run("too few outcomes never flags fatigue", func(t *testing.T) {
		got := MinePainPoints(ignoredOutcomes(7), goodStreak)
		if got.NudgeFatigue {
			t.Error("7 outcomes is below the minimum sample for fatigue")
		}
	})

	t.Run("all ignored flags fatigue", func(t *testing.T) {
		got := MinePainPoints(ignoredOutcomes(8), goodStreak)
		if !got.NudgeFatigue {
			t.Error("8 of 8 ignored should flag fatigue")
		}
	})

	t.Run("engagement clears fatigue", func(t *testing.T) {
		outcomes := ignoredOutcomes(12)
		for i := 0; i < 4; i++ {
			outcomes[i].EngagementType = models.EngagementOpened
		}
		// 8 of 12 ignored = 66% < 75%
		got := MinePainPoints(outcomes, goodStreak)
		if got.NudgeFatigue {
			t.Error("66% ignored is below the fatigue threshold")
		}
	})

	t.Run("18 of 20 ignored flags fatigue", func(t *testing.T) {
		outcomes := ignoredOutcomes(20)
		outcomes[3].EngagementType = models.EngagementOpened
		outcomes[11].EngagementType = models.EngagementClicked
		got := MinePainPoints(outcomes, goodStreak)
		if !got.NudgeFatigue {
			t.Error("18 of 20 ignored should flag fatigue")
		}
	})

	t.Run("only the last 20 outcomes count", func(t *testing.T) {
		// 30 outcomes: first 10 engaged, last 20 ignored
		outcomes := ignoredOutcomes(30)
		for i := 0; i < 10; i++ {
			outcomes[i].EngagementType = models.EngagementActioned
		}
		got := MinePainPoints(outcomes, goodStreak)
		if !got.NudgeFatigue {
			t.Error("last 20 all ignored should flag fatigue regardless of older engagement")
		}
	})
}
