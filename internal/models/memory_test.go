package models

import "testing"

func TestUserModelMerge_NilFieldsSurvive(t *testing.T) {
	m := &UserModel{
		UserID: "u1",
		EngagementPatterns: &EngagementPatterns{
			SchemaVersion:  UserModelSchemaVersion,
			PreferredHours: []int{8, 20},
		},
		HealthPriorities: &HealthPriorities{
			SchemaVersion: UserModelSchemaVersion,
			PrimaryFocus:  MetricBloodPressure,
		},
	}

	// A partial run that produced only pain points
	m.Merge(UserModelUpdate{
		PainPoints: &PainPoints{SchemaVersion: UserModelSchemaVersion, NudgeFatigue: true},
	})

	if m.EngagementPatterns == nil || len(m.EngagementPatterns.PreferredHours) != 2 {
		t.Error("engagement patterns must survive a run that did not produce them")
	}
	if m.HealthPriorities == nil || m.HealthPriorities.PrimaryFocus != MetricBloodPressure {
		t.Error("health priorities must survive a run that did not produce them")
	}
	if m.PainPoints == nil || !m.PainPoints.NudgeFatigue {
		t.Error("pain points from the run must be applied")
	}
}

func TestUserModelMerge_NewValuesOverwrite(t *testing.T) {
	m := &UserModel{
		UserID: "u1",
		EngagementPatterns: &EngagementPatterns{
			PreferredHours:        []int{8},
			OverallEngagementRate: 0.2,
		},
	}

	m.Merge(UserModelUpdate{
		EngagementPatterns: &EngagementPatterns{
			PreferredHours:        []int{9, 21},
			OverallEngagementRate: 0.6,
		},
	})

	if m.EngagementPatterns.OverallEngagementRate != 0.6 {
		t.Errorf("rate = %v, want the new run's 0.6", m.EngagementPatterns.OverallEngagementRate)
	}
	if len(m.EngagementPatterns.PreferredHours) != 2 {
		t.Errorf("hours = %v, want the new run's hours", m.EngagementPatterns.PreferredHours)
	}
}

func TestUserModelMerge_MapFieldsUnion(t *testing.T) {
	m := &UserModel{
		UserID: "u1",
		HealthPriorities: &HealthPriorities{
			PrimaryFocus:    MetricWater,
			MetricFrequency: map[string]int{MetricWater: 5, MetricSleep: 2},
		},
		SuccessPatterns: &SuccessPatterns{
			ActionSuccessRates: map[string]float64{ActionNudge: 0.4},
			SampleCounts:       map[string]int{ActionNudge: 5},
		},
	}

	m.Merge(UserModelUpdate{
		HealthPriorities: &HealthPriorities{
			PrimaryFocus:    MetricBloodPressure,
			MetricFrequency: map[string]int{MetricBloodPressure: 9, MetricWater: 7},
		},
		SuccessPatterns: &SuccessPatterns{
			ActionSuccessRates: map[string]float64{ActionCelebration: 0.8},
			SampleCounts:       map[string]int{ActionCelebration: 4},
		},
	})

	// Union with incoming values winning ties
	freq := m.HealthPriorities.MetricFrequency
	if freq[MetricWater] != 7 {
		t.Errorf("water frequency = %d, want incoming 7", freq[MetricWater])
	}
	if freq[MetricSleep] != 2 {
		t.Errorf("sleep frequency = %d, want surviving 2", freq[MetricSleep])
	}
	if freq[MetricBloodPressure] != 9 {
		t.Errorf("bp frequency = %d, want incoming 9", freq[MetricBloodPressure])
	}

	rates := m.SuccessPatterns.ActionSuccessRates
	if rates[ActionNudge] != 0.4 || rates[ActionCelebration] != 0.8 {
		t.Errorf("rates = %v, want union of both runs", rates)
	}
}

func TestUserModelMerge_Idempotent(t *testing.T) {
	upd := UserModelUpdate{
		EngagementPatterns: &EngagementPatterns{PreferredHours: []int{8}, SampleCount: 10},
		PainPoints:         &PainPoints{StreakStruggles: true},
	}

	a := &UserModel{UserID: "u1"}
	a.Merge(upd)
	first := *a.EngagementPatterns

	a.Merge(upd)
	if a.EngagementPatterns.SampleCount != first.SampleCount ||
		len(a.EngagementPatterns.PreferredHours) != len(first.PreferredHours) {
		t.Error("re-applying the same update must not change the model")
	}
}
