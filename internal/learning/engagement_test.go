package learning

import (
	"testing"
	"time"

	"vitalis/internal/models"
)

func outcomeAt(hour int, engagement, category string) models.InteractionOutcome {
	return models.InteractionOutcome{
		UserID:          "u1",
		InteractionType: "nudge",
		DeliveredAt:     time.Date(2026, 8, 10, hour, 15, 0, 0, time.UTC),
		EngagementType:  engagement,
		Context:         models.OutcomeContext{Category: category},
	}
}

func TestMineEngagement_Empty(t *testing.T) {
	if got := MineEngagement(nil); got != nil {
		t.Errorf("expected nil for empty window, got %+v", got)
	}
}

func TestMineEngagement_PreferredHours(t *testing.T) {
	outcomes := []models.InteractionOutcome{
		// Hour 8: 2 samples, both engaged
		outcomeAt(8, models.EngagementOpened, ""),
		outcomeAt(8, models.EngagementClicked, ""),
		// Hour 14: 2 samples, one engaged
		outcomeAt(14, models.EngagementOpened, ""),
		outcomeAt(14, models.EngagementIgnored, ""),
		// Hour 20: 1 sample — below minimum, must not rank
		outcomeAt(20, models.EngagementActioned, ""),
		// Hour 22: 2 samples, none engaged — zero rate must not rank
		outcomeAt(22, models.EngagementIgnored, ""),
		outcomeAt(22, models.EngagementDismissed, ""),
	}

	got := MineEngagement(outcomes)
	if got == nil {
		t.Fatal("expected patterns")
	}

	want := []int{8, 14}
	if len(got.PreferredHours) != len(want) {
		t.Fatalf("preferred hours = %v, want %v", got.PreferredHours, want)
	}
	for i, h := range want {
		if got.PreferredHours[i] != h {
			t.Errorf("preferred hours = %v, want %v", got.PreferredHours, want)
			break
		}
	}
}

func TestMineEngagement_Categories(t *testing.T) {
	outcomes := []models.InteractionOutcome{
		// hydration: 3 samples, all engaged -> responsive
		outcomeAt(9, models.EngagementOpened, "hydration"),
		outcomeAt(10, models.EngagementClicked, "hydration"),
		outcomeAt(11, models.EngagementActioned, "hydration"),
		// weight: 3 samples, none engaged -> ignored
		outcomeAt(9, models.EngagementIgnored, "weight"),
		outcomeAt(10, models.EngagementIgnored, "weight"),
		outcomeAt(11, models.EngagementDismissed, "weight"),
		// sleep: 2 samples - below minimum, classified neither way
		outcomeAt(9, models.EngagementIgnored, "sleep"),
		outcomeAt(10, models.EngagementIgnored, "sleep"),
	}

	got := MineEngagement(outcomes)
	if got == nil {
		t.Fatal("expected patterns")
	}

	if len(got.ResponsiveCategories) != 1 || got.ResponsiveCategories[0] != "hydration" {
		t.Errorf("responsive = %v, want [hydration]", got.ResponsiveCategories)
	}
	if len(got.IgnoredCategories) != 1 || got.IgnoredCategories[0] != "weight" {
		t.Errorf("ignored = %v, want [weight]", got.IgnoredCategories)
	}
}

func TestMineEngagement_BoundaryRates(t *testing.T) {
	// Exactly 60% engaged (3/5) must NOT be responsive; exactly 20% (1/5)
	// must NOT be ignored.
	outcomes := []models.InteractionOutcome{
		outcomeAt(9, models.EngagementOpened, "sixty"),
		outcomeAt(9, models.EngagementOpened, "sixty"),
		outcomeAt(9, models.EngagementOpened, "sixty"),
		outcomeAt(9, models.EngagementIgnored, "sixty"),
		outcomeAt(9, models.EngagementIgnored, "sixty"),

		outcomeAt(9, models.EngagementOpened, "twenty"),
		outcomeAt(9, models.EngagementIgnored, "twenty"),
		outcomeAt(9, models.EngagementIgnored, "twenty"),
		outcomeAt(9, models.EngagementIgnored, "twenty"),
		outcomeAt(9, models.EngagementIgnored, "twenty"),
	}

	got := MineEngagement(outcomes)
	if len(got.ResponsiveCategories) != 0 {
		t.Errorf("responsive = %v, want none at exactly 60%%", got.ResponsiveCategories)
	}
	for _, c := range got.IgnoredCategories {
		if c == "twenty" {
			t.Error("category at exactly 20% must not be ignored")
		}
	}
}

func TestMineEngagement_OverallRateAndTiming(t *testing.T) {
	outcomes := []models.InteractionOutcome{
		{DeliveredAt: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), EngagementType: models.EngagementOpened, TimeToEngageSeconds: 60},
		{DeliveredAt: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), EngagementType: models.EngagementClicked, TimeToEngageSeconds: 180},
		{DeliveredAt: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), EngagementType: models.EngagementIgnored},
		{DeliveredAt: time.Date(2026, 8, 10, 9, 0, 0, 0, time.UTC), EngagementType: models.EngagementDismissed},
	}

	got := MineEngagement(outcomes)
	if got.OverallEngagementRate != 0.5 {
		t.Errorf("overall rate = %v, want 0.5", got.OverallEngagementRate)
	}
	if got.MeanTimeToEngageSeconds != 120 {
		t.Errorf("mean time to engage = %v, want 120", got.MeanTimeToEngageSeconds)
	}
	if got.SampleCount != 4 {
		t.Errorf("sample count = %d, want 4", got.SampleCount)
	}
}
