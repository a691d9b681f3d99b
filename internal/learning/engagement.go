// Package learning implements the batch learning path: miners that distill
// interaction history into the per-user behavioral model and memory facts.
package learning

import (
	"sort"

	"vitalis/internal/models"
)

// Thresholds for the engagement outcome miner
const (
	minHourSamples     = 2
	minCategorySamples = 3
	responsiveRate     = 0.60
	ignoredRate        = 0.20
	topHourCount       = 3
)

type bucket struct {
	total   int
	engaged int
}

func (b bucket) rate() float64 {
	if b.total == 0 {
		return 0
	}
	return float64(b.engaged) / float64(b.total)
}

// MineEngagement distills delivery outcomes into engagement patterns.
// Returns nil when the window holds no outcomes — the updater then leaves
// the stored field untouched.
func MineEngagement(outcomes []models.InteractionOutcome) *models.EngagementPatterns {
	if len(outcomes) == 0 {
		return nil
	}

	hours := make(map[int]bucket)
	categories := make(map[string]bucket)
	var engagedCount int
	var engageTimeSum float64
	var engageTimeCount int

	for _, o := range outcomes {
		engaged := models.Engaged(o.EngagementType)
		if engaged {
			engagedCount++
			if o.TimeToEngageSeconds > 0 {
				engageTimeSum += float64(o.TimeToEngageSeconds)
				engageTimeCount++
			}
		}

		h := o.DeliveredAt.Hour()
		hb := hours[h]
		hb.total++
		if engaged {
			hb.engaged++
		}
		hours[h] = hb

		if o.Context.Category != "" {
			cb := categories[o.Context.Category]
			cb.total++
			if engaged {
				cb.engaged++
			}
			categories[o.Context.Category] = cb
		}
	}

	patterns := &models.EngagementPatterns{
		SchemaVersion:         models.UserModelSchemaVersion,
		OverallEngagementRate: float64(engagedCount) / float64(len(outcomes)),
		SampleCount:           len(outcomes),
	}
	if engageTimeCount > 0 {
		patterns.MeanTimeToEngageSeconds = engageTimeSum / float64(engageTimeCount)
	}

	// Top hours by engagement rate among hours with enough samples
	type hourRate struct {
		hour int
		rate float64
	}
	var rated []hourRate
	for h, b := range hours {
		if b.total >= minHourSamples {
			rated = append(rated, hourRate{hour: h, rate: b.rate()})
		}
	}
	sort.Slice(rated, func(i, j int) bool {
		if rated[i].rate != rated[j].rate {
			return rated[i].rate > rated[j].rate
		}
		return rated[i].hour < rated[j].hour // deterministic ties
	})
	for i := 0; i < len(rated) && i < topHourCount; i++ {
		if rated[i].rate == 0 {
			break
		}
		patterns.PreferredHours = append(patterns.PreferredHours, rated[i].hour)
	}

	var categoryNames []string
	for name := range categories {
		categoryNames = append(categoryNames, name)
	}
	sort.Strings(categoryNames)
	for _, name := range categoryNames {
		b := categories[name]
		if b.total < minCategorySamples {
			continue
		}
		switch rate := b.rate(); {
		case rate > responsiveRate:
			patterns.ResponsiveCategories = append(patterns.ResponsiveCategories, name)
		case rate < ignoredRate:
			patterns.IgnoredCategories = append(patterns.IgnoredCategories, name)
		}
	}

	return patterns
}
