package learning

import (
	"vitalis/internal/models"
)

// Thresholds for the pain point detector
const (
	fatigueRecentCount = 20
	fatigueMinSamples  = 8
	fatigueRatio       = 0.75
	strugglingStreak   = 3
)

// MinePainPoints flags friction the agent should back off from. Nudge
// fatigue triggers when at least 75% of the user's most recent outcomes
// (up to 20, minimum 8 to judge at all) were ignored. Streak struggles
// trigger on a streak under 3 days.
//
// Outcomes must be ordered oldest first, matching the store's window reads.
func MinePainPoints(outcomes []models.InteractionOutcome, streak models.StreakState) *models.PainPoints {
	points := &models.PainPoints{
		SchemaVersion:   models.UserModelSchemaVersion,
		StreakStruggles: streak.Current < strugglingStreak,
	}

	recent := outcomes
	if len(recent) > fatigueRecentCount {
		recent = recent[len(recent)-fatigueRecentCount:]
	}
	if len(recent) >= fatigueMinSamples {
		ignored := 0
		for _, o := range recent {
			if o.EngagementType == models.EngagementIgnored {
				ignored++
			}
		}
		points.NudgeFatigue = float64(ignored) >= fatigueRatio*float64(len(recent))
	}

	return points
}
