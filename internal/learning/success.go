package learning

import (
	"sort"
	"time"

	"vitalis/internal/models"
)

// Thresholds for the success pattern miner
const (
	successWindow     = time.Hour
	minActionSamples  = 3
	successfulMinRate = 0.30
)

// MineSuccess measures which agent actions actually move the user: an action
// counts as successful when any health-log activity follows it within one
// hour. Returns nil when the window holds no executed actions.
func MineSuccess(actions []models.ActionLogEntry, logs []models.HealthLog) *models.SuccessPatterns {
	var executed []models.ActionLogEntry
	for _, a := range actions {
		if a.Status == models.ActionStatusExecuted {
			executed = append(executed, a)
		}
	}
	if len(executed) == 0 {
		return nil
	}

	// Logs arrive oldest first; binary search for each action's window
	logTimes := make([]time.Time, len(logs))
	for i, l := range logs {
		logTimes[i] = l.LoggedAt
	}

	totals := make(map[string]int)
	successes := make(map[string]int)
	for _, a := range executed {
		totals[a.ActionType]++
		if activityWithin(logTimes, a.CreatedAt, successWindow) {
			successes[a.ActionType]++
		}
	}

	patterns := &models.SuccessPatterns{
		SchemaVersion:      models.UserModelSchemaVersion,
		ActionSuccessRates: make(map[string]float64, len(totals)),
		SampleCounts:       totals,
	}

	var actionTypes []string
	for t := range totals {
		actionTypes = append(actionTypes, t)
	}
	sort.Strings(actionTypes)

	for _, t := range actionTypes {
		rate := float64(successes[t]) / float64(totals[t])
		patterns.ActionSuccessRates[t] = rate
		if totals[t] >= minActionSamples && rate > successfulMinRate {
			patterns.SuccessfulActions = append(patterns.SuccessfulActions, t)
		}
	}

	return patterns
}

// activityWithin reports whether any sorted log time falls in (after, after+window]
func activityWithin(sorted []time.Time, after time.Time, window time.Duration) bool {
	i := sort.Search(len(sorted), func(i int) bool {
		return sorted[i].After(after)
	})
	return i < len(sorted) && !sorted[i].After(after.Add(window))
}
