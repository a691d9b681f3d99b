package learning

import (
	"sort"

	"vitalis/internal/models"
)

// MinePriorities infers what the user cares about from how often they log
// each metric. Returns nil when the window holds no logging activity.
func MinePriorities(logs []models.HealthLog) *models.HealthPriorities {
	if len(logs) == 0 {
		return nil
	}

	frequency := make(map[string]int)
	for _, l := range logs {
		frequency[l.MetricType]++
	}

	type metricCount struct {
		metric string
		count  int
	}
	ranked := make([]metricCount, 0, len(frequency))
	for m, c := range frequency {
		ranked = append(ranked, metricCount{metric: m, count: c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].metric < ranked[j].metric // deterministic ties
	})

	priorities := &models.HealthPriorities{
		SchemaVersion:   models.UserModelSchemaVersion,
		PrimaryFocus:    ranked[0].metric,
		MetricFrequency: frequency,
	}
	if len(ranked) > 1 {
		priorities.SecondaryFocus = ranked[1].metric
	}
	return priorities
}
