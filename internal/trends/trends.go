// Package trends analyzes vital reading histories into compact status and
// direction summaries used by the care agent's decision context.
package trends

import (
	"vitalis/internal/models"
)

// Statuses for an analyzed metric
const (
	StatusInsufficientData = "insufficient_data"
	StatusOptimal          = "optimal"
	StatusNormal           = "normal"
	StatusElevated         = "elevated"
	StatusHigh             = "high"
)

// Trend directions
const (
	TrendImproving = "improving"
	TrendWorsening = "worsening"
	TrendStable    = "stable"
	TrendUnknown   = "unknown"
)

// Minimum samples before a status/trend is reported
const minSamples = 3

// Minimum first-half vs second-half mean delta to call a trend
const (
	bpTrendDelta    = 5.0  // mmHg systolic
	sugarTrendDelta = 10.0 // mg/dL
)

// Summary is the output of one metric analyzer
type Summary struct {
	Status      string             `json:"status"`
	Trend       string             `json:"trend"`
	Averages    map[string]float64 `json:"averages,omitempty"`
	SampleCount int                `json:"sample_count"`
}

// AnalyzeBloodPressure summarizes blood pressure readings. Readings must be
// ordered oldest first; Value is systolic, Value2 diastolic.
func AnalyzeBloodPressure(readings []models.VitalReading) Summary {
	if len(readings) < minSamples {
		return Summary{
			Status:      StatusInsufficientData,
			Trend:       TrendUnknown,
			SampleCount: len(readings),
		}
	}

	var sysSum, diaSum float64
	for _, r := range readings {
		sysSum += r.Value
		diaSum += r.Value2
	}
	avgSys := sysSum / float64(len(readings))
	avgDia := diaSum / float64(len(readings))

	status := StatusHigh
	switch {
	case avgSys < 120 && avgDia < 80:
		status = StatusOptimal
	case avgSys < 140 && avgDia < 90:
		status = StatusElevated
	}

	return Summary{
		Status: status,
		// Lower systolic is better, so a falling mean is improving
		Trend: direction(readings, bpTrendDelta, func(r models.VitalReading) float64 { return r.Value }),
		Averages: map[string]float64{
			"systolic":  round1(avgSys),
			"diastolic": round1(avgDia),
		},
		SampleCount: len(readings),
	}
}

// AnalyzeBloodSugar summarizes blood sugar readings (mg/dL), ordered oldest first.
func AnalyzeBloodSugar(readings []models.VitalReading) Summary {
	if len(readings) < minSamples {
		return Summary{
			Status:      StatusInsufficientData,
			Trend:       TrendUnknown,
			SampleCount: len(readings),
		}
	}

	var sum float64
	for _, r := range readings {
		sum += r.Value
	}
	avg := sum / float64(len(readings))

	status := StatusHigh
	switch {
	case avg < 100:
		status = StatusNormal
	case avg < 126:
		status = StatusElevated
	}

	return Summary{
		Status: status,
		Trend:  direction(readings, sugarTrendDelta, func(r models.VitalReading) float64 { return r.Value }),
		Averages: map[string]float64{
			"glucose": round1(avg),
		},
		SampleCount: len(readings),
	}
}

// direction compares the first-half mean against the second-half mean of the
// extracted value. Differences below minDelta are stable. Lower is better for
// both metrics this package analyzes.
func direction(readings []models.VitalReading, minDelta float64, value func(models.VitalReading) float64) string {
	half := len(readings) / 2
	if half == 0 {
		return TrendStable
	}

	var firstSum, secondSum float64
	for _, r := range readings[:half] {
		firstSum += value(r)
	}
	for _, r := range readings[half:] {
		secondSum += value(r)
	}
	firstMean := firstSum / float64(half)
	secondMean := secondSum / float64(len(readings)-half)

	delta := secondMean - firstMean
	switch {
	case delta <= -minDelta:
		return TrendImproving
	case delta >= minDelta:
		return TrendWorsening
	}
	return TrendStable
}

func round1(v float64) float64 {
	if v >= 0 {
		return float64(int(v*10+0.5)) / 10
	}
	return float64(int(v*10-0.5)) / 10
}
