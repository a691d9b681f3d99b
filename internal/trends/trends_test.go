package trends

import (
	"testing"
	"time"

	"vitalis/internal/models"
)

func bpReadings(pairs ...[2]float64) []models.VitalReading {
	readings := make([]models.VitalReading, 0, len(pairs))
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i, p := range pairs {
		readings = append(readings, models.VitalReading{
			MetricType: models.MetricBloodPressure,
			Value:      p[0],
			Value2:     p[1],
			RecordedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return readings
}

func sugarReadings(values ...float64) []models.VitalReading {
	readings := make([]models.VitalReading, 0, len(values))
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)
	for i, v := range values {
		readings = append(readings, models.VitalReading{
			MetricType: models.MetricBloodSugar,
			Value:      v,
			RecordedAt: base.Add(time.Duration(i) * 24 * time.Hour),
		})
	}
	return readings
}

func TestAnalyzeBloodPressure_Status(t *testing.T) {
	tests := []struct {
		name       string
		readings   []models.VitalReading
		wantStatus string
	}{
		{
			name:       "no readings",
			readings:   nil,
			wantStatus: StatusInsufficientData,
		},
		{
			name:       "two readings is not enough",
			readings:   bpReadings([2]float64{118, 76}, [2]float64{119, 78}),
			wantStatus: StatusInsufficientData,
		},
		{
			name:       "optimal",
			readings:   bpReadings([2]float64{115, 75}, [2]float64{118, 76}, [2]float64{117, 74}),
			wantStatus: StatusOptimal,
		},
		{
			name:       "elevated systolic",
			readings:   bpReadings([2]float64{132, 78}, [2]float64{128, 79}, [2]float64{135, 76}),
			wantStatus: StatusElevated,
		},
		{
			name:       "high diastolic alone is high",
			readings:   bpReadings([2]float64{118, 95}, [2]float64{119, 92}, [2]float64{117, 94}),
			wantStatus: StatusHigh,
		},
		{
			name:       "boundary 120/80 is elevated not optimal",
			readings:   bpReadings([2]float64{120, 80}, [2]float64{120, 80}, [2]float64{120, 80}),
			wantStatus: StatusElevated,
		},
		{
			name:       "boundary 140/90 is high",
			readings:   bpReadings([2]float64{140, 90}, [2]float64{140, 90}, [2]float64{140, 90}),
			wantStatus: StatusHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeBloodPressure(tt.readings)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
			if got.SampleCount != len(tt.readings) {
				t.Errorf("sample count = %d, want %d", got.SampleCount, len(tt.readings))
			}
		})
	}
}

func TestAnalyzeBloodPressure_Trend(t *testing.T) {
	tests := []struct {
		name      string
		readings  []models.VitalReading
		wantTrend string
	}{
		{
			name: "falling systolic is improving",
			readings: bpReadings(
				[2]float64{140, 88}, [2]float64{138, 86},
				[2]float64{128, 82}, [2]float64{126, 80},
			),
			wantTrend: TrendImproving,
		},
		{
			name: "rising systolic is worsening",
			readings: bpReadings(
				[2]float64{120, 78}, [2]float64{122, 80},
				[2]float64{132, 84}, [2]float64{134, 86},
			),
			wantTrend: TrendWorsening,
		},
		{
			name: "small delta is stable",
			readings: bpReadings(
				[2]float64{124, 80}, [2]float64{125, 80},
				[2]float64{127, 81}, [2]float64{126, 80},
			),
			wantTrend: TrendStable,
		},
		{
			name: "exactly minimum delta is not stable",
			readings: bpReadings(
				[2]float64{120, 80}, [2]float64{120, 80},
				[2]float64{125, 80}, [2]float64{125, 80},
			),
			wantTrend: TrendWorsening,
		},
		{
			name:      "insufficient data has unknown trend",
			readings:  bpReadings([2]float64{120, 80}),
			wantTrend: TrendUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeBloodPressure(tt.readings)
			if got.Trend != tt.wantTrend {
				t.Errorf("trend = %q, want %q", got.Trend, tt.wantTrend)
			}
		})
	}
}

func TestAnalyzeBloodPressure_Averages(t *testing.T) {
	got := AnalyzeBloodPressure(bpReadings(
		[2]float64{120, 80}, [2]float64{130, 85}, [2]float64{125, 81},
	))

	if got.Averages["systolic"] != 125.0 {
		t.Errorf("systolic average = %v, want 125.0", got.Averages["systolic"])
	}
	if got.Averages["diastolic"] != 82.0 {
		t.Errorf("diastolic average = %v, want 82.0", got.Averages["diastolic"])
	}
}

func TestAnalyzeBloodSugar_Status(t *testing.T) {
	tests := []struct {
		name       string
		readings   []models.VitalReading
		wantStatus string
	}{
		{
			name:       "empty",
			readings:   nil,
			wantStatus: StatusInsufficientData,
		},
		{
			name:       "normal",
			readings:   sugarReadings(90, 95, 92),
			wantStatus: StatusNormal,
		},
		{
			name:       "elevated",
			readings:   sugarReadings(110, 115, 112),
			wantStatus: StatusElevated,
		},
		{
			name:       "high",
			readings:   sugarReadings(130, 140, 135),
			wantStatus: StatusHigh,
		},
		{
			name:       "boundary 100 is elevated",
			readings:   sugarReadings(100, 100, 100),
			wantStatus: StatusElevated,
		},
		{
			name:       "boundary 126 is high",
			readings:   sugarReadings(126, 126, 126),
			wantStatus: StatusHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeBloodSugar(tt.readings)
			if got.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestAnalyzeBloodSugar_Trend(t *testing.T) {
	tests := []struct {
		name      string
		readings  []models.VitalReading
		wantTrend string
	}{
		{
			name:      "dropping glucose is improving",
			readings:  sugarReadings(130, 128, 112, 110),
			wantTrend: TrendImproving,
		},
		{
			name:      "rising glucose is worsening",
			readings:  sugarReadings(95, 98, 112, 115),
			wantTrend: TrendWorsening,
		},
		{
			name:      "delta under 10 is stable",
			readings:  sugarReadings(100, 102, 106, 104),
			wantTrend: TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeBloodSugar(tt.readings)
			if got.Trend != tt.wantTrend {
				t.Errorf("trend = %q, want %q", got.Trend, tt.wantTrend)
			}
		})
	}
}

func TestAnalyzeBloodSugar_OddSplit(t *testing.T) {
	// 5 readings split 2/3; second-half mean must use 3 samples
	got := AnalyzeBloodSugar(sugarReadings(120, 120, 100, 100, 100))
	if got.Trend != TrendImproving {
		t.Errorf("trend = %q, want %q", got.Trend, TrendImproving)
	}
}
