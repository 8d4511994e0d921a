// Package profiling summarizes dataset columns before modeling.
package profiling

import (
	"math"

	"github.com/montanaflynn/stats"

	"winefit/domain/core"
	"winefit/domain/table"
)

// ColumnProfile holds the summary statistics of one column.
type ColumnProfile struct {
	Key      core.ColumnKey `json:"key"`
	Count    int            `json:"count"`
	Mean     float64        `json:"mean"`
	StdDev   float64        `json:"std_dev"`
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	Median   float64        `json:"median"`
	Q25      float64        `json:"q25"`
	Q75      float64        `json:"q75"`
	Skewness float64        `json:"skewness"`
}

// Profiler computes column profiles
type Profiler struct{}

// NewProfiler creates a new profiler
func NewProfiler() *Profiler {
	return &Profiler{}
}

// ProfileTable profiles every column in table order.
func (p *Profiler) ProfileTable(tbl *table.Table) ([]ColumnProfile, error) {
	keys := tbl.Columns()
	profiles := make([]ColumnProfile, 0, len(keys))
	for _, key := range keys {
		data, err := tbl.Column(key)
		if err != nil {
			return nil, err
		}
		profile, err := p.ProfileColumn(key, data)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// ProfileColumn computes the summary statistics for a single column.
func (p *Profiler) ProfileColumn(key core.ColumnKey, data []float64) (ColumnProfile, error) {
	profile := ColumnProfile{Key: key, Count: len(data)}
	if len(data) == 0 {
		return profile, core.ErrEmptyTable
	}

	mean, err := stats.Mean(data)
	if err != nil {
		return profile, err
	}

	stdDev, err := stats.StandardDeviation(data)
	if err != nil {
		return profile, err
	}

	min, err := stats.Min(data)
	if err != nil {
		return profile, err
	}

	max, err := stats.Max(data)
	if err != nil {
		return profile, err
	}

	median, err := stats.Median(data)
	if err != nil {
		return profile, err
	}

	q25 := mean
	q75 := mean
	if len(data) > 1 {
		if q25, err = stats.Percentile(data, 25); err != nil {
			return profile, err
		}
		if q75, err = stats.Percentile(data, 75); err != nil {
			return profile, err
		}
	}

	profile.Mean = mean
	profile.StdDev = stdDev
	profile.Min = min
	profile.Max = max
	profile.Median = median
	profile.Q25 = q25
	profile.Q75 = q75
	profile.Skewness = calculateSkewness(data, mean, stdDev)
	return profile, nil
}

// calculateSkewness computes sample skewness using the adjusted Fisher-Pearson coefficient
func calculateSkewness(data []float64, mean, stdDev float64) float64 {
	if len(data) < 3 || stdDev == 0 {
		return 0
	}

	n := float64(len(data))
	sumCubedDeviations := 0.0

	for _, x := range data {
		deviation := (x - mean) / stdDev
		sumCubedDeviations += deviation * deviation * deviation
	}

	skewness := sumCubedDeviations / n

	// Bias correction for sample skewness
	correction := math.Sqrt(n*(n-1)) / (n - 2)
	skewness *= correction

	return skewness
}
