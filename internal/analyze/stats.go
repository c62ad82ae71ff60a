package analyze

import (
	"math"
	"sort"

	"github.com/manishghoshal99/mastolytics/internal/model"
)

// SentimentStats computes distribution statistics over sentiment scores.
// An empty input yields all-zero statistics rather than NaN.
// Std is the population standard deviation.
func SentimentStats(values []float64) model.SentimentStats {
	stats := model.SentimentStats{TotalPosts: int64(len(values))}
	if len(values) == 0 {
		return stats
	}

	stats.Min = values[0]
	stats.Max = values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(values))

	var sqDiff float64
	for _, v := range values {
		d := v - stats.Mean
		sqDiff += d * d
	}
	stats.Std = math.Sqrt(sqDiff / float64(len(values)))

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		stats.Median = sorted[mid]
	} else {
		stats.Median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return stats
}
