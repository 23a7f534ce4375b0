package usecase

import "ChartFeed/internal/domain/models"

// Summarize derives current/max/min/average from a normalized window. The
// second return is false for an empty window; zeros are never fabricated.
// The average carries full precision; display rounding belongs to the
// presentation boundary.
func Summarize(window []models.ChartPoint) (models.SummaryStatistics, bool) {
	if len(window) == 0 {
		return models.SummaryStatistics{}, false
	}

	s := models.SummaryStatistics{
		Current: window[len(window)-1].ClosePrice,
		Max:     window[0].ClosePrice,
		Min:     window[0].ClosePrice,
	}
	sum := 0.0
	for _, p := range window {
		if p.ClosePrice > s.Max {
			s.Max = p.ClosePrice
		}
		if p.ClosePrice < s.Min {
			s.Min = p.ClosePrice
		}
		sum += p.ClosePrice
	}
	s.Average = sum / float64(len(window))
	return s, true
}
