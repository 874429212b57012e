package ranking

import (
	"math"

	"github.com/dharmasatrya/flightpoll/internal/models"
)

const (
	PriceWeight    = 0.5
	DurationWeight = 0.3
	StopsWeight    = 0.2
)

// BestValue scores one result against the batch maxima. Lower is
// better.
func BestValue(r models.FlightResult, maxPrice, maxDuration float64) float64 {
	priceScore := 0.0
	if maxPrice > 0 {
		priceScore = (r.MinPrice / maxPrice) * 100
	}

	durationScore := 0.0
	if maxDuration > 0 {
		durationScore = (float64(r.DurationMinutes) / maxDuration) * 100
	}

	stops := 0
	for _, leg := range r.Legs {
		stops += leg.Stops
	}
	stopsScore := float64(stops) * 15

	score := (priceScore * PriceWeight) + (durationScore * DurationWeight) + (stopsScore * StopsWeight)
	return math.Round(score*100) / 100
}

// Highlights picks the cheapest, best-value and fastest results of a
// batch, as surfaced on every poll page.
func Highlights(results []models.FlightResult) (cheapest, best, fastest *models.FlightResult) {
	if len(results) == 0 {
		return nil, nil, nil
	}

	maxPrice, maxDuration := maxima(results)

	cheapestIdx, bestIdx, fastestIdx := 0, 0, 0
	bestScore := BestValue(results[0], maxPrice, maxDuration)

	for i := 1; i < len(results); i++ {
		if results[i].MinPrice < results[cheapestIdx].MinPrice {
			cheapestIdx = i
		}
		if results[i].DurationMinutes < results[fastestIdx].DurationMinutes {
			fastestIdx = i
		}
		if score := BestValue(results[i], maxPrice, maxDuration); score < bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	return &results[cheapestIdx], &results[bestIdx], &results[fastestIdx]
}

func maxima(results []models.FlightResult) (maxPrice, maxDuration float64) {
	for _, r := range results {
		if r.MinPrice > maxPrice {
			maxPrice = r.MinPrice
		}
		if d := float64(r.DurationMinutes); d > maxDuration {
			maxDuration = d
		}
	}
	return maxPrice, maxDuration
}
