package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightpoll/internal/models"
)

func result(id string, price float64, duration, stops int) models.FlightResult {
	return models.FlightResult{
		ID:              id,
		MinPrice:        price,
		DurationMinutes: duration,
		Legs:            []models.ResultLeg{{Stops: stops}},
	}
}

func TestHighlights(t *testing.T) {
	results := []models.FlightResult{
		result("pricey-fast", 9000, 120, 0),
		result("cheap-slow", 3000, 600, 2),
		result("balanced", 4000, 180, 0),
	}

	cheapest, best, fastest := Highlights(results)
	require.NotNil(t, cheapest)
	require.NotNil(t, best)
	require.NotNil(t, fastest)

	assert.Equal(t, "cheap-slow", cheapest.ID)
	assert.Equal(t, "pricey-fast", fastest.ID)
	assert.Equal(t, "balanced", best.ID)
}

func TestHighlightsEmpty(t *testing.T) {
	cheapest, best, fastest := Highlights(nil)
	assert.Nil(t, cheapest)
	assert.Nil(t, best)
	assert.Nil(t, fastest)
}

func TestBestValueLowerIsBetter(t *testing.T) {
	direct := result("direct", 4000, 180, 0)
	twoStops := result("two-stops", 4000, 180, 2)

	assert.Less(t,
		BestValue(direct, 9000, 600),
		BestValue(twoStops, 9000, 600))
}
