package mockapi

import (
	"fmt"
	"math/rand"

	"github.com/dharmasatrya/flightpoll/internal/models"
)

type carrier struct {
	code string
	name string
}

var carriers = []carrier{
	{"AI", "Air India"},
	{"6E", "IndiGo"},
	{"UK", "Vistara"},
	{"SG", "SpiceJet"},
	{"QP", "Akasa Air"},
}

type agency struct {
	code string
	name string
}

var agencies = []agency{
	{"CT", "Cleartrip"},
	{"MMT", "MakeMyTrip"},
	{"EMT", "EaseMyTrip"},
}

// generateResults builds a deterministic synthetic result set for one
// search. The same seed always yields the same ids, so repeated polls
// of the same job page consistently.
func generateResults(legs []models.SearchLeg, seed int64, count int) []models.FlightResult {
	rng := rand.New(rand.NewSource(seed))
	results := make([]models.FlightResult, 0, count)

	for i := 0; i < count; i++ {
		basePrice := 3000 + float64(rng.Intn(12000))
		totalDuration := 0

		resultLegs := make([]models.ResultLeg, 0, len(legs))
		for _, leg := range legs {
			stops := rng.Intn(3)
			duration := 90 + rng.Intn(240) + stops*60
			totalDuration += duration
			resultLegs = append(resultLegs, buildLeg(leg, stops, duration, rng))
		}

		offers := make([]models.Offer, 0, len(agencies))
		for _, ag := range agencies {
			markup := float64(rng.Intn(500))
			offers = append(offers, models.Offer{
				AgencyCode: ag.code,
				AgencyName: ag.name,
				Price:      basePrice + markup,
				Currency:   "INR",
				DeepLink:   fmt.Sprintf("https://%s.example/book/%d", ag.code, i),
			})
		}

		results = append(results, models.FlightResult{
			ID:              fmt.Sprintf("r%d-%d", seed%100000, i),
			DurationMinutes: totalDuration,
			MinPrice:        basePrice,
			MaxPrice:        basePrice + 500,
			Legs:            resultLegs,
			Offers:          offers,
		})
	}
	return results
}

func buildLeg(leg models.SearchLeg, stops, duration int, rng *rand.Rand) models.ResultLeg {
	ca := carriers[rng.Intn(len(carriers))]
	depHour := 5 + rng.Intn(17)
	depMin := 5 * rng.Intn(12)

	arrTotal := depHour*60 + depMin + duration
	dayOffset := arrTotal / (24 * 60)
	arrTotal %= 24 * 60

	segments := []models.Segment{{
		Carrier:          ca.code,
		CarrierName:      ca.name,
		FlightNumber:     fmt.Sprintf("%s%03d", ca.code, 100+rng.Intn(900)),
		Origin:           leg.Origin,
		Destination:      leg.Destination,
		DepartureTime:    fmt.Sprintf("%02d:%02d", depHour, depMin),
		ArrivalTime:      fmt.Sprintf("%02d:%02d", arrTotal/60, arrTotal%60),
		ArrivalDayOffset: dayOffset,
	}}

	return models.ResultLeg{
		Origin:          leg.Origin,
		Destination:     leg.Destination,
		Date:            leg.Date,
		Stops:           stops,
		DurationMinutes: duration,
		Segments:        segments,
	}
}

func buildFacets(results []models.FlightResult) ([]models.AirlineFacet, []models.AgencyFacet) {
	type stat struct {
		name     string
		minPrice float64
		count    int
	}

	airlineStats := make(map[string]*stat)
	agencyStats := make(map[string]*stat)

	for _, r := range results {
		seen := make(map[string]bool)
		for _, leg := range r.Legs {
			for _, seg := range leg.Segments {
				if seen[seg.Carrier] {
					continue
				}
				seen[seg.Carrier] = true
				st, ok := airlineStats[seg.Carrier]
				if !ok {
					st = &stat{name: seg.CarrierName, minPrice: r.MinPrice}
					airlineStats[seg.Carrier] = st
				}
				st.count++
				if r.MinPrice < st.minPrice {
					st.minPrice = r.MinPrice
				}
			}
		}
		for _, o := range r.Offers {
			st, ok := agencyStats[o.AgencyCode]
			if !ok {
				st = &stat{name: o.AgencyName, minPrice: o.Price}
				agencyStats[o.AgencyCode] = st
			}
			st.count++
			if o.Price < st.minPrice {
				st.minPrice = o.Price
			}
		}
	}

	airlines := make([]models.AirlineFacet, 0, len(airlineStats))
	for code, st := range airlineStats {
		airlines = append(airlines, models.AirlineFacet{
			Code: code, Name: st.name, MinPrice: st.minPrice, Count: st.count,
		})
	}
	agenciesOut := make([]models.AgencyFacet, 0, len(agencyStats))
	for code, st := range agencyStats {
		agenciesOut = append(agenciesOut, models.AgencyFacet{
			Code: code, Name: st.name, MinPrice: st.minPrice, Count: st.count,
		})
	}
	return airlines, agenciesOut
}
