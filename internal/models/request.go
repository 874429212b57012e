package models

import "time"

// DateLayout is the wire format for all itinerary dates.
const DateLayout = "2006-01-02"

type TripType string

const (
	TripOneWay    TripType = "oneway"
	TripRoundTrip TripType = "roundtrip"
	TripMultiCity TripType = "multicity"
)

// SearchLeg is one origin→destination→date triple of an itinerary.
type SearchLeg struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
}

// SearchRequest describes one itinerary search to be submitted to the
// backend. Legs holds one entry for one-way trips, two for round trips
// (the second leg being the return) and two or more for multi-city.
type SearchRequest struct {
	Legs         []SearchLeg
	TripType     TripType
	Adults       int
	ChildrenAges []int
	CabinClass   string
	Currency     string
	Language     string
	Country      string
	AppCode      string
	UserID       string
}

func (r *SearchRequest) Validate() error {
	switch r.TripType {
	case TripOneWay:
		if len(r.Legs) != 1 {
			return ErrOneWayLegs
		}
	case TripRoundTrip:
		if len(r.Legs) != 2 {
			return ErrRoundTripLegs
		}
	case TripMultiCity:
		if len(r.Legs) < 2 {
			return ErrMultiCityLegs
		}
	default:
		return ErrUnknownTripType
	}

	for _, leg := range r.Legs {
		if leg.Origin == "" || leg.Destination == "" {
			return ErrMissingAirport
		}
		if leg.Origin == leg.Destination {
			return ErrSameAirport
		}
		if leg.Date == "" {
			return ErrMissingDate
		}
		if _, err := time.Parse(DateLayout, leg.Date); err != nil {
			return ErrBadDate
		}
	}

	if r.Adults <= 0 {
		r.Adults = 1
	}
	if r.CabinClass == "" {
		r.CabinClass = "economy"
	}
	return nil
}

type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrOneWayLegs      ValidationError = "one-way trip requires exactly one leg"
	ErrRoundTripLegs   ValidationError = "round trip requires an outbound and a return leg"
	ErrMultiCityLegs   ValidationError = "multi-city trip requires at least two legs"
	ErrUnknownTripType ValidationError = "unknown trip type"
	ErrMissingAirport  ValidationError = "leg origin and destination are required"
	ErrSameAirport     ValidationError = "leg origin must differ from destination"
	ErrMissingDate     ValidationError = "leg date is required"
	ErrBadDate         ValidationError = "leg date must be YYYY-MM-DD"
)
