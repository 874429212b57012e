package models

// Segment is one flown segment of a leg: a single carrier-operated flight.
// Scheduled times are local clock times as reported by the backend;
// ArrivalDayOffset is the number of calendar days the arrival falls after
// the departure date.
type Segment struct {
	Carrier          string `json:"carrier"`
	CarrierName      string `json:"carrier_name,omitempty"`
	FlightNumber     string `json:"flight_number"`
	Origin           string `json:"origin"`
	Destination      string `json:"destination"`
	DepartureTime    string `json:"departure_time"`
	ArrivalTime      string `json:"arrival_time"`
	ArrivalDayOffset int    `json:"arrival_day_offset"`
}

// ResultLeg is one bound of a flight result (outbound, return, or one
// multi-city leg), possibly made of several segments.
type ResultLeg struct {
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	Date            string    `json:"date"`
	Stops           int       `json:"stops"`
	DurationMinutes int       `json:"duration"`
	Segments        []Segment `json:"segments"`
}

// Offer is one bookable price from a pricing source.
type Offer struct {
	AgencyCode string  `json:"agency_code"`
	AgencyName string  `json:"agency_name"`
	Price      float64 `json:"price"`
	Currency   string  `json:"currency"`
	DeepLink   string  `json:"deep_link"`
}

// FlightResult is a single priced itinerary returned by a poll. ID is
// unique within one search session and results are immutable once
// received.
type FlightResult struct {
	ID              string      `json:"id"`
	DurationMinutes int         `json:"duration"`
	MinPrice        float64     `json:"min_price"`
	MaxPrice        float64     `json:"max_price"`
	Legs            []ResultLeg `json:"legs"`
	Offers          []Offer     `json:"offers"`
}
