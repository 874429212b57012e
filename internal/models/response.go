package models

// CurrencyInfo describes how the backend expects prices in the selected
// currency to be displayed.
type CurrencyInfo struct {
	Code               string `json:"code"`
	Symbol             string `json:"symbol"`
	ThousandsSeparator string `json:"thousands_separator"`
	DecimalSeparator   string `json:"decimal_separator"`
	DecimalDigits      int    `json:"decimal_digits"`
	SymbolOnLeft       bool   `json:"symbol_on_left"`
}

// SearchHandle is the backend's identifier for one submitted search,
// issued by POST /api/search/. It is immutable once issued and scoped
// to the poll session that created it.
type SearchHandle struct {
	SearchID     string       `json:"search_id"`
	Language     string       `json:"language"`
	Currency     string       `json:"currency"`
	Mode         string       `json:"mode"`
	CurrencyInfo CurrencyInfo `json:"currency_info"`
}

// AirlineFacet is a per-airline summary included with every poll page.
type AirlineFacet struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	MinPrice float64 `json:"min_price"`
	Count    int     `json:"count"`
}

// AgencyFacet is a per-agency summary included with every poll page.
type AgencyFacet struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	MinPrice float64 `json:"min_price"`
	Count    int     `json:"count"`
}

// PollPage is one response from POST /api/poll/. Count is the
// server-declared total for the whole search, which may exceed what has
// been paginated so far. Cache reports backend completeness: false means
// the backend is still computing and the same page should be polled
// again later.
type PollPage struct {
	Count          int            `json:"count"`
	Next           *string        `json:"next"`
	Previous       *string        `json:"previous"`
	Cache          bool           `json:"cache"`
	PassengerCount int            `json:"passenger_count"`
	MinDuration    int            `json:"min_duration"`
	MaxDuration    int            `json:"max_duration"`
	MinPrice       float64        `json:"min_price"`
	MaxPrice       float64        `json:"max_price"`
	Airlines       []AirlineFacet `json:"airlines"`
	Agencies       []AgencyFacet  `json:"agencies"`
	CheapestFlight *FlightResult  `json:"cheapest_flight"`
	BestFlight     *FlightResult  `json:"best_flight"`
	FastestFlight  *FlightResult  `json:"fastest_flight"`
	Results        []FlightResult `json:"results"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
