package filter

type SortKey string

const (
	// SortBest is the backend default. It must never be sent on the
	// wire: the poll endpoint rejects an explicit "best" value with a
	// 400, so Encode drops the sort field entirely for it.
	SortBest     SortKey = "best"
	SortPrice    SortKey = "price"
	SortDuration SortKey = "duration"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// TimeWindow is a time-of-day range in "HH:MM" local clock time.
type TimeWindow struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// Spec is the full set of client-managed result filters. Every field is
// optional; only fields the caller explicitly set are ever serialized,
// because the backend treats field presence as meaningful. Unset means
// nil pointer or empty slice.
type Spec struct {
	SortBy           *SortKey
	SortOrder        *SortOrder
	MaxStops         *int
	MaxDuration      *int
	PriceMin         *float64
	PriceMax         *float64
	DepartureWindows []TimeWindow
	ArrivalWindows   []TimeWindow
	Airlines         []string
	ExcludeAirlines  []string
	Agencies         []string
	ExcludeAgencies  []string
}

// IsZero reports whether no filter field has been set.
func (s *Spec) IsZero() bool {
	if s == nil {
		return true
	}
	return s.SortBy == nil && s.SortOrder == nil &&
		s.MaxStops == nil && s.MaxDuration == nil &&
		s.PriceMin == nil && s.PriceMax == nil &&
		len(s.DepartureWindows) == 0 && len(s.ArrivalWindows) == 0 &&
		len(s.Airlines) == 0 && len(s.ExcludeAirlines) == 0 &&
		len(s.Agencies) == 0 && len(s.ExcludeAgencies) == 0
}
