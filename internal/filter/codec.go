package filter

// WirePayload is the JSON body of POST /api/poll/. Pointer fields with
// omitempty keep unset filters off the wire entirely; the backend
// interprets presence, not value, for several of them.
type WirePayload struct {
	SortBy           *string      `json:"sort_by,omitempty"`
	SortOrder        *string      `json:"sort_order,omitempty"`
	MaxStops         *int         `json:"max_stops,omitempty"`
	MaxDuration      *int         `json:"max_duration,omitempty"`
	PriceMin         *float64     `json:"price_min,omitempty"`
	PriceMax         *float64     `json:"price_max,omitempty"`
	DepartureTimes   []TimeWindow `json:"departure_times,omitempty"`
	ArrivalTimes     []TimeWindow `json:"arrival_times,omitempty"`
	Airlines         []string     `json:"airlines,omitempty"`
	ExcludeAirlines  []string     `json:"exclude_airlines,omitempty"`
	Agencies         []string     `json:"agencies,omitempty"`
	ExcludeAgencies  []string     `json:"exclude_agencies,omitempty"`
}

// Encode converts a Spec into the minimal wire payload for a search
// with legCount legs. A nil or empty Spec encodes to nil, which callers
// send as an empty body.
//
// Two rules are inherited from the backend contract rather than chosen
// here: an explicit "best" sort is never emitted (the backend 400s on
// it), and a single configured time window on a two-leg search is
// duplicated for the return leg. Whether return legs should get an
// independent window is an open product question; until then the
// duplication matches what the backend has always received.
func Encode(s *Spec, legCount int) *WirePayload {
	if s.IsZero() {
		return nil
	}

	p := &WirePayload{
		MaxStops:        s.MaxStops,
		MaxDuration:     s.MaxDuration,
		PriceMin:        s.PriceMin,
		PriceMax:        s.PriceMax,
		Airlines:        s.Airlines,
		ExcludeAirlines: s.ExcludeAirlines,
		Agencies:        s.Agencies,
		ExcludeAgencies: s.ExcludeAgencies,
	}

	if s.SortBy != nil && *s.SortBy != SortBest {
		v := string(*s.SortBy)
		p.SortBy = &v
		if s.SortOrder != nil {
			o := string(*s.SortOrder)
			p.SortOrder = &o
		}
	}

	p.DepartureTimes = expandWindows(s.DepartureWindows, legCount)
	p.ArrivalTimes = expandWindows(s.ArrivalWindows, legCount)

	return p
}

// expandWindows fits the configured per-leg windows to the leg count.
// One window on a two-leg search is applied to both legs.
func expandWindows(windows []TimeWindow, legCount int) []TimeWindow {
	if len(windows) == 0 {
		return nil
	}
	if len(windows) == 1 && legCount == 2 {
		return []TimeWindow{windows[0], windows[0]}
	}
	if len(windows) > legCount && legCount > 0 {
		return windows[:legCount]
	}
	return windows
}
