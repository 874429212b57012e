// Package accumulator merges successive poll pages into one
// deduplicated, order-preserving collection of flight results.
package accumulator

import "github.com/dharmasatrya/flightpoll/internal/models"

// State is a read-only snapshot of the accumulated results handed to
// consumers. Results is a copy; callers may hold it across merges.
type State struct {
	Results       []models.FlightResult
	LoadedCount   int
	DeclaredTotal int
	CacheDone     bool
	Page          int
	MinPrice      float64
	MaxPrice      float64
	Airlines      []models.AirlineFacet
	Agencies      []models.AgencyFacet
}

// Complete reports whether the backend has finished computing and every
// declared result has been loaded. Both conditions are required: an
// empty page or a cache flag alone is not a completion signal.
func (s State) Complete() bool {
	return s.CacheDone && s.LoadedCount >= s.DeclaredTotal
}

// Accumulator collects unique results across poll pages. It is not
// goroutine-safe: only the owning orchestrator mutates it, consumers
// are handed State copies.
type Accumulator struct {
	results   []models.FlightResult
	seen      map[string]struct{}
	total     int
	cacheDone bool
	page      int
	minPrice  float64
	maxPrice  float64
	airlines  []models.AirlineFacet
	agencies  []models.AgencyFacet
}

func New() *Accumulator {
	return &Accumulator{
		seen: make(map[string]struct{}),
	}
}

// Merge folds one poll page in. Results already seen are skipped, new
// ones are appended in arrival order, so merging the same page twice is
// a no-op. Page-level metadata (declared total, cache flag, price
// bounds, facets) is taken from the incoming page unconditionally — the
// latest response wins.
func (a *Accumulator) Merge(page int, p *models.PollPage) State {
	for _, r := range p.Results {
		if _, dup := a.seen[r.ID]; dup {
			continue
		}
		a.seen[r.ID] = struct{}{}
		a.results = append(a.results, r)
	}

	a.total = p.Count
	a.cacheDone = p.Cache
	a.page = page
	a.minPrice = p.MinPrice
	a.maxPrice = p.MaxPrice
	if p.Airlines != nil {
		a.airlines = p.Airlines
	}
	if p.Agencies != nil {
		a.agencies = p.Agencies
	}

	return a.Snapshot()
}

// Reset drops everything. Used when a new search, filter change, or
// trip-type change restarts pagination from page one.
func (a *Accumulator) Reset() {
	a.results = nil
	a.seen = make(map[string]struct{})
	a.total = 0
	a.cacheDone = false
	a.page = 0
	a.minPrice = 0
	a.maxPrice = 0
	a.airlines = nil
	a.agencies = nil
}

// Snapshot returns a copy of the current state.
func (a *Accumulator) Snapshot() State {
	results := make([]models.FlightResult, len(a.results))
	copy(results, a.results)

	return State{
		Results:       results,
		LoadedCount:   len(a.results),
		DeclaredTotal: a.total,
		CacheDone:     a.cacheDone,
		Page:          a.page,
		MinPrice:      a.minPrice,
		MaxPrice:      a.maxPrice,
		Airlines:      a.airlines,
		Agencies:      a.agencies,
	}
}
