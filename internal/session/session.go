// Package session ties one logical search together: it turns an
// itinerary into a backend search job, owns the resulting handle, and
// drives the orchestrator through filter and trip-type changes.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightpoll/internal/filter"
	"github.com/dharmasatrya/flightpoll/internal/models"
	"github.com/dharmasatrya/flightpoll/internal/orchestrator"
)

// Backend is the slice of the API the session needs: search creation
// plus the poll source handed to the orchestrator.
type Backend interface {
	CreateSearch(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, error)
	orchestrator.PollSource
}

type Session struct {
	backend Backend
	orch    *orchestrator.Orchestrator
	logger  *zap.Logger

	mu     sync.Mutex
	req    models.SearchRequest
	handle *models.SearchHandle
	spec   *filter.Spec
}

type Option func(*Session)

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

func New(backend Backend, cfg orchestrator.Config, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.orch = orchestrator.New(backend, cfg, s.logger)
	return s
}

// Start validates and submits a search, then begins polling from page
// one. A previously running search for this session is superseded: its
// in-flight responses will be discarded by the orchestrator's
// generation fence. Filters applied earlier in the session stay
// applied.
func (s *Session) Start(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}

	handle, err := s.backend.CreateSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.req = req
	s.handle = handle
	payload := filter.Encode(s.spec, len(req.Legs))
	s.mu.Unlock()

	s.logger.Info("search started",
		zap.String("search_id", handle.SearchID),
		zap.String("trip_type", string(req.TripType)))

	s.orch.Begin(ctx, *handle, payload)
	return handle, nil
}

// ApplyFilter replaces the active filter and restarts pagination from
// page one. Server-side filtering is stateful per poll request, not
// cumulative, so accumulated results from the old filter are dropped
// rather than mixed in.
func (s *Session) ApplyFilter(ctx context.Context, spec *filter.Spec) error {
	s.mu.Lock()
	s.spec = spec
	handle := s.handle
	payload := filter.Encode(spec, len(s.req.Legs))
	s.mu.Unlock()

	if handle == nil {
		return nil
	}
	s.orch.Begin(ctx, *handle, payload)
	return nil
}

// ChangeTripType switches the itinerary shape and re-issues the search,
// keeping previously picked dates where they still make sense: a
// one-way promoted to round trip gets a return a week after the
// outbound unless a return date already exists, and a round trip
// collapsed to one-way drops the return leg.
func (s *Session) ChangeTripType(ctx context.Context, t models.TripType) error {
	s.mu.Lock()
	if t == s.req.TripType {
		s.mu.Unlock()
		return nil
	}
	req := s.req

	switch t {
	case models.TripOneWay:
		if len(req.Legs) > 1 {
			req.Legs = req.Legs[:1]
		}
	case models.TripRoundTrip:
		if len(req.Legs) == 0 {
			s.mu.Unlock()
			return models.ErrRoundTripLegs
		}
		out := req.Legs[0]
		ret := models.SearchLeg{
			Origin:      out.Destination,
			Destination: out.Origin,
			Date:        addDays(out.Date, 7),
		}
		if len(req.Legs) >= 2 && req.Legs[1].Date != "" {
			ret.Date = req.Legs[1].Date
		}
		req.Legs = []models.SearchLeg{out, ret}
	case models.TripMultiCity:
		if len(req.Legs) < 2 {
			s.mu.Unlock()
			return models.ErrMultiCityLegs
		}
	default:
		s.mu.Unlock()
		return models.ErrUnknownTripType
	}
	req.TripType = t
	s.mu.Unlock()

	_, err := s.Start(ctx, req)
	return err
}

// LoadMore fetches the next page for the active search.
func (s *Session) LoadMore() bool {
	s.mu.Lock()
	handle := s.handle
	payload := filter.Encode(s.spec, len(s.req.Legs))
	s.mu.Unlock()

	if handle == nil {
		return false
	}
	return s.orch.LoadMore(*handle, payload)
}

// Filter returns the currently applied filter spec, nil when none.
func (s *Session) Filter() *filter.Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spec
}

// Handle returns the active search handle, nil before Start succeeds.
func (s *Session) Handle() *models.SearchHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

func (s *Session) Snapshot() orchestrator.Status {
	return s.orch.Snapshot()
}

func (s *Session) Updates() <-chan orchestrator.Status {
	return s.orch.Updates()
}

// Close abandons the session; pending polls are cancelled and any late
// responses are discarded.
func (s *Session) Close() {
	s.orch.Cancel()
}

func addDays(date string, days int) string {
	t, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return date
	}
	return t.AddDate(0, 0, days).Format(models.DateLayout)
}
