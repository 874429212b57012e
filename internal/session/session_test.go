package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightpoll/internal/filter"
	"github.com/dharmasatrya/flightpoll/internal/models"
	"github.com/dharmasatrya/flightpoll/internal/orchestrator"
)

type fakeBackend struct {
	mu        sync.Mutex
	searches  []models.SearchRequest
	payloads  []*filter.WirePayload
	pollPages []*models.PollPage
	nextID    int
}

func (f *fakeBackend) CreateSearch(ctx context.Context, req models.SearchRequest) (*models.SearchHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, req)
	f.nextID++
	return &models.SearchHandle{SearchID: fmt.Sprintf("s%d", f.nextID)}, nil
}

func (f *fakeBackend) Poll(ctx context.Context, handle models.SearchHandle, page, limit int, payload *filter.WirePayload) (*models.PollPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	if len(f.pollPages) == 0 {
		return &models.PollPage{Count: 0, Cache: true}, nil
	}
	p := f.pollPages[0]
	if len(f.pollPages) > 1 {
		f.pollPages = f.pollPages[1:]
	}
	return p, nil
}

func (f *fakeBackend) lastSearch() models.SearchRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[len(f.searches)-1]
}

func (f *fakeBackend) lastPayload() *filter.WirePayload {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.payloads) == 0 {
		return nil
	}
	return f.payloads[len(f.payloads)-1]
}

func pollPage(count int, cache bool, ids ...string) *models.PollPage {
	results := make([]models.FlightResult, len(ids))
	for i, id := range ids {
		results[i] = models.FlightResult{ID: id}
	}
	return &models.PollPage{Count: count, Cache: cache, Results: results}
}

func fastCfg() orchestrator.Config {
	cfg := orchestrator.DefaultConfig()
	cfg.PollInterval = 2 * time.Millisecond
	cfg.RetryDelays = []time.Duration{time.Millisecond}
	return cfg
}

func oneWayRequest() models.SearchRequest {
	return models.SearchRequest{
		TripType: models.TripOneWay,
		Legs:     []models.SearchLeg{{Origin: "DEL", Destination: "BOM", Date: "2026-09-10"}},
		Adults:   1,
	}
}

func waitStopped(t *testing.T, s *Session) orchestrator.Status {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Snapshot().Phase == orchestrator.PhaseStopped
	}, 2*time.Second, time.Millisecond)
	return s.Snapshot()
}

func TestStartRejectsInvalidRequest(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, fastCfg())
	defer s.Close()

	req := models.SearchRequest{
		TripType: models.TripMultiCity,
		Legs:     []models.SearchLeg{{Origin: "DEL", Destination: "BOM", Date: "2026-09-10"}},
	}
	_, err := s.Start(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrMultiCityLegs)
	assert.Empty(t, backend.searches)
}

func TestStartPollsAndAccumulates(t *testing.T) {
	backend := &fakeBackend{pollPages: []*models.PollPage{
		pollPage(2, true, "a", "b"),
	}}
	s := New(backend, fastCfg())
	defer s.Close()

	handle, err := s.Start(context.Background(), oneWayRequest())
	require.NoError(t, err)
	assert.Equal(t, "s1", handle.SearchID)

	st := waitStopped(t, s)
	assert.Equal(t, 2, st.State.LoadedCount)
}

func TestStartAssignsUserID(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, fastCfg())
	defer s.Close()

	_, err := s.Start(context.Background(), oneWayRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, backend.lastSearch().UserID)
}

func TestApplyFilterRestartsFromPageOne(t *testing.T) {
	backend := &fakeBackend{pollPages: []*models.PollPage{
		pollPage(2, true, "a", "b"),
		pollPage(1, true, "c"),
	}}
	s := New(backend, fastCfg())
	defer s.Close()

	_, err := s.Start(context.Background(), oneWayRequest())
	require.NoError(t, err)
	waitStopped(t, s)

	price := filter.SortPrice
	require.NoError(t, s.ApplyFilter(context.Background(), &filter.Spec{SortBy: &price}))

	require.Eventually(t, func() bool {
		st := s.Snapshot()
		return st.Phase == orchestrator.PhaseStopped && st.State.LoadedCount == 1
	}, 2*time.Second, time.Millisecond)

	st := s.Snapshot()
	assert.Equal(t, "c", st.State.Results[0].ID, "pre-filter results must be dropped")

	payload := backend.lastPayload()
	require.NotNil(t, payload)
	require.NotNil(t, payload.SortBy)
	assert.Equal(t, "price", *payload.SortBy)
}

func TestApplyFilterBeforeStartIsStored(t *testing.T) {
	backend := &fakeBackend{pollPages: []*models.PollPage{
		pollPage(1, true, "a"),
	}}
	s := New(backend, fastCfg())
	defer s.Close()

	maxStops := 0
	require.NoError(t, s.ApplyFilter(context.Background(), &filter.Spec{MaxStops: &maxStops}))
	assert.Empty(t, backend.payloads, "no poll before a search exists")

	_, err := s.Start(context.Background(), oneWayRequest())
	require.NoError(t, err)
	waitStopped(t, s)

	payload := backend.lastPayload()
	require.NotNil(t, payload)
	require.NotNil(t, payload.MaxStops)
	assert.Equal(t, 0, *payload.MaxStops)
}

func TestChangeTripTypePromotesToRoundTrip(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, fastCfg())
	defer s.Close()

	_, err := s.Start(context.Background(), oneWayRequest())
	require.NoError(t, err)

	require.NoError(t, s.ChangeTripType(context.Background(), models.TripRoundTrip))

	req := backend.lastSearch()
	assert.Equal(t, models.TripRoundTrip, req.TripType)
	require.Len(t, req.Legs, 2)
	assert.Equal(t, "BOM", req.Legs[1].Origin)
	assert.Equal(t, "DEL", req.Legs[1].Destination)
	// A week after the outbound when no return date was ever picked.
	assert.Equal(t, "2026-09-17", req.Legs[1].Date)
}

func TestChangeTripTypeCollapsesToOneWay(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, fastCfg())
	defer s.Close()

	req := models.SearchRequest{
		TripType: models.TripRoundTrip,
		Legs: []models.SearchLeg{
			{Origin: "DEL", Destination: "BOM", Date: "2026-09-10"},
			{Origin: "BOM", Destination: "DEL", Date: "2026-09-20"},
		},
		Adults: 1,
	}
	_, err := s.Start(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, s.ChangeTripType(context.Background(), models.TripOneWay))

	got := backend.lastSearch()
	assert.Equal(t, models.TripOneWay, got.TripType)
	require.Len(t, got.Legs, 1)
	assert.Equal(t, "DEL", got.Legs[0].Origin)
}

func TestChangeTripTypeRecomputesReturnAfterCollapse(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, fastCfg())
	defer s.Close()

	req := models.SearchRequest{
		TripType: models.TripRoundTrip,
		Legs: []models.SearchLeg{
			{Origin: "DEL", Destination: "BOM", Date: "2026-09-10"},
			{Origin: "BOM", Destination: "DEL", Date: "2026-09-20"},
		},
		Adults: 1,
	}
	_, err := s.Start(context.Background(), req)
	require.NoError(t, err)

	// Collapsing drops the return date; promoting again starts from
	// the outbound and adds a week.
	require.NoError(t, s.ChangeTripType(context.Background(), models.TripOneWay))
	require.NoError(t, s.ChangeTripType(context.Background(), models.TripRoundTrip))

	got := backend.lastSearch()
	require.Len(t, got.Legs, 2)
	assert.Equal(t, "2026-09-17", got.Legs[1].Date)
}

func TestChangeTripTypeNoOpWhenUnchanged(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, fastCfg())
	defer s.Close()

	_, err := s.Start(context.Background(), oneWayRequest())
	require.NoError(t, err)
	searchesBefore := len(backend.searches)

	require.NoError(t, s.ChangeTripType(context.Background(), models.TripOneWay))
	assert.Equal(t, searchesBefore, len(backend.searches))
}

func TestChangeTripTypeToMultiCityNeedsLegs(t *testing.T) {
	backend := &fakeBackend{}
	s := New(backend, fastCfg())
	defer s.Close()

	_, err := s.Start(context.Background(), oneWayRequest())
	require.NoError(t, err)

	err = s.ChangeTripType(context.Background(), models.TripMultiCity)
	assert.ErrorIs(t, err, models.ErrMultiCityLegs)
}
