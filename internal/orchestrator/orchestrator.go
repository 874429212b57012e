// Package orchestrator drives the search → poll → retry → paginate →
// stop loop for one search session. It is the sole retry authority:
// the transport underneath never retries, and the accumulator it owns
// is never touched by anyone else.
package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/flightpoll/internal/accumulator"
	"github.com/dharmasatrya/flightpoll/internal/api"
	"github.com/dharmasatrya/flightpoll/internal/filter"
	"github.com/dharmasatrya/flightpoll/internal/models"
	"github.com/dharmasatrya/flightpoll/internal/ratelimit"
)

type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhasePolling        Phase = "polling"
	PhaseAccumulating   Phase = "accumulating"
	PhaseWaitingBackend Phase = "waiting_backend"
	PhaseStopped        Phase = "stopped"
	PhaseFailed         Phase = "failed"
)

// PollSource is the transport the orchestrator polls. *api.Client
// satisfies it; tests substitute scripted fakes.
type PollSource interface {
	Poll(ctx context.Context, handle models.SearchHandle, page, limit int, payload *filter.WirePayload) (*models.PollPage, error)
}

type Config struct {
	// InitialPageSize is the limit for the first page; kept small for a
	// fast first paint. PageSize is the larger limit for every page
	// fetched by LoadMore.
	InitialPageSize int
	PageSize        int

	// PollInterval is how long to wait before re-polling the same page
	// while the backend reports cache=false.
	PollInterval time.Duration

	// RetryDelays is the backoff ladder for transient poll failures,
	// indexed by attempt and clamped to the last entry. MaxRetries
	// bounds the number of retries per page.
	RetryDelays []time.Duration
	MaxRetries  int

	// PageTwoRetryDelay shortens the first retry on page 2 only. The
	// backend is observed to 404 on page 2 for a short window right
	// after search creation; this is a workaround for that quirk, not a
	// general rule.
	PageTwoRetryDelay time.Duration

	// LoadMoreTimeout force-clears the loading flag if a LoadMore cycle
	// has not resolved by then, so consumers are never stuck on a
	// permanent spinner. The underlying request is not cancelled.
	LoadMoreTimeout time.Duration

	// RateLimiter, when set, is consulted before every outbound poll.
	RateLimiter *ratelimit.HostLimiter
	RateKey     string
}

func DefaultConfig() Config {
	return Config{
		InitialPageSize:   8,
		PageSize:          20,
		PollInterval:      2 * time.Second,
		RetryDelays:       []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		MaxRetries:        3,
		PageTwoRetryDelay: 500 * time.Millisecond,
		LoadMoreTimeout:   15 * time.Second,
	}
}

// Status is the consumer-facing view of the session: current phase,
// accumulated state and, for PhaseFailed, the terminal error. Consumers
// observe state; no errors are delivered through callbacks.
type Status struct {
	Phase   Phase
	State   accumulator.State
	HasMore bool
	Loading bool
	Err     error
}

// Orchestrator runs at most one outstanding poll per session at any
// time; page cursor and accumulator stay consistent without consumers
// ever seeing partial merges. Every poll goroutine carries the
// generation it was started under, and any response arriving for a
// superseded generation is discarded, never merged.
type Orchestrator struct {
	source PollSource
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	gen     int64
	phase   Phase
	acc     *accumulator.Accumulator
	page    int
	hasMore bool
	loading bool
	lastErr error
	runCtx  context.Context
	cancel  context.CancelFunc
	updates chan Status
}

func New(source PollSource, cfg Config, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.InitialPageSize <= 0 {
		cfg.InitialPageSize = def.InitialPageSize
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if len(cfg.RetryDelays) == 0 {
		cfg.RetryDelays = def.RetryDelays
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.PageTwoRetryDelay <= 0 {
		cfg.PageTwoRetryDelay = def.PageTwoRetryDelay
	}
	if cfg.LoadMoreTimeout <= 0 {
		cfg.LoadMoreTimeout = def.LoadMoreTimeout
	}

	return &Orchestrator{
		source:  source,
		cfg:     cfg,
		logger:  logger,
		phase:   PhaseIdle,
		acc:     accumulator.New(),
		updates: make(chan Status, 1),
	}
}

// Begin starts (or restarts) polling for a search handle. Any previous
// generation is cancelled and its late responses will be discarded. The
// accumulator is reset and page one is fetched at the initial page
// size.
func (o *Orchestrator) Begin(ctx context.Context, handle models.SearchHandle, payload *filter.WirePayload) {
	o.mu.Lock()
	o.gen++
	gen := o.gen
	if o.cancel != nil {
		o.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.runCtx = runCtx
	o.cancel = cancel

	o.acc.Reset()
	o.page = 1
	o.hasMore = true
	o.loading = false
	o.lastErr = nil
	o.phase = PhasePolling
	o.publishLocked()
	o.mu.Unlock()

	o.logger.Info("poll session started",
		zap.String("search_id", handle.SearchID),
		zap.Int64("generation", gen))

	go o.runPage(runCtx, gen, handle, payload, 1, o.cfg.InitialPageSize)
}

// LoadMore advances to the next page, at the larger page size. It is a
// no-op while a poll is already in flight, after exhaustion, or once
// the continuation rule says the session is complete. Reports whether a
// fetch was started.
func (o *Orchestrator) LoadMore(handle models.SearchHandle, payload *filter.WirePayload) bool {
	o.mu.Lock()
	if o.loading || !o.hasMore || o.phase == PhasePolling || o.phase == PhaseWaitingBackend || o.phase == PhaseFailed {
		o.mu.Unlock()
		return false
	}
	if o.acc.Snapshot().Complete() {
		o.mu.Unlock()
		return false
	}
	gen := o.gen
	runCtx := o.runCtx
	if runCtx == nil {
		o.mu.Unlock()
		return false
	}
	o.page++
	page := o.page
	o.loading = true
	o.phase = PhasePolling
	o.publishLocked()
	o.mu.Unlock()

	// The flag, not the request, is what gets reaped on timeout.
	timer := time.AfterFunc(o.cfg.LoadMoreTimeout, func() {
		o.reapLoading(gen)
	})

	go func() {
		defer timer.Stop()
		o.runPage(runCtx, gen, handle, payload, page, o.cfg.PageSize)
	}()
	return true
}

// Cancel terminates the session. Pending retry timers die with the run
// context and any in-flight response will arrive under a stale
// generation and be dropped.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.gen++
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.loading = false
	o.hasMore = false
	if o.phase != PhaseFailed {
		o.phase = PhaseStopped
	}
	o.publishLocked()
}

// Snapshot returns the current consumer-facing status.
func (o *Orchestrator) Snapshot() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.statusLocked()
}

// Updates returns a stream of status snapshots. The channel holds only
// the latest status: slow consumers see the freshest state, not a
// backlog.
func (o *Orchestrator) Updates() <-chan Status {
	return o.updates
}

// runPage polls a single page until it has been merged from a
// cache-complete response, re-polling at PollInterval while the backend
// is still computing, and walking the retry ladder on transient errors.
func (o *Orchestrator) runPage(ctx context.Context, gen int64, handle models.SearchHandle, payload *filter.WirePayload, page, limit int) {
	for {
		resp, err := o.pollWithRetry(ctx, gen, handle, payload, page, limit)
		if err != nil {
			o.finishWithError(gen, page, err)
			return
		}

		o.mu.Lock()
		if o.gen != gen {
			o.mu.Unlock()
			o.logger.Debug("discarding stale poll response",
				zap.Int64("generation", gen), zap.Int("page", page))
			return
		}
		state := o.acc.Merge(page, resp)

		if !resp.Cache {
			// Backend still computing: hold the cursor and pick up
			// newly completed data from the same page shortly.
			o.phase = PhaseWaitingBackend
			o.publishLocked()
			o.mu.Unlock()

			select {
			case <-time.After(o.cfg.PollInterval):
			case <-ctx.Done():
				return
			}
			continue
		}

		if state.Complete() {
			o.hasMore = false
			o.loading = false
			o.phase = PhaseStopped
			o.logger.Info("all results loaded",
				zap.Int("loaded", state.LoadedCount),
				zap.Int("declared", state.DeclaredTotal))
		} else {
			o.loading = false
			o.phase = PhaseAccumulating
		}
		o.publishLocked()
		o.mu.Unlock()
		return
	}
}

// pollWithRetry issues one poll, retrying transient failures (404, 5xx,
// network) on the backoff ladder. The returned error, if any, is the
// last attempt's, already known non-retryable or retry-exhausted.
func (o *Orchestrator) pollWithRetry(ctx context.Context, gen int64, handle models.SearchHandle, payload *filter.WirePayload, page, limit int) (*models.PollPage, error) {
	curLimit := limit

	for attempt := 0; ; attempt++ {
		if o.cfg.RateLimiter != nil {
			if err := o.cfg.RateLimiter.Wait(ctx, o.cfg.RateKey); err != nil {
				return nil, err
			}
		}

		resp, err := o.source.Poll(ctx, handle, page, curLimit, payload)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable(err) {
			return nil, err
		}
		if attempt >= o.cfg.MaxRetries {
			return nil, err
		}

		delayIdx := attempt
		if delayIdx >= len(o.cfg.RetryDelays) {
			delayIdx = len(o.cfg.RetryDelays) - 1
		}
		delay := o.cfg.RetryDelays[delayIdx]

		// Page 2 is failure-prone for a short window after search
		// creation; retry it sooner and with the small page size.
		if page == 2 && attempt == 0 {
			delay = o.cfg.PageTwoRetryDelay
			curLimit = o.cfg.InitialPageSize
		}

		o.logger.Warn("poll attempt failed, retrying",
			zap.Int("page", page),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// finishWithError translates a terminal poll error into a state
// transition. An exhausted 404 means the page is beyond available data:
// hasMore flips off with no error surfaced. Everything else fails the
// session with the error visible to the consumer.
func (o *Orchestrator) finishWithError(gen int64, page int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gen != gen {
		return
	}
	o.loading = false

	if errors.Is(err, context.Canceled) {
		return
	}

	var serr *api.ServerError
	if errors.As(err, &serr) && serr.Status == http.StatusNotFound {
		o.hasMore = false
		o.phase = PhaseStopped
		o.logger.Info("no more results beyond this page",
			zap.Int("page", page))
		o.publishLocked()
		return
	}

	o.hasMore = false
	o.lastErr = err
	o.phase = PhaseFailed
	o.logger.Error("poll session failed",
		zap.Int("page", page), zap.Error(err))
	o.publishLocked()
}

// reapLoading clears a loading flag that outlived the safety timeout.
func (o *Orchestrator) reapLoading(gen int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.gen != gen || !o.loading {
		return
	}
	o.loading = false
	if o.phase == PhasePolling {
		o.phase = PhaseAccumulating
	}
	o.logger.Warn("load-more exceeded safety timeout, clearing loading flag")
	o.publishLocked()
}

func (o *Orchestrator) statusLocked() Status {
	return Status{
		Phase:   o.phase,
		State:   o.acc.Snapshot(),
		HasMore: o.hasMore,
		Loading: o.loading,
		Err:     o.lastErr,
	}
}

// publishLocked pushes the current status, replacing an unconsumed one.
func (o *Orchestrator) publishLocked() {
	st := o.statusLocked()
	for {
		select {
		case o.updates <- st:
			return
		default:
		}
		select {
		case <-o.updates:
		default:
		}
	}
}

func retryable(err error) bool {
	var serr *api.ServerError
	if errors.As(err, &serr) {
		return serr.Retryable()
	}
	var nerr *api.NetworkError
	return errors.As(err, &nerr)
}
