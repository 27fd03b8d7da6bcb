// Package sync schedules asynchronous resync jobs: one mutation notification
// marks an entity dirty, a background job rebuilds its document from current
// state and writes it to the index. Per entity at most one job runs at a
// time, and rapid mutations coalesce into a single rebuild.
package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/softmaker-io/spree-searchkick/internal/engine"
	"github.com/softmaker-io/spree-searchkick/internal/synth"
	apperrors "github.com/softmaker-io/spree-searchkick/pkg/errors"
)

const (
	defaultMaxWorkers  = 8
	defaultJobTimeout  = 30 * time.Second
	defaultMaxAttempts = 3
	retryBaseDelay     = 200 * time.Millisecond
)

// Coordinator owns the dirty-set and the runners draining it. Callers only
// ever see OnMutate, which never blocks: the coordinator re-reads entity
// state at execution time, so a notification carries no payload beyond the id.
type Coordinator struct {
	synthesizer *synth.Synthesizer
	eng         engine.Engine
	logger      *slog.Logger

	maxAttempts int
	jobTimeout  time.Duration
	sem         chan struct{}

	mu      sync.Mutex
	dirty   map[string]bool
	running map[string]bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithMaxWorkers bounds how many entities can resync concurrently.
func WithMaxWorkers(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.sem = make(chan struct{}, n)
		}
	}
}

// WithJobTimeout bounds the wall time of a single resync attempt cycle.
func WithJobTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) { c.jobTimeout = d }
}

// WithMaxAttempts sets how many times a transient failure is retried.
func WithMaxAttempts(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// NewCoordinator creates a coordinator ready to accept mutations.
func NewCoordinator(synthesizer *synth.Synthesizer, eng engine.Engine, logger *slog.Logger, opts ...CoordinatorOption) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		synthesizer: synthesizer,
		eng:         eng,
		logger:      logger,
		maxAttempts: defaultMaxAttempts,
		jobTimeout:  defaultJobTimeout,
		sem:         make(chan struct{}, defaultMaxWorkers),
		dirty:       make(map[string]bool),
		running:     make(map[string]bool),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnMutate records that the entity changed and ensures a resync will run. It
// returns immediately; a mutation arriving while a job for the same entity is
// in flight is absorbed into the next run.
func (c *Coordinator) OnMutate(entityID string) {
	if entityID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	if c.dirty[entityID] {
		jobsCoalesced.Inc()
		return
	}
	c.dirty[entityID] = true
	jobsScheduled.Inc()

	if c.running[entityID] {
		// The in-flight runner re-checks the dirty flag when its job ends.
		jobsCoalesced.Inc()
		return
	}
	c.running[entityID] = true
	c.wg.Add(1)
	go c.run(entityID)
}

// run drains the dirty flag for one entity. It loops because a mutation can
// land while a job is executing: the flag is cleared before the job starts,
// so a set flag afterwards always means newer state to pick up.
func (c *Coordinator) run(entityID string) {
	defer c.wg.Done()

	for {
		c.mu.Lock()
		if c.closed || !c.dirty[entityID] {
			c.running[entityID] = false
			c.mu.Unlock()
			return
		}
		c.dirty[entityID] = false
		c.mu.Unlock()

		select {
		case c.sem <- struct{}{}:
		case <-c.ctx.Done():
			c.mu.Lock()
			c.running[entityID] = false
			c.mu.Unlock()
			return
		}
		c.syncEntity(entityID)
		<-c.sem
	}
}

// syncEntity performs one resync job: load, synthesize, upsert. A vanished
// entity removes its document instead. Transient failures retry with
// exponential backoff inside the job.
func (c *Coordinator) syncEntity(entityID string) {
	start := time.Now()
	defer func() { jobDuration.Observe(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(c.ctx, c.jobTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.syncOnce(ctx, entityID)
		if lastErr == nil {
			return
		}
		if !retryable(lastErr) {
			break
		}
		select {
		case <-time.After(retryBaseDelay << (attempt - 1)):
		case <-ctx.Done():
			attempt = c.maxAttempts
		}
	}

	jobsFailed.Inc()
	c.logger.Error("resync job failed",
		slog.String("entity_id", entityID),
		slog.String("error", lastErr.Error()),
	)
}

func (c *Coordinator) syncOnce(ctx context.Context, entityID string) error {
	doc, err := c.synthesizer.SynthesizeByID(ctx, entityID)
	if errors.Is(err, apperrors.ErrNotFound) {
		if delErr := c.eng.Delete(ctx, entityID); delErr != nil {
			return delErr
		}
		documentsDeleted.Inc()
		c.logger.Info("removed document for vanished entity", slog.String("entity_id", entityID))
		return nil
	}
	if err != nil {
		return err
	}
	return c.eng.Upsert(ctx, entityID, doc)
}

// retryable reports whether a failure is worth another attempt. Configuration
// divergence and permanent rejections are not.
func retryable(err error) bool {
	return errors.Is(err, apperrors.ErrIndexUnavailable) ||
		errors.Is(err, apperrors.ErrDataUnavailable)
}

// ResyncAll marks every entity dirty, for full reindexing after a schema
// change. The ids are supplied by the caller so the coordinator stays
// storage-agnostic.
func (c *Coordinator) ResyncAll(ids []string) {
	for _, id := range ids {
		c.OnMutate(id)
	}
}

// Pending reports whether any entity still awaits a resync, for tests and
// readiness reporting.
func (c *Coordinator) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.dirty {
		if d {
			return true
		}
	}
	return len(c.running) > 0 && anyTrue(c.running)
}

func anyTrue(m map[string]bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

// Close stops accepting mutations and waits for in-flight jobs, up to the
// context deadline.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.cancel()
		return nil
	case <-ctx.Done():
		c.cancel()
		return ctx.Err()
	}
}
