// Package refresh owns the polling lifecycle for one (exchange, symbol) feed.
// It keeps at most one fetch in flight, holds on to the last good snapshot
// through failure streaks, and gates user-visible errors behind a consecutive
// failure threshold so a single dropped poll never flashes an error at the
// consumer.
package refresh

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"bookfeed/config"
	"bookfeed/logger"
	"bookfeed/models"
)

// State is the controller's externally visible phase.
type State int

const (
	// Idle means no configuration has been supplied.
	Idle State = iota
	// Fetching means the first cycle for the current configuration is in flight.
	Fetching
	// Ready means a snapshot is held and the latest cycle succeeded.
	Ready
	// Degraded means a snapshot is held but recent cycles are failing.
	Degraded
	// Failed means no snapshot was ever obtained and cycles are failing.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Fetcher runs one snapshot cycle. *pipeline.Pipeline satisfies it.
type Fetcher interface {
	FetchBook(ctx context.Context, conn models.ConnConfig) (models.EnrichedOrderBook, error)
}

// Clock abstracts time so the cadence and throttle policy are testable
// without real timers.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Status is the consumer-facing view of the controller.
type Status struct {
	State      State
	Loading    bool
	Err        string // empty while below the failure threshold
	Failures   int
	LastUpdate time.Time
}

// Controller drives periodic refresh for a single feed. All exported methods
// are safe for concurrent use.
type Controller struct {
	fetcher   Fetcher
	interval  time.Duration
	threshold int
	throttle  time.Duration
	clock     Clock
	log       *logger.Entry

	mu         sync.Mutex
	generation string // identity of the active configuration
	conn       models.ConnConfig
	state      State
	snapshot   *models.EnrichedOrderBook
	failures   int
	errMsg     string
	lastNotice time.Time
	lastUpdate time.Time
	cancel     context.CancelFunc
	subs       []chan struct{}
}

func New(fetcher Fetcher, cfg config.RefreshConfig) *Controller {
	return &Controller{
		fetcher:   fetcher,
		interval:  cfg.Interval,
		threshold: cfg.FailureThreshold,
		throttle:  cfg.ThrottleWindow,
		clock:     systemClock{},
		log:       logger.GetLogger().WithComponent("refresh"),
		state:     Idle,
	}
}

// SetClock replaces the time source. Call before SetConfig.
func (c *Controller) SetClock(clk Clock) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = clk
}

// SetConfig starts (or restarts) polling for conn. Any in-flight cycle for a
// previous configuration is cancelled and its late result discarded; counters
// and the held snapshot start fresh.
func (c *Controller) SetConfig(conn models.ConnConfig) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	gen := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	c.generation = gen
	c.conn = conn
	c.state = Fetching
	c.snapshot = nil
	c.failures = 0
	c.errMsg = ""
	c.lastNotice = time.Time{}
	c.lastUpdate = time.Time{}
	c.cancel = cancel
	clk := c.clock
	c.mu.Unlock()

	c.log.WithFields(logger.Fields{"exchange": conn.Exchange, "symbol": conn.Symbol, "cycle_id": gen}).
		Info("feed configured")
	go c.run(ctx, gen, conn, clk)
	c.notify()
}

// Clear stops polling and returns to Idle. The held snapshot is dropped.
func (c *Controller) Clear() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.generation = ""
	c.conn = models.ConnConfig{}
	c.state = Idle
	c.snapshot = nil
	c.failures = 0
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns the last good book. ok is false until the first successful
// cycle for the current configuration.
func (c *Controller) Snapshot() (models.EnrichedOrderBook, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return models.EnrichedOrderBook{}, false
	}
	return *c.snapshot, true
}

// Status reports the current phase and error surface.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Status{
		State:      c.state,
		Loading:    c.state == Fetching,
		Err:        c.errMsg,
		Failures:   c.failures,
		LastUpdate: c.lastUpdate,
	}
}

// Subscribe returns a channel that receives a signal after every settled cycle
// and every configuration change. Signals are coalesced; slow consumers miss
// intermediate updates, never block the controller.
func (c *Controller) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

func (c *Controller) notify() {
	c.mu.Lock()
	subs := c.subs
	c.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// run polls until cancelled. The next cycle starts a fixed interval after the
// previous one settles, so cycles never overlap no matter how slow the venue.
func (c *Controller) run(ctx context.Context, gen string, conn models.ConnConfig, clk Clock) {
	for {
		eb, err := c.fetcher.FetchBook(ctx, conn)
		if !c.settle(gen, eb, err) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-clk.After(c.interval):
		}
	}
}

// settle applies one cycle outcome. It returns false when polling should stop:
// the configuration changed under the in-flight request (the result is stale
// and discarded wholesale) or the error is one that retrying cannot fix.
func (c *Controller) settle(gen string, eb models.EnrichedOrderBook, err error) bool {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return false
	}
	log := c.log.WithFields(logger.Fields{"exchange": c.conn.Exchange, "symbol": c.conn.Symbol, "cycle_id": gen})

	if err == nil {
		c.snapshot = &eb
		c.state = Ready
		c.failures = 0
		c.errMsg = ""
		c.lastUpdate = c.clock.Now()
		c.mu.Unlock()
		c.notify()
		return true
	}

	var ce *models.ConfigError
	if errors.As(err, &ce) {
		// retrying an unsupported exchange cannot succeed; surface at once
		c.errMsg = ce.Error()
		if c.snapshot == nil {
			c.state = Failed
		} else {
			c.state = Degraded
		}
		c.mu.Unlock()
		log.WithError(ce).Error("feed misconfigured, polling stopped")
		c.notify()
		return false
	}

	c.failures++
	if c.snapshot == nil {
		c.state = Failed
	} else {
		c.state = Degraded
	}
	surfaced := false
	if c.failures >= c.threshold {
		c.errMsg = err.Error()
		now := c.clock.Now()
		if c.lastNotice.IsZero() || now.Sub(c.lastNotice) >= c.throttle {
			c.lastNotice = now
			surfaced = true
		}
	}
	failures := c.failures
	c.mu.Unlock()

	if surfaced {
		log.WithError(err).WithFields(logger.Fields{"consecutive_failures": failures}).
			Error("feed failing")
	} else {
		log.WithError(err).WithFields(logger.Fields{"consecutive_failures": failures}).
			Debug("cycle failed, serving last snapshot")
	}
	c.notify()
	return true
}
