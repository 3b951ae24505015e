package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bookfeed/config"
	"bookfeed/models"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	ticks chan time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0), ticks: make(chan time.Time)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) After(time.Duration) <-chan time.Time { return f.ticks }

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

// tick releases the controller's inter-cycle wait.
func (f *fakeClock) tick() { f.ticks <- f.Now() }

type scriptFetcher struct {
	mu       sync.Mutex
	outcomes []error // nil entry = success
	calls    int
}

func (s *scriptFetcher) FetchBook(ctx context.Context, conn models.ConnConfig) (models.EnrichedOrderBook, error) {
	s.mu.Lock()
	i := s.calls
	s.calls++
	s.mu.Unlock()
	if ctx.Err() != nil {
		return models.EnrichedOrderBook{}, ctx.Err()
	}
	var err error
	if i < len(s.outcomes) {
		err = s.outcomes[i]
	} else if len(s.outcomes) > 0 {
		err = s.outcomes[len(s.outcomes)-1]
	}
	if err != nil {
		return models.EnrichedOrderBook{}, err
	}
	return models.EnrichedOrderBook{
		OrderBook: models.OrderBook{Exchange: conn.Exchange, Symbol: conn.Symbol},
	}, nil
}

func testCfg() config.RefreshConfig {
	return config.RefreshConfig{Interval: 2 * time.Second, FailureThreshold: 3, ThrottleWindow: 10 * time.Second}
}

// prepared returns a controller wired for direct settle-level testing, with a
// fixed generation and no polling goroutine.
func prepared(clk Clock) *Controller {
	c := New(&scriptFetcher{}, testCfg())
	c.SetClock(clk)
	c.generation = "gen-1"
	c.state = Fetching
	return c
}

func TestFailureGating(t *testing.T) {
	clk := newFakeClock()
	c := prepared(clk)
	transient := &models.TransportError{Exchange: "kucoin", Err: errors.New("relay down")}

	c.settle("gen-1", models.EnrichedOrderBook{}, nil)
	if st := c.Status(); st.State != Ready || st.Err != "" {
		t.Fatalf("after success: %+v", st)
	}

	// two failures stay below the threshold: snapshot served, no error
	for i := 1; i <= 2; i++ {
		c.settle("gen-1", models.EnrichedOrderBook{}, transient)
		st := c.Status()
		if st.State != Degraded || st.Err != "" || st.Failures != i {
			t.Fatalf("failure %d: %+v", i, st)
		}
		if _, ok := c.Snapshot(); !ok {
			t.Fatalf("failure %d dropped the snapshot", i)
		}
	}

	// third consecutive failure crosses the threshold
	c.settle("gen-1", models.EnrichedOrderBook{}, transient)
	if st := c.Status(); st.Err == "" || st.State != Degraded {
		t.Fatalf("threshold failure must surface: %+v", st)
	}
	if _, ok := c.Snapshot(); !ok {
		t.Fatal("surfaced error must not drop the snapshot")
	}

	// success clears the error on the same cycle
	c.settle("gen-1", models.EnrichedOrderBook{}, nil)
	if st := c.Status(); st.Err != "" || st.State != Ready || st.Failures != 0 {
		t.Fatalf("success must reset error surface: %+v", st)
	}
}

func TestNoticeThrottle(t *testing.T) {
	clk := newFakeClock()
	c := prepared(clk)
	transient := &models.TransportError{Exchange: "kucoin", Err: errors.New("relay down")}

	for i := 0; i < 3; i++ {
		c.settle("gen-1", models.EnrichedOrderBook{}, transient)
	}
	first := c.lastNotice
	if first.IsZero() {
		t.Fatal("threshold crossing must record a notice")
	}

	// still inside the window: no fresh notice
	clk.advance(4 * time.Second)
	c.settle("gen-1", models.EnrichedOrderBook{}, transient)
	if !c.lastNotice.Equal(first) {
		t.Fatalf("notice inside throttle window: %v -> %v", first, c.lastNotice)
	}

	clk.advance(7 * time.Second)
	c.settle("gen-1", models.EnrichedOrderBook{}, transient)
	if c.lastNotice.Equal(first) {
		t.Fatal("notice must repeat once the window has elapsed")
	}
}

func TestFirstCycleFailure(t *testing.T) {
	c := prepared(newFakeClock())
	c.settle("gen-1", models.EnrichedOrderBook{}, &models.TransportError{Exchange: "binance"})
	if st := c.Status(); st.State != Failed {
		t.Fatalf("no snapshot + failure must be Failed, got %+v", st)
	}
	if _, ok := c.Snapshot(); ok {
		t.Fatal("no snapshot should be held")
	}
}

func TestStaleSettleDiscarded(t *testing.T) {
	c := prepared(newFakeClock())
	c.settle("gen-1", models.EnrichedOrderBook{
		OrderBook: models.OrderBook{Exchange: "binance", Symbol: "BTC-USDT"},
	}, nil)

	// a late result issued under an older configuration must not land
	stale := models.EnrichedOrderBook{OrderBook: models.OrderBook{Exchange: "kraken", Symbol: "ETH-USD"}}
	if c.settle("gen-0", stale, nil) {
		t.Fatal("stale settle must stop the old loop")
	}
	snap, ok := c.Snapshot()
	if !ok || snap.Exchange != "binance" {
		t.Fatalf("stale result overwrote the snapshot: %+v", snap)
	}
}

func TestConfigErrorSurfacesImmediately(t *testing.T) {
	c := prepared(newFakeClock())
	if c.settle("gen-1", models.EnrichedOrderBook{}, &models.ConfigError{Exchange: "hibt", Reason: "unsupported exchange"}) {
		t.Fatal("config errors must stop polling")
	}
	st := c.Status()
	if st.Err == "" || st.State != Failed {
		t.Fatalf("config error must surface without threshold gating: %+v", st)
	}
}

func waitFor(t *testing.T, sub <-chan struct{}, c *Controller, want func(Status) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if want(c.Status()) {
			return
		}
		select {
		case <-sub:
		case <-deadline:
			t.Fatalf("timed out waiting for state, last: %+v", c.Status())
		}
	}
}

func TestPollingLoop(t *testing.T) {
	clk := newFakeClock()
	transient := &models.TransportError{Exchange: "binance", Err: errors.New("timeout")}
	fetcher := &scriptFetcher{outcomes: []error{nil, transient, nil}}

	c := New(fetcher, testCfg())
	c.SetClock(clk)
	sub := c.Subscribe()

	c.SetConfig(models.ConnConfig{Exchange: "binance", Symbol: "BTC-USDT"})
	waitFor(t, sub, c, func(st Status) bool { return st.State == Ready })
	if _, ok := c.Snapshot(); !ok {
		t.Fatal("Ready without a snapshot")
	}

	clk.tick()
	waitFor(t, sub, c, func(st Status) bool { return st.State == Degraded })
	if _, ok := c.Snapshot(); !ok {
		t.Fatal("Degraded must keep serving the last snapshot")
	}

	clk.tick()
	waitFor(t, sub, c, func(st Status) bool { return st.State == Ready && st.Failures == 0 })

	c.Clear()
	if st := c.Status(); st.State != Idle {
		t.Fatalf("Clear must return to Idle, got %+v", st)
	}
	if _, ok := c.Snapshot(); ok {
		t.Fatal("Clear must drop the snapshot")
	}
}

func TestReplaceConfigRestartsFresh(t *testing.T) {
	clk := newFakeClock()
	fetcher := &scriptFetcher{}
	c := New(fetcher, testCfg())
	c.SetClock(clk)
	sub := c.Subscribe()

	c.SetConfig(models.ConnConfig{Exchange: "binance", Symbol: "BTC-USDT"})
	waitFor(t, sub, c, func(st Status) bool { return st.State == Ready })
	firstGen := func() string { c.mu.Lock(); defer c.mu.Unlock(); return c.generation }()

	c.SetConfig(models.ConnConfig{Exchange: "kraken", Symbol: "ETH-USD"})
	waitFor(t, sub, c, func(st Status) bool { return st.State == Ready })

	c.mu.Lock()
	gen := c.generation
	snap := c.snapshot
	c.mu.Unlock()
	if gen == firstGen {
		t.Fatal("replacing configuration must issue a new cycle identity")
	}
	if snap == nil || snap.Exchange != "kraken" {
		t.Fatalf("snapshot must belong to the new configuration: %+v", snap)
	}
	c.Clear()
}
