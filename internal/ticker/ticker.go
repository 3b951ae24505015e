// Package ticker streams live last-trade prices over exchange websockets. It
// runs beside the polling feeds and shares nothing with them; consumers pull
// the latest price or drain the update channel.
package ticker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bookfeed/config"
	"bookfeed/logger"
)

// Price is one live ticker update.
type Price struct {
	Exchange string
	Symbol   string
	Last     decimal.Decimal
	At       time.Time
}

// Stream owns the websocket workers. Updates fan into a bounded channel;
// when the consumer lags, updates are dropped rather than blocking a reader.
type Stream struct {
	cfg config.TickerConfig
	out chan Price
	log *logger.Log
	wg  sync.WaitGroup

	mu      sync.RWMutex
	running bool
	latest  map[string]Price
}

func NewStream(cfg config.TickerConfig) *Stream {
	return &Stream{
		cfg:    cfg,
		out:    make(chan Price, 256),
		log:    logger.GetLogger(),
		latest: make(map[string]Price),
	}
}

// Prices is the live update channel.
func (s *Stream) Prices() <-chan Price { return s.out }

// Latest returns the most recent price seen for an exchange/symbol pair.
func (s *Stream) Latest(exchange, symbol string) (Price, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.latest[exchange+":"+symbol]
	return p, ok
}

// Start launches one worker per configured stream. Workers reconnect on their
// own until ctx is cancelled.
func (s *Stream) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("ticker stream already running")
	}
	if !s.cfg.Enabled {
		s.mu.Unlock()
		return fmt.Errorf("ticker stream is disabled")
	}
	s.running = true
	s.mu.Unlock()

	log := s.log.WithComponent("ticker")
	for _, symbol := range s.cfg.BinanceSymbols {
		s.wg.Add(1)
		go s.streamBinance(ctx, symbol)
	}
	if len(s.cfg.OKXInstruments) > 0 {
		s.wg.Add(1)
		go s.streamOKX(ctx, s.cfg.OKXInstruments)
	}
	log.WithFields(logger.Fields{
		"binance_symbols": s.cfg.BinanceSymbols,
		"okx_instruments": s.cfg.OKXInstruments,
	}).Info("ticker stream started")
	return nil
}

// Stop waits for all workers to exit. Cancel the Start context first.
func (s *Stream) Stop() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.wg.Wait()
	s.log.WithComponent("ticker").Info("ticker stream stopped")
}

func (s *Stream) publish(p Price) {
	s.mu.Lock()
	s.latest[p.Exchange+":"+p.Symbol] = p
	s.mu.Unlock()

	select {
	case s.out <- p:
	default:
		// consumer lagging; latest map still has the freshest value
	}
}
