package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"bookfeed/config"
	"bookfeed/internal/metrics"
	"bookfeed/internal/pipeline"
	"bookfeed/internal/refresh"
	"bookfeed/internal/ticker"
	"bookfeed/internal/transport"
	"bookfeed/logger"
	"bookfeed/models"
)

// measuredFetcher wraps the pipeline so every settled cycle lands in the
// metrics recorder.
type measuredFetcher struct {
	inner *pipeline.Pipeline
	rec   *metrics.Recorder
}

func (m *measuredFetcher) FetchBook(ctx context.Context, conn models.ConnConfig) (models.EnrichedOrderBook, error) {
	start := time.Now()
	eb, err := m.inner.FetchBook(ctx, conn)
	m.rec.RecordCycle(conn.Exchange, conn.Symbol, len(eb.Bids)+len(eb.Asks), time.Since(start), err != nil)
	return eb, err
}

func main() {
	log := logger.GetLogger()

	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Error loading .env file")
	}

	configPath := flag.String("config", "config/config.yml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAgeDays); err != nil {
		log.WithError(err).Error("Failed to configure logger")
		os.Exit(1)
	}

	log.WithFields(logger.Fields{
		"service": cfg.Bookfeed.Name,
		"version": cfg.Bookfeed.Version,
		"feeds":   len(cfg.Feeds),
	}).Info("starting bookfeed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel)

	recorder := metrics.NewRecorder()
	metrics.InitCloudWatch(cfg.CloudWatch)
	if cfg.CloudWatch.Enabled {
		go metrics.Run(ctx, recorder, cfg.CloudWatch.FlushInterval)
	}

	client := transport.NewClient(cfg)
	fetcher := &measuredFetcher{inner: pipeline.New(client), rec: recorder}

	var wg sync.WaitGroup
	controllers := make([]*refresh.Controller, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		ctrl := refresh.New(fetcher, cfg.Refresh)
		ctrl.SetConfig(feed)
		controllers = append(controllers, ctrl)

		wg.Add(1)
		go func(ctrl *refresh.Controller, feed models.ConnConfig) {
			defer wg.Done()
			watchFeed(ctx, ctrl, feed)
		}(ctrl, feed)
	}

	var prices *ticker.Stream
	if cfg.Ticker.Enabled {
		prices = ticker.NewStream(cfg.Ticker)
		if err := prices.Start(ctx); err != nil {
			log.WithError(err).Warn("ticker stream not started")
			prices = nil
		} else {
			wg.Add(1)
			go func() {
				defer wg.Done()
				watchPrices(ctx, prices)
			}()
		}
	}

	<-ctx.Done()
	log.WithComponent("main").Info("shutting down")
	for _, ctrl := range controllers {
		ctrl.Clear()
	}
	if prices != nil {
		prices.Stop()
	}
	wg.Wait()
	log.WithComponent("main").Info("bookfeed stopped")
}

// watchFeed logs the feed's view after every settled cycle: top of book while
// healthy, the surfaced error once the failure threshold trips.
func watchFeed(ctx context.Context, ctrl *refresh.Controller, feed models.ConnConfig) {
	log := logger.GetLogger().WithComponent("main").WithFields(logger.Fields{
		"exchange": feed.Exchange,
		"symbol":   feed.Symbol,
	})

	sub := ctrl.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub:
		}

		st := ctrl.Status()
		if st.Err != "" {
			log.WithFields(logger.Fields{"state": st.State.String(), "failures": st.Failures}).
				Warn(st.Err)
			continue
		}
		snap, ok := ctrl.Snapshot()
		if !ok {
			continue
		}
		log.WithFields(logger.Fields{
			"state":    st.State.String(),
			"best_bid": snap.Metrics.BestBid.String(),
			"best_ask": snap.Metrics.BestAsk.String(),
			"spread":   snap.Metrics.Spread.String(),
			"bids":     len(snap.Bids),
			"asks":     len(snap.Asks),
		}).Info("book updated")
	}
}

func watchPrices(ctx context.Context, s *ticker.Stream) {
	log := logger.GetLogger().WithComponent("main")
	for {
		select {
		case <-ctx.Done():
			return
		case p := <-s.Prices():
			log.WithFields(logger.Fields{
				"exchange": p.Exchange,
				"symbol":   p.Symbol,
				"last":     p.Last.String(),
			}).Debug("ticker update")
		}
	}
}

func handleShutdown(cancel context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
	cancel()
}
