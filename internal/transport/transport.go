package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/jpillora/backoff"
	"golang.org/x/time/rate"

	"bookfeed/config"
	"bookfeed/logger"
	"bookfeed/models"
)

// Request describes one upstream call. URL is always the true exchange URL;
// when Relayed is set the client routes it through the configured relay list
// instead of calling it directly.
type Request struct {
	Exchange string
	URL      string
	Relayed  bool
}

// Client issues order book requests. It is safe for concurrent use; limiters
// are keyed by target host so independent exchanges do not throttle each other.
type Client struct {
	http      *http.Client
	relays    []config.RelayConfig
	retry     config.RetryConfig
	userAgent string
	rps       float64
	burst     int
	log       *logger.Log

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		http:      &http.Client{Timeout: cfg.HTTP.Timeout},
		relays:    cfg.Relays,
		retry:     cfg.HTTP.Retry,
		userAgent: cfg.HTTP.UserAgent,
		rps:       cfg.HTTP.RequestsPerSecond,
		burst:     cfg.HTTP.BurstSize,
		log:       logger.GetLogger(),
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Fetch retrieves the raw exchange payload for req. Failures come back as
// *models.TransportError; relayed requests fail only after every relay in
// order has been tried.
func (c *Client) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if req.Relayed {
		return c.fetchRelayed(ctx, req)
	}
	return c.fetchDirect(ctx, req)
}

func (c *Client) fetchDirect(ctx context.Context, req Request) ([]byte, error) {
	log := c.log.WithComponent("transport").WithFields(logger.Fields{"exchange": req.Exchange})

	b := &backoff.Backoff{Min: c.retry.BaseDelay, Max: c.retry.MaxDelay, Jitter: true}
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, b.Duration()); err != nil {
				return nil, &models.TransportError{Exchange: req.Exchange, URL: req.URL, Err: err}
			}
		}
		body, status, err := c.get(ctx, req.URL)
		if err == nil && status >= 200 && status < 300 {
			log.WithFields(logger.Fields{"url": req.URL, "bytes": len(body)}).Trace("direct fetch ok")
			return body, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("http %d: %s", status, truncate(body, 200))
		}
		log.WithError(lastErr).WithFields(logger.Fields{"attempt": attempt + 1}).Debug("direct fetch failed")
		if status >= 400 && status < 500 && status != 429 {
			// client errors will not heal within this cycle's retry budget
			return nil, &models.TransportError{Exchange: req.Exchange, URL: req.URL, Status: status, Err: lastErr}
		}
	}
	return nil, &models.TransportError{Exchange: req.Exchange, URL: req.URL, Err: lastErr}
}

func (c *Client) fetchRelayed(ctx context.Context, req Request) ([]byte, error) {
	log := c.log.WithComponent("transport").WithFields(logger.Fields{"exchange": req.Exchange})

	var lastErr error
	for _, relay := range c.relays {
		relayURL := relay.URL + url.QueryEscape(req.URL)
		body, status, err := c.get(ctx, relayURL)
		if err != nil {
			lastErr = fmt.Errorf("relay %s: %w", relay.Name, err)
			log.WithError(err).WithFields(logger.Fields{"relay": relay.Name}).Debug("relay request failed")
			continue
		}
		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("relay %s: http %d", relay.Name, status)
			log.WithFields(logger.Fields{"relay": relay.Name, "status": status}).Debug("relay returned error status")
			continue
		}
		payload, err := unwrapEnvelope(body, relay.EnvelopeField)
		if err != nil {
			lastErr = fmt.Errorf("relay %s: %w", relay.Name, err)
			log.WithError(err).WithFields(logger.Fields{"relay": relay.Name}).Debug("relay envelope rejected")
			continue
		}
		if LooksLikeMarkup(payload) {
			lastErr = fmt.Errorf("relay %s: blocked (markup response)", relay.Name)
			log.WithFields(logger.Fields{"relay": relay.Name}).Debug("relay served an error page")
			continue
		}
		log.WithFields(logger.Fields{"relay": relay.Name, "bytes": len(payload)}).Trace("relayed fetch ok")
		return payload, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no relays configured")
	}
	return nil, &models.TransportError{Exchange: req.Exchange, URL: req.URL, Err: lastErr}
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	if err := c.limiter(rawURL).Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (c *Client) limiter(rawURL string) *rate.Limiter {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(c.rps), c.burst)
		c.limiters[host] = lim
	}
	return lim
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
