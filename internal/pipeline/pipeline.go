// Package pipeline wires one complete snapshot cycle: resolve the venue, fetch
// the raw payload, normalize it and derive depth metrics. The refresh layer
// drives this; nothing here retries or schedules.
package pipeline

import (
	"context"

	"bookfeed/internal/book"
	"bookfeed/internal/transport"
	"bookfeed/internal/venue"
	"bookfeed/logger"
	"bookfeed/models"
)

// Doer is the transport seam. *transport.Client satisfies it.
type Doer interface {
	Fetch(ctx context.Context, req transport.Request) ([]byte, error)
}

type Pipeline struct {
	client Doer
	log    *logger.Log
}

func New(client Doer) *Pipeline {
	return &Pipeline{client: client, log: logger.GetLogger()}
}

// FetchBook runs one cycle for a configured feed and returns the enriched
// snapshot. Error types tell the caller what failed: *models.ConfigError for
// an unknown exchange, *models.TransportError for network failures and
// *models.NormalizationError for payloads the venue decoder rejected.
func (p *Pipeline) FetchBook(ctx context.Context, conn models.ConnConfig) (models.EnrichedOrderBook, error) {
	v, err := venue.Lookup(conn.Exchange)
	if err != nil {
		return models.EnrichedOrderBook{}, err
	}

	req := v.Request(conn.Symbol, conn.Testnet)
	payload, err := p.client.Fetch(ctx, req)
	if err != nil {
		return models.EnrichedOrderBook{}, err
	}

	ob, err := v.Normalize(payload, conn.Symbol)
	if err != nil {
		return models.EnrichedOrderBook{}, err
	}

	enriched := book.Aggregate(ob)
	p.log.WithComponent("pipeline").WithFields(logger.Fields{
		"exchange": conn.Exchange,
		"symbol":   conn.Symbol,
		"bids":     len(enriched.Bids),
		"asks":     len(enriched.Asks),
	}).Trace("snapshot cycle complete")
	return enriched, nil
}
