// Package book derives display metrics from a normalized order book. All
// arithmetic runs on decimals; summing thousands of tiny price*quantity
// products in floats would show rounding drift at the precision meme pairs
// are quoted at.
package book

import (
	"github.com/shopspring/decimal"

	"bookfeed/models"
)

// Aggregate computes derived metrics for a normalized snapshot. Pure and
// deterministic: the same book always yields the same enriched value.
func Aggregate(ob models.OrderBook) models.EnrichedOrderBook {
	m := models.BookMetrics{
		Bids: sideMetrics(ob.Bids),
		Asks: sideMetrics(ob.Asks),
	}
	if len(ob.Bids) > 0 {
		m.BestBid = ob.Bids[0].Price
	}
	if len(ob.Asks) > 0 {
		m.BestAsk = ob.Asks[0].Price
	}
	if len(ob.Bids) > 0 && len(ob.Asks) > 0 {
		m.Spread = m.BestAsk.Sub(m.BestBid)
	}
	return models.EnrichedOrderBook{OrderBook: ob, Metrics: m}
}

// sideMetrics sums one side. VWAP is total notional over total quantity and
// defined as zero for an empty side.
func sideMetrics(levels []models.PriceLevel) models.SideMetrics {
	total := decimal.Zero
	notional := decimal.Zero
	for _, l := range levels {
		total = total.Add(l.Quantity)
		notional = notional.Add(l.Price.Mul(l.Quantity))
	}
	vwap := decimal.Zero
	if total.IsPositive() {
		vwap = notional.DivRound(total, 18)
	}
	return models.SideMetrics{TotalQuantity: total, TotalNotional: notional, VWAP: vwap}
}
