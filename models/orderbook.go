package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side identifies which half of the book a level belongs to.
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// PriceLevel is a single resting price level. Price and Quantity are kept as
// arbitrary-precision decimals; quantities below 10^-18 are common on meme pairs
// and must survive intact.
type PriceLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderBook is the canonical full-snapshot book. Bids are sorted descending by
// price (best bid first), asks ascending (best ask first). A snapshot is never
// mutated after construction; each refresh cycle builds a fresh value.
type OrderBook struct {
	Exchange  string       `json:"exchange"`
	Symbol    string       `json:"symbol"` // canonical symbol as requested, nominal only
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	UpdateID  int64        `json:"update_id,omitempty"` // exchange-native sequence, diagnostic only
	Timestamp time.Time    `json:"timestamp"`           // capture instant
}

// SideMetrics are the derived per-side aggregates.
type SideMetrics struct {
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalNotional decimal.Decimal `json:"total_notional"`
	VWAP          decimal.Decimal `json:"vwap"`
}

// BookMetrics are computed on demand from an OrderBook and never stored.
type BookMetrics struct {
	BestBid decimal.Decimal `json:"best_bid"`
	BestAsk decimal.Decimal `json:"best_ask"`
	Spread  decimal.Decimal `json:"spread"`
	Bids    SideMetrics     `json:"bids"`
	Asks    SideMetrics     `json:"asks"`
}

// EnrichedOrderBook is a snapshot plus its derived metrics, the unit handed to
// consumers by the refresh controller.
type EnrichedOrderBook struct {
	OrderBook
	Metrics BookMetrics `json:"metrics"`
}

// ConnConfig is the externally owned connection configuration. Credentials are
// carried for callers that also use signed endpoints; this core never reads them.
type ConnConfig struct {
	Exchange   string `json:"exchange" yaml:"exchange"`
	Symbol     string `json:"symbol" yaml:"symbol"` // canonical form, e.g. "BTC-USDT"
	APIKey     string `json:"-" yaml:"api_key"`
	APISecret  string `json:"-" yaml:"api_secret"`
	Passphrase string `json:"-" yaml:"passphrase"`
	Testnet    bool   `json:"testnet" yaml:"testnet"`
}
