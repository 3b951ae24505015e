// Package venue holds the per-exchange strategy table: one value per venue
// knows how to name a pair, where its depth endpoint lives, whether it needs a
// CORS relay, and how to decode its payload into the canonical book. Adding an
// exchange means adding one entry here, never branching in shared code.
package venue

import (
	"fmt"
	"sort"
	"time"

	simplejson "github.com/bitly/go-simplejson"

	"bookfeed/internal/symbols"
	"bookfeed/internal/transport"
	"bookfeed/models"
)

// decodeFunc turns a parsed payload into a partially filled book (bids, asks,
// update id). The wrapper owns exchange/symbol/timestamp stamping and sorting.
type decodeFunc func(ex string, js *simplejson.Json) (models.OrderBook, error)

// Venue is one exchange entry in the registry.
type Venue struct {
	Name       string
	Relayed    bool
	urlFormat  string // fmt template receiving the mapped symbol
	testnetURL string // optional sandbox override
	decode     decodeFunc
}

// MapSymbol converts a canonical pair into this venue's wire symbol.
func (v *Venue) MapSymbol(symbol string) string {
	return symbols.Map(v.Name, symbol)
}

// Request builds the transport request for one depth fetch.
func (v *Venue) Request(symbol string, testnet bool) transport.Request {
	format := v.urlFormat
	if testnet && v.testnetURL != "" {
		format = v.testnetURL
	}
	return transport.Request{
		Exchange: v.Name,
		URL:      fmt.Sprintf(format, v.MapSymbol(symbol)),
		Relayed:  v.Relayed,
	}
}

// Normalize decodes a raw payload into a canonical snapshot. The book carries
// the caller's canonical symbol, not the venue's, and is stamped with the
// capture instant. Both sides are sorted here because at least one venue
// (Bitfinex) interleaves rows, and downstream best-price logic assumes index 0
// is best on each side.
func (v *Venue) Normalize(payload []byte, canonical string) (models.OrderBook, error) {
	js, err := simplejson.NewJson(payload)
	if err != nil {
		return models.OrderBook{}, &models.NormalizationError{Exchange: v.Name, Msg: "payload is not JSON", Err: err}
	}
	ob, err := v.decode(v.Name, js)
	if err != nil {
		return models.OrderBook{}, err
	}
	ob.Exchange = v.Name
	ob.Symbol = canonical
	ob.Timestamp = time.Now().UTC()
	sort.SliceStable(ob.Bids, func(i, j int) bool { return ob.Bids[i].Price.GreaterThan(ob.Bids[j].Price) })
	sort.SliceStable(ob.Asks, func(i, j int) bool { return ob.Asks[i].Price.LessThan(ob.Asks[j].Price) })
	return ob, nil
}

var registry = map[string]*Venue{
	"binance": {
		Name:       "binance",
		urlFormat:  "https://api.binance.com/api/v3/depth?symbol=%s&limit=100",
		testnetURL: "https://testnet.binance.vision/api/v3/depth?symbol=%s&limit=100",
		decode:     decodeBinance,
	},
	"kucoin": {
		Name:      "kucoin",
		Relayed:   true,
		urlFormat: "https://api.kucoin.com/api/v1/market/orderbook/level2_100?symbol=%s",
		decode:    decodeKucoin,
	},
	"kcex": {
		Name:      "kcex",
		Relayed:   true,
		urlFormat: "https://api.kcex.com/sapi/v1/depth?symbol=%s&limit=1000",
		decode:    decodeFlexible,
	},
	"kraken": {
		Name:      "kraken",
		urlFormat: "https://api.kraken.com/0/public/Depth?pair=%s&count=500",
		decode:    decodeKraken,
	},
	"coinbase": {
		Name:      "coinbase",
		urlFormat: "https://api.exchange.coinbase.com/products/%s/book?level=2",
		decode:    decodeCoinbase,
	},
	"bitfinex": {
		Name:      "bitfinex",
		Relayed:   true,
		urlFormat: "https://api-pub.bitfinex.com/v2/book/t%s/P0?len=250",
		decode:    decodeBitfinex,
	},
	"mexc": {
		Name:      "mexc",
		Relayed:   true,
		urlFormat: "https://api.mexc.com/api/v3/depth?symbol=%s&limit=200",
		decode:    decodeMexc,
	},
	"bitget": {
		Name:      "bitget",
		urlFormat: "https://api.bitget.com/api/v2/spot/market/orderbook?symbol=%s&type=step0&limit=200",
		decode:    decodeBitget,
	},
	"okx": {
		Name:      "okx",
		urlFormat: "https://www.okx.com/api/v5/market/books?instId=%s&sz=400",
		decode:    decodeOKX,
	},
	"gateio": {
		Name:      "gateio",
		Relayed:   true,
		urlFormat: "https://api.gateio.ws/api/v4/spot/order_book?currency_pair=%s&limit=500",
		decode:    decodeGateio,
	},
	"bitmart": {
		Name:      "bitmart",
		Relayed:   true,
		urlFormat: "https://api-cloud.bitmart.com/spot/v1/symbols/book?symbol=%s&size=200",
		decode:    decodeBitmart,
	},
	"bybit": {
		Name:      "bybit",
		urlFormat: "https://api.bybit.com/v5/market/orderbook?category=spot&symbol=%s&limit=200",
		decode:    decodeBybit,
	},
	"coinex": {
		Name:      "coinex",
		Relayed:   true,
		urlFormat: "https://api.coinex.com/v2/spot/depth?market=%s&limit=50&interval=0",
		decode:    decodeCoinex,
	},
	"bingx": {
		Name:      "bingx",
		Relayed:   true,
		urlFormat: "https://open-api.bingx.com/openApi/spot/v1/market/depth?symbol=%s&limit=200",
		decode:    decodeBingx,
	},
	"cryptocom": {
		Name:      "cryptocom",
		Relayed:   true,
		urlFormat: "https://api.crypto.com/exchange/v1/public/get-book?instrument_name=%s&depth=150",
		decode:    decodeCryptocom,
	},
	"novadax": {
		Name:      "novadax",
		Relayed:   true,
		urlFormat: "https://api.novadax.com/v1/market/depth?symbol=%s&limit=100",
		decode:    decodeNovadax,
	},
	"xt": {
		Name:      "xt",
		Relayed:   true,
		urlFormat: "https://sapi.xt.com/v4/public/depth?symbol=%s&limit=200",
		decode:    decodeXT,
	},
	"btcc": {
		Name:      "btcc",
		Relayed:   true,
		urlFormat: "https://api.btcc.com/api/v1/depth?symbol=%s&limit=200",
		decode:    decodeFlexible,
	},
	"deepcoin": {
		Name:      "deepcoin",
		Relayed:   true,
		urlFormat: "https://api.deepcoin.com/deepcoin/market/orderbook?symbol=%s&limit=200",
		decode:    decodeFlexible,
	},
}

// Lookup returns the venue for an exchange id. Unknown ids are a configuration
// mistake, not a transient condition.
func Lookup(exchange string) (*Venue, error) {
	v, ok := registry[exchange]
	if !ok {
		return nil, &models.ConfigError{Exchange: exchange, Reason: "unsupported exchange"}
	}
	return v, nil
}

// Exchanges lists registered exchange ids, sorted.
func Exchanges() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
