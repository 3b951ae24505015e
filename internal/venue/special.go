package venue

import (
	"sort"
	"strings"

	simplejson "github.com/bitly/go-simplejson"

	"bookfeed/models"
)

// decodeKraken reads {"error":[],"result":{"<PAIR>":{"bids":..,"asks":..}}}.
// The result key is Kraken's own pair spelling (often not what was asked for),
// so the first entry is taken rather than matched by name. Rows are
// [price, volume, timestamp] with mixed string/number elements.
func decodeKraken(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if errs, err := js.Get("error").StringArray(); err == nil && len(errs) > 0 {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: strings.Join(errs, ", ")}
	}
	result, ok := js.CheckGet("result")
	if !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing result container"}
	}
	pairs, err := result.Map()
	if err != nil || len(pairs) == 0 {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "empty result container", Err: err}
	}
	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pair := result.Get(keys[0])

	bids, err := requireLevels(ex, pair, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, pair, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	return models.OrderBook{Bids: bids, Asks: asks}, nil
}

// decodeBitfinex reads the v2 raw book: a bare array of [price, count, amount]
// rows, bids and asks interleaved. Positive amounts are bids, negative asks,
// and rows with count <= 0 are level deletions that carry no standing size.
// Bitfinex does not pre-sort by side, which is why Normalize always sorts.
func decodeBitfinex(ex string, js *simplejson.Json) (models.OrderBook, error) {
	rows, err := js.Array()
	if err != nil {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "payload is not an array", Err: err}
	}
	// error frames look like ["error", code, "message"]
	if len(rows) > 0 {
		if tag, ok := rows[0].(string); ok && tag == "error" {
			msg := "exchange error"
			if len(rows) > 2 {
				if s, ok := rows[2].(string); ok {
					msg = s
				}
			}
			return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
		}
	}

	var ob models.OrderBook
	for _, raw := range rows {
		row, ok := raw.([]interface{})
		if !ok || len(row) < 3 {
			continue
		}
		price, ok := toDecimal(row[0])
		if !ok || !price.IsPositive() {
			continue
		}
		count, ok := toDecimal(row[1])
		if !ok || !count.IsPositive() {
			continue
		}
		amount, ok := toDecimal(row[2])
		if !ok || amount.IsZero() {
			continue
		}
		if amount.IsPositive() {
			ob.Bids = append(ob.Bids, models.PriceLevel{Price: price, Quantity: amount})
		} else {
			ob.Asks = append(ob.Asks, models.PriceLevel{Price: price, Quantity: amount.Neg()})
		}
	}
	return ob, nil
}
