package venue

import (
	"encoding/json"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/shopspring/decimal"

	"bookfeed/models"
)

// requireLevels pulls the row array at key out of container. A missing or
// non-array container is a structural error; individual rows that fail to
// coerce are dropped silently.
func requireLevels(ex string, container *simplejson.Json, key string) ([]models.PriceLevel, error) {
	node, ok := container.CheckGet(key)
	if !ok {
		return nil, &models.NormalizationError{Exchange: ex, Msg: "missing " + key + " container"}
	}
	rows, err := node.Array()
	if err != nil {
		return nil, &models.NormalizationError{Exchange: ex, Msg: key + " is not an array", Err: err}
	}
	return coerceRows(rows), nil
}

// coerceRows converts heterogeneous row encodings into price levels. Accepted
// shapes: ["price","qty",...], [price,qty,...] and {"price":..,"amount"|"size"|
// "quantity":..}. Rows with missing, non-numeric, zero or negative components
// do not survive.
func coerceRows(rows []interface{}) []models.PriceLevel {
	out := make([]models.PriceLevel, 0, len(rows))
	for _, row := range rows {
		if lvl, ok := coerceRow(row); ok {
			out = append(out, lvl)
		}
	}
	return out
}

func coerceRow(row interface{}) (models.PriceLevel, bool) {
	switch r := row.(type) {
	case []interface{}:
		if len(r) < 2 {
			return models.PriceLevel{}, false
		}
		return makeLevel(r[0], r[1])
	case map[string]interface{}:
		price, ok := r["price"]
		if !ok {
			return models.PriceLevel{}, false
		}
		for _, key := range []string{"amount", "size", "quantity"} {
			if qty, ok := r[key]; ok {
				return makeLevel(price, qty)
			}
		}
	}
	return models.PriceLevel{}, false
}

func makeLevel(priceVal, qtyVal interface{}) (models.PriceLevel, bool) {
	price, ok := toDecimal(priceVal)
	if !ok || !price.IsPositive() {
		return models.PriceLevel{}, false
	}
	qty, ok := toDecimal(qtyVal)
	if !ok || !qty.IsPositive() {
		return models.PriceLevel{}, false
	}
	return models.PriceLevel{Price: price, Quantity: qty}, true
}

// toDecimal parses a JSON scalar without a float64 round trip; simplejson
// decodes with UseNumber so numeric literals arrive as json.Number.
func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}
