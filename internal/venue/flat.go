package venue

import (
	"fmt"

	simplejson "github.com/bitly/go-simplejson"

	"bookfeed/models"
)

// decodeBinance handles the plain {lastUpdateId, bids, asks} shape. Binance
// reports errors as {"code":..,"msg":..} inside a 200 body.
func decodeBinance(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if _, hasBids := js.CheckGet("bids"); !hasBids {
		if msg, ok := apiMessage(js, "msg"); ok {
			return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
		}
	}
	bids, err := requireLevels(ex, js, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, js, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	ob := models.OrderBook{Bids: bids, Asks: asks}
	if id, err := js.Get("lastUpdateId").Int64(); err == nil {
		ob.UpdateID = id
	}
	return ob, nil
}

// decodeMexc is Binance-shaped but has been observed wrapping the book under
// "data" or "result" depending on gateway, so it falls back through all three.
func decodeMexc(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").Int(); err == nil && code != 200 && code != 0 {
		msg, _ := apiMessage(js, "msg")
		if msg == "" {
			msg = fmt.Sprintf("error code %d", code)
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	return decodeFlexible(ex, js)
}

// decodeFlexible accepts the book at the top level or one level under "data"
// or "result"; several smaller venues move it between releases.
func decodeFlexible(ex string, js *simplejson.Json) (models.OrderBook, error) {
	for _, container := range []*simplejson.Json{js, js.Get("data"), js.Get("result")} {
		_, hasBids := container.CheckGet("bids")
		_, hasAsks := container.CheckGet("asks")
		if !hasBids || !hasAsks {
			continue
		}
		bids, err := requireLevels(ex, container, "bids")
		if err != nil {
			return models.OrderBook{}, err
		}
		asks, err := requireLevels(ex, container, "asks")
		if err != nil {
			return models.OrderBook{}, err
		}
		return models.OrderBook{Bids: bids, Asks: asks}, nil
	}
	return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "unrecognized payload structure"}
}

// decodeGateio reads the flat v4 shape; Gate.io errors carry label+message.
func decodeGateio(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if label, err := js.Get("label").String(); err == nil && label != "" {
		msg, _ := apiMessage(js, "message")
		if msg == "" {
			msg = label
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	bids, err := requireLevels(ex, js, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, js, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	ob := models.OrderBook{Bids: bids, Asks: asks}
	if id, err := js.Get("id").Int64(); err == nil {
		ob.UpdateID = id
	}
	return ob, nil
}

// decodeCoinbase reads the level-2 product book; rows are [price, size,
// num-orders] and errors arrive as {"message": ...}.
func decodeCoinbase(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if _, hasBids := js.CheckGet("bids"); !hasBids {
		if msg, ok := apiMessage(js, "message"); ok {
			return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
		}
	}
	bids, err := requireLevels(ex, js, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, js, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	ob := models.OrderBook{Bids: bids, Asks: asks}
	if seq, err := js.Get("sequence").Int64(); err == nil {
		ob.UpdateID = seq
	}
	return ob, nil
}

// apiMessage fetches a non-empty string field, used for exchange-reported
// errors embedded in 200 responses.
func apiMessage(js *simplejson.Json, key string) (string, bool) {
	msg, err := js.Get(key).String()
	if err != nil || msg == "" {
		return "", false
	}
	return msg, true
}
