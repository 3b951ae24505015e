package venue

import (
	"fmt"
	"strconv"

	simplejson "github.com/bitly/go-simplejson"

	"bookfeed/models"
)

// decodeKucoin reads /market/orderbook/level2_100: {"code":"200000","data":
// {"sequence":..,"bids":[..],"asks":[..]}}. Any other code is the exchange's
// own error and must surface with its message, not as an empty book.
func decodeKucoin(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").String(); err == nil && code != "200000" {
		msg, _ := apiMessage(js, "msg")
		if msg == "" {
			msg = "error code " + code
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	data, ok := js.CheckGet("data")
	if !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing data container"}
	}
	bids, err := requireLevels(ex, data, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, data, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	ob := models.OrderBook{Bids: bids, Asks: asks}
	if seq, err := data.Get("sequence").String(); err == nil {
		if id, err := strconv.ParseInt(seq, 10, 64); err == nil {
			ob.UpdateID = id
		}
	}
	return ob, nil
}

// decodeBitget: v2 envelope {"code":"00000","data":{"bids":..,"asks":..}}.
func decodeBitget(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").String(); err == nil && code != "00000" {
		msg, _ := apiMessage(js, "msg")
		if msg == "" {
			msg = "error code " + code
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	return containerBook(ex, js, "data")
}

// decodeOKX: {"code":"0","data":[{"bids":..,"asks":..}]}; rows carry two extra
// depth columns that the coercer ignores.
func decodeOKX(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").String(); err == nil && code != "0" {
		msg, _ := apiMessage(js, "msg")
		if msg == "" {
			msg = "error code " + code
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	data := js.Get("data").GetIndex(0)
	if _, ok := data.CheckGet("bids"); !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing data[0] book"}
	}
	bids, err := requireLevels(ex, data, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, data, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	return models.OrderBook{Bids: bids, Asks: asks}, nil
}

// decodeBybit: {"retCode":0,"result":{"b":..,"a":..,"u":..}}.
func decodeBybit(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("retCode").Int(); err == nil && code != 0 {
		msg, _ := apiMessage(js, "retMsg")
		if msg == "" {
			msg = fmt.Sprintf("error code %d", code)
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	result, ok := js.CheckGet("result")
	if !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing result container"}
	}
	bids, err := requireLevels(ex, result, "b")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, result, "a")
	if err != nil {
		return models.OrderBook{}, err
	}
	ob := models.OrderBook{Bids: bids, Asks: asks}
	if id, err := result.Get("u").Int64(); err == nil {
		ob.UpdateID = id
	}
	return ob, nil
}

// decodeCoinex: v2 envelope {"code":0,"data":{"depth":{"bids":..,"asks":..}}}.
func decodeCoinex(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").Int(); err == nil && code != 0 {
		msg, _ := apiMessage(js, "message")
		if msg == "" {
			msg = fmt.Sprintf("error code %d", code)
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	depth, ok := js.Get("data").CheckGet("depth")
	if !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing data.depth container"}
	}
	bids, err := requireLevels(ex, depth, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, depth, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	return models.OrderBook{Bids: bids, Asks: asks}, nil
}

// decodeBingx: {"code":0,"data":{"bids":..,"asks":..}}.
func decodeBingx(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").Int(); err == nil && code != 0 {
		msg, _ := apiMessage(js, "msg")
		if msg == "" {
			msg = fmt.Sprintf("error code %d", code)
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	return containerBook(ex, js, "data")
}

// decodeCryptocom: {"code":0,"result":{"data":[{"bids":..,"asks":..}]}}.
func decodeCryptocom(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").Int(); err == nil && code != 0 {
		msg, _ := apiMessage(js, "message")
		if msg == "" {
			msg = fmt.Sprintf("error code %d", code)
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	data := js.Get("result").Get("data").GetIndex(0)
	if _, ok := data.CheckGet("bids"); !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing result.data[0] book"}
	}
	bids, err := requireLevels(ex, data, "bids")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, data, "asks")
	if err != nil {
		return models.OrderBook{}, err
	}
	return models.OrderBook{Bids: bids, Asks: asks}, nil
}

// decodeNovadax: success code is the literal "A10000".
func decodeNovadax(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").String(); err == nil && code != "A10000" {
		msg, _ := apiMessage(js, "message")
		if msg == "" {
			msg = "error code " + code
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	return containerBook(ex, js, "data")
}

// decodeXT: {"rc":0,"mc":"SUCCESS","result":{"bids":..,"asks":..}}.
func decodeXT(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if rc, err := js.Get("rc").Int(); err == nil && rc != 0 {
		msg, _ := apiMessage(js, "mc")
		if msg == "" {
			msg = fmt.Sprintf("error code %d", rc)
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	return containerBook(ex, js, "result")
}

// decodeBitmart: {"code":1000,"data":{"buys":[{price,amount}],"sells":[..]}};
// rows are objects, occasionally arrays on older gateways.
func decodeBitmart(ex string, js *simplejson.Json) (models.OrderBook, error) {
	if code, err := js.Get("code").Int(); err == nil && code != 1000 && code != 0 {
		msg, _ := apiMessage(js, "message")
		if msg == "" {
			msg = fmt.Sprintf("error code %d", code)
		}
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: msg}
	}
	data, ok := js.CheckGet("data")
	if !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing data container"}
	}
	bids, err := requireLevels(ex, data, "buys")
	if err != nil {
		return models.OrderBook{}, err
	}
	asks, err := requireLevels(ex, data, "sells")
	if err != nil {
		return models.OrderBook{}, err
	}
	return models.OrderBook{Bids: bids, Asks: asks}, nil
}

// containerBook reads bids/asks one level under key.
func containerBook(ex string, js *simplejson.Json, key string) (models.OrderBook, error) {
	container, ok := js.CheckGet(key)
	if !ok {
		return models.OrderBook{}, &models.NormalizationError{Exchange: ex, Msg: "missing " + key + " container"}
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
