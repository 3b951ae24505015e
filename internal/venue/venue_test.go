package venue

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"bookfeed/models"
)

func mustLookup(t *testing.T, exchange string) *Venue {
	t.Helper()
	v, err := Lookup(exchange)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", exchange, err)
	}
	return v
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLookupUnknownExchange(t *testing.T) {
	_, err := Lookup("hibt")
	var ce *models.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestRequestURLs(t *testing.T) {
	tests := []struct {
		exchange string
		symbol   string
		testnet  bool
		wantURL  string
		relayed  bool
	}{
		{"binance", "BTC-USDT", false, "https://api.binance.com/api/v3/depth?symbol=BTCUSDT&limit=100", false},
		{"binance", "BTC-USDT", true, "https://testnet.binance.vision/api/v3/depth?symbol=BTCUSDT&limit=100", false},
		{"kucoin", "BTC-USDT", false, "https://api.kucoin.com/api/v1/market/orderbook/level2_100?symbol=BTC-USDT", true},
		{"gateio", "LUNC-USDC", false, "https://api.gateio.ws/api/v4/spot/order_book?currency_pair=LUNC_USDT&limit=500", true},
		{"xt", "SHIB-USDT", false, "https://sapi.xt.com/v4/public/depth?symbol=shib_usdt&limit=200", true},
		{"okx", "BTC-USDC", false, "https://www.okx.com/api/v5/market/books?instId=BTC-USD&sz=400", false},
	}
	for _, tt := range tests {
		req := mustLookup(t, tt.exchange).Request(tt.symbol, tt.testnet)
		if req.URL != tt.wantURL {
			t.Errorf("%s: url = %s, want %s", tt.exchange, req.URL, tt.wantURL)
		}
		if req.Relayed != tt.relayed {
			t.Errorf("%s: relayed = %v, want %v", tt.exchange, req.Relayed, tt.relayed)
		}
	}
}

func TestNormalizeBinance(t *testing.T) {
	payload := []byte(`{"lastUpdateId":42,"bids":[["100.5","2"],["100.2","3"]],"asks":[["101.0","1"]]}`)
	v := mustLookup(t, "binance")

	ob, err := v.Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if ob.Symbol != "BTC-USDT" || ob.Exchange != "binance" {
		t.Errorf("identity fields wrong: %+v", ob)
	}
	if ob.UpdateID != 42 {
		t.Errorf("update id = %d", ob.UpdateID)
	}
	if len(ob.Bids) != 2 || len(ob.Asks) != 1 {
		t.Fatalf("level counts: %d bids, %d asks", len(ob.Bids), len(ob.Asks))
	}
	if !ob.Bids[0].Price.Equal(dec("100.5")) || !ob.Bids[0].Quantity.Equal(dec("2")) {
		t.Errorf("best bid = %+v", ob.Bids[0])
	}
	if !ob.Asks[0].Price.Equal(dec("101.0")) {
		t.Errorf("best ask = %+v", ob.Asks[0])
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	payload := []byte(`{"bids":[["2","1"],["3","1"],["1","1"]],"asks":[["5","1"],["4","1"]]}`)
	v := mustLookup(t, "binance")

	a, err := v.Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	b, err := v.Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Bids) != len(b.Bids) || len(a.Asks) != len(b.Asks) {
		t.Fatal("level counts differ between runs")
	}
	for i := range a.Bids {
		if !a.Bids[i].Price.Equal(b.Bids[i].Price) || !a.Bids[i].Quantity.Equal(b.Bids[i].Quantity) {
			t.Errorf("bid %d differs: %+v vs %+v", i, a.Bids[i], b.Bids[i])
		}
	}
}

func TestNormalizeSortsBothSides(t *testing.T) {
	payload := []byte(`{"bids":[["2","1"],["3","1"],["1","1"]],"asks":[["5","1"],["4","1"],["6","1"]]}`)
	ob, err := mustLookup(t, "binance").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i+1 < len(ob.Bids); i++ {
		if ob.Bids[i].Price.LessThan(ob.Bids[i+1].Price) {
			t.Fatalf("bids not descending at %d: %+v", i, ob.Bids)
		}
	}
	for i := 0; i+1 < len(ob.Asks); i++ {
		if ob.Asks[i].Price.GreaterThan(ob.Asks[i+1].Price) {
			t.Fatalf("asks not ascending at %d: %+v", i, ob.Asks)
		}
	}
}

func TestNormalizeDropsMalformedRows(t *testing.T) {
	payload := []byte(`{"bids":[["100.5","2"],["oops","3"],["0","4"],["-1","5"],["99"],["100.1","0"]],"asks":[["101.0","1"]]}`)
	ob, err := mustLookup(t, "binance").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatalf("row-level junk must not fail the cycle: %v", err)
	}
	if len(ob.Bids) != 1 {
		t.Errorf("surviving bids = %d, want 1 (%+v)", len(ob.Bids), ob.Bids)
	}
	for _, l := range append(ob.Bids, ob.Asks...) {
		if !l.Price.IsPositive() || !l.Quantity.IsPositive() {
			t.Errorf("non-positive level survived: %+v", l)
		}
	}
}

func TestNormalizeEmptyBookIsValid(t *testing.T) {
	ob, err := mustLookup(t, "binance").Normalize([]byte(`{"bids":[],"asks":[]}`), "BTC-USDT")
	if err != nil {
		t.Fatalf("structurally valid empty book must pass: %v", err)
	}
	if len(ob.Bids) != 0 || len(ob.Asks) != 0 {
		t.Errorf("expected empty book, got %+v", ob)
	}
}

func TestNormalizeMissingContainers(t *testing.T) {
	_, err := mustLookup(t, "binance").Normalize([]byte(`{"serverTime":1}`), "BTC-USDT")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) {
		t.Fatalf("want NormalizationError, got %v", err)
	}
}

func TestNormalizeKucoinErrorEnvelope(t *testing.T) {
	_, err := mustLookup(t, "kucoin").Normalize([]byte(`{"code":"ERROR","msg":"rate limited"}`), "BTC-USDT")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) {
		t.Fatalf("want NormalizationError, got %v", err)
	}
	if !strings.Contains(ne.Error(), "rate limited") {
		t.Errorf("error must carry the exchange message: %v", ne)
	}
}

func TestNormalizeKucoin(t *testing.T) {
	payload := []byte(`{"code":"200000","data":{"sequence":"7","bids":[["1.1","10"]],"asks":[["1.2","5"]]}}`)
	ob, err := mustLookup(t, "kucoin").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if ob.UpdateID != 7 || len(ob.Bids) != 1 || len(ob.Asks) != 1 {
		t.Errorf("unexpected book: %+v", ob)
	}
}

func TestNormalizeKraken(t *testing.T) {
	payload := []byte(`{"error":[],"result":{"XXBTZUSD":{"bids":[["100.5","2",1650000000],["100.2","3",1650000001]],"asks":[["101.0","1",1650000002]]}}}`)
	ob, err := mustLookup(t, "kraken").Normalize(payload, "BTC-USD")
	if err != nil {
		t.Fatal(err)
	}
	if len(ob.Bids) != 2 || len(ob.Asks) != 1 {
		t.Fatalf("levels: %d/%d", len(ob.Bids), len(ob.Asks))
	}
	if ob.Symbol != "BTC-USD" {
		t.Errorf("symbol must stay canonical, got %s", ob.Symbol)
	}

	_, err = mustLookup(t, "kraken").Normalize([]byte(`{"error":["EQuery:Unknown asset pair"]}`), "BTC-USD")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) || !strings.Contains(ne.Error(), "Unknown asset pair") {
		t.Errorf("kraken error array must surface: %v", err)
	}
}

func TestNormalizeBitfinex(t *testing.T) {
	// interleaved signed rows: positive amount = bid, negative = ask
	payload := []byte(`[[101.0,1,-1.5],[100.5,2,2.0],[100.2,1,3.0],[101.5,0,-9.9],[102.0,3,-0.5]]`)
	ob, err := mustLookup(t, "bitfinex").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(ob.Bids) != 2 || len(ob.Asks) != 2 {
		t.Fatalf("levels: %d bids %d asks (%+v)", len(ob.Bids), len(ob.Asks), ob)
	}
	if !ob.Bids[0].Price.Equal(dec("100.5")) {
		t.Errorf("best bid = %s", ob.Bids[0].Price)
	}
	if !ob.Asks[0].Price.Equal(dec("101")) || !ob.Asks[0].Quantity.Equal(dec("1.5")) {
		t.Errorf("best ask = %+v", ob.Asks[0])
	}

	_, err = mustLookup(t, "bitfinex").Normalize([]byte(`["error",10020,"symbol: invalid"]`), "BTC-USDT")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) || !strings.Contains(ne.Error(), "symbol: invalid") {
		t.Errorf("bitfinex error frame must surface: %v", err)
	}
}

func TestNormalizeBybit(t *testing.T) {
	payload := []byte(`{"retCode":0,"result":{"s":"BTCUSDT","b":[["100","1"]],"a":[["101","2"]],"u":99}}`)
	ob, err := mustLookup(t, "bybit").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if ob.UpdateID != 99 || len(ob.Bids) != 1 || len(ob.Asks) != 1 {
		t.Errorf("unexpected book: %+v", ob)
	}

	_, err = mustLookup(t, "bybit").Normalize([]byte(`{"retCode":10001,"retMsg":"params error"}`), "BTC-USDT")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) || !strings.Contains(ne.Error(), "params error") {
		t.Errorf("bybit retMsg must surface: %v", err)
	}
}

func TestNormalizeOKX(t *testing.T) {
	payload := []byte(`{"code":"0","data":[{"bids":[["100","1","0","1"]],"asks":[["101","2","0","1"]]}]}`)
	ob, err := mustLookup(t, "okx").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(ob.Bids) != 1 || len(ob.Asks) != 1 {
		t.Errorf("unexpected book: %+v", ob)
	}
}

func TestNormalizeCoinex(t *testing.T) {
	payload := []byte(`{"code":0,"data":{"depth":{"bids":[["100","1"]],"asks":[["101","2"]]}}}`)
	ob, err := mustLookup(t, "coinex").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(ob.Bids) != 1 || len(ob.Asks) != 1 {
		t.Errorf("unexpected book: %+v", ob)
	}
}

func TestNormalizeBitmartObjectRows(t *testing.T) {
	payload := []byte(`{"code":1000,"data":{"buys":[{"price":"100","amount":"1"},{"price":"99","size":"2"}],"sells":[{"price":"101","amount":"3"}]}}`)
	ob, err := mustLookup(t, "bitmart").Normalize(payload, "BTC-USDT")
	if err != nil {
		t.Fatal(err)
	}
	if len(ob.Bids) != 2 || len(ob.Asks) != 1 {
		t.Errorf("unexpected book: %+v", ob)
	}
}

func TestNormalizeXT(t *testing.T) {
	_, err := mustLookup(t, "xt").Normalize([]byte(`{"rc":1,"mc":"SYMBOL_NOT_EXIST"}`), "BTC-USDT")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) || !strings.Contains(ne.Error(), "SYMBOL_NOT_EXIST") {
		t.Errorf("xt mc must surface: %v", err)
	}

	payload := []byte(`{"rc":0,"result":{"bids":[["100","1"]],"asks":[["101","1"]]}}`)
	if _, err := mustLookup(t, "xt").Normalize(payload, "SHIB-USDT"); err != nil {
		t.Fatal(err)
	}
}

func TestNormalizeNovadax(t *testing.T) {
	_, err := mustLookup(t, "novadax").Normalize([]byte(`{"code":"A99999","message":"symbol not found"}`), "BTC-USDT")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) || !strings.Contains(ne.Error(), "symbol not found") {
		t.Errorf("novadax message must surface: %v", err)
	}
}

func TestNormalizeFlexibleWrappers(t *testing.T) {
	flat := []byte(`{"bids":[["100","1"]],"asks":[["101","1"]]}`)
	data := []byte(`{"data":{"bids":[["100","1"]],"asks":[["101","1"]]}}`)
	result := []byte(`{"result":{"bids":[["100","1"]],"asks":[["101","1"]]}}`)
	v := mustLookup(t, "deepcoin")
	for _, payload := range [][]byte{flat, data, result} {
		ob, err := v.Normalize(payload, "SHIB-USDT")
		if err != nil {
			t.Fatalf("%s: %v", payload, err)
		}
		if len(ob.Bids) != 1 || len(ob.Asks) != 1 {
			t.Errorf("%s: unexpected book %+v", payload, ob)
		}
	}
}

func TestNormalizeMexc(t *testing.T) {
	_, err := mustLookup(t, "mexc").Normalize([]byte(`{"code":700002,"msg":"signature invalid"}`), "BTC-USDT")
	var ne *models.NormalizationError
	if !errors.As(err, &ne) || !strings.Contains(ne.Error(), "signature invalid") {
		t.Errorf("mexc msg must surface: %v", err)
	}
}

func TestExchangesListedAndResolvable(t *testing.T) {
	names := Exchanges()
	if len(names) < 19 {
		t.Fatalf("expected at least 19 venues, got %d", len(names))
	}
	for _, name := range names {
		v := mustLookup(t, name)
		if req := v.Request("BTC-USDT", false); !strings.HasPrefix(req.URL, "https://") {
			t.Errorf("%s: bad request url %q", name, req.URL)
		}
	}
}
