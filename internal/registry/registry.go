// Package registry carries per-exchange display metadata and the supported
// pair lists, in each venue's own wire spelling. Feed plumbing never validates
// against this; it exists for surfaces that need to offer or label pairs.
package registry

import "sort"

type Exchange struct {
	ID           string
	DisplayName  string
	RequiresAuth bool
	MaxDepth     int
	Symbols      []string
}

var exchanges = map[string]Exchange{
	"binance": {
		ID: "binance", DisplayName: "Binance", MaxDepth: 100,
		Symbols: []string{
			"BTCUSDT", "BTCUSDC", "SHIBUSDT", "SHIBUSDC", "LUNCUSDT", "LUNCUSDC", "LUNAUSDT", "LUNAUSDC",
			"XRPUSDT", "XRPUSDC", "XLMUSDT", "XLMUSDC", "VOLTINUUSDT", "KISHUUSDT",
			"PEPEUSDT", "PEPEUSDC", "WENUSDT", "VINUUSDT", "BONKUSDT", "TURBOUSDT", "TURBOUSDC",
		},
	},
	"kucoin": {
		ID: "kucoin", DisplayName: "KuCoin", MaxDepth: 1000,
		Symbols: []string{
			"BTC-USDT", "BTC-USDC", "SHIB-USDT", "SHIB-USDC", "LUNC-USDT", "LUNC-USDC", "LUNA-USDT", "LUNA-USDC",
			"XRP-USDT", "XRP-USDC", "XLM-USDT", "XLM-USDC", "PEPE-USDT", "PEPE-USDC",
			"VOLTINU-USDT", "KISHU-USDT", "WEN-USDT", "VINU-USDT", "BONK-USDT", "TURBO-USDT", "TURBO-USDC",
		},
	},
	"kraken": {
		ID: "kraken", DisplayName: "Kraken", MaxDepth: 500,
		Symbols: []string{
			"XBTUSD", "XBTUSDT", "XBTUSDC", "XBTEUR", "XBTGBP", "SHIBUSD", "SHIBUSDT", "SHIBUSDC", "SHIBEUR",
			"LUNAUSD", "LUNAUSDT", "LUNAUSDC", "XLMUSD", "XLMUSDT", "XLMUSDC",
			"XRPUSD", "XRPUSDT", "XRPUSDC", "XRPEUR", "PEPEUSD", "PEPEUSDT", "PEPEUSDC",
			"BONKUSD", "BONKUSDC", "ETHUSD", "ETHUSDT", "ETHUSDC",
		},
	},
	"coinbase": {
		ID: "coinbase", DisplayName: "Coinbase Pro", MaxDepth: 1000,
		Symbols: []string{
			"BTC-USD", "SHIB-USD", "XLM-USD", "XRP-USD", "XRP-EUR",
			"PEPE-USD", "PEPE-EUR", "BONK-USD", "TURBO-USD",
		},
	},
	"bitfinex": {
		ID: "bitfinex", DisplayName: "Bitfinex", MaxDepth: 250,
		Symbols: []string{
			"BTCUSD", "BTCUST", "BTCEUR", "SHIBUST", "SHIBEUR", "LUNCUSD", "LUNCEUR", "LUNAUSD", "LUNAEUR",
			"XLMUSD", "XLMEUR", "XRPUSD", "XRPEUR", "PEPEUSD", "PEPEUST", "PEPEEUR",
		},
	},
	"bitget": {
		ID: "bitget", DisplayName: "Bitget", MaxDepth: 200,
		Symbols: []string{
			"BTCUSDT", "BTCUSDC", "SHIBUSDT", "SHIBUSDC", "LUNCUSDT", "LUNCUSDC", "LUNAUSDT", "LUNAUSDC",
			"XLMUSDT", "XLMUSDC", "XRPUSDT", "XRPUSDC", "VOLTINUUSDT", "KISHUUSDT",
			"PEPEUSDT", "PEPEUSDC", "WENUSDT", "VINUUSDT", "BONKUSDT", "TURBOUSDT", "TURBOUSDC",
		},
	},
	"okx": {
		ID: "okx", DisplayName: "OKX", MaxDepth: 400,
		Symbols: []string{
			"BTC-USDT", "BTC-USDC", "SHIB-USDT", "SHIB-USDC", "LUNC-USDT", "LUNC-USDC", "LUNA-USDT", "LUNA-USDC",
			"XLM-USDT", "XLM-USDC", "XRP-USDT", "XRP-USDC", "VOLTINU-USDT", "KISHU-USDT",
			"PEPE-USDT", "PEPE-USDC", "WEN-USDT", "VINU-USDT", "BONK-USDT", "TURBO-USDT", "TURBO-USDC",
			"FLOKI-USD", "FLOKI-USDT",
		},
	},
	"gateio": {
		ID: "gateio", DisplayName: "Gate.io", MaxDepth: 500,
		Symbols: []string{
			"BTC_USDT", "BTC_USDC", "SHIB_USDT", "SHIB_USDC", "LUNC_USDT", "LUNC_USDC",
			"LUNA_USDT", "LUNA_USDC", "XLM_USDT", "XLM_USDC", "XRP_USDT", "XRP_USDC",
			"VOLTINU_USDT", "KISHU_USDT", "PEPE_USDT", "PEPE_USDC", "ELON_USDT", "WEN_USDT",
			"VINU_USDT", "BONK_USDT", "WKC_USDT", "TURBO_USDT", "TURBO_USDC", "ETH_USDT",
		},
	},
	"mexc": {
		ID: "mexc", DisplayName: "MEXC", MaxDepth: 200,
		Symbols: []string{
			"BTCUSDT", "BTCUSDC", "SHIBUSDT", "SHIBUSDC", "LUNCUSDT", "LUNCUSDC", "LUNAUSDT", "LUNAUSDC",
			"XLMUSDT", "XLMUSDC", "XRPUSDT", "XRPUSDC", "KISHUUSDT", "VOLTINUUSDT",
			"PEPEUSDT", "PEPEUSDC", "WENUSDT", "VINUUSDT", "BONKUSDT", "TURBOUSDT", "TURBOUSDC", "WKCUSDT",
		},
	},
	"bitmart": {
		ID: "bitmart", DisplayName: "Bitmart", MaxDepth: 200,
		Symbols: []string{
			"BTC_USDT", "BTC_USDC", "SHIB_USDT", "SHIB_USDC", "LUNC_USDT", "LUNC_USDC", "LUNA_USDT", "LUNA_USDC",
			"XLM_USDT", "XLM_USDC", "XRP_USDT", "XRP_USDC", "VOLTINU_USDT", "KISHU_USDT",
			"PEPE_USDT", "PEPE_USDC", "WEN_USDT", "VINU_USDT", "BONK_USDT", "TURBO_USDT", "TURBO_USDC",
		},
	},
	"bybit": {
		ID: "bybit", DisplayName: "Bybit", MaxDepth: 200,
		Symbols: []string{
			"BTCUSDT", "BTCUSDC", "SHIBUSDT", "SHIBUSDC", "LUNCUSDT", "LUNCUSDC", "LUNAUSDT", "LUNAUSDC",
			"XLMUSDT", "XLMUSDC", "XRPUSDT", "XRPUSDC", "PEPEUSDT", "PEPEUSDC",
			"WENUSDT", "VINUUSDT", "BONKUSDT", "KISHUUSDT", "VOLTINUUSDT", "TURBOUSDT", "TURBOUSDC",
		},
	},
	"coinex": {
		ID: "coinex", DisplayName: "CoinEx", MaxDepth: 200,
		Symbols: []string{
			"BTCUSDT", "BTCUSDC", "SHIBUSDT", "SHIBUSDC", "LUNCUSDT", "LUNCUSDC", "LUNAUSDT", "LUNAUSDC",
			"XLMUSDT", "XLMUSDC", "XRPUSDT", "XRPUSDC", "PEPEUSDT", "PEPEUSDC",
			"WENUSDT", "VINUUSDT", "BONKUSDT", "KISHUUSDT", "VOLTINUUSDT", "TURBOUSDT", "TURBOUSDC",
		},
	},
	"bingx": {
		ID: "bingx", DisplayName: "BingX", MaxDepth: 200,
		Symbols: []string{
			"BTC-USDT", "BTC-USDC", "SHIB-USDT", "SHIB-USDC", "LUNC-USDT", "LUNC-USDC", "LUNA-USDT", "LUNA-USDC",
			"XLM-USDT", "XLM-USDC", "XRP-USDT", "XRP-USDC", "PEPE-USDT", "PEPE-USDC",
			"WEN-USDT", "VINU-USDT", "BONK-USDT", "KISHU-USDT", "VOLTINU-USDT", "TURBO-USDT", "TURBO-USDC",
		},
	},
	"cryptocom": {
		ID: "cryptocom", DisplayName: "Crypto.com", MaxDepth: 150,
		Symbols: []string{
			"BTC_USDT", "BTC_USDC", "SHIB_USDT", "SHIB_USDC", "LUNC_USDT", "LUNC_USDC", "LUNA_USDT", "LUNA_USDC",
			"XLM_USDT", "XLM_USDC", "XRP_USDT", "XRP_USDC", "PEPE_USDT", "PEPE_USDC",
			"WEN_USDT", "VINU_USDT", "BONK_USDT", "KISHU_USDT", "VOLTINU_USDT", "TURBO_USDT", "TURBO_USDC",
		},
	},
	"kcex": {
		ID: "kcex", DisplayName: "KCex", MaxDepth: 1000,
		Symbols: []string{"BTCUSDT", "BTCUSDC", "PEPEUSDT", "XRPUSDT"},
	},
	"novadax": {
		ID: "novadax", DisplayName: "NovaDAX", MaxDepth: 100,
		Symbols: []string{"BTC_BRL", "BTC_USDT", "SHIB_BRL", "SHIB_USDT", "XRP_BRL", "PEPE_BRL", "XLM_BRL"},
	},
	"xt": {
		ID: "xt", DisplayName: "XT", MaxDepth: 200,
		Symbols: []string{"shib_usdt", "shib_usdc", "pepe_usdt", "pepe_usdc", "xrp_usdt", "xrp_usdc"},
	},
	"deepcoin": {
		ID: "deepcoin", DisplayName: "Deepcoin", MaxDepth: 400,
		Symbols: []string{"SHIB_USDT", "PEPE_USDT", "BTC_USDT"},
	},
	"btcc": {
		ID: "btcc", DisplayName: "BTCC", MaxDepth: 200,
		Symbols: []string{
			"BTCUSDT", "ETHUSDT", "XRPUSDT", "LTCUSDT", "TRXUSDT", "LINKUSDT",
			"ADAUSDT", "DOGEUSDT", "SHIBUSDT", "PEPEUSDT", "SOLUSDT", "BNBUSDT",
		},
	},
}

// Get looks up one exchange's metadata.
func Get(id string) (Exchange, bool) {
	ex, ok := exchanges[id]
	return ex, ok
}

// All returns every known exchange, sorted by id.
func All() []Exchange {
	out := make([]Exchange, 0, len(exchanges))
	for _, ex := range exchanges {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Supports reports whether the exchange lists wireSymbol.
func Supports(id, wireSymbol string) bool {
	ex, ok := exchanges[id]
	if !ok {
		return false
	}
	for _, s := range ex.Symbols {
		if s == wireSymbol {
			return true
		}
	}
	return false
}
