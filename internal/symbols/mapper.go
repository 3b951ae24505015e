package symbols

import "strings"

// Map converts a canonical pair like "BTC-USDT" into the wire format the given
// exchange expects. Pure and deterministic; symbols that do not look like a
// canonical pair pass through unchanged.
//
// Some venues do not list every quote asset, so a handful of entries substitute
// a supported quote (USDC→USDT on Gate.io, -USDC→-USD on OKX, USDT→USD on
// Bitfinex). The book returned for such a pair is nominal: the caller asked for
// one quote asset and is served the venue's nearest market.
func Map(exchange, symbol string) string {
	base, quote, ok := split(symbol)
	if !ok {
		return symbol
	}

	switch strings.ToLower(exchange) {
	case "binance", "mexc", "bybit", "bitget", "coinex", "btcc", "kraken":
		return base + quote
	case "kucoin":
		if base == "VOLTINU" {
			// KuCoin lists VOLT, not VOLTINU
			base = "VOLT"
		}
		return base + "-" + quote
	case "coinbase", "bingx":
		return base + "-" + quote
	case "okx":
		if quote == "USDC" {
			// nominal substitution: OKX offers USD markets only
			quote = "USD"
		}
		return base + "-" + quote
	case "gateio":
		if quote == "USDC" {
			// nominal substitution: Gate.io lists these pairs against USDT
			quote = "USDT"
		}
		return base + "_" + quote
	case "bitmart", "cryptocom", "novadax", "kcex", "deepcoin":
		return base + "_" + quote
	case "xt":
		return strings.ToLower(base + "_" + quote)
	case "bitfinex":
		return bitfinexSymbol(base, quote)
	default:
		return symbol
	}
}

// bitfinexAliases pins assets whose only Bitfinex market is the USD one.
// Nominal substitutions for venues lacking the requested quote market.
var bitfinexAliases = map[string]string{
	"SHIB": "SHIBUSD",
	"LUNC": "LUNCUSD",
	"LUNA": "LUNAUSD",
	"PEPE": "PEPEUSD",
}

func bitfinexSymbol(base, quote string) string {
	if sym, ok := bitfinexAliases[base]; ok && (quote == "USDT" || quote == "USDC" || quote == "USD") {
		return sym
	}
	if quote == "USDT" {
		quote = "USD"
	}
	return base + quote
}

func split(symbol string) (base, quote string, ok bool) {
	parts := strings.SplitN(symbol, "-", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
