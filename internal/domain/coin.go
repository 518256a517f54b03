package domain

import (
	"sort"
	"strings"
)

// CoinID is the provider slug used in API paths (e.g. "bitcoin").
type CoinID string

const usdSuffix = "-USD"

// coinIDs is read-only after init.
var coinIDs = map[string]CoinID{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"LTC":  "litecoin",
	"DOGE": "dogecoin",
	"ADA":  "cardano",
}

// NormalizeSymbol maps a ticker such as "btc" or "ETH-USD" to a coin id.
// Unknown tickers fall back to their lowercased form, which the provider
// may reject.
func NormalizeSymbol(symbol string) CoinID {
	s := tickerKey(symbol)
	if id, ok := coinIDs[s]; ok {
		return id
	}
	return CoinID(strings.ToLower(s))
}

// IsKnownSymbol reports whether symbol resolves through the fixed table.
func IsKnownSymbol(symbol string) bool {
	_, ok := coinIDs[tickerKey(symbol)]
	return ok
}

// tickerKey is the table key for symbol: uppercased, "-USD" stripped.
func tickerKey(symbol string) string {
	return strings.TrimSuffix(strings.ToUpper(symbol), usdSuffix)
}

// KnownSymbols returns the tickers of the fixed table, sorted.
func KnownSymbols() []string {
	out := make([]string, 0, len(coinIDs))
	for s := range coinIDs {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
