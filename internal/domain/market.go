package domain

import "time"

// PricePoint is one row of a price history series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}

// MarketMetrics is the current market snapshot for one coin.
// A nil field means the provider omitted it.
type MarketMetrics struct {
	CurrentPriceUSD *float64 `json:"current_price_usd"`
	MarketCapUSD    *float64 `json:"market_cap_usd"`
	TotalVolumeUSD  *float64 `json:"total_volume_usd"`
	High24h         *float64 `json:"high_24h"`
	Low24h          *float64 `json:"low_24h"`
}
