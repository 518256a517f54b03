package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cryptodata-service/internal/application"
	"cryptodata-service/internal/domain"
	"cryptodata-service/internal/infrastructure/httpx"

	"go.uber.org/zap"
)

const (
	// APIKeyHeader carries the optional demo-plan key.
	APIKeyHeader = "x-cg-demo-api-key"

	vsCurrency = "usd"
)

// CoinGecko fetches price series and market snapshots from the CoinGecko v3 API.
type CoinGecko struct {
	BaseURL string
	Client  *httpx.Client
	Log     *zap.Logger
}

var _ application.MarketDataProvider = (*CoinGecko)(nil)

type marketChartResp struct {
	Prices [][]*float64 `json:"prices"`
}

type usdField map[string]*float64

func (f usdField) usd() *float64 {
	if f == nil {
		return nil
	}
	return f[vsCurrency]
}

type coinResp struct {
	MarketData struct {
		CurrentPrice usdField `json:"current_price"`
		MarketCap    usdField `json:"market_cap"`
		TotalVolume  usdField `json:"total_volume"`
		High24h      usdField `json:"high_24h"`
		Low24h       usdField `json:"low_24h"`
	} `json:"market_data"`
}

func (p *CoinGecko) PriceRange(ctx context.Context, coin domain.CoinID, from, to time.Time) ([]domain.PricePoint, error) {
	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))
	target, err := p.endpoint(coin, "/market_chart/range", q)
	if err != nil {
		return nil, err
	}

	log := p.logger().With(zap.String("coin_id", string(coin)))
	log.Info("coingecko.request", zap.String("endpoint", "market_chart_range"),
		zap.Int64("from", from.Unix()), zap.Int64("to", to.Unix()))

	var body marketChartResp
	if err := p.client().GetJSON(ctx, target, &body); err != nil {
		log.Warn("coingecko.request_failed", zap.Error(err))
		return nil, fmt.Errorf("coingecko: market chart %s: %w", coin, err)
	}

	out := make([]domain.PricePoint, 0, len(body.Prices))
	for i, row := range body.Prices {
		if len(row) != 2 {
			return nil, fmt.Errorf("coingecko: market chart %s: row %d has %d columns", coin, i, len(row))
		}
		if row[0] == nil || row[1] == nil {
			return nil, fmt.Errorf("coingecko: market chart %s: row %d has a null column", coin, i)
		}
		out = append(out, domain.PricePoint{
			Timestamp: time.UnixMilli(int64(*row[0])).UTC(),
			Price:     *row[1],
		})
	}
	return out, nil
}

func (p *CoinGecko) Metrics(ctx context.Context, coin domain.CoinID) (domain.MarketMetrics, error) {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")
	target, err := p.endpoint(coin, "", q)
	if err != nil {
		return domain.MarketMetrics{}, err
	}

	log := p.logger().With(zap.String("coin_id", string(coin)))
	log.Info("coingecko.request", zap.String("endpoint", "coin"))

	var body coinResp
	if err := p.client().GetJSON(ctx, target, &body); err != nil {
		log.Warn("coingecko.request_failed", zap.Error(err))
		return domain.MarketMetrics{}, fmt.Errorf("coingecko: coin %s: %w", coin, err)
	}
	md := body.MarketData
	return domain.MarketMetrics{
		CurrentPriceUSD: md.CurrentPrice.usd(),
		MarketCapUSD:    md.MarketCap.usd(),
		TotalVolumeUSD:  md.TotalVolume.usd(),
		High24h:         md.High24h.usd(),
		Low24h:          md.Low24h.usd(),
	}, nil
}

func (p *CoinGecko) endpoint(coin domain.CoinID, suffix string, q url.Values) (string, error) {
	if p.BaseURL == "" {
		return "", errors.New("coingecko: missing base url")
	}
	if coin == "" {
		return "", errors.New("coingecko: empty coin id")
	}
	raw := strings.TrimRight(p.BaseURL, "/") + "/coins/" + url.PathEscape(string(coin)) + suffix
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("coingecko: invalid base url: %w", err)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *CoinGecko) client() *httpx.Client {
	if p.Client == nil {
		return &httpx.Client{}
	}
	return p.Client
}

func (p *CoinGecko) logger() *zap.Logger {
	if p.Log == nil {
		return zap.NewNop()
	}
	return p.Log
}
