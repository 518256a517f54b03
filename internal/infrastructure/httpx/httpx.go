package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cryptodata-service/internal/domain"
	"go.uber.org/zap"
)

// maxErrorBody caps how much of a non-2xx body is kept on the error.
const maxErrorBody = 64 << 10

// Client issues single-shot JSON GETs. It never retries: a failed round
// trip or non-2xx status is returned to the caller as *domain.HTTPError.
type Client struct {
	HTTP *http.Client
	// Header is added to every request (e.g. provider API keys).
	Header http.Header
	Log    *zap.Logger
}

func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.DoJSON(req, out)
}

func (c *Client) DoJSON(req *http.Request, out any) error {
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	target := req.URL.String()

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		log.Warn("httpx.request_failed", zap.String("url", target), zap.Error(err))
		return &domain.HTTPError{URL: target, Err: err}
	}
	defer resp.Body.Close()
	log.Debug("httpx.response",
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.HTTPError{StatusCode: resp.StatusCode, Body: string(body), URL: target}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
