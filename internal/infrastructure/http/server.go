package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"cryptodata-service/internal/application"
	"cryptodata-service/internal/domain"
	"cryptodata-service/internal/infrastructure/logx"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"go.uber.org/zap"
)

type Server struct {
	svc  *application.CryptoDataService
	ping func(ctx context.Context) error
}

func NewServer(svc *application.CryptoDataService) *Server { return &Server{svc: svc} }

// SetReadyCheck installs the check behind /readyz.
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type historyResponse struct {
	Symbol string              `json:"symbol"`
	CoinID domain.CoinID       `json:"coin_id"`
	Rows   []domain.PricePoint `json:"rows"`
}

type metricsResponse struct {
	Symbol string        `json:"symbol"`
	CoinID domain.CoinID `json:"coin_id"`
	domain.MarketMetrics
}

type snapshotRequest struct {
	Symbol string `json:"symbol"`
}

type snapshotAccepted struct {
	SnapshotID string `json:"snapshot_id"`
}

type snapshotJobResponse struct {
	SnapshotID string                `json:"snapshot_id"`
	Symbol     string                `json:"symbol"`
	CoinID     domain.CoinID         `json:"coin_id"`
	Status     string                `json:"status"`
	UpdatedAt  time.Time             `json:"updated_at"`
	Error      *string               `json:"error,omitempty"`
	Metrics    *domain.MarketMetrics `json:"metrics,omitempty"`
}

type snapshotResponse struct {
	CoinID    domain.CoinID `json:"coin_id"`
	FetchedAt time.Time     `json:"fetched_at"`
	domain.MarketMetrics
}

func (s *Server) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	symbol, ok := pathSymbol(w, r)
	if !ok {
		return
	}
	var start, end string
	q := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, true, "start_date", q, &start); err != nil {
		badRequest(w, "start_date is required")
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "end_date", q, &end); err != nil {
		badRequest(w, "end_date is required")
		return
	}

	res, err := s.svc.GetPriceHistory(r.Context(), symbol, start, end)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Symbol: symbol,
		CoinID: res.CoinID,
		Rows:   res.Rows,
	})
}

func (s *Server) GetMetrics(w http.ResponseWriter, r *http.Request) {
	symbol, ok := pathSymbol(w, r)
	if !ok {
		return
	}
	res, err := s.svc.GetMetrics(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metricsResponse{
		Symbol:        symbol,
		CoinID:        res.CoinID,
		MarketMetrics: res.Metrics,
	})
}

func (s *Server) ListSymbols(w http.ResponseWriter, _ *http.Request) {
	syms := domain.KnownSymbols()
	out := make(map[string]domain.CoinID, len(syms))
	for _, sym := range syms {
		out[sym] = domain.NormalizeSymbol(sym)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) RequestSnapshot(w http.ResponseWriter, r *http.Request) {
	var body snapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if body.Symbol == "" {
		badRequest(w, "symbol is required")
		return
	}
	var idem *string
	if k := r.Header.Get("X-Idempotency-Key"); k != "" {
		idem = &k
	}
	id, err := s.svc.RequestSnapshot(r.Context(), body.Symbol, idem)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, snapshotAccepted{SnapshotID: id})
}

func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := runtime.BindStyledParameterWithLocation("simple", false, "id", runtime.ParamLocationPath, chi.URLParam(r, "id"), &id); err != nil {
		badRequest(w, "invalid snapshot id")
		return
	}
	job, err := s.svc.GetSnapshotJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := snapshotJobResponse{
		SnapshotID: job.ID,
		Symbol:     job.Symbol,
		CoinID:     job.CoinID,
		Status:     mapStatus(job.Status),
		UpdatedAt:  job.UpdatedAt,
		Error:      job.Error,
	}
	if job.Status == domain.SnapshotStatusDone {
		snap, err := s.svc.GetSnapshotResult(r.Context(), job.ID)
		if err != nil && !errors.Is(err, application.ErrNotFound) {
			writeServiceError(w, r, err)
			return
		}
		if err == nil {
			resp.Metrics = &snap.Metrics
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) GetLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	symbol, ok := pathSymbol(w, r)
	if !ok {
		return
	}
	snap, err := s.svc.GetLatestSnapshot(r.Context(), symbol)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshotResponse{
		CoinID:        snap.CoinID,
		FetchedAt:     snap.FetchedAt,
		MarketMetrics: snap.Metrics,
	})
}

func pathSymbol(w http.ResponseWriter, r *http.Request) (string, bool) {
	var symbol string
	err := runtime.BindStyledParameterWithLocation("simple", false, "symbol", runtime.ParamLocationPath, chi.URLParam(r, "symbol"), &symbol)
	if err != nil || symbol == "" {
		badRequest(w, "invalid symbol")
		return "", false
	}
	return symbol, true
}

type errorBody struct {
	Code           int    `json:"code"`
	Message        string `json:"message"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		dpe *domain.DateParseError
		he  *domain.HTTPError
	)
	switch {
	case errors.As(err, &dpe):
		writeError(w, http.StatusBadRequest, dpe.Error())
	case errors.Is(err, application.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	case errors.Is(err, application.ErrConflict):
		writeError(w, http.StatusConflict, "duplicate idempotency key")
	case errors.As(err, &he):
		logx.WithFields(r.Context()).Warn("upstream_failed", zap.Int("upstream_status", he.StatusCode), zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorBody{
			Code:           http.StatusBadGateway,
			Message:        "upstream request failed",
			UpstreamStatus: he.StatusCode,
		})
	default:
		logx.WithFields(r.Context()).Error("request_failed", zap.Error(err))
		internalError(w)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Code: status, Message: msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeError(w, http.StatusBadRequest, msg)
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

func mapStatus(s domain.SnapshotStatus) string {
	switch s {
	case domain.SnapshotStatusDone:
		return "completed"
	case domain.SnapshotStatusFailed:
		return "failed"
	default:
		return "pending"
	}
}
