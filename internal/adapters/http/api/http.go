// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	service "github.com/okian/quantumcrowd/internal/app"
	"github.com/okian/quantumcrowd/internal/domain/model"
	"github.com/okian/quantumcrowd/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Submit validates the startup, returns a placeholder and schedules scoring.
	Submit(ctx context.Context, startupID int, features model.FeatureSet) (service.Submission, error)

	// Read operations expose the catalogue and the latest predictions.
	Startups(ctx context.Context) ([]model.Startup, error)
	Startup(ctx context.Context, startupID int) (service.StartupDetail, error)
	Job(ctx context.Context, jobID string) (model.JobStatus, error)
	ModelInfo() (service.ModelInfo, error)

	InvestIntent(ctx context.Context, startupID int, investor string, amount float64) (model.InvestIntent, error)
	AttachPublication(ctx context.Context, startupID int, txHash string) (bool, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	rootHandler     *RootHandler
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	startupsHandler *StartupsHandler
	predictHandler  *PredictHandler
	jobsHandler     *JobsHandler
	investHandler   *InvestHandler
	webhookHandler  *WebhookHandler
	modelHandler    *ModelHandler

	limiter *RateLimiter
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	log := cfg.log
	if log == nil {
		log = logger.Get().Named("api")
	}

	s := &Server{
		rootHandler:     NewRootHandler(),
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		startupsHandler: NewStartupsHandler(deps),
		predictHandler:  NewPredictHandler(deps, log),
		jobsHandler:     NewJobsHandler(deps),
		investHandler:   NewInvestHandler(deps),
		webhookHandler:  NewWebhookHandler(deps, log),
		modelHandler:    NewModelHandler(deps),
	}
	if cfg.predictRate > 0 {
		s.limiter = NewRateLimiter(cfg.predictRate, cfg.predictBurst)
		s.limiter.TrustProxyHeaders(cfg.trustProxy)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	predict := s.predictHandler.HandlePredict
	if s.limiter != nil {
		predict = s.limiter.Middleware(predict, "predict")
		go s.limiter.Run(ctx)
	}

	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/startups", MetricsMiddleware(s.startupsHandler.HandleList, "startups"))
	mux.HandleFunc("/api/startups/", MetricsMiddleware(s.startupsHandler.HandleGet, "startup"))
	mux.HandleFunc("/api/predict", MetricsMiddleware(predict, "predict"))
	mux.HandleFunc("/api/jobs/", MetricsMiddleware(s.jobsHandler.HandleGet, "jobs"))
	mux.HandleFunc("/api/invest-intent", MetricsMiddleware(s.investHandler.HandleInvestIntent, "invest_intent"))
	mux.HandleFunc("/api/webhook/prediction-published",
		MetricsMiddleware(s.webhookHandler.HandlePredictionPublished, "webhook_published"))
	mux.HandleFunc("/api/model", MetricsMiddleware(s.modelHandler.HandleModel, "model"))
	mux.HandleFunc("/", MetricsMiddleware(s.rootHandler.HandleRoot, "root"))
}

// predictRequest mirrors the OpenAPI schema for POST /api/predict.
type predictRequest struct {
	StartupID *int              `json:"startupId"`
	Features  *model.FeatureSet `json:"features"`
}

func (p predictRequest) validate() error {
	switch {
	case p.StartupID == nil:
		return errors.New("missing startupId")
	case p.Features == nil:
		return errors.New("missing features")
	}
	return nil
}

// predictResponse is the placeholder record plus the job handle.
type predictResponse struct {
	model.PredictionRecord
	JobID string `json:"jobId"`
}

// investRequest mirrors the OpenAPI schema for POST /api/invest-intent.
type investRequest struct {
	StartupID *int    `json:"startupId"`
	Investor  string  `json:"investor"`
	Amount    float64 `json:"amount"`
}

func (i investRequest) validate() error {
	switch {
	case i.StartupID == nil:
		return errors.New("missing startupId")
	case strings.TrimSpace(i.Investor) == "":
		return errors.New("missing investor")
	case i.Amount < 0:
		return errors.New("amount must not be negative")
	}
	return nil
}

// publishedRequest is a relayer notification for POST /api/webhook/prediction-published.
// Fields are decoded loosely: a notification that does not name an integer
// startupId and a non-empty txHash is acknowledged and ignored.
type publishedRequest struct {
	StartupID  json.RawMessage `json:"startupId"`
	Prediction json.RawMessage `json:"prediction"`
	TxHash     json.RawMessage `json:"txHash"`
}

// target returns the startup and transaction to attach, if both are usable.
func (p publishedRequest) target() (int, string, bool) {
	n, err := strconv.Atoi(string(p.StartupID))
	if err != nil {
		return 0, "", false
	}
	var tx string
	if err := json.Unmarshal(p.TxHash, &tx); err != nil || tx == "" {
		return 0, "", false
	}
	return n, tx, true
}

type statusResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return WrapKind("decode", ErrBadRequest, err)
	}
	return nil
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, model.ErrNotFound)
}
