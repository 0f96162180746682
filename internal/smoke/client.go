package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/okian/quantumcrowd/internal/domain/model"
)

// Client is a minimal typed client for the public API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// PredictResponse is the placeholder answer of POST /api/predict.
type PredictResponse struct {
	model.PredictionRecord
	JobID string `json:"jobId"`
}

// StartupDetail is the answer of GET /api/startups/{id}.
type StartupDetail struct {
	Startup    model.Startup           `json:"startup"`
	Prediction *model.PredictionRecord `json:"prediction"`
}

type predictRequest struct {
	StartupID int              `json:"startupId"`
	Features  model.FeatureSet `json:"features"`
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// Startups lists the catalogue.
func (c *Client) Startups(ctx context.Context) ([]model.Startup, error) {
	var out []model.Startup
	if err := c.getJSON(ctx, "/api/startups", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Startup fetches one startup and its latest prediction.
func (c *Client) Startup(ctx context.Context, id int) (StartupDetail, error) {
	var out StartupDetail
	err := c.getJSON(ctx, "/api/startups/"+strconv.Itoa(id), &out)
	return out, err
}

// Job fetches a job status.
func (c *Client) Job(ctx context.Context, id string) (model.JobStatus, error) {
	var out model.JobStatus
	err := c.getJSON(ctx, "/api/jobs/"+id, &out)
	return out, err
}

// Predict requests a prediction. A 429 answer yields ErrThrottled.
func (c *Client) Predict(ctx context.Context, startupID int, features model.FeatureSet) (PredictResponse, error) {
	body, err := json.Marshal(predictRequest{StartupID: startupID, Features: features})
	if err != nil {
		return PredictResponse{}, err
	}
	resp, err := c.do(ctx, http.MethodPost, "/api/predict", body)
	if err != nil {
		return PredictResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return PredictResponse{}, ErrThrottled
	default:
		return PredictResponse{}, unexpected(resp)
	}

	var out PredictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return PredictResponse{}, fmt.Errorf("%w: decode predict response: %w", ErrUnexpected, err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return unexpected(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUnexpected, path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func unexpected(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%w: %s %s: status %d: %s", ErrUnexpected,
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
}
