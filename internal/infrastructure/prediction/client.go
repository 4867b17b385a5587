// Package prediction is the client for the external fertilizer prediction service.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/domain/soil"
	"github.com/smartfertilizer/backend/internal/infrastructure/config"
	"github.com/smartfertilizer/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxResponseSize caps the predictor response body (1MB)
const maxResponseSize = 1 << 20

// Messages returned to clients
const (
	MsgUnavailable   = "AI model service is currently unavailable"
	MsgUpstreamError = "AI model service returned an error"
)

// Client calls POST {url}/predict
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a prediction client. Outbound calls are traced.
func NewClient(cfg config.AIConfig, logger *zap.Logger, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type predictRequest struct {
	Nitrogen    float64 `json:"nitrogen"`
	Phosphorus  float64 `json:"phosphorus"`
	Potassium   float64 `json:"potassium"`
	PH          float64 `json:"ph"`
	Moisture    float64 `json:"moisture"`
	Temperature float64 `json:"temperature"`
	CropType    string  `json:"crop_type"`
}

type errorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Predict implements fertilizer.Predictor
func (c *Client) Predict(ctx context.Context, m soil.Measurements) (*fertilizer.Prediction, error) {
	body, err := json.Marshal(predictRequest{
		Nitrogen:    m.Nitrogen,
		Phosphorus:  m.Phosphorus,
		Potassium:   m.Potassium,
		PH:          m.PH,
		Moisture:    m.Moisture,
		Temperature: m.Temperature,
		CropType:    m.CropType.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isUnavailable(err) {
			return nil, shared.Wrap(err, shared.CodeServiceUnavailable, MsgUnavailable)
		}
		return nil, shared.Wrap(err, shared.CodeInternal, MsgUpstreamError)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, shared.Wrap(err, shared.CodeServiceUnavailable, MsgUnavailable)
	}

	logger.WithLogger(ctx, c.logger).Debug("Prediction service responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, upstreamError(resp.StatusCode, data)
	}

	p, err := normalize(data, m)
	if err != nil {
		return nil, &shared.DomainError{
			Code:    shared.CodeUpstream,
			Message: "AI model service returned an invalid response",
			Cause:   err,
		}
	}
	return p, nil
}

// Ping checks GET {url}/health
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("prediction service health returned %d", resp.StatusCode)
	}
	return nil
}

func upstreamError(status int, body []byte) error {
	msg := MsgUpstreamError
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if status == http.StatusServiceUnavailable {
		return &shared.DomainError{Code: shared.CodeServiceUnavailable, Message: msg, Status: status}
	}
	return shared.NewUpstreamError(status, msg)
}

// isUnavailable reports connection refused, timeouts and DNS failures
func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

var _ fertilizer.Predictor = (*Client)(nil)
