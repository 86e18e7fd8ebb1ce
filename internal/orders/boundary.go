package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/bolajon/bolajon-backend/pkg/errors"
)

const boundaryBodyReadLimit int64 = 4096

// BoundaryResult is the boundary's acknowledgment of an accepted order.
type BoundaryResult struct {
	OrderID string `json:"order_id"`
}

// BoundaryError is a structured rejection from the order boundary. Retryable
// distinguishes transient failures (timeouts, 5xx) from terminal ones.
type BoundaryError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"-"`
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("boundary rejected submission: %s: %s", e.Code, e.Message)
}

// Boundary submits an order request to the external order service.
type Boundary interface {
	Submit(ctx context.Context, payload SubmissionPayload) (*BoundaryResult, error)
}

// HTTPBoundary talks to the order service over HTTP. The idempotency key
// travels in a header so the remote side can dedupe replays.
type HTTPBoundary struct {
	httpClient *http.Client
	baseURL    string
}

// BoundaryOption configures optional boundary behavior.
type BoundaryOption func(*HTTPBoundary)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) BoundaryOption {
	return func(b *HTTPBoundary) {
		if client != nil {
			b.httpClient = client
		}
	}
}

// NewHTTPBoundary builds the boundary client for the given base URL.
func NewHTTPBoundary(baseURL string, opts ...BoundaryOption) (*HTTPBoundary, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("order service url is required")
	}
	b := &HTTPBoundary{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b, nil
}

// Submit posts the payload to the boundary. Transport failures and 5xx
// responses come back retryable; a structured 4xx rejection is terminal.
func (b *HTTPBoundary) Submit(ctx context.Context, payload SubmissionPayload) (*BoundaryResult, error) {
	if b == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order boundary not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal submission payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build submission request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", payload.IdempotencyKey)

	resp, err := b.httpClient.Do(httpReq)
	if err != nil {
		// Timeouts count as failures, never as ambiguous successes.
		return nil, &BoundaryError{Code: "TRANSPORT", Message: err.Error(), Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, boundaryBodyReadLimit))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		var result BoundaryResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, &BoundaryError{Code: "BAD_RESPONSE", Message: err.Error(), Retryable: true}
		}
		if result.OrderID == "" {
			return nil, &BoundaryError{Code: "BAD_RESPONSE", Message: "order id missing from response", Retryable: true}
		}
		return &result, nil
	case resp.StatusCode >= 500:
		return nil, &BoundaryError{
			Code:      fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message:   strings.TrimSpace(string(raw)),
			Retryable: true,
		}
	default:
		boundaryErr := &BoundaryError{
			Code:    fmt.Sprintf("HTTP_%d", resp.StatusCode),
			Message: strings.TrimSpace(string(raw)),
		}
		var structured BoundaryError
		if err := json.Unmarshal(raw, &structured); err == nil && structured.Code != "" {
			boundaryErr.Code = structured.Code
			boundaryErr.Message = structured.Message
		}
		return nil, boundaryErr
	}
}
