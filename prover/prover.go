// Package prover talks to the external verification service that validates
// proofs of lock events on the foreign chain. The prover is an opaque
// oracle: it receives the proof fields unmodified and answers with a single
// boolean.
package prover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// VerifyRequest mirrors the prover's verify_log_entry call. SkipBridgeCall
// instructs the prover to bypass real verification; the ledger sets it when
// running in test or diagnostic mode.
type VerifyRequest struct {
	LogIndex       uint64   `json:"logIndex"`
	LogEntryData   []byte   `json:"logEntryData"`
	ReceiptIndex   uint64   `json:"receiptIndex"`
	ReceiptData    []byte   `json:"receiptData"`
	HeaderData     []byte   `json:"headerData"`
	Path           [][]byte `json:"proof"`
	SkipBridgeCall bool     `json:"skipBridgeCall"`
}

// Client is the external prover boundary.
type Client interface {
	VerifyLogEntry(ctx context.Context, req VerifyRequest) (bool, error)
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// HTTPClient verifies log entries against a prover service over HTTP.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient constructs a client for the prover at the given endpoint.
func NewHTTPClient(endpoint string, timeout time.Duration) (*HTTPClient, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("prover: endpoint required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		endpoint: strings.TrimRight(trimmed, "/"),
		client:   &http.Client{Timeout: timeout},
	}, nil
}

// VerifyLogEntry posts the proof to the prover and decodes the verdict.
func (c *HTTPClient) VerifyLogEntry(ctx context.Context, req VerifyRequest) (bool, error) {
	if c == nil {
		return false, fmt.Errorf("prover: client not initialised")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return false, fmt.Errorf("prover: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/verify", bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("prover: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return false, fmt.Errorf("prover: verify log entry: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("prover: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("prover: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var verdict verifyResponse
	if err := json.Unmarshal(body, &verdict); err != nil {
		return false, fmt.Errorf("prover: decode response: %w", err)
	}
	return verdict.Valid, nil
}

// Static is a fixed-answer client for tests and local runs.
type Static struct {
	Valid bool
	Err   error
}

// VerifyLogEntry returns the configured verdict.
func (s Static) VerifyLogEntry(ctx context.Context, req VerifyRequest) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.Valid, s.Err
}
