package expand

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// maxErrorBodySize limits the size of error response bodies.
	maxErrorBodySize = 4096
)

// HTTPGateway queries the graph gateway over HTTP.
type HTTPGateway struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPGateway creates an HTTP gateway client.
func NewHTTPGateway(baseURL string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// selectRequest is the wire request for a gateway select call.
type selectRequest struct {
	QueryID string         `json:"query_id"`
	Params  map[string]any `json:"params,omitempty"`
}

// selectResponse is the wire response for a gateway select call.
type selectResponse struct {
	Rows  []Row  `json:"rows"`
	Error string `json:"error,omitempty"`
}

// Select runs a named query against the gateway. Network failures and
// 5xx responses are transient; other failures are terminal.
func (g *HTTPGateway) Select(ctx context.Context, queryID string, params map[string]any) ([]Row, error) {
	jsonBody, err := json.Marshal(selectRequest{QueryID: queryID, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/query", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		err := fmt.Errorf("graph gateway returned %d: %s", resp.StatusCode, string(body))
		if resp.StatusCode >= 500 {
			return nil, NewTransientError(err)
		}
		return nil, err
	}

	var result selectResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("gateway query %s: %s", queryID, result.Error)
	}

	for i := range result.Rows {
		result.Rows[i] = NormalizeRow(result.Rows[i])
	}
	return result.Rows, nil
}
