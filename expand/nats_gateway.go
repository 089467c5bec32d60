package expand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSGateway queries the graph gateway over NATS request/reply.
type NATSGateway struct {
	nc      *nats.Conn
	subject string
	timeout time.Duration
}

// NewNATSGateway creates a NATS gateway client on an existing connection.
func NewNATSGateway(nc *nats.Conn, subject string, timeout time.Duration) *NATSGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NATSGateway{
		nc:      nc,
		subject: subject,
		timeout: timeout,
	}
}

// Select runs a named query over request/reply. Timeouts and missing
// responders are transient; gateway-reported query errors are terminal.
func (g *NATSGateway) Select(ctx context.Context, queryID string, params map[string]any) ([]Row, error) {
	data, err := json.Marshal(selectRequest{QueryID: queryID, Params: params})
	if err != nil {
		return nil, fmt.Errorf("marshal query: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msg, err := g.nc.RequestWithContext(reqCtx, g.subject, data)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, nats.ErrNoResponders) {
			return nil, NewTransientError(fmt.Errorf("gateway request: %w", err))
		}
		return nil, fmt.Errorf("gateway request: %w", err)
	}

	var result selectResponse
	if err := json.Unmarshal(msg.Data, &result); err != nil {
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
