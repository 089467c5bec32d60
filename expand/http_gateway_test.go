package expand

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPGatewaySelect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req selectRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, QueryExpandBySection, req.QueryID)
		assert.Equal(t, "EAR-736.2", req.Params["start_section_id"])

		json.NewEncoder(w).Encode(selectResponse{Rows: []Row{
			{"source": "s", "predicate": "p", "target": "t", "confidence": map[string]any{"value": 0.9}},
		}})
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	rows, err := gw.Select(context.Background(), QueryExpandBySection, map[string]any{
		"start_section_id": "EAR-736.2",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	// Wrapped values are unwrapped at the boundary.
	assert.Equal(t, 0.9, rows[0]["confidence"])
}

func TestHTTPGatewayServerErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	_, err := gw.Select(context.Background(), QueryExpandBySection, nil)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestHTTPGatewayClientErrorIsTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unknown query id", http.StatusBadRequest)
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	_, err := gw.Select(context.Background(), QueryExpandBySection, nil)
	require.Error(t, err)
	assert.False(t, IsTransient(err))
}

func TestHTTPGatewayNetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	gw := NewHTTPGateway(server.URL, time.Second)
	_, err := gw.Select(context.Background(), QueryExpandBySection, nil)
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestHTTPGatewayQueryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(selectResponse{Error: "no such query"})
	}))
	defer server.Close()

	gw := NewHTTPGateway(server.URL, 5*time.Second)
	_, err := gw.Select(context.Background(), QueryExpandBySection, nil)
	require.Error(t, err)
	assert.False(t, IsTransient(err))
	assert.Contains(t, err.Error(), "no such query")
}
