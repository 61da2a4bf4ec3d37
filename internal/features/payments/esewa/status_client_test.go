package esewa

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

func statusServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *StatusClient) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	cfg := testGatewayConfig()
	cfg.BaseURL = ts.URL
	return ts, NewStatusClient(cfg, 2*time.Second)
}

func TestStatusClient_StatusOf(t *testing.T) {
	_, client := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/epay/transaction/status/", r.URL.Path)
		assert.Equal(t, "EPAYTEST", r.URL.Query().Get("product_code"))
		assert.Equal(t, "100.00", r.URL.Query().Get("total_amount"))
		assert.Equal(t, "ESEWA_abc_1700000000000", r.URL.Query().Get("transaction_uuid"))

		json.NewEncoder(w).Encode(map[string]string{
			"status": "COMPLETE",
			"ref_id": "000AWEO",
		})
	})

	status, err := client.StatusOf(context.Background(), "ESEWA_abc_1700000000000", 100)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, status)
}

func TestStatusClient_Pending(t *testing.T) {
	_, client := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "PENDING"})
	})

	status, err := client.StatusOf(context.Background(), "tx1", 50)
	require.NoError(t, err)
	assert.Equal(t, "PENDING", status)
}

func TestStatusClient_GatewayError(t *testing.T) {
	_, client := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})

	_, err := client.StatusOf(context.Background(), "tx1", 50)
	assert.Error(t, err)
}

func TestStatusClient_EmptyStatus(t *testing.T) {
	_, client := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"ref_id": "000AWEO"})
	})

	_, err := client.StatusOf(context.Background(), "tx1", 50)
	assert.Error(t, err)
}
