package esewa

import (
	"context"
	"fmt"
	"time"

	"storefront-api/internal/core/config"
	"storefront-api/internal/core/httpclient"

	"github.com/go-resty/resty/v2"
)

// statusPath is the gateway's transaction status lookup endpoint.
const statusPath = "/api/epay/transaction/status/"

// StatusClient queries the gateway for the settled state of a transaction.
// It lets the capture path verify a client-reported payment against the
// gateway itself instead of trusting the browser.
type StatusClient struct {
	http *resty.Client
	cfg  config.EsewaConfig
}

// NewStatusClient creates a StatusClient against the configured gateway.
func NewStatusClient(cfg config.EsewaConfig, timeout time.Duration) *StatusClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetTransport(httpclient.NewTransport())

	return &StatusClient{
		http: client,
		cfg:  cfg,
	}
}

// statusResponse mirrors the gateway's status lookup body.
type statusResponse struct {
	Status string `json:"status"`
	RefID  string `json:"ref_id"`
}

// StatusOf returns the gateway-declared status (e.g., COMPLETE, PENDING,
// CANCELED) for the given transaction uuid and amount.
func (c *StatusClient) StatusOf(ctx context.Context, transactionUUID string, totalAmount float64) (string, error) {
	var out statusResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"product_code":     c.cfg.ProductCode,
			"total_amount":     FormatAmount(totalAmount),
			"transaction_uuid": transactionUUID,
		}).
		SetResult(&out).
		Get(statusPath)
	if err != nil {
		return "", fmt.Errorf("gateway status lookup failed: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("gateway status lookup returned %d: %s", resp.StatusCode(), resp.String())
	}

	if out.Status == "" {
		return "", fmt.Errorf("gateway status lookup returned no status")
	}

	return out.Status, nil
}
