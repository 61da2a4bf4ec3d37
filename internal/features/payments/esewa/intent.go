package esewa

import (
	"fmt"
	"strconv"
	"time"

	"storefront-api/internal/core/config"
)

// formPath is the gateway endpoint the browser form-POSTs the redirect payload to.
const formPath = "/api/epay/main/v2/form"

// transactionPrefix namespaces transaction uuids minted by this shop.
const transactionPrefix = "ESEWA"

// RedirectFields is the field set the browser submits to the hosted payment
// page. Names and formats follow the gateway's wire contract.
type RedirectFields struct {
	Amount                string `json:"amount"`
	TaxAmount             string `json:"tax_amount"`
	TotalAmount           string `json:"total_amount"`
	TransactionUUID       string `json:"transaction_uuid"`
	ProductCode           string `json:"product_code"`
	ProductServiceCharge  string `json:"product_service_charge"`
	ProductDeliveryCharge string `json:"product_delivery_charge"`
	SuccessURL            string `json:"success_url"`
	FailureURL            string `json:"failure_url"`
	SignedFieldNames      string `json:"signed_field_names"`
	Signature             string `json:"signature"`
	MerchantID            string `json:"merchant_id"`
}

// Intent is a signed redirect payload for one order.
type Intent struct {
	// TransactionUUID correlates the gateway transaction with the order.
	TransactionUUID string
	// PaymentURL is where the browser must POST the fields.
	PaymentURL string
	// Fields is the signed form field set.
	Fields RedirectFields
}

// IntentBuilder constructs signed redirect payloads for the hosted payment page.
// It is stateless; persisting the transaction uuid onto the order is the
// caller's responsibility.
type IntentBuilder struct {
	cfg         config.EsewaConfig
	frontendURL string
	now         func() time.Time
}

// NewIntentBuilder creates an IntentBuilder from gateway configuration.
// frontendURL is the SPA origin the gateway redirects back to.
func NewIntentBuilder(cfg config.EsewaConfig, frontendURL string) *IntentBuilder {
	return &IntentBuilder{
		cfg:         cfg,
		frontendURL: frontendURL,
		now:         time.Now,
	}
}

// BuildIntent builds the signed payload for orderID and totalAmount.
// The transaction uuid embeds the order id and a millisecond timestamp, so it
// is unique per order even when creation is retried.
func (b *IntentBuilder) BuildIntent(orderID string, totalAmount float64) (*Intent, error) {
	if orderID == "" {
		return nil, fmt.Errorf("order id is required to build a payment intent")
	}
	if totalAmount <= 0 {
		return nil, fmt.Errorf("total amount must be positive, got %v", totalAmount)
	}

	transactionUUID := fmt.Sprintf("%s_%s_%d", transactionPrefix, orderID, b.now().UnixMilli())
	total := FormatAmount(totalAmount)

	signature := Sign(b.cfg.SecretKey, intentMessage(total, transactionUUID, b.cfg.ProductCode))

	return &Intent{
		TransactionUUID: transactionUUID,
		PaymentURL:      b.cfg.BaseURL + formPath,
		Fields: RedirectFields{
			Amount:                total,
			TaxAmount:             "0",
			TotalAmount:           total,
			TransactionUUID:       transactionUUID,
			ProductCode:           b.cfg.ProductCode,
			ProductServiceCharge:  "0",
			ProductDeliveryCharge: "0",
			SuccessURL:            b.frontendURL + "/shop/esewa-success",
			FailureURL:            fmt.Sprintf("%s/shop/esewa-failure?orderId=%s", b.frontendURL, orderID),
			SignedFieldNames:      "total_amount,transaction_uuid,product_code",
			Signature:             signature,
			MerchantID:            b.cfg.MerchantID,
		},
	}, nil
}

// FormatAmount renders a money value with exactly two fractional digits,
// matching the gateway's expected wire format.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
