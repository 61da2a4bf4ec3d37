package esewa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Sign computes base64(HMAC-SHA256(secret, message)).
// The message must be the exact comma-joined key=value canonical form the
// gateway expects; field order is part of the contract.
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// intentMessage is the canonical message signed on the outbound redirect payload.
func intentMessage(totalAmount, transactionUUID, productCode string) string {
	return fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s",
		totalAmount, transactionUUID, productCode)
}

// CallbackPayload carries the form fields of the gateway's server-to-server notification.
type CallbackPayload struct {
	TransactionUUID string `json:"transaction_uuid" form:"transaction_uuid"`
	TransactionCode string `json:"transaction_code" form:"transaction_code"`
	Status          string `json:"status" form:"status"`
	TotalAmount     string `json:"total_amount" form:"total_amount"`
	Signature       string `json:"signature" form:"signature"`
}

// StatusComplete is the gateway's sentinel for a settled transaction.
const StatusComplete = "COMPLETE"

// Complete reports whether the gateway declared the transaction settled.
func (p CallbackPayload) Complete() bool {
	return p.Status == StatusComplete
}

// VerifyCallback recomputes the callback signature over the gateway-declared
// fields and compares it in constant time. The expected value is never exposed.
func VerifyCallback(secret string, p CallbackPayload) bool {
	message := fmt.Sprintf("transaction_code=%s,status=%s,total_amount=%s,transaction_uuid=%s",
		p.TransactionCode, p.Status, p.TotalAmount, p.TransactionUUID)
	expected := Sign(secret, message)
	return hmac.Equal([]byte(expected), []byte(p.Signature))
}
