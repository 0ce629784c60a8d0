// Package gateway adapts the Razorpay orders API and payment signatures.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"coursehub/pkg/money"
)

// ErrGatewayNotConfigured is returned by every call on a gateway without credentials.
var ErrGatewayNotConfigured = errors.New("razorpay gateway not configured")

// GatewayError carries the provider's description of a failed call.
type GatewayError struct {
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	return e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// CreateOrderRequest 创建远端订单参数
type CreateOrderRequest struct {
	Amount   money.Amount
	Currency string
	Receipt  string
	Notes    map[string]string
}

// RemoteOrder 远端订单
type RemoteOrder struct {
	ID       string
	Amount   money.Amount
	Currency string
	Receipt  string
}

type Gateway interface {
	// Enabled reports whether credentials are configured.
	Enabled() bool
	// KeyID is the public key handed to the checkout widget.
	KeyID() string
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*RemoteOrder, error)
	// VerifySignature checks signature against hex(HMAC-SHA256(orderID|paymentID, secret)).
	VerifySignature(orderID, paymentID, signature string) (bool, error)
}

// Sign computes the checkout signature for a remote order and payment.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret, orderID, paymentID, signature string) bool {
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Disabled fails closed without any network I/O.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }
func (Disabled) KeyID() string { return "" }

func (Disabled) CreateOrder(context.Context, CreateOrderRequest) (*RemoteOrder, error) {
	return nil, ErrGatewayNotConfigured
}

func (Disabled) VerifySignature(string, string, string) (bool, error) {
	return false, ErrGatewayNotConfigured
}

// notesMap converts notes for the SDK payload.
func notesMap(notes map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(notes))
	for k, v := range notes {
		out[k] = v
	}
	return out
}

func providerError(err error) *GatewayError {
	msg := err.Error()
	if msg == "" {
		msg = "Razorpay order creation failed"
	}
	return &GatewayError{Message: msg, Err: err}
}

func describe(v interface{}) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
