package gateway

import (
	"context"
	"errors"

	"coursehub/internal/pkg/config"
	"coursehub/pkg/money"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayGateway Razorpay 订单接口
type RazorpayGateway struct {
	keyID     string
	keySecret string
	client    *razorpay.Client
}

// New builds the Razorpay gateway, or Disabled when credentials are missing.
func New(cfg config.RazorpayConfig) Gateway {
	if !cfg.Enabled() {
		return Disabled{}
	}
	return NewRazorpayGateway(cfg.KeyID, cfg.KeySecret)
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		client:    razorpay.NewClient(keyID, keySecret),
	}
}

func (g *RazorpayGateway) Enabled() bool { return true }
func (g *RazorpayGateway) KeyID() string { return g.keyID }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req CreateOrderRequest) (*RemoteOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	body, err := g.client.Order.Create(map[string]interface{}{
		"amount":   req.Amount.Paise(),
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notesMap(req.Notes),
	}, nil)
	if err != nil {
		return nil, providerError(err)
	}

	id := describe(body["id"])
	if id == "" {
		return nil, &GatewayError{Message: "Razorpay order creation failed", Err: errors.New("response has no order id")}
	}

	out := &RemoteOrder{
		ID:       id,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}
	if v, ok := body["amount"].(float64); ok {
		out.Amount = money.Amount(int64(v))
	}
	if v, ok := body["currency"].(string); ok && v != "" {
		out.Currency = v
	}
	if v, ok := body["receipt"].(string); ok && v != "" {
		out.Receipt = v
	}
	return out, nil
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) (bool, error) {
	return verify(g.keySecret, orderID, paymentID, signature), nil
}
