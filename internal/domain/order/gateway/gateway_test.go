package gateway

import (
	"context"
	"errors"
	"testing"

	"coursehub/internal/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSign(t *testing.T) {
	got := Sign("secret", "order_123", "pay_456")
	assert.Equal(t, "18bfc0baafae8f6367711ee362f2201aaa3654274683100e5367bb9a2bd29cbe", got)
	assert.Equal(t, got, Sign("secret", "order_123", "pay_456"))
	assert.NotEqual(t, got, Sign("other", "order_123", "pay_456"))
	assert.NotEqual(t, got, Sign("secret", "order_123", "pay_457"))
}

func TestRazorpayVerifySignature(t *testing.T) {
	g := NewRazorpayGateway("rzp_test_key", "secret")

	ok, err := g.VerifySignature("order_123", "pay_456", Sign("secret", "order_123", "pay_456"))
	require.NoError(t, err)
	assert.True(t, ok)

	cases := []string{
		"",
		"deadbeef",
		Sign("wrong", "order_123", "pay_456"),
		Sign("secret", "order_123|pay_456", ""),
	}
	for _, sig := range cases {
		ok, err := g.VerifySignature("order_123", "pay_456", sig)
		require.NoError(t, err)
		assert.False(t, ok, sig)
	}
}

func TestNew(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		g := New(config.RazorpayConfig{KeyID: "rzp_test_key"})
		assert.False(t, g.Enabled())
		assert.Empty(t, g.KeyID())

		_, err := g.CreateOrder(context.Background(), CreateOrderRequest{Amount: 100})
		assert.True(t, errors.Is(err, ErrGatewayNotConfigured))
		assert.EqualError(t, err, "razorpay gateway not configured")

		_, err = g.VerifySignature("a", "b", "c")
		assert.True(t, errors.Is(err, ErrGatewayNotConfigured))
	})

	t.Run("configured", func(t *testing.T) {
		g := New(config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: "secret"})
		assert.True(t, g.Enabled())
		assert.Equal(t, "rzp_test_key", g.KeyID())
	})
}

func TestCreateOrderCancelledContext(t *testing.T) {
	g := NewRazorpayGateway("rzp_test_key", "secret")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.CreateOrder(ctx, CreateOrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGatewayError(t *testing.T) {
	cause := errors.New("BAD_REQUEST_ERROR")
	err := providerError(cause)
	assert.Equal(t, "BAD_REQUEST_ERROR", err.Error())
	assert.ErrorIs(t, err, cause)

	var gwErr *GatewayError
	assert.True(t, errors.As(error(err), &gwErr))
}
