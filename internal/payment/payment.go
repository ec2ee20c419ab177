// Package payment stubs the top-up payment gateway. The real gateway
// integration is out of scope; this returns a canned checkout session so the
// client-side flow can be exercised end to end.
package payment

import (
	"context"

	"github.com/google/uuid"
)

// Session is what the client needs to start a checkout.
type Session struct {
	SessionID   string
	RedirectURL string
}

type Gateway interface {
	CreateSession(ctx context.Context, userID uuid.UUID, amount int64) (Session, error)
}

// StubGateway fabricates sessions locally without calling any provider.
type StubGateway struct {
	// CheckoutURL is the redirect target embedded in every session.
	CheckoutURL string
}

var _ Gateway = (*StubGateway)(nil)

func NewStubGateway(checkoutURL string) *StubGateway {
	if checkoutURL == "" {
		checkoutURL = "https://payment-gateway.example.com/checkout"
	}

	return &StubGateway{CheckoutURL: checkoutURL}
}

func (g *StubGateway) CreateSession(_ context.Context, _ uuid.UUID, _ int64) (Session, error) {
	return Session{
		SessionID:   uuid.NewString(),
		RedirectURL: g.CheckoutURL,
	}, nil
}
