package payment

import "context"

// CheckoutSession is the gateway-issued single-use purchase flow tied to
// one analysis token.
type CheckoutSession struct {
	ID          string
	RedirectURL string
}

// Gateway creates checkout sessions and reports their payment status.
// Confirmation is pull-only: callers poll GetSessionStatus on demand.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, token string) (CheckoutSession, error)
	GetSessionStatus(ctx context.Context, sessionID string) (bool, error)
}
