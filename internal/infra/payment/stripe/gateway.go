package stripe

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"

	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
	"github.com/brlegal/clausula-ai/internal/domain/payment"
)

// Gateway creates one-time checkout sessions for analysis tokens and polls
// their payment status on demand. There is no webhook endpoint: release
// confirmation is always pull-only, so status is asked from Stripe directly
// every time a token has not been marked paid yet.
type Gateway struct {
	ProductName string
	UnitAmount  int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

func New(secretKey, successURL, cancelURL string, unitAmount int64, currency string) *Gateway {
	stripe.Key = secretKey
	return &Gateway{
		ProductName: "Análise completa de contrato",
		UnitAmount:  unitAmount,
		Currency:    currency,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
	}
}

// CreateCheckoutSession opens a single-line-item purchase at a fixed price.
// The success/cancel destinations carry the token so the client can resume.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, token string) (payment.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Params: stripe.Params{Context: ctx},
		Mode:   stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(g.Currency),
				UnitAmount: stripe.Int64(g.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(g.ProductName),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(fmt.Sprintf("%s?token=%s", g.SuccessURL, token)),
		CancelURL:  stripe.String(fmt.Sprintf("%s?token=%s", g.CancelURL, token)),
	}

	s, err := session.New(params)
	if err != nil {
		return payment.CheckoutSession{}, domain.Wrap(domain.ErrGateway, "create checkout session", err)
	}
	return payment.CheckoutSession{ID: s.ID, RedirectURL: s.URL}, nil
}

// GetSessionStatus reports whether the session has been paid.
func (g *Gateway) GetSessionStatus(ctx context.Context, sessionID string) (bool, error) {
	s, err := session.Get(sessionID, &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return false, domain.Wrap(domain.ErrGateway, "get checkout session", err)
	}
	return s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid, nil
}
