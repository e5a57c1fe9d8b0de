package billing

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/swiftconvert/server/pkg/utils"
)

// Gateway wraps the Stripe API for the Pro-plan subscription flow.
type Gateway struct {
	webhookSecret string
	priceINR      int64
	priceUSD      float64
	store         *Store
	log           zerolog.Logger
}

// NewGateway configures the Stripe client. secretKey is the Stripe API key;
// prices are monthly plan amounts in major currency units.
func NewGateway(secretKey, webhookSecret string, priceINR int64, priceUSD float64, store *Store, log zerolog.Logger) *Gateway {
	stripe.Key = secretKey
	return &Gateway{
		webhookSecret: webhookSecret,
		priceINR:      priceINR,
		priceUSD:      priceUSD,
		store:         store,
		log:           log,
	}
}

// CheckoutSession is the response of CreateCheckoutSession.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateCheckoutSession opens a Stripe subscription checkout for the Pro
// plan in the given currency ("inr" or anything else, priced in USD).
func (g *Gateway) CreateCheckoutSession(ctx context.Context, currency, baseURL string) (*CheckoutSession, error) {
	currency = strings.ToLower(currency)
	if currency == "" {
		currency = "inr"
	}

	// Stripe amounts are in the smallest currency unit.
	var amount int64
	if currency == "inr" {
		amount = g.priceINR * 100
	} else {
		amount = int64(g.priceUSD * 100)
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String("SwiftConvert Pro Plan"),
					Description: stripe.String("Unlimited conversions, 200MB file size, high quality"),
				},
				Recurring: &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
					Interval: stripe.String("month"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(baseURL + "?success=true"),
		CancelURL:  stripe.String(baseURL + "?canceled=true"),
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, utils.NewError(utils.ErrorTypeNetwork, "failed to create checkout session", err)
	}
	return &CheckoutSession{SessionID: sess.ID, URL: sess.URL}, nil
}

// HandleWebhook verifies the event signature and applies subscription
// updates from completed checkouts to the store.
func (g *Gateway) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return utils.NewValidationError("invalid webhook signature", err)
	}

	if event.Type != "checkout.session.completed" {
		g.log.Debug().Str("type", string(event.Type)).Msg("ignoring webhook event")
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return utils.NewValidationError("malformed webhook payload", err)
	}
	g.log.Info().Str("session", sess.ID).Msg("payment successful")

	email := ""
	if sess.CustomerDetails != nil {
		email = sess.CustomerDetails.Email
	}
	if email == "" || g.store == nil {
		return nil
	}

	sub := Subscription{
		Email:  email,
		Status: "active",
	}
	if sess.Customer != nil {
		sub.StripeCustomerID = sess.Customer.ID
	}
	if sess.Subscription != nil {
		sub.StripeSubscriptionID = sess.Subscription.ID
		sub.CurrentPeriodEnd = sess.Subscription.CurrentPeriodEnd
	}
	return g.store.Upsert(ctx, sub)
}
