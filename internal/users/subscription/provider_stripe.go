// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
)

// StripeProvider implements [Provider] with the Stripe API.
type StripeProvider struct {
	api     *client.API
	priceID string
}

/*
NewStripeProvider builds a provider bound to one recurring price.

Parameters:
  - apiKey: Stripe secret key
  - priceID: Price every subscription is created for
  - backends: Optional backend override (nil uses api.stripe.com)
*/
func NewStripeProvider(apiKey, priceID string, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{
		api:     client.New(apiKey, backends),
		priceID: priceID,
	}
}

// Subscribe implements [Provider].
func (provider *StripeProvider) Subscribe(context context.Context, customer Customer) (*Checkout, error) {

	// 1. Customer with the card as default payment method
	customerParams := &stripe.CustomerParams{
		Email:         stripe.String(customer.Email),
		Name:          stripe.String(customer.Name),
		PaymentMethod: stripe.String(customer.PaymentMethodID),
		InvoiceSettings: &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(customer.PaymentMethodID),
		},
	}
	customerParams.Context = context

	created, err := provider.api.Customers.New(customerParams)
	if err != nil {
		return nil, mapStripeError(err)
	}

	// 2. Subscription, expanded down to the first payment intent
	subscriptionParams := &stripe.SubscriptionParams{
		Customer: stripe.String(created.ID),
		Items: []*stripe.SubscriptionItemsParams{
			{Price: stripe.String(provider.priceID)},
		},
	}
	subscriptionParams.Context = context
	subscriptionParams.AddExpand("latest_invoice.payment_intent")

	subscription, err := provider.api.Subscriptions.New(subscriptionParams)
	if err != nil {
		return nil, mapStripeError(err)
	}

	checkout := &Checkout{CustomerID: created.ID, SubscriptionID: subscription.ID}

	if invoice := subscription.LatestInvoice; invoice != nil && invoice.PaymentIntent != nil {
		intent := invoice.PaymentIntent
		if intent.Status == stripe.PaymentIntentStatusRequiresAction {
			checkout.RequiresAction = true
			checkout.ClientSecret = intent.ClientSecret
		}
	}

	return checkout, nil
}

// mapStripeError surfaces card and request errors as 400 and everything else as 502.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Type == stripe.ErrorTypeCard || stripeErr.Type == stripe.ErrorTypeInvalidRequest {
			return apperr.ValidationError(stripeErr.Msg)
		}
		return apperr.Upstream("stripe", fmt.Errorf("%s: %s", stripeErr.Type, stripeErr.Msg))
	}
	return apperr.Upstream("stripe", err)
}
