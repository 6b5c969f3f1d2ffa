// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package subscription upgrades an account to the paid plan.

The payment processor is reached through the narrow [Provider] contract. A
subscription whose first payment needs a customer confirmation step (3-D
Secure) is returned to the client with the intent's client secret and the
account is left unflagged; every other successful outcome flags the account
immediately.
*/
package subscription

import "context"

// # Contracts & Types

// Customer describes the billing identity sent to the payment processor.
type Customer struct {
	Email           string
	Name            string
	PaymentMethodID string
}

// Checkout is what the payment processor reports after creating a subscription.
type Checkout struct {
	CustomerID     string
	SubscriptionID string

	// RequiresAction is set when the first payment awaits customer confirmation.
	RequiresAction bool
	ClientSecret   string
}

// Provider creates recurring subscriptions with a payment processor.
type Provider interface {
	Subscribe(context context.Context, customer Customer) (*Checkout, error)
}

// Result is returned to the client after a subscription attempt.
type Result struct {
	Success                   bool   `json:"success,omitempty"`
	RequiresAction            bool   `json:"requires_action,omitempty"`
	PaymentIntentClientSecret string `json:"payment_intent_client_secret,omitempty"`
}

// # Field Identifiers

const (
	FieldEmail           = "email"
	FieldName            = "name"
	FieldPaymentMethodID = "payment_method_id"
)
