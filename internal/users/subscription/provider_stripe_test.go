// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/users/subscription"
)

// fakeStripe answers the two endpoints the provider calls.
func fakeStripe(t *testing.T, intentStatus string, customerStatus int) *subscription.StripeProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/customers", func(writer http.ResponseWriter, request *http.Request) {
		require.NoError(t, request.ParseForm())
		writer.Header().Set("Content-Type", "application/json")

		if customerStatus != http.StatusOK {
			writer.WriteHeader(customerStatus)
			fmt.Fprint(writer, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
			return
		}

		assert.Equal(t, "pm_card", request.PostForm.Get("payment_method"))
		assert.Equal(t, "pm_card", request.PostForm.Get("invoice_settings[default_payment_method]"))
		fmt.Fprint(writer, `{"id":"cus_1","object":"customer"}`)
	})
	mux.HandleFunc("/v1/subscriptions", func(writer http.ResponseWriter, request *http.Request) {
		require.NoError(t, request.ParseForm())
		assert.Equal(t, "cus_1", request.PostForm.Get("customer"))
		assert.Equal(t, "price_test", request.PostForm.Get("items[0][price]"))
		assert.Equal(t, "latest_invoice.payment_intent", request.PostForm.Get("expand[0]"))

		writer.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(writer, `{"id":"sub_1","object":"subscription","latest_invoice":{"id":"in_1","object":"invoice",`+
			`"payment_intent":{"id":"pi_1","object":"payment_intent","status":%q,"client_secret":"pi_1_secret"}}}`, intentStatus)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(server.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})

	return subscription.NewStripeProvider("sk_test_123", "price_test", &stripe.Backends{
		API:     backend,
		Connect: backend,
		Uploads: backend,
	})
}

/*
TestStripeProvider_Subscribe verifies request parameters and intent handling.
*/
func TestStripeProvider_Subscribe(t *testing.T) {
	tests := []struct {
		status         string
		requiresAction bool
	}{
		{"succeeded", false},
		{"requires_action", true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			provider := fakeStripe(t, tt.status, http.StatusOK)

			checkout, err := provider.Subscribe(context.Background(), subscription.Customer{
				Email:           "xiaoming@example.com",
				Name:            "Xiao Ming",
				PaymentMethodID: "pm_card",
			})
			require.NoError(t, err)
			assert.Equal(t, "cus_1", checkout.CustomerID)
			assert.Equal(t, "sub_1", checkout.SubscriptionID)
			assert.Equal(t, tt.requiresAction, checkout.RequiresAction)
			if tt.requiresAction {
				assert.Equal(t, "pi_1_secret", checkout.ClientSecret)
			}
		})
	}
}

/*
TestStripeProvider_CardDeclined maps card errors to a validation failure.
*/
func TestStripeProvider_CardDeclined(t *testing.T) {
	provider := fakeStripe(t, "succeeded", http.StatusPaymentRequired)

	_, err := provider.Subscribe(context.Background(), subscription.Customer{Email: "a@example.com", PaymentMethodID: "pm_bad"})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, "VALIDATION_ERROR"))
	assert.Equal(t, "Your card was declined.", apperr.As(err).Message)
}
