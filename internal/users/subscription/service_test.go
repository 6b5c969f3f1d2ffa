// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
	"github.com/taibuivan/linguaphoto/internal/users/auth"
	"github.com/taibuivan/linguaphoto/internal/users/subscription"
)

type fakeProvider struct {
	checkout *subscription.Checkout
	err      error
	calls    []subscription.Customer
}

func (provider *fakeProvider) Subscribe(_ context.Context, customer subscription.Customer) (*subscription.Checkout, error) {
	provider.calls = append(provider.calls, customer)
	return provider.checkout, provider.err
}

func setup(t *testing.T, provider subscription.Provider) (*subscription.Service, *auth.DocstoreUserRepository, string) {
	t.Helper()

	repository := auth.NewDocstoreUserRepository(docstore.NewMemoryStore())
	user := &auth.User{
		ID:        "0192f0a0-0000-7000-8000-000000000001",
		Username:  "xiaoming",
		Email:     "xiaoming@example.com",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repository.Create(context.Background(), user))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return subscription.NewService(repository, provider, logger), repository, user.ID
}

/*
TestSubscribe_Activates flags the account and stores the customer id.
*/
func TestSubscribe_Activates(t *testing.T) {
	provider := &fakeProvider{checkout: &subscription.Checkout{CustomerID: "cus_1", SubscriptionID: "sub_1"}}
	service, repository, userID := setup(t, provider)

	result, err := service.Subscribe(context.Background(), userID, subscription.SubscribeInput{PaymentMethodID: "pm_card"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.False(t, result.RequiresAction)

	require.Len(t, provider.calls, 1)
	assert.Equal(t, "xiaoming@example.com", provider.calls[0].Email)
	assert.Equal(t, "xiaoming", provider.calls[0].Name)

	user, err := repository.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, user.IsSubscription)
	assert.Equal(t, "cus_1", user.StripeCustomerID)

	_, err = service.Subscribe(context.Background(), userID, subscription.SubscribeInput{PaymentMethodID: "pm_card"})
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
	assert.Len(t, provider.calls, 1)
}

/*
TestSubscribe_RequiresAction returns the client secret without flagging the account.
*/
func TestSubscribe_RequiresAction(t *testing.T) {
	provider := &fakeProvider{checkout: &subscription.Checkout{
		CustomerID:     "cus_2",
		RequiresAction: true,
		ClientSecret:   "pi_secret",
	}}
	service, repository, userID := setup(t, provider)

	result, err := service.Subscribe(context.Background(), userID, subscription.SubscribeInput{
		Email:           "billing@example.com",
		Name:            "Xiao Ming",
		PaymentMethodID: "pm_3ds",
	})
	require.NoError(t, err)
	assert.True(t, result.RequiresAction)
	assert.Equal(t, "pi_secret", result.PaymentIntentClientSecret)
	assert.Equal(t, "billing@example.com", provider.calls[0].Email)

	user, err := repository.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, user.IsSubscription)
}

/*
TestSubscribe_Failures covers validation and provider errors.
*/
func TestSubscribe_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		input    subscription.SubscribeInput
		code     string
	}{
		{
			name:     "missing_payment_method",
			provider: &fakeProvider{},
			input:    subscription.SubscribeInput{},
			code:     "VALIDATION_ERROR",
		},
		{
			name:     "bad_email",
			provider: &fakeProvider{},
			input:    subscription.SubscribeInput{Email: "nope", PaymentMethodID: "pm"},
			code:     "VALIDATION_ERROR",
		},
		{
			name:     "card_declined",
			provider: &fakeProvider{err: apperr.ValidationError("Your card was declined.")},
			input:    subscription.SubscribeInput{PaymentMethodID: "pm"},
			code:     "VALIDATION_ERROR",
		},
		{
			name:     "provider_down",
			provider: &fakeProvider{err: apperr.Upstream("stripe", errors.New("timeout"))},
			input:    subscription.SubscribeInput{PaymentMethodID: "pm"},
			code:     "UPSTREAM_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repository, userID := setup(t, tt.provider)

			_, err := service.Subscribe(context.Background(), userID, tt.input)
			assert.True(t, apperr.HasCode(err, tt.code), err)

			user, err := repository.FindByID(context.Background(), userID)
			require.NoError(t, err)
			assert.False(t, user.IsSubscription)
		})
	}
}
