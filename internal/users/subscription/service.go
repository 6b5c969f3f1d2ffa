// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/validate"
	"github.com/taibuivan/linguaphoto/internal/users/auth"
)

// AccountRepository is the subset of user persistence the billing flow needs.
type AccountRepository interface {
	FindByID(context context.Context, id string) (*auth.User, error)
	SetSubscription(context context.Context, id string, subscribed bool, customerID string) error
}

// Service orchestrates subscription creation.
type Service struct {
	accounts AccountRepository
	provider Provider
	logger   *slog.Logger
}

// NewService constructs a new [Service].
func NewService(accounts AccountRepository, provider Provider, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, provider: provider, logger: logger}
}

// SubscribeInput carries the card details collected by the client.
type SubscribeInput struct {
	Email           string
	Name            string
	PaymentMethodID string
}

/*
Subscribe creates a subscription for the caller and flags the account.

Description: The billing email defaults to the account email. When the first
payment needs confirmation the client secret is returned and the account
stays unflagged until the client retries after confirming.

Returns:
  - *Result: success, or requires_action with the client secret
  - error: Conflict when already subscribed, ValidationError, Upstream
*/
func (service *Service) Subscribe(context context.Context, userID string, input SubscribeInput) (*Result, error) {
	user, err := service.accounts.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	if user.IsSubscription {
		return nil, apperr.Conflict("Account already has an active subscription")
	}

	input.Email = strings.TrimSpace(input.Email)
	if input.Email == "" {
		input.Email = user.Email
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		input.Name = user.Username
	}

	validator := &validate.Validator{}
	validator.Email(FieldEmail, input.Email).
		Required(FieldPaymentMethodID, input.PaymentMethodID)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	checkout, err := service.provider.Subscribe(context, Customer(input))
	if err != nil {
		service.logger.Warn("subscription_provider_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		return nil, err
	}

	if checkout.RequiresAction {
		service.logger.Info("subscription_requires_action",
			slog.String("user_id", userID),
			slog.String("subscription_id", checkout.SubscriptionID),
		)
		return &Result{RequiresAction: true, PaymentIntentClientSecret: checkout.ClientSecret}, nil
	}

	if err := service.accounts.SetSubscription(context, userID, true, checkout.CustomerID); err != nil {
		return nil, err
	}

	service.logger.Info("subscription_activated",
		slog.String("user_id", userID),
		slog.String("subscription_id", checkout.SubscriptionID),
	)

	return &Result{Success: true}, nil
}
