// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "context"

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {

	/*
		Create persists a new user.

		Returns:
		  - error: apperr.Conflict if the email is already registered
	*/
	Create(context context.Context, user *User) error

	/*
		FindByID retrieves a user by primary key.

		Returns:
		  - *User: The account
		  - error: apperr.NotFound if missing
	*/
	FindByID(context context.Context, id string) (*User, error)

	// FindByEmail retrieves a user by normalized email.
	FindByEmail(context context.Context, email string) (*User, error)

	// FindByAPIKeyHash retrieves the owner of an API key.
	FindByAPIKeyHash(context context.Context, hash string) (*User, error)

	// SetAPIKeyHash replaces the stored API key hash.
	SetAPIKeyHash(context context.Context, id, hash string) error

	// SetSubscription flags the account as subscribed and records its billing customer.
	SetSubscription(context context.Context, id string, subscribed bool, customerID string) error
}
