// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/constants"
	"github.com/taibuivan/linguaphoto/internal/platform/dberr"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
)

const resourceUser = "User"

// userDocument is the stored shape of a [User]; unlike the API shape it keeps secrets.
type userDocument struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"password_hash"`
	IsSubscription   bool      `json:"is_subscription"`
	APIKeyHash       string    `json:"api_key_hash,omitempty"`
	StripeCustomerID string    `json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

func toDocument(user *User) userDocument {
	return userDocument{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		PasswordHash:     user.PasswordHash,
		IsSubscription:   user.IsSubscription,
		APIKeyHash:       user.APIKeyHash,
		StripeCustomerID: user.StripeCustomerID,
		CreatedAt:        user.CreatedAt,
	}
}

func (document userDocument) toUser() *User {
	return &User{
		ID:               document.ID,
		Username:         document.Username,
		Email:            document.Email,
		PasswordHash:     document.PasswordHash,
		IsSubscription:   document.IsSubscription,
		APIKeyHash:       document.APIKeyHash,
		StripeCustomerID: document.StripeCustomerID,
		CreatedAt:        document.CreatedAt,
	}
}

// DocstoreUserRepository implements [UserRepository] on the document store.
type DocstoreUserRepository struct {
	store docstore.Store
}

// NewDocstoreUserRepository constructs a new [DocstoreUserRepository].
func NewDocstoreUserRepository(store docstore.Store) *DocstoreUserRepository {
	return &DocstoreUserRepository{store: store}
}

// Create implements [UserRepository]. Email uniqueness is enforced by the store.
func (repository *DocstoreUserRepository) Create(context context.Context, user *User) error {
	err := repository.store.Add(context, constants.KindUser, user.ID, toDocument(user), FieldEmail)
	if errors.Is(err, docstore.ErrDuplicate) {
		return apperr.Conflict("Email is already registered")
	}
	return dberr.Wrap(err, resourceUser)
}

// FindByID implements [UserRepository].
func (repository *DocstoreUserRepository) FindByID(context context.Context, id string) (*User, error) {
	var document userDocument
	if err := repository.store.Get(context, constants.KindUser, id, &document); err != nil {
		return nil, dberr.Wrap(err, resourceUser)
	}
	return document.toUser(), nil
}

// FindByEmail implements [UserRepository].
func (repository *DocstoreUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	return repository.findOne(context, FieldEmail, email)
}

// FindByAPIKeyHash implements [UserRepository].
func (repository *DocstoreUserRepository) FindByAPIKeyHash(context context.Context, hash string) (*User, error) {
	if hash == "" {
		return nil, apperr.NotFound(resourceUser)
	}
	return repository.findOne(context, FieldAPIKeyHash, hash)
}

func (repository *DocstoreUserRepository) findOne(context context.Context, field, value string) (*User, error) {
	var documents []userDocument
	if err := repository.store.Query(context, constants.KindUser, field, value, &documents); err != nil {
		return nil, dberr.Wrap(err, resourceUser)
	}
	if len(documents) == 0 {
		return nil, apperr.NotFound(resourceUser)
	}
	return documents[0].toUser(), nil
}

// SetAPIKeyHash implements [UserRepository].
func (repository *DocstoreUserRepository) SetAPIKeyHash(context context.Context, id, hash string) error {
	err := repository.store.Update(context, constants.KindUser, id, map[string]any{FieldAPIKeyHash: hash})
	return dberr.Wrap(err, resourceUser)
}

// SetSubscription implements [UserRepository].
func (repository *DocstoreUserRepository) SetSubscription(context context.Context, id string, subscribed bool, customerID string) error {
	fields := map[string]any{FieldIsSubscription: subscribed}
	if customerID != "" {
		fields[FieldStripeCustomerID] = customerID
	}

	err := repository.store.Update(context, constants.KindUser, id, fields)
	return dberr.Wrap(err, resourceUser)
}
