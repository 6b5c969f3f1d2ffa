// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/constants"
	"github.com/taibuivan/linguaphoto/internal/platform/sec"
	"github.com/taibuivan/linguaphoto/internal/platform/validate"
	"github.com/taibuivan/linguaphoto/pkg/uuid"
)

// # Contracts & Types

// TokenProvider defines the contract for generating security tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT string for the given user.
	GenerateAccessToken(userID, username string, timeToLive time.Duration) (string, error)
}

// Service implements account use cases.
type Service struct {
	userRepository UserRepository
	tokenProvider  TokenProvider
	apiKeys        *apiKeyCache
	logger         *slog.Logger
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(userRepo UserRepository, tokenProv TokenProvider, logger *slog.Logger) (*Service, error) {
	cache, err := newAPIKeyCache(apiKeyCacheCapacity, constants.APIKeyCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to create api key cache: %w", err)
	}

	return &Service{
		userRepository: userRepo,
		tokenProvider:  tokenProv,
		apiKeys:        cache,
		logger:         logger,
	}, nil
}

// Close releases the API key cache.
func (service *Service) Close() {
	service.apiKeys.close()
}

// normalizeEmail makes email lookups case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// # Signup & Signin

// SignupInput holds the data required to create an account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

/*
Signup validates, hashes, and persists a brand new user account.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *Session: Access token plus the created account
  - error: ValidationError, Conflict (email in use) or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*Session, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, PasswordMinLength).
		Custom(FieldPassword, len(input.Password) > PasswordMaxLength, fmt.Sprintf("Maximum %d bytes", PasswordMaxLength))

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	// The store owns email uniqueness, so concurrent signups cannot both win.
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.logger.Info("user_signed_up", slog.String("user_id", user.ID))

	return service.session(user)
}

// SigninInput defines credentials for an authentication attempt.
type SigninInput struct {
	Email    string
	Password string
}

/*
Signin validates user credentials and issues an access token.

Returns:
  - *Session: Access token plus the account
  - error: Unauthorized for unknown email or wrong password
*/
func (service *Service) Signin(context context.Context, input SigninInput) (*Session, error) {
	user, err := service.userRepository.FindByEmail(context, normalizeEmail(input.Email))

	// Generic message to prevent account enumeration.
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	return service.session(user)
}

func (service *Service) session(user *User) (*Session, error) {
	token, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, constants.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_failed: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Me returns the account behind an authenticated request.
func (service *Service) Me(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// # API Keys

/*
GenerateAPIKey rotates the caller's API key and returns the new plaintext key.

Description: Only the sha256 hash is stored; the previous key stops working
immediately on this replica and within the cache TTL on others.

Returns:
  - string: The plaintext key, shown exactly once
  - error: PaymentRequired when the account has no subscription
*/
func (service *Service) GenerateAPIKey(context context.Context, userID string) (string, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return "", err
	}

	if !user.IsSubscription {
		return "", apperr.PaymentRequired("An active subscription is required to generate an API key")
	}

	key, err := sec.GenerateSecureToken(constants.APIKeyLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_apikey_failed: %w", err)
	}

	if err := service.userRepository.SetAPIKeyHash(context, userID, sec.HashToken(key)); err != nil {
		return "", err
	}

	if user.APIKeyHash != "" {
		service.apiKeys.forget(user.APIKeyHash)
	}

	service.logger.Info("api_key_rotated", slog.String("user_id", userID))
	return key, nil
}

/*
ResolveAPIKey maps a raw API key to the claims of its owner.

Returns:
  - *sec.AuthClaims: Claims with ViaAPIKey set
  - error: Unauthorized for unknown keys
*/
func (service *Service) ResolveAPIKey(context context.Context, key string) (*sec.AuthClaims, error) {
	hash := sec.HashToken(key)

	if claims, found := service.apiKeys.lookup(hash); found {
		return claims, nil
	}

	user, err := service.userRepository.FindByAPIKeyHash(context, hash)
	if err != nil {
		if apperr.HasCode(err, "NOT_FOUND") {
			return nil, apperr.Unauthorized("Invalid API key")
		}
		return nil, err
	}

	claims := &sec.AuthClaims{UserID: user.ID, Username: user.Username, ViaAPIKey: true}
	service.apiKeys.remember(hash, claims)

	return claims, nil
}
