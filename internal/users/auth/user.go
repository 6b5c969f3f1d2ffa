// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements LinguaPhoto accounts: signup, signin, the current-user
lookup and the API keys subscribers use to upload from scripts.

Architecture:

  - Service: Orchestrates business logic (Signup, Signin, API key rotation).
  - Repository: Abstracted user persistence on the document store.
  - Security: bcrypt password hashes, RSA-signed JWTs, sha256-hashed API keys.
*/
package auth

import (
	"time"
)

// # Domain Entities

// User represents a registered LinguaPhoto member.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Explicitly omitted from JSON for security.
	IsSubscription   bool      `json:"is_subscription"`
	APIKeyHash       string    `json:"-"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// Session is the result of a successful signup or signin.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// # Field Identifiers

const (
	FieldUsername         = "username"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldIsSubscription   = "is_subscription"
	FieldAPIKeyHash       = "api_key_hash"
	FieldStripeCustomerID = "stripe_customer_id"
)
