// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Account Constraints

const (
	// UsernameMinLength and UsernameMaxLength bound display names.
	UsernameMinLength = 2
	UsernameMaxLength = 64

	// PasswordMinLength is the shortest accepted password.
	PasswordMinLength = 8

	// PasswordMaxLength matches the bcrypt input limit.
	PasswordMaxLength = 72

	// apiKeyCacheCapacity bounds the number of resolved API keys kept in memory.
	apiKeyCacheCapacity = 10_000
)
