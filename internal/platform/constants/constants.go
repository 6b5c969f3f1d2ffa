// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and token lifetimes.
  - Translation: Queue names, in-flight markers and upstream models.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "linguaphoto-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	// Uploads are multipart bodies of several megabytes, so this is looser than a JSON API.
	DefaultReadTimeout = 30 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "linguaphoto.app"

	// AccessTokenTTL matches the 24h session the web client expects after signup/signin.
	AccessTokenTTL = 24 * time.Hour

	// APIKeyLength is the byte length of a generated API key before hex encoding.
	APIKeyLength = 32

	// APIKeyCacheTTL bounds how long a resolved API key stays in the local cache.
	APIKeyCacheTTL = 5 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderAPIKey        = "X-API-Key"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Document Kinds

const (
	KindUser       = "user"
	KindCollection = "collection"
	KindImage      = "image"
)

// # Translation

const (
	// TranslationQueueName is the Redis list holding pending translation jobs.
	TranslationQueueName = "linguaphoto:translation:jobs"

	// RedisPrefixInFlight prefixes the per-image in-flight markers.
	RedisPrefixInFlight = "linguaphoto:translation:inflight:"

	// InFlightTTL releases a marker whose worker died without clearing it.
	InFlightTTL = 30 * time.Minute

	// TranscriptionModel is the vision-language model used for photo transcription.
	TranscriptionModel = "gpt-4o"

	// TranscriptionMaxTokens caps the completion length of a transcription.
	TranscriptionMaxTokens = 1024

	// AudioExtension is the file extension used for synthesized clips.
	AudioExtension = "mp3"

	// AudioContentType is the MIME type used when uploading synthesized clips.
	AudioContentType = "audio/mpeg"
)
