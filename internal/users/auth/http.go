// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/linguaphoto/internal/platform/middleware"
	requestutil "github.com/taibuivan/linguaphoto/internal/platform/request"
	"github.com/taibuivan/linguaphoto/internal/platform/respond"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup  : Creates a new account.
//   - POST /signin  : Authenticates and returns a JWT.
//   - GET  /me      : Current account.
//   - GET  /api-key : Rotates the subscriber API key.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/signin", handler.signin)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Get("/api-key", handler.generateAPIKey)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type apiKeyResponse struct {
	APIKey string `json:"api_key"`
}

/*
Signup handles the creation of a new user account.

POST /api/v1/auth/signup

Response:
  - 201: Session: Token and created user
  - 400: Validation failure
  - 409: Email already registered
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Signup(request.Context(), SignupInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, session)
}

/*
Signin authenticates a user with email and password.

POST /api/v1/auth/signin

Response:
  - 200: Session: Token and user
  - 401: Invalid credentials
*/
func (handler *Handler) signin(writer http.ResponseWriter, request *http.Request) {
	var input signinRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Signin(request.Context(), SigninInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}

// me returns the authenticated account. GET /api/v1/auth/me
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Me(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
GenerateAPIKey rotates the caller's API key.

GET /api/v1/auth/api-key

Response:
  - 200: {"api_key": "..."} shown once
  - 402: No active subscription
*/
func (handler *Handler) generateAPIKey(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	key, err := handler.authService.GenerateAPIKey(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, apiKeyResponse{APIKey: key})
}
