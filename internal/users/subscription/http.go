// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package subscription

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/linguaphoto/internal/platform/middleware"
	requestutil "github.com/taibuivan/linguaphoto/internal/platform/request"
	"github.com/taibuivan/linguaphoto/internal/platform/respond"
)

// Handler implements the billing HTTP endpoints.
type Handler struct {
	subscriptionService *Service
}

// NewHandler constructs a new subscription [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{subscriptionService: service}
}

// Routes returns a [chi.Router] for the subscription endpoints.
//
// # Endpoints
//   - POST / : Creates a subscription for the caller.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)
	router.Post("/", handler.subscribe)
	return router
}

type subscribeRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	PaymentMethodID string `json:"payment_method_id"`
}

/*
Subscribe creates a subscription.

POST /api/v1/subscriptions

Response:
  - 200: {"success": true} or {"requires_action": true, "payment_intent_client_secret": "..."}
  - 400: Missing payment method or card rejected
  - 409: Already subscribed
*/
func (handler *Handler) subscribe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input subscribeRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.subscriptionService.Subscribe(request.Context(), userID, SubscribeInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}
