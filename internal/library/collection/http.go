// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package collection

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/linguaphoto/internal/platform/middleware"
	requestutil "github.com/taibuivan/linguaphoto/internal/platform/request"
	"github.com/taibuivan/linguaphoto/internal/platform/respond"
	"github.com/taibuivan/linguaphoto/pkg/pagination"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] for the collection endpoints.
//
// # Endpoints
//   - GET    /             : Caller's collections.
//   - POST   /             : Create.
//   - GET    /public       : Published collections, paginated.
//   - GET    /{id}         : One collection (owner or published).
//   - PATCH  /{id}         : Edit metadata and image order.
//   - POST   /{id}/publish : Toggle the publish flag.
//   - DELETE /{id}         : Delete with its images.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public
	router.Get("/public", handler.listPublic)
	router.Get("/{id}", handler.getCollection)

	// Owner only
	router.Group(func(ownerRoute chi.Router) {
		ownerRoute.Use(middleware.RequireAuth)

		ownerRoute.Get("/", handler.listMine)
		ownerRoute.Post("/", handler.createCollection)
		ownerRoute.Patch("/{id}", handler.updateCollection)
		ownerRoute.Post("/{id}/publish", handler.publishCollection)
		ownerRoute.Delete("/{id}", handler.deleteCollection)
	})

	return router
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type updateRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	FeaturedImage *string   `json:"featured_image"`
	Images        *[]string `json:"images"`
}

type publishRequest struct {
	PublishFlag bool `json:"publish_flag"`
}

func (handler *Handler) listMine(writer http.ResponseWriter, request *http.Request) {
	collections, err := handler.service.ListMine(request.Context(), requestutil.UserID(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collections)
}

func (handler *Handler) listPublic(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)

	collections, total, err := handler.service.ListPublic(request.Context(), paginationParams)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, collections, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

func (handler *Handler) getCollection(writer http.ResponseWriter, request *http.Request) {
	collection, err := handler.service.Get(request.Context(), requestutil.UserID(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) createCollection(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.Create(request.Context(), requestutil.UserID(request), CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, collection)
}

func (handler *Handler) updateCollection(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.Update(request.Context(), requestutil.UserID(request), requestutil.ID(request, "id"), UpdateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) publishCollection(writer http.ResponseWriter, request *http.Request) {
	var input publishRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	collection, err := handler.service.SetPublish(request.Context(), requestutil.UserID(request), requestutil.ID(request, "id"), input.PublishFlag)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, collection)
}

func (handler *Handler) deleteCollection(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.UserID(request), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
