// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/middleware"
	requestutil "github.com/taibuivan/linguaphoto/internal/platform/request"
	"github.com/taibuivan/linguaphoto/internal/platform/respond"
	"github.com/taibuivan/linguaphoto/internal/platform/validate"
)

const (
	// multipartOverhead leaves room for boundaries and the collection_id field.
	multipartOverhead = 1 << 20

	// multipartMemory is how much of a form is buffered before spilling to disk.
	multipartMemory = 8 << 20
)

// Handler implements the image HTTP endpoints.
type Handler struct {
	service *Service
	apiKeys middleware.APIKeyResolver
}

// NewHandler constructs a new image [Handler]. Routes accept an X-API-Key
// resolved through apiKeys in addition to bearer tokens.
func NewHandler(service *Service, apiKeys middleware.APIKeyResolver) *Handler {
	return &Handler{service: service, apiKeys: apiKeys}
}

// Routes returns a [chi.Router] for the image endpoints.
//
// # Endpoints
//   - GET    /?collection_id= : Images of a visible collection.
//   - GET    /{id}            : One image.
//   - POST   /                : Multipart upload.
//   - DELETE /{id}            : Delete an owned image.
//   - POST   /{id}/translate  : Queue translation.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.APIKey(handler.apiKeys))

	router.Get("/", handler.listImages)
	router.Get("/{id}", handler.getImage)

	router.Group(func(ownerRoute chi.Router) {
		ownerRoute.Use(middleware.RequireAuth)

		ownerRoute.Post("/", handler.uploadImage)
		ownerRoute.Delete("/{id}", handler.deleteImage)
		ownerRoute.Post("/{id}/translate", handler.translateImage)
	})

	return router
}

type translateResponse struct {
	ImageID string `json:"image_id"`
	Status  string `json:"status"`
}

/*
UploadImage receives a photo.

POST /api/v1/images (multipart: file, collection_id)

Response:
  - 201: Image, translation pending
  - 400: Missing field, not an image, dimensions too large
  - 403: Collection owned by someone else
  - 413: File too large
*/
func (handler *Handler) uploadImage(writer http.ResponseWriter, request *http.Request) {
	maxBytes := handler.service.MaxBytes()
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes+multipartOverhead)

	if err := request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(writer, request, apperr.TooLarge("Request body too large"))
			return
		}
		respond.Error(writer, request, apperr.ValidationError("Invalid multipart form"))
		return
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	file, header, err := request.FormFile(FieldFile)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldFile, "This field is required"))
		return
	}
	defer file.Close()

	// One byte past the limit is enough to detect an oversized file.
	body, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		respond.Error(writer, request, apperr.ValidationError("Could not read uploaded file"))
		return
	}

	image, err := handler.service.Upload(request.Context(), requestutil.UserID(request), UploadInput{
		CollectionID: request.FormValue(FieldCollectionID),
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Body:         body,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, image)
}

func (handler *Handler) listImages(writer http.ResponseWriter, request *http.Request) {
	images, err := handler.service.List(request.Context(), requestutil.UserID(request), requestutil.Query(request, FieldCollectionID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, images)
}

func (handler *Handler) getImage(writer http.ResponseWriter, request *http.Request) {
	image, err := handler.service.Get(request.Context(), requestutil.UserID(request), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, image)
}

func (handler *Handler) deleteImage(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.Delete(request.Context(), requestutil.UserID(request), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
TranslateImage queues a translation run.

POST /api/v1/images/{id}/translate

Response:
  - 202: Queued; the result arrives over the notification channel
  - 409: A translation of this image is already running
*/
func (handler *Handler) translateImage(writer http.ResponseWriter, request *http.Request) {
	imageID := requestutil.ID(request, "id")

	if err := handler.service.Translate(request.Context(), requestutil.UserID(request), imageID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, translateResponse{ImageID: imageID, Status: "queued"})
}
