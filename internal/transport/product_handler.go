package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/blob"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/middleware"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/repository"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxUploadMemory = 32 << 20 // 32 MB

// ProductRequest represents a product write payload. CategoryIDs is a
// pointer so "no change requested" and "clear all" stay distinguishable on
// update. Images carries raw declarative operations validated by the
// service.
type ProductRequest struct {
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description"`
	Price       decimal.Decimal   `json:"price"`
	Stock       int               `json:"stock" validate:"gte=0"`
	CategoryIDs *[]uuid.UUID      `json:"category_ids"`
	Images      []json.RawMessage `json:"images"`
}

// ProductHandler handles HTTP requests for catalog products
type ProductHandler struct {
	catalog service.CatalogService
	blobs   blob.Store
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, blobs blob.Store, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		blobs:   blobs,
		logger:  logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})

	r.Get("/api/v1/product-images/{id}", h.GetImage)
}

// Create handles product creation (JSON or multipart)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, uploads, err := h.parseRequest(r)
	if err != nil {
		h.respondRequestError(w, err)
		return
	}

	categoryIDs := []uuid.UUID{}
	if req.CategoryIDs != nil {
		categoryIDs = *req.CategoryIDs
	}

	product, err := h.catalog.CreateProduct(r.Context(), service.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryIDs: categoryIDs,
		ImageOps:    req.Images,
		Uploads:     uploads,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	view, err := h.catalog.GetProduct(r.Context(), product.ID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

// Update handles product updates including image/category reconciliation
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	req, uploads, err := h.parseRequest(r)
	if err != nil {
		h.respondRequestError(w, err)
		return
	}

	_, err = h.catalog.UpdateProduct(r.Context(), id, service.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		CategoryIDs: req.CategoryIDs,
		ImageOps:    req.Images,
		Uploads:     uploads,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	view, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// Get handles single product reads
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	view, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// List handles product listing
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, views)
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetImage handles direct image metadata reads
func (h *ProductHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	view, err := h.catalog.GetImage(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// parseRequest decodes a product payload from JSON or multipart form data.
// Multipart files are staged into the blob store keyed by their form field
// name, so image operations can resolve them by file_key.
func (h *ProductHandler) parseRequest(r *http.Request) (*ProductRequest, service.Uploads, error) {
	var req ProductRequest
	uploads := service.Uploads{}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return nil, nil, errBadRequest("invalid multipart form")
		}

		req.Name = r.FormValue("name")
		req.Description = r.FormValue("description")

		if raw := r.FormValue("price"); raw != "" {
			price, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, nil, errBadRequest("price must be a decimal number")
			}
			req.Price = price
		}

		if raw := r.FormValue("stock"); raw != "" {
			stock, err := strconv.Atoi(raw)
			if err != nil {
				return nil, nil, errBadRequest("stock must be an integer")
			}
			req.Stock = stock
		}

		if raw := r.FormValue("category_ids"); raw != "" {
			var ids []uuid.UUID
			if err := json.Unmarshal([]byte(raw), &ids); err != nil {
				return nil, nil, errBadRequest("category_ids must be a JSON array of UUIDs")
			}
			req.CategoryIDs = &ids
		}

		if raw := r.FormValue("images"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Images); err != nil {
				return nil, nil, errBadRequest("images must be a JSON array")
			}
		}

		for fileKey, headers := range r.MultipartForm.File {
			if len(headers) == 0 {
				continue
			}
			f, err := headers[0].Open()
			if err != nil {
				return nil, nil, errBadRequest("unable to read uploaded file")
			}

			blobKey, err := h.blobs.Save(r.Context(), f, headers[0].Filename)
			f.Close()
			if err != nil {
				return nil, nil, err
			}
			uploads[fileKey] = blobKey
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, errBadRequest("invalid request body")
		}
	}

	if err := middleware.ValidateRequest(&req); err != nil {
		return nil, nil, err
	}

	if req.Price.IsNegative() {
		return nil, nil, errBadRequest("price must not be negative")
	}

	return &req, uploads, nil
}

type badRequestError string

func errBadRequest(msg string) error { return badRequestError(msg) }

func (e badRequestError) Error() string { return string(e) }

func (h *ProductHandler) respondRequestError(w http.ResponseWriter, err error) {
	if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
		middleware.RespondWithValidationErrors(w, validationErrors)
		return
	}

	var bad badRequestError
	if errors.As(err, &bad) {
		middleware.RespondWithError(w, http.StatusBadRequest, bad.Error())
		return
	}

	h.logger.Error("Failed to parse product request", zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, "failed to process request")
}

func (h *ProductHandler) respondServiceError(w http.ResponseWriter, err error) {
	var opErr *service.ImageOpError
	if errors.As(err, &opErr) {
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, opErr.Error(), map[string]interface{}{
			"operation_index": opErr.Index,
		})
		return
	}

	var unknownCats *service.UnknownCategoriesError
	if errors.As(err, &unknownCats) {
		middleware.RespondWithErrorDetails(w, http.StatusBadRequest, "categories not found", map[string]interface{}{
			"missing_category_ids": idStrings(unknownCats.IDs),
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, repository.ErrImageNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, "product image not found")
	default:
		h.logger.Error("Catalog operation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
