package transport

import (
	"errors"
	"net/http"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/middleware"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutItemRequest is one requested cart line
type CheckoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,min=1"`
}

// CheckoutRequest represents the checkout validation payload
type CheckoutRequest struct {
	Items        []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
	CustomerName string                `json:"customer_name"`
	Notes        string                `json:"notes"`
}

// CheckoutNotFoundResponse is the 400 shape returned when the cart
// references products that do not exist. No pricing is included.
type CheckoutNotFoundResponse struct {
	OK                bool     `json:"ok"`
	Error             string   `json:"error"`
	MissingProductIDs []string `json:"missing_product_ids"`
}

// CheckoutHandler handles HTTP requests for checkout validation
type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers the checkout routes
func (h *CheckoutHandler) RegisterRoutes(r chi.Router) {
	r.Post("/api/v1/checkout/validate", h.Validate)
}

// Validate prices a cart against current stock and returns the preview.
// Stock shortfalls are normal output (in_stock=false), not errors.
func (h *CheckoutHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.CheckoutItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.CheckoutItemInput{ProductID: item.ProductID, Qty: item.Qty}
	}

	result, err := h.checkout.Validate(r.Context(), service.CheckoutRequest{
		Items:        items,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
	})
	if err != nil {
		var notFound *service.ProductsNotFoundError
		if errors.As(err, &notFound) {
			middleware.RespondWithJSON(w, http.StatusBadRequest, CheckoutNotFoundResponse{
				OK:                false,
				Error:             "Produtos não encontrados",
				MissingProductIDs: idStrings(notFound.Missing),
			})
			return
		}

		var badQty *service.InvalidQuantityError
		if errors.Is(err, service.ErrEmptyItems) || errors.As(err, &badQty) {
			middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("Checkout validation failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to validate checkout")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}
