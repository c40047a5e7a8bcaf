package service

import (
	"context"
	"fmt"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/domain"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/money"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/repository"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/whatsapp"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutItemInput is one requested cart line.
type CheckoutItemInput struct {
	ProductID uuid.UUID
	Qty       int
}

// CheckoutRequest is a cart to validate. Duplicate product IDs are allowed
// and priced independently.
type CheckoutRequest struct {
	Items        []CheckoutItemInput
	CustomerName string
	Notes        string
}

// CheckoutLine is the per-line outcome. Monetary fields are fixed 2-digit
// strings with a dot separator.
type CheckoutLine struct {
	ProductID    uuid.UUID `json:"product_id"`
	Name         string    `json:"name"`
	RequestedQty int       `json:"requested_qty"`
	AvailableQty int       `json:"available_qty"`
	InStock      bool      `json:"in_stock"`
	UnitPrice    string    `json:"unit_price"`
	Subtotal     string    `json:"subtotal"`
}

// CheckoutResult is the full checkout preview. OK is true only when every
// line is fulfillable; unfulfillable lines stay in Items but contribute
// nothing to TotalValue or the message body.
type CheckoutResult struct {
	OK          bool           `json:"ok"`
	Items       []CheckoutLine `json:"items"`
	TotalValue  string         `json:"total_value"`
	Message     string         `json:"message"`
	WhatsAppURL string         `json:"whatsapp_url"`
}

// CheckoutService validates a cart against current stock and price. It is a
// pure read + compute operation: stock is never reserved or decremented, so
// the preview is safely retryable.
type CheckoutService interface {
	Validate(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

type checkoutService struct {
	store  repository.Store
	phone  string
	logger *zap.Logger
}

// NewCheckoutService creates a new instance of CheckoutService. phone is
// the configured WhatsApp contact number; empty is a valid state and
// yields responses without a deep link.
func NewCheckoutService(store repository.Store, phone string, logger *zap.Logger) CheckoutService {
	return &checkoutService{
		store:  store,
		phone:  phone,
		logger: logger,
	}
}

// Validate prices the cart and renders the order message. If any requested
// product does not exist the whole request fails with ProductsNotFoundError
// and no pricing is computed.
func (s *checkoutService) Validate(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	for _, item := range req.Items {
		if item.Qty < 1 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	ids := distinctIDs(req.Items)

	products, err := s.store.Products().FindPricingByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	productMap := make(map[uuid.UUID]*domain.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	missing := []uuid.UUID{}
	for _, id := range ids {
		if _, ok := productMap[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &ProductsNotFoundError{Missing: missing}
	}

	lines := make([]CheckoutLine, 0, len(req.Items))
	messageItems := []whatsapp.Item{}
	total := decimal.Zero
	ok := true

	for _, item := range req.Items {
		p := productMap[item.ProductID]

		unitPrice := money.Quantize(p.Price)
		subtotal := money.Quantize(unitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
		inStock := p.Stock >= item.Qty

		if !inStock {
			ok = false
		}

		lines = append(lines, CheckoutLine{
			ProductID:    p.ID,
			Name:         p.Name,
			RequestedQty: item.Qty,
			AvailableQty: p.Stock,
			InStock:      inStock,
			UnitPrice:    money.Format(unitPrice),
			Subtotal:     money.Format(subtotal),
		})

		// Only fulfillable lines count toward the total and the message.
		if inStock {
			total = total.Add(subtotal)
			messageItems = append(messageItems, whatsapp.Item{
				Name:      p.Name,
				Qty:       item.Qty,
				UnitPrice: unitPrice,
				Subtotal:  subtotal,
			})
		}
	}

	total = money.Quantize(total)
	message := whatsapp.BuildMessage(req.CustomerName, messageItems, total, req.Notes)

	link := ""
	if s.phone != "" {
		link = whatsapp.BuildLink(s.phone, message)
	}

	s.logger.Debug("Checkout validated",
		zap.Int("lines", len(lines)),
		zap.Bool("ok", ok),
		zap.String("total", money.Format(total)),
	)

	return &CheckoutResult{
		OK:          ok,
		Items:       lines,
		TotalValue:  money.Format(total),
		Message:     message,
		WhatsAppURL: link,
	}, nil
}

// distinctIDs collects product IDs preserving first-seen order.
func distinctIDs(items []CheckoutItemInput) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
