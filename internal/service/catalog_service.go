package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/blob"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/domain"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/money"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductInput carries a product creation payload. All image
// operations must be creates; CategoryIDs may be empty.
type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryIDs []uuid.UUID
	ImageOps    []json.RawMessage
	Uploads     Uploads
}

// UpdateProductInput carries a product update payload. A nil CategoryIDs
// means "no change requested"; an empty slice clears all links.
type UpdateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CategoryIDs *[]uuid.UUID
	ImageOps    []json.RawMessage
	Uploads     Uploads
}

// ImageView is a product image with its resolved public URL.
type ImageView struct {
	*domain.ProductImage
	ImageURL string `json:"image_url"`
}

// ProductView is the read-side projection of a product with its categories
// and images.
type ProductView struct {
	*domain.Product
	IsInStock  bool               `json:"is_in_stock"`
	Categories []*domain.Category `json:"categories"`
	Images     []ImageView        `json:"images"`
}

// CatalogService defines the business logic for managing the product
// catalog, including the image/category reconciliation on writes.
type CatalogService interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error)
	ListProducts(ctx context.Context) ([]*ProductView, error)
	GetImage(ctx context.Context, id uuid.UUID) (*ImageView, error)
}

type catalogService struct {
	store  repository.Store
	blobs  blob.Store
	logger *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(store repository.Store, blobs blob.Store, logger *zap.Logger) CatalogService {
	return &catalogService{
		store:  store,
		blobs:  blobs,
		logger: logger,
	}
}

// CreateProduct creates a product with its category links and images in a
// single transaction. Image operations carrying an id are rejected: a
// creation payload can only reference new content.
func (s *catalogService) CreateProduct(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	ops, err := ParseImageOps(input.ImageOps)
	if err != nil {
		return nil, err
	}

	for i, op := range ops {
		if op.Kind != OpCreate {
			return nil, &ImageOpError{Index: i, Err: ErrIDNotAllowedOnCreate}
		}
	}

	if err := s.checkCategories(ctx, input.CategoryIDs); err != nil {
		return nil, err
	}

	product := &domain.Product{
		Record:      domain.NewRecord(),
		Name:        input.Name,
		Description: input.Description,
		Price:       money.Quantize(input.Price),
		Stock:       input.Stock,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Products().Create(ctx, product); err != nil {
			return err
		}

		if len(input.CategoryIDs) > 0 {
			if err := tx.Products().ReplaceCategories(ctx, product.ID, uniqueIDs(input.CategoryIDs)); err != nil {
				return err
			}
		}

		return s.applyImageOps(ctx, tx, product.ID, ops, input.Uploads)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.Int("images", len(ops)),
	)

	return product, nil
}

// UpdateProduct updates a product's fields, replaces its category link set
// when one is requested, and applies image operations in input order. The
// whole mutation is one transaction: any failure leaves pre-call state.
func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*domain.Product, error) {
	ops, err := ParseImageOps(input.ImageOps)
	if err != nil {
		return nil, err
	}

	if input.CategoryIDs != nil {
		if err := s.checkCategories(ctx, *input.CategoryIDs); err != nil {
			return nil, err
		}
	}

	var product *domain.Product

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		product, err = tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}

		product.Name = input.Name
		product.Description = input.Description
		product.Price = money.Quantize(input.Price)
		product.Stock = input.Stock
		product.Touch()

		if err := tx.Products().Update(ctx, product); err != nil {
			return err
		}

		if input.CategoryIDs != nil {
			if err := tx.Products().ReplaceCategories(ctx, product.ID, uniqueIDs(*input.CategoryIDs)); err != nil {
				return err
			}
		}

		return s.applyImageOps(ctx, tx, product.ID, ops, input.Uploads)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.Int("image_ops", len(ops)),
	)

	return product, nil
}

// applyImageOps executes validated image operations against the target
// product, in input order, inside the caller's transaction.
func (s *catalogService) applyImageOps(ctx context.Context, tx repository.Store, productID uuid.UUID, ops []ImageOp, uploads Uploads) error {
	for i, op := range ops {
		switch op.Kind {
		case OpDelete:
			image, err := tx.Images().FindByIDForProduct(ctx, op.ID, productID)
			if err != nil {
				if err == repository.ErrImageNotFound {
					return &ImageOpError{Index: i, Err: ErrUnknownOrForeignImage}
				}
				return err
			}
			if err := tx.Images().Delete(ctx, image.ID); err != nil {
				return err
			}

		case OpUpdate:
			image, err := tx.Images().FindByIDForProduct(ctx, op.ID, productID)
			if err != nil {
				if err == repository.ErrImageNotFound {
					return &ImageOpError{Index: i, Err: ErrUnknownOrForeignImage}
				}
				return err
			}

			if op.AltText != nil {
				image.AltText = *op.AltText
			}

			if op.FileKey != "" {
				blobKey, ok := uploads.Resolve(op.FileKey)
				if !ok {
					return &ImageOpError{Index: i, Err: ErrMissingUploadForKey}
				}
				image.FileKey = blobKey
			}

			image.Touch()
			if err := tx.Images().Update(ctx, image); err != nil {
				return err
			}

		case OpCreate:
			blobKey, ok := uploads.Resolve(op.FileKey)
			if !ok {
				return &ImageOpError{Index: i, Err: ErrMissingUploadForKey}
			}

			altText := ""
			if op.AltText != nil {
				altText = *op.AltText
			}

			image := &domain.ProductImage{
				Record:    domain.NewRecord(),
				ProductID: productID,
				FileKey:   blobKey,
				AltText:   altText,
			}
			if err := tx.Images().Create(ctx, image); err != nil {
				return err
			}
		}
	}

	return nil
}

// DeleteProduct removes a product; images and category links cascade.
func (s *catalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

// GetProduct retrieves a product with its categories and images
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, product)
}

// ListProducts retrieves all products with their categories and images
func (s *catalogService) ListProducts(ctx context.Context) ([]*ProductView, error) {
	products, err := s.store.Products().List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]*ProductView, 0, len(products))
	for _, product := range products {
		view, err := s.buildView(ctx, product)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

// GetImage retrieves a single image with its resolved URL
func (s *catalogService) GetImage(ctx context.Context, id uuid.UUID) (*ImageView, error) {
	image, err := s.store.Images().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return &ImageView{ProductImage: image, ImageURL: s.blobs.URL(image.FileKey)}, nil
}

func (s *catalogService) buildView(ctx context.Context, product *domain.Product) (*ProductView, error) {
	categories, err := s.store.Products().ListCategories(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	images, err := s.store.Images().ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	views := make([]ImageView, 0, len(images))
	for _, image := range images {
		views = append(views, ImageView{ProductImage: image, ImageURL: s.blobs.URL(image.FileKey)})
	}

	return &ProductView{
		Product:    product,
		IsInStock:  product.IsInStock(),
		Categories: categories,
		Images:     views,
	}, nil
}

// checkCategories rejects category IDs with no matching category before any
// mutation happens.
func (s *catalogService) checkCategories(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	missing, err := s.store.Categories().MissingIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to check categories: %w", err)
	}

	if len(missing) > 0 {
		return &UnknownCategoriesError{IDs: missing}
	}

	return nil
}

// uniqueIDs deduplicates while preserving first-seen order, so a category
// list like [A, A, B] yields exactly the link set {A, B}.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
