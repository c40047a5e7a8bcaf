package service

import (
	"errors"
	"fmt"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	// ErrInvalidOperationShape marks an image operation with fields outside
	// the allowed set, a malformed id, or an impossible field combination.
	ErrInvalidOperationShape = errors.New("invalid image operation shape")

	// ErrUnknownOrForeignImage marks an image id that does not resolve to an
	// image owned by the target product.
	ErrUnknownOrForeignImage = errors.New("image does not belong to this product")

	// ErrMissingUploadForKey marks a file_key with no uploaded payload.
	ErrMissingUploadForKey = errors.New("no uploaded payload for file_key")

	// ErrIDNotAllowedOnCreate marks an id-bearing operation in a product
	// creation payload, where only creates are allowed.
	ErrIDNotAllowedOnCreate = errors.New("image id not allowed on product creation")

	ErrEmptyItems = errors.New("items required")
)

// ImageOpError ties a reconciler failure to the offending operation index
// for client-facing diagnostics.
type ImageOpError struct {
	Index int
	Err   error
}

func (e *ImageOpError) Error() string {
	return fmt.Sprintf("images[%d]: %v", e.Index, e.Err)
}

func (e *ImageOpError) Unwrap() error {
	return e.Err
}

// UnknownCategoriesError reports requested category IDs with no matching
// category.
type UnknownCategoriesError struct {
	IDs []uuid.UUID
}

func (e *UnknownCategoriesError) Error() string {
	return fmt.Sprintf("categories not found: %s", repository.JoinIDs(e.IDs))
}

// ProductsNotFoundError fails a checkout whose cart references missing
// products. No partial pricing is returned alongside it.
type ProductsNotFoundError struct {
	Missing []uuid.UUID
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("products not found: %s", repository.JoinIDs(e.Missing))
}

// InvalidQuantityError marks a cart line with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID uuid.UUID
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}
