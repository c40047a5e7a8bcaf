package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrImageNotFound = errors.New("product image not found")
)

// ImageRepository defines the interface for product image data access
type ImageRepository interface {
	Create(ctx context.Context, image *domain.ProductImage) error
	Update(ctx context.Context, image *domain.ProductImage) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error)
	// FindByIDForProduct resolves an image only if it belongs to the given
	// product; an image owned by another product is reported as not found.
	FindByIDForProduct(ctx context.Context, id, productID uuid.UUID) (*domain.ProductImage, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error)
}

type imageRepository struct {
	q Querier
}

// NewImageRepository creates a new instance of ImageRepository
func NewImageRepository(q Querier) ImageRepository {
	return &imageRepository{q: q}
}

// Create inserts a new product image into the database using parameterized queries
func (r *imageRepository) Create(ctx context.Context, image *domain.ProductImage) error {
	query := `
		INSERT INTO product_images (id, product_id, file_key, alt_text, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(
		ctx,
		query,
		image.ID,
		image.ProductID,
		image.FileKey,
		image.AltText,
		image.CreatedAt,
		image.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product image: %w", err)
	}

	return nil
}

// Update updates an existing product image's content reference and alt text
func (r *imageRepository) Update(ctx context.Context, image *domain.ProductImage) error {
	query := `
		UPDATE product_images
		SET file_key = $2, alt_text = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, image.ID, image.FileKey, image.AltText, image.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update product image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrImageNotFound
	}

	return nil
}

// Delete removes a product image from the database
func (r *imageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM product_images WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product image: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrImageNotFound
	}

	return nil
}

// FindByID retrieves a product image by ID
func (r *imageRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, file_key, alt_text, created_at, updated_at
		FROM product_images
		WHERE id = $1
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// FindByIDForProduct retrieves a product image by ID scoped to its owner
func (r *imageRepository) FindByIDForProduct(ctx context.Context, id, productID uuid.UUID) (*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, file_key, alt_text, created_at, updated_at
		FROM product_images
		WHERE id = $1 AND product_id = $2
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, id, productID))
}

// ListByProduct retrieves all images attached to a product
func (r *imageRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	query := `
		SELECT id, product_id, file_key, alt_text, created_at, updated_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product images: %w", err)
	}
	defer rows.Close()

	images := []*domain.ProductImage{}
	for rows.Next() {
		image := &domain.ProductImage{}
		err := rows.Scan(
			&image.ID,
			&image.ProductID,
			&image.FileKey,
			&image.AltText,
			&image.CreatedAt,
			&image.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		images = append(images, image)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product images: %w", err)
	}

	return images, nil
}

func (r *imageRepository) scanOne(row *sql.Row) (*domain.ProductImage, error) {
	image := &domain.ProductImage{}
	err := row.Scan(
		&image.ID,
		&image.ProductID,
		&image.FileKey,
		&image.AltText,
		&image.CreatedAt,
		&image.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to find product image: %w", err)
	}

	return image, nil
}
