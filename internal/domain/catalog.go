package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	Record
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Stock       int             `json:"stock" db:"stock"`
}

// IsInStock reports whether the product has any units available.
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// Category represents a product category
type Category struct {
	Record
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}

// ProductCategory links a product to a category. The (product, category)
// pair is unique.
type ProductCategory struct {
	Record
	ProductID  uuid.UUID `json:"product_id" db:"product_id"`
	CategoryID uuid.UUID `json:"category_id" db:"category_id"`
}

// ProductImage is an image attached to a product. FileKey addresses the
// binary content in the blob store; every image belongs to exactly one
// product for its lifetime.
type ProductImage struct {
	Record
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	FileKey   string    `json:"file_key" db:"file_key"`
	AltText   string    `json:"alt_text" db:"alt_text"`
}
