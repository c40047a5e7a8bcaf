package service

import (
	"context"
	"io"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/domain"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/repository"

	"github.com/google/uuid"
)

// memStore is an in-memory repository.Store. WithinTx runs against a deep
// copy and commits it back only on success, so rollback behavior is
// observable in tests.
type memStore struct {
	products   map[uuid.UUID]domain.Product
	categories map[uuid.UUID]domain.Category
	images     map[uuid.UUID]domain.ProductImage
	links      map[uuid.UUID][]uuid.UUID
}

func newMemStore() *memStore {
	return &memStore{
		products:   make(map[uuid.UUID]domain.Product),
		categories: make(map[uuid.UUID]domain.Category),
		images:     make(map[uuid.UUID]domain.ProductImage),
		links:      make(map[uuid.UUID][]uuid.UUID),
	}
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range m.products {
		c.products[k] = v
	}
	for k, v := range m.categories {
		c.categories[k] = v
	}
	for k, v := range m.images {
		c.images[k] = v
	}
	for k, v := range m.links {
		ids := make([]uuid.UUID, len(v))
		copy(ids, v)
		c.links[k] = ids
	}
	return c
}

func (m *memStore) Products() repository.ProductRepository   { return &memProducts{s: m} }
func (m *memStore) Categories() repository.CategoryRepository { return &memCategories{s: m} }
func (m *memStore) Images() repository.ImageRepository        { return &memImages{s: m} }

func (m *memStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	scratch := m.clone()
	if err := fn(scratch); err != nil {
		return err
	}
	*m = *scratch
	return nil
}

type memProducts struct {
	s *memStore
}

func (r *memProducts) Create(ctx context.Context, product *domain.Product) error {
	r.s.products[product.ID] = *product
	return nil
}

func (r *memProducts) Update(ctx context.Context, product *domain.Product) error {
	if _, ok := r.s.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	r.s.products[product.ID] = *product
	return nil
}

func (r *memProducts) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.s.products, id)
	delete(r.s.links, id)
	for imageID, image := range r.s.images {
		if image.ProductID == id {
			delete(r.s.images, imageID)
		}
	}
	return nil
}

func (r *memProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return &p, nil
}

func (r *memProducts) FindPricingByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			found := p
			out = append(out, &found)
		}
	}
	return out, nil
}

func (r *memProducts) List(ctx context.Context) ([]*domain.Product, error) {
	out := []*domain.Product{}
	for _, p := range r.s.products {
		found := p
		out = append(out, &found)
	}
	return out, nil
}

func (r *memProducts) ReplaceCategories(ctx context.Context, productID uuid.UUID, categoryIDs []uuid.UUID) error {
	// Mirrors ON CONFLICT DO NOTHING: duplicates collapse to one link.
	seen := make(map[uuid.UUID]bool, len(categoryIDs))
	links := []uuid.UUID{}
	for _, id := range categoryIDs {
		if !seen[id] {
			seen[id] = true
			links = append(links, id)
		}
	}
	r.s.links[productID] = links
	return nil
}

func (r *memProducts) ListCategories(ctx context.Context, productID uuid.UUID) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, id := range r.s.links[productID] {
		if c, ok := r.s.categories[id]; ok {
			found := c
			out = append(out, &found)
		}
	}
	return out, nil
}

type memCategories struct {
	s *memStore
}

func (r *memCategories) Create(ctx context.Context, category *domain.Category) error {
	r.s.categories[category.ID] = *category
	return nil
}

func (r *memCategories) List(ctx context.Context) ([]*domain.Category, error) {
	out := []*domain.Category{}
	for _, c := range r.s.categories {
		found := c
		out = append(out, &found)
	}
	return out, nil
}

func (r *memCategories) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *memCategories) MissingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	missing := []uuid.UUID{}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.s.categories[id]; !ok && !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return missing, nil
}

type memImages struct {
	s *memStore
}

func (r *memImages) Create(ctx context.Context, image *domain.ProductImage) error {
	r.s.images[image.ID] = *image
	return nil
}

func (r *memImages) Update(ctx context.Context, image *domain.ProductImage) error {
	if _, ok := r.s.images[image.ID]; !ok {
		return repository.ErrImageNotFound
	}
	r.s.images[image.ID] = *image
	return nil
}

func (r *memImages) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.s.images[id]; !ok {
		return repository.ErrImageNotFound
	}
	delete(r.s.images, id)
	return nil
}

func (r *memImages) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductImage, error) {
	img, ok := r.s.images[id]
	if !ok {
		return nil, repository.ErrImageNotFound
	}
	return &img, nil
}

func (r *memImages) FindByIDForProduct(ctx context.Context, id, productID uuid.UUID) (*domain.ProductImage, error) {
	img, ok := r.s.images[id]
	if !ok || img.ProductID != productID {
		return nil, repository.ErrImageNotFound
	}
	return &img, nil
}

func (r *memImages) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*domain.ProductImage, error) {
	out := []*domain.ProductImage{}
	for _, img := range r.s.images {
		if img.ProductID == productID {
			found := img
			out = append(out, &found)
		}
	}
	return out, nil
}

// nullBlobStore satisfies blob.Store for tests that never touch content.
type nullBlobStore struct{}

func (nullBlobStore) Save(ctx context.Context, r io.Reader, filename string) (string, error) {
	return "", nil
}

func (nullBlobStore) Delete(ctx context.Context, key string) error { return nil }

func (nullBlobStore) URL(key string) string { return "/media/product_images/" + key }
