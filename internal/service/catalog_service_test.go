package service

import (
	"context"
	"errors"
	"testing"

	"github.com/PedroLLOliveira/ecommerce-backend/internal/domain"
	"github.com/PedroLLOliveira/ecommerce-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalogFixture() (*memStore, CatalogService) {
	store := newMemStore()
	return store, NewCatalogService(store, nullBlobStore{}, zap.NewNop())
}

func seedCategory(store *memStore, name string) uuid.UUID {
	category := domain.Category{Record: domain.NewRecord(), Name: name}
	store.categories[category.ID] = category
	return category.ID
}

func seedProduct(store *memStore, name string, price string, stock int) uuid.UUID {
	product := domain.Product{
		Record: domain.NewRecord(),
		Name:   name,
		Price:  decimal.RequireFromString(price),
		Stock:  stock,
	}
	store.products[product.ID] = product
	return product.ID
}

func seedImage(store *memStore, productID uuid.UUID, fileKey, altText string) uuid.UUID {
	image := domain.ProductImage{
		Record:    domain.NewRecord(),
		ProductID: productID,
		FileKey:   fileKey,
		AltText:   altText,
	}
	store.images[image.ID] = image
	return image.ID
}

func TestCreateProduct_DeduplicatesCategoryLinks(t *testing.T) {
	store, svc := newCatalogFixture()
	catA := seedCategory(store, "Eletrônicos")
	catB := seedCategory(store, "Ofertas")

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "Widget",
		Price:       decimal.RequireFromString("79.90"),
		Stock:       3,
		CategoryIDs: []uuid.UUID{catA, catA, catB},
	})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{catA, catB}, store.links[product.ID])
}

func TestCreateProduct_QuantizesPrice(t *testing.T) {
	store, svc := newCatalogFixture()

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("79.905"),
		Stock: 3,
	})
	require.NoError(t, err)

	assert.Equal(t, "79.91", store.products[product.ID].Price.StringFixed(2))
}

func TestCreateProduct_RejectsIDBearingImageOps(t *testing.T) {
	_, svc := newCatalogFixture()
	id := uuid.New()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("79.90"),
		ImageOps: rawOps(
			`{"file_key": "img_0"}`,
			`{"id": "`+id.String()+`", "alt_text": "stray"}`,
		),
		Uploads: Uploads{"img_0": "a.png"},
	})
	require.Error(t, err)

	var opErr *ImageOpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, 1, opErr.Index)
	assert.True(t, errors.Is(err, ErrIDNotAllowedOnCreate))
}

func TestCreateProduct_UnknownCategoriesAbortBeforeAnyWrite(t *testing.T) {
	store, svc := newCatalogFixture()
	known := seedCategory(store, "Eletrônicos")
	ghost := uuid.New()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:        "Widget",
		Price:       decimal.RequireFromString("79.90"),
		CategoryIDs: []uuid.UUID{known, ghost},
	})
	require.Error(t, err)

	var catErr *UnknownCategoriesError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, []uuid.UUID{ghost}, catErr.IDs)
	assert.Empty(t, store.products)
}

func TestCreateProduct_StoresImagesFromUploads(t *testing.T) {
	store, svc := newCatalogFixture()

	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("79.90"),
		ImageOps: rawOps(
			`{"file_key": "img_0", "alt_text": "frente"}`,
			`{"file_key": "img_1"}`,
		),
		Uploads: Uploads{"img_0": "a.png", "img_1": "b.png"},
	})
	require.NoError(t, err)

	images, err := store.Images().ListByProduct(context.Background(), product.ID)
	require.NoError(t, err)
	require.Len(t, images, 2)

	keys := map[string]string{}
	for _, img := range images {
		keys[img.FileKey] = img.AltText
	}
	assert.Equal(t, map[string]string{"a.png": "frente", "b.png": ""}, keys)
}

func TestCreateProduct_MissingUploadLeavesNothingBehind(t *testing.T) {
	store, svc := newCatalogFixture()

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:     "Widget",
		Price:    decimal.RequireFromString("79.90"),
		ImageOps: rawOps(`{"file_key": "img_0"}`, `{"file_key": "img_1"}`),
		Uploads:  Uploads{"img_0": "a.png"},
	})
	require.Error(t, err)

	var opErr *ImageOpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, 1, opErr.Index)
	assert.True(t, errors.Is(err, ErrMissingUploadForKey))

	assert.Empty(t, store.products)
	assert.Empty(t, store.images)
}

func TestUpdateProduct_AppliesImageOpsInOrder(t *testing.T) {
	store, svc := newCatalogFixture()
	productID := seedProduct(store, "Widget", "79.90", 3)
	keepID := seedImage(store, productID, "a.png", "antiga")
	dropID := seedImage(store, productID, "b.png", "")

	_, err := svc.UpdateProduct(context.Background(), productID, UpdateProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("79.90"),
		Stock: 3,
		ImageOps: rawOps(
			`{"id": "`+keepID.String()+`", "alt_text": "nova"}`,
			`{"id": "`+dropID.String()+`", "delete": true}`,
			`{"file_key": "img_0", "alt_text": "extra"}`,
		),
		Uploads: Uploads{"img_0": "c.png"},
	})
	require.NoError(t, err)

	assert.Equal(t, "nova", store.images[keepID].AltText)
	assert.NotContains(t, store.images, dropID)

	images, err := store.Images().ListByProduct(context.Background(), productID)
	require.NoError(t, err)
	assert.Len(t, images, 2)
}

func TestUpdateProduct_ForeignImageRollsBackEverything(t *testing.T) {
	store, svc := newCatalogFixture()
	productID := seedProduct(store, "Widget", "79.90", 3)
	ownedID := seedImage(store, productID, "a.png", "antiga")

	otherProductID := seedProduct(store, "Gadget", "29.95", 5)
	foreignID := seedImage(store, otherProductID, "x.png", "alheia")

	_, err := svc.UpdateProduct(context.Background(), productID, UpdateProductInput{
		Name:  "Widget renomeado",
		Price: decimal.RequireFromString("89.90"),
		Stock: 3,
		ImageOps: rawOps(
			`{"id": "`+ownedID.String()+`", "alt_text": "nova"}`,
			`{"id": "`+foreignID.String()+`", "delete": true}`,
		),
	})
	require.Error(t, err)

	var opErr *ImageOpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, 1, opErr.Index)
	assert.True(t, errors.Is(err, ErrUnknownOrForeignImage))

	// Nothing from the batch sticks, including the earlier valid update.
	assert.Equal(t, "antiga", store.images[ownedID].AltText)
	assert.Equal(t, "Widget", store.products[productID].Name)
	assert.Contains(t, store.images, foreignID)
}

func TestUpdateProduct_CategorySemantics(t *testing.T) {
	store, svc := newCatalogFixture()
	catA := seedCategory(store, "Eletrônicos")
	productID := seedProduct(store, "Widget", "79.90", 3)
	store.links[productID] = []uuid.UUID{catA}

	base := UpdateProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("79.90"),
		Stock: 3,
	}

	// nil means no change requested
	_, err := svc.UpdateProduct(context.Background(), productID, base)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{catA}, store.links[productID])

	// empty slice clears all links
	empty := []uuid.UUID{}
	withClear := base
	withClear.CategoryIDs = &empty
	_, err = svc.UpdateProduct(context.Background(), productID, withClear)
	require.NoError(t, err)
	assert.Empty(t, store.links[productID])
}

func TestUpdateProduct_NotFound(t *testing.T) {
	_, svc := newCatalogFixture()

	_, err := svc.UpdateProduct(context.Background(), uuid.New(), UpdateProductInput{
		Name:  "Widget",
		Price: decimal.RequireFromString("79.90"),
	})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestDeleteProduct_CascadesImagesAndLinks(t *testing.T) {
	store, svc := newCatalogFixture()
	catA := seedCategory(store, "Eletrônicos")
	productID := seedProduct(store, "Widget", "79.90", 3)
	seedImage(store, productID, "a.png", "")
	store.links[productID] = []uuid.UUID{catA}

	require.NoError(t, svc.DeleteProduct(context.Background(), productID))

	assert.Empty(t, store.products)
	assert.Empty(t, store.images)
	assert.Empty(t, store.links)
}

func TestGetProduct_BuildsViewWithImageURLs(t *testing.T) {
	store, svc := newCatalogFixture()
	catA := seedCategory(store, "Eletrônicos")
	productID := seedProduct(store, "Widget", "79.90", 0)
	seedImage(store, productID, "a.png", "frente")
	store.links[productID] = []uuid.UUID{catA}

	view, err := svc.GetProduct(context.Background(), productID)
	require.NoError(t, err)

	assert.False(t, view.IsInStock)
	require.Len(t, view.Categories, 1)
	assert.Equal(t, "Eletrônicos", view.Categories[0].Name)
	require.Len(t, view.Images, 1)
	assert.Equal(t, "/media/product_images/a.png", view.Images[0].ImageURL)
}
