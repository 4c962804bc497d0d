package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/storefront-api/internal/apperr"
	"github.com/javajoker/storefront-api/internal/models"
	"github.com/javajoker/storefront-api/internal/utils"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newProductService(t *testing.T, f *fixture) *ProductService {
	storage, err := NewStorageService(f.deps.Config)
	require.NoError(t, err)
	return NewProductService(f.deps, storage)
}

func fileHeaders(t *testing.T, name string, content []byte) []*multipart.FileHeader {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("images", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["images"]
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "home-garden", Slugify("Home & Garden"))
	assert.Equal(t, "tv-s-4k", Slugify("  TV's 4K!! "))
}

func TestCreateCategoryRejectsDuplicateSlug(t *testing.T) {
	f := newFixture(t)
	categories := NewCategoryService(f.deps)

	created, err := categories.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Home & Garden"})
	require.NoError(t, err)
	assert.Equal(t, "home-garden", created.Slug)
	assert.True(t, created.IsActive)

	_, err = categories.CreateCategory(context.Background(), &CreateCategoryRequest{Name: "Other", Slug: "Home Garden"})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "category.slug_exists", err.Error())

	hidden := false
	_, err = categories.UpdateCategory(context.Background(), created.ID, &UpdateCategoryRequest{IsActive: &hidden})
	require.NoError(t, err)

	list, err := categories.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateProductRequiresKnownCategory(t *testing.T) {
	f := newFixture(t)
	products := newProductService(t, f)

	_, err := products.CreateProduct(context.Background(), &CreateProductRequest{
		Name:        "Lamp",
		Description: "Desk lamp",
		Price:       19.99,
		CategoryID:  uuid.NewString(),
		Stock:       3,
	})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = products.CreateProduct(context.Background(), &CreateProductRequest{Name: "Lamp"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	lighting := f.category(t, "Lighting")
	product, err := products.CreateProduct(context.Background(), &CreateProductRequest{
		Name:        "Lamp",
		Description: "Desk lamp",
		Price:       19.99,
		CategoryID:  lighting.ID.String(),
		Stock:       3,
		Tags:        []string{"desk"},
	})
	require.NoError(t, err)
	assert.True(t, product.IsActive)
	require.NotNil(t, product.Category)
	assert.Equal(t, "lighting", product.Category.Slug)
}

func TestListProductsFilters(t *testing.T) {
	f := newFixture(t)
	products := newProductService(t, f)
	ctx := context.Background()

	lighting := f.category(t, "Lighting")
	kitchen := f.category(t, "Kitchen")

	seed := []models.Product{
		{Name: "Desk Lamp", Description: "LED", Price: 40, Rating: 4.5, CategoryID: lighting.ID, Stock: 1, IsActive: true},
		{Name: "Floor Lamp", Description: "Tall", Price: 120, Rating: 3.0, CategoryID: lighting.ID, Stock: 1, IsActive: true},
		{Name: "Kettle", Description: "Steel", Price: 30, Rating: 4.8, CategoryID: kitchen.ID, Stock: 1, IsActive: true, Tags: []string{"lamp-free"}},
		{Name: "Hidden Lamp", Description: "Gone", Price: 10, Rating: 5, CategoryID: lighting.ID, Stock: 1},
	}
	for i := range seed {
		require.NoError(t, f.store.Products().Create(ctx, &seed[i]))
	}

	page := utils.PaginationParams{Page: 1, Limit: 20}

	all, total, err := products.ListProducts(ctx, ProductFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	byslug, _, err := products.ListProducts(ctx, ProductFilter{Category: "lighting"}, page)
	require.NoError(t, err)
	assert.Len(t, byslug, 2)

	byID, _, err := products.ListProducts(ctx, ProductFilter{Category: kitchen.ID.String()}, page)
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	unknown, total, err := products.ListProducts(ctx, ProductFilter{Category: "garden"}, page)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, unknown)

	searched, _, err := products.ListProducts(ctx, ProductFilter{Search: "LAMP"}, page)
	require.NoError(t, err)
	assert.Len(t, searched, 3)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.SearchQueryTotal))

	ranged, _, err := products.ListProducts(ctx, ProductFilter{MinPrice: floatPtr(35), MaxPrice: floatPtr(100)}, page)
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, "Desk Lamp", ranged[0].Name)

	rated, _, err := products.ListProducts(ctx, ProductFilter{Rating: floatPtr(4.6)}, page)
	require.NoError(t, err)
	require.Len(t, rated, 1)
	assert.Equal(t, "Kettle", rated[0].Name)

	paged, total, err := products.ListProducts(ctx, ProductFilter{}, utils.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}

func TestGetProductIncrementsViews(t *testing.T) {
	f := newFixture(t)
	products := newProductService(t, f)
	lamp := f.product(t, "Lamp", 10, 1)

	first, err := products.GetProduct(context.Background(), lamp.ID)
	require.NoError(t, err)
	second, err := products.GetProduct(context.Background(), lamp.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ViewCount)
	assert.Equal(t, int64(2), second.ViewCount)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.ProductViewTotal.WithLabelValues("uncategorized")))

	_, err = products.GetProduct(context.Background(), uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteProductIsSoft(t *testing.T) {
	f := newFixture(t)
	products := newProductService(t, f)
	lamp := f.product(t, "Lamp", 10, 1)

	require.NoError(t, products.DeleteProduct(context.Background(), lamp.ID))

	_, err := products.GetProduct(context.Background(), lamp.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	stored, err := f.store.Products().FindByID(context.Background(), lamp.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive)

	err = products.DeleteProduct(context.Background(), uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestUpdateProductAppliesPresentFields(t *testing.T) {
	f := newFixture(t)
	products := newProductService(t, f)
	lamp := f.product(t, "Lamp", 10, 1)

	price := 12.5
	stock := 7
	updated, err := products.UpdateProduct(context.Background(), lamp.ID, &UpdateProductRequest{Price: &price, Stock: &stock})
	require.NoError(t, err)
	assert.Equal(t, "Lamp", updated.Name)
	assert.Equal(t, 12.5, updated.Price)
	assert.Equal(t, 7, updated.Stock)

	negative := -1.0
	_, err = products.UpdateProduct(context.Background(), lamp.ID, &UpdateProductRequest{Price: &negative})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestUploadProductImagesLocally(t *testing.T) {
	f := newFixture(t)
	products := newProductService(t, f)
	lamp := f.product(t, "Lamp", 10, 1)

	updated, err := products.UploadProductImages(context.Background(), lamp.ID, fileHeaders(t, "lamp.png", pngHeader))
	require.NoError(t, err)
	require.Len(t, updated.Images, 1)

	url := updated.Images[0].URL
	assert.True(t, strings.HasPrefix(url, "http://localhost:5000/uploads/products/"), url)
	assert.Equal(t, "Lamp", updated.Images[0].Alt)

	key := strings.TrimPrefix(url, "http://localhost:5000/uploads/")
	written, err := os.ReadFile(filepath.Join(f.deps.Config.Server.UploadDir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, written)
}

func TestUploadProductImagesRejectsNonImages(t *testing.T) {
	f := newFixture(t)
	products := newProductService(t, f)
	lamp := f.product(t, "Lamp", 10, 1)

	_, err := products.UploadProductImages(context.Background(), lamp.ID, fileHeaders(t, "notes.png", []byte("plain text")))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = products.UploadProductImages(context.Background(), lamp.ID, fileHeaders(t, "lamp.bmp", pngHeader))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = products.UploadProductImages(context.Background(), lamp.ID, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
