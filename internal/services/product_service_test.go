package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"
	"boutique/pkg/cache"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func editorDoc(texts ...string) models.EditorNode {
	doc := models.EditorNode{Type: "doc"}
	for _, t := range texts {
		doc.Content = append(doc.Content, models.EditorNode{
			Type:    "paragraph",
			Content: []models.EditorNode{{Type: "text", Text: t}},
		})
	}
	return doc
}

func validInput() services.ProductInput {
	return services.ProductInput{
		Title:       "Crème Brûlée Candle",
		Description: editorDoc("Hand poured.", "   "),
		Variants: []models.Variant{
			{Label: "Small", Price: decimal.RequireFromString("12.00"), Stock: 4},
			{Label: "Large", Price: decimal.RequireFromString("20.00"), Stock: 1},
		},
	}
}

func newProductService(repo repositories.ProductRepository) *services.ProductService {
	return services.NewProductService(repo, cache.NewMemory(), time.Minute, "https://cms.test", zap.NewNop())
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	service := newProductService(repo)

	p, err := service.CreateProduct(ctx, validInput())
	require.NoError(t, err)
	assert.Equal(t, "creme-brulee-candle", p.Slug)
	assert.Regexp(t, `^PROD-\d{8}-[0-9A-Z]{5}$`, p.CustomProductID)
	require.Len(t, p.Description, 1)
	assert.Equal(t, "Hand poured.", p.Description[0].Children[0].Text)

	detail, err := service.GetProduct(ctx, p.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, "doc", detail.Description.Type)
	assert.Len(t, detail.Description.Content, 1)

	id, err := service.ResolveDocumentID(ctx, p.CustomProductID)
	require.NoError(t, err)
	assert.Equal(t, p.DocumentID, id)
}

func TestProductService_RejectsZeroVariants(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	service := newProductService(repo)

	in := validInput()
	in.Variants = nil
	_, err := service.CreateProduct(context.Background(), in)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "at least one variant")

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestProductService_UpdateKeepsCode(t *testing.T) {
	ctx := context.Background()
	service := newProductService(repositories.NewMockProductRepository())

	p, err := service.CreateProduct(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Title = "Vanilla Candle"
	in.Slug = "Custom Slug"
	updated, err := service.UpdateProduct(ctx, p.DocumentID, in)
	require.NoError(t, err)
	assert.Equal(t, p.CustomProductID, updated.CustomProductID)
	assert.Equal(t, "custom-slug", updated.Slug)

	in.Variants = []models.Variant{}
	_, err = service.UpdateProduct(ctx, p.DocumentID, in)
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.UpdateProduct(ctx, "missing", validInput())
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProductService_CatalogIsCachedAndInvalidated(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockProductRepository()
	service := newProductService(repo)

	require.NoError(t, repo.Create(ctx, &models.Product{Title: "No variants", Slug: "empty"}))
	_, err := service.CreateProduct(ctx, validInput())
	require.NoError(t, err)

	catalog, err := service.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, 5, catalog[0].Stock)
	assert.True(t, decimal.RequireFromString("12").Equal(catalog[0].Price))

	// Writes behind the service's back are not seen until the cache is invalidated.
	in := validInput()
	in.Title = "Second"
	require.NoError(t, repo.Create(ctx, &models.Product{Title: "Direct", Slug: "direct", Variants: in.Variants}))
	catalog, err = service.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 1)

	_, err = service.CreateProduct(ctx, in)
	require.NoError(t, err)
	catalog, err = service.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, catalog, 3)

	_, err = service.CatalogProduct(ctx, "empty")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestProductService_VariantImages(t *testing.T) {
	ctx := context.Background()
	service := newProductService(repositories.NewMockProductRepository())

	p, err := service.CreateProduct(ctx, validInput())
	require.NoError(t, err)

	_, err = service.AppendVariantImages(ctx, p.DocumentID, 0, models.MediaRef{ID: 1}, models.MediaRef{ID: 2}, models.MediaRef{ID: 3})
	require.NoError(t, err)

	updated, err := service.ReorderVariantImages(ctx, p.DocumentID, 0, []int{3, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, updated.Variants[0].ImageIDs())

	_, err = service.ReorderVariantImages(ctx, p.DocumentID, 0, []int{3, 1})
	assert.ErrorIs(t, err, services.ErrValidation)

	updated, err = service.MoveVariantImage(ctx, p.DocumentID, 0, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, updated.Variants[0].ImageIDs())

	_, err = service.MoveVariantImage(ctx, p.DocumentID, 0, 0, 3)
	assert.ErrorIs(t, err, services.ErrValidation)

	updated, err = service.RemoveVariantImage(ctx, p.DocumentID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, updated.Variants[0].ImageIDs())

	_, err = service.RemoveVariantImage(ctx, p.DocumentID, 0, 99)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = service.AppendVariantImages(ctx, p.DocumentID, 5, models.MediaRef{ID: 4})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestProductService_ConcurrentAppendsAreSerialised(t *testing.T) {
	ctx := context.Background()
	service := newProductService(repositories.NewMockProductRepository())

	p, err := service.CreateProduct(ctx, validInput())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 1; i <= 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.AppendVariantImages(ctx, p.DocumentID, 1, models.MediaRef{ID: i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	detail, err := service.GetProduct(ctx, p.DocumentID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, detail.Variants[1].ImageIDs())
}

func TestProductService_GetAllProducts(t *testing.T) {
	ctx := context.Background()
	service := newProductService(repositories.NewMockProductRepository())

	p, err := service.CreateProduct(ctx, validInput())
	require.NoError(t, err)
	_, err = service.AppendVariantImages(ctx, p.DocumentID, 0, models.MediaRef{ID: 7, URL: "/uploads/a.jpg"})
	require.NoError(t, err)

	list, err := service.GetAllProducts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 5, list[0].Stock)
	assert.Equal(t, "/uploads/a.jpg", list[0].Variants[0].Image)

	require.NoError(t, service.DeleteProduct(ctx, p.DocumentID))
	assert.ErrorIs(t, service.DeleteProduct(ctx, p.DocumentID), services.ErrNotFound)
}
