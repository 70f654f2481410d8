package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/pkg/cache"

	"go.uber.org/zap"
)

const catalogCacheKey = "catalog:products"

// ProductInput is the admin editor payload.
type ProductInput struct {
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	Description models.EditorNode `json:"description"`
	Variants    []models.Variant  `json:"variants"`
}

// ProductDetail is a product with its description in editor form.
type ProductDetail struct {
	*models.Product
	Description models.EditorNode `json:"description"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo         repositories.ProductRepository
	cache        cache.Cache
	cacheTTL     time.Duration
	mediaBaseURL string
	logger       *zap.Logger
	now          func() time.Time

	// locks serialises read-modify-write cycles per product document.
	locks sync.Map
}

// NewProductService creates a new ProductService. The catalog is cached in c
// for ttl; a nil c disables caching.
func NewProductService(repo repositories.ProductRepository, c cache.Cache, ttl time.Duration, mediaBaseURL string, logger *zap.Logger) *ProductService {
	return &ProductService{
		repo:         repo,
		cache:        c,
		cacheTTL:     ttl,
		mediaBaseURL: mediaBaseURL,
		logger:       logger.Named("products"),
		now:          time.Now,
	}
}

// Catalog returns every sellable product in storefront form.
func (s *ProductService) Catalog(ctx context.Context) ([]models.CatalogProduct, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, catalogCacheKey); err == nil {
			var cached []models.CatalogProduct
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, cache.ErrMiss) {
			s.logger.Warn("Catalog cache read failed", zap.Error(err))
		}
	}

	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	catalog := make([]models.CatalogProduct, 0, len(products))
	for _, p := range products {
		if cp, ok := models.NewCatalogProduct(p, s.mediaBaseURL); ok {
			catalog = append(catalog, cp)
		}
	}

	if s.cache != nil {
		if raw, err := json.Marshal(catalog); err == nil {
			if err := s.cache.Set(ctx, catalogCacheKey, raw, s.cacheTTL); err != nil {
				s.logger.Warn("Catalog cache write failed", zap.Error(err))
			}
		}
	}
	return catalog, nil
}

// CatalogProduct returns one sellable product by slug.
func (s *ProductService) CatalogProduct(ctx context.Context, slug string) (*models.CatalogProduct, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	cp, ok := models.NewCatalogProduct(*p, s.mediaBaseURL)
	if !ok {
		return nil, fmt.Errorf("product %s has no variants: %w", slug, ErrNotFound)
	}
	return &cp, nil
}

func (s *ProductService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, catalogCacheKey); err != nil {
		s.logger.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}

// GetAllProducts lists products for the admin table.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.ProductSummary, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ProductSummary, len(products))
	for i, p := range products {
		out[i] = models.NewProductSummary(p)
	}
	return out, nil
}

// GetProduct retrieves a product for editing.
func (s *ProductService) GetProduct(ctx context.Context, documentID string) (*ProductDetail, error) {
	p, err := s.repo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: p, Description: models.DocFromBlocks(p.Description)}, nil
}

// ResolveDocumentID turns a customProductId into a document id.
func (s *ProductService) ResolveDocumentID(ctx context.Context, customProductID string) (string, error) {
	return s.repo.FindDocumentID(ctx, customProductID)
}

func (in ProductInput) apply(p *models.Product) error {
	p.Title = strings.TrimSpace(in.Title)
	p.Slug = models.Slugify(in.Slug)
	if p.Slug == "" {
		p.Slug = models.Slugify(p.Title)
	}
	p.Description = models.BlocksFromDoc(in.Description)
	p.Variants = in.Variants
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// CreateProduct validates the input and creates a product with a fresh code.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	p := &models.Product{CustomProductID: models.NewProductCode(s.now())}
	if err := in.apply(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info("Product created", zap.String("document_id", p.DocumentID), zap.String("code", p.CustomProductID))
	return p, nil
}

// UpdateProduct replaces the editable fields of a product. Its code is kept.
func (s *ProductService) UpdateProduct(ctx context.Context, documentID string, in ProductInput) (*models.Product, error) {
	return s.withProduct(ctx, documentID, func(p *models.Product) error {
		return in.apply(p)
	})
}

// DeleteProduct deletes a product.
func (s *ProductService) DeleteProduct(ctx context.Context, documentID string) error {
	unlock := s.lock(documentID)
	defer unlock()

	if err := s.repo.Delete(ctx, documentID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ReorderVariantImages sets the gallery order of a variant.
func (s *ProductService) ReorderVariantImages(ctx context.Context, documentID string, index int, ids []int) (*models.Product, error) {
	return s.withVariant(ctx, documentID, index, func(v *models.Variant) error {
		if err := v.ReorderImages(ids); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil
	})
}

// MoveVariantImage moves the image at position from to position to in a
// variant's gallery, as done by drag and drop in the editor.
func (s *ProductService) MoveVariantImage(ctx context.Context, documentID string, index, from, to int) (*models.Product, error) {
	return s.withVariant(ctx, documentID, index, func(v *models.Variant) error {
		if err := v.MoveImage(from, to); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil
	})
}

// AppendVariantImages adds media to the end of a variant's gallery.
func (s *ProductService) AppendVariantImages(ctx context.Context, documentID string, index int, refs ...models.MediaRef) (*models.Product, error) {
	return s.withVariant(ctx, documentID, index, func(v *models.Variant) error {
		for _, ref := range refs {
			v.AppendImage(ref)
		}
		return nil
	})
}

// RemoveVariantImage takes a media file out of a variant's gallery. The file
// itself stays in the media library.
func (s *ProductService) RemoveVariantImage(ctx context.Context, documentID string, index, mediaID int) (*models.Product, error) {
	return s.withVariant(ctx, documentID, index, func(v *models.Variant) error {
		if !v.RemoveImage(mediaID) {
			return fmt.Errorf("image %d: %w", mediaID, ErrNotFound)
		}
		return nil
	})
}

func (s *ProductService) withVariant(ctx context.Context, documentID string, index int, fn func(*models.Variant) error) (*models.Product, error) {
	return s.withProduct(ctx, documentID, func(p *models.Product) error {
		v, err := p.Variant(index)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return fn(v)
	})
}

// withProduct loads, edits and saves a product while holding its lock.
func (s *ProductService) withProduct(ctx context.Context, documentID string, fn func(*models.Product) error) (*models.Product, error) {
	unlock := s.lock(documentID)
	defer unlock()

	p, err := s.repo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return p, nil
}

func (s *ProductService) lock(documentID string) func() {
	m, _ := s.locks.LoadOrStore(documentID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
