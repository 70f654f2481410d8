package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"boutique/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
type MockProductRepository struct {
	products map[string]models.Product
	nextID   int
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		nextID:   1,
	}
}

func cloneProduct(p models.Product) models.Product {
	variants := make([]models.Variant, len(p.Variants))
	for i, v := range p.Variants {
		v.Images = append([]models.MediaRef(nil), v.Images...)
		variants[i] = v
	}
	p.Variants = variants
	p.Description = append([]models.Block(nil), p.Description...)
	return p
}

// GetAll returns all products ordered by id.
func (r *MockProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		list = append(list, cloneProduct(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// GetByDocumentID returns a product by document id.
func (r *MockProductRepository) GetByDocumentID(_ context.Context, documentID string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[documentID]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", documentID, ErrNotFound)
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *MockProductRepository) find(match func(models.Product) bool) (*models.Product, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.products {
		if match(p) {
			p = cloneProduct(p)
			return &p, true
		}
	}
	return nil, false
}

// GetBySlug returns a product by slug.
func (r *MockProductRepository) GetBySlug(_ context.Context, slug string) (*models.Product, error) {
	p, ok := r.find(func(p models.Product) bool { return p.Slug == slug })
	if !ok {
		return nil, fmt.Errorf("product with slug %s: %w", slug, ErrNotFound)
	}
	return p, nil
}

// FindDocumentID resolves a customProductId.
func (r *MockProductRepository) FindDocumentID(_ context.Context, customProductID string) (string, error) {
	p, ok := r.find(func(p models.Product) bool { return p.CustomProductID == customProductID })
	if !ok {
		return "", fmt.Errorf("product with customProductId %s: %w", customProductID, ErrNotFound)
	}
	return p.DocumentID, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.DocumentID == "" {
		product.DocumentID = uuid.New().String()
	}
	if product.ID == 0 {
		product.ID = r.nextID
	}
	if product.ID >= r.nextID {
		r.nextID = product.ID + 1
	}
	r.products[product.DocumentID] = cloneProduct(*product)
	return nil
}

// Update replaces an existing product.
func (r *MockProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.DocumentID]
	if !ok {
		return fmt.Errorf("product %s: %w", product.DocumentID, ErrNotFound)
	}
	p := cloneProduct(*product)
	p.ID = existing.ID
	r.products[product.DocumentID] = p
	return nil
}

// Delete removes a product.
func (r *MockProductRepository) Delete(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[documentID]; !ok {
		return fmt.Errorf("product %s: %w", documentID, ErrNotFound)
	}
	delete(r.products, documentID)
	return nil
}

// RawSnapshot serializes every product.
func (r *MockProductRepository) RawSnapshot(ctx context.Context) ([]byte, error) {
	products, _ := r.GetAll(ctx)
	return json.Marshal(products)
}
