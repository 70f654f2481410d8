package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"boutique/internal/models"

	"github.com/google/uuid"
)

type mockCategory struct {
	category models.Category
	parent   string
	products []string
}

// MockCategoryRepository is an in-memory implementation of CategoryRepository.
// Products are referenced by document id only, like CMS relations.
type MockCategoryRepository struct {
	categories map[string]*mockCategory
	nextID     int
	mu         sync.RWMutex
}

// NewMockCategoryRepository creates a new instance of MockCategoryRepository.
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[string]*mockCategory),
		nextID:     1,
	}
}

func (r *MockCategoryRepository) view(mc *mockCategory) models.Category {
	c := mc.category
	c.ParentCategory = nil
	if p, ok := r.categories[mc.parent]; ok {
		parent := p.category
		c.ParentCategory = &parent
	}
	c.Products = nil
	for _, id := range mc.products {
		c.Products = append(c.Products, models.Product{DocumentID: id})
	}
	return c
}

// GetAll returns every category sorted by sortOrder.
func (r *MockCategoryRepository) GetAll(_ context.Context) ([]models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Category, 0, len(r.categories))
	for _, mc := range r.categories {
		list = append(list, r.view(mc))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SortOrder == list[j].SortOrder {
			return list[i].ID < list[j].ID
		}
		return list[i].SortOrder < list[j].SortOrder
	})
	return list, nil
}

// GetByDocumentID returns one category.
func (r *MockCategoryRepository) GetByDocumentID(_ context.Context, documentID string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mc, ok := r.categories[documentID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", documentID, ErrNotFound)
	}
	c := r.view(mc)
	return &c, nil
}

func (r *MockCategoryRepository) apply(mc *mockCategory, input models.CategoryInput) {
	mc.category.Name = input.Name
	mc.category.Slug = models.Slugify(input.Name)
	mc.category.Description = input.Description
	if input.SortOrder != nil {
		mc.category.SortOrder = *input.SortOrder
	}
	mc.parent = input.ParentDocumentID
	if input.Products != nil {
		mc.products = append([]string(nil), input.Products...)
	}
}

// Create adds a category.
func (r *MockCategoryRepository) Create(_ context.Context, input models.CategoryInput) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mc := &mockCategory{category: models.Category{ID: r.nextID, DocumentID: uuid.New().String()}}
	r.nextID++
	r.apply(mc, input)
	r.categories[mc.category.DocumentID] = mc
	c := r.view(mc)
	return &c, nil
}

// Update replaces a category's fields.
func (r *MockCategoryRepository) Update(_ context.Context, documentID string, input models.CategoryInput) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mc, ok := r.categories[documentID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", documentID, ErrNotFound)
	}
	r.apply(mc, input)
	c := r.view(mc)
	return &c, nil
}

// UpdateSortOrder sets a category's sortOrder.
func (r *MockCategoryRepository) UpdateSortOrder(_ context.Context, documentID string, sortOrder int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	mc, ok := r.categories[documentID]
	if !ok {
		return fmt.Errorf("category %s: %w", documentID, ErrNotFound)
	}
	mc.category.SortOrder = sortOrder
	return nil
}

// Delete removes a category.
func (r *MockCategoryRepository) Delete(_ context.Context, documentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[documentID]; !ok {
		return fmt.Errorf("category %s: %w", documentID, ErrNotFound)
	}
	delete(r.categories, documentID)
	return nil
}
