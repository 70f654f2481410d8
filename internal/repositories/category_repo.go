package repositories

import (
	"context"
	"fmt"
	"net/url"

	"boutique/internal/cms"
	"boutique/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	GetByDocumentID(ctx context.Context, documentID string) (*models.Category, error)
	Create(ctx context.Context, input models.CategoryInput) (*models.Category, error)
	Update(ctx context.Context, documentID string, input models.CategoryInput) (*models.Category, error)
	UpdateSortOrder(ctx context.Context, documentID string, sortOrder int) error
	// Delete removes the category only; products linked to it are untouched.
	Delete(ctx context.Context, documentID string) error
}

// CMSCategoryRepository stores categories in the CMS.
type CMSCategoryRepository struct {
	client *cms.Client
}

// NewCMSCategoryRepository creates a new instance of CMSCategoryRepository.
func NewCMSCategoryRepository(client *cms.Client) *CMSCategoryRepository {
	return &CMSCategoryRepository{client: client}
}

func categoryQuery() url.Values {
	q := url.Values{}
	q.Set("populate[parentCategory]", "true")
	q.Set("populate[products][fields][0]", "title")
	q.Set("populate[products][fields][1]", "slug")
	q.Set("sort", "sortOrder:asc")
	return q
}

func categoryPath(documentID string) string {
	return "/categories/" + url.PathEscape(documentID)
}

// GetAll retrieves every category with its parent.
func (r *CMSCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	categories, err := cms.List[models.Category](ctx, r.client, "/categories", categoryQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

// GetByDocumentID retrieves one category.
func (r *CMSCategoryRepository) GetByDocumentID(ctx context.Context, documentID string) (*models.Category, error) {
	q := categoryQuery()
	q.Del("sort")
	c, err := cms.Get[models.Category](ctx, r.client, categoryPath(documentID), q)
	if err != nil {
		if cms.IsNotFound(err) {
			return nil, fmt.Errorf("category %s: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category %s: %w", documentID, err)
	}
	return &c, nil
}

// Create creates a category.
func (r *CMSCategoryRepository) Create(ctx context.Context, input models.CategoryInput) (*models.Category, error) {
	c, err := cms.Create[models.Category](ctx, r.client, "/categories", input)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &c, nil
}

// Update replaces a category's fields.
func (r *CMSCategoryRepository) Update(ctx context.Context, documentID string, input models.CategoryInput) (*models.Category, error) {
	c, err := cms.Update[models.Category](ctx, r.client, categoryPath(documentID), input)
	if err != nil {
		if cms.IsNotFound(err) {
			return nil, fmt.Errorf("category %s: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update category %s: %w", documentID, err)
	}
	return &c, nil
}

// UpdateSortOrder sets only the sortOrder field.
func (r *CMSCategoryRepository) UpdateSortOrder(ctx context.Context, documentID string, sortOrder int) error {
	_, err := cms.Update[models.Category](ctx, r.client, categoryPath(documentID), map[string]int{"sortOrder": sortOrder})
	if err != nil {
		return fmt.Errorf("failed to reorder category %s: %w", documentID, err)
	}
	return nil
}

// Delete removes a category.
func (r *CMSCategoryRepository) Delete(ctx context.Context, documentID string) error {
	if err := cms.Delete(ctx, r.client, categoryPath(documentID)); err != nil {
		if cms.IsNotFound(err) {
			return fmt.Errorf("category %s: %w", documentID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete category %s: %w", documentID, err)
	}
	return nil
}
