package services

import (
	"context"
	"fmt"
	"strings"

	"boutique/internal/models"
	"boutique/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo   repositories.CategoryRepository
	logger *zap.Logger
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger.Named("categories")}
}

// Tree returns the root categories with their children.
func (s *CategoryService) Tree(ctx context.Context) ([]models.Category, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return models.BuildCategoryTree(all), nil
}

// GetCategory retrieves one category.
func (s *CategoryService) GetCategory(ctx context.Context, documentID string) (*models.Category, error) {
	return s.repo.GetByDocumentID(ctx, documentID)
}

// checkParent enforces a single level of nesting: the parent must be a root,
// and a category that has children cannot itself get a parent.
func (s *CategoryService) checkParent(ctx context.Context, documentID, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == documentID {
		return invalid("a category cannot be its own parent")
	}
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return err
	}
	var parent *models.Category
	for i := range all {
		c := &all[i]
		if c.DocumentID == parentID {
			parent = c
		}
		if documentID != "" && c.ParentCategory != nil && c.ParentCategory.DocumentID == documentID {
			return invalid("category has subcategories and cannot be nested")
		}
	}
	if parent == nil {
		return fmt.Errorf("parent category %s: %w", parentID, ErrNotFound)
	}
	if !parent.IsRoot() {
		return invalid("parent category %q is itself a subcategory", parent.Name)
	}
	return nil
}

// CreateCategory creates a category.
func (s *CategoryService) CreateCategory(ctx context.Context, in models.CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name is required")
	}
	if err := s.checkParent(ctx, "", in.ParentDocumentID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

// UpdateCategory updates a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, documentID string, in models.CategoryInput) (*models.Category, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalid("name is required")
	}
	if err := s.checkParent(ctx, documentID, in.ParentDocumentID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, documentID, in)
}

// DeleteCategory deletes a category. Its products are left as they are.
func (s *CategoryService) DeleteCategory(ctx context.Context, documentID string) error {
	if err := s.repo.Delete(ctx, documentID); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("document_id", documentID))
	return nil
}

// Reorder gives each category the position of its id in ids.
func (s *CategoryService) Reorder(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return invalid("ids are required")
	}
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			return s.repo.UpdateSortOrder(gctx, id, i)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to reorder categories: %w", err)
	}
	return nil
}
