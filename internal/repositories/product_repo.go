package repositories

import (
	"context"

	"boutique/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByDocumentID(ctx context.Context, documentID string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	// FindDocumentID resolves a customProductId to the CMS document id.
	FindDocumentID(ctx context.Context, customProductID string) (string, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, documentID string) error
	// RawSnapshot returns every product, fully populated, as serialized JSON.
	RawSnapshot(ctx context.Context) ([]byte, error)
}
