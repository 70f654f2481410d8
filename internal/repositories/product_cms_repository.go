package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"boutique/internal/cms"
	"boutique/internal/models"
)

// CMSProductRepository stores products in the CMS.
type CMSProductRepository struct {
	client *cms.Client
}

// NewCMSProductRepository creates a new instance of CMSProductRepository.
func NewCMSProductRepository(client *cms.Client) *CMSProductRepository {
	return &CMSProductRepository{client: client}
}

func productQuery() url.Values {
	q := url.Values{}
	q.Set("populate[variants][populate][image]", "true")
	q.Set("sort", "createdAt:desc")
	return q
}

// variantPayload is the write shape of a variant: images are media ids.
type variantPayload struct {
	ID    int    `json:"id,omitempty"`
	Label string `json:"label"`
	Price any    `json:"price"`
	Stock int    `json:"stock"`
	Image []int  `json:"image"`
}

func productPayload(p *models.Product) map[string]any {
	variants := make([]variantPayload, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		variants[i] = variantPayload{ID: v.ID, Label: v.Label, Price: v.Price, Stock: v.Stock, Image: v.ImageIDs()}
	}
	return map[string]any{
		"title":           p.Title,
		"slug":            p.Slug,
		"customProductId": p.CustomProductID,
		"description":     p.Description,
		"variants":        variants,
	}
}

// GetAll retrieves every product with variants and images.
func (r *CMSProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	products, err := cms.List[models.Product](ctx, r.client, "/products", productQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByDocumentID retrieves one product.
func (r *CMSProductRepository) GetByDocumentID(ctx context.Context, documentID string) (*models.Product, error) {
	q := url.Values{}
	q.Set("populate[variants][populate][image]", "true")
	p, err := cms.Get[models.Product](ctx, r.client, "/products/"+url.PathEscape(documentID), q)
	if err != nil {
		if cms.IsNotFound(err) {
			return nil, fmt.Errorf("product %s: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product %s: %w", documentID, err)
	}
	return &p, nil
}

func (r *CMSProductRepository) findOne(ctx context.Context, field, value string) (*models.Product, error) {
	q := productQuery()
	q.Set(fmt.Sprintf("filters[%s][$eq]", field), value)
	products, err := cms.Get[[]models.Product](ctx, r.client, "/products", q)
	if err != nil {
		return nil, fmt.Errorf("failed to get product by %s %s: %w", field, value, err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("product with %s %s: %w", field, value, ErrNotFound)
	}
	return &products[0], nil
}

// GetBySlug retrieves a product by its slug.
func (r *CMSProductRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	return r.findOne(ctx, "slug", slug)
}

// FindDocumentID resolves a customProductId to a document id.
func (r *CMSProductRepository) FindDocumentID(ctx context.Context, customProductID string) (string, error) {
	p, err := r.findOne(ctx, "customProductId", customProductID)
	if err != nil {
		return "", err
	}
	return p.DocumentID, nil
}

// Create creates a product and fills in its ids.
func (r *CMSProductRepository) Create(ctx context.Context, product *models.Product) error {
	created, err := cms.Create[models.Product](ctx, r.client, "/products", productPayload(product))
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	product.ID = created.ID
	product.DocumentID = created.DocumentID
	return nil
}

// Update replaces a product's fields and variants.
func (r *CMSProductRepository) Update(ctx context.Context, product *models.Product) error {
	_, err := cms.Update[models.Product](ctx, r.client, "/products/"+url.PathEscape(product.DocumentID), productPayload(product))
	if err != nil {
		if cms.IsNotFound(err) {
			return fmt.Errorf("product %s: %w", product.DocumentID, ErrNotFound)
		}
		return fmt.Errorf("failed to update product %s: %w", product.DocumentID, err)
	}
	return nil
}

// Delete removes a product.
func (r *CMSProductRepository) Delete(ctx context.Context, documentID string) error {
	if err := cms.Delete(ctx, r.client, "/products/"+url.PathEscape(documentID)); err != nil {
		if cms.IsNotFound(err) {
			return fmt.Errorf("product %s: %w", documentID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete product %s: %w", documentID, err)
	}
	return nil
}

// RawSnapshot returns every product with variants and images populated,
// exactly as the CMS serialized them.
func (r *CMSProductRepository) RawSnapshot(ctx context.Context) ([]byte, error) {
	raw, err := cms.List[json.RawMessage](ctx, r.client, "/products", productQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot products: %w", err)
	}
	return json.Marshal(raw)
}
