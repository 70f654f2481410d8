package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// The CMS stores decimals as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// MediaRef is a reference to a file in the CMS media library.
type MediaRef struct {
	ID   int    `json:"id"`
	URL  string `json:"url,omitempty"`
	Name string `json:"name,omitempty"`
	Mime string `json:"mime,omitempty"`
}

// Variant is a purchasable option of a product (e.g. a bottle size).
type Variant struct {
	ID     int             `json:"id,omitempty"`
	Label  string          `json:"label"`
	Price  decimal.Decimal `json:"price"`
	Stock  int             `json:"stock"`
	Images []MediaRef      `json:"image"`
}

// Product is a catalog entry as stored in the CMS.
type Product struct {
	ID              int       `json:"id,omitempty"`
	DocumentID      string    `json:"documentId,omitempty"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	CustomProductID string    `json:"customProductId,omitempty"`
	Description     []Block   `json:"description"`
	Variants        []Variant `json:"variants"`
}

// TotalStock sums the stock of every variant.
func (p *Product) TotalStock() int {
	total := 0
	for _, v := range p.Variants {
		total += v.Stock
	}
	return total
}

// Variant returns a pointer to the variant at index, or an error when out of range.
func (p *Product) Variant(index int) (*Variant, error) {
	if index < 0 || index >= len(p.Variants) {
		return nil, fmt.Errorf("variant index %d out of range (product has %d variants)", index, len(p.Variants))
	}
	return &p.Variants[index], nil
}

// Validate checks the invariants the admin editor enforces before a product
// is sent to the CMS.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if len(p.Variants) == 0 {
		return fmt.Errorf("at least one variant is required")
	}
	for i, v := range p.Variants {
		if strings.TrimSpace(v.Label) == "" {
			return fmt.Errorf("variant %d: label is required", i)
		}
		if !v.Price.IsPositive() {
			return fmt.Errorf("variant %d: price must be greater than zero", i)
		}
		if v.Stock < 0 {
			return fmt.Errorf("variant %d: stock cannot be negative", i)
		}
	}
	return nil
}

// ImageIDs returns the media ids of the variant in display order.
func (v *Variant) ImageIDs() []int {
	ids := make([]int, len(v.Images))
	for i, img := range v.Images {
		ids[i] = img.ID
	}
	return ids
}

// AppendImage adds a media reference at the end of the variant's gallery.
// Adding an id that is already present is a no-op.
func (v *Variant) AppendImage(ref MediaRef) {
	for _, img := range v.Images {
		if img.ID == ref.ID {
			return
		}
	}
	v.Images = append(v.Images, ref)
}

// RemoveImage drops the media reference with the given id. It reports whether
// anything was removed.
func (v *Variant) RemoveImage(id int) bool {
	for i, img := range v.Images {
		if img.ID == id {
			v.Images = append(v.Images[:i], v.Images[i+1:]...)
			return true
		}
	}
	return false
}

// ReorderImages rearranges the gallery to follow ids, which must be a
// permutation of the current image ids.
func (v *Variant) ReorderImages(ids []int) error {
	if len(ids) != len(v.Images) {
		return fmt.Errorf("expected %d image ids, got %d", len(v.Images), len(ids))
	}
	byID := make(map[int]MediaRef, len(v.Images))
	for _, img := range v.Images {
		byID[img.ID] = img
	}
	reordered := make([]MediaRef, 0, len(ids))
	for _, id := range ids {
		img, ok := byID[id]
		if !ok {
			return fmt.Errorf("image %d does not belong to this variant", id)
		}
		delete(byID, id)
		reordered = append(reordered, img)
	}
	v.Images = reordered
	return nil
}

// MoveImage moves the image at index from to index to, shifting the others.
func (v *Variant) MoveImage(from, to int) error {
	n := len(v.Images)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("image move %d -> %d out of range", from, to)
	}
	v.Images = ArrayMove(v.Images, from, to)
	return nil
}

// ArrayMove returns a copy of items with the element at from moved to to.
func ArrayMove[T any](items []T, from, to int) []T {
	out := make([]T, 0, len(items))
	out = append(out, items[:from]...)
	out = append(out, items[from+1:]...)
	moved := items[from]
	out = append(out[:to], append([]T{moved}, out[to:]...)...)
	return out
}

// SizeOption is a variant as exposed to the storefront.
type SizeOption struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// CatalogProduct is the storefront view of a product.
type CatalogProduct struct {
	ID          int             `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description []Block         `json:"description"`
	Stock       int             `json:"stock"`
	Sizes       []SizeOption    `json:"sizes"`
	Images      []string        `json:"images"`
	Price       decimal.Decimal `json:"price"`
}

// NewCatalogProduct flattens a CMS product for the storefront. Products
// without variants are not sellable and yield ok == false.
func NewCatalogProduct(p Product, mediaBaseURL string) (CatalogProduct, bool) {
	if len(p.Variants) == 0 {
		return CatalogProduct{}, false
	}

	seen := make(map[string]struct{})
	images := make([]string, 0)
	sizes := make([]SizeOption, 0, len(p.Variants))
	for _, v := range p.Variants {
		sizes = append(sizes, SizeOption{Label: v.Label, Price: v.Price})
		for _, img := range v.Images {
			u := MediaURL(mediaBaseURL, img.URL)
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			images = append(images, u)
		}
	}

	return CatalogProduct{
		ID:          p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Description: p.Description,
		Stock:       p.TotalStock(),
		Sizes:       sizes,
		Images:      images,
		Price:       p.Variants[0].Price,
	}, true
}

// ProductSummary is a row of the admin product list.
type ProductSummary struct {
	ID              int              `json:"id"`
	DocumentID      string           `json:"documentId"`
	Title           string           `json:"title"`
	Slug            string           `json:"slug"`
	CustomProductID string           `json:"customProductId"`
	Stock           int              `json:"stock"`
	Variants        []VariantSummary `json:"variants"`
}

// VariantSummary shows a variant with its cover image only.
type VariantSummary struct {
	ID    int             `json:"id"`
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	Image string          `json:"image,omitempty"`
}

// NewProductSummary builds the admin list row for p.
func NewProductSummary(p Product) ProductSummary {
	variants := make([]VariantSummary, len(p.Variants))
	for i, v := range p.Variants {
		vs := VariantSummary{ID: v.ID, Label: v.Label, Price: v.Price, Stock: v.Stock}
		if len(v.Images) > 0 {
			vs.Image = v.Images[0].URL
		}
		variants[i] = vs
	}
	return ProductSummary{
		ID:              p.ID,
		DocumentID:      p.DocumentID,
		Title:           p.Title,
		Slug:            p.Slug,
		CustomProductID: p.CustomProductID,
		Stock:           p.TotalStock(),
		Variants:        variants,
	}
}

// MediaURL turns a CMS-relative upload path into an absolute URL.
func MediaURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + path
}
