package models

import (
	"encoding/json"
	"sort"
)

// Category groups products. Only one level of nesting is allowed.
type Category struct {
	ID             int        `json:"id"`
	DocumentID     string     `json:"documentId"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug,omitempty"`
	Description    string     `json:"description,omitempty"`
	SortOrder      int        `json:"sortOrder"`
	ParentCategory *Category  `json:"parentCategory,omitempty"`
	Products       []Product  `json:"products,omitempty"`
	Children       []Category `json:"children,omitempty"`
}

// IsRoot reports whether c has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentCategory == nil
}

// CategoryInput is the write payload for a category. ParentDocumentID empty
// means a root category; a nil Products leaves the relation untouched.
type CategoryInput struct {
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description"`
	SortOrder        *int     `json:"sortOrder"`
	ParentDocumentID string   `json:"parentCategory"`
	Products         []string `json:"products"`
}

// MarshalJSON renders the CMS write shape, where relations are connect/set lists.
func (in CategoryInput) MarshalJSON() ([]byte, error) {
	payload := map[string]any{
		"name":        in.Name,
		"slug":        Slugify(in.Name),
		"description": in.Description,
	}
	if in.SortOrder != nil {
		payload["sortOrder"] = *in.SortOrder
	}
	if in.ParentDocumentID != "" {
		payload["parentCategory"] = map[string]any{"set": []string{in.ParentDocumentID}}
	} else {
		payload["parentCategory"] = map[string]any{"set": []string{}}
	}
	if in.Products != nil {
		payload["products"] = map[string]any{"set": in.Products}
	}
	return json.Marshal(payload)
}

// BuildCategoryTree returns the root categories sorted by sortOrder, each
// carrying its children sorted the same way. Children whose parent is not in
// the list are promoted to roots.
func BuildCategoryTree(all []Category) []Category {
	roots := make([]Category, 0)
	children := make(map[string][]Category)
	known := make(map[string]bool, len(all))
	for _, c := range all {
		known[c.DocumentID] = true
	}
	for _, c := range all {
		if c.ParentCategory != nil && known[c.ParentCategory.DocumentID] {
			pid := c.ParentCategory.DocumentID
			children[pid] = append(children[pid], c)
			continue
		}
		roots = append(roots, c)
	}
	sortCategories(roots)
	for i := range roots {
		kids := children[roots[i].DocumentID]
		sortCategories(kids)
		roots[i].Children = kids
	}
	return roots
}

func sortCategories(cs []Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].SortOrder < cs[j].SortOrder
	})
}
