package models

import "strings"

// MediaFile is an entry of the CMS media library.
type MediaFile struct {
	ID      int              `json:"id"`
	Name    string           `json:"name"`
	URL     string           `json:"url"`
	Mime    string           `json:"mime"`
	Size    float64          `json:"size,omitempty"`
	Related []map[string]any `json:"related,omitempty"`
}

// IsImage reports whether the file has an image mime type.
func (f MediaFile) IsImage() bool {
	return strings.HasPrefix(f.Mime, "image/")
}

// Ref converts the file into a media reference for a variant gallery.
func (f MediaFile) Ref() MediaRef {
	return MediaRef{ID: f.ID, URL: f.URL, Name: f.Name, Mime: f.Mime}
}

// OrphanReport summarises a bulk delete of orphaned media.
type OrphanReport struct {
	Deleted []int          `json:"deleted"`
	Failed  map[int]string `json:"failed,omitempty"`
}

// Partial reports whether any deletion failed.
func (r OrphanReport) Partial() bool {
	return len(r.Failed) > 0
}
