package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"boutique/internal/cms"
	"boutique/internal/models"
)

// MediaRepository defines access to the CMS media library.
type MediaRepository interface {
	GetAll(ctx context.Context) ([]models.MediaFile, error)
	Upload(ctx context.Context, files []cms.UploadFile) ([]models.MediaFile, error)
	Delete(ctx context.Context, id int) error
}

// CMSMediaRepository uses the CMS upload plugin.
type CMSMediaRepository struct {
	client *cms.Client
}

// NewCMSMediaRepository creates a new instance of CMSMediaRepository.
func NewCMSMediaRepository(client *cms.Client) *CMSMediaRepository {
	return &CMSMediaRepository{client: client}
}

// GetAll lists every file with its related entries.
func (r *CMSMediaRepository) GetAll(ctx context.Context) ([]models.MediaFile, error) {
	q := url.Values{}
	q.Set("populate", "related")
	q.Set("sort", "createdAt:desc")
	var files []models.MediaFile
	if err := r.client.Do(ctx, http.MethodGet, "/upload/files", nil, &files, cms.WithQuery(q)); err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}
	return files, nil
}

// Upload stores files in the media library.
func (r *CMSMediaRepository) Upload(ctx context.Context, files []cms.UploadFile) ([]models.MediaFile, error) {
	var created []models.MediaFile
	if err := r.client.Upload(ctx, files, &created); err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}
	return created, nil
}

// Delete removes a file.
func (r *CMSMediaRepository) Delete(ctx context.Context, id int) error {
	if err := r.client.Do(ctx, http.MethodDelete, "/upload/files/"+strconv.Itoa(id), nil, nil); err != nil {
		if cms.IsNotFound(err) {
			return fmt.Errorf("media %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to delete media %d: %w", id, err)
	}
	return nil
}

// MockMediaRepository is an in-memory implementation of MediaRepository.
type MockMediaRepository struct {
	files  map[int]models.MediaFile
	nextID int
	// FailDelete makes Delete fail for the listed ids.
	FailDelete map[int]error
	mu         sync.RWMutex
}

// NewMockMediaRepository creates a new instance of MockMediaRepository.
func NewMockMediaRepository(files ...models.MediaFile) *MockMediaRepository {
	r := &MockMediaRepository{files: make(map[int]models.MediaFile), nextID: 1, FailDelete: make(map[int]error)}
	for _, f := range files {
		r.files[f.ID] = f
		if f.ID >= r.nextID {
			r.nextID = f.ID + 1
		}
	}
	return r
}

// GetAll lists the files ordered by id.
func (r *MockMediaRepository) GetAll(_ context.Context) ([]models.MediaFile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]models.MediaFile, 0, len(r.files))
	for _, f := range r.files {
		list = append(list, f)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Upload stores files.
func (r *MockMediaRepository) Upload(_ context.Context, files []cms.UploadFile) ([]models.MediaFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	created := make([]models.MediaFile, 0, len(files))
	for _, f := range files {
		mf := models.MediaFile{ID: r.nextID, Name: f.Name, Mime: f.ContentType, URL: fmt.Sprintf("/uploads/%d_%s", r.nextID, f.Name)}
		r.nextID++
		r.files[mf.ID] = mf
		created = append(created, mf)
	}
	return created, nil
}

// Delete removes a file.
func (r *MockMediaRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.FailDelete[id]; ok {
		return err
	}
	if _, ok := r.files[id]; !ok {
		return fmt.Errorf("media %d: %w", id, ErrNotFound)
	}
	delete(r.files, id)
	return nil
}
