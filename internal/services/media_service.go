package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"sync"

	"boutique/internal/cms"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/pkg/imaging"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// idPattern finds every "id": <n> pair in serialized product data.
var idPattern = regexp.MustCompile(`"id"\s*:\s*(\d+)`)

// UploadFile is one file received from the admin uploader.
type UploadFile struct {
	Name string
	Data []byte
}

// UploadOptions controls post-processing of an upload.
type UploadOptions struct {
	// CropSquare crops every image to a centred square before upload.
	CropSquare bool
	// ProductDocumentID and VariantIndex, when set, append the uploaded
	// images to that variant's gallery.
	ProductDocumentID string
	VariantIndex      int
}

// MediaService manages the media library.
type MediaService struct {
	media    repositories.MediaRepository
	products repositories.ProductRepository
	editor   *ProductService
	logger   *zap.Logger
}

// NewMediaService creates a new MediaService.
func NewMediaService(media repositories.MediaRepository, products repositories.ProductRepository, editor *ProductService, logger *zap.Logger) *MediaService {
	return &MediaService{media: media, products: products, editor: editor, logger: logger.Named("media")}
}

// Upload checks and optionally crops the files, sends them to the media
// library and returns references to the stored files.
func (s *MediaService) Upload(ctx context.Context, files []UploadFile, opts UploadOptions) ([]models.MediaRef, error) {
	if len(files) == 0 {
		return nil, invalid("no files uploaded")
	}

	prepared := make([]cms.UploadFile, len(files))
	for i, f := range files {
		var (
			data = f.Data
			mime string
			err  error
		)
		if opts.CropSquare {
			data, mime, err = imaging.CropSquare(f.Name, f.Data)
		} else {
			mime, err = imaging.Detect(f.Name, f.Data)
		}
		if err != nil {
			if errors.Is(err, imaging.ErrUnsupportedFormat) {
				return nil, fmt.Errorf("%w: %s: %v", ErrValidation, f.Name, err)
			}
			return nil, fmt.Errorf("failed to process %s: %w", f.Name, err)
		}
		prepared[i] = cms.UploadFile{Name: f.Name, ContentType: mime, Data: data}
	}

	stored, err := s.media.Upload(ctx, prepared)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}
	refs := make([]models.MediaRef, len(stored))
	for i, f := range stored {
		refs[i] = f.Ref()
	}

	if opts.ProductDocumentID != "" {
		if _, err := s.editor.AppendVariantImages(ctx, opts.ProductDocumentID, opts.VariantIndex, refs...); err != nil {
			return refs, fmt.Errorf("uploaded but failed to attach to product %s: %w", opts.ProductDocumentID, err)
		}
	}
	return refs, nil
}

// FindOrphans lists the images that no product refers to.
func (s *MediaService) FindOrphans(ctx context.Context) ([]models.MediaFile, error) {
	var (
		files    []models.MediaFile
		snapshot []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		files, err = s.media.GetAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snapshot, err = s.products.RawSnapshot(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to scan media: %w", err)
	}

	used := ReferencedIDs(snapshot)
	orphans := make([]models.MediaFile, 0)
	for _, f := range files {
		if !f.IsImage() {
			continue
		}
		if _, ok := used[f.ID]; !ok {
			orphans = append(orphans, f)
		}
	}
	return orphans, nil
}

// ReferencedIDs collects every numeric "id" value found in data.
func ReferencedIDs(data []byte) map[int]struct{} {
	ids := make(map[int]struct{})
	for _, m := range idPattern.FindAllSubmatch(data, -1) {
		if id, err := strconv.Atoi(string(m[1])); err == nil {
			ids[id] = struct{}{}
		}
	}
	return ids
}

// DeleteOrphans deletes the given files concurrently and reports per-id results.
func (s *MediaService) DeleteOrphans(ctx context.Context, ids []int) (models.OrphanReport, error) {
	if len(ids) == 0 {
		return models.OrphanReport{}, invalid("no media ids given")
	}
	return s.deleteAll(ctx, ids), nil
}

// CleanupUnrelated deletes every file that the media library reports as
// unused by any content entry.
func (s *MediaService) CleanupUnrelated(ctx context.Context) (models.OrphanReport, error) {
	files, err := s.media.GetAll(ctx)
	if err != nil {
		return models.OrphanReport{}, fmt.Errorf("failed to list media: %w", err)
	}
	ids := make([]int, 0)
	for _, f := range files {
		if len(f.Related) == 0 {
			ids = append(ids, f.ID)
		}
	}
	if len(ids) == 0 {
		return models.OrphanReport{Deleted: []int{}}, nil
	}
	return s.deleteAll(ctx, ids), nil
}

func (s *MediaService) deleteAll(ctx context.Context, ids []int) models.OrphanReport {
	var (
		mu     sync.Mutex
		report = models.OrphanReport{Deleted: make([]int, 0, len(ids))}
	)
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			err := s.media.Delete(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if report.Failed == nil {
					report.Failed = make(map[int]string)
				}
				report.Failed[id] = err.Error()
				return nil
			}
			report.Deleted = append(report.Deleted, id)
			return nil
		})
	}
	_ = g.Wait()

	sort.Ints(report.Deleted)
	if report.Partial() {
		s.logger.Warn("Some media could not be deleted", zap.Int("deleted", len(report.Deleted)), zap.Int("failed", len(report.Failed)))
	}
	return report
}
