package handlers

import (
	"fmt"
	"io"
	"strconv"

	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// MediaHandler handles uploads and media library maintenance.
type MediaHandler struct {
	service  *services.MediaService
	products *services.ProductService
	validate *validator.Validate
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(service *services.MediaService, products *services.ProductService) *MediaHandler {
	return &MediaHandler{
		service:  service,
		products: products,
		validate: validator.New(),
	}
}

// RegisterAdminRoutes registers the media routes.
func (h *MediaHandler) RegisterAdminRoutes(router fiber.Router) {
	mediaRoutes := router.Group("/media")
	mediaRoutes.Post("/", h.HandleUpload)
	mediaRoutes.Get("/orphans", h.HandleFindOrphans)
	mediaRoutes.Delete("/orphans", h.HandleDeleteOrphans)
	mediaRoutes.Post("/cleanup", h.HandleCleanup)
}

// HandleUpload stores the multipart "files" field in the media library.
// With crop=square every image is cropped to a centred square first; with
// product and variant set the images are appended to that variant.
func (h *MediaHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return invalidBody(c, err)
	}

	headers := form.File["files"]
	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return respondError(c, err, "Could not read upload")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return respondError(c, err, "Could not read upload")
		}
		files = append(files, services.UploadFile{Name: fh.Filename, Data: data})
	}

	opts := services.UploadOptions{CropSquare: c.FormValue("crop") == "square"}
	if product := c.FormValue("product"); product != "" {
		if models.IsCode(product) {
			product, err = h.products.ResolveDocumentID(c.UserContext(), product)
			if err != nil {
				return respondError(c, err, "Could not upload media")
			}
		}
		index, err := strconv.Atoi(c.FormValue("variant", "0"))
		if err != nil || index < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "variant must be a non-negative integer")
		}
		opts.ProductDocumentID = product
		opts.VariantIndex = index
	}

	refs, err := h.service.Upload(c.UserContext(), files, opts)
	if err != nil {
		return respondError(c, err, "Could not upload media")
	}
	return c.Status(fiber.StatusCreated).JSON(refs)
}

// HandleFindOrphans lists images that no product refers to.
func (h *MediaHandler) HandleFindOrphans(c *fiber.Ctx) error {
	orphans, err := h.service.FindOrphans(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not scan media")
	}
	return c.JSON(fiber.Map{
		"count":   len(orphans),
		"orphans": orphans,
	})
}

type deleteOrphansRequest struct {
	IDs []int `json:"ids" validate:"required,min=1"`
}

// HandleDeleteOrphans deletes the given media files. A partial failure is
// reported with 207 and the per-id errors.
func (h *MediaHandler) HandleDeleteOrphans(c *fiber.Ctx) error {
	var req deleteOrphansRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	report, err := h.service.DeleteOrphans(c.UserContext(), req.IDs)
	if err != nil {
		return respondError(c, err, "Could not delete media")
	}
	return writeReport(c, report)
}

// HandleCleanup deletes every file the media library reports as unused.
func (h *MediaHandler) HandleCleanup(c *fiber.Ctx) error {
	report, err := h.service.CleanupUnrelated(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not clean up media")
	}
	return writeReport(c, report)
}

func writeReport(c *fiber.Ctx, report models.OrphanReport) error {
	status := fiber.StatusOK
	if report.Partial() {
		status = fiber.StatusMultiStatus
	}
	return c.Status(status).JSON(fiber.Map{
		"message":      fmt.Sprintf("Deleted %d of %d files", len(report.Deleted), len(report.Deleted)+len(report.Failed)),
		"deletedCount": len(report.Deleted),
		"deleted":      report.Deleted,
		"errors":       report.Failed,
	})
}
