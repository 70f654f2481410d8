package handlers

import (
	"strconv"

	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the storefront catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleCatalog)
	productRoutes.Get("/:slug", h.HandleCatalogProduct)
}

// RegisterAdminRoutes registers the product editor routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Delete("/", h.HandleDeleteProduct)
	productRoutes.Get("/:documentId", h.HandleGetProduct)
	productRoutes.Put("/:documentId", h.HandleUpdateProduct)
	productRoutes.Delete("/:documentId", h.HandleDeleteProduct)
	productRoutes.Put("/:documentId/variants/:index/images", h.HandleReorderImages)
	productRoutes.Post("/:documentId/variants/:index/images", h.HandleAppendImage)
	productRoutes.Patch("/:documentId/variants/:index/images/move", h.HandleMoveImage)
	productRoutes.Delete("/:documentId/variants/:index/images/:mediaId", h.HandleRemoveImage)
}

// HandleCatalog lists sellable products.
func (h *ProductHandler) HandleCatalog(c *fiber.Ctx) error {
	catalog, err := h.service.Catalog(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(catalog)
}

// HandleCatalogProduct returns one sellable product by slug.
func (h *ProductHandler) HandleCatalogProduct(c *fiber.Ctx) error {
	slug := c.Params("slug")
	product, err := h.service.CatalogProduct(c.UserContext(), slug)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// documentID reads the product from the path, accepting a document id or a
// customProductId, or from the customProductId query parameter.
func (h *ProductHandler) documentID(c *fiber.Ctx) (string, error) {
	id := c.Params("documentId")
	if id == "" {
		id = c.Query("customProductId")
		if id == "" {
			return "", fiber.NewError(fiber.StatusBadRequest, "documentId or customProductId is required")
		}
		return h.service.ResolveDocumentID(c.UserContext(), id)
	}
	if models.IsCode(id) {
		return h.service.ResolveDocumentID(c.UserContext(), id)
	}
	return id, nil
}

// HandleGetProducts lists products for the admin table.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProduct returns a product for editing.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := h.documentID(c)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := h.documentID(c)
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	var in services.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	product, err := h.service.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := h.documentID(c)
	if err != nil {
		return respondError(c, err, "Could not delete product")
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func variantIndex(c *fiber.Ctx) (int, error) {
	index, err := strconv.Atoi(c.Params("index"))
	if err != nil || index < 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "variant index must be a non-negative integer")
	}
	return index, nil
}

type reorderImagesRequest struct {
	IDs []int `json:"ids" validate:"required"`
}

// HandleReorderImages sets the gallery order of a variant.
func (h *ProductHandler) HandleReorderImages(c *fiber.Ctx) error {
	index, err := variantIndex(c)
	if err != nil {
		return err
	}
	var req reorderImagesRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	id, err := h.documentID(c)
	if err != nil {
		return respondError(c, err, "Could not reorder images")
	}
	product, err := h.service.ReorderVariantImages(c.UserContext(), id, index, req.IDs)
	if err != nil {
		return respondError(c, err, "Could not reorder images")
	}
	return c.JSON(product)
}

type moveImageRequest struct {
	From *int `json:"from" validate:"required,min=0"`
	To   *int `json:"to" validate:"required,min=0"`
}

// HandleMoveImage moves one image of a variant's gallery to a new position.
func (h *ProductHandler) HandleMoveImage(c *fiber.Ctx) error {
	index, err := variantIndex(c)
	if err != nil {
		return err
	}
	var req moveImageRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	id, err := h.documentID(c)
	if err != nil {
		return respondError(c, err, "Could not move image")
	}
	product, err := h.service.MoveVariantImage(c.UserContext(), id, index, *req.From, *req.To)
	if err != nil {
		return respondError(c, err, "Could not move image")
	}
	return c.JSON(product)
}

type appendImageRequest struct {
	ID   int    `json:"id" validate:"required,gt=0"`
	URL  string `json:"url"`
	Name string `json:"name"`
	Mime string `json:"mime"`
}

// HandleAppendImage adds an existing media file to a variant's gallery.
func (h *ProductHandler) HandleAppendImage(c *fiber.Ctx) error {
	index, err := variantIndex(c)
	if err != nil {
		return err
	}
	var req appendImageRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	id, err := h.documentID(c)
	if err != nil {
		return respondError(c, err, "Could not add image")
	}
	ref := models.MediaRef{ID: req.ID, URL: req.URL, Name: req.Name, Mime: req.Mime}
	product, err := h.service.AppendVariantImages(c.UserContext(), id, index, ref)
	if err != nil {
		return respondError(c, err, "Could not add image")
	}
	return c.JSON(product)
}

// HandleRemoveImage removes a media file from a variant's gallery.
func (h *ProductHandler) HandleRemoveImage(c *fiber.Ctx) error {
	index, err := variantIndex(c)
	if err != nil {
		return err
	}
	mediaID, err := strconv.Atoi(c.Params("mediaId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "mediaId must be an integer")
	}
	id, err := h.documentID(c)
	if err != nil {
		return respondError(c, err, "Could not remove image")
	}
	product, err := h.service.RemoveVariantImage(c.UserContext(), id, index, mediaID)
	if err != nil {
		return respondError(c, err, "Could not remove image")
	}
	return c.JSON(product)
}
