package handlers

import (
	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CategoryHandler handles HTTP requests for categories.
type CategoryHandler struct {
	service  *services.CategoryService
	validate *validator.Validate
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(service *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the storefront category routes.
func (h *CategoryHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/categories", h.HandleTree)
}

// RegisterAdminRoutes registers the category management routes.
func (h *CategoryHandler) RegisterAdminRoutes(router fiber.Router) {
	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleTree)
	categoryRoutes.Post("/", h.HandleCreateCategory)
	// Must precede /:documentId.
	categoryRoutes.Put("/order", h.HandleReorder)
	categoryRoutes.Get("/:documentId", h.HandleGetCategory)
	categoryRoutes.Put("/:documentId", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:documentId", h.HandleDeleteCategory)
}

// HandleTree returns the root categories with their children.
func (h *CategoryHandler) HandleTree(c *fiber.Ctx) error {
	tree, err := h.service.Tree(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(tree)
}

// HandleGetCategory returns one category.
func (h *CategoryHandler) HandleGetCategory(c *fiber.Ctx) error {
	category, err := h.service.GetCategory(c.UserContext(), c.Params("documentId"))
	if err != nil {
		return respondError(c, err, "Could not retrieve category")
	}
	return c.JSON(category)
}

// HandleCreateCategory creates a category.
func (h *CategoryHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var in models.CategoryInput
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	category, err := h.service.CreateCategory(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "Could not create category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory updates a category.
func (h *CategoryHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var in models.CategoryInput
	if ok, err := parseAndValidate(c, h.validate, &in); !ok {
		return err
	}
	category, err := h.service.UpdateCategory(c.UserContext(), c.Params("documentId"), in)
	if err != nil {
		return respondError(c, err, "Could not update category")
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes a category. Its products are kept.
func (h *CategoryHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	if err := h.service.DeleteCategory(c.UserContext(), c.Params("documentId")); err != nil {
		return respondError(c, err, "Could not delete category")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type reorderCategoriesRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// HandleReorder sets sortOrder from the position of each id.
func (h *CategoryHandler) HandleReorder(c *fiber.Ctx) error {
	var req reorderCategoriesRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}
	if err := h.service.Reorder(c.UserContext(), req.IDs); err != nil {
		return respondError(c, err, "Could not reorder categories")
	}
	return c.JSON(fiber.Map{"message": "Categories reordered successfully"})
}
