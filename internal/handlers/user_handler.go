package handlers

import (
	"strconv"

	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler lets admins browse and edit customer accounts.
type UserHandler struct {
	accounts *services.AccountService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// RegisterAdminRoutes registers the user management routes.
func (h *UserHandler) RegisterAdminRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/", h.HandleGetUsers)
	userRoutes.Get("/:id", h.HandleGetUser)
	userRoutes.Put("/:id", h.HandleUpdateUser)
}

func userID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "user id must be an integer")
	}
	return id, nil
}

// HandleGetUsers lists every customer.
func (h *UserHandler) HandleGetUsers(c *fiber.Ctx) error {
	users, err := h.accounts.GetAllUsers(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve users")
	}
	return c.JSON(users)
}

// HandleGetUser returns one customer.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	user, err := h.accounts.GetUser(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve user")
	}
	return c.JSON(user)
}

// HandleUpdateUser changes a customer's profile fields.
func (h *UserHandler) HandleUpdateUser(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var update models.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c, err)
	}
	user, err := h.accounts.UpdateUser(c.UserContext(), id, update)
	if err != nil {
		return respondError(c, err, "Could not update user")
	}
	return c.JSON(user)
}
