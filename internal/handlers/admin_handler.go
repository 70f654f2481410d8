package handlers

import (
	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles dashboard operator authentication.
type AdminHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(authService *services.AuthService) *AdminHandler {
	return &AdminHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public admin login. It has to be registered
// before the protected admin group is created.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/admin/login", h.HandleLogin)
}

// RegisterAdminRoutes registers routes that need an admin token.
func (h *AdminHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Post("/admins", h.HandleRegister)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles admin login and issues a JWT token.
func (h *AdminHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	token, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err, "Authentication failed")
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
	})
}

type registerAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// HandleRegister creates another admin.
func (h *AdminHandler) HandleRegister(c *fiber.Ctx) error {
	var req registerAdminRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	admin := models.AdminUser{Username: req.Username, Email: req.Email, Password: req.Password}
	if err := h.authService.RegisterAdmin(c.UserContext(), &admin); err != nil {
		return respondError(c, err, "Registration failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Admin registered successfully",
		"admin":   admin,
	})
}
