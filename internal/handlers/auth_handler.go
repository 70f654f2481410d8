package handlers

import (
	"strings"

	"boutique/internal/middleware"
	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles storefront customer accounts. Credentials and tokens
// belong to the CMS; the handler forwards them.
type AuthHandler struct {
	accounts *services.AccountService
	validate *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/check-email", h.HandleCheckEmail)
	authRoutes.Get("/profile", middleware.CustomerToken(), h.HandleProfile)
	authRoutes.Put("/profile", middleware.CustomerToken(), h.HandleUpdateProfile)
	authRoutes.Post("/welcome-email", middleware.CustomerToken(), h.HandleWelcomeEmail)

	router.Get("/account/orders", middleware.CustomerToken(), h.HandleOrders)
}

// HandleRegister creates a customer account.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	auth, err := h.accounts.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Registration failed")
	}
	return c.Status(fiber.StatusCreated).JSON(auth)
}

// HandleLogin signs a customer in and returns the CMS token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req models.LoginRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	auth, err := h.accounts.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Authentication failed")
	}
	return c.JSON(auth)
}

type checkEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleCheckEmail reports whether an account exists for the email.
func (h *AuthHandler) HandleCheckEmail(c *fiber.Ctx) error {
	var req checkEmailRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	exists, err := h.accounts.EmailExists(c.UserContext(), strings.TrimSpace(req.Email))
	if err != nil {
		return respondError(c, err, "Could not check email")
	}
	return c.JSON(fiber.Map{"exists": exists})
}

// HandleProfile returns the signed-in customer.
func (h *AuthHandler) HandleProfile(c *fiber.Ctx) error {
	user, err := h.accounts.Profile(c.UserContext(), middleware.CustomerJWT(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve profile")
	}
	return c.JSON(user)
}

// HandleUpdateProfile changes the signed-in customer's profile.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var update models.ProfileUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.accounts.UpdateProfile(c.UserContext(), middleware.CustomerJWT(c), update)
	if err != nil {
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(user)
}

// HandleWelcomeEmail sends the welcome email to the signed-in customer.
func (h *AuthHandler) HandleWelcomeEmail(c *fiber.Ctx) error {
	if err := h.accounts.SendWelcome(c.UserContext(), middleware.CustomerJWT(c)); err != nil {
		return respondError(c, err, "Could not send welcome email")
	}
	return c.JSON(fiber.Map{"message": "Welcome email sent"})
}

// HandleOrders lists the signed-in customer's orders.
func (h *AuthHandler) HandleOrders(c *fiber.Ctx) error {
	orders, err := h.accounts.Orders(c.UserContext(), middleware.CustomerJWT(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}
