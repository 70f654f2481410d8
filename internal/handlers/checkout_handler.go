package handlers

import (
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CheckoutHandler handles hosted checkout requests.
type CheckoutHandler struct {
	service  *services.CheckoutService
	validate *validator.Validate
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the checkout routes.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router) {
	checkoutRoutes := router.Group("/checkout")
	checkoutRoutes.Post("/session", h.HandleCreateSession)
	checkoutRoutes.Post("/success", h.HandleSuccess)
}

// HandleCreateSession opens a hosted checkout session for the cart.
func (h *CheckoutHandler) HandleCreateSession(c *fiber.Ctx) error {
	var req services.StartCheckoutRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	sess, err := h.service.StartCheckout(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Could not create checkout session")
	}
	return c.JSON(fiber.Map{
		"sessionId": sess.ID,
		"url":       sess.URL,
	})
}

type checkoutSuccessRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// HandleSuccess records the order for a paid session. Repeated calls for the
// same session return the order code recorded the first time.
func (h *CheckoutHandler) HandleSuccess(c *fiber.Ctx) error {
	var req checkoutSuccessRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	result, err := h.service.CompleteCheckout(c.UserContext(), req.SessionID)
	if err != nil {
		return respondError(c, err, "Could not complete checkout")
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"orderId":   result.OrderCode,
		"duplicate": result.Duplicate,
		"order":     result.Order,
	})
}
