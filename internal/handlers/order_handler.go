package handlers

import (
	"boutique/internal/models"
	"boutique/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the storefront order routes.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/orders", h.HandleCreateOrder)
}

// RegisterAdminRoutes registers the order management routes.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:code", h.HandleGetOrderByCode)
	orderRoutes.Patch("/:documentId/status", h.HandleUpdateOrderStatus)
}

// HandleCreateOrder places a cash-on-delivery order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req services.PlaceOrderRequest
	if ok, err := parseAndValidate(c, h.validate, &req); !ok {
		return err
	}

	order, err := h.service.PlaceOrder(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "Could not create order")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"orderId": order.CustomOrderID,
		"order":   order,
	})
}

// HandleGetOrders lists orders, newest first. Supports q, orderStatus and
// paymentStatus query parameters.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	filter := models.OrderFilter{
		Query:         c.Query("q"),
		OrderStatus:   models.OrderStatus(c.Query("orderStatus")),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
	}
	if filter.OrderStatus != "" && !filter.OrderStatus.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid orderStatus")
	}
	if filter.PaymentStatus != "" && !filter.PaymentStatus.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid paymentStatus")
	}

	orders, err := h.service.GetAllOrders(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByCode retrieves a single order by its customOrderId.
func (h *OrderHandler) HandleGetOrderByCode(c *fiber.Ctx) error {
	code := c.Params("code")
	order, err := h.service.GetOrderByCode(c.UserContext(), code)
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleUpdateOrderStatus changes the order or payment status.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	documentID := c.Params("documentId")
	var update models.StatusUpdate
	if err := c.BodyParser(&update); err != nil {
		return invalidBody(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), documentID, update)
	if err != nil {
		return respondError(c, err, "Could not update order status")
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated successfully",
		"order":   order,
	})
}
