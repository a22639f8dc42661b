package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService) *OrderHandler {
	return &OrderHandler{
		service: service,
	}
}

// RegisterRoutes registers the order routes. auth must authenticate an
// admin holding customers.view; customerAuth guards the customer's own
// order history.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, auth, customerAuth fiber.Handler) {
	view := middleware.RequirePermission(models.PermCustomersView)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", auth, view, h.HandleGetOrders)
	orderRoutes.Get("/:id", auth, view, h.HandleGetOrderByID)

	router.Get("/auth/me/orders", customerAuth, h.HandleGetMyOrders)
}

// HandleGetOrders lists orders, newest first. ?customerId= and ?status=
// narrow the listing.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	var (
		orders []models.Order
		err    error
	)
	if customerID := queryUint(c, "customerId"); customerID != 0 {
		orders, err = h.service.FindByCustomer(c.UserContext(), customerID)
	} else {
		orders, err = h.service.FindAll(c.UserContext(), models.OrderStatus(c.Query("status")))
	}
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	order, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve order")
	}
	return c.JSON(order)
}

// HandleGetMyOrders lists the orders of the authenticated customer.
func (h *OrderHandler) HandleGetMyOrders(c *fiber.Ctx) error {
	customer := middleware.CurrentCustomer(c)
	orders, err := h.service.FindByCustomer(c.UserContext(), customer.ID)
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}
