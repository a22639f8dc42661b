package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// CustomerHandler handles storefront sign-up and login, and the back-office
// customer listing.
type CustomerHandler struct {
	customers *services.CustomerService
	validate  *validator.Validate
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(customers *services.CustomerService, validate *validator.Validate) *CustomerHandler {
	return &CustomerHandler{
		customers: customers,
		validate:  validate,
	}
}

// RegisterRoutes registers /auth for customers and /customers for admins
// holding customers.view.
func (h *CustomerHandler) RegisterRoutes(router fiber.Router, auth, customerAuth, throttle fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", throttle, h.HandleLogin)
	authRoutes.Get("/me", customerAuth, h.HandleMe)
	authRoutes.Put("/me", customerAuth, h.HandleUpdateMe)

	view := middleware.RequirePermission(models.PermCustomersView)
	r := router.Group("/customers")
	r.Get("/", auth, view, h.HandleGetCustomers)
	r.Get("/:id", auth, view, h.HandleGetCustomer)
}

// HandleRegister creates a customer account.
func (h *CustomerHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterCustomerInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	auth, err := h.customers.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "Registration failed")
	}
	return c.Status(fiber.StatusCreated).JSON(auth)
}

// HandleLogin checks customer credentials and issues a token.
func (h *CustomerHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.CustomerLoginInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	auth, err := h.customers.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "Authentication failed")
	}
	return c.JSON(auth)
}

// HandleMe returns the authenticated customer.
func (h *CustomerHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(middleware.CurrentCustomer(c))
}

// HandleUpdateMe updates the authenticated customer's profile.
func (h *CustomerHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var in services.UpdateCustomerInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	customer, err := h.customers.UpdateProfile(c.UserContext(), middleware.CurrentCustomer(c).ID, in)
	if err != nil {
		return respondError(c, err, "Could not update profile")
	}
	return c.JSON(customer)
}

// HandleGetCustomers lists active customers.
func (h *CustomerHandler) HandleGetCustomers(c *fiber.Ctx) error {
	customers, err := h.customers.FindAll(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve customers")
	}
	return c.JSON(customers)
}

// HandleGetCustomer returns one customer.
func (h *CustomerHandler) HandleGetCustomer(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	customer, err := h.customers.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve customer")
	}
	return c.JSON(customer)
}
