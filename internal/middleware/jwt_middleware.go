package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"storefront/internal/models"
)

// Locals keys set by the authentication middleware.
const (
	LocalAdmin    = "admin"
	LocalCustomer = "customer"
)

// AdminValidator resolves an admin bearer token.
type AdminValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.Admin, error)
}

// CustomerAuthenticator resolves a customer bearer token.
type CustomerAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Customer, error)
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *fiber.Ctx) (string, string) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return "", "Authorization header is required"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "") {
		return "", "Authorization header format must be 'Bearer <token>'"
	}
	return parts[1], ""
}

// AdminAuthRequired rejects requests without a valid admin token and stores
// the active admin in the request locals.
func AdminAuthRequired(admins AdminValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearerToken(c)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": problem,
			})
		}

		admin, err := admins.ValidateToken(c.UserContext(), token)
		if err != nil {
			log.WithError(err).WithField("path", c.Path()).Debug("Admin token rejected")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalAdmin, admin)
		return c.Next()
	}
}

// OptionalAdmin stores the admin in the request locals when a valid admin
// token is present and lets the request through either way.
func OptionalAdmin(admins AdminValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, problem := bearerToken(c); problem == "" {
			if admin, err := admins.ValidateToken(c.UserContext(), token); err == nil {
				c.Locals(LocalAdmin, admin)
			}
		}
		return c.Next()
	}
}

// RequirePermission must run after AdminAuthRequired.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin := CurrentAdmin(c)
		if admin == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication required",
			})
		}
		if !admin.HasPermission(perm) {
			log.WithFields(log.Fields{"admin_id": admin.ID, "permission": perm}).Warn("Permission denied")
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Insufficient permissions",
				"error":   "missing permission " + perm,
			})
		}
		return c.Next()
	}
}

// CurrentAdmin returns the authenticated admin, or nil.
func CurrentAdmin(c *fiber.Ctx) *models.Admin {
	admin, _ := c.Locals(LocalAdmin).(*models.Admin)
	return admin
}

// CustomerAuthRequired rejects requests without a valid customer token.
func CustomerAuthRequired(customers CustomerAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, problem := bearerToken(c)
		if problem != "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": problem,
			})
		}

		customer, err := customers.Authenticate(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		c.Locals(LocalCustomer, customer)
		return c.Next()
	}
}

// CurrentCustomer returns the authenticated customer, or nil.
func CurrentCustomer(c *fiber.Ctx) *models.Customer {
	customer, _ := c.Locals(LocalCustomer).(*models.Customer)
	return customer
}
