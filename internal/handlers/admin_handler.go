package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
)

// AdminHandler handles HTTP requests for admin accounts and the audit log.
type AdminHandler struct {
	admins   *services.AdminService
	audit    *services.AuditService
	validate *validator.Validate
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admins *services.AdminService, audit *services.AuditService, validate *validator.Validate) *AdminHandler {
	return &AdminHandler{
		admins:   admins,
		audit:    audit,
		validate: validate,
	}
}

// RegisterRoutes registers the admin routes. Registration is open only
// while no admin exists; optional resolves the caller's token when present.
// throttle guards the login endpoint.
func (h *AdminHandler) RegisterRoutes(router fiber.Router, auth, optional, throttle fiber.Handler) {
	manage := middleware.RequirePermission(models.PermAdminsManage)

	r := router.Group("/admin")
	r.Post("/register", optional, h.HandleRegister)
	r.Post("/login", throttle, h.HandleLogin)
	r.Get("/audit", auth, manage, h.HandleGetAudit)
	r.Get("/", auth, manage, h.HandleGetAdmins)
	r.Get("/:id", auth, manage, h.HandleGetAdmin)
	r.Put("/:id", auth, manage, h.HandleUpdateAdmin)
	r.Delete("/:id", auth, manage, h.HandleDeleteAdmin)
}

// HandleRegister creates an admin account and returns a token for it.
func (h *AdminHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterAdminInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	auth, err := h.admins.Register(c.UserContext(), middleware.CurrentAdmin(c), in)
	if err != nil {
		return respondError(c, err, "Registration failed")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Admin created successfully",
		"token":     auth.Token,
		"expiresIn": auth.ExpiresIn,
		"admin":     auth.Admin,
	})
}

// HandleLogin checks admin credentials and issues a token.
func (h *AdminHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.LoginInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	auth, err := h.admins.Login(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, "Authentication failed")
	}
	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"token":     auth.Token,
		"expiresIn": auth.ExpiresIn,
		"admin":     auth.Admin,
	})
}

// HandleGetAdmins lists the active admins.
func (h *AdminHandler) HandleGetAdmins(c *fiber.Ctx) error {
	admins, err := h.admins.FindAll(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve admins")
	}
	return c.JSON(admins)
}

// HandleGetAdmin returns one active admin.
func (h *AdminHandler) HandleGetAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	admin, err := h.admins.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve admin")
	}
	return c.JSON(admin)
}

// HandleUpdateAdmin changes an admin's profile, role or permissions.
func (h *AdminHandler) HandleUpdateAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.UpdateAdminInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	admin, err := h.admins.Update(c.UserContext(), actorOf(c), id, in)
	if err != nil {
		return respondError(c, err, "Could not update admin")
	}
	return c.JSON(fiber.Map{
		"message": "Admin updated successfully",
		"admin":   admin,
	})
}

// HandleDeleteAdmin deactivates an admin.
func (h *AdminHandler) HandleDeleteAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.admins.Delete(c.UserContext(), actorOf(c), id); err != nil {
		return respondError(c, err, "Could not delete admin")
	}
	return c.JSON(fiber.Map{
		"message": "Admin deleted successfully",
	})
}

// HandleGetAudit lists audit entries, newest first. Supported query
// parameters: resource, resourceId, actorId, action, limit.
func (h *AdminHandler) HandleGetAudit(c *fiber.Ctx) error {
	filter := repositories.AuditFilter{
		Resource:   c.Query("resource"),
		ResourceID: queryUint(c, "resourceId"),
		ActorID:    queryUint(c, "actorId"),
		Action:     c.Query("action"),
		Limit:      c.QueryInt("limit"),
	}
	entries, err := h.audit.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Could not retrieve audit log")
	}
	return c.JSON(entries)
}
