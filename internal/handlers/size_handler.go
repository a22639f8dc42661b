package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// SizeHandler handles HTTP requests for sizes.
type SizeHandler struct {
	sizes    *services.SizeService
	validate *validator.Validate
}

// NewSizeHandler creates a new SizeHandler.
func NewSizeHandler(sizes *services.SizeService, validate *validator.Validate) *SizeHandler {
	return &SizeHandler{
		sizes:    sizes,
		validate: validate,
	}
}

// RegisterRoutes registers the size routes. Mutations need catalog.edit.
func (h *SizeHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	edit := middleware.RequirePermission(models.PermCatalogEdit)

	r := router.Group("/sizes")
	r.Get("/", h.HandleGetSizes)
	r.Get("/:id", h.HandleGetSize)

	r.Post("/reorder/:category", auth, edit, h.HandleReorder)
	r.Post("/", auth, edit, h.HandleCreateSize)
	r.Put("/:id", auth, edit, h.HandleUpdateSize)
	r.Delete("/:id", auth, edit, h.HandleDeleteSize)
}

// HandleGetSizes lists active sizes, optionally of one category.
func (h *SizeHandler) HandleGetSizes(c *fiber.Ctx) error {
	var (
		sizes []models.Size
		err   error
	)
	if category := c.Query("category"); category != "" {
		sizes, err = h.sizes.FindByCategory(c.UserContext(), models.SizeCategory(category))
	} else {
		sizes, err = h.sizes.FindAll(c.UserContext())
	}
	if err != nil {
		return respondError(c, err, "Could not retrieve sizes")
	}
	return c.JSON(sizes)
}

// HandleGetSize returns one active size.
func (h *SizeHandler) HandleGetSize(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	size, err := h.sizes.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve size")
	}
	return c.JSON(size)
}

// HandleCreateSize creates a size.
func (h *SizeHandler) HandleCreateSize(c *fiber.Ctx) error {
	var in services.CreateSizeInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	size, err := h.sizes.Create(c.UserContext(), actorOf(c), in)
	if err != nil {
		return respondError(c, err, "Could not create size")
	}
	return c.Status(fiber.StatusCreated).JSON(size)
}

// HandleUpdateSize applies a partial update to a size.
func (h *SizeHandler) HandleUpdateSize(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.UpdateSizeInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	size, err := h.sizes.Update(c.UserContext(), actorOf(c), id, in)
	if err != nil {
		return respondError(c, err, "Could not update size")
	}
	return c.JSON(size)
}

// HandleDeleteSize deactivates a size.
func (h *SizeHandler) HandleDeleteSize(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.sizes.Delete(c.UserContext(), actorOf(c), id); err != nil {
		return respondError(c, err, "Could not delete size")
	}
	return c.JSON(fiber.Map{
		"message": "Size deleted successfully",
	})
}

// HandleReorder applies new sort orders within a category. The body is a
// JSON array of {id, sortOrder}; the response lists updated and skipped ids.
func (h *SizeHandler) HandleReorder(c *fiber.Ctx) error {
	var items []services.ReorderItem
	if err := c.BodyParser(&items); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	for i := range items {
		if ok, err := check(c, h.validate, &items[i]); !ok {
			return err
		}
	}

	result, err := h.sizes.Reorder(c.UserContext(), actorOf(c), models.SizeCategory(c.Params("category")), items)
	if err != nil {
		return respondError(c, err, "Could not reorder sizes")
	}
	return c.JSON(result)
}
