package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// ImageRequest names one image of a color.
type ImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}

// TagRequest names one tag of a color.
type TagRequest struct {
	Tag string `json:"tag" validate:"required,max=50"`
}

// ColorHandler handles HTTP requests for colors.
type ColorHandler struct {
	colors   *services.ColorService
	products *services.ProductService
	validate *validator.Validate
}

// NewColorHandler creates a new ColorHandler.
func NewColorHandler(colors *services.ColorService, products *services.ProductService, validate *validator.Validate) *ColorHandler {
	return &ColorHandler{
		colors:   colors,
		products: products,
		validate: validate,
	}
}

// RegisterRoutes registers the color routes. Mutations need catalog.edit.
func (h *ColorHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	edit := middleware.RequirePermission(models.PermCatalogEdit)

	r := router.Group("/colors")
	r.Get("/", h.HandleGetColors)
	r.Get("/product/:productId", h.HandleGetProductColors)
	r.Get("/:id", h.HandleGetColor)

	r.Post("/", auth, edit, h.HandleCreateColor)
	r.Put("/:id", auth, edit, h.HandleUpdateColor)
	r.Delete("/:id", auth, edit, h.HandleDeleteColor)
	r.Post("/:id/images", auth, edit, h.HandleAddImage)
	r.Delete("/:id/images", auth, edit, h.HandleRemoveImage)
	r.Put("/:id/primary-image", auth, edit, h.HandleSetPrimaryImage)
	r.Post("/:id/tags", auth, edit, h.HandleAddTag)
	r.Delete("/:id/tags", auth, edit, h.HandleRemoveTag)
}

// HandleGetColors lists the active colors.
func (h *ColorHandler) HandleGetColors(c *fiber.Ctx) error {
	colors, err := h.colors.FindAll(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve colors")
	}
	return c.JSON(colors)
}

// HandleGetProductColors lists the colors a visible product is offered in.
func (h *ColorHandler) HandleGetProductColors(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return err
	}
	colors, err := h.products.GetProductColors(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err, "Could not retrieve colors")
	}
	return c.JSON(colors)
}

// HandleGetColor returns one active color.
func (h *ColorHandler) HandleGetColor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	color, err := h.colors.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve color")
	}
	return c.JSON(color)
}

// HandleCreateColor creates a color.
func (h *ColorHandler) HandleCreateColor(c *fiber.Ctx) error {
	var in services.CreateColorInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	color, err := h.colors.Create(c.UserContext(), actorOf(c), in)
	if err != nil {
		return respondError(c, err, "Could not create color")
	}
	return c.Status(fiber.StatusCreated).JSON(color)
}

// HandleUpdateColor applies a partial update to a color.
func (h *ColorHandler) HandleUpdateColor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.UpdateColorInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	color, err := h.colors.Update(c.UserContext(), actorOf(c), id, in)
	if err != nil {
		return respondError(c, err, "Could not update color")
	}
	return c.JSON(color)
}

// HandleDeleteColor deactivates a color.
func (h *ColorHandler) HandleDeleteColor(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.colors.Delete(c.UserContext(), actorOf(c), id); err != nil {
		return respondError(c, err, "Could not delete color")
	}
	return c.JSON(fiber.Map{
		"message": "Color deleted successfully",
	})
}

// colorEdit is the signature shared by the image and tag operations.
type colorEdit func(ctx context.Context, actor services.Actor, id uint64, value string) (*models.Color, error)

func (h *ColorHandler) handleImage(c *fiber.Ctx, apply colorEdit, failure string) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in ImageRequest
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	color, err := apply(c.UserContext(), actorOf(c), id, in.ImageURL)
	if err != nil {
		return respondError(c, err, failure)
	}
	return c.JSON(color)
}

func (h *ColorHandler) handleTag(c *fiber.Ctx, apply colorEdit, failure string) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in TagRequest
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	color, err := apply(c.UserContext(), actorOf(c), id, in.Tag)
	if err != nil {
		return respondError(c, err, failure)
	}
	return c.JSON(color)
}

// HandleAddImage adds an image to a color.
func (h *ColorHandler) HandleAddImage(c *fiber.Ctx) error {
	return h.handleImage(c, h.colors.AddImage, "Could not add image")
}

// HandleRemoveImage removes an image from a color.
func (h *ColorHandler) HandleRemoveImage(c *fiber.Ctx) error {
	return h.handleImage(c, h.colors.RemoveImage, "Could not remove image")
}

// HandleSetPrimaryImage picks the primary image among the color's images.
func (h *ColorHandler) HandleSetPrimaryImage(c *fiber.Ctx) error {
	return h.handleImage(c, h.colors.SetPrimaryImage, "Could not set primary image")
}

// HandleAddTag adds a tag to a color.
func (h *ColorHandler) HandleAddTag(c *fiber.Ctx) error {
	return h.handleTag(c, h.colors.AddTag, "Could not add tag")
}

// HandleRemoveTag removes a tag from a color.
func (h *ColorHandler) HandleRemoveTag(c *fiber.Ctx) error {
	return h.handleTag(c, h.colors.RemoveTag, "Could not remove tag")
}
