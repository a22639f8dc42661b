package handlers

import (
	"bytes"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"storefront/internal/export"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

// ProductHandler handles HTTP requests for products and their variants.
type ProductHandler struct {
	products *services.ProductService
	variants *services.VariantService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *services.ProductService, variants *services.VariantService, validate *validator.Validate) *ProductHandler {
	return &ProductHandler{
		products: products,
		variants: variants,
		validate: validate,
	}
}

// RegisterRoutes registers the product routes. auth must authenticate an
// admin; permissions are checked per route.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	view := middleware.RequirePermission(models.PermProductsView)
	edit := middleware.RequirePermission(models.PermProductsEdit)

	r := router.Group("/products")
	r.Get("/", h.HandleGetProducts)
	r.Get("/brands", h.HandleGetBrands)
	r.Get("/categories", h.HandleGetCategories)

	r.Get("/admin/all", auth, view, h.HandleGetProductsForAdmin)
	r.Get("/admin/export", auth, view, h.HandleExportProducts)
	r.Get("/admin/:id", auth, view, h.HandleGetProductForAdmin)
	r.Get("/admin/:id/variants", auth, view, h.HandleGetVariantsForAdmin)

	r.Get("/:id", h.HandleGetProduct)
	r.Get("/:id/variants", h.HandleGetVariants)

	r.Post("/", auth, edit, h.HandleCreateProduct)
	r.Put("/:id", auth, edit, h.HandleUpdateProduct)
	r.Delete("/:id", auth, edit, h.HandleDeleteProduct)
	r.Put("/:id/publish", auth, edit, h.HandlePublishProduct)
	r.Put("/:id/unpublish", auth, edit, h.HandleUnpublishProduct)

	r.Post("/:id/variants", auth, edit, h.HandleCreateVariant)
	r.Put("/:id/variants/:variantId", auth, edit, h.HandleUpdateVariant)
	r.Patch("/:id/variants/:variantId/stock", auth, edit, h.HandleAdjustStock)
	r.Delete("/:id/variants/:variantId", auth, edit, h.HandleDeleteVariant)
}

// HandleGetProducts lists visible products, optionally by brand or search term.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var (
		products []models.Product
		err      error
	)
	switch {
	case c.Query("brand") != "":
		products, err = h.products.FindByBrand(c.UserContext(), c.Query("brand"))
	case c.Query("search") != "":
		products, err = h.products.Search(c.UserContext(), c.Query("search"))
	default:
		products, err = h.products.FindAll(c.UserContext())
	}
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetBrands lists the brands of visible products.
func (h *ProductHandler) HandleGetBrands(c *fiber.Ctx) error {
	brands, err := h.products.GetAllBrands(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve brands")
	}
	return c.JSON(brands)
}

// HandleGetCategories lists the categories of visible products.
func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.products.GetAllCategories(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

// HandleGetProduct returns one visible product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleGetVariants lists the active variants of a visible product.
func (h *ProductHandler) HandleGetVariants(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	variants, err := h.products.GetProductVariants(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve variants")
	}
	return c.JSON(variants)
}

// HandleGetProductsForAdmin lists every product including drafts.
func (h *ProductHandler) HandleGetProductsForAdmin(c *fiber.Ctx) error {
	products, err := h.products.FindAllForAdmin(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleExportProducts streams every product as an xlsx workbook.
func (h *ProductHandler) HandleExportProducts(c *fiber.Ctx) error {
	products, err := h.products.FindAllForAdmin(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not export products")
	}
	var buf bytes.Buffer
	if err := export.WriteProducts(&buf, products); err != nil {
		return respondError(c, err, "Could not export products")
	}
	c.Attachment("products.xlsx")
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Send(buf.Bytes())
}

// HandleGetProductForAdmin returns a product in any state.
func (h *ProductHandler) HandleGetProductForAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.FindByIDForAdmin(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleGetVariantsForAdmin lists every variant of a product.
func (h *ProductHandler) HandleGetVariantsForAdmin(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	variants, err := h.products.GetProductVariantsForAdmin(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "Could not retrieve variants")
	}
	return c.JSON(variants)
}

// HandleCreateProduct creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in services.CreateProductInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	product, err := h.products.Create(c.UserContext(), actorOf(c), in)
	if err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct applies a partial update to a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.UpdateProductInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	product, err := h.products.Update(c.UserContext(), actorOf(c), id, in)
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct archives a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if _, err := h.products.Delete(c.UserContext(), actorOf(c), id); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}

// HandlePublishProduct publishes a product.
func (h *ProductHandler) HandlePublishProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.Publish(c.UserContext(), actorOf(c), id)
	if err != nil {
		return respondError(c, err, "Could not publish product")
	}
	return c.JSON(product)
}

// HandleUnpublishProduct moves a product back to draft.
func (h *ProductHandler) HandleUnpublishProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.Unpublish(c.UserContext(), actorOf(c), id)
	if err != nil {
		return respondError(c, err, "Could not unpublish product")
	}
	return c.JSON(product)
}

func variantIDs(c *fiber.Ctx) (uint64, uint64, error) {
	productID, err := paramID(c, "id")
	if err != nil {
		return 0, 0, err
	}
	variantID, err := paramID(c, "variantId")
	if err != nil {
		return 0, 0, err
	}
	return productID, variantID, nil
}

// HandleCreateVariant adds a color/size variant to a product.
func (h *ProductHandler) HandleCreateVariant(c *fiber.Ctx) error {
	productID, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var in services.CreateVariantInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	variant, err := h.variants.Create(c.UserContext(), actorOf(c), productID, in)
	if err != nil {
		return respondError(c, err, "Could not create variant")
	}
	return c.Status(fiber.StatusCreated).JSON(variant)
}

// HandleUpdateVariant applies a partial update to a variant.
func (h *ProductHandler) HandleUpdateVariant(c *fiber.Ctx) error {
	productID, variantID, err := variantIDs(c)
	if err != nil {
		return err
	}
	var in services.UpdateVariantInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	variant, err := h.variants.Update(c.UserContext(), actorOf(c), productID, variantID, in)
	if err != nil {
		return respondError(c, err, "Could not update variant")
	}
	return c.JSON(variant)
}

// HandleAdjustStock moves the stock of a variant by a signed delta.
func (h *ProductHandler) HandleAdjustStock(c *fiber.Ctx) error {
	productID, variantID, err := variantIDs(c)
	if err != nil {
		return err
	}
	var in services.AdjustStockInput
	if ok, err := bind(c, h.validate, &in); !ok {
		return err
	}
	variant, err := h.variants.AdjustStock(c.UserContext(), actorOf(c), productID, variantID, in.Delta)
	if err != nil {
		return respondError(c, err, "Could not adjust stock")
	}
	return c.JSON(variant)
}

// HandleDeleteVariant deactivates a variant.
func (h *ProductHandler) HandleDeleteVariant(c *fiber.Ctx) error {
	productID, variantID, err := variantIDs(c)
	if err != nil {
		return err
	}
	if err := h.variants.Delete(c.UserContext(), actorOf(c), productID, variantID); err != nil {
		return respondError(c, err, "Could not delete variant")
	}
	return c.JSON(fiber.Map{
		"message": "Variant deleted successfully",
	})
}
