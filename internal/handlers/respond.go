package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"
)

var hexCodePattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

var knownPermissions = map[string]bool{
	models.PermProductsView:  true,
	models.PermProductsEdit:  true,
	models.PermCatalogEdit:   true,
	models.PermAdminsManage:  true,
	models.PermCustomersView: true,
}

// NewValidator returns a validator that reports JSON field names and knows
// the hexcode and permission rules.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "hexcode", func(fl validator.FieldLevel) bool {
		return hexCodePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "permission", func(fl validator.FieldLevel) bool {
		return knownPermissions[fl.Field().String()]
	})
	return v
}

// mustRegister adds a custom rule and panics if the validator rejects it.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// bind parses the request body into dest and validates it. When it returns
// false a 400 response has already been written and err is what the handler
// should return.
func bind(c *fiber.Ctx, validate *validator.Validate, dest interface{}) (bool, error) {
	if err := c.BodyParser(dest); err != nil {
		log.WithError(err).WithField("path", c.Path()).Debug("Error parsing request body")
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	return check(c, validate, dest)
}

// check validates v and writes the 400 response on failure.
func check(c *fiber.Ctx, validate *validator.Validate, v interface{}) (bool, error) {
	err := validate.Struct(v)
	if err == nil {
		return true, nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status its kind maps to.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := statusFor(err)
	entry := log.WithError(err).WithFields(log.Fields{"path": c.Path(), "status": status})
	if status >= fiber.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Debug(message)
	}
	return c.Status(status).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}

// paramID parses the named path parameter as a positive numeric id. The
// returned *fiber.Error is rendered by the app error handler.
func paramID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s '%s'", name, c.Params(name)))
	}
	return id, nil
}

// actorOf returns the authenticated admin as a service actor.
func actorOf(c *fiber.Ctx) services.Actor {
	if admin := middleware.CurrentAdmin(c); admin != nil {
		return services.Actor{ID: admin.ID, Username: admin.Username}
	}
	return services.Actor{}
}

// ErrorHandler renders errors returned from handlers and middleware that
// did not write their own response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"message": fe.Message,
		})
	}
	return respondError(c, err, "Internal server error")
}

// queryUint reads a non-negative integer query parameter; anything else
// reads as zero.
func queryUint(c *fiber.Ctx, key string) uint64 {
	v := c.QueryInt(key)
	if v < 0 {
		return 0
	}
	return uint64(v)
}
