package handlers_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/handlers"
	"storefront/internal/models"
)

func TestNewValidator(t *testing.T) {
	var v *validator.Validate
	require.NotPanics(t, func() { v = handlers.NewValidator() })

	type input struct {
		HexCode     string   `json:"hexCode" validate:"required,hexcode"`
		Permissions []string `json:"permissions" validate:"omitempty,dive,permission"`
	}
	assert.NoError(t, v.Struct(input{HexCode: "#1a2B3c", Permissions: []string{models.PermCatalogEdit}}))

	err := v.Struct(input{HexCode: "1a2b3c", Permissions: []string{"orders.delete"}})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Len(t, verrs, 2)
	assert.Equal(t, "hexCode", verrs[0].Field())
	assert.Equal(t, "hexcode", verrs[0].Tag())
	assert.Equal(t, "permission", verrs[1].Tag())
}
