package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name    string   `json:"name" validate:"notblank,max=255"`
	LogoURL string   `json:"logo_url" validate:"required,url"`
	Cost    *float64 `json:"cost" validate:"omitempty,gte=0"`
}

func TestValidateStruct(t *testing.T) {
	v := NewValidator()

	cost := 10.0
	require.NoError(t, v.ValidateStruct(sampleRequest{Name: "INTEC", LogoURL: "https://x.do/logo.png", Cost: &cost}))

	neg := -1.0
	err := v.ValidateStruct(sampleRequest{Name: "   ", LogoURL: "not a url", Cost: &neg})
	require.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Equal(t, "name is required", fields["name"])
	assert.Equal(t, "logo_url must be a valid URL", fields["logo_url"])
	assert.Equal(t, "cost must be greater than or equal to 0", fields["cost"])
}

func TestValidatePassword(t *testing.T) {
	ok, errs := ValidatePassword("secret1234")
	assert.True(t, ok)
	assert.Empty(t, errs)

	ok, errs = ValidatePassword("short")
	assert.False(t, ok)
	assert.Len(t, errs, 2)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "PUCMM", SanitizeString("  PUC\x00MM \n"))
}
