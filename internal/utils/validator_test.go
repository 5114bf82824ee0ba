// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type slugPayload struct {
	Slug string `validate:"required,slug"`
}

type statusPayload struct {
	Status string `validate:"required,order_status"`
}

func TestValidateSlug(t *testing.T) {
	cases := []struct {
		slug  string
		valid bool
	}{
		{"linen-shirt", true},
		{"tee-2024", true},
		{"a", false},
		{"Linen-Shirt", false},
		{"linen--shirt", false},
		{"-linen", false},
	}

	for _, tc := range cases {
		err := ValidateStruct(&slugPayload{Slug: tc.slug})
		if tc.valid {
			assert.NoError(t, err, tc.slug)
		} else {
			assert.Error(t, err, tc.slug)
		}
	}
}

func TestValidateOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "shipped", "delivered", "cancelled"} {
		assert.NoError(t, ValidateStruct(&statusPayload{Status: s}), s)
	}
	assert.Error(t, ValidateStruct(&statusPayload{Status: "archived"}))
}

func TestGetValidationErrors(t *testing.T) {
	err := ValidateStruct(&statusPayload{})
	errs := GetValidationErrors(err)
	assert.Len(t, errs, 1)
	assert.Equal(t, "status", errs[0].Field)
	assert.Equal(t, "required", errs[0].Tag)
}
