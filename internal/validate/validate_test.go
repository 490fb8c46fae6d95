package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
)

type sample struct {
	ServiceSlug string `json:"serviceSlug" validate:"required,slug"`
	CountryCode string `json:"countryCode" validate:"required,countryorall"`
	Email       string `json:"email" validate:"omitempty,email"`
}

func TestPatterns(t *testing.T) {
	assert.True(t, Slug("youtube-premium"))
	assert.False(t, Slug("YouTube"))
	assert.False(t, Slug(""))
	assert.True(t, Country("us"))
	assert.False(t, Country("USA"))
	assert.True(t, CountryOrAll("all"))
	assert.True(t, CountryOrAll("KR"))
	assert.False(t, CountryOrAll("A1"))
}

func TestStruct(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(sample{ServiceSlug: "netflix", CountryCode: "ALL"}))

	err := v.Struct(sample{ServiceSlug: "Netflix!", CountryCode: "KR"})
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.StatusCode)
	assert.Equal(t, "invalid service slug", appErr.Message)

	err = v.Struct(sample{ServiceSlug: "netflix", CountryCode: "KR", Email: "nope"})
	assert.ErrorContains(t, err, "email must be a valid email address")
}
