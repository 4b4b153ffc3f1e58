package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkbase/inkbase/pkg/errors"
)

func TestValidateUsername(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateUsername("alice"))
	assert.NoError(t, v.ValidateUsername("bob_42"))
	assert.ErrorIs(t, v.ValidateUsername("ab"), errors.ErrInvalidUsername)
	assert.ErrorIs(t, v.ValidateUsername("has space"), errors.ErrInvalidUsername)
	assert.ErrorIs(t, v.ValidateUsername("way_too_long_username_here"), errors.ErrInvalidUsername)
}

func TestValidateEmail(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateEmail("alice@example.com"))
	assert.ErrorIs(t, v.ValidateEmail(""), errors.ErrInvalidEmail)
	assert.ErrorIs(t, v.ValidateEmail("not-an-email"), errors.ErrInvalidEmail)
	assert.ErrorIs(t, v.ValidateEmail("missing@tld"), errors.ErrInvalidEmail)
}

func TestValidatePassword(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidatePassword("Str0ng!Passw0rd"))
	assert.ErrorIs(t, v.ValidatePassword("short"), errors.ErrWeakPassword)
	assert.ErrorIs(t, v.ValidatePassword("alllowercase1234!"), errors.ErrWeakPassword)
	assert.ErrorIs(t, v.ValidatePassword("NoSpecialChars12"), errors.ErrWeakPassword)
}

func TestValidateTitle(t *testing.T) {
	v := New()

	assert.NoError(t, v.ValidateTitle("A note"))
	assert.ErrorIs(t, v.ValidateTitle("   "), errors.ErrValidation)
}

func TestSanitizeString(t *testing.T) {
	v := New()

	assert.Equal(t, "clean", v.SanitizeString("  clean\x00  "))
}
