package validate

import (
	"testing"

	"github.com/heimu09/ApartXCleaning/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct_Valid(t *testing.T) {
	err := Struct(domain.LoginRequest{Email: "a@b.com", Password: "secret"})
	assert.NoError(t, err)
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	err := Struct(domain.RegisterRequest{Email: "not-an-email", Password: "short"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "field 'email' failed 'email'")
	assert.Contains(t, err.Error(), "field 'password' failed 'min'")
	assert.Contains(t, err.Error(), "field 'phone_number' failed 'required'")
}
