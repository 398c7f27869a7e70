package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfileValidate(t *testing.T) {
	assert.ErrorIs(t, Profile{Name: " a "}.Validate(), ErrNameTooShort)
	assert.NoError(t, Profile{Name: "Al"}.Validate())
}

func TestValidatePasswordChange(t *testing.T) {
	tests := []struct {
		current, next, confirm string
		want                   error
	}{
		{"", "secret1", "secret1", ErrCurrentPassword},
		{"old", "short", "short", ErrPasswordTooShort},
		{"old", "secret1", "secret2", ErrPasswordsMismatch},
		{"old", "secret1", "secret1", nil},
	}
	for _, tt := range tests {
		err := ValidatePasswordChange(tt.current, tt.next, tt.confirm)
		if tt.want == nil {
			assert.NoError(t, err)
			continue
		}
		assert.ErrorIs(t, err, tt.want)
	}
}
