package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	errs "VConnct/tools/errs"
)

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		email    string
		password string
		wantCode int
	}{
		{"valid", "John Doe", "john@example.com", "secret1", 0},
		{"short name", "Jo", "john@example.com", "secret1", 40001},
		{"whitespace name", "   a   ", "john@example.com", "secret1", 40001},
		{"bad email", "John Doe", "not-an-email", "secret1", 40002},
		{"email without tld", "John Doe", "john@example", "secret1", 40002},
		{"short password", "John Doe", "john@example.com", "12345", 40003},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignup(tt.fullName, tt.email, tt.password)
			if tt.wantCode == 0 {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantCode, errs.Code(err))
		})
	}
}
