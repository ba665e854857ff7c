package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VConnct/tools/security"
)

var testSecret = []byte("test-secret")

type fakeStore struct {
	idents map[string]*Identity
	err    error
}

func (f *fakeStore) FindIdentityByID(_ context.Context, id string) (*Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.idents[id], nil
}

type fakeChecker struct {
	revoked map[string]bool
	err     error
}

func (f *fakeChecker) IsRevoked(_ context.Context, hash string) (bool, error) {
	return f.revoked[hash], f.err
}

func signToken(t *testing.T, userID string, ttl time.Duration) string {
	t.Helper()
	token, _, err := security.Generate(security.Options{Secret: testSecret, TTL: ttl}, userID)
	require.NoError(t, err)
	return token
}

func TestTokenFromCookie(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty header", "", ""},
		{"only session cookie", "jwt=abc", "abc"},
		{"among other cookies", "theme=dark; jwt=abc; lang=en", "abc"},
		{"no session cookie", "theme=dark; lang=en", ""},
		{"similar name", "jwt2=nope; jwt=abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TokenFromCookie(tt.header))
		})
	}
}

func TestValidateNoToken(t *testing.T) {
	v := NewSessionValidator(testSecret, &fakeStore{}, nil)
	_, err := v.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestValidateInvalidToken(t *testing.T) {
	v := NewSessionValidator(testSecret, &fakeStore{}, nil)
	_, err := v.Validate(context.Background(), "jwt=not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	token, _, err := security.Generate(security.Options{Secret: []byte("other-secret")}, "u1")
	require.NoError(t, err)

	v := NewSessionValidator(testSecret, &fakeStore{}, nil)
	_, err = v.Validate(context.Background(), "jwt="+token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpiredToken(t *testing.T) {
	token := signToken(t, "u1", -time.Minute)

	v := NewSessionValidator(testSecret, &fakeStore{}, nil)
	_, err := v.Validate(context.Background(), "jwt="+token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateUserNotFound(t *testing.T) {
	token := signToken(t, "ghost", time.Hour)

	v := NewSessionValidator(testSecret, &fakeStore{idents: map[string]*Identity{}}, nil)
	_, err := v.Validate(context.Background(), "jwt="+token)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateStoreFailure(t *testing.T) {
	token := signToken(t, "u1", time.Hour)

	v := NewSessionValidator(testSecret, &fakeStore{err: errors.New("db down")}, nil)
	_, err := v.Validate(context.Background(), "jwt="+token)
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestValidateRevokedToken(t *testing.T) {
	token := signToken(t, "u1", time.Hour)
	store := &fakeStore{idents: map[string]*Identity{"u1": {ID: "u1"}}}
	checker := &fakeChecker{revoked: map[string]bool{security.HashToken(token): true}}

	v := NewSessionValidator(testSecret, store, checker)
	_, err := v.Validate(context.Background(), "jwt="+token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRevocationFailsOpen(t *testing.T) {
	token := signToken(t, "u1", time.Hour)
	store := &fakeStore{idents: map[string]*Identity{"u1": {ID: "u1", FullName: "User One"}}}
	checker := &fakeChecker{err: errors.New("redis down")}

	v := NewSessionValidator(testSecret, store, checker)
	ident, err := v.Validate(context.Background(), "jwt="+token)
	require.NoError(t, err)
	assert.Equal(t, "u1", ident.ID)
}

func TestValidateSuccess(t *testing.T) {
	token := signToken(t, "u1", time.Hour)
	store := &fakeStore{idents: map[string]*Identity{
		"u1": {ID: "u1", FullName: "User One", Email: "one@example.com"},
	}}

	v := NewSessionValidator(testSecret, store, nil)
	ident, err := v.Validate(context.Background(), "theme=dark; jwt="+token)
	require.NoError(t, err)
	assert.Equal(t, "u1", ident.ID)
	assert.Equal(t, "User One", ident.FullName)
}
