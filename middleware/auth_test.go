package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VConnct/service/gateway"
	"VConnct/tools/security"
)

var testSecret = []byte("middleware-test-secret")

type fakeStore struct {
	idents map[string]*gateway.Identity
	err    error
}

func (f *fakeStore) FindIdentityByID(_ context.Context, id string) (*gateway.Identity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.idents[id], nil
}

func authRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", Auth(gateway.NewSessionValidator(testSecret, store, nil)), func(c *gin.Context) {
		c.JSON(http.StatusOK, CurrentUser(c))
	})
	return r
}

func doRequest(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthNoCookie(t *testing.T) {
	r := authRouter(&fakeStore{})
	w := doRequest(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "No Token Provided")
}

func TestAuthInvalidToken(t *testing.T) {
	r := authRouter(&fakeStore{})
	w := doRequest(r, "jwt=garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid Token")
}

func TestAuthUserNotFound(t *testing.T) {
	token, _, err := security.Generate(security.Options{Secret: testSecret, TTL: time.Hour}, "ghost")
	require.NoError(t, err)

	r := authRouter(&fakeStore{idents: map[string]*gateway.Identity{}})
	w := doRequest(r, "jwt="+token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

func TestAuthStoreFailure(t *testing.T) {
	token, _, err := security.Generate(security.Options{Secret: testSecret, TTL: time.Hour}, "u1")
	require.NoError(t, err)

	r := authRouter(&fakeStore{err: errors.New("db down")})
	w := doRequest(r, "jwt="+token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthSuccess(t *testing.T) {
	token, _, err := security.Generate(security.Options{Secret: testSecret, TTL: time.Hour}, "u1")
	require.NoError(t, err)

	store := &fakeStore{idents: map[string]*gateway.Identity{
		"u1": {ID: "u1", FullName: "User One"},
	}}
	w := doRequest(authRouter(store), "jwt="+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fullName":"User One"`)
}
