package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"user_id": 7,
		"email":   "user@example.com",
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(testSecret), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"userId": UserID(ctx), "admin": IsAdmin(ctx)})
	})
	r.GET("/admin", RequireAuth(testSecret), RequireAdmin(), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r := newRouter()

	w := get(r, "/me", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user")))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7,"admin":false}`, w.Body.String())

	w = get(r, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", signToken(t, jwt.SigningMethodHS256, []byte("other"), validClaims("user")))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "wrong key")

	expired := validClaims("user")
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	w = get(r, "/me", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "expired")

	noUser := validClaims("user")
	delete(noUser, "user_id")
	w = get(r, "/me", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noUser))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "missing user id")

	w = get(r, "/me", signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims("user")))
	assert.Equal(t, http.StatusUnauthorized, w.Code, "unexpected algorithm")
}

func TestRequireAdmin(t *testing.T) {
	r := newRouter()

	w := get(r, "/admin", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("user")))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(r, "/admin", signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("admin")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
