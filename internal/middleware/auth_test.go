package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/menuwise/backend/internal/types"
)

type mockValidator struct{ mock.Mock }

func (v *mockValidator) ValidateToken(token string) (*types.TokenClaims, error) {
	args := v.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TokenClaims), args.Error(1)
}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			c.String(http.StatusOK, "guest")
			return
		}
		c.String(http.StatusOK, identity.Email)
	})
	return r
}

func serve(r http.Handler, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	validator := &mockValidator{}
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: uuid.New(), Email: "a@example.com"}, nil)
	validator.On("ValidateToken", "bad").Return(nil, errors.New("invalid token"))
	r := newAuthRouter(AuthMiddleware(validator))

	w := serve(r, "Bearer good")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a@example.com", w.Body.String())

	for _, header := range []string{"", "Bearer bad", "Token good", "Bearer"} {
		w := serve(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	validator := &mockValidator{}
	validator.On("ValidateToken", "good").Return(&types.TokenClaims{UserID: uuid.New(), Email: "a@example.com"}, nil)
	validator.On("ValidateToken", "bad").Return(nil, errors.New("invalid token"))
	r := newAuthRouter(OptionalAuthMiddleware(validator))

	w := serve(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "guest", w.Body.String())

	w = serve(r, "Bearer good")
	assert.Equal(t, "a@example.com", w.Body.String())

	w = serve(r, "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
