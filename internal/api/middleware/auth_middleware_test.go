package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Erfan-programmer/divix-cart/internal/api/middleware"
	"github.com/Erfan-programmer/divix-cart/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jwtKey = []byte("test-secret")

func signToken(t *testing.T, claims *models.Claims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(jwtKey)
	require.NoError(t, err)

	return signed
}

func protectedHandler(t *testing.T, calledOut *bool) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calledOut = true

		claims, ok := middleware.ClaimsFromContext(r.Context())
		assert.True(t, ok)
		assert.NotEqual(t, uuid.Nil, claims.UserID)

		token, ok := middleware.TokenFromContext(r.Context())
		assert.True(t, ok)
		assert.NotEmpty(t, token)

		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	t.Run("Success - Valid Token Passes Claims And Raw Token", func(t *testing.T) {
		// Arrange
		called := false

		claims := &models.Claims{
			UserID: uuid.New(),
			Email:  "user@example.com",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}

		req := httptest.NewRequest("POST", "/api/v1/cart/discount", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(protectedHandler(t, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, called)
	})

	t.Run("Failure - Missing Header", func(t *testing.T) {
		// Arrange
		called := false
		req := httptest.NewRequest("POST", "/api/v1/cart/discount", nil)
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(protectedHandler(t, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})

	t.Run("Failure - Malformed Header", func(t *testing.T) {
		// Arrange
		called := false
		req := httptest.NewRequest("POST", "/api/v1/cart/discount", nil)
		req.Header.Set("Authorization", "Token abc")
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(protectedHandler(t, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})

	t.Run("Failure - Expired Token", func(t *testing.T) {
		// Arrange
		called := false

		claims := &models.Claims{
			UserID: uuid.New(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}

		req := httptest.NewRequest("POST", "/api/v1/cart/discount", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(protectedHandler(t, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})

	t.Run("Failure - Wrong Signing Key", func(t *testing.T) {
		// Arrange
		called := false

		claims := &models.Claims{UserID: uuid.New()}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte("other-secret"))
		require.NoError(t, err)

		req := httptest.NewRequest("POST", "/api/v1/cart/discount", nil)
		req.Header.Set("Authorization", "Bearer "+signed)
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(protectedHandler(t, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})
}
