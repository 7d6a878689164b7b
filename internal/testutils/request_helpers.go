package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/Erfan-programmer/divix-cart/internal/api/middleware"
	"github.com/Erfan-programmer/divix-cart/internal/models"
	"github.com/google/uuid"
)

// CreateTestRequest builds a request carrying a discarding request logger
// and the optional path params the handlers read through PathValue.
func CreateTestRequest(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)

	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.WithValue(req.Context(), middleware.LoggerKey, logger)

	return req.WithContext(ctx)
}

// CreateAuthenticatedTestRequest additionally carries verified claims and a
// raw bearer token, the way the auth middleware leaves them.
func CreateAuthenticatedTestRequest(method, target string, body io.Reader, token string, pathParams map[string]string) *http.Request {
	req := CreateTestRequest(method, target, body, pathParams)

	claims := &models.Claims{UserID: uuid.New(), Email: "test@example.com"}

	ctx := context.WithValue(req.Context(), middleware.UserContextKey, claims)
	ctx = context.WithValue(ctx, middleware.TokenContextKey, token)

	return req.WithContext(ctx)
}
