package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Erfan-programmer/divix-cart/internal/api/middleware"
	appErrors "github.com/Erfan-programmer/divix-cart/internal/errors"
	"github.com/Erfan-programmer/divix-cart/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

// SessionHeader identifies the storefront session a cart belongs to. Every
// cart route requires it.
const SessionHeader = "X-Session-ID"

func sessionFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {

	session := r.Header.Get(SessionHeader)

	if session == "" {
		logger := middleware.LoggerFromContext(r.Context())
		logger.Warn("Missing session header", "endpoint", r.URL.Path)
		response.Error(w, appErrors.BadRequestError(fmt.Sprintf("%s header is required", SessionHeader)))

		return "", false
	}

	return session, true
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	defer r.Body.Close()

	logger := middleware.LoggerFromContext(r.Context())

	err := json.NewDecoder(r.Body).Decode(dest)

	if errors.Is(err, io.EOF) {
		logger.Warn("Empty request body", "endpoint", r.URL.Path)
		response.Error(w, appErrors.BadRequestError("Request body cannot be empty"))
		return err
	}

	if err != nil {
		logger.Error("Failed to decode request body", "error", err.Error(), "endpoint", r.URL.Path)
		response.Error(w, appErrors.BadRequestError("Invalid JSON format"))
		return err
	}

	return nil
}

func validateStruct(w http.ResponseWriter, r *http.Request, validate *validator.Validate, data interface{}) bool {
	if err := validate.Struct(data); err != nil {

		logger := middleware.LoggerFromContext(r.Context())

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			logger.Warn("User input validation failed", "error", validationErrs.Error())
			response.ValidationError(w, validationErrs)
		} else {
			logger.Error("Unexpected validation error", "error", err.Error())
			response.Error(w, appErrors.InternalError("Validation could not run"))
		}

		return false
	}

	return true
}
