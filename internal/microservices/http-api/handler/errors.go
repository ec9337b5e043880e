package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"foodgram/internal/microservices/http-api/service"
	"foodgram/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respondError maps a service error to its HTTP status and writes the error body.
// Errors without a known kind are logged and hidden behind a generic 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "fields": verr.Fields})
		return
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// respondBindError renders a request binding failure. Validator failures are reported
// per JSON field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[jsonFieldName(fe.Field())] = bindingMessage(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// imageError renders an image decoding failure as a field error.
func imageError(c *gin.Context, err error) {
	msg := "invalid image"
	switch {
	case errors.Is(err, storage.ErrImageTooLarge):
		msg = "image is too large"
	case errors.Is(err, storage.ErrUnsupportedImage):
		msg = "unsupported image type"
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "fields": gin.H{"image": msg}})
}

var jsonFieldNames = map[string]string{
	"Email":           "email",
	"Username":        "username",
	"FirstName":       "first_name",
	"LastName":        "last_name",
	"Password":        "password",
	"NewPassword":     "new_password",
	"CurrentPassword": "current_password",
}

func jsonFieldName(field string) string {
	if name, ok := jsonFieldNames[field]; ok {
		return name
	}
	return field
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "max":
		return "ensure this field has no more than " + fe.Param() + " characters"
	case "username_chars":
		return "username may contain only letters, digits and @/./+/-/_"
	default:
		return "invalid value"
	}
}
