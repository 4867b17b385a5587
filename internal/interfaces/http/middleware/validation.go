package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/smartfertilizer/backend/internal/domain/shared"
	"github.com/smartfertilizer/backend/internal/interfaces/http/dto"
)

// MsgInvalidBody is returned when a request body cannot be decoded
const MsgInvalidBody = "Invalid request body"

// SetupValidator makes validator errors report JSON field names
func SetupValidator() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	}
}

// FormatValidationErrors converts validator errors into field errors, one per field
func FormatValidationErrors(err error) []shared.FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make([]shared.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fe := shared.FieldError{
			Field:   e.Field(),
			Message: getValidationMessage(e),
		}
		// never echo secrets back
		if !strings.Contains(strings.ToLower(e.Field()), "password") {
			if v := e.Value(); v != nil && !reflect.ValueOf(v).IsZero() {
				fe.Value = v
			}
		}
		details = append(details, fe)
	}
	return details
}

// HandleBindError writes the response for a failed ShouldBind call
func HandleBindError(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(MsgBodyTooLarge))
		return
	}

	details := FormatValidationErrors(err)
	if len(details) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(MsgInvalidBody))
		return
	}

	validationErr := shared.NewValidationError(details...)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(validationErr.Message, details...))
}

// getValidationMessage returns a human-readable validation message
func getValidationMessage(e validator.FieldError) string {
	field := e.Field()
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Please provide a valid email"
	case "min":
		if e.Kind() == reflect.String {
			return field + " must be at least " + e.Param() + " characters"
		}
		return field + " must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return field + " must be at most " + e.Param() + " characters"
		}
		return field + " must be at most " + e.Param()
	case "latitude":
		return "Latitude must be between -90 and 90"
	case "longitude":
		return "Longitude must be between -180 and 180"
	case "uuid":
		return field + " must be a valid id"
	case "oneof":
		return field + " must be one of: " + e.Param()
	default:
		return field + " is invalid"
	}
}
