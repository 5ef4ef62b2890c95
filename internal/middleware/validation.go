package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/gradebook/internal/app/models/dto"
)

// BindJSON binds the request body into obj and answers 400 on failure
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		HandleValidationError(c, err)
		return false
	}
	return true
}

// BindQuery binds query parameters into obj and answers 400 on failure
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		HandleValidationError(c, err)
		return false
	}
	return true
}

// HandleValidationError answers 400 listing every failed field when err comes from the validator
func HandleValidationError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format").
			WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	fields := dto.NewValidationErrors()
	for _, e := range validationErrs {
		fields.AddError(e.Field(), formatValidationError(e))
	}
	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
		WithDetails(fields.Errors)
	if len(fields.Errors) == 1 {
		errorDetail = errorDetail.WithField(fields.Errors[0].Field)
	}
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "grade":
		return e.Field() + " must be between 2.00 and 6.00 with at most two decimals"
	case "attendancestatus":
		return e.Field() + " must be Absent, Late or Excused"
	case "weekday":
		return e.Field() + " must be a school day from Monday to Friday"
	case "datetime":
		return e.Field() + " must match " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
