package validation

import (
	"reflect"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yigit/gradebook/internal/app/models"
)

// Validation limits
var (
	// GradeMaxPlaces is the number of fractional digits a grade may carry
	GradeMaxPlaces int32 = 2

	// MessageMaxRunes caps the length of a direct message
	MessageMaxRunes = 2000

	// PasswordMinLength applies to new accounts
	PasswordMinLength = 8
)

// ValidGrade reports whether d lies on the grading scale with at most two decimals
func ValidGrade(d decimal.Decimal) bool {
	if d.LessThan(models.MinGradeValue) || d.GreaterThan(models.MaxGradeValue) {
		return false
	}
	return d.Equal(d.Truncate(GradeMaxPlaces))
}

// ValidMessageText reports whether an already trimmed message body is acceptable
func ValidMessageText(text string) bool {
	return text != "" && utf8.RuneCountInString(text) <= MessageMaxRunes
}

// Register installs the custom tags on v:
//
//	grade            decimal.Decimal within [2, 6] with at most two decimals
//	attendancestatus Absent, Late or Excused
//	weekday          Monday..Friday
func Register(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	rules := map[string]validator.Func{
		"grade":            validateGrade,
		"attendancestatus": validateAttendanceStatus,
		"weekday":          validateWeekday,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// RegisterWithGin installs the custom tags on gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return Register(v)
}

// decimalValue exposes decimals to validator as their canonical string
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func validateGrade(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return ValidGrade(d)
}

func validateAttendanceStatus(fl validator.FieldLevel) bool {
	return models.AttendanceStatus(fl.Field().String()).Valid()
}

func validateWeekday(fl validator.FieldLevel) bool {
	return models.WeekdayIndex(fl.Field().String()) >= 0
}
