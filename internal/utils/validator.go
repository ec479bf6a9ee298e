package utils

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/studtest/quizbot/internal/models"
)

// ValidateQuestionType accepts the known question type tags. Anything
// else is rejected at load time; the grading engine itself tolerates
// unknown tags but a test author almost certainly made a typo.
func ValidateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionSingle,
		models.QuestionMatching,
		models.QuestionTFList,
		models.QuestionOrdering,
		models.QuestionFreeText,
		models.QuestionFreeTextExplain,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

// NewValidator creates a validator with all custom rules registered.
func NewValidator() *validator.Validate {
	validate := validator.New()
	RegisterCustomValidators(validate)
	return validate
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", ValidateQuestionType)

	// Report field names from json tags for better error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
