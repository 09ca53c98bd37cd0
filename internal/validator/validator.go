// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"spendlens/internal/models"
)

// benchmarkRegex matches benchmark identifiers such as "national_average".
var benchmarkRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{0,63}$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("expense_category", validateExpenseCategory)
		_ = v.RegisterValidation("benchmark", validateBenchmark)
	}
}

// validateExpenseCategory accepts an exact member of the category set.
func validateExpenseCategory(fl validator.FieldLevel) bool {
	_, ok := models.ParseCategory(fl.Field().String())
	return ok
}

func validateBenchmark(fl validator.FieldLevel) bool {
	return benchmarkRegex.MatchString(fl.Field().String())
}
