// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"divvy/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cadence", validateCadence)
		_ = v.RegisterValidation("calc_type", validateCalcType)
		_ = v.RegisterValidation("item_category", validateItemCategory)
	}
}

// validateCadence checks that the value is a recognized cadence.
func validateCadence(fl validator.FieldLevel) bool {
	return models.Cadence(fl.Field().String()).Valid()
}

// validateCalcType checks that the value is a recognized calc type.
func validateCalcType(fl validator.FieldLevel) bool {
	return models.CalcType(fl.Field().String()).Valid()
}

// validateItemCategory checks that the value is a recognized budget item category.
func validateItemCategory(fl validator.FieldLevel) bool {
	return models.ItemCategory(fl.Field().String()).Valid()
}
