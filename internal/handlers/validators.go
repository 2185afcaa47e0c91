package handlers

import (
	"bust-order-backend/internal/models"
	"bust-order-backend/internal/services"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the order form tags to gin's validator:
// "bustsize" accepts the orderable heights, "filament" the known colors.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("bustsize", func(fl validator.FieldLevel) bool {
		return services.ValidBustSize(int(fl.Field().Int()))
	}); err != nil {
		return err
	}
	return v.RegisterValidation("filament", func(fl validator.FieldLevel) bool {
		return models.FilamentColor(fl.Field().String()).Valid()
	})
}
