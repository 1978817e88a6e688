package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/cocodas/prierboard/services"
)

// RegisterValidators adds the board's custom binding tags to gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation("post_category", func(fl validator.FieldLevel) bool {
		_, err := services.ParseCategory(fl.Field().String())
		return err == nil
	})
}
