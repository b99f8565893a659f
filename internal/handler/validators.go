package handler

import (
	"sync"

	"repairdesk/internal/model"
	"repairdesk/internal/money"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the "money" and "phone" binding tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("money", validateMoney)
		_ = v.RegisterValidation("phone", validatePhone)
	})
}

func validateMoney(fl validator.FieldLevel) bool {
	_, err := money.Parse(fl.FieldName(), fl.Field().String())
	return err == nil
}

func validatePhone(fl validator.FieldLevel) bool {
	return model.PhonePattern.MatchString(fl.Field().String())
}
