package configs

import (
	"sync"

	"github.com/NethermindEth/juno/core/felt"
	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

// felt accepts decimal or 0x-prefixed hex strings that parse as field elements.
func validateFelt(fl validator.FieldLevel) bool {
	value, ok := fl.Field().Interface().(string)
	if !ok || value == "" {
		return false
	}

	_, err := new(felt.Felt).SetString(value)
	return err == nil
}

// Validator returns a singleton that can be used to validate configuration structs
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New()

		if err := v.RegisterValidation("felt", validateFelt); err != nil {
			panic("failed to register validation: " + err.Error())
		}
	})

	return v
}
