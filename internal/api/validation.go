package api

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/lalith-99/teamchat/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the custom "role" binding tag to gin's validator.
// It accepts admin, member and guest.
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		err = v.RegisterValidation("role", validateRole)
	})
	return err
}

func validateRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).Valid()
}
