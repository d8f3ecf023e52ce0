package domain

import (
	"datemerge/internal/adapters/duckling"
	"datemerge/internal/core/grain"
	"datemerge/internal/core/temporal"
	"datemerge/internal/platform/net/http/bind"
)

func init() {
	_ = bind.RegisterValidation("grain", "{0} is not a known grain", func(fl bind.FieldLevel) bool {
		_, err := grain.Parse(fl.Field().String())
		return err == nil
	})
	_ = bind.RegisterValidation("dimension", "{0} is not a supported dimension", func(fl bind.FieldLevel) bool {
		return duckling.Supported(temporal.Dimension(fl.Field().String()))
	})
}
