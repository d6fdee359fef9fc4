package http

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// bindRequest hace binding (form o JSON según Content-Type) y devuelve la
// lista completa de campos inválidos, no solo el primero.
func bindRequest(c *gin.Context, req any) (fields []string, ok bool) {
	err := c.ShouldBind(req)
	if err == nil {
		return nil, true
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fields = append(fields, strings.ToLower(fieldErr.Field()))
		}
	}
	return fields, false
}
