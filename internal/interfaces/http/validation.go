package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/homecare-fulfillment/internal/domain"
)

var validate = newValidator()

// newValidator usa los nombres de json/query en los mensajes de error.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	return v
}

// bindJSON parsea el body y valida los tags. Cualquier falla es VALIDATION_ERROR.
func bindJSON(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return domain.ErrValidation.With("cuerpo inválido")
	}
	return validateStruct(out)
}

// bindQuery parsea el query string y valida los tags.
func bindQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return domain.ErrValidation.With("parámetros inválidos")
	}
	return validateStruct(out)
}

func validateStruct(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrValidation.With(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+": "+validationMessage(fe))
	}
	return domain.ErrValidation.With(strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "obligatorio"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "datetime":
		return "fecha inválida (AAAA-MM-DD)"
	default:
		return "valor inválido"
	}
}
