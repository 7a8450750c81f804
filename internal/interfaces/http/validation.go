package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/domain/policy"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return policy.ValidatePassword(fl.Field().String()) == nil
	})
	return v
}

// parseAndValidate decodifica el cuerpo en out y aplica sus etiquetas validate.
// Devuelve la respuesta 400 ya escrita como error no nil si algo falla.
func parseAndValidate(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badBody(c)
	}
	if err := validate.Struct(out); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s es requerido", field))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s no es un email válido", field))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s debe ser uno de: %s", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s supera el máximo (%s)", field, fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s no alcanza el mínimo (%s)", field, fe.Param()))
		case "password":
			msgs = append(msgs, fmt.Sprintf("%s debe incluir mayúscula, minúscula y número", field))
		case "datetime":
			msgs = append(msgs, fmt.Sprintf("%s debe tener formato %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s inválido (%s)", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
