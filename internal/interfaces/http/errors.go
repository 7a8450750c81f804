package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/policy"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings traduce errores de dominio a HTTP. El primer match gana.
var errorMappings = []errorMapping{
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{policy.ErrInvalidPolicy, fiber.StatusBadRequest, "VALIDATION"},
	{policy.ErrInvalidEmail, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrInvitationInvalid, fiber.StatusNotFound, "INVITATION_INVALID"},
	{domain.ErrAlreadyInOrganization, fiber.StatusConflict, "ALREADY_IN_ORGANIZATION"},
	{domain.ErrSeatLimitReached, fiber.StatusConflict, "SEAT_LIMIT_REACHED"},
	{domain.ErrAlreadyInvited, fiber.StatusConflict, "ALREADY_INVITED"},
	{domain.ErrAlreadyMember, fiber.StatusConflict, "ALREADY_MEMBER"},
	{domain.ErrNotAuthorized, fiber.StatusForbidden, "NOT_AUTHORIZED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrNoMembership, fiber.StatusForbidden, "NO_MEMBERSHIP"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUserNotFound, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrRecipientNotConfigured, fiber.StatusBadRequest, "RECIPIENT_NOT_CONFIGURED"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{ports.ErrMailerUnconfigured, fiber.StatusServiceUnavailable, "MAILER_UNCONFIGURED"},
}

// classify devuelve status y código para err. ok = false si no hay mapeo (error interno).
func classify(err error) (status int, code string, ok bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code, true
		}
	}
	var de *ports.DeliveryError
	if errors.As(err, &de) {
		return fiber.StatusBadGateway, "DELIVERY_FAILED", true
	}
	return fiber.StatusInternalServerError, "INTERNAL", false
}

// writeError responde con el status y código correspondientes a err.
// Errores no mapeados se registran y responden 500.
func writeError(c *fiber.Ctx, err error) error {
	status, code, ok := classify(err)
	if !ok {
		log.Error().Err(err).Str("path", c.Path()).Msg("error interno")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
