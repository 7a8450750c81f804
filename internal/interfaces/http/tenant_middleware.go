package http

import (
	"context"
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// LocalMembership key de c.Locals con la membresía actual del usuario.
const LocalMembership = "membership"

// membershipLookup contrato mínimo para resolver la organización del usuario.
// Lo implementa cualquier repository.MembershipRepository.
type membershipLookup interface {
	GetByUser(ctx context.Context, userID string) (*entity.Membership, error)
}

// RequireMembership resuelve la membresía del usuario del token y la deja en c.Locals.
// Debe usarse DESPUÉS de AuthMiddleware (necesita LocalUserID).
//
// Comportamiento:
//   - 401 si no hay user_id en el contexto.
//   - 403 NO_MEMBERSHIP si el usuario no pertenece a ninguna organización.
//   - 503 si falla la consulta.
func RequireMembership(lookup membershipLookup) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "user_id no encontrado en el token",
			})
		}
		m, err := lookup.GetByUser(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Code:    "MEMBERSHIP_CHECK_FAILED",
				Message: "no se pudo verificar la organización, intente más tarde",
			})
		}
		if m == nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Code:    "NO_MEMBERSHIP",
				Message: "el usuario no pertenece a ninguna organización",
			})
		}
		c.Locals(LocalMembership, m)
		return c.Next()
	}
}

// RequireRole permite el paso solo si el rol de la membresía está en roles.
// Debe usarse DESPUÉS de RequireMembership.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := GetMembership(c)
		if m == nil {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "NO_MEMBERSHIP", Message: "membresía requerida"})
		}
		if !slices.Contains(roles, m.Role) {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "rol sin permiso para esta acción"})
		}
		return c.Next()
	}
}

// GetMembership devuelve la membresía resuelta por RequireMembership.
func GetMembership(c *fiber.Ctx) *entity.Membership {
	m, _ := c.Locals(LocalMembership).(*entity.Membership)
	return m
}

// GetOrganizationID devuelve la organización de la membresía actual.
func GetOrganizationID(c *fiber.Ctx) string {
	if m := GetMembership(c); m != nil {
		return m.OrganizationID
	}
	return ""
}
