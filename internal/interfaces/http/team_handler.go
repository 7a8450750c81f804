package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/membership"
)

// TeamHandler gestión de miembros e invitaciones pendientes de la organización.
type TeamHandler struct {
	reconciler *membership.Reconciler
}

// NewTeamHandler construye el handler.
func NewTeamHandler(reconciler *membership.Reconciler) *TeamHandler {
	return &TeamHandler{reconciler: reconciler}
}

// ListMembers godoc
// @Summary      Listar miembros de la organización
// @Tags         team
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TeamMemberResponse
// @Router       /api/team/members [get]
func (h *TeamHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.reconciler.ListMembers(c.UserContext(), GetMembership(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.TeamMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, dto.TeamMemberResponse{
			ID:        m.ID,
			UserID:    m.UserID,
			Role:      m.Role,
			Name:      m.Name,
			Email:     m.Email,
			CreatedAt: m.CreatedAt,
		})
	}
	return c.JSON(out)
}

// UpdateRole godoc
// @Summary      Cambiar rol de un miembro (solo admin)
// @Tags         team
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID de la membresía"
// @Param        body  body  dto.UpdateMemberRoleRequest  true  "role"
// @Success      200   {object}  dto.TeamMemberResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/team/members/{id}/role [put]
func (h *TeamHandler) UpdateRole(c *fiber.Ctx) error {
	var in dto.UpdateMemberRoleRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	m, err := h.reconciler.UpdateMemberRole(c.UserContext(), GetMembership(c), c.Params("id"), in.Role)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TeamMemberResponse{ID: m.ID, UserID: m.UserID, Role: m.Role, CreatedAt: m.CreatedAt})
}

// RemoveMember godoc
// @Summary      Quitar un miembro de la organización (solo admin)
// @Tags         team
// @Security     Bearer
// @Param        id   path  string  true  "ID de la membresía"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/team/members/{id} [delete]
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	if err := h.reconciler.RemoveMember(c.UserContext(), GetMembership(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListInvitations godoc
// @Summary      Invitaciones pendientes de la organización
// @Tags         team
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.InvitationResponse
// @Router       /api/team/invitations [get]
func (h *TeamHandler) ListInvitations(c *fiber.Ctx) error {
	invs, err := h.reconciler.ListPendingInvitations(c.UserContext(), GetMembership(c))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.InvitationResponse, 0, len(invs))
	for _, i := range invs {
		out = append(out, toInvitationResponse(i))
	}
	return c.JSON(out)
}

// RevokeInvitation godoc
// @Summary      Revocar invitación pendiente (solo admin)
// @Tags         team
// @Security     Bearer
// @Param        id   path  string  true  "ID de la invitación"
// @Success      204
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/team/invitations/{id} [delete]
func (h *TeamHandler) RevokeInvitation(c *fiber.Ctx) error {
	if err := h.reconciler.RevokeInvitation(c.UserContext(), GetMembership(c), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
