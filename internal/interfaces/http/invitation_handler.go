package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/membership"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// profileLookup resuelve el nombre visible del usuario autenticado.
type profileLookup interface {
	GetByUser(ctx context.Context, userID string) (*entity.Profile, error)
}

// InvitationHandler emisión, consulta y aceptación de invitaciones.
type InvitationHandler struct {
	reconciler *membership.Reconciler
	profiles   profileLookup
}

// NewInvitationHandler construye el handler.
func NewInvitationHandler(reconciler *membership.Reconciler, profiles profileLookup) *InvitationHandler {
	return &InvitationHandler{reconciler: reconciler, profiles: profiles}
}

// identity arma la identidad del usuario del token. Si el perfil no se puede leer se sigue
// sin nombre: el reconciliador usa la parte local del email.
func (h *InvitationHandler) identity(c *fiber.Ctx) membership.Identity {
	id := membership.Identity{UserID: GetUserID(c), Email: GetEmail(c)}
	p, err := h.profiles.GetByUser(c.UserContext(), id.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", id.UserID).Msg("no se pudo leer el perfil")
		return id
	}
	if p != nil {
		id.Name = p.Name
		if id.Email == "" {
			id.Email = p.Email
		}
	}
	return id
}

// Create godoc
// @Summary      Invitar a un email a la organización (solo admin)
// @Tags         invitations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvitationRequest  true  "email, role"
// @Success      201   {object}  dto.CreateInvitationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invitations [post]
func (h *InvitationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvitationRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	res, err := h.reconciler.IssueInvitation(c.UserContext(), h.identity(c), in.Email, in.Role)
	if err != nil {
		return writeError(c, err)
	}
	inv := toInvitationResponse(res.Invitation)
	inv.Token = res.Invitation.Token
	return c.Status(fiber.StatusCreated).JSON(dto.CreateInvitationResponse{
		Success:    true,
		Invitation: inv,
		AcceptURL:  res.AcceptURL,
		EmailSent:  res.EmailSent,
	})
}

// Info godoc
// @Summary      Datos públicos de una invitación vigente
// @Tags         invitations
// @Produce      json
// @Param        token  path  string  true  "Token de la invitación"
// @Success      200    {object}  dto.InvitationInfoResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/invitations/{token} [get]
func (h *InvitationHandler) Info(c *fiber.Ctx) error {
	d, err := h.reconciler.InvitationInfo(c.UserContext(), c.Params("token"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.InvitationInfoResponse{
		Email:            d.Email,
		Role:             d.Role,
		OrganizationName: d.OrganizationName,
		ExpiresAt:        d.ExpiresAt,
	})
}

// Accept godoc
// @Summary      Aceptar invitación con el usuario autenticado
// @Description  Si el usuario está solo en su organización de registro, se transfieren sus datos y la organización se elimina.
// @Tags         invitations
// @Security     Bearer
// @Produce      json
// @Param        token  path  string  true  "Token de la invitación"
// @Success      200    {object}  dto.AcceptInvitationResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Router       /api/invitations/{token}/accept [post]
func (h *InvitationHandler) Accept(c *fiber.Ctx) error {
	res, err := h.reconciler.AcceptInvitation(c.UserContext(), c.Params("token"), h.identity(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AcceptInvitationResponse{
		Success:          true,
		OrganizationID:   res.OrganizationID,
		OrganizationName: res.OrganizationName,
		Role:             res.Role,
	})
}

func toInvitationResponse(i *entity.Invitation) dto.InvitationResponse {
	return dto.InvitationResponse{
		ID:             i.ID,
		Email:          i.Email,
		Role:           i.Role,
		OrganizationID: i.OrganizationID,
		ExpiresAt:      i.ExpiresAt,
		AcceptedAt:     i.AcceptedAt,
		CreatedAt:      i.CreatedAt,
	}
}
