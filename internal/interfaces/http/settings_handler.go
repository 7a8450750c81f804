package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// SettingsHandler configuración de notificaciones de la organización.
type SettingsHandler struct {
	settings *reminder.SettingsResolver
}

// NewSettingsHandler construye el handler.
func NewSettingsHandler(settings *reminder.SettingsResolver) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get godoc
// @Summary      Obtener configuración de notificaciones
// @Tags         settings
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SettingsResponse
// @Router       /api/settings [get]
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	orgID := GetOrganizationID(c)
	s, err := h.settings.GetSettings(c.UserContext(), orgID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSettingsResponse(orgID, s))
}

// Save godoc
// @Summary      Guardar email de notificación (solo admin)
// @Tags         settings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SettingsRequest  true  "notification_email"
// @Success      200   {object}  dto.SettingsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/settings [put]
func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	var in dto.SettingsRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	actor := GetMembership(c)
	s, err := h.settings.SaveSettings(c.UserContext(), actor, in.NotificationEmail)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toSettingsResponse(actor.OrganizationID, s))
}

func toSettingsResponse(orgID string, s *entity.NotificationSetting) dto.SettingsResponse {
	out := dto.SettingsResponse{OrganizationID: orgID}
	if s != nil {
		updated := s.UpdatedAt
		out.NotificationEmail = s.NotificationEmail
		out.UpdatedAt = &updated
	}
	return out
}
