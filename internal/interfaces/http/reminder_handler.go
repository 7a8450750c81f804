package http

import (
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/reminder"
)

// HeaderCronSecret cabecera con el secreto compartido del disparador programado.
const HeaderCronSecret = "X-Cron-Secret"

// ReminderHandler disparadores de recordatorios: pasada programada y envíos bajo demanda.
type ReminderHandler struct {
	scheduler  *reminder.Scheduler
	cronSecret string
}

// NewReminderHandler construye el handler. Con cronSecret vacío el endpoint programado queda deshabilitado.
func NewReminderHandler(scheduler *reminder.Scheduler, cronSecret string) *ReminderHandler {
	return &ReminderHandler{scheduler: scheduler, cronSecret: cronSecret}
}

// Run godoc
// @Summary      Ejecutar pasada automática de recordatorios
// @Description  Pensado para un cron externo. organization_id opcional limita la pasada a un tenant.
// @Tags         reminders
// @Accept       json
// @Produce      json
// @Param        X-Cron-Secret  header  string                   true   "Secreto del cron"
// @Param        body           body    dto.RunRemindersRequest  false  "organization_id"
// @Success      200  {object}  dto.RunRemindersResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.RunRemindersResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/reminders/run [post]
func (h *ReminderHandler) Run(c *fiber.Ctx) error {
	if h.cronSecret == "" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "CRON_DISABLED", Message: "REMINDER_CRON_SECRET no configurado"})
	}
	got := c.Get(HeaderCronSecret)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.cronSecret)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "secreto de cron inválido"})
	}
	var in dto.RunRemindersRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}

	result, err := h.scheduler.RunReminderPass(c.UserContext(), reminder.PassOptions{OrganizationID: strings.TrimSpace(in.OrganizationID)})
	out := toRunResponse(result)
	if err != nil {
		var se *reminder.StoreError
		if !errors.As(err, &se) {
			return writeError(c, err)
		}
		log.Error().Err(err).Msg("pasada de recordatorios abortada")
		out.Error = err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(out)
	}
	return c.JSON(out)
}

// Send godoc
// @Summary      Envío de recordatorio bajo demanda
// @Description  mode=test envía un digest de ejemplo (recipient opcional); mode=manual envía el recordatorio de policy_id al destinatario configurado.
// @Tags         reminders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendReminderRequest  true  "mode, recipient, policy_id"
// @Success      200   {object}  dto.SendReminderResponse
// @Failure      400   {object}  dto.SendReminderResponse
// @Failure      404   {object}  dto.SendReminderResponse
// @Failure      502   {object}  dto.SendReminderResponse
// @Router       /api/reminders/send [post]
func (h *ReminderHandler) Send(c *fiber.Ctx) error {
	var in dto.SendReminderRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	orgID := GetOrganizationID(c)

	var (
		res reminder.TriggerResult
		err error
	)
	switch in.Mode {
	case dto.SendModeTest:
		res, err = h.scheduler.SendTest(c.UserContext(), orgID, in.Recipient)
	case dto.SendModeManual:
		if strings.TrimSpace(in.PolicyID) == "" {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "policy_id es requerido en modo manual"})
		}
		res, err = h.scheduler.SendManual(c.UserContext(), orgID, in.PolicyID)
	}
	out := dto.SendReminderResponse{SentCount: res.SentCount, Recipient: res.Recipient}
	if err != nil {
		status, code, ok := classify(err)
		if !ok {
			log.Error().Err(err).Str("org_id", orgID).Str("mode", in.Mode).Msg("envío bajo demanda fallido")
		}
		out.Code = code
		out.Error = err.Error()
		return c.Status(status).JSON(out)
	}
	return c.JSON(out)
}

func toRunResponse(r reminder.PassResult) dto.RunRemindersResponse {
	out := dto.RunRemindersResponse{
		SentCount: r.SentCount(),
		Sent:      nonNil(r.Sent),
		Skipped:   nonNil(r.Skipped),
		Errors:    make([]dto.ReminderPolicyError, 0, len(r.Errors)),
		Error:     r.ErrorSummary(),
	}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, dto.ReminderPolicyError{PolicyID: e.PolicyID, OrganizationID: e.OrganizationID, Reason: e.Reason})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
