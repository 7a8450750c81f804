// Package reminder orquesta las pasadas de recordatorios de renovación: selección de pólizas
// pendientes, reclamo condicional (deduplicación), construcción del digest y entrega.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	rules "github.com/jhoicas/policyminders-api/internal/domain/reminder"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

// Motivos registrados en PassResult.Errors.
const (
	ReasonRecipientNotConfigured = "recipient not configured"
	ReasonDeliveryFailed         = "delivery failed"
	ReasonStore                  = "store error"
	ReasonLock                   = "lock error"
)

const sampleLimit = 3

// Config parámetros de envío.
type Config struct {
	Location *time.Location // zona para "hoy"; nil = UTC
	From     string
	FromName string
}

// PassOptions limita la pasada a una organización; vacío = todas.
type PassOptions struct {
	OrganizationID string
}

// PolicyError una póliza que no pudo procesarse en la pasada.
type PolicyError struct {
	PolicyID       string
	OrganizationID string
	Reason         string
}

// PassResult resultado de una pasada. Cada póliza candidata aparece en exactamente una lista.
type PassResult struct {
	Sent    []string
	Skipped []string
	Errors  []PolicyError
}

// TriggerResult resultado de un envío de prueba o manual.
type TriggerResult struct {
	SentCount int
	Recipient string
}

// StoreError fallo del almacén al listar candidatas; aborta la pasada completa.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// Scheduler ejecuta pasadas de recordatorios y envíos bajo demanda.
type Scheduler struct {
	policies repository.PolicyRepository
	settings *SettingsResolver
	mailer   ports.Mailer
	locker   ports.Locker
	clock    ports.Clock
	cfg      Config
	log      zerolog.Logger
}

// NewScheduler construye el scheduler. locker puede ser nil (sin candado por organización).
func NewScheduler(
	policies repository.PolicyRepository,
	settings *SettingsResolver,
	mailer ports.Mailer,
	locker ports.Locker,
	clock ports.Clock,
	cfg Config,
	log zerolog.Logger,
) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Scheduler{
		policies: policies,
		settings: settings,
		mailer:   mailer,
		locker:   locker,
		clock:    clock,
		cfg:      cfg,
		log:      log.With().Str("component", "reminder_scheduler").Logger(),
	}
}

// now se trunca a microsegundos para que coincida con la precisión de timestamptz
// (ReleaseReminders compara por igualdad).
func (s *Scheduler) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// Today fecha de calendario actual en la zona configurada.
func (s *Scheduler) Today() time.Time {
	return rules.DateOf(s.now(), s.cfg.Location)
}

// RunReminderPass envía un digest por organización con las pólizas que vencen dentro de su
// anticipación configurada y aún no recibieron recordatorio hoy. Los grupos se aíslan entre sí:
// un fallo de entrega se reporta en Errors y la póliza queda libre para la siguiente pasada.
func (s *Scheduler) RunReminderPass(ctx context.Context, opts PassOptions) (PassResult, error) {
	var result PassResult
	now := s.now()
	today := rules.DateOf(now, s.cfg.Location)
	log := s.log.With().Str("today", today.Format("2006-01-02")).Logger()

	candidates, err := s.policies.ListReminderCandidates(ctx, today, s.cfg.Location, opts.OrganizationID)
	if err != nil {
		log.Error().Err(err).Msg("error listando pólizas candidatas")
		return result, &StoreError{Op: "listar pólizas candidatas", Err: err}
	}
	due := rules.FilterDue(candidates, today, s.cfg.Location)
	groups, orgIDs := rules.GroupByOrganization(due)
	log.Info().Int("policies", len(due)).Int("organizations", len(orgIDs)).Msg("pasada de recordatorios iniciada")

	for i, orgID := range orgIDs {
		if ctx.Err() != nil {
			for _, pending := range orgIDs[i:] {
				result.Skipped = append(result.Skipped, policyIDs(groups[pending])...)
			}
			log.Warn().Err(ctx.Err()).Int("organizations_pending", len(orgIDs)-i).Msg("pasada interrumpida; se reintenta en la próxima")
			break
		}
		s.processGroup(ctx, orgID, groups[orgID], now, today, &result)
	}

	log.Info().
		Int("sent", len(result.Sent)).
		Int("skipped", len(result.Skipped)).
		Int("errors", len(result.Errors)).
		Msg("pasada de recordatorios finalizada")
	return result, nil
}

func (s *Scheduler) processGroup(ctx context.Context, orgID string, group []*entity.Policy, now, today time.Time, result *PassResult) {
	log := s.log.With().Str("org_id", orgID).Logger()

	recipient, err := s.settings.GetRecipient(ctx, orgID)
	if err != nil {
		reason := ReasonStore
		if errors.Is(err, domain.ErrRecipientNotConfigured) {
			reason = ReasonRecipientNotConfigured
			log.Warn().Int("policies", len(group)).Msg("organización sin email de notificación; grupo omitido")
		} else {
			log.Error().Err(err).Msg("error resolviendo destinatario")
		}
		result.Errors = append(result.Errors, groupErrors(orgID, group, reason)...)
		return
	}

	if s.locker != nil {
		unlock, ok, err := s.locker.TryLock(ctx, "reminders:"+orgID)
		if err != nil {
			log.Error().Err(err).Msg("error tomando candado de organización")
			result.Errors = append(result.Errors, groupErrors(orgID, group, ReasonLock)...)
			return
		}
		if !ok {
			log.Info().Msg("otra pasada procesa esta organización; grupo omitido")
			result.Skipped = append(result.Skipped, policyIDs(group)...)
			return
		}
		defer unlock()
	}

	claimedIDs, err := s.policies.ClaimReminders(ctx, policyIDs(group), now, today, s.cfg.Location)
	if err != nil {
		log.Error().Err(err).Msg("error reclamando pólizas")
		result.Errors = append(result.Errors, groupErrors(orgID, group, ReasonStore)...)
		return
	}
	claimed, lost := splitClaimed(group, claimedIDs)
	result.Skipped = append(result.Skipped, policyIDs(lost)...)
	if len(claimed) == 0 {
		log.Info().Msg("pólizas ya reclamadas por otra pasada")
		return
	}

	release := func() {
		claims := make([]repository.ReminderClaim, 0, len(claimed))
		for _, p := range claimed {
			claims = append(claims, repository.ReminderClaim{PolicyID: p.ID, Previous: p.ReminderSentAt})
		}
		// La liberación no debe perderse porque el contexto de la pasada se canceló.
		if err := s.policies.ReleaseReminders(context.WithoutCancel(ctx), claims, now); err != nil {
			log.Error().Err(err).Strs("policy_ids", policyIDs(claimed)).Msg("error liberando reclamo; las pólizas quedan marcadas")
		}
	}

	digest, err := rules.BuildDigest(claimed, rules.ModeAutomatic)
	if err != nil {
		release()
		log.Error().Err(err).Msg("error construyendo digest")
		result.Errors = append(result.Errors, groupErrors(orgID, claimed, err.Error())...)
		return
	}

	err = s.mailer.Send(ctx, ports.Message{
		To:       recipient,
		From:     s.cfg.From,
		FromName: s.cfg.FromName,
		Subject:  digest.Subject,
		HTMLBody: digest.Body,
	})
	switch {
	case err == nil:
		result.Sent = append(result.Sent, policyIDs(claimed)...)
		log.Info().Str("recipient", recipient).Int("policies", len(claimed)).Msg("recordatorio enviado")
	case errors.Is(err, ports.ErrMailerUnconfigured):
		release()
		result.Skipped = append(result.Skipped, policyIDs(claimed)...)
		log.Warn().Str("subject", digest.Subject).Str("recipient", recipient).Msg("correo no configurado; recordatorio registrado sin enviar")
	default:
		release()
		log.Error().Err(err).Str("recipient", recipient).Msg("error enviando recordatorio")
		result.Errors = append(result.Errors, groupErrors(orgID, claimed, ReasonDeliveryFailed+": "+err.Error())...)
	}
}

// SendTest envía un digest de prueba con las tres pólizas más próximas a vencer de la organización
// (o una póliza de ejemplo si no tiene). No modifica reminder_sent_at.
// Con recipient vacío se usa el destinatario configurado de la organización.
func (s *Scheduler) SendTest(ctx context.Context, organizationID, recipient string) (TriggerResult, error) {
	recipient = entity.NormalizeEmail(recipient)
	if recipient == "" {
		r, err := s.settings.GetRecipient(ctx, organizationID)
		if err != nil {
			return TriggerResult{}, err
		}
		recipient = r
	}
	result := TriggerResult{Recipient: recipient}

	policies, err := s.policies.ListEarliestExpiring(ctx, organizationID, sampleLimit)
	if err != nil {
		return result, fmt.Errorf("listar pólizas de ejemplo: %w", err)
	}
	if len(policies) == 0 {
		policies = []*entity.Policy{samplePolicy(s.Today())}
	}
	digest, err := rules.BuildDigest(policies, rules.ModeTest)
	if err != nil {
		return result, err
	}
	if err := s.send(ctx, recipient, digest); err != nil {
		return result, err
	}
	s.log.Info().Str("org_id", organizationID).Str("recipient", recipient).Msg("email de prueba enviado")
	result.SentCount = 1
	return result, nil
}

// SendManual envía el recordatorio de una póliza concreta sin aplicar el filtro de vencimiento.
// No modifica reminder_sent_at.
func (s *Scheduler) SendManual(ctx context.Context, organizationID, policyID string) (TriggerResult, error) {
	p, err := s.policies.GetByID(ctx, organizationID, policyID)
	if err != nil {
		return TriggerResult{}, fmt.Errorf("obtener póliza: %w", err)
	}
	if p == nil {
		return TriggerResult{}, domain.ErrNotFound
	}
	recipient, err := s.settings.GetRecipient(ctx, organizationID)
	if err != nil {
		return TriggerResult{}, err
	}
	result := TriggerResult{Recipient: recipient}
	digest, err := rules.BuildDigest([]*entity.Policy{p}, rules.ModeAutomatic)
	if err != nil {
		return result, err
	}
	if err := s.send(ctx, recipient, digest); err != nil {
		return result, err
	}
	s.log.Info().Str("org_id", organizationID).Str("policy_id", policyID).Str("recipient", recipient).Msg("recordatorio manual enviado")
	result.SentCount = 1
	return result, nil
}

func (s *Scheduler) send(ctx context.Context, to string, d rules.Digest) error {
	return s.mailer.Send(ctx, ports.Message{
		To:       to,
		From:     s.cfg.From,
		FromName: s.cfg.FromName,
		Subject:  d.Subject,
		HTMLBody: d.Body,
	})
}

func samplePolicy(today time.Time) *entity.Policy {
	count := 50
	return &entity.Policy{
		ID:               "test-sample-id",
		ClientName:       "Sample Client",
		ClientStatus:     entity.ClientStatusExisting,
		Line:             entity.LineMedical,
		EndDate:          today.AddDate(0, 0, entity.DefaultReminderLeadDays),
		Count:            &count,
		InsurerName:      "Sample Insurance Co.",
		ChannelType:      entity.ChannelDirect,
		ContactName:      "John Doe",
		ContactEmail:     "john.doe@example.com",
		ContactPhone:     "+966 50 123 4567",
		ReminderLeadDays: entity.DefaultReminderLeadDays,
	}
}

func policyIDs(policies []*entity.Policy) []string {
	ids := make([]string, 0, len(policies))
	for _, p := range policies {
		ids = append(ids, p.ID)
	}
	return ids
}

func groupErrors(orgID string, policies []*entity.Policy, reason string) []PolicyError {
	out := make([]PolicyError, 0, len(policies))
	for _, p := range policies {
		out = append(out, PolicyError{PolicyID: p.ID, OrganizationID: orgID, Reason: reason})
	}
	return out
}

func splitClaimed(group []*entity.Policy, claimedIDs []string) (claimed, lost []*entity.Policy) {
	set := make(map[string]struct{}, len(claimedIDs))
	for _, id := range claimedIDs {
		set[id] = struct{}{}
	}
	for _, p := range group {
		if _, ok := set[p.ID]; ok {
			claimed = append(claimed, p)
		} else {
			lost = append(lost, p)
		}
	}
	return claimed, lost
}

// SentCount número de pólizas incluidas en digests entregados.
func (r PassResult) SentCount() int { return len(r.Sent) }

// ErrorSummary une los motivos de error en una sola línea para respuestas y logs.
func (r PassResult) ErrorSummary() string {
	if len(r.Errors) == 0 {
		return ""
	}
	seen := make(map[string]struct{})
	var reasons []string
	for _, e := range r.Errors {
		if _, ok := seen[e.Reason]; ok {
			continue
		}
		seen[e.Reason] = struct{}{}
		reasons = append(reasons, e.Reason)
	}
	return strings.Join(reasons, "; ")
}
