// Package membership implementa el ciclo de vida de membresías e invitaciones: emisión con
// control de asientos, aceptación por token (incluida la fusión de la organización placeholder
// del registro) y la gestión del equipo.
//
// Ninguna operación usa transacciones entre tablas: cada paso es una escritura idempotente
// (upsert, borrado o actualización condicional) y una aceptación interrumpida converge al
// reintentarse con el mismo token.
package membership

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/policy"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

// UnknownOrganizationName nombre mostrado cuando la organización de una invitación ya no existe.
const UnknownOrganizationName = "Unknown Organization"

// Identity usuario autenticado que actúa sobre una invitación.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// AcceptResult organización a la que quedó unido el usuario.
type AcceptResult struct {
	OrganizationID   string
	OrganizationName string
	Role             string
}

// IssueResult invitación creada y si el email salió.
type IssueResult struct {
	Invitation *entity.Invitation
	AcceptURL  string
	EmailSent  bool
}

// InvitationDetails datos públicos de una invitación vigente.
type InvitationDetails struct {
	Email            string
	Role             string
	OrganizationName string
	ExpiresAt        time.Time
}

// Repositories puertos de persistencia que usa el reconciliador.
type Repositories struct {
	Organizations repository.OrganizationRepository
	Companies     repository.CompanyRepository
	Memberships   repository.MembershipRepository
	Invitations   repository.InvitationRepository
	Profiles      repository.ProfileRepository
	Roles         repository.UserRoleRepository
}

// Config parámetros de invitaciones.
type Config struct {
	BaseURL  string        // origen de la app web para el enlace de aceptación
	TTL      time.Duration // vigencia de la invitación; 0 = 7 días
	From     string
	FromName string
}

// Reconciler casos de uso de invitaciones y equipo.
type Reconciler struct {
	repos  Repositories
	mailer ports.Mailer
	clock  ports.Clock
	tokens TokenGenerator
	cfg    Config
	log    zerolog.Logger
}

// NewReconciler construye el reconciliador con tokens aleatorios.
func NewReconciler(repos Repositories, mailer ports.Mailer, clock ports.Clock, cfg Config, log zerolog.Logger) *Reconciler {
	if cfg.TTL <= 0 {
		cfg.TTL = entity.DefaultInvitationTTL
	}
	return &Reconciler{
		repos:  repos,
		mailer: mailer,
		clock:  clock,
		tokens: RandomToken,
		cfg:    cfg,
		log:    log.With().Str("component", "membership").Logger(),
	}
}

// WithTokenGenerator reemplaza el generador de tokens (pruebas).
func (r *Reconciler) WithTokenGenerator(g TokenGenerator) *Reconciler {
	r.tokens = g
	return r
}

// validInvitation aplica las reglas de vigencia comunes a consulta y aceptación.
func (r *Reconciler) validInvitation(ctx context.Context, token string, now time.Time) (*entity.Invitation, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrInvitationInvalid
	}
	inv, err := r.repos.Invitations.GetByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("buscar invitación: %w", err)
	}
	switch {
	case inv == nil:
		return nil, domain.ErrInvitationInvalid
	case inv.IsAccepted():
		return nil, fmt.Errorf("%w: ya fue aceptada", domain.ErrInvitationInvalid)
	case inv.IsExpired(now):
		return nil, fmt.Errorf("%w: expirada", domain.ErrInvitationInvalid)
	}
	return inv, nil
}

func (r *Reconciler) organizationName(ctx context.Context, id string) string {
	org, err := r.repos.Organizations.GetByID(ctx, id)
	if err != nil {
		r.log.Error().Err(err).Str("org_id", id).Msg("error obteniendo organización")
		return UnknownOrganizationName
	}
	if org == nil {
		return UnknownOrganizationName
	}
	return org.Name
}

// InvitationInfo devuelve email, rol y organización de una invitación vigente (consulta pública).
func (r *Reconciler) InvitationInfo(ctx context.Context, token string) (*InvitationDetails, error) {
	inv, err := r.validInvitation(ctx, token, r.clock.Now())
	if err != nil {
		return nil, err
	}
	return &InvitationDetails{
		Email:            inv.Email,
		Role:             inv.Role,
		OrganizationName: r.organizationName(ctx, inv.OrganizationID),
		ExpiresAt:        inv.ExpiresAt,
	}, nil
}

// AcceptInvitation une al usuario autenticado a la organización de la invitación.
//
// Si el usuario está solo en su organización placeholder, esta se elimina (membresía, rol,
// organización y espejo heredado); esos borrados se registran si fallan pero no abortan.
// Si no se pudo borrar la membresía anterior, se reasigna a la organización invitante en
// lugar de insertar una nueva, y la placeholder solo se elimina una vez vacía.
// Si ya es miembro de la organización invitante (reintento tras un fallo parcial) se omite
// la inserción de la membresía. La invitación solo se marca aceptada cuando rol y perfil
// quedaron escritos, de modo que el token sigue sirviendo para reintentar.
func (r *Reconciler) AcceptInvitation(ctx context.Context, token string, id Identity) (*AcceptResult, error) {
	now := r.clock.Now().UTC()
	log := r.log.With().Str("user_id", id.UserID).Str("token_prefix", tokenPrefix(token)).Logger()

	inv, err := r.validInvitation(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if !entity.SameEmail(inv.Email, id.Email) {
		return nil, fmt.Errorf("%w: el email no coincide", domain.ErrInvitationInvalid)
	}
	log = log.With().Str("org_id", inv.OrganizationID).Logger()

	current, err := r.repos.Memberships.GetByUser(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("obtener membresía actual: %w", err)
	}

	alreadyJoined := false
	keptMembership := false
	if current != nil {
		if current.OrganizationID == inv.OrganizationID {
			alreadyJoined = true
			log.Info().Msg("usuario ya pertenece a la organización; se completa la aceptación")
		} else {
			count, err := r.repos.Memberships.CountByOrganization(ctx, current.OrganizationID)
			if err != nil {
				return nil, fmt.Errorf("contar miembros: %w", err)
			}
			if count > 1 {
				return nil, domain.ErrAlreadyInOrganization
			}
			keptMembership = !r.transferFromPlaceholder(ctx, current, log)
		}
	}

	if keptMembership {
		if err := r.repos.Memberships.MoveToOrganization(ctx, id.UserID, inv.OrganizationID, inv.Role); err != nil {
			log.Error().Err(err).Msg("error reasignando membresía")
			return nil, fmt.Errorf("reasignar membresía: %w", err)
		}
		r.deletePlaceholderOrg(ctx, current.OrganizationID, log)
	} else if !alreadyJoined {
		m := &entity.Membership{
			ID:             uuid.New().String(),
			UserID:         id.UserID,
			OrganizationID: inv.OrganizationID,
			Role:           inv.Role,
			CreatedAt:      now,
		}
		if err := r.repos.Memberships.Create(ctx, m); err != nil {
			log.Error().Err(err).Msg("error creando membresía")
			return nil, fmt.Errorf("crear membresía: %w", err)
		}
	}

	roleErr := r.repos.Roles.Upsert(ctx, &entity.UserRole{UserID: id.UserID, Role: inv.Role})
	if roleErr != nil {
		log.Error().Err(roleErr).Msg("error registrando rol")
	}
	profileErr := r.pointProfileAt(ctx, id, inv.OrganizationID, now)
	if profileErr != nil {
		log.Error().Err(profileErr).Msg("error actualizando perfil")
	}
	if roleErr != nil {
		return nil, fmt.Errorf("registrar rol: %w", roleErr)
	}
	if profileErr != nil {
		return nil, fmt.Errorf("actualizar perfil: %w", profileErr)
	}

	marked, err := r.repos.Invitations.MarkAccepted(ctx, inv.ID, now)
	if err != nil {
		log.Error().Err(err).Msg("error marcando invitación aceptada")
		return nil, fmt.Errorf("marcar invitación aceptada: %w", err)
	}
	if !marked {
		log.Warn().Msg("la invitación ya había sido marcada por otra petición")
	}

	log.Info().Str("role", inv.Role).Msg("usuario unido a la organización")
	return &AcceptResult{
		OrganizationID:   inv.OrganizationID,
		OrganizationName: r.organizationName(ctx, inv.OrganizationID),
		Role:             inv.Role,
	}, nil
}

// transferFromPlaceholder elimina la organización de un solo miembro del usuario. Devuelve
// false si la membresía anterior sigue en pie; en ese caso no toca rol ni organización.
func (r *Reconciler) transferFromPlaceholder(ctx context.Context, current *entity.Membership, log zerolog.Logger) bool {
	orgID := current.OrganizationID
	log.Info().Str("placeholder_org_id", orgID).Msg("transfiriendo usuario desde organización placeholder")

	if err := r.repos.Memberships.DeleteByUser(ctx, current.UserID); err != nil {
		log.Error().Err(err).Msg("error eliminando membresía anterior; se reasignará")
		return false
	}
	if err := r.repos.Roles.DeleteByUser(ctx, current.UserID); err != nil {
		log.Error().Err(err).Msg("error eliminando rol anterior")
	}
	r.deletePlaceholderOrg(ctx, orgID, log)
	return true
}

// deletePlaceholderOrg borra la organización placeholder y su espejo heredado; los fallos solo se registran.
func (r *Reconciler) deletePlaceholderOrg(ctx context.Context, orgID string, log zerolog.Logger) {
	if err := r.repos.Organizations.Delete(ctx, orgID); err != nil {
		log.Error().Err(err).Str("placeholder_org_id", orgID).Msg("error eliminando organización placeholder")
	}
	if err := r.repos.Companies.Delete(ctx, orgID); err != nil {
		log.Error().Err(err).Str("placeholder_org_id", orgID).Msg("error eliminando registro heredado de companies")
	}
}

// pointProfileAt actualiza la organización del perfil o lo crea si no existe.
func (r *Reconciler) pointProfileAt(ctx context.Context, id Identity, orgID string, now time.Time) error {
	existing, err := r.repos.Profiles.GetByUser(ctx, id.UserID)
	if err != nil {
		return err
	}
	p := existing
	if p == nil {
		p = &entity.Profile{
			UserID: id.UserID,
			Name:   displayName(id),
			Email:  entity.NormalizeEmail(id.Email),
		}
	}
	p.OrganizationID = orgID
	p.UpdatedAt = now
	return r.repos.Profiles.Upsert(ctx, p)
}

func displayName(id Identity) string {
	if n := strings.TrimSpace(id.Name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(id.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}

// IssueInvitation crea una invitación a la organización del admin y envía el email (sin bloquear
// si el envío falla). Controla asientos, membresía previa y unicidad de invitaciones pendientes.
func (r *Reconciler) IssueInvitation(ctx context.Context, inviter Identity, email, role string) (*IssueResult, error) {
	now := r.clock.Now().UTC()
	email = entity.NormalizeEmail(email)
	if err := policy.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if role == "" {
		role = entity.RoleBroker
	}
	if !entity.ValidRole(role) {
		return nil, fmt.Errorf("%w: rol %q no admitido", domain.ErrInvalidInput, role)
	}

	admin, err := r.repos.Memberships.GetByUser(ctx, inviter.UserID)
	if err != nil {
		return nil, fmt.Errorf("obtener membresía: %w", err)
	}
	if admin == nil {
		return nil, domain.ErrNoMembership
	}
	if !admin.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}
	log := r.log.With().Str("org_id", admin.OrganizationID).Str("user_id", inviter.UserID).Logger()

	org, err := r.repos.Organizations.GetByID(ctx, admin.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("obtener organización: %w", err)
	}
	if org == nil {
		return nil, domain.ErrNotFound
	}
	count, err := r.repos.Memberships.CountByOrganization(ctx, org.ID)
	if err != nil {
		return nil, fmt.Errorf("contar miembros: %w", err)
	}
	if count >= org.MaxSeats {
		return nil, fmt.Errorf("%w (%d usuarios)", domain.ErrSeatLimitReached, org.MaxSeats)
	}
	isMember, err := r.repos.Memberships.ExistsByEmail(ctx, org.ID, email)
	if err != nil {
		return nil, fmt.Errorf("verificar miembro existente: %w", err)
	}
	if isMember {
		return nil, domain.ErrAlreadyMember
	}

	purged, err := r.repos.Invitations.DeleteExpired(ctx, org.ID, email, now)
	if err != nil {
		return nil, fmt.Errorf("purgar invitaciones expiradas: %w", err)
	}
	if purged > 0 {
		log.Debug().Int64("purged", purged).Msg("invitaciones expiradas eliminadas")
	}

	token, err := r.tokens()
	if err != nil {
		return nil, err
	}
	inv := &entity.Invitation{
		ID:             uuid.New().String(),
		Token:          token,
		Email:          email,
		Role:           role,
		OrganizationID: org.ID,
		InvitedBy:      inviter.UserID,
		ExpiresAt:      now.Add(r.cfg.TTL),
		CreatedAt:      now,
	}
	if err := r.repos.Invitations.Create(ctx, inv); err != nil {
		if errors.Is(err, domain.ErrAlreadyInvited) {
			return nil, err
		}
		return nil, fmt.Errorf("crear invitación: %w", err)
	}

	result := &IssueResult{Invitation: inv, AcceptURL: r.acceptURL(token)}
	result.EmailSent = r.sendInvitationEmail(ctx, inviter, org, result.AcceptURL, email, log)
	log.Info().Str("token_prefix", tokenPrefix(token)).Bool("email_sent", result.EmailSent).Msg("invitación creada")
	return result, nil
}

func (r *Reconciler) acceptURL(token string) string {
	return strings.TrimRight(r.cfg.BaseURL, "/") + "/accept-invitation?token=" + url.QueryEscape(token)
}

func (r *Reconciler) sendInvitationEmail(ctx context.Context, inviter Identity, org *entity.Organization, acceptURL, to string, log zerolog.Logger) bool {
	body, err := renderInvitationEmail(invitationEmailView{
		InviterEmail:     inviter.Email,
		OrganizationName: org.Name,
		AcceptURL:        acceptURL,
		ExpiresInDays:    int(r.cfg.TTL.Hours() / 24),
	})
	if err != nil {
		log.Error().Err(err).Msg("error construyendo email de invitación")
		return false
	}
	err = r.mailer.Send(ctx, ports.Message{
		To:       to,
		From:     r.cfg.From,
		FromName: r.cfg.FromName,
		Subject:  invitationSubject(org.Name),
		HTMLBody: body,
	})
	switch {
	case err == nil:
		return true
	case errors.Is(err, ports.ErrMailerUnconfigured):
		log.Warn().Msg("correo no configurado; invitación creada sin email")
	default:
		log.Error().Err(err).Msg("error enviando email de invitación")
	}
	return false
}
