package reminder

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/policy"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

// SettingsResolver resuelve y guarda el destinatario de recordatorios de cada organización.
type SettingsResolver struct {
	repo  repository.NotificationSettingRepository
	clock ports.Clock
}

// NewSettingsResolver construye el resolver.
func NewSettingsResolver(repo repository.NotificationSettingRepository, clock ports.Clock) *SettingsResolver {
	return &SettingsResolver{repo: repo, clock: clock}
}

// GetRecipient devuelve el email de notificación de la organización o domain.ErrRecipientNotConfigured.
func (r *SettingsResolver) GetRecipient(ctx context.Context, organizationID string) (string, error) {
	s, err := r.repo.GetByOrganization(ctx, organizationID)
	if err != nil {
		return "", fmt.Errorf("obtener configuración de notificaciones: %w", err)
	}
	if s == nil || s.NotificationEmail == "" {
		return "", domain.ErrRecipientNotConfigured
	}
	return s.NotificationEmail, nil
}

// GetSettings devuelve la configuración de la organización; nil si aún no existe.
func (r *SettingsResolver) GetSettings(ctx context.Context, organizationID string) (*entity.NotificationSetting, error) {
	return r.repo.GetByOrganization(ctx, organizationID)
}

// SaveSettings guarda el email de notificación de la organización del actor. Solo admins.
func (r *SettingsResolver) SaveSettings(ctx context.Context, actor *entity.Membership, notificationEmail string) (*entity.NotificationSetting, error) {
	if actor == nil {
		return nil, domain.ErrNoMembership
	}
	if !actor.IsAdmin() {
		return nil, domain.ErrNotAuthorized
	}
	email := entity.NormalizeEmail(notificationEmail)
	if err := policy.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: notification_email: %w", domain.ErrInvalidInput, err)
	}
	s := &entity.NotificationSetting{
		ID:                uuid.New().String(),
		OrganizationID:    actor.OrganizationID,
		NotificationEmail: email,
		UpdatedAt:         r.clock.Now().UTC(),
	}
	if err := r.repo.Upsert(ctx, s); err != nil {
		return nil, fmt.Errorf("guardar configuración de notificaciones: %w", err)
	}
	return r.repo.GetByOrganization(ctx, actor.OrganizationID)
}
