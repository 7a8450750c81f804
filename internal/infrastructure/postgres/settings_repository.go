package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.NotificationSettingRepository = (*NotificationSettingRepo)(nil)

// NotificationSettingRepo configuración de notificaciones por organización sobre PostgreSQL.
type NotificationSettingRepo struct {
	q Querier
}

// NewNotificationSettingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewNotificationSettingRepository(q Querier) *NotificationSettingRepo {
	return &NotificationSettingRepo{q: q}
}

// GetByOrganization obtiene la configuración de la organización.
func (r *NotificationSettingRepo) GetByOrganization(ctx context.Context, organizationID string) (*entity.NotificationSetting, error) {
	var s entity.NotificationSetting
	err := r.q.QueryRow(ctx, `
		SELECT id, organization_id, notification_email, updated_at
		FROM notification_settings WHERE organization_id = $1`, organizationID,
	).Scan(&s.ID, &s.OrganizationID, &s.NotificationEmail, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notification settings: %w", err)
	}
	return &s, nil
}

// Upsert crea o actualiza la fila de la organización conservando su id.
func (r *NotificationSettingRepo) Upsert(ctx context.Context, s *entity.NotificationSetting) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO notification_settings (id, organization_id, notification_email, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id) DO UPDATE SET
			notification_email = EXCLUDED.notification_email,
			updated_at = EXCLUDED.updated_at`,
		s.ID, s.OrganizationID, s.NotificationEmail, s.UpdatedAt)
	if err != nil {
		return mapError("upsert notification settings", err)
	}
	return nil
}
