package repository

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// NotificationSettingRepository una fila de configuración de notificaciones por organización.
type NotificationSettingRepository interface {
	GetByOrganization(ctx context.Context, organizationID string) (*entity.NotificationSetting, error)
	Upsert(ctx context.Context, s *entity.NotificationSetting) error
}
