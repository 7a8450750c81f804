package memory

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.NotificationSettingRepository = (*NotificationSettingRepo)(nil)

// NotificationSettingRepo configuración de notificaciones en memoria.
type NotificationSettingRepo struct {
	db *DB
}

// NewNotificationSettingRepository construye el repositorio sobre db.
func NewNotificationSettingRepository(db *DB) *NotificationSettingRepo {
	return &NotificationSettingRepo{db: db}
}

func (r *NotificationSettingRepo) GetByOrganization(ctx context.Context, organizationID string) (*entity.NotificationSetting, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fault("settings.GetByOrganization"); err != nil {
		return nil, err
	}
	s, ok := r.db.settings[organizationID]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (r *NotificationSettingRepo) Upsert(ctx context.Context, s *entity.NotificationSetting) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	clone := *s
	if existing, ok := r.db.settings[s.OrganizationID]; ok {
		clone.ID = existing.ID
	}
	r.db.settings[s.OrganizationID] = &clone
	return nil
}
