package repository

import (
	"context"
	"time"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// ReminderClaim valor previo de reminder_sent_at de una póliza reclamada para envío,
// necesario para liberar el reclamo si la entrega falla.
type ReminderClaim struct {
	PolicyID string
	Previous *time.Time
}

// PolicyRepository define el puerto de persistencia para Policy.
// Todas las consultas de CRUD llevan organizationID (aislamiento por tenant).
type PolicyRepository interface {
	Create(ctx context.Context, p *entity.Policy) error
	Update(ctx context.Context, p *entity.Policy) error
	GetByID(ctx context.Context, organizationID, id string) (*entity.Policy, error)
	List(ctx context.Context, organizationID, search string, limit, offset int) ([]*entity.Policy, error)
	Delete(ctx context.Context, organizationID, id string) error

	// ListEarliestExpiring devuelve las pólizas de la organización ordenadas por end_date ascendente.
	ListEarliestExpiring(ctx context.Context, organizationID string, limit int) ([]*entity.Policy, error)

	// ListReminderCandidates devuelve las pólizas cuyo end_date - reminder_lead_days = today y que
	// no recibieron recordatorio en la fecha today (calendario de loc). organizationID vacío = todas.
	ListReminderCandidates(ctx context.Context, today time.Time, loc *time.Location, organizationID string) ([]*entity.Policy, error)

	// ClaimReminders marca reminder_sent_at = now solo en las pólizas sin envío en la fecha today
	// y devuelve las IDs efectivamente reclamadas. Es la única compuerta de deduplicación.
	ClaimReminders(ctx context.Context, ids []string, now, today time.Time, loc *time.Location) ([]string, error)

	// ReleaseReminders restaura reminder_sent_at al valor previo si aún vale claimedAt.
	ReleaseReminders(ctx context.Context, claims []ReminderClaim, claimedAt time.Time) error
}
