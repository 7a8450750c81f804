package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/reminder"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.PolicyRepository = (*PolicyRepo)(nil)

// PolicyRepo implementación del puerto PolicyRepository sobre PostgreSQL.
type PolicyRepo struct {
	q Querier
}

// NewPolicyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPolicyRepository(q Querier) *PolicyRepo {
	return &PolicyRepo{q: q}
}

const policyColumns = `id, organization_id, client_name, client_status, line, line_detail, end_date, count,
	insurer_name, channel_type, contact_name, contact_email, contact_phone, notes, documents,
	reminder_lead_days, reminder_sent_at, created_at, updated_at`

func scanPolicy(row pgxScanner) (*entity.Policy, error) {
	var p entity.Policy
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.ClientName, &p.ClientStatus, &p.Line, &p.LineDetail, &p.EndDate, &p.Count,
		&p.InsurerName, &p.ChannelType, &p.ContactName, &p.ContactEmail, &p.ContactPhone, &p.Notes, &p.Documents,
		&p.ReminderLeadDays, &p.ReminderSentAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.EndDate = reminder.CalendarDate(p.EndDate)
	if p.Documents == nil {
		p.Documents = []string{}
	}
	return &p, nil
}

func (r *PolicyRepo) queryPolicies(ctx context.Context, op, query string, args ...any) ([]*entity.Policy, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()
	var list []*entity.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan policy: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Create persiste una nueva póliza.
func (r *PolicyRepo) Create(ctx context.Context, p *entity.Policy) error {
	query := `INSERT INTO policies (` + policyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.OrganizationID, p.ClientName, p.ClientStatus, p.Line, p.LineDetail, p.EndDate, p.Count,
		p.InsurerName, p.ChannelType, p.ContactName, p.ContactEmail, p.ContactPhone, p.Notes, p.Documents,
		p.ReminderLeadDays, p.ReminderSentAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrDuplicate
		}
		return mapError("insert policy", err)
	}
	return nil
}

// Update reemplaza los campos editables y reminder_sent_at; domain.ErrNotFound si no es de la organización.
func (r *PolicyRepo) Update(ctx context.Context, p *entity.Policy) error {
	query := `
		UPDATE policies SET
			client_name = $3, client_status = $4, line = $5, line_detail = $6, end_date = $7, count = $8,
			insurer_name = $9, channel_type = $10, contact_name = $11, contact_email = $12, contact_phone = $13,
			notes = $14, documents = $15, reminder_lead_days = $16, reminder_sent_at = $17, updated_at = $18
		WHERE organization_id = $1 AND id = $2`
	cmd, err := r.q.Exec(ctx, query,
		p.OrganizationID, p.ID, p.ClientName, p.ClientStatus, p.Line, p.LineDetail, p.EndDate, p.Count,
		p.InsurerName, p.ChannelType, p.ContactName, p.ContactEmail, p.ContactPhone,
		p.Notes, p.Documents, p.ReminderLeadDays, p.ReminderSentAt, p.UpdatedAt,
	)
	if err != nil {
		return mapError("update policy", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetByID obtiene una póliza de la organización.
func (r *PolicyRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.Policy, error) {
	row := r.q.QueryRow(ctx, `SELECT `+policyColumns+` FROM policies WHERE organization_id = $1 AND id = $2`,
		organizationID, id)
	p, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get policy: %w", err)
	}
	return p, nil
}

// List lista pólizas por vencimiento; search filtra por cliente, aseguradora o contacto.
func (r *PolicyRepo) List(ctx context.Context, organizationID, search string, limit, offset int) ([]*entity.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies
		WHERE organization_id = $1
		  AND ($2 = '' OR client_name ILIKE $2 OR insurer_name ILIKE $2 OR contact_name ILIKE $2)
		ORDER BY end_date, id
		LIMIT $3 OFFSET $4`
	pattern := ""
	if s := strings.TrimSpace(search); s != "" {
		pattern = "%" + escapeLike(s) + "%"
	}
	var lim any
	if limit > 0 {
		lim = limit
	}
	return r.queryPolicies(ctx, "list policies", query, organizationID, pattern, lim, max(offset, 0))
}

// ListEarliestExpiring devuelve las pólizas que vencen primero.
func (r *PolicyRepo) ListEarliestExpiring(ctx context.Context, organizationID string, limit int) ([]*entity.Policy, error) {
	return r.List(ctx, organizationID, "", limit, 0)
}

// Delete elimina una póliza de la organización.
func (r *PolicyRepo) Delete(ctx context.Context, organizationID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM policies WHERE organization_id = $1 AND id = $2`, organizationID, id)
	if err != nil {
		return mapError("delete policy", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// sentTodaySQL es verdadero si reminder_sent_at cae en la fecha $today según la zona $tz.
const sentTodaySQL = `(reminder_sent_at IS NOT NULL AND (reminder_sent_at AT TIME ZONE $2)::date = $1::date)`

// ListReminderCandidates pólizas con end_date - reminder_lead_days = today y sin envío hoy.
func (r *PolicyRepo) ListReminderCandidates(ctx context.Context, today time.Time, loc *time.Location, organizationID string) ([]*entity.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies
		WHERE end_date - reminder_lead_days = $1::date
		  AND NOT ` + sentTodaySQL + `
		  AND ($3 = '' OR organization_id::text = $3)
		ORDER BY organization_id, end_date, id`
	return r.queryPolicies(ctx, "list reminder candidates", query, reminder.CalendarDate(today), zoneName(loc), organizationID)
}

// ClaimReminders actualización condicional: solo las filas sin envío hoy pasan a reminder_sent_at = now.
// Dos pasadas concurrentes nunca reclaman la misma póliza el mismo día.
func (r *PolicyRepo) ClaimReminders(ctx context.Context, ids []string, now, today time.Time, loc *time.Location) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
		UPDATE policies SET reminder_sent_at = $4
		WHERE id = ANY($3) AND NOT ` + sentTodaySQL + `
		RETURNING id`
	rows, err := r.q.Query(ctx, query, reminder.CalendarDate(today), zoneName(loc), ids, now)
	if err != nil {
		return nil, mapError("claim reminders", err)
	}
	claimed, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, mapError("claim reminders", err)
	}
	return claimed, nil
}

// ReleaseReminders devuelve reminder_sent_at a su valor previo en las filas que aún conservan claimedAt.
func (r *PolicyRepo) ReleaseReminders(ctx context.Context, claims []repository.ReminderClaim, claimedAt time.Time) error {
	if len(claims) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range claims {
		batch.Queue(`UPDATE policies SET reminder_sent_at = $2 WHERE id = $1 AND reminder_sent_at = $3`,
			c.PolicyID, c.Previous, claimedAt)
	}
	if err := r.q.SendBatch(ctx, batch).Close(); err != nil {
		return mapError("release reminders", err)
	}
	return nil
}

func zoneName(loc *time.Location) string {
	if loc == nil {
		return "UTC"
	}
	return loc.String()
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
