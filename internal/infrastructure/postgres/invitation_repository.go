package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

const pendingInvitationIndex = "idx_invitations_pending"

// InvitationRepo implementación del puerto InvitationRepository sobre PostgreSQL.
type InvitationRepo struct {
	q Querier
}

// NewInvitationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvitationRepository(q Querier) *InvitationRepo {
	return &InvitationRepo{q: q}
}

const invitationColumns = `id, token, email, role, organization_id, invited_by, expires_at, accepted_at, created_at`

func scanInvitation(row pgxScanner) (*entity.Invitation, error) {
	var inv entity.Invitation
	err := row.Scan(&inv.ID, &inv.Token, &inv.Email, &inv.Role, &inv.OrganizationID, &inv.InvitedBy,
		&inv.ExpiresAt, &inv.AcceptedAt, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Create persiste una invitación; domain.ErrAlreadyInvited si ya hay otra pendiente para el email.
func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	query := `INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query, inv.ID, inv.Token, inv.Email, inv.Role, inv.OrganizationID, inv.InvitedBy,
		inv.ExpiresAt, inv.AcceptedAt, inv.CreatedAt)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == pendingInvitationIndex {
				return domain.ErrAlreadyInvited
			}
			return domain.ErrDuplicate
		}
		return mapError("insert invitation", err)
	}
	return nil
}

// GetByToken obtiene una invitación por token, sin filtrar por vigencia.
func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	inv, err := scanInvitation(r.q.QueryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invitation by token: %w", err)
	}
	return inv, nil
}

// ListPending lista las invitaciones no aceptadas ni vencidas, más recientes primero.
func (r *InvitationRepo) ListPending(ctx context.Context, organizationID string, now time.Time) ([]*entity.Invitation, error) {
	rows, err := r.q.Query(ctx, `SELECT `+invitationColumns+` FROM invitations
		WHERE organization_id = $1 AND accepted_at IS NULL AND expires_at > $2
		ORDER BY created_at DESC, id`, organizationID, now)
	if err != nil {
		return nil, mapError("list invitations", err)
	}
	defer rows.Close()
	var list []*entity.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// MarkAccepted fija accepted_at solo si aún es NULL.
func (r *InvitationRepo) MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx, `UPDATE invitations SET accepted_at = $2 WHERE id = $1 AND accepted_at IS NULL`, id, at)
	if err != nil {
		return false, mapError("mark invitation accepted", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// DeleteExpired purga las invitaciones vencidas y pendientes de (organización, email).
func (r *InvitationRepo) DeleteExpired(ctx context.Context, organizationID, email string, now time.Time) (int64, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM invitations
		WHERE organization_id = $1 AND email = $2 AND accepted_at IS NULL AND expires_at <= $3`,
		organizationID, email, now)
	if err != nil {
		return 0, mapError("delete expired invitations", err)
	}
	return cmd.RowsAffected(), nil
}

// Delete revoca una invitación de la organización.
func (r *InvitationRepo) Delete(ctx context.Context, organizationID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM invitations WHERE organization_id = $1 AND id = $2`, organizationID, id)
	if err != nil {
		return mapError("delete invitation", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
