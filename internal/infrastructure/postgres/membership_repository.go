package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo implementación del puerto MembershipRepository sobre PostgreSQL.
// La unicidad de user_id garantiza una sola membresía por usuario.
type MembershipRepo struct {
	q Querier
}

// NewMembershipRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMembershipRepository(q Querier) *MembershipRepo {
	return &MembershipRepo{q: q}
}

const membershipColumns = `id, user_id, organization_id, role, created_at`

func scanMembership(row pgxScanner) (*entity.Membership, error) {
	var m entity.Membership
	if err := row.Scan(&m.ID, &m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create persiste una membresía; domain.ErrConflict si el usuario ya tiene una.
func (r *MembershipRepo) Create(ctx context.Context, m *entity.Membership) error {
	query := `
		INSERT INTO organization_members (` + membershipColumns + `)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, m.ID, m.UserID, m.OrganizationID, m.Role, m.CreatedAt)
	if err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrConflict
		}
		return mapError("insert membership", err)
	}
	return nil
}

// GetByUser obtiene la membresía del usuario.
func (r *MembershipRepo) GetByUser(ctx context.Context, userID string) (*entity.Membership, error) {
	row := r.q.QueryRow(ctx, `SELECT `+membershipColumns+` FROM organization_members WHERE user_id = $1`, userID)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership by user: %w", err)
	}
	return m, nil
}

// GetByID obtiene una membresía de la organización.
func (r *MembershipRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.Membership, error) {
	row := r.q.QueryRow(ctx, `SELECT `+membershipColumns+` FROM organization_members
		WHERE organization_id = $1 AND id = $2`, organizationID, id)
	m, err := scanMembership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return m, nil
}

// CountByOrganization cuenta los miembros de la organización.
func (r *MembershipRepo) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM organization_members WHERE organization_id = $1`, organizationID).Scan(&n)
	if err != nil {
		return 0, mapError("count memberships", err)
	}
	return n, nil
}

// ExistsByEmail informa si algún miembro de la organización tiene ese email en su perfil.
// Los perfiles guardan el email normalizado con entity.NormalizeEmail; se compara igual que entity.SameEmail.
func (r *MembershipRepo) ExistsByEmail(ctx context.Context, organizationID, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM organization_members m
			JOIN profiles p ON p.user_id = m.user_id
			WHERE m.organization_id = $1 AND p.email = $2
		)`
	var exists bool
	if err := r.q.QueryRow(ctx, query, organizationID, entity.NormalizeEmail(email)).Scan(&exists); err != nil {
		return false, mapError("exists membership by email", err)
	}
	return exists, nil
}

// ListByOrganization lista los miembros con su perfil, por antigüedad.
func (r *MembershipRepo) ListByOrganization(ctx context.Context, organizationID string) ([]*entity.MemberWithProfile, error) {
	query := `
		SELECT m.id, m.user_id, m.organization_id, m.role, m.created_at,
			COALESCE(p.name, ''), COALESCE(p.email, '')
		FROM organization_members m
		LEFT JOIN profiles p ON p.user_id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at, m.id`
	rows, err := r.q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, mapError("list memberships", err)
	}
	defer rows.Close()
	var list []*entity.MemberWithProfile
	for rows.Next() {
		var item entity.MemberWithProfile
		if err := rows.Scan(&item.ID, &item.UserID, &item.OrganizationID, &item.Role, &item.CreatedAt,
			&item.Name, &item.Email); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		list = append(list, &item)
	}
	return list, rows.Err()
}

// UpdateRole cambia el rol de un miembro; domain.ErrNotFound si no pertenece a la organización.
func (r *MembershipRepo) UpdateRole(ctx context.Context, organizationID, id, role string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE organization_members SET role = $3
		WHERE organization_id = $1 AND id = $2`, organizationID, id, role)
	if err != nil {
		return mapError("update membership role", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una membresía de la organización.
func (r *MembershipRepo) Delete(ctx context.Context, organizationID, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM organization_members WHERE organization_id = $1 AND id = $2`, organizationID, id)
	if err != nil {
		return mapError("delete membership", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MoveToOrganization reasigna la membresía del usuario sin borrarla (la fila conserva su id).
func (r *MembershipRepo) MoveToOrganization(ctx context.Context, userID, organizationID, role string) error {
	cmd, err := r.q.Exec(ctx, `UPDATE organization_members SET organization_id = $2, role = $3
		WHERE user_id = $1`, userID, organizationID, role)
	if err != nil {
		return mapError("move membership", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteByUser elimina la membresía del usuario si existe.
func (r *MembershipRepo) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM organization_members WHERE user_id = $1`, userID); err != nil {
		return mapError("delete membership by user", err)
	}
	return nil
}
