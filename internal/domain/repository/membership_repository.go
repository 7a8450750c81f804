package repository

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// MembershipRepository define el puerto de persistencia para Membership.
// Un usuario tiene como máximo una membresía: Create devuelve domain.ErrConflict si ya existe otra.
type MembershipRepository interface {
	Create(ctx context.Context, m *entity.Membership) error
	GetByUser(ctx context.Context, userID string) (*entity.Membership, error)
	GetByID(ctx context.Context, organizationID, id string) (*entity.Membership, error)
	CountByOrganization(ctx context.Context, organizationID string) (int, error)
	// ExistsByEmail informa si algún miembro de la organización tiene ese email (vía perfil).
	ExistsByEmail(ctx context.Context, organizationID, email string) (bool, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]*entity.MemberWithProfile, error)
	UpdateRole(ctx context.Context, organizationID, id, role string) error
	Delete(ctx context.Context, organizationID, id string) error
	// MoveToOrganization reasigna la membresía existente del usuario a otra organización y rol;
	// domain.ErrNotFound si el usuario no tiene membresía.
	MoveToOrganization(ctx context.Context, userID, organizationID, role string) error
	// DeleteByUser es idempotente: no falla si el usuario no tiene membresía.
	DeleteByUser(ctx context.Context, userID string) error
}
