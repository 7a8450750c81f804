package membership

import (
	"context"
	"fmt"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

func requireAdmin(actor *entity.Membership) error {
	if actor == nil {
		return domain.ErrNoMembership
	}
	if !actor.IsAdmin() {
		return domain.ErrNotAuthorized
	}
	return nil
}

// ListMembers miembros de la organización del actor con nombre y email del perfil.
func (r *Reconciler) ListMembers(ctx context.Context, actor *entity.Membership) ([]*entity.MemberWithProfile, error) {
	if actor == nil {
		return nil, domain.ErrNoMembership
	}
	return r.repos.Memberships.ListByOrganization(ctx, actor.OrganizationID)
}

// ListPendingInvitations invitaciones no aceptadas y vigentes, más recientes primero.
func (r *Reconciler) ListPendingInvitations(ctx context.Context, actor *entity.Membership) ([]*entity.Invitation, error) {
	if actor == nil {
		return nil, domain.ErrNoMembership
	}
	return r.repos.Invitations.ListPending(ctx, actor.OrganizationID, r.clock.Now().UTC())
}

// UpdateMemberRole cambia el rol de un miembro y su registro de rol. Solo admins.
func (r *Reconciler) UpdateMemberRole(ctx context.Context, actor *entity.Membership, membershipID, role string) (*entity.Membership, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !entity.ValidRole(role) {
		return nil, fmt.Errorf("%w: rol %q no admitido", domain.ErrInvalidInput, role)
	}
	target, err := r.repos.Memberships.GetByID(ctx, actor.OrganizationID, membershipID)
	if err != nil {
		return nil, fmt.Errorf("obtener miembro: %w", err)
	}
	if target == nil {
		return nil, domain.ErrNotFound
	}
	if err := r.repos.Memberships.UpdateRole(ctx, actor.OrganizationID, membershipID, role); err != nil {
		return nil, fmt.Errorf("actualizar rol: %w", err)
	}
	if err := r.repos.Roles.Upsert(ctx, &entity.UserRole{UserID: target.UserID, Role: role}); err != nil {
		r.log.Error().Err(err).Str("user_id", target.UserID).Msg("error sincronizando registro de rol")
	}
	target.Role = role
	return target, nil
}

// RemoveMember quita a un miembro de la organización. Solo admins; nadie puede quitarse a sí mismo.
func (r *Reconciler) RemoveMember(ctx context.Context, actor *entity.Membership, membershipID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	target, err := r.repos.Memberships.GetByID(ctx, actor.OrganizationID, membershipID)
	if err != nil {
		return fmt.Errorf("obtener miembro: %w", err)
	}
	if target == nil {
		return domain.ErrNotFound
	}
	if target.UserID == actor.UserID {
		return fmt.Errorf("%w: no puede eliminarse a sí mismo", domain.ErrForbidden)
	}
	if err := r.repos.Memberships.Delete(ctx, actor.OrganizationID, membershipID); err != nil {
		return fmt.Errorf("eliminar miembro: %w", err)
	}
	if err := r.repos.Roles.DeleteByUser(ctx, target.UserID); err != nil {
		r.log.Error().Err(err).Str("user_id", target.UserID).Msg("error eliminando registro de rol")
	}
	r.log.Info().Str("org_id", actor.OrganizationID).Str("removed_user_id", target.UserID).Msg("miembro eliminado")
	return nil
}

// RevokeInvitation elimina una invitación de la organización del actor. Solo admins.
func (r *Reconciler) RevokeInvitation(ctx context.Context, actor *entity.Membership, invitationID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := r.repos.Invitations.Delete(ctx, actor.OrganizationID, invitationID); err != nil {
		return fmt.Errorf("eliminar invitación: %w", err)
	}
	return nil
}
