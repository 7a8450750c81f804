package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.InvitationRepository = (*InvitationRepo)(nil)

// InvitationRepo invitaciones en memoria. Reproduce el índice único parcial
// (organization_id, email) WHERE accepted_at IS NULL.
type InvitationRepo struct {
	db *DB
}

// NewInvitationRepository construye el repositorio sobre db.
func NewInvitationRepository(db *DB) *InvitationRepo {
	return &InvitationRepo{db: db}
}

func cloneInvitation(inv *entity.Invitation) *entity.Invitation {
	clone := *inv
	if inv.AcceptedAt != nil {
		at := *inv.AcceptedAt
		clone.AcceptedAt = &at
	}
	return &clone
}

func (r *InvitationRepo) Create(ctx context.Context, inv *entity.Invitation) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("invitations.Create"); err != nil {
		return err
	}
	for _, existing := range r.db.invitations {
		if existing.Token == inv.Token {
			return domain.ErrDuplicate
		}
		if existing.OrganizationID == inv.OrganizationID && existing.AcceptedAt == nil &&
			entity.SameEmail(existing.Email, inv.Email) {
			return domain.ErrAlreadyInvited
		}
	}
	r.db.invitations[inv.ID] = cloneInvitation(inv)
	return nil
}

func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fault("invitations.GetByToken"); err != nil {
		return nil, err
	}
	for _, inv := range r.db.invitations {
		if inv.Token == token {
			return cloneInvitation(inv), nil
		}
	}
	return nil, nil
}

func (r *InvitationRepo) ListPending(ctx context.Context, organizationID string, now time.Time) ([]*entity.Invitation, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []*entity.Invitation
	for _, inv := range r.db.invitations {
		if inv.OrganizationID == organizationID && inv.IsPending(now) {
			out = append(out, cloneInvitation(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *InvitationRepo) MarkAccepted(ctx context.Context, id string, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("invitations.MarkAccepted"); err != nil {
		return false, err
	}
	inv, ok := r.db.invitations[id]
	if !ok || inv.AcceptedAt != nil {
		return false, nil
	}
	clone := cloneInvitation(inv)
	clone.AcceptedAt = &at
	r.db.invitations[id] = clone
	return true, nil
}

func (r *InvitationRepo) DeleteExpired(ctx context.Context, organizationID, email string, now time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for id, inv := range r.db.invitations {
		if inv.OrganizationID == organizationID && inv.AcceptedAt == nil &&
			entity.SameEmail(inv.Email, email) && inv.IsExpired(now) {
			delete(r.db.invitations, id)
			n++
		}
	}
	return n, nil
}

func (r *InvitationRepo) Delete(ctx context.Context, organizationID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	inv, ok := r.db.invitations[id]
	if !ok || inv.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	delete(r.db.invitations, id)
	return nil
}
