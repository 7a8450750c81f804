package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.MembershipRepository = (*MembershipRepo)(nil)

// MembershipRepo membresías en memoria; un usuario tiene como máximo una.
type MembershipRepo struct {
	db *DB
}

// NewMembershipRepository construye el repositorio sobre db.
func NewMembershipRepository(db *DB) *MembershipRepo {
	return &MembershipRepo{db: db}
}

func (r *MembershipRepo) Create(ctx context.Context, m *entity.Membership) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("memberships.Create"); err != nil {
		return err
	}
	for _, existing := range r.db.memberships {
		if existing.UserID == m.UserID {
			return domain.ErrConflict
		}
	}
	clone := *m
	r.db.memberships[m.ID] = &clone
	return nil
}

func (r *MembershipRepo) GetByUser(ctx context.Context, userID string) (*entity.Membership, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fault("memberships.GetByUser"); err != nil {
		return nil, err
	}
	for _, m := range r.db.memberships {
		if m.UserID == userID {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *MembershipRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.Membership, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	m, ok := r.db.memberships[id]
	if !ok || m.OrganizationID != organizationID {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

func (r *MembershipRepo) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fault("memberships.CountByOrganization"); err != nil {
		return 0, err
	}
	n := 0
	for _, m := range r.db.memberships {
		if m.OrganizationID == organizationID {
			n++
		}
	}
	return n, nil
}

func (r *MembershipRepo) ExistsByEmail(ctx context.Context, organizationID, email string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, m := range r.db.memberships {
		if m.OrganizationID != organizationID {
			continue
		}
		if p, ok := r.db.profiles[m.UserID]; ok && entity.SameEmail(p.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MembershipRepo) ListByOrganization(ctx context.Context, organizationID string) ([]*entity.MemberWithProfile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []*entity.MemberWithProfile
	for _, m := range r.db.memberships {
		if m.OrganizationID != organizationID {
			continue
		}
		item := &entity.MemberWithProfile{Membership: *m}
		if p, ok := r.db.profiles[m.UserID]; ok {
			item.Name, item.Email = p.Name, p.Email
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MembershipRepo) UpdateRole(ctx context.Context, organizationID, id, role string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.memberships[id]
	if !ok || m.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	clone := *m
	clone.Role = role
	r.db.memberships[id] = &clone
	return nil
}

func (r *MembershipRepo) Delete(ctx context.Context, organizationID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	m, ok := r.db.memberships[id]
	if !ok || m.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	delete(r.db.memberships, id)
	return nil
}

func (r *MembershipRepo) MoveToOrganization(ctx context.Context, userID, organizationID, role string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("memberships.MoveToOrganization"); err != nil {
		return err
	}
	for id, m := range r.db.memberships {
		if m.UserID == userID {
			clone := *m
			clone.OrganizationID = organizationID
			clone.Role = role
			r.db.memberships[id] = &clone
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *MembershipRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("memberships.DeleteByUser"); err != nil {
		return err
	}
	for id, m := range r.db.memberships {
		if m.UserID == userID {
			delete(r.db.memberships, id)
		}
	}
	return nil
}
