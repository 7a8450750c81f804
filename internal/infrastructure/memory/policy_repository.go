package memory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/reminder"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var _ repository.PolicyRepository = (*PolicyRepo)(nil)

// PolicyRepo pólizas en memoria.
type PolicyRepo struct {
	db *DB
}

// NewPolicyRepository construye el repositorio sobre db.
func NewPolicyRepository(db *DB) *PolicyRepo {
	return &PolicyRepo{db: db}
}

func clonePolicy(p *entity.Policy) *entity.Policy {
	clone := *p
	if p.LineDetail != nil {
		v := *p.LineDetail
		clone.LineDetail = &v
	}
	if p.Count != nil {
		v := *p.Count
		clone.Count = &v
	}
	if p.Notes != nil {
		v := *p.Notes
		clone.Notes = &v
	}
	if p.ReminderSentAt != nil {
		v := *p.ReminderSentAt
		clone.ReminderSentAt = &v
	}
	clone.Documents = append([]string(nil), p.Documents...)
	return &clone
}

func sortByEndDate(out []*entity.Policy) {
	reminder.SortForDigest(out)
}

func (r *PolicyRepo) Create(ctx context.Context, p *entity.Policy) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("policies.Create"); err != nil {
		return err
	}
	if _, exists := r.db.policies[p.ID]; exists {
		return domain.ErrDuplicate
	}
	r.db.policies[p.ID] = clonePolicy(p)
	return nil
}

func (r *PolicyRepo) Update(ctx context.Context, p *entity.Policy) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("policies.Update"); err != nil {
		return err
	}
	existing, ok := r.db.policies[p.ID]
	if !ok || existing.OrganizationID != p.OrganizationID {
		return domain.ErrNotFound
	}
	r.db.policies[p.ID] = clonePolicy(p)
	return nil
}

func (r *PolicyRepo) GetByID(ctx context.Context, organizationID, id string) (*entity.Policy, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.policies[id]
	if !ok || p.OrganizationID != organizationID {
		return nil, nil
	}
	return clonePolicy(p), nil
}

func (r *PolicyRepo) List(ctx context.Context, organizationID, search string, limit, offset int) ([]*entity.Policy, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	var out []*entity.Policy
	for _, p := range r.db.policies {
		if p.OrganizationID != organizationID {
			continue
		}
		if needle != "" && !matchesSearch(p, needle) {
			continue
		}
		out = append(out, clonePolicy(p))
	}
	sortByEndDate(out)
	if offset > 0 {
		if offset >= len(out) {
			return []*entity.Policy{}, nil
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func matchesSearch(p *entity.Policy, needle string) bool {
	for _, field := range []string{p.ClientName, p.InsurerName, p.ContactName} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func (r *PolicyRepo) Delete(ctx context.Context, organizationID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.policies[id]
	if !ok || p.OrganizationID != organizationID {
		return domain.ErrNotFound
	}
	delete(r.db.policies, id)
	return nil
}

func (r *PolicyRepo) ListEarliestExpiring(ctx context.Context, organizationID string, limit int) ([]*entity.Policy, error) {
	return r.List(ctx, organizationID, "", limit, 0)
}

func (r *PolicyRepo) ListReminderCandidates(ctx context.Context, today time.Time, loc *time.Location, organizationID string) ([]*entity.Policy, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	if err := r.db.fault("policies.ListReminderCandidates"); err != nil {
		return nil, err
	}
	var out []*entity.Policy
	for _, p := range r.db.policies {
		if organizationID != "" && p.OrganizationID != organizationID {
			continue
		}
		if reminder.IsDue(p, today, loc) {
			out = append(out, clonePolicy(p))
		}
	}
	sortByEndDate(out)
	return out, nil
}

func (r *PolicyRepo) ClaimReminders(ctx context.Context, ids []string, now, today time.Time, loc *time.Location) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("policies.ClaimReminders"); err != nil {
		return nil, err
	}
	var claimed []string
	for _, id := range ids {
		p, ok := r.db.policies[id]
		if !ok || reminder.SentOn(p.ReminderSentAt, today, loc) {
			continue
		}
		clone := clonePolicy(p)
		at := now
		clone.ReminderSentAt = &at
		r.db.policies[id] = clone
		claimed = append(claimed, id)
	}
	return claimed, nil
}

func (r *PolicyRepo) ReleaseReminders(ctx context.Context, claims []repository.ReminderClaim, claimedAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("policies.ReleaseReminders"); err != nil {
		return err
	}
	for _, c := range claims {
		p, ok := r.db.policies[c.PolicyID]
		if !ok || p.ReminderSentAt == nil || !p.ReminderSentAt.Equal(claimedAt) {
			continue
		}
		clone := clonePolicy(p)
		clone.ReminderSentAt = nil
		if c.Previous != nil {
			prev := *c.Previous
			clone.ReminderSentAt = &prev
		}
		r.db.policies[c.PolicyID] = clone
	}
	return nil
}
