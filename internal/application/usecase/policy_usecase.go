package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/policy"
	"github.com/jhoicas/policyminders-api/internal/domain/reminder"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

const dateLayout = "2006-01-02"

// PolicyUseCase casos de uso CRUD para pólizas, siempre acotados a la organización del usuario.
type PolicyUseCase struct {
	repo  repository.PolicyRepository
	clock ports.Clock
}

// NewPolicyUseCase construye el caso de uso.
func NewPolicyUseCase(repo repository.PolicyRepository, clock ports.Clock) *PolicyUseCase {
	return &PolicyUseCase{repo: repo, clock: clock}
}

// Create crea una nueva póliza.
func (uc *PolicyUseCase) Create(ctx context.Context, organizationID string, in dto.PolicyRequest) (*dto.PolicyResponse, error) {
	now := uc.clock.Now().UTC()
	p := &entity.Policy{
		ID:             uuid.New().String(),
		OrganizationID: organizationID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := applyPolicyRequest(p, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("crear póliza: %w", err)
	}
	return toPolicyResponse(p), nil
}

// GetByID obtiene una póliza; domain.ErrNotFound si no existe en la organización.
func (uc *PolicyUseCase) GetByID(ctx context.Context, organizationID, id string) (*dto.PolicyResponse, error) {
	p, err := uc.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPolicyResponse(p), nil
}

// Update reemplaza los campos editables. Si cambia end_date se limpia reminder_sent_at
// para que el nuevo vencimiento abra su propio ciclo de recordatorio.
func (uc *PolicyUseCase) Update(ctx context.Context, organizationID, id string, in dto.PolicyRequest) (*dto.PolicyResponse, error) {
	p, err := uc.repo.GetByID(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	previousEnd := p.EndDate
	if err := applyPolicyRequest(p, in); err != nil {
		return nil, err
	}
	if !p.EndDate.Equal(previousEnd) {
		p.ReminderSentAt = nil
	}
	p.UpdatedAt = uc.clock.Now().UTC()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("actualizar póliza: %w", err)
	}
	return toPolicyResponse(p), nil
}

// List lista pólizas por vencimiento con búsqueda opcional y paginación.
func (uc *PolicyUseCase) List(ctx context.Context, organizationID, search string, page dto.PageRequest) (*dto.PolicyListResponse, error) {
	page = page.Clamp()
	list, err := uc.repo.List(ctx, organizationID, search, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PolicyResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPolicyResponse(p))
	}
	return &dto.PolicyListResponse{
		Items: items,
		Page:  dto.NewPageResponse(page, len(items)),
	}, nil
}

// Delete elimina una póliza de la organización.
func (uc *PolicyUseCase) Delete(ctx context.Context, organizationID, id string) error {
	return uc.repo.Delete(ctx, organizationID, id)
}

func applyPolicyRequest(p *entity.Policy, in dto.PolicyRequest) error {
	end, err := time.Parse(dateLayout, in.EndDate)
	if err != nil {
		return fmt.Errorf("%w: end_date debe tener formato YYYY-MM-DD", policy.ErrInvalidPolicy)
	}
	p.ClientName = in.ClientName
	p.ClientStatus = in.ClientStatus
	p.Line = in.Line
	p.LineDetail = in.LineDetail
	p.EndDate = reminder.CalendarDate(end)
	p.Count = in.Count
	p.InsurerName = in.InsurerName
	p.ChannelType = in.ChannelType
	p.ContactName = in.ContactName
	p.ContactEmail = in.ContactEmail
	p.ContactPhone = in.ContactPhone
	p.Notes = in.Notes
	p.Documents = in.Documents
	p.ReminderLeadDays = in.ReminderLeadDays
	policy.Normalize(p)
	return policy.Validate(p)
}

func toPolicyResponse(p *entity.Policy) *dto.PolicyResponse {
	return &dto.PolicyResponse{
		ID:               p.ID,
		OrganizationID:   p.OrganizationID,
		ClientName:       p.ClientName,
		ClientStatus:     p.ClientStatus,
		Line:             p.Line,
		LineDetail:       p.LineDetail,
		EndDate:          p.EndDate.Format(dateLayout),
		Count:            p.Count,
		InsurerName:      p.InsurerName,
		ChannelType:      p.ChannelType,
		ContactName:      p.ContactName,
		ContactEmail:     p.ContactEmail,
		ContactPhone:     p.ContactPhone,
		Notes:            p.Notes,
		Documents:        p.Documents,
		ReminderLeadDays: p.ReminderLeadDays,
		ReminderSentAt:   p.ReminderSentAt,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
