package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/policyminders-api/internal/application/dto"
	"github.com/jhoicas/policyminders-api/internal/application/ports"
	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/policy"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
	"github.com/jhoicas/policyminders-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: registro y login.
type AuthUseCase struct {
	tx              TxRunner
	users           repository.UserRepository
	memberships     repository.MembershipRepository
	clock           ports.Clock
	jwtCfg          JWTConfig
	defaultMaxSeats int
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(
	tx TxRunner,
	users repository.UserRepository,
	memberships repository.MembershipRepository,
	clock ports.Clock,
	jwtCfg JWTConfig,
	defaultMaxSeats int,
) *AuthUseCase {
	if defaultMaxSeats <= 0 {
		defaultMaxSeats = entity.DefaultMaxSeats
	}
	return &AuthUseCase{
		tx:              tx,
		users:           users,
		memberships:     memberships,
		clock:           clock,
		jwtCfg:          jwtCfg,
		defaultMaxSeats: defaultMaxSeats,
	}
}

// Register crea en una sola transacción el usuario, su organización placeholder (con el espejo
// heredado), la membresía admin, el registro de rol y el perfil. Devuelve token y membresía.
func (uc *AuthUseCase) Register(ctx context.Context, in dto.RegisterRequest) (*dto.LoginResponse, error) {
	email := entity.NormalizeEmail(in.Email)
	if err := policy.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if err := policy.ValidatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	orgName := strings.TrimSpace(in.CompanyName)
	if orgName == "" {
		orgName = name + "'s Organization"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now().UTC()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	org := &entity.Organization{
		ID:        uuid.New().String(),
		Name:      orgName,
		MaxSeats:  uc.defaultMaxSeats,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m := &entity.Membership{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		OrganizationID: org.ID,
		Role:           entity.RoleAdmin,
		CreatedAt:      now,
	}

	err = uc.tx.RunSignup(ctx, func(r SignupRepos) error {
		if err := r.Users.Create(ctx, user); err != nil {
			return err
		}
		if err := r.Organizations.Create(ctx, org); err != nil {
			return fmt.Errorf("crear organización: %w", err)
		}
		if err := r.Companies.Create(ctx, &entity.Company{ID: org.ID, Name: org.Name, CreatedAt: now}); err != nil {
			return fmt.Errorf("crear company: %w", err)
		}
		if err := r.Memberships.Create(ctx, m); err != nil {
			return fmt.Errorf("crear membresía: %w", err)
		}
		if err := r.Roles.Upsert(ctx, &entity.UserRole{UserID: user.ID, Role: m.Role}); err != nil {
			return fmt.Errorf("registrar rol: %w", err)
		}
		profile := &entity.Profile{UserID: user.ID, OrganizationID: org.ID, Name: name, Email: email, UpdatedAt: now}
		if err := r.Profiles.Upsert(ctx, profile); err != nil {
			return fmt.Errorf("crear perfil: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.issueToken(user, m)
}

// Login verifica email/password, genera JWT y retorna token + usuario + membresía actual.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, entity.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	m, err := uc.memberships.GetByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return uc.issueToken(user, m)
}

func (uc *AuthUseCase) issueToken(user *entity.User, m *entity.Membership) (*dto.LoginResponse, error) {
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	resp := &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}
	if m != nil {
		resp.Membership = &dto.MembershipResponse{
			ID:             m.ID,
			OrganizationID: m.OrganizationID,
			Role:           m.Role,
		}
	}
	return resp, nil
}

// IsCredentialError informa si err corresponde a credenciales inválidas (usuario o contraseña).
func IsCredentialError(err error) bool {
	return errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrUnauthorized)
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
