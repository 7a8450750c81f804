package memory

import (
	"context"

	"github.com/jhoicas/policyminders-api/internal/domain"
	"github.com/jhoicas/policyminders-api/internal/domain/entity"
	"github.com/jhoicas/policyminders-api/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.ProfileRepository  = (*ProfileRepo)(nil)
	_ repository.UserRoleRepository = (*UserRoleRepo)(nil)
)

// UserRepo usuarios en memoria; email único tras normalizar.
type UserRepo struct {
	db *DB
}

// NewUserRepository construye el repositorio sobre db.
func NewUserRepository(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("users.Create"); err != nil {
		return err
	}
	for _, u := range r.db.users {
		if entity.SameEmail(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	clone := *user
	r.db.users[user.ID] = &clone
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if entity.SameEmail(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

// ProfileRepo perfiles en memoria, uno por usuario.
type ProfileRepo struct {
	db *DB
}

// NewProfileRepository construye el repositorio sobre db.
func NewProfileRepository(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

func (r *ProfileRepo) Upsert(ctx context.Context, p *entity.Profile) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("profiles.Upsert"); err != nil {
		return err
	}
	clone := *p
	r.db.profiles[p.UserID] = &clone
	return nil
}

func (r *ProfileRepo) GetByUser(ctx context.Context, userID string) (*entity.Profile, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

// UserRoleRepo registros de rol en memoria, uno por usuario.
type UserRoleRepo struct {
	db *DB
}

// NewUserRoleRepository construye el repositorio sobre db.
func NewUserRoleRepository(db *DB) *UserRoleRepo {
	return &UserRoleRepo{db: db}
}

func (r *UserRoleRepo) Upsert(ctx context.Context, role *entity.UserRole) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("roles.Upsert"); err != nil {
		return err
	}
	clone := *role
	r.db.roles[role.UserID] = &clone
	return nil
}

func (r *UserRoleRepo) DeleteByUser(ctx context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.db.fault("roles.DeleteByUser"); err != nil {
		return err
	}
	delete(r.db.roles, userID)
	return nil
}

// Get devuelve el rol registrado para userID; solo para pruebas.
func (r *UserRoleRepo) Get(userID string) (*entity.UserRole, bool) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	role, ok := r.db.roles[userID]
	if !ok {
		return nil, false
	}
	clone := *role
	return &clone, true
}
