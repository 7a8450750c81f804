// Package memory implementa los puertos de persistencia en memoria (STORE_BACKEND=memory).
// Mantiene la misma semántica que el adaptador PostgreSQL: unicidad, filtros por tenant,
// reclamo condicional de recordatorios. Los datos se pierden al reiniciar.
package memory

import (
	"sync"

	"github.com/jhoicas/policyminders-api/internal/domain/entity"
)

// DB estado compartido por todos los repositorios en memoria.
type DB struct {
	mu sync.RWMutex

	users       map[string]*entity.User                // id -> User
	profiles    map[string]*entity.Profile             // user_id -> Profile
	roles       map[string]*entity.UserRole            // user_id -> UserRole
	orgs        map[string]*entity.Organization        // id -> Organization
	companies   map[string]*entity.Company             // id -> Company
	memberships map[string]*entity.Membership          // id -> Membership
	invitations map[string]*entity.Invitation          // id -> Invitation
	policies    map[string]*entity.Policy              // id -> Policy
	settings    map[string]*entity.NotificationSetting // organization_id -> setting

	faults map[string]error
}

// NewDB crea un almacén vacío.
func NewDB() *DB {
	return &DB{
		users:       make(map[string]*entity.User),
		profiles:    make(map[string]*entity.Profile),
		roles:       make(map[string]*entity.UserRole),
		orgs:        make(map[string]*entity.Organization),
		companies:   make(map[string]*entity.Company),
		memberships: make(map[string]*entity.Membership),
		invitations: make(map[string]*entity.Invitation),
		policies:    make(map[string]*entity.Policy),
		settings:    make(map[string]*entity.NotificationSetting),
		faults:      make(map[string]error),
	}
}

// FailOn hace que la operación op ("memberships.Create", "profiles.Upsert", ...) devuelva err
// hasta que se llame a ClearFault. Permite reproducir fallos parciales en pruebas.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.faults[op] = err
}

// ClearFault elimina el fallo inyectado para op.
func (db *DB) ClearFault(op string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.faults, op)
}

// fault requiere db.mu tomado.
func (db *DB) fault(op string) error {
	return db.faults[op]
}

// snapshot copia superficial de los mapas. Los repositorios nunca mutan una entidad
// almacenada en sitio (siempre la reemplazan por un clon), así que basta para restaurar.
type snapshot struct {
	users       map[string]*entity.User
	profiles    map[string]*entity.Profile
	roles       map[string]*entity.UserRole
	orgs        map[string]*entity.Organization
	companies   map[string]*entity.Company
	memberships map[string]*entity.Membership
	invitations map[string]*entity.Invitation
	policies    map[string]*entity.Policy
	settings    map[string]*entity.NotificationSetting
}

func (db *DB) takeSnapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return snapshot{
		users:       copyMap(db.users),
		profiles:    copyMap(db.profiles),
		roles:       copyMap(db.roles),
		orgs:        copyMap(db.orgs),
		companies:   copyMap(db.companies),
		memberships: copyMap(db.memberships),
		invitations: copyMap(db.invitations),
		policies:    copyMap(db.policies),
		settings:    copyMap(db.settings),
	}
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = s.users
	db.profiles = s.profiles
	db.roles = s.roles
	db.orgs = s.orgs
	db.companies = s.companies
	db.memberships = s.memberships
	db.invitations = s.invitations
	db.policies = s.policies
	db.settings = s.settings
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
