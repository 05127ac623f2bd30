package identity

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleStore composes the role repository behind the role-management
// surface an authentication framework programs against. A store owns
// its persistence handle for its lifetime; Close releases it once.
type RoleStore[R RoleModel] struct {
	db    *gorm.DB
	log   *zap.Logger
	roles *RoleRepository[R]
}

// NewRoleStore builds a store over db. The factory constructs the
// caller's role type whenever rows are materialized.
func NewRoleStore[R RoleModel](db *gorm.DB, log *zap.Logger, factory func() R) *RoleStore[R] {
	return &RoleStore[R]{
		db:    db,
		log:   log,
		roles: NewRoleRepository(db, factory),
	}
}

// All returns every stored role.
func (s *RoleStore[R]) All() ([]R, error) {
	return s.roles.All()
}

// Create persists a new role.
func (s *RoleStore[R]) Create(role R) error {
	if nilModel(role) {
		return ErrNilRole
	}
	s.log.Debug("creating role", zap.String("role_id", role.Role().ID))
	return s.roles.Add(role)
}

// Delete removes the role's row; unknown roles are a silent no-op.
// Users still referencing the role keep a dangling reference that
// reads back as no role.
func (s *RoleStore[R]) Delete(role R) error {
	if nilModel(role) {
		return ErrNilRole
	}
	return s.roles.Delete(role.Role().ID)
}

// FindByID returns the stored role, or the zero value when unknown.
func (s *RoleStore[R]) FindByID(roleID string) (R, error) {
	return s.roles.ByID(roleID)
}

// FindByName returns the stored role, or the zero value when unknown.
func (s *RoleStore[R]) FindByName(roleName string) (R, error) {
	return s.roles.ByName(roleName)
}

// Update overwrites the stored name; unknown roles are a silent no-op.
func (s *RoleStore[R]) Update(role R) error {
	if nilModel(role) {
		return ErrNilRole
	}
	return s.roles.Update(role)
}

// Close releases the underlying connection. Safe to call more than
// once; only the first call closes.
func (s *RoleStore[R]) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
