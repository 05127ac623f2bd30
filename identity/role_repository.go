package identity

import (
	"errors"

	"gorm.io/gorm"
)

// RoleRepository performs CRUD against the roles table. Rows are
// materialized through the caller-supplied factory so an application
// role type round-trips without losing its own fields.
type RoleRepository[R RoleModel] struct {
	db      *gorm.DB
	factory func() R
}

func NewRoleRepository[R RoleModel](db *gorm.DB, factory func() R) *RoleRepository[R] {
	return &RoleRepository[R]{db: db, factory: factory}
}

// All returns every role in the roles table, order unspecified.
func (r *RoleRepository[R]) All() ([]R, error) {
	var rows []roleRow
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]R, 0, len(rows))
	for i := range rows {
		roles = append(roles, r.materialize(&rows[i]))
	}
	return roles, nil
}

// Delete removes a role row. An empty id and a missing row are both
// silent no-ops.
func (r *RoleRepository[R]) Delete(roleID string) error {
	if roleID == "" {
		return nil
	}
	var row roleRow
	if err := r.db.First(&row, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.db.Delete(&row).Error
}

// Add inserts a new role row. Nil roles are a no-op; a duplicate id
// surfaces as the driver's constraint error.
func (r *RoleRepository[R]) Add(role R) error {
	if nilModel(role) {
		return nil
	}
	base := role.Role()
	return r.db.Create(&roleRow{ID: base.ID, Name: base.Name}).Error
}

// NameByID returns the role name, or "" when the id is empty or unknown.
func (r *RoleRepository[R]) NameByID(roleID string) (string, error) {
	if roleID == "" {
		return "", nil
	}
	var row roleRow
	if err := r.db.First(&row, "id = ?", roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.Name, nil
}

// IDByName returns the role id, or "" when the name is empty or unknown.
func (r *RoleRepository[R]) IDByName(roleName string) (string, error) {
	if roleName == "" {
		return "", nil
	}
	var row roleRow
	if err := r.db.First(&row, "name = ?", roleName).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.ID, nil
}

// ByID returns the materialized role, or the zero value when not found.
func (r *RoleRepository[R]) ByID(roleID string) (R, error) {
	var zero R
	if roleID == "" {
		return zero, nil
	}
	name, err := r.NameByID(roleID)
	if err != nil || name == "" {
		return zero, err
	}
	return r.materialize(&roleRow{ID: roleID, Name: name}), nil
}

// ByName returns the materialized role, or the zero value when not found.
func (r *RoleRepository[R]) ByName(roleName string) (R, error) {
	var zero R
	if roleName == "" {
		return zero, nil
	}
	id, err := r.IDByName(roleName)
	if err != nil || id == "" {
		return zero, err
	}
	return r.materialize(&roleRow{ID: id, Name: roleName}), nil
}

// Update overwrites the stored name. Nil roles and missing rows are
// no-ops; the id is immutable.
func (r *RoleRepository[R]) Update(role R) error {
	if nilModel(role) {
		return nil
	}
	base := role.Role()
	var row roleRow
	if err := r.db.First(&row, "id = ?", base.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	row.Name = base.Name
	return r.db.Save(&row).Error
}

func (r *RoleRepository[R]) materialize(row *roleRow) R {
	role := r.factory()
	base := role.Role()
	base.ID = row.ID
	base.Name = row.Name
	return role
}
