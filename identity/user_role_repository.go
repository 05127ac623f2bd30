package identity

import (
	"errors"

	"gorm.io/gorm"
)

// UserRoleRepository manages the single role_id reference on a user
// row. The schema allows at most one role per user; membership is the
// presence of that reference.
type UserRoleRepository struct {
	db *gorm.DB
}

func NewUserRoleRepository(db *gorm.DB) *UserRoleRepository {
	return &UserRoleRepository{db: db}
}

// RoleNameByUserID follows the user's role reference to the role name.
// Unknown users, unset roles and dangling references all read as "".
func (r *UserRoleRepository) RoleNameByUserID(userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	var row userRow
	if err := r.db.First(&row, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	if row.RoleID == nil || *row.RoleID == "" {
		return "", nil
	}
	var role roleRow
	if err := r.db.First(&role, "id = ?", *row.RoleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return role.Name, nil
}

// SetRole points the user at roleID and commits. No-op unless both ids
// are non-empty and the user row exists. The role id is not validated;
// a dangling reference later reads back as no role.
func (r *UserRoleRepository) SetRole(userID, roleID string) error {
	if userID == "" || roleID == "" {
		return nil
	}
	var row userRow
	if err := r.db.First(&row, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	row.RoleID = &roleID
	return r.db.Save(&row).Error
}

// ClearRole unsets the user's role reference and commits; unknown
// users are a no-op.
func (r *UserRoleRepository) ClearRole(userID string) error {
	if userID == "" {
		return nil
	}
	var row userRow
	if err := r.db.First(&row, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	row.RoleID = nil
	return r.db.Save(&row).Error
}
