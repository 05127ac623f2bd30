package identity

import (
	"errors"

	"gorm.io/gorm"
)

// UserLoginRepository manages the user_logins table. The
// (provider, provider key) pair is globally unique and is the lookup
// key for resolving a user from an external login.
type UserLoginRepository struct {
	db *gorm.DB
}

func NewUserLoginRepository(db *gorm.DB) *UserLoginRepository {
	return &UserLoginRepository{db: db}
}

// Add binds an external login to the user. Inserting an already-bound
// (provider, key) pair surfaces the driver's constraint error.
func (r *UserLoginRepository) Add(userID string, login LoginInfo) error {
	if userID == "" {
		return nil
	}
	return r.db.Create(&loginRow{
		UserID:        userID,
		LoginProvider: login.Provider,
		ProviderKey:   login.ProviderKey,
	}).Error
}

// Delete removes the matching binding; absent rows are a no-op.
func (r *UserLoginRepository) Delete(userID string, login LoginInfo) error {
	var row loginRow
	err := r.db.
		Where("user_id = ? AND login_provider = ? AND provider_key = ?", userID, login.Provider, login.ProviderKey).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.db.Delete(&row).Error
}

// DeleteAll removes every login binding owned by the user.
func (r *UserLoginRepository) DeleteAll(userID string) error {
	if userID == "" {
		return nil
	}
	return r.db.Where("user_id = ?", userID).Delete(&loginRow{}).Error
}

// UserIDByLogin resolves the owning user id, "" when nothing matches.
func (r *UserLoginRepository) UserIDByLogin(login LoginInfo) (string, error) {
	var row loginRow
	err := r.db.
		Where("login_provider = ? AND provider_key = ?", login.Provider, login.ProviderKey).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.UserID, nil
}

// ByUserID lists the user's login bindings in insertion order; an
// empty id yields an empty slice.
func (r *UserLoginRepository) ByUserID(userID string) ([]LoginInfo, error) {
	logins := []LoginInfo{}
	if userID == "" {
		return logins, nil
	}
	var rows []loginRow
	if err := r.db.Where("user_id = ?", userID).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		logins = append(logins, LoginInfo{Provider: row.LoginProvider, ProviderKey: row.ProviderKey})
	}
	return logins, nil
}
