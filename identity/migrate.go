package identity

import "gorm.io/gorm"

// AutoMigrate creates or updates the four identity tables. Intended
// for tests and SQLite deployments; Postgres schemas go through the
// goose migrations under migrations/.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&userRow{}, &roleRow{}, &claimRow{}, &loginRow{})
}
