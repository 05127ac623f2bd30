package identity

import "time"

// lockoutTimeFormat is how lockout_end_date_utc is rendered in the row.
const lockoutTimeFormat = time.RFC3339Nano

// userRow mirrors the users table. Boolean flags are stored as 0/1
// integers and the lockout end as a formatted string, keeping the rows
// byte-compatible with the legacy schema this package replaces.
type userRow struct {
	ID                   string  `gorm:"column:id;primaryKey"`
	UserName             string  `gorm:"column:user_name;uniqueIndex;not null"`
	PasswordHash         string  `gorm:"column:password_hash"`
	SecurityStamp        string  `gorm:"column:security_stamp"`
	Email                string  `gorm:"column:email"`
	EmailConfirmed       int     `gorm:"column:email_confirmed"`
	PhoneNumber          string  `gorm:"column:phone_number"`
	PhoneNumberConfirmed int     `gorm:"column:phone_number_confirmed"`
	TwoFactorEnabled     int     `gorm:"column:two_factor_enabled"`
	LockoutEnabled       int     `gorm:"column:lockout_enabled"`
	LockoutEndDateUTC    *string `gorm:"column:lockout_end_date_utc"`
	AccessFailedCount    int     `gorm:"column:access_failed_count"`
	RoleID               *string `gorm:"column:role_id"`
}

func (userRow) TableName() string {
	return "users"
}

type roleRow struct {
	ID   string `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;uniqueIndex;not null"`
}

func (roleRow) TableName() string {
	return "roles"
}

// claimRow carries a surrogate key so duplicate (type, value) pairs for
// one user stay individually addressable.
type claimRow struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     string `gorm:"column:user_id;index"`
	ClaimType  string `gorm:"column:claim_type"`
	ClaimValue string `gorm:"column:claim_value"`
}

func (claimRow) TableName() string {
	return "user_claims"
}

type loginRow struct {
	ID            uint   `gorm:"column:id;primaryKey;autoIncrement"`
	UserID        string `gorm:"column:user_id;index"`
	LoginProvider string `gorm:"column:login_provider;uniqueIndex:uq_user_logins_provider_key"`
	ProviderKey   string `gorm:"column:provider_key;uniqueIndex:uq_user_logins_provider_key"`
}

func (loginRow) TableName() string {
	return "user_logins"
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
