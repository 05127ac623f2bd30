package identity

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// UserRepository performs CRUD against the users table and maps between
// the stored row shape and the caller's user type. Every mutation
// re-reads the current row, applies the change and commits; there is no
// locking, so concurrent writers to the same row can race.
type UserRepository[T UserModel] struct {
	db      *gorm.DB
	factory func() T
}

func NewUserRepository[T UserModel](db *gorm.DB, factory func() T) *UserRepository[T] {
	return &UserRepository[T]{db: db, factory: factory}
}

// All returns every user in the users table, order unspecified.
func (r *UserRepository[T]) All() ([]T, error) {
	var rows []userRow
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]T, 0, len(rows))
	for i := range rows {
		users = append(users, r.materialize(&rows[i]))
	}
	return users, nil
}

// UserNameByID returns the stored user name, or "" when the id is
// empty or unknown.
func (r *UserRepository[T]) UserNameByID(userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	row, err := r.find("id = ?", userID)
	if err != nil || row == nil {
		return "", err
	}
	return row.UserName, nil
}

// IDByUserName returns the user id, or "" when the name is empty or
// unknown.
func (r *UserRepository[T]) IDByUserName(userName string) (string, error) {
	if userName == "" {
		return "", nil
	}
	row, err := r.find("user_name = ?", userName)
	if err != nil || row == nil {
		return "", err
	}
	return row.ID, nil
}

// ByID returns the materialized user, or the zero value when not found.
func (r *UserRepository[T]) ByID(userID string) (T, error) {
	return r.one("id = ?", userID)
}

// ByName returns the materialized user, or the zero value when not found.
func (r *UserRepository[T]) ByName(userName string) (T, error) {
	return r.one("user_name = ?", userName)
}

// ByEmail returns the materialized user, or the zero value when not found.
func (r *UserRepository[T]) ByEmail(email string) (T, error) {
	return r.one("email = ?", email)
}

func (r *UserRepository[T]) one(query string, arg string) (T, error) {
	var zero T
	if arg == "" {
		return zero, nil
	}
	row, err := r.find(query, arg)
	if err != nil || row == nil {
		return zero, err
	}
	return r.materialize(row), nil
}

// PasswordHash returns the hash currently stored, "" when the user is
// unknown.
func (r *UserRepository[T]) PasswordHash(userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	row, err := r.find("id = ?", userID)
	if err != nil || row == nil {
		return "", err
	}
	return row.PasswordHash, nil
}

// SetPasswordHash overwrites the stored hash and commits. Both
// arguments must be non-empty; unknown users are a no-op.
func (r *UserRepository[T]) SetPasswordHash(userID, hash string) error {
	if userID == "" || hash == "" {
		return nil
	}
	row, err := r.find("id = ?", userID)
	if err != nil || row == nil {
		return err
	}
	row.PasswordHash = hash
	return r.db.Save(row).Error
}

// SecurityStamp returns the stamp currently stored, "" when the user
// is unknown.
func (r *UserRepository[T]) SecurityStamp(userID string) (string, error) {
	if userID == "" {
		return "", nil
	}
	row, err := r.find("id = ?", userID)
	if err != nil || row == nil {
		return "", err
	}
	return row.SecurityStamp, nil
}

// SetSecurityStamp overwrites the stored stamp and commits. Both
// arguments must be non-empty; unknown users are a no-op.
func (r *UserRepository[T]) SetSecurityStamp(userID, stamp string) error {
	if userID == "" || stamp == "" {
		return nil
	}
	row, err := r.find("id = ?", userID)
	if err != nil || row == nil {
		return err
	}
	row.SecurityStamp = stamp
	return r.db.Save(row).Error
}

// Add inserts a new row mapped from every field of the model,
// converting booleans to 0/1 and the optional lockout end to a
// formatted string or NULL. Nil users are a no-op.
func (r *UserRepository[T]) Add(user T) error {
	if nilModel(user) {
		return nil
	}
	return r.db.Create(newUserRow(user.User())).Error
}

// Update re-reads the row by id and overwrites every mutable field.
// The id and the role assignment are never touched here (the role goes
// through UserRoleRepository); missing rows are a no-op.
func (r *UserRepository[T]) Update(user T) error {
	if nilModel(user) {
		return nil
	}
	base := user.User()
	row, err := r.find("id = ?", base.ID)
	if err != nil || row == nil {
		return err
	}
	row.UserName = base.UserName
	row.PasswordHash = base.PasswordHash
	row.SecurityStamp = base.SecurityStamp
	row.Email = base.Email
	row.EmailConfirmed = boolToInt(base.EmailConfirmed)
	row.PhoneNumber = base.PhoneNumber
	row.PhoneNumberConfirmed = boolToInt(base.PhoneNumberConfirmed)
	row.LockoutEnabled = boolToInt(base.LockoutEnabled)
	row.LockoutEndDateUTC = formatLockoutEnd(base.LockoutEndDateUTC)
	row.AccessFailedCount = base.AccessFailedCount
	row.TwoFactorEnabled = boolToInt(base.TwoFactorEnabled)
	return r.db.Save(row).Error
}

// Delete removes the user's row; nil and unknown users are no-ops.
func (r *UserRepository[T]) Delete(user T) error {
	if nilModel(user) {
		return nil
	}
	return r.DeleteByID(user.User().ID)
}

// DeleteByID removes the row with the given id; empty ids and missing
// rows are no-ops.
func (r *UserRepository[T]) DeleteByID(userID string) error {
	if userID == "" {
		return nil
	}
	row, err := r.find("id = ?", userID)
	if err != nil || row == nil {
		return err
	}
	return r.db.Delete(row).Error
}

// find absorbs gorm's not-found into a nil row.
func (r *UserRepository[T]) find(query string, arg string) (*userRow, error) {
	var row userRow
	if err := r.db.First(&row, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// newUserRow maps a domain user onto a fresh row for insertion. An
// unset role or lockout end becomes NULL.
func newUserRow(u *User) *userRow {
	row := &userRow{
		ID:                   u.ID,
		UserName:             u.UserName,
		PasswordHash:         u.PasswordHash,
		SecurityStamp:        u.SecurityStamp,
		Email:                u.Email,
		EmailConfirmed:       boolToInt(u.EmailConfirmed),
		PhoneNumber:          u.PhoneNumber,
		PhoneNumberConfirmed: boolToInt(u.PhoneNumberConfirmed),
		TwoFactorEnabled:     boolToInt(u.TwoFactorEnabled),
		LockoutEnabled:       boolToInt(u.LockoutEnabled),
		AccessFailedCount:    u.AccessFailedCount,
	}
	if u.LockoutEndDateUTC != nil {
		formatted := u.LockoutEndDateUTC.UTC().Format(lockoutTimeFormat)
		row.LockoutEndDateUTC = &formatted
	}
	if u.RoleID != "" {
		roleID := u.RoleID
		row.RoleID = &roleID
	}
	return row
}

// formatLockoutEnd renders the update-path value: a nil lockout end is
// written as the empty string, not NULL. Both read back as absent, but
// the row stays byte-compatible with what the legacy writer produced.
func formatLockoutEnd(end *time.Time) *string {
	formatted := ""
	if end != nil {
		formatted = end.UTC().Format(lockoutTimeFormat)
	}
	return &formatted
}

// materialize builds a fresh instance of the caller's type from a
// stored row, converting 0/1 flags back to booleans. A row without a
// lockout end deliberately reads back as the current time; existing
// callers depend on that (see DESIGN.md).
func (r *UserRepository[T]) materialize(row *userRow) T {
	user := r.factory()
	base := user.User()
	base.ID = row.ID
	base.UserName = row.UserName
	base.PasswordHash = row.PasswordHash
	base.SecurityStamp = row.SecurityStamp
	base.Email = row.Email
	base.EmailConfirmed = row.EmailConfirmed == 1
	base.PhoneNumber = row.PhoneNumber
	base.PhoneNumberConfirmed = row.PhoneNumberConfirmed == 1
	base.TwoFactorEnabled = row.TwoFactorEnabled == 1
	base.LockoutEnabled = row.LockoutEnabled == 1
	base.AccessFailedCount = row.AccessFailedCount
	if row.RoleID != nil {
		base.RoleID = *row.RoleID
	}
	lockout := time.Now().UTC()
	if row.LockoutEndDateUTC != nil && *row.LockoutEndDateUTC != "" {
		if parsed, err := time.Parse(lockoutTimeFormat, *row.LockoutEndDateUTC); err == nil {
			lockout = parsed
		}
	}
	base.LockoutEndDateUTC = &lockout
	return user
}
