package identity

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// UserStore composes the table repositories behind the full identity
// capability surface: users, claims, external logins, the single-role
// assignment, password hash, security stamp, email, phone, two-factor
// and lockout bookkeeping. It is the sole integration surface for an
// authentication framework.
//
// Getters for email, phone, two-factor and lockout fields read the
// in-memory model that the caller passes in; their setters mutate the
// model and immediately persist a full-row update. SetPasswordHash and
// SetSecurityStamp are the exception: they only stage the change on
// the model, and nothing is written until Update runs.
//
// A store owns its persistence handle and performs no locking;
// concurrent mutation of the same row is a read-modify-write race.
// Callers needing concurrency should use one store per unit of work.
type UserStore[T UserModel] struct {
	db        *gorm.DB
	log       *zap.Logger
	users     *UserRepository[T]
	roles     *RoleRepository[*Role]
	userRoles *UserRoleRepository
	claims    *UserClaimRepository
	logins    *UserLoginRepository
}

// NewUserStore builds a store over db. The factory constructs the
// caller's user type whenever rows are materialized.
func NewUserStore[T UserModel](db *gorm.DB, log *zap.Logger, factory func() T) *UserStore[T] {
	return &UserStore[T]{
		db:        db,
		log:       log,
		users:     NewUserRepository(db, factory),
		roles:     NewRoleRepository(db, func() *Role { return &Role{} }),
		userRoles: NewUserRoleRepository(db),
		claims:    NewUserClaimRepository(db),
		logins:    NewUserLoginRepository(db),
	}
}

// Create persists a new user row.
func (s *UserStore[T]) Create(user T) error {
	if nilModel(user) {
		return ErrNilUser
	}
	s.log.Debug("creating user", zap.String("user_id", user.User().ID))
	return s.users.Add(user)
}

// FindByID returns the stored user, or the zero value when unknown.
func (s *UserStore[T]) FindByID(userID string) (T, error) {
	var zero T
	if userID == "" {
		return zero, ErrEmptyUserID
	}
	return s.users.ByID(userID)
}

// FindByName returns the stored user, or the zero value when unknown.
func (s *UserStore[T]) FindByName(userName string) (T, error) {
	var zero T
	if userName == "" {
		return zero, ErrEmptyUserName
	}
	return s.users.ByName(userName)
}

// FindByEmail returns the stored user, or the zero value when unknown.
func (s *UserStore[T]) FindByEmail(email string) (T, error) {
	var zero T
	if email == "" {
		return zero, ErrEmptyEmail
	}
	return s.users.ByEmail(email)
}

// Update overwrites the stored row with the model's current fields;
// unknown users are a silent no-op.
func (s *UserStore[T]) Update(user T) error {
	if nilModel(user) {
		return ErrNilUser
	}
	return s.users.Update(user)
}

// Delete removes the user together with its claims and login bindings,
// so no orphaned (provider, key) pair keeps resolving to a dead id.
// The role row itself is untouched.
func (s *UserStore[T]) Delete(user T) error {
	if nilModel(user) {
		return ErrNilUser
	}
	userID := user.User().ID
	s.log.Debug("deleting user", zap.String("user_id", userID))
	if err := s.claims.DeleteAll(userID); err != nil {
		return err
	}
	if err := s.logins.DeleteAll(userID); err != nil {
		return err
	}
	return s.users.Delete(user)
}

// Users returns every stored user.
func (s *UserStore[T]) Users() ([]T, error) {
	return s.users.All()
}

// AddClaim attaches a claim to the user. Duplicate pairs are allowed.
func (s *UserStore[T]) AddClaim(user T, claim Claim) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if claim.Type == "" {
		return ErrEmptyClaimType
	}
	return s.claims.Add(claim, user.User().ID)
}

// Claims lists the user's claims in insertion order.
func (s *UserStore[T]) Claims(user T) ([]Claim, error) {
	if nilModel(user) {
		return nil, ErrNilUser
	}
	return s.claims.ByUserID(user.User().ID)
}

// RemoveClaim deletes one row matching the exact (type, value) pair;
// no match is a silent no-op.
func (s *UserStore[T]) RemoveClaim(user T, claim Claim) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if claim.Type == "" {
		return ErrEmptyClaimType
	}
	return s.claims.Delete(user.User().ID, claim)
}

// AddLogin binds an external login to the user.
func (s *UserStore[T]) AddLogin(user T, login LoginInfo) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if login.Provider == "" || login.ProviderKey == "" {
		return ErrEmptyLogin
	}
	return s.logins.Add(user.User().ID, login)
}

// FindByLogin resolves a user from an external (provider, key) pair,
// returning the zero value when nothing matches.
func (s *UserStore[T]) FindByLogin(login LoginInfo) (T, error) {
	var zero T
	if login.Provider == "" || login.ProviderKey == "" {
		return zero, ErrEmptyLogin
	}
	userID, err := s.logins.UserIDByLogin(login)
	if err != nil || userID == "" {
		return zero, err
	}
	return s.users.ByID(userID)
}

// Logins lists the user's login bindings.
func (s *UserStore[T]) Logins(user T) ([]LoginInfo, error) {
	if nilModel(user) {
		return nil, ErrNilUser
	}
	return s.logins.ByUserID(user.User().ID)
}

// RemoveLogin deletes the matching binding; no match is a silent no-op.
func (s *UserStore[T]) RemoveLogin(user T, login LoginInfo) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if login.Provider == "" || login.ProviderKey == "" {
		return ErrEmptyLogin
	}
	return s.logins.Delete(user.User().ID, login)
}

// AddToRole assigns the named role as the user's single role,
// replacing whatever was set before. An unknown role name is a silent
// no-op.
func (s *UserStore[T]) AddToRole(user T, roleName string) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if roleName == "" {
		return ErrEmptyRoleName
	}
	roleID, err := s.roles.IDByName(roleName)
	if err != nil {
		return err
	}
	if roleID == "" {
		return nil
	}
	return s.userRoles.SetRole(user.User().ID, roleID)
}

// Roles returns the user's role memberships. With the single-role
// schema that is at most one name.
func (s *UserStore[T]) Roles(user T) ([]string, error) {
	if nilModel(user) {
		return nil, ErrNilUser
	}
	name, err := s.userRoles.RoleNameByUserID(user.User().ID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return []string{}, nil
	}
	return []string{name}, nil
}

// IsInRole reports whether the user's current role name matches
// exactly (case-sensitive).
func (s *UserStore[T]) IsInRole(user T, roleName string) (bool, error) {
	if nilModel(user) {
		return false, ErrNilUser
	}
	if roleName == "" {
		return false, ErrEmptyRoleName
	}
	name, err := s.userRoles.RoleNameByUserID(user.User().ID)
	if err != nil {
		return false, err
	}
	return name == roleName, nil
}

// RemoveFromRole clears the user's role assignment. With a single-role
// schema the name argument only gates validation: whatever role is set
// gets cleared, regardless of the name passed.
func (s *UserStore[T]) RemoveFromRole(user T, roleName string) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if roleName == "" {
		return ErrEmptyRoleName
	}
	return s.userRoles.ClearRole(user.User().ID)
}

// PasswordHash reads the hash currently stored for the user, not the
// one staged on the model.
func (s *UserStore[T]) PasswordHash(user T) (string, error) {
	if nilModel(user) {
		return "", ErrNilUser
	}
	return s.users.PasswordHash(user.User().ID)
}

// HasPassword reports whether a hash is stored for the user.
func (s *UserStore[T]) HasPassword(user T) (bool, error) {
	if nilModel(user) {
		return false, ErrNilUser
	}
	hash, err := s.users.PasswordHash(user.User().ID)
	return hash != "", err
}

// SetPasswordHash stages the hash on the in-memory model only; nothing
// is written until the caller invokes Update.
func (s *UserStore[T]) SetPasswordHash(user T, hash string) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if hash == "" {
		return ErrEmptyPasswordHash
	}
	user.User().PasswordHash = hash
	return nil
}

// SecurityStamp reads the stamp from the in-memory model.
func (s *UserStore[T]) SecurityStamp(user T) (string, error) {
	if nilModel(user) {
		return "", ErrNilUser
	}
	return user.User().SecurityStamp, nil
}

// SetSecurityStamp stages the stamp on the in-memory model only;
// nothing is written until the caller invokes Update.
func (s *UserStore[T]) SetSecurityStamp(user T, stamp string) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if stamp == "" {
		return ErrEmptySecurityStamp
	}
	user.User().SecurityStamp = stamp
	return nil
}

// Email reads the email from the in-memory model.
func (s *UserStore[T]) Email(user T) (string, error) {
	if nilModel(user) {
		return "", ErrNilUser
	}
	return user.User().Email, nil
}

// SetEmail updates the model and persists the row.
func (s *UserStore[T]) SetEmail(user T, email string) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if email == "" {
		return ErrEmptyEmail
	}
	user.User().Email = email
	return s.users.Update(user)
}

// EmailConfirmed reads the flag from the in-memory model.
func (s *UserStore[T]) EmailConfirmed(user T) (bool, error) {
	if nilModel(user) {
		return false, ErrNilUser
	}
	return user.User().EmailConfirmed, nil
}

// SetEmailConfirmed updates the model and persists the row.
func (s *UserStore[T]) SetEmailConfirmed(user T, confirmed bool) error {
	if nilModel(user) {
		return ErrNilUser
	}
	user.User().EmailConfirmed = confirmed
	return s.users.Update(user)
}

// PhoneNumber reads the number from the in-memory model.
func (s *UserStore[T]) PhoneNumber(user T) (string, error) {
	if nilModel(user) {
		return "", ErrNilUser
	}
	return user.User().PhoneNumber, nil
}

// SetPhoneNumber updates the model and persists the row.
func (s *UserStore[T]) SetPhoneNumber(user T, phoneNumber string) error {
	if nilModel(user) {
		return ErrNilUser
	}
	if phoneNumber == "" {
		return ErrEmptyPhoneNumber
	}
	user.User().PhoneNumber = phoneNumber
	return s.users.Update(user)
}

// PhoneNumberConfirmed reads the flag from the in-memory model.
func (s *UserStore[T]) PhoneNumberConfirmed(user T) (bool, error) {
	if nilModel(user) {
		return false, ErrNilUser
	}
	return user.User().PhoneNumberConfirmed, nil
}

// SetPhoneNumberConfirmed updates the model and persists the row.
func (s *UserStore[T]) SetPhoneNumberConfirmed(user T, confirmed bool) error {
	if nilModel(user) {
		return ErrNilUser
	}
	user.User().PhoneNumberConfirmed = confirmed
	return s.users.Update(user)
}

// TwoFactorEnabled reads the flag from the in-memory model.
func (s *UserStore[T]) TwoFactorEnabled(user T) (bool, error) {
	if nilModel(user) {
		return false, ErrNilUser
	}
	return user.User().TwoFactorEnabled, nil
}

// SetTwoFactorEnabled updates the model and persists the row.
func (s *UserStore[T]) SetTwoFactorEnabled(user T, enabled bool) error {
	if nilModel(user) {
		return ErrNilUser
	}
	user.User().TwoFactorEnabled = enabled
	return s.users.Update(user)
}

// LockoutEndDate reads the lockout end from the in-memory model,
// returning the zero time when unset.
func (s *UserStore[T]) LockoutEndDate(user T) (time.Time, error) {
	if nilModel(user) {
		return time.Time{}, ErrNilUser
	}
	base := user.User()
	if base.LockoutEndDateUTC == nil {
		return time.Time{}, nil
	}
	return base.LockoutEndDateUTC.UTC(), nil
}

// SetLockoutEndDate updates the model and persists the row.
func (s *UserStore[T]) SetLockoutEndDate(user T, end time.Time) error {
	if nilModel(user) {
		return ErrNilUser
	}
	utc := end.UTC()
	user.User().LockoutEndDateUTC = &utc
	return s.users.Update(user)
}

// LockoutEnabled reads the flag from the in-memory model.
func (s *UserStore[T]) LockoutEnabled(user T) (bool, error) {
	if nilModel(user) {
		return false, ErrNilUser
	}
	return user.User().LockoutEnabled, nil
}

// SetLockoutEnabled updates the model and persists the row.
func (s *UserStore[T]) SetLockoutEnabled(user T, enabled bool) error {
	if nilModel(user) {
		return ErrNilUser
	}
	user.User().LockoutEnabled = enabled
	return s.users.Update(user)
}

// AccessFailedCount reads the counter from the in-memory model.
func (s *UserStore[T]) AccessFailedCount(user T) (int, error) {
	if nilModel(user) {
		return 0, ErrNilUser
	}
	return user.User().AccessFailedCount, nil
}

// IncrementAccessFailedCount bumps the counter, persists the row and
// returns the new value.
func (s *UserStore[T]) IncrementAccessFailedCount(user T) (int, error) {
	if nilModel(user) {
		return 0, ErrNilUser
	}
	base := user.User()
	base.AccessFailedCount++
	if err := s.users.Update(user); err != nil {
		return 0, err
	}
	return base.AccessFailedCount, nil
}

// ResetAccessFailedCount zeroes the counter and persists the row.
func (s *UserStore[T]) ResetAccessFailedCount(user T) error {
	if nilModel(user) {
		return ErrNilUser
	}
	user.User().AccessFailedCount = 0
	return s.users.Update(user)
}

// Close releases the underlying connection. Safe to call more than
// once; only the first call closes.
func (s *UserStore[T]) Close() error {
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
