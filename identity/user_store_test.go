package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateAndFind(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	user.Email = "alice@example.com"
	require.NoError(t, store.Create(user))

	found, err := store.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "alice", found.UserName)

	found, err = store.FindByName("alice")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	found, err = store.FindByEmail("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	found, err = store.FindByID("missing")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserStore_RoleLifecycle(t *testing.T) {
	store, roleStore, _ := newTestStores(t)

	role := NewRole("Admin")
	require.NoError(t, roleStore.Create(role))
	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	require.NoError(t, store.AddToRole(user, "Admin"))

	names, err := store.Roles(user)
	require.NoError(t, err)
	assert.Equal(t, []string{"Admin"}, names)

	inRole, err := store.IsInRole(user, "Admin")
	require.NoError(t, err)
	assert.True(t, inRole)

	inRole, err = store.IsInRole(user, "admin")
	require.NoError(t, err)
	assert.False(t, inRole)

	// A second assignment replaces the first.
	require.NoError(t, roleStore.Create(NewRole("Operator")))
	require.NoError(t, store.AddToRole(user, "Operator"))

	names, err = store.Roles(user)
	require.NoError(t, err)
	assert.Equal(t, []string{"Operator"}, names)

	// The name passed to RemoveFromRole only gates validation; whatever
	// role is set gets cleared.
	require.NoError(t, store.RemoveFromRole(user, "Admin"))

	names, err = store.Roles(user)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestUserStore_AddToUnknownRoleIsNoOp(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	require.NoError(t, store.AddToRole(user, "Nobody"))

	names, err := store.Roles(user)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestUserStore_DeletedRoleReadsAsNoRole(t *testing.T) {
	store, roleStore, _ := newTestStores(t)

	role := NewRole("Admin")
	require.NoError(t, roleStore.Create(role))
	user := NewUser("alice")
	require.NoError(t, store.Create(user))
	require.NoError(t, store.AddToRole(user, "Admin"))

	require.NoError(t, roleStore.Delete(role))

	names, err := store.Roles(user)
	require.NoError(t, err)
	assert.Empty(t, names)

	inRole, err := store.IsInRole(user, "Admin")
	require.NoError(t, err)
	assert.False(t, inRole)
}

func TestUserStore_LoginLifecycle(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	login := LoginInfo{Provider: "google", ProviderKey: "g123"}
	require.NoError(t, store.AddLogin(user, login))

	found, err := store.FindByLogin(login)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	logins, err := store.Logins(user)
	require.NoError(t, err)
	assert.Equal(t, []LoginInfo{login}, logins)

	require.NoError(t, store.RemoveLogin(user, login))

	found, err = store.FindByLogin(login)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUserStore_Claims(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	require.NoError(t, store.AddClaim(user, Claim{Type: "scope", Value: "read"}))
	require.NoError(t, store.AddClaim(user, Claim{Type: "scope", Value: "read"}))
	require.NoError(t, store.AddClaim(user, Claim{Type: "dept", Value: "ops"}))

	claims, err := store.Claims(user)
	require.NoError(t, err)
	assert.Len(t, claims, 3)

	require.NoError(t, store.RemoveClaim(user, Claim{Type: "scope", Value: "read"}))

	claims, err = store.Claims(user)
	require.NoError(t, err)
	assert.Len(t, claims, 2)
}

func TestUserStore_PasswordHashStagesUntilUpdate(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	user.PasswordHash = "hash-1"
	require.NoError(t, store.Create(user))

	// SetPasswordHash only stages; the stored hash is unchanged until
	// Update runs.
	require.NoError(t, store.SetPasswordHash(user, "hash-2"))

	stored, err := store.PasswordHash(user)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", stored)

	require.NoError(t, store.Update(user))

	stored, err = store.PasswordHash(user)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", stored)

	has, err := store.HasPassword(user)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestUserStore_SecurityStampStagesUntilUpdate(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	user.SecurityStamp = "stamp-1"
	require.NoError(t, store.Create(user))

	require.NoError(t, store.SetSecurityStamp(user, "stamp-2"))

	// The getter reads the model, so it sees the staged value...
	stamp, err := store.SecurityStamp(user)
	require.NoError(t, err)
	assert.Equal(t, "stamp-2", stamp)

	// ...but a fresh read from storage still has the old one.
	fresh, err := store.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "stamp-1", fresh.SecurityStamp)

	require.NoError(t, store.Update(user))

	fresh, err = store.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "stamp-2", fresh.SecurityStamp)
}

func TestUserStore_EmailAndPhoneSettersPersist(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	require.NoError(t, store.SetEmail(user, "alice@example.com"))
	require.NoError(t, store.SetEmailConfirmed(user, true))
	require.NoError(t, store.SetPhoneNumber(user, "+15550100"))
	require.NoError(t, store.SetPhoneNumberConfirmed(user, true))
	require.NoError(t, store.SetTwoFactorEnabled(user, true))

	fresh, err := store.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", fresh.Email)
	assert.True(t, fresh.EmailConfirmed)
	assert.Equal(t, "+15550100", fresh.PhoneNumber)
	assert.True(t, fresh.PhoneNumberConfirmed)
	assert.True(t, fresh.TwoFactorEnabled)
}

func TestUserStore_Lockout(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	end, err := store.LockoutEndDate(user)
	require.NoError(t, err)
	assert.True(t, end.IsZero())

	until := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SetLockoutEndDate(user, until))
	require.NoError(t, store.SetLockoutEnabled(user, true))

	fresh, err := store.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, fresh.LockoutEnabled)
	require.NotNil(t, fresh.LockoutEndDateUTC)
	assert.True(t, until.Equal(*fresh.LockoutEndDateUTC))
}

func TestUserStore_LockoutEndDefaultsToNowOnRead(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	// The row was stored without a lockout end; materializing it fills
	// in the current time.
	fresh, err := store.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.LockoutEndDateUTC)
	assert.WithinDuration(t, time.Now().UTC(), *fresh.LockoutEndDateUTC, 5*time.Second)
}

func TestUserStore_AccessFailedCount(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))

	count, err := store.IncrementAccessFailedCount(user)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = store.IncrementAccessFailedCount(user)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	fresh, err := store.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.AccessFailedCount)

	require.NoError(t, store.ResetAccessFailedCount(user))

	count, err = store.AccessFailedCount(user)
	require.NoError(t, err)
	assert.Zero(t, count)

	fresh, err = store.FindByID(user.ID)
	require.NoError(t, err)
	assert.Zero(t, fresh.AccessFailedCount)
}

func TestUserStore_DeleteCascades(t *testing.T) {
	store, _, db := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))
	require.NoError(t, store.AddClaim(user, Claim{Type: "scope", Value: "read"}))
	login := LoginInfo{Provider: "google", ProviderKey: "g123"}
	require.NoError(t, store.AddLogin(user, login))

	require.NoError(t, store.Delete(user))

	found, err := store.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	var claimCount, loginCount int64
	require.NoError(t, db.Model(&claimRow{}).Where("user_id = ?", user.ID).Count(&claimCount).Error)
	require.NoError(t, db.Model(&loginRow{}).Where("user_id = ?", user.ID).Count(&loginCount).Error)
	assert.Zero(t, claimCount)
	assert.Zero(t, loginCount)

	// The freed (provider, key) pair no longer resolves and can be
	// bound again.
	stale, err := store.FindByLogin(login)
	require.NoError(t, err)
	assert.Nil(t, stale)
}

func TestUserStore_Users(t *testing.T) {
	store, _, _ := newTestStores(t)

	require.NoError(t, store.Create(NewUser("alice")))
	require.NoError(t, store.Create(NewUser("bob")))

	users, err := store.Users()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserStore_InvalidArguments(t *testing.T) {
	store, _, _ := newTestStores(t)

	user := NewUser("alice")
	require.NoError(t, store.Create(user))
	var nilUser *User

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"create nil", func() error { return store.Create(nilUser) }, ErrNilUser},
		{"update nil", func() error { return store.Update(nilUser) }, ErrNilUser},
		{"delete nil", func() error { return store.Delete(nilUser) }, ErrNilUser},
		{"find by empty id", func() error { _, err := store.FindByID(""); return err }, ErrEmptyUserID},
		{"find by empty name", func() error { _, err := store.FindByName(""); return err }, ErrEmptyUserName},
		{"find by empty email", func() error { _, err := store.FindByEmail(""); return err }, ErrEmptyEmail},
		{"claim without type", func() error { return store.AddClaim(user, Claim{Value: "x"}) }, ErrEmptyClaimType},
		{"remove claim without type", func() error { return store.RemoveClaim(user, Claim{Value: "x"}) }, ErrEmptyClaimType},
		{"login without provider", func() error { return store.AddLogin(user, LoginInfo{ProviderKey: "k"}) }, ErrEmptyLogin},
		{"login without key", func() error { return store.AddLogin(user, LoginInfo{Provider: "p"}) }, ErrEmptyLogin},
		{"find by empty login", func() error { _, err := store.FindByLogin(LoginInfo{}); return err }, ErrEmptyLogin},
		{"remove empty login", func() error { return store.RemoveLogin(user, LoginInfo{}) }, ErrEmptyLogin},
		{"add to empty role", func() error { return store.AddToRole(user, "") }, ErrEmptyRoleName},
		{"in empty role", func() error { _, err := store.IsInRole(user, ""); return err }, ErrEmptyRoleName},
		{"remove from empty role", func() error { return store.RemoveFromRole(user, "") }, ErrEmptyRoleName},
		{"empty password hash", func() error { return store.SetPasswordHash(user, "") }, ErrEmptyPasswordHash},
		{"empty security stamp", func() error { return store.SetSecurityStamp(user, "") }, ErrEmptySecurityStamp},
		{"empty email", func() error { return store.SetEmail(user, "") }, ErrEmptyEmail},
		{"empty phone number", func() error { return store.SetPhoneNumber(user, "") }, ErrEmptyPhoneNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), tt.want)
		})
	}
}

func TestUserStore_CloseIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	store := NewUserStore(db, newTestLogger(t), newUserFactory)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
