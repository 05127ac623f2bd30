package identity

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One in-memory database per test; a second pooled connection would
	// see an empty schema.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, AutoMigrate(db))
	return db
}

func newTestLogger(t *testing.T) *zap.Logger {
	t.Helper()

	log, err := zap.NewDevelopment()
	require.NoError(t, err)
	return log
}

func newUserFactory() *User { return &User{} }

func newRoleFactory() *Role { return &Role{} }

func newTestUserRepository(t *testing.T, db *gorm.DB) *UserRepository[*User] {
	t.Helper()
	return NewUserRepository(db, newUserFactory)
}

func newTestStores(t *testing.T) (*UserStore[*User], *RoleStore[*Role], *gorm.DB) {
	t.Helper()

	db := newTestDB(t)
	log := newTestLogger(t)
	return NewUserStore(db, log, newUserFactory), NewRoleStore(db, log, newRoleFactory), db
}
