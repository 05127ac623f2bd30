package identity

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides stores over the base models for applications that do
// not extend User or Role. Callers with their own types construct
// stores directly with NewUserStore/NewRoleStore.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			func(db *gorm.DB, log *zap.Logger) *UserStore[*User] {
				return NewUserStore(db, log, func() *User { return &User{} })
			},
			func(db *gorm.DB, log *zap.Logger) *RoleStore[*Role] {
				return NewRoleStore(db, log, func() *Role { return &Role{} })
			},
		),
	)
}
