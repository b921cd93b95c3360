package models

import (
	"github.com/piezasya/loyalty/internal/logger"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// migrations 按 ID 顺序执行的版本化迁移
var migrations = []*gormigrate.Migration{
	{
		ID: "202610010001_create_accounts",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Admin{}, &User{}, &Setting{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&Setting{}, &User{}, &Admin{})
		},
	},
	{
		ID: "202610010002_create_rewards_and_reviews",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&Reward{}, &RewardRedemption{}, &Review{}, &ReviewReport{}, &Activity{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&Activity{}, &ReviewReport{}, &Review{}, &RewardRedemption{}, &Reward{})
		},
	},
	{
		ID: "202610010003_create_referrals_and_purchases",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&ReferralTracking{}, &ReferralBonus{}, &LoyaltyPurchase{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&LoyaltyPurchase{}, &ReferralBonus{}, &ReferralTracking{})
		},
	},
}

// Migrate 执行全部版本化迁移
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	if err := m.Migrate(); err != nil {
		logger.Errorw("db_migrate_failed", "error", err)
		return err
	}
	logger.Infow("db_migrate_done", "migrations", len(migrations))
	return nil
}

// RollbackLast 回滚最近一次迁移
func RollbackLast(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations)
	return m.RollbackLast()
}

// AutoMigrate 对全局 DB 执行迁移
func AutoMigrate() error {
	return Migrate(DB)
}
