package repository

import (
	"time"

	"github.com/piezasya/loyalty/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 设置数据访问接口
type SettingRepository interface {
	GetByKey(key string) (*models.Setting, error)
	Upsert(key string, value models.JSON, adminID uint) (*models.Setting, error)
}

// GormSettingRepository GORM 实现
type GormSettingRepository struct {
	db *gorm.DB
}

// NewSettingRepository 创建设置仓库
func NewSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// GetByKey 获取设置
func (r *GormSettingRepository) GetByKey(key string) (*models.Setting, error) {
	return firstOrNil[models.Setting](r.db.Where("key = ?", key))
}

// Upsert 按键写入设置，键冲突时覆盖值与修改人
func (r *GormSettingRepository) Upsert(key string, value models.JSON, adminID uint) (*models.Setting, error) {
	setting := &models.Setting{
		Key:       key,
		ValueJSON: value,
		UpdatedAt: time.Now(),
	}
	if adminID != 0 {
		setting.UpdatedBy = &adminID
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value_json", "updated_by", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return nil, err
	}
	return setting, nil
}
