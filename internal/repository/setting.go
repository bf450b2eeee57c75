package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tebex-support-bot/internal/model"
)

// ErrNotFound is returned where a row the caller named does not exist.
var ErrNotFound = errors.New("not found")

type SettingRepository interface {
	FindAll(ctx context.Context) ([]model.Setting, error)
	UpdateValue(ctx context.Context, name, value string) error
}

type settingRepoImpl struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepoImpl{db: db}
}

func (r *settingRepoImpl) FindAll(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).Find(&settings).Error
	if err != nil {
		return nil, err
	}

	return settings, nil
}

func (r *settingRepoImpl) UpdateValue(ctx context.Context, name, value string) error {
	result := r.db.WithContext(ctx).Model(&model.Setting{}).
		Where("name = ?", name).
		Update("value", value)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
