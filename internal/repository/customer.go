package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tebex-support-bot/internal/model"
)

type CustomerRepository interface {
	FindByDiscordID(ctx context.Context, discordID string) (*model.Customer, error)
	FindByID(ctx context.Context, customerID uint) (*model.Customer, error)
	Create(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, customerID uint) error

	Developers(ctx context.Context, customerID uint) ([]model.CustomerDeveloper, error)
	AddDeveloper(ctx context.Context, customerID uint, discordID string) error
	RemoveDeveloper(ctx context.Context, customerID uint, discordID string) error
	DeleteAllDevelopers(ctx context.Context, customerID uint) error
}

type customerRepoImpl struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepoImpl{db: db}
}

func (r *customerRepoImpl) FindByDiscordID(ctx context.Context, discordID string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).
		Where("discord_id = ?", discordID).
		First(&customer).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepoImpl) FindByID(ctx context.Context, customerID uint) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).First(&customer, customerID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepoImpl) Create(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepoImpl) Delete(ctx context.Context, customerID uint) error {
	return r.db.WithContext(ctx).Delete(&model.Customer{}, customerID).Error
}

func (r *customerRepoImpl) Developers(ctx context.Context, customerID uint) ([]model.CustomerDeveloper, error) {
	var developers []model.CustomerDeveloper
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Find(&developers).Error
	if err != nil {
		return nil, err
	}

	return developers, nil
}

func (r *customerRepoImpl) AddDeveloper(ctx context.Context, customerID uint, discordID string) error {
	return r.db.WithContext(ctx).Create(&model.CustomerDeveloper{
		CustomerID: customerID,
		DiscordID:  discordID,
	}).Error
}

func (r *customerRepoImpl) RemoveDeveloper(ctx context.Context, customerID uint, discordID string) error {
	result := r.db.WithContext(ctx).
		Where("customer_id = ? AND discord_id = ?", customerID, discordID).
		Delete(&model.CustomerDeveloper{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *customerRepoImpl) DeleteAllDevelopers(ctx context.Context, customerID uint) error {
	return r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Delete(&model.CustomerDeveloper{}).Error
}
