package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tebex-support-bot/internal/model"
)

// ClaimedPurchase is a claimed transaction with its packages flattened for
// autocomplete suggestions.
type ClaimedPurchase struct {
	TbxID    string
	Packages []string
}

type TransactionRepository interface {
	FindByTbxID(ctx context.Context, tbxID string) (*model.Transaction, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]model.Transaction, error)
	Create(ctx context.Context, transaction *model.Transaction) error
	AddPackage(ctx context.Context, tbxID, pkg string) error
	Packages(ctx context.Context, tbxID string) ([]string, error)
	SetCustomer(ctx context.Context, tbxID string, customerID uint) error
	MarkRefund(ctx context.Context, tbxID string) error
	MarkChargeback(ctx context.Context, tbxID string) error
	CountActiveByCustomer(ctx context.Context, customerID uint) (int64, error)
	SearchClaimed(ctx context.Context, discordID, query string) ([]ClaimedPurchase, error)
}

type transactionRepoImpl struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepoImpl{db: db}
}

func (r *transactionRepoImpl) FindByTbxID(ctx context.Context, tbxID string) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).
		Where("tbx_id = ?", tbxID).
		First(&transaction).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &transaction, nil
}

func (r *transactionRepoImpl) FindByCustomer(ctx context.Context, customerID uint) ([]model.Transaction, error) {
	var transactions []model.Transaction
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (r *transactionRepoImpl) Create(ctx context.Context, transaction *model.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

// AddPackage is an idempotent insert; duplicate (tbxid, package) rows are
// ignored rather than treated as errors.
func (r *transactionRepoImpl) AddPackage(ctx context.Context, tbxID, pkg string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.TransactionPackage{
			TbxID:   tbxID,
			Package: pkg,
		}).Error
}

func (r *transactionRepoImpl) Packages(ctx context.Context, tbxID string) ([]string, error) {
	var packages []string
	err := r.db.WithContext(ctx).Model(&model.TransactionPackage{}).
		Where("tbx_id = ?", tbxID).
		Pluck("package", &packages).Error
	if err != nil {
		return nil, err
	}

	return packages, nil
}

func (r *transactionRepoImpl) SetCustomer(ctx context.Context, tbxID string, customerID uint) error {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("tbx_id = ?", tbxID).
		Update("customer_id", customerID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *transactionRepoImpl) MarkRefund(ctx context.Context, tbxID string) error {
	return r.flag(ctx, tbxID, "refund")
}

func (r *transactionRepoImpl) MarkChargeback(ctx context.Context, tbxID string) error {
	return r.flag(ctx, tbxID, "chargeback")
}

func (r *transactionRepoImpl) flag(ctx context.Context, tbxID, column string) error {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("tbx_id = ?", tbxID).
		Update(column, true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *transactionRepoImpl) CountActiveByCustomer(ctx context.Context, customerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("customer_id = ? AND refund = ? AND chargeback = ?", customerID, false, false).
		Count(&count).Error

	return count, err
}

// SearchClaimed feeds the transfer command's autocomplete: the caller's
// claimed transactions whose tbxid or any package matches the query.
func (r *transactionRepoImpl) SearchClaimed(ctx context.Context, discordID, query string) ([]ClaimedPurchase, error) {
	var transactions []model.Transaction
	pattern := "%" + query + "%"

	err := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Joins("JOIN customers ON customers.id = transactions.customer_id").
		Where("customers.discord_id = ?", discordID).
		Where(
			"transactions.tbx_id LIKE ? OR transactions.tbx_id IN (?)",
			pattern,
			r.db.Model(&model.TransactionPackage{}).
				Select("tbx_id").
				Where("package LIKE ?", pattern),
		).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	purchases := make([]ClaimedPurchase, 0, len(transactions))
	for _, transaction := range transactions {
		packages, err := r.Packages(ctx, transaction.TbxID)
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, ClaimedPurchase{
			TbxID:    transaction.TbxID,
			Packages: packages,
		})
	}

	return purchases, nil
}
