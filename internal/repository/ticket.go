package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tebex-support-bot/internal/model"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) error
	FindOpen(ctx context.Context) ([]model.Ticket, error)
	Close(ctx context.Context, ticketID uint, at time.Time) error

	Categories(ctx context.Context) ([]model.TicketCategory, error)
	FindCategory(ctx context.Context, categoryID uint) (*model.TicketCategory, error)
	CategoryFields(ctx context.Context, categoryID uint) ([]model.TicketCategoryField, error)

	UpsertMember(ctx context.Context, member *model.TicketMember) error
	MarkMemberRemoved(ctx context.Context, ticketID uint, userID string) error

	CreateMessage(ctx context.Context, message *model.TicketMessage) error
}

type ticketRepoImpl struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepoImpl{db: db}
}

func (r *ticketRepoImpl) Create(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepoImpl) FindOpen(ctx context.Context) ([]model.Ticket, error) {
	var tickets []model.Ticket
	err := r.db.WithContext(ctx).
		Where("closed_at IS NULL").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *ticketRepoImpl) Close(ctx context.Context, ticketID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ?", ticketID).
		Update("closed_at", at)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ticketRepoImpl) Categories(ctx context.Context) ([]model.TicketCategory, error) {
	var categories []model.TicketCategory
	err := r.db.WithContext(ctx).Find(&categories).Error
	if err != nil {
		return nil, err
	}

	return categories, nil
}

func (r *ticketRepoImpl) FindCategory(ctx context.Context, categoryID uint) (*model.TicketCategory, error) {
	var category model.TicketCategory
	err := r.db.WithContext(ctx).First(&category, categoryID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &category, nil
}

func (r *ticketRepoImpl) CategoryFields(ctx context.Context, categoryID uint) ([]model.TicketCategoryField, error) {
	var fields []model.TicketCategoryField
	err := r.db.WithContext(ctx).
		Where("category = ?", categoryID).
		Order("id").
		Find(&fields).Error
	if err != nil {
		return nil, err
	}

	return fields, nil
}

func (r *ticketRepoImpl) UpsertMember(ctx context.Context, member *model.TicketMember) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "ticket_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"removed":  false,
			"added_by": member.AddedBy,
			"added_at": member.AddedAt,
		}),
	}).Create(member).Error
}

func (r *ticketRepoImpl) MarkMemberRemoved(ctx context.Context, ticketID uint, userID string) error {
	result := r.db.WithContext(ctx).Model(&model.TicketMember{}).
		Where("ticket_id = ? AND user_id = ?", ticketID, userID).
		Update("removed", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *ticketRepoImpl) CreateMessage(ctx context.Context, message *model.TicketMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}
