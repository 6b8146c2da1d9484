package repository

import (
	"context"

	"tillpos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.Expense) error
	List(ctx context.Context, page, limit int) ([]model.Expense, int64, error)
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Expense, error)
	// Delete returns gorm.ErrRecordNotFound when the id does not exist.
	Delete(ctx context.Context, id uint64) error
}

type expenseRepo struct{ db *gorm.DB }

func NewExpenseRepository(db *gorm.DB) ExpenseRepository { return &expenseRepo{db: db} }

func (r *expenseRepo) Create(ctx context.Context, e *model.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *expenseRepo) List(ctx context.Context, page, limit int) ([]model.Expense, int64, error) {
	var expenses []model.Expense
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Expense{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&expenses).Error
	return expenses, total, err
}

func (r *expenseRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]model.Expense, error) {
	var expenses []model.Expense
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&expenses).Error
	return expenses, err
}

func (r *expenseRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&model.Expense{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
