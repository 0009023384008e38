package repository

import (
	"context"
	"errors"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LoanFilter narrows a scoped loan listing.
type LoanFilter struct {
	Status    string
	LibraryID *uuid.UUID
	UserID    *uuid.UUID
	// ActiveOnly keeps loans with returned_at still null.
	ActiveOnly bool
}

type LoanRepository interface {
	Create(ctx context.Context, loan *model.Loan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Loan, error)
	FindAll(ctx context.Context, sc *scope.Scope, filter LoanFilter) ([]*model.Loan, error)
	ActiveLoanExists(ctx context.Context, bookID uuid.UUID) (bool, error)
	Count(ctx context.Context, sc *scope.Scope, activeOnly bool) (int64, error)
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *model.Loan) error {
	return r.db.WithContext(ctx).Create(loan).Error
}

func (r *loanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Loan, error) {
	var loan model.Loan
	err := r.db.WithContext(ctx).Preload("Book").Preload("User").First(&loan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) FindAll(ctx context.Context, sc *scope.Scope, filter LoanFilter) ([]*model.Loan, error) {
	var loans []*model.Loan
	query := sc.Filter(r.db.WithContext(ctx).Preload("Book").Preload("User"), "library_id")

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.LibraryID != nil {
		query = query.Where("library_id = ?", *filter.LibraryID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.ActiveOnly {
		query = query.Where("returned_at IS NULL")
	}

	if err := query.Order("borrowed_at DESC").Find(&loans).Error; err != nil {
		return nil, err
	}
	return loans, nil
}

func (r *loanRepository) ActiveLoanExists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var loan model.Loan
	err := r.db.WithContext(ctx).
		Select("id").
		Where("book_id = ? AND returned_at IS NULL", bookID).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *loanRepository) Count(ctx context.Context, sc *scope.Scope, activeOnly bool) (int64, error) {
	var count int64
	query := sc.Filter(r.db.WithContext(ctx).Model(&model.Loan{}), "library_id")
	if activeOnly {
		query = query.Where("returned_at IS NULL")
	}
	err := query.Count(&count).Error
	return count, err
}
