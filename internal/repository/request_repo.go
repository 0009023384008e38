package repository

import (
	"context"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestFilter narrows a scoped borrow-request listing.
type RequestFilter struct {
	Status    string
	LibraryID *uuid.UUID
	// UserID limits the listing to one requester (a standard user sees only
	// their own rows).
	UserID *uuid.UUID
}

type RequestRepository interface {
	Create(ctx context.Context, request *model.BorrowRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.BorrowRequest, error)
	FindAll(ctx context.Context, sc *scope.Scope, filter RequestFilter) ([]*model.BorrowRequest, error)
	CountByStatus(ctx context.Context, sc *scope.Scope) (map[string]int64, error)
	Recent(ctx context.Context, sc *scope.Scope, limit int) ([]*model.BorrowRequest, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *model.BorrowRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.BorrowRequest, error) {
	var request model.BorrowRequest
	err := r.db.WithContext(ctx).Preload("Book").Preload("User").First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) FindAll(ctx context.Context, sc *scope.Scope, filter RequestFilter) ([]*model.BorrowRequest, error) {
	var requests []*model.BorrowRequest
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

	if err := query.Order("requested_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) CountByStatus(ctx context.Context, sc *scope.Scope) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount

	query := r.db.WithContext(ctx).
		Model(&model.BorrowRequest{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	query = sc.Filter(query, "library_id")

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[string]int64{
		model.RequestStatusPending:   0,
		model.RequestStatusApproved:  0,
		model.RequestStatusRejected:  0,
		model.RequestStatusCancelled: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *requestRepository) Recent(ctx context.Context, sc *scope.Scope, limit int) ([]*model.BorrowRequest, error) {
	var requests []*model.BorrowRequest
	query := sc.Filter(r.db.WithContext(ctx).Preload("Book").Preload("User"), "library_id")
	err := query.Order("requested_at DESC").Limit(limit).Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
