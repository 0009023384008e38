package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"anoa.com/perpustakaan/internal/workflow"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const borrowAction = "borrow_request"

type RequestService interface {
	Create(ctx context.Context, actor *model.User, req dto.CreateBorrowRequest) (*model.BorrowRequest, error)
	Feed(ctx context.Context, actor *model.User, filter dto.RequestFilter) ([]dto.FeedItem, error)
	Decide(ctx context.Context, actor *model.User, id uuid.UUID, status string) (*model.BorrowRequest, error)
	Cancel(ctx context.Context, actor *model.User, id uuid.UUID) (*model.BorrowRequest, error)
}

type requestService struct {
	db          *gorm.DB
	repo        repository.RequestRepository
	loanRepo    repository.LoanRepository
	bookRepo    repository.BookRepository
	redisClient *redis.Client
	borrowGap   time.Duration
}

func NewRequestService(
	db *gorm.DB,
	repo repository.RequestRepository,
	loanRepo repository.LoanRepository,
	bookRepo repository.BookRepository,
	redisClient *redis.Client,
	borrowGap time.Duration,
) RequestService {
	return &requestService{
		db:          db,
		repo:        repo,
		loanRepo:    loanRepo,
		bookRepo:    bookRepo,
		redisClient: redisClient,
		borrowGap:   borrowGap,
	}
}

// Create files a borrow request for the actor. The partial unique index on
// (book_id, user_id) WHERE status='pending' backs the duplicate check.
func (s *requestService) Create(ctx context.Context, actor *model.User, req dto.CreateBorrowRequest) (*model.BorrowRequest, error) {
	// Borrow requests are a standard-user operation; staff hand out books
	// through direct loan assignment.
	if actor.IsAdmin() || actor.IsLibrarian() {
		return nil, apperror.Wrap(apperror.ErrForbidden, "staff assign loans directly instead of requesting")
	}

	book, err := s.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
		}
		return nil, err
	}

	sc := scope.FromUser(actor)
	if !sc.Contains(book.LibraryID) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
	}
	if book.IsDeleted() {
		return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
	}

	onLoan, err := s.loanRepo.ActiveLoanExists(ctx, book.ID)
	if err != nil {
		return nil, err
	}
	if onLoan {
		return nil, apperror.Wrap(apperror.ErrConflict, "book is currently on loan")
	}

	allowed, err := CheckAndSetRateLimit(ctx, s.redisClient, actor.ID, borrowAction, s.borrowGap)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperror.Wrap(apperror.ErrRateLimitExceeded, "too many borrow requests, try again shortly")
	}

	request := &model.BorrowRequest{
		LibraryID: book.LibraryID,
		BookID:    book.ID,
		UserID:    actor.ID,
		Status:    model.RequestStatusPending,
	}

	if err := s.repo.Create(ctx, request); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "book already requested")
		}
		return nil, err
	}

	return s.repo.FindByID(ctx, request.ID)
}

// Feed merges borrow requests and return activity into one stream tagged by
// kind, newest first. Standard users see only their own rows.
func (s *requestService) Feed(ctx context.Context, actor *model.User, filter dto.RequestFilter) ([]dto.FeedItem, error) {
	sc := scope.FromUser(actor)

	requestFilter := repository.RequestFilter{
		Status:    filter.Status,
		LibraryID: filter.LibraryID,
	}
	loanFilter := repository.LoanFilter{
		LibraryID: filter.LibraryID,
	}
	if !sc.IsAdmin() && !sc.IsLibrarian() {
		userID := actor.ID
		requestFilter.UserID = &userID
		loanFilter.UserID = &userID
	}

	requests, err := s.repo.FindAll(ctx, sc, requestFilter)
	if err != nil {
		return nil, err
	}
	loans, err := s.loanRepo.FindAll(ctx, sc, loanFilter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.FeedItem, 0, len(requests)+len(loans))
	for _, request := range requests {
		items = append(items, dto.FeedItem{
			Kind:      dto.FeedKindBorrow,
			ID:        request.ID,
			LibraryID: request.LibraryID,
			BookID:    request.BookID,
			BookTitle: request.Book.Title,
			UserID:    request.UserID,
			UserName:  request.User.Name,
			Status:    request.Status,
			CreatedAt: request.RequestedAt,
			DecidedAt: request.DecidedAt,
		})
	}
	for _, loan := range loans {
		// Loans still sitting in active state carry no return activity yet.
		if loan.Status == model.LoanStatusActive {
			continue
		}
		if filter.Status != "" && loan.Status != filter.Status {
			continue
		}
		dueAt := loan.DueAt
		items = append(items, dto.FeedItem{
			Kind:      dto.FeedKindReturn,
			ID:        loan.ID,
			LibraryID: loan.LibraryID,
			BookID:    loan.BookID,
			BookTitle: loan.Book.Title,
			UserID:    loan.UserID,
			UserName:  loan.User.Name,
			Status:    loan.Status,
			CreatedAt: loan.UpdatedAt,
			DecidedAt: loan.ReturnedAt,
			DueAt:     &dueAt,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return items, nil
}

// Decide approves or rejects a pending request. Approval runs in one
// transaction: re-check availability, flip the request, read the library's
// loan policy, insert the loan. The partial unique index on active loans
// turns a lost race into CONFLICT instead of a double loan.
func (s *requestService) Decide(ctx context.Context, actor *model.User, id uuid.UUID, status string) (*model.BorrowRequest, error) {
	request, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !scope.FromUser(actor).Allows(request.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "not allowed to decide requests for this library")
	}

	var event workflow.Event
	switch status {
	case model.RequestStatusApproved:
		event = workflow.EventApprove
	case model.RequestStatusRejected:
		event = workflow.EventReject
	default:
		return nil, apperror.Wrap(apperror.ErrBadRequest, "status must be approved or rejected")
	}

	next, err := workflow.NextRequestStatus(request.Status, event)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if event == workflow.EventApprove {
			var active int64
			if err := tx.Model(&model.Loan{}).
				Where("book_id = ? AND returned_at IS NULL", request.BookID).
				Count(&active).Error; err != nil {
				return err
			}
			if active > 0 {
				return apperror.Wrap(apperror.ErrConflict, "book is currently on loan")
			}

			overdueDays := model.DefaultOverdueDays
			var settings model.Settings
			if err := tx.First(&settings, "library_id = ?", request.LibraryID).Error; err == nil {
				if settings.OverdueDays > 0 {
					overdueDays = settings.OverdueDays
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			now := time.Now()
			loan := &model.Loan{
				LibraryID:  request.LibraryID,
				BookID:     request.BookID,
				UserID:     request.UserID,
				Status:     model.LoanStatusActive,
				BorrowedAt: now,
				DueAt:      now.Add(time.Duration(overdueDays) * 24 * time.Hour),
			}
			if err := tx.Create(loan).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apperror.Wrap(apperror.ErrConflict, "book is currently on loan")
				}
				return err
			}
		}

		// Conditional update: the loser of a concurrent decision sees zero
		// rows and reports an invalid transition.
		res := tx.Model(&model.BorrowRequest{}).
			Where("id = ? AND status = ?", request.ID, model.RequestStatusPending).
			Updates(map[string]interface{}{
				"status":     next,
				"decided_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.ErrInvalidTransition
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, request.ID)
}

// Cancel lets the original requester withdraw a pending request. Admin
// bypasses ownership but not the state predicate.
func (s *requestService) Cancel(ctx context.Context, actor *model.User, id uuid.UUID) (*model.BorrowRequest, error) {
	request, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if request.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only the requester may cancel")
	}

	if _, err := workflow.NextRequestStatus(request.Status, workflow.EventCancel); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&model.BorrowRequest{}).
		Where("id = ? AND status = ?", request.ID, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":     model.RequestStatusCancelled,
			"decided_at": time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrInvalidTransition
	}

	// A withdrawn request frees the borrow slot right away.
	if err := ClearRateLimit(ctx, s.redisClient, actor.ID, borrowAction); err != nil {
		log.Printf("failed to clear borrow rate limit for user %s: %v", actor.ID, err)
	}

	return s.repo.FindByID(ctx, request.ID)
}

// load fetches a request and applies the resource gate: out of scope answers
// like missing; a standard user only reaches their own rows.
func (s *requestService) load(ctx context.Context, actor *model.User, id uuid.UUID) (*model.BorrowRequest, error) {
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "request not found")
		}
		return nil, err
	}

	sc := scope.FromUser(actor)
	if !sc.Contains(request.LibraryID) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "request not found")
	}
	if !sc.IsAdmin() && !sc.IsLibrarian() && request.UserID != actor.ID {
		return nil, apperror.Wrap(apperror.ErrNotFound, "request not found")
	}
	return request, nil
}
