package service

import (
	"context"
	"errors"
	"time"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"anoa.com/perpustakaan/internal/workflow"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoanService interface {
	GetAll(ctx context.Context, actor *model.User, filter dto.LoanFilter) ([]*model.Loan, error)
	GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error)
	Assign(ctx context.Context, actor *model.User, req dto.AssignLoanRequest) (*model.Loan, error)
	RequestReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error)
	ApproveReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error)
	RejectReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error)
	CancelReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error)
}

type loanService struct {
	db           *gorm.DB
	repo         repository.LoanRepository
	bookRepo     repository.BookRepository
	userRepo     repository.UserRepository
	settingsRepo repository.SettingsRepository
}

func NewLoanService(
	db *gorm.DB,
	repo repository.LoanRepository,
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	settingsRepo repository.SettingsRepository,
) LoanService {
	return &loanService{
		db:           db,
		repo:         repo,
		bookRepo:     bookRepo,
		userRepo:     userRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *loanService) GetAll(ctx context.Context, actor *model.User, filter dto.LoanFilter) ([]*model.Loan, error) {
	sc := scope.FromUser(actor)

	repoFilter := repository.LoanFilter{
		Status:     filter.Status,
		LibraryID:  filter.LibraryID,
		ActiveOnly: filter.Active,
	}
	if !sc.IsAdmin() && !sc.IsLibrarian() {
		userID := actor.ID
		repoFilter.UserID = &userID
	}

	return s.repo.FindAll(ctx, sc, repoFilter)
}

func (s *loanService) GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error) {
	return s.load(ctx, actor, id)
}

// Assign opens a loan directly, without a borrow request. Double assignment
// loses to the partial unique index on active loans.
func (s *loanService) Assign(ctx context.Context, actor *model.User, req dto.AssignLoanRequest) (*model.Loan, error) {
	book, err := s.bookRepo.FindByID(ctx, req.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
		}
		return nil, err
	}

	sc := scope.FromUser(actor)
	if !sc.Allows(book.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
	}
	if book.IsDeleted() {
		return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
	}

	borrower, err := s.userRepo.FindByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		return nil, err
	}
	if !borrower.IsActive || borrower.DeletedAt != nil {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "user is inactive")
	}
	if !scope.FromUser(borrower).Contains(book.LibraryID) && !borrower.IsAdmin() {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "user is not a member of the book's library")
	}

	dueDays := req.DueDays
	if dueDays <= 0 {
		dueDays = s.overdueDays(ctx, book.LibraryID)
	}

	now := time.Now()
	loan := &model.Loan{
		LibraryID:  book.LibraryID,
		BookID:     book.ID,
		UserID:     borrower.ID,
		Status:     model.LoanStatusActive,
		BorrowedAt: now,
		DueAt:      now.Add(time.Duration(dueDays) * 24 * time.Hour),
	}

	if err := s.repo.Create(ctx, loan); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "book is currently on loan")
		}
		return nil, err
	}

	return s.repo.FindByID(ctx, loan.ID)
}

// RequestReturn moves the loan into return_requested. Only the borrower may
// ask; a previously rejected return may be retried.
func (s *loanService) RequestReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if loan.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only the borrower may request a return")
	}
	return s.transition(ctx, loan, workflow.EventRequestReturn)
}

// ApproveReturn closes the loan. Staff may also force-close a loan that never
// had a return requested.
func (s *loanService) ApproveReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !scope.FromUser(actor).Allows(loan.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "not allowed to manage loans for this library")
	}
	return s.transition(ctx, loan, workflow.EventApproveReturn)
}

// RejectReturn sends a requested return back to the borrower. The loan stays
// open and due dates keep running.
func (s *loanService) RejectReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !scope.FromUser(actor).Allows(loan.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "not allowed to manage loans for this library")
	}
	return s.transition(ctx, loan, workflow.EventRejectReturn)
}

// CancelReturn lets the borrower withdraw a pending return request.
func (s *loanService) CancelReturn(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if loan.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only the borrower may cancel a return request")
	}
	return s.transition(ctx, loan, workflow.EventCancelReturn)
}

// transition applies one loan event with a conditional update keyed on the
// status the caller observed. A concurrent change makes the update match zero
// rows and surfaces as an invalid transition.
func (s *loanService) transition(ctx context.Context, loan *model.Loan, event workflow.Event) (*model.Loan, error) {
	next, err := workflow.NextLoanStatus(loan.Status, event)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": next}
	if next == model.LoanStatusReturned {
		updates["returned_at"] = time.Now()
	}

	res := s.db.WithContext(ctx).Model(&model.Loan{}).
		Where("id = ? AND status = ?", loan.ID, loan.Status).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, apperror.ErrInvalidTransition
	}

	return s.repo.FindByID(ctx, loan.ID)
}

// load fetches a loan behind the resource gate. Out of scope reads like
// missing and a standard user only reaches their own loans.
func (s *loanService) load(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "loan not found")
		}
		return nil, err
	}

	sc := scope.FromUser(actor)
	if !sc.Contains(loan.LibraryID) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "loan not found")
	}
	if !sc.IsAdmin() && !sc.IsLibrarian() && loan.UserID != actor.ID {
		return nil, apperror.Wrap(apperror.ErrNotFound, "loan not found")
	}
	return loan, nil
}

func (s *loanService) overdueDays(ctx context.Context, libraryID uuid.UUID) int {
	settings, err := s.settingsRepo.FindByLibrary(ctx, libraryID)
	if err != nil || settings.OverdueDays <= 0 {
		return model.DefaultOverdueDays
	}
	return settings.OverdueDays
}
