package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestService(env *testEnv) service.RequestService {
	return service.NewRequestService(env.db, env.requestRepo, env.loanRepo, env.bookRepo, nil, time.Second)
}

func TestRequestCreate(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	request, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, request.Status)
	assert.Equal(t, env.library.ID, request.LibraryID)
	assert.Equal(t, env.member.ID, request.UserID)
}

func TestRequestCreateStaffForbidden(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	_, err := svc.Create(ctx, env.librarian, dto.CreateBorrowRequest{BookID: env.book.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	_, err = svc.Create(ctx, env.admin, dto.CreateBorrowRequest{BookID: env.book.ID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestRequestCreateDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	_, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)

	_, err = svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRequestCreateOutOfScope(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	other := env.createLibrary(t, "Perpustakaan Lain", nil)
	hidden := env.createBook(t, other, "Bumi Manusia", "Pramoedya Ananta Toer")

	_, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: hidden.ID})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRequestCreateBookOnLoan(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	request, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)
	_, err = svc.Decide(ctx, env.librarian, request.ID, model.RequestStatusApproved)
	require.NoError(t, err)

	second := env.createUser(t, "Anggota Dua", "member2@test.local", model.RoleUser)
	env.assignMember(t, second, env.library)

	_, err = svc.Create(ctx, second, dto.CreateBorrowRequest{BookID: env.book.ID})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRequestApproveCreatesLoan(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	request, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)

	before := time.Now()
	decided, err := svc.Decide(ctx, env.librarian, request.ID, model.RequestStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)

	loans, err := env.loanRepo.FindAll(ctx, adminScope(env), repository.LoanFilter{})
	require.NoError(t, err)
	require.Len(t, loans, 1)

	loan := loans[0]
	assert.Equal(t, model.LoanStatusActive, loan.Status)
	assert.Equal(t, env.book.ID, loan.BookID)
	assert.Equal(t, env.member.ID, loan.UserID)

	wantDue := before.Add(model.DefaultOverdueDays * 24 * time.Hour)
	assert.WithinDuration(t, wantDue, loan.DueAt, time.Minute)
}

func TestRequestApproveRaceLosesToActiveLoan(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	first, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)

	second := env.createUser(t, "Anggota Dua", "member2@test.local", model.RoleUser)
	env.assignMember(t, second, env.library)
	competing, err := svc.Create(ctx, second, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, env.librarian, first.ID, model.RequestStatusApproved)
	require.NoError(t, err)

	_, err = svc.Decide(ctx, env.librarian, competing.ID, model.RequestStatusApproved)
	assert.ErrorIs(t, err, apperror.ErrConflict)

	// The losing request is still pending and may be rejected.
	rejected, err := svc.Decide(ctx, env.librarian, competing.ID, model.RequestStatusRejected)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, rejected.Status)
}

func TestRequestDecideTerminal(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	request, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, env.librarian, request.ID, model.RequestStatusRejected)
	require.NoError(t, err)

	_, err = svc.Decide(ctx, env.librarian, request.ID, model.RequestStatusApproved)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestRequestCancel(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	request, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)

	// Staff who are not the requester cannot cancel on the member's behalf.
	_, err = svc.Cancel(ctx, env.librarian, request.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	cancelled, err := svc.Cancel(ctx, env.member, request.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, env.member, request.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)

	// Withdrawing frees the slot for a fresh request on the same book.
	again, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, again.Status)
}

func TestRequestFeedVisibility(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	ctx := context.Background()

	second := env.createUser(t, "Anggota Dua", "member2@test.local", model.RoleUser)
	env.assignMember(t, second, env.library)
	otherBook := env.createBook(t, env.library, "Perahu Kertas", "Dee Lestari")

	_, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, second, dto.CreateBorrowRequest{BookID: otherBook.ID})
	require.NoError(t, err)

	staffFeed, err := svc.Feed(ctx, env.librarian, dto.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, staffFeed, 2)

	memberFeed, err := svc.Feed(ctx, env.member, dto.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, memberFeed, 1)
	assert.Equal(t, env.member.ID, memberFeed[0].UserID)
	assert.Equal(t, dto.FeedKindBorrow, memberFeed[0].Kind)
}

func TestRequestFeedMergesReturns(t *testing.T) {
	env := newTestEnv(t)
	svc := newRequestService(env)
	loanSvc := newLoanService(env)
	ctx := context.Background()

	// A pending borrow request on one book.
	otherBook := env.createBook(t, env.library, "Perahu Kertas", "Dee Lestari")
	_, err := svc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: otherBook.ID})
	require.NoError(t, err)

	// A loan with its return requested on another.
	loan := assignLoan(t, env, loanSvc)
	_, err = loanSvc.RequestReturn(ctx, env.member, loan.ID)
	require.NoError(t, err)

	// An untouched active loan carries no return activity and stays out.
	third := env.createBook(t, env.library, "Cantik Itu Luka", "Eka Kurniawan")
	second := env.createUser(t, "Anggota Dua", "member2@test.local", model.RoleUser)
	env.assignMember(t, second, env.library)
	_, err = loanSvc.Assign(ctx, env.librarian, dto.AssignLoanRequest{BookID: third.ID, UserID: second.ID})
	require.NoError(t, err)

	feed, err := svc.Feed(ctx, env.librarian, dto.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, feed, 2)

	assert.Equal(t, dto.FeedKindReturn, feed[0].Kind)
	assert.Equal(t, model.LoanStatusReturnRequested, feed[0].Status)
	assert.Equal(t, env.member.ID, feed[0].UserID)
	assert.Equal(t, env.book.ID, feed[0].BookID)
	require.NotNil(t, feed[0].DueAt)

	assert.Equal(t, dto.FeedKindBorrow, feed[1].Kind)
	assert.Equal(t, otherBook.ID, feed[1].BookID)
	assert.Equal(t, model.RequestStatusPending, feed[1].Status)

	filtered, err := svc.Feed(ctx, env.librarian, dto.RequestFilter{Status: model.LoanStatusReturnRequested})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, dto.FeedKindReturn, filtered[0].Kind)
}
