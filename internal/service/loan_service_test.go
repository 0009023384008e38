package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoanService(env *testEnv) service.LoanService {
	return service.NewLoanService(env.db, env.loanRepo, env.bookRepo, env.userRepo, env.settingsRepo)
}

func assignLoan(t *testing.T, env *testEnv, svc service.LoanService) *model.Loan {
	t.Helper()

	loan, err := svc.Assign(context.Background(), env.librarian, dto.AssignLoanRequest{
		BookID: env.book.ID,
		UserID: env.member.ID,
	})
	require.NoError(t, err)
	return loan
}

func TestLoanAssign(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)

	loan := assignLoan(t, env, svc)
	assert.Equal(t, model.LoanStatusActive, loan.Status)
	assert.Equal(t, env.member.ID, loan.UserID)

	wantDue := time.Now().Add(model.DefaultOverdueDays * 24 * time.Hour)
	assert.WithinDuration(t, wantDue, loan.DueAt, time.Minute)
}

func TestLoanAssignDueDaysOverride(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)

	loan, err := svc.Assign(context.Background(), env.librarian, dto.AssignLoanRequest{
		BookID:  env.book.ID,
		UserID:  env.member.ID,
		DueDays: 3,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(3*24*time.Hour), loan.DueAt, time.Minute)
}

func TestLoanAssignBookAlreadyOut(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)

	assignLoan(t, env, svc)

	_, err := svc.Assign(context.Background(), env.librarian, dto.AssignLoanRequest{
		BookID: env.book.ID,
		UserID: env.member.ID,
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLoanAssignNonMember(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)

	outsider := env.createUser(t, "Orang Luar", "outsider@test.local", model.RoleUser)

	_, err := svc.Assign(context.Background(), env.librarian, dto.AssignLoanRequest{
		BookID: env.book.ID,
		UserID: outsider.ID,
	})
	assert.ErrorIs(t, err, apperror.ErrBadRequest)
}

func TestLoanReturnFlow(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)
	ctx := context.Background()

	loan := assignLoan(t, env, svc)

	loan, err := svc.RequestReturn(ctx, env.member, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturnRequested, loan.Status)

	loan, err = svc.ApproveReturn(ctx, env.librarian, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturned, loan.Status)
	require.NotNil(t, loan.ReturnedAt)

	// Returned is terminal.
	_, err = svc.RequestReturn(ctx, env.member, loan.ID)
	assert.ErrorIs(t, err, apperror.ErrInvalidTransition)
}

func TestLoanForceReturn(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)

	loan := assignLoan(t, env, svc)

	loan, err := svc.ApproveReturn(context.Background(), env.librarian, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturned, loan.Status)
	assert.NotNil(t, loan.ReturnedAt)
}

func TestLoanRejectReturnKeepsLoanOpen(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)
	ctx := context.Background()

	loan := assignLoan(t, env, svc)

	loan, err := svc.RequestReturn(ctx, env.member, loan.ID)
	require.NoError(t, err)

	loan, err = svc.RejectReturn(ctx, env.librarian, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturnRejected, loan.Status)
	assert.Nil(t, loan.ReturnedAt)

	// The borrower may retry after a rejection.
	loan, err = svc.RequestReturn(ctx, env.member, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusReturnRequested, loan.Status)
}

func TestLoanCancelReturn(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)
	ctx := context.Background()

	loan := assignLoan(t, env, svc)

	loan, err := svc.RequestReturn(ctx, env.member, loan.ID)
	require.NoError(t, err)

	// Staff cannot withdraw the member's return request.
	_, err = svc.CancelReturn(ctx, env.librarian, loan.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	loan, err = svc.CancelReturn(ctx, env.member, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusActive, loan.Status)
}

func TestLoanRequestReturnOnlyBorrower(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)

	loan := assignLoan(t, env, svc)

	other := env.createUser(t, "Anggota Dua", "member2@test.local", model.RoleUser)
	env.assignMember(t, other, env.library)

	_, err := svc.RequestReturn(context.Background(), other, loan.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLoanVisibility(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)
	ctx := context.Background()

	loan := assignLoan(t, env, svc)

	// The borrower sees their loan, another member does not.
	got, err := svc.GetByID(ctx, env.member, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, got.ID)

	other := env.createUser(t, "Anggota Dua", "member2@test.local", model.RoleUser)
	env.assignMember(t, other, env.library)
	_, err = svc.GetByID(ctx, other, loan.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	mine, err := svc.GetAll(ctx, env.member, dto.LoanFilter{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.GetAll(ctx, other, dto.LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestLoanBookAvailableAfterReturn(t *testing.T) {
	env := newTestEnv(t)
	svc := newLoanService(env)
	ctx := context.Background()

	loan := assignLoan(t, env, svc)
	_, err := svc.ApproveReturn(ctx, env.librarian, loan.ID)
	require.NoError(t, err)

	// The unique index only covers open loans, so the book can go out again.
	again, err := svc.Assign(ctx, env.librarian, dto.AssignLoanRequest{
		BookID: env.book.ID,
		UserID: env.member.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LoanStatusActive, again.Status)
}
