package service_test

import (
	"context"
	"testing"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboardService(env *testEnv) service.DashboardService {
	return service.NewDashboardService(env.bookRepo, env.userRepo, env.libraryRepo, env.categoryRepo, env.loanRepo, env.requestRepo, nil)
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	svc := newDashboardService(env)
	requestSvc := newRequestService(env)
	loanSvc := newLoanService(env)
	ctx := context.Background()

	category := env.createCategory(t, env.library, "Fiksi")
	require.NoError(t, env.bookRepo.ReplaceCategories(ctx, env.book, []model.Category{*category}))

	request, err := requestSvc.Create(ctx, env.member, dto.CreateBorrowRequest{BookID: env.book.ID})
	require.NoError(t, err)
	_, err = requestSvc.Decide(ctx, env.librarian, request.ID, model.RequestStatusApproved)
	require.NoError(t, err)

	secondBook := env.createBook(t, env.library, "Perahu Kertas", "Dee Lestari")
	loan, err := loanSvc.Assign(ctx, env.librarian, dto.AssignLoanRequest{
		BookID: secondBook.ID,
		UserID: env.member.ID,
	})
	require.NoError(t, err)
	_, err = loanSvc.ApproveReturn(ctx, env.librarian, loan.ID)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, env.librarian)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.Books)
	assert.Equal(t, int64(1), stats.Users)
	assert.Equal(t, int64(1), stats.Libraries)
	assert.Equal(t, int64(1), stats.Categories)
	assert.Equal(t, int64(1), stats.LoansActive)
	assert.Equal(t, int64(2), stats.LoansTotal)

	assert.Equal(t, int64(1), stats.RequestsByStatus[model.RequestStatusApproved])
	assert.Equal(t, int64(0), stats.RequestsByStatus[model.RequestStatusPending])

	require.Len(t, stats.BooksPerCategory, 1)
	assert.Equal(t, "Fiksi", stats.BooksPerCategory[0].Name)
	assert.Equal(t, int64(1), stats.BooksPerCategory[0].Count)

	require.NotEmpty(t, stats.TopBooks)
	require.Len(t, stats.RecentRequests, 1)
	assert.Equal(t, dto.FeedKindBorrow, stats.RecentRequests[0].Kind)
}

func TestDashboardStatsScoped(t *testing.T) {
	env := newTestEnv(t)
	svc := newDashboardService(env)
	ctx := context.Background()

	other := env.createLibrary(t, "Perpustakaan Lain", nil)
	env.createBook(t, other, "Di Luar Jangkauan", "Anonim")

	librarianStats, err := svc.Stats(ctx, env.librarian)
	require.NoError(t, err)
	assert.Equal(t, int64(1), librarianStats.Books)
	assert.Equal(t, int64(1), librarianStats.Libraries)

	adminStats, err := svc.Stats(ctx, env.admin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), adminStats.Books)
	assert.Equal(t, int64(2), adminStats.Libraries)
}
