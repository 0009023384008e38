package service_test

import (
	"context"
	"testing"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookService(env *testEnv) service.BookService {
	return service.NewBookService(env.bookRepo, env.categoryRepo, env.libraryRepo, service.NewSearchService(nil), nil, nil)
}

func TestBookCreateRequiresWritableLibrary(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)
	ctx := context.Background()

	other := env.createLibrary(t, "Perpustakaan Lain", nil)

	_, err := svc.Create(ctx, env.librarian, dto.CreateBookRequest{
		LibraryID: other.ID,
		Title:     "Cantik Itu Luka",
		Author:    "Eka Kurniawan",
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	book, err := svc.Create(ctx, env.librarian, dto.CreateBookRequest{
		LibraryID: env.library.ID,
		Title:     "Cantik Itu Luka",
		Author:    "Eka Kurniawan",
	})
	require.NoError(t, err)
	assert.Equal(t, env.library.ID, book.LibraryID)
}

func TestBookCreateUnknownLibrary(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)

	_, err := svc.Create(context.Background(), env.admin, dto.CreateBookRequest{
		LibraryID: uuid.New(),
		Title:     "Tanpa Rumah",
		Author:    "Anonim",
	})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestBookCategoriesMustShareLibrary(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)
	ctx := context.Background()

	other := env.createLibrary(t, "Perpustakaan Lain", nil)
	foreign := env.createCategory(t, other, "Sejarah")

	_, err := svc.Create(ctx, env.admin, dto.CreateBookRequest{
		LibraryID:   env.library.ID,
		Title:       "Sejarah Nusantara",
		Author:      "Tim Penulis",
		CategoryIDs: []uuid.UUID{foreign.ID},
	})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	local := env.createCategory(t, env.library, "Fiksi")
	book, err := svc.Create(ctx, env.admin, dto.CreateBookRequest{
		LibraryID:   env.library.ID,
		Title:       "Sejarah Nusantara",
		Author:      "Tim Penulis",
		CategoryIDs: []uuid.UUID{local.ID},
	})
	require.NoError(t, err)
	require.Len(t, book.Categories, 1)
	assert.Equal(t, local.ID, book.Categories[0].ID)
}

func TestBookScopeVisibility(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)
	ctx := context.Background()

	other := env.createLibrary(t, "Perpustakaan Lain", nil)
	hidden := env.createBook(t, other, "Di Luar Jangkauan", "Anonim")

	books, err := svc.GetAll(ctx, env.member, dto.BookFilter{})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, env.book.ID, books[0].ID)

	_, err = svc.GetByID(ctx, env.member, hidden.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	all, err := svc.GetAll(ctx, env.admin, dto.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestBookSoftDeleteHiddenFromMembers(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)
	ctx := context.Background()

	require.NoError(t, svc.SoftDelete(ctx, env.librarian, env.book.ID))

	_, err := svc.GetByID(ctx, env.member, env.book.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	memberList, err := svc.GetAll(ctx, env.member, dto.BookFilter{})
	require.NoError(t, err)
	assert.Empty(t, memberList)

	// Staff still see the archived row.
	book, err := svc.GetByID(ctx, env.librarian, env.book.ID)
	require.NoError(t, err)
	assert.True(t, book.IsDeleted())

	staffList, err := svc.GetAll(ctx, env.librarian, dto.BookFilter{})
	require.NoError(t, err)
	assert.Len(t, staffList, 1)
}

func TestBookRestore(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)
	ctx := context.Background()

	require.NoError(t, svc.SoftDelete(ctx, env.librarian, env.book.ID))

	book, err := svc.Restore(ctx, env.librarian, env.book.ID)
	require.NoError(t, err)
	assert.False(t, book.IsDeleted())

	got, err := svc.GetByID(ctx, env.member, env.book.ID)
	require.NoError(t, err)
	assert.Equal(t, env.book.ID, got.ID)
}

func TestBookHardDeleteRemovesHistory(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)
	loanSvc := newLoanService(env)
	ctx := context.Background()

	loan := assignLoan(t, env, loanSvc)
	_, err := loanSvc.ApproveReturn(ctx, env.librarian, loan.ID)
	require.NoError(t, err)

	require.NoError(t, svc.HardDelete(ctx, env.librarian, env.book.ID))

	_, err = svc.GetByID(ctx, env.librarian, env.book.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	loans, err := env.loanRepo.FindAll(ctx, adminScope(env), repository.LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, loans)
}

func TestBookUpdateMoveRequiresOwnership(t *testing.T) {
	env := newTestEnv(t)
	svc := newBookService(env)
	ctx := context.Background()

	other := env.createLibrary(t, "Perpustakaan Lain", nil)

	libID := other.ID
	_, err := svc.Update(ctx, env.librarian, env.book.ID, dto.UpdateBookRequest{LibraryID: &libID})
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	moved, err := svc.Update(ctx, env.admin, env.book.ID, dto.UpdateBookRequest{LibraryID: &libID})
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.LibraryID)
}
