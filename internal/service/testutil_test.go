package service_test

import (
	"context"
	"testing"

	"anoa.com/perpustakaan/internal/bootstrap"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires an in-memory database with the fixtures most service tests
// need: one librarian owning a library, one member, one admin, one book.
type testEnv struct {
	db *gorm.DB

	admin     *model.User
	librarian *model.User
	member    *model.User

	library *model.Library
	book    *model.Book

	userRepo     repository.UserRepository
	libraryRepo  repository.LibraryRepository
	categoryRepo repository.CategoryRepository
	bookRepo     repository.BookRepository
	requestRepo  repository.RequestRepository
	loanRepo     repository.LoanRepository
	settingsRepo repository.SettingsRepository
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedRoles(db))

	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	env := &testEnv{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		libraryRepo:  repository.NewLibraryRepository(db),
		categoryRepo: repository.NewCategoryRepository(db),
		bookRepo:     repository.NewBookRepository(db),
		requestRepo:  repository.NewRequestRepository(db),
		loanRepo:     repository.NewLoanRepository(db),
		settingsRepo: repository.NewSettingsRepository(db),
	}

	env.admin = env.createUser(t, "Admin", "admin@test.local", model.RoleAdmin)
	env.librarian = env.createUser(t, "Pustakawan", "librarian@test.local", model.RoleLibrarian)
	env.member = env.createUser(t, "Anggota", "member@test.local", model.RoleUser)

	env.library = env.createLibrary(t, "Perpustakaan Pusat", env.librarian)
	env.assignMember(t, env.member, env.library)
	env.book = env.createBook(t, env.library, "Laskar Pelangi", "Andrea Hirata")

	return env
}

func (e *testEnv) createUser(t *testing.T, name, email, roleName string) *model.User {
	t.Helper()

	role, err := e.userRepo.FindRoleByName(context.Background(), roleName)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		RoleID:       &role.ID,
		IsActive:     true,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))

	return e.reloadUser(t, user)
}

func (e *testEnv) createLibrary(t *testing.T, name string, owner *model.User) *model.Library {
	t.Helper()

	library := &model.Library{Name: name}
	if owner != nil {
		ownerID := owner.ID
		library.OwnerID = &ownerID
	}
	require.NoError(t, e.libraryRepo.Create(context.Background(), library))

	if owner != nil {
		*owner = *e.reloadUser(t, owner)
	}
	return library
}

func (e *testEnv) assignMember(t *testing.T, user *model.User, library *model.Library) {
	t.Helper()

	libraries := append([]model.Library{}, user.Libraries...)
	libraries = append(libraries, *library)
	require.NoError(t, e.userRepo.ReplaceLibraries(context.Background(), user, libraries))
	*user = *e.reloadUser(t, user)
}

func (e *testEnv) createBook(t *testing.T, library *model.Library, title, author string) *model.Book {
	t.Helper()

	book := &model.Book{
		LibraryID: library.ID,
		Title:     title,
		Author:    author,
	}
	require.NoError(t, e.bookRepo.Create(context.Background(), book))
	return book
}

func (e *testEnv) createCategory(t *testing.T, library *model.Library, name string) *model.Category {
	t.Helper()

	category := &model.Category{LibraryID: library.ID, Name: name}
	require.NoError(t, e.categoryRepo.Create(context.Background(), category))
	return category
}

func adminScope(e *testEnv) *scope.Scope {
	return scope.FromUser(e.admin)
}

func (e *testEnv) reloadUser(t *testing.T, user *model.User) *model.User {
	t.Helper()

	loaded, err := e.userRepo.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	return loaded
}
