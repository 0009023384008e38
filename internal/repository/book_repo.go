package repository

import (
	"context"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookFilter narrows a scoped book listing.
type BookFilter struct {
	LibraryID      *uuid.UUID
	CategoryID     *uuid.UUID
	Search         string
	IncludeDeleted bool
	// IDs restricts the listing to a pre-resolved id set (search index hits).
	IDs []uuid.UUID
}

// LoanedBookCount is one row of the most-loaned ranking.
type LoanedBookCount struct {
	BookID uuid.UUID `json:"book_id"`
	Title  string    `json:"title"`
	Count  int64     `json:"count"`
}

type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	Save(ctx context.Context, book *model.Book) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	FindAll(ctx context.Context, sc *scope.Scope, filter BookFilter) ([]*model.Book, error)
	Count(ctx context.Context, sc *scope.Scope, includeDeleted bool) (int64, error)
	MostLoaned(ctx context.Context, sc *scope.Scope, limit int) ([]LoanedBookCount, error)
	ReplaceCategories(ctx context.Context, book *model.Book, categories []model.Category) error
	HardDelete(ctx context.Context, id uuid.UUID) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

func (r *bookRepository) Save(ctx context.Context, book *model.Book) error {
	return r.db.WithContext(ctx).Omit("Categories").Save(book).Error
}

// FindByID loads the book regardless of soft-delete state; visibility of
// deleted rows is the service's call.
func (r *bookRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	var book model.Book
	err := r.db.WithContext(ctx).Preload("Categories").First(&book, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) FindAll(ctx context.Context, sc *scope.Scope, filter BookFilter) ([]*model.Book, error) {
	var books []*model.Book
	query := sc.Filter(r.db.WithContext(ctx).Preload("Categories"), "books.library_id")

	if !filter.IncludeDeleted {
		query = query.Where("books.deleted_at IS NULL")
	}
	if filter.LibraryID != nil {
		query = query.Where("books.library_id = ?", *filter.LibraryID)
	}
	if filter.CategoryID != nil {
		query = query.Joins("JOIN book_categories bc ON bc.book_id = books.id").
			Where("bc.category_id = ?", *filter.CategoryID)
	}
	if filter.IDs != nil {
		query = query.Where("books.id IN ?", filter.IDs)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("books.title ILIKE ? OR books.author ILIKE ?", pattern, pattern)
	}

	if err := query.Order("books.created_at DESC").Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *bookRepository) Count(ctx context.Context, sc *scope.Scope, includeDeleted bool) (int64, error) {
	var count int64
	query := sc.Filter(r.db.WithContext(ctx).Model(&model.Book{}), "library_id")
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	err := query.Count(&count).Error
	return count, err
}

func (r *bookRepository) MostLoaned(ctx context.Context, sc *scope.Scope, limit int) ([]LoanedBookCount, error) {
	var counts []LoanedBookCount
	query := r.db.WithContext(ctx).
		Table("loans").
		Select("loans.book_id AS book_id, books.title AS title, COUNT(loans.id) AS count").
		Joins("JOIN books ON books.id = loans.book_id").
		Group("loans.book_id, books.title").
		Order("count DESC").
		Limit(limit)
	query = sc.Filter(query, "loans.library_id")

	if err := query.Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *bookRepository) ReplaceCategories(ctx context.Context, book *model.Book, categories []model.Category) error {
	return r.db.WithContext(ctx).Model(book).Association("Categories").Replace(categories)
}

// HardDelete removes the book and its request/loan history in one
// transaction.
func (r *bookRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Loan{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.BorrowRequest{}, "book_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM book_categories WHERE book_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Book{}, "id = ?", id).Error
	})
}
