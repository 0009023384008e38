package repository

import (
	"context"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LibraryRepository interface {
	Create(ctx context.Context, library *model.Library) error
	Save(ctx context.Context, library *model.Library) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Library, error)
	FindAll(ctx context.Context, sc *scope.Scope, search string) ([]*model.Library, error)
	Count(ctx context.Context, sc *scope.Scope) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

// Create inserts the library together with its settings row; a library is
// never without settings.
func (r *libraryRepository) Create(ctx context.Context, library *model.Library) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(library).Error; err != nil {
			return err
		}
		settings := &model.Settings{
			LibraryID:   library.ID,
			OverdueDays: model.DefaultOverdueDays,
		}
		if err := tx.Create(settings).Error; err != nil {
			return err
		}
		library.Settings = settings
		return nil
	})
}

func (r *libraryRepository) Save(ctx context.Context, library *model.Library) error {
	return r.db.WithContext(ctx).Save(library).Error
}

func (r *libraryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Library, error) {
	var library model.Library
	err := r.db.WithContext(ctx).Preload("Owner").First(&library, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &library, nil
}

func (r *libraryRepository) FindAll(ctx context.Context, sc *scope.Scope, search string) ([]*model.Library, error) {
	var libraries []*model.Library
	query := sc.Filter(r.db.WithContext(ctx).Preload("Owner"), "id")

	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Order("created_at DESC").Find(&libraries).Error; err != nil {
		return nil, err
	}
	return libraries, nil
}

func (r *libraryRepository) Count(ctx context.Context, sc *scope.Scope) (int64, error) {
	var count int64
	err := sc.Filter(r.db.WithContext(ctx).Model(&model.Library{}), "id").Count(&count).Error
	return count, err
}

// Delete removes the library and everything it owns.
func (r *libraryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Loan{}, "library_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.BorrowRequest{}, "library_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM book_categories WHERE book_id IN (SELECT id FROM books WHERE library_id = ?)", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Book{}, "library_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Category{}, "library_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Settings{}, "library_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_libraries WHERE library_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Library{}, "id = ?", id).Error
	})
}
