package repository

import (
	"context"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CategoryBookCount is one row of the books-per-category grouping.
type CategoryBookCount struct {
	CategoryID uuid.UUID `json:"category_id"`
	Name       string    `json:"name"`
	Count      int64     `json:"count"`
}

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Save(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Category, error)
	FindAll(ctx context.Context, sc *scope.Scope, libraryID *uuid.UUID, search string) ([]*model.Category, error)
	Count(ctx context.Context, sc *scope.Scope) (int64, error)
	BookCounts(ctx context.Context, sc *scope.Scope) ([]CategoryBookCount, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) Save(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Category, error) {
	var categories []model.Category
	if len(ids) == 0 {
		return categories, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) FindAll(ctx context.Context, sc *scope.Scope, libraryID *uuid.UUID, search string) ([]*model.Category, error) {
	var categories []*model.Category
	query := sc.Filter(r.db.WithContext(ctx), "library_id")

	if libraryID != nil {
		query = query.Where("library_id = ?", *libraryID)
	}
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Count(ctx context.Context, sc *scope.Scope) (int64, error) {
	var count int64
	err := sc.Filter(r.db.WithContext(ctx).Model(&model.Category{}), "library_id").Count(&count).Error
	return count, err
}

func (r *categoryRepository) BookCounts(ctx context.Context, sc *scope.Scope) ([]CategoryBookCount, error) {
	var counts []CategoryBookCount
	query := r.db.WithContext(ctx).
		Table("categories").
		Select("categories.id AS category_id, categories.name AS name, COUNT(bc.book_id) AS count").
		Joins("LEFT JOIN book_categories bc ON bc.category_id = categories.id").
		Group("categories.id, categories.name")
	query = sc.Filter(query, "categories.library_id")

	if err := query.Scan(&counts).Error; err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM book_categories WHERE category_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Category{}, "id = ?", id).Error
	})
}
