package repository

import (
	"context"

	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Save(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context, sc *scope.Scope, search string) ([]*model.User, error)
	Count(ctx context.Context, sc *scope.Scope) (int64, error)
	ReplaceLibraries(ctx context.Context, user *model.User, libraries []model.Library) error
	FindRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Libraries").
		Preload("OwnedLibraries").
		First(&user, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Preload("Libraries").
		Preload("OwnedLibraries").
		First(&user, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindAll lists accounts whose membership intersects the scope. Admin sees
// everyone.
func (r *userRepository) FindAll(ctx context.Context, sc *scope.Scope, search string) ([]*model.User, error) {
	var users []*model.User
	query := r.db.WithContext(ctx).Preload("Role").Preload("Libraries")

	query = r.scopeByMembership(query, sc)

	if search != "" {
		query = query.Where("users.name ILIKE ? OR users.email ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Order("users.created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, sc *scope.Scope) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.User{}).Where("users.deleted_at IS NULL")
	query = r.scopeByMembership(query, sc)
	err := query.Count(&count).Error
	return count, err
}

// scopeByMembership keeps only users whose membership intersects the scope.
// A subquery avoids join duplicates when a user belongs to several visible
// libraries.
func (r *userRepository) scopeByMembership(query *gorm.DB, sc *scope.Scope) *gorm.DB {
	if sc.IsAdmin() {
		return query
	}
	memberships := sc.Filter(r.db.Table("user_libraries").Select("user_id"), "library_id")
	return query.Where("users.id IN (?)", memberships)
}

func (r *userRepository) ReplaceLibraries(ctx context.Context, user *model.User, libraries []model.Library) error {
	return r.db.WithContext(ctx).Model(user).Association("Libraries").Replace(libraries)
}

func (r *userRepository) FindRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *userRepository) ListRoles(ctx context.Context) ([]*model.Role, error) {
	var roles []*model.Role
	if err := r.db.WithContext(ctx).Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
