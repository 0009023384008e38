package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	Create(ctx context.Context, actor *model.User, req dto.CreateUserRequest) (*model.User, error)
	GetAll(ctx context.Context, actor *model.User, filter dto.UserFilter) ([]*model.User, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
	ListRoles(ctx context.Context) ([]*model.Role, error)
}

type userService struct {
	repo        repository.UserRepository
	libraryRepo repository.LibraryRepository
}

func NewUserService(repo repository.UserRepository, libraryRepo repository.LibraryRepository) UserService {
	return &userService{repo: repo, libraryRepo: libraryRepo}
}

func (s *userService) Create(ctx context.Context, actor *model.User, req dto.CreateUserRequest) (*model.User, error) {
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, apperror.Wrap(apperror.ErrConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, req.Role)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrBadRequest, fmt.Sprintf("role %s not found", req.Role))
		}
		return nil, err
	}

	libraries, err := s.resolveLibraries(ctx, req.LibraryIDs)
	if err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	roleID := role.ID
	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		RoleID:       &roleID,
		IsActive:     true,
		Libraries:    libraries,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "email already registered")
		}
		return nil, err
	}

	return s.repo.FindByID(ctx, user.ID)
}

func (s *userService) GetAll(ctx context.Context, actor *model.User, filter dto.UserFilter) ([]*model.User, error) {
	return s.repo.FindAll(ctx, scope.FromUser(actor), filter.Search)
}

func (s *userService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		if _, err := s.repo.FindByEmail(ctx, *req.Email); err == nil {
			return nil, apperror.Wrap(apperror.ErrConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hashedPassword)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	// Only admin may move an account to another role.
	if req.Role != nil && *req.Role != user.Role.Name {
		if !actor.IsAdmin() {
			return nil, apperror.Wrap(apperror.ErrForbidden, "only admin may change roles")
		}
		role, err := s.repo.FindRoleByName(ctx, *req.Role)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Wrap(apperror.ErrBadRequest, fmt.Sprintf("role %s not found", *req.Role))
			}
			return nil, err
		}
		roleID := role.ID
		user.RoleID = &roleID
		user.Role = *role
	}

	if err := s.repo.Save(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Wrap(apperror.ErrConflict, "email already registered")
		}
		return nil, err
	}

	if req.LibraryIDs != nil {
		libraries, err := s.resolveLibraries(ctx, req.LibraryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceLibraries(ctx, user, libraries); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, user.ID)
}

func (s *userService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	if actor.ID == id {
		return apperror.Wrap(apperror.ErrBadRequest, "cannot delete your own account")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.Wrap(apperror.ErrNotFound, "user not found")
		}
		return err
	}

	now := time.Now()
	user.DeletedAt = &now
	user.IsActive = false
	return s.repo.Save(ctx, user)
}

func (s *userService) ListRoles(ctx context.Context) ([]*model.Role, error) {
	return s.repo.ListRoles(ctx)
}

func (s *userService) resolveLibraries(ctx context.Context, ids []uuid.UUID) ([]model.Library, error) {
	libraries := make([]model.Library, 0, len(ids))
	for _, id := range ids {
		library, err := s.libraryRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Wrap(apperror.ErrBadRequest, fmt.Sprintf("library %s not found", id))
			}
			return nil, err
		}
		libraries = append(libraries, *library)
	}
	return libraries, nil
}
