package service

import (
	"context"
	"errors"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"anoa.com/perpustakaan/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	Create(ctx context.Context, actor *model.User, req dto.CreateCategoryRequest) (*model.Category, error)
	GetAll(ctx context.Context, actor *model.User, filter dto.CategoryFilter) ([]*model.Category, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateCategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type categoryService struct {
	repo        repository.CategoryRepository
	libraryRepo repository.LibraryRepository
}

func NewCategoryService(repo repository.CategoryRepository, libraryRepo repository.LibraryRepository) CategoryService {
	return &categoryService{repo: repo, libraryRepo: libraryRepo}
}

func (s *categoryService) Create(ctx context.Context, actor *model.User, req dto.CreateCategoryRequest) (*model.Category, error) {
	if _, err := s.libraryRepo.FindByID(ctx, req.LibraryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "library not found")
		}
		return nil, err
	}

	if !scope.FromUser(actor).Allows(req.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	category := &model.Category{
		LibraryID: req.LibraryID,
		Name:      req.Name,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) GetAll(ctx context.Context, actor *model.User, filter dto.CategoryFilter) ([]*model.Category, error) {
	return s.repo.FindAll(ctx, scope.FromUser(actor), filter.LibraryID, filter.Search)
}

func (s *categoryService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateCategoryRequest) (*model.Category, error) {
	category, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !scope.FromUser(actor).Allows(category.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	category.Name = req.Name
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	category, err := s.load(ctx, actor, id)
	if err != nil {
		return err
	}

	if !scope.FromUser(actor).Allows(category.LibraryID, scope.Write) {
		return apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	return s.repo.Delete(ctx, category.ID)
}

func (s *categoryService) load(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "category not found")
		}
		return nil, err
	}

	if !scope.FromUser(actor).Contains(category.LibraryID) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "category not found")
	}
	return category, nil
}
