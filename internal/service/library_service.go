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

type LibraryService interface {
	Create(ctx context.Context, actor *model.User, req dto.CreateLibraryRequest) (*model.Library, error)
	GetAll(ctx context.Context, actor *model.User, filter dto.LibraryFilter) ([]*model.Library, error)
	GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Library, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateLibraryRequest) (*model.Library, error)
	Delete(ctx context.Context, actor *model.User, id uuid.UUID) error
}

type libraryService struct {
	repo repository.LibraryRepository
}

func NewLibraryService(repo repository.LibraryRepository) LibraryService {
	return &libraryService{repo: repo}
}

// Create makes a new library; a librarian creating one becomes its owner.
func (s *libraryService) Create(ctx context.Context, actor *model.User, req dto.CreateLibraryRequest) (*model.Library, error) {
	library := &model.Library{
		Name:        req.Name,
		Description: req.Description,
	}

	if actor.IsLibrarian() {
		ownerID := actor.ID
		library.OwnerID = &ownerID
	}

	if err := s.repo.Create(ctx, library); err != nil {
		return nil, err
	}
	return library, nil
}

func (s *libraryService) GetAll(ctx context.Context, actor *model.User, filter dto.LibraryFilter) ([]*model.Library, error) {
	return s.repo.FindAll(ctx, scope.FromUser(actor), filter.Search)
}

func (s *libraryService) GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Library, error) {
	library, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "library not found")
		}
		return nil, err
	}

	if !scope.FromUser(actor).Contains(library.ID) {
		// Out-of-scope looks exactly like missing.
		return nil, apperror.Wrap(apperror.ErrNotFound, "library not found")
	}
	return library, nil
}

func (s *libraryService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateLibraryRequest) (*model.Library, error) {
	library, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !scope.FromUser(actor).Allows(library.ID, scope.OwnerOnly) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "only the library owner may update it")
	}

	if req.Name != nil {
		library.Name = *req.Name
	}
	if req.Description != nil {
		library.Description = *req.Description
	}

	if err := s.repo.Save(ctx, library); err != nil {
		return nil, err
	}
	return library, nil
}

func (s *libraryService) Delete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	library, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}

	if !scope.FromUser(actor).Allows(library.ID, scope.OwnerOnly) {
		return apperror.Wrap(apperror.ErrForbidden, "only the library owner may delete it")
	}

	return s.repo.Delete(ctx, library.ID)
}
