package service

import (
	"context"
	"errors"
	"io"
	"log"
	"time"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"anoa.com/perpustakaan/pkg/apperror"
	"anoa.com/perpustakaan/pkg/storage"
	"anoa.com/perpustakaan/pkg/summarizer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CoverFile is an uploaded book cover.
type CoverFile struct {
	Reader   io.Reader
	FileName string
}

type BookService interface {
	GetAll(ctx context.Context, actor *model.User, filter dto.BookFilter) ([]*model.Book, error)
	GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Book, error)
	Create(ctx context.Context, actor *model.User, req dto.CreateBookRequest) (*model.Book, error)
	Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateBookRequest) (*model.Book, error)
	SoftDelete(ctx context.Context, actor *model.User, id uuid.UUID) error
	HardDelete(ctx context.Context, actor *model.User, id uuid.UUID) error
	Restore(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Book, error)
	UploadCover(ctx context.Context, actor *model.User, id uuid.UUID, cover *CoverFile) (*model.Book, error)
	GenerateSummary(ctx context.Context, req dto.GenerateSummaryRequest) (*dto.SummaryResponse, error)
}

type bookService struct {
	repo         repository.BookRepository
	categoryRepo repository.CategoryRepository
	libraryRepo  repository.LibraryRepository
	search       SearchService
	imageStorage storage.ImageStorage
	summarizer   summarizer.Summarizer
}

func NewBookService(
	repo repository.BookRepository,
	categoryRepo repository.CategoryRepository,
	libraryRepo repository.LibraryRepository,
	search SearchService,
	imageStorage storage.ImageStorage,
	summarizer summarizer.Summarizer,
) BookService {
	return &bookService{
		repo:         repo,
		categoryRepo: categoryRepo,
		libraryRepo:  libraryRepo,
		search:       search,
		imageStorage: imageStorage,
		summarizer:   summarizer,
	}
}

// GetAll lists books in the actor's visible libraries. Standard users never
// see soft-deleted rows; staff get them with the deleted_at flag set.
func (s *bookService) GetAll(ctx context.Context, actor *model.User, filter dto.BookFilter) ([]*model.Book, error) {
	sc := scope.FromUser(actor)

	repoFilter := repository.BookFilter{
		LibraryID:      filter.LibraryID,
		CategoryID:     filter.CategoryID,
		IncludeDeleted: sc.IsAdmin() || sc.IsLibrarian(),
	}

	if filter.Search != "" {
		if s.search.Enabled() {
			var libraryIDs []uuid.UUID
			if !sc.IsAdmin() {
				libraryIDs = sc.Visible()
				if len(libraryIDs) == 0 {
					return []*model.Book{}, nil
				}
			}
			ids, err := s.search.SearchBooks(filter.Search, libraryIDs)
			if err != nil {
				// Degrade to database search.
				log.Printf("book search index failed, falling back to SQL: %v", err)
				repoFilter.Search = filter.Search
			} else {
				if len(ids) == 0 {
					return []*model.Book{}, nil
				}
				repoFilter.IDs = ids
			}
		} else {
			repoFilter.Search = filter.Search
		}
	}

	return s.repo.FindAll(ctx, sc, repoFilter)
}

func (s *bookService) GetByID(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Book, error) {
	book, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
		}
		return nil, err
	}

	sc := scope.FromUser(actor)
	if !sc.Contains(book.LibraryID) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
	}

	// Soft-deleted books are invisible to standard users.
	if book.IsDeleted() && !sc.IsAdmin() && !sc.IsLibrarian() {
		return nil, apperror.Wrap(apperror.ErrNotFound, "book not found")
	}

	return book, nil
}

func (s *bookService) Create(ctx context.Context, actor *model.User, req dto.CreateBookRequest) (*model.Book, error) {
	if _, err := s.libraryRepo.FindByID(ctx, req.LibraryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.ErrNotFound, "library not found")
		}
		return nil, err
	}

	if !scope.FromUser(actor).Allows(req.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	categories, err := s.resolveCategories(ctx, req.LibraryID, req.CategoryIDs)
	if err != nil {
		return nil, err
	}

	book := &model.Book{
		LibraryID:   req.LibraryID,
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		PublishYear: req.PublishYear,
		Publisher:   req.Publisher,
		SummaryEN:   req.SummaryEN,
		SummaryID:   req.SummaryID,
		Categories:  categories,
	}

	// Best-effort summary fill; the summarizer is an external collaborator
	// and its failure must not block the create.
	if book.SummaryEN == nil && book.SummaryID == nil && s.summarizer != nil {
		if summary, err := s.summarizer.Summarize(ctx, book.Title, book.Author); err != nil {
			log.Printf("summary generation failed for %q: %v", book.Title, err)
		} else {
			book.SummaryEN = &summary.English
			book.SummaryID = &summary.Indonesian
		}
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	s.syncIndex(book)
	return book, nil
}

func (s *bookService) Update(ctx context.Context, actor *model.User, id uuid.UUID, req dto.UpdateBookRequest) (*model.Book, error) {
	book, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	sc := scope.FromUser(actor)
	if !sc.Allows(book.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	// Moving a book between libraries requires admin or ownership of both
	// source and target.
	if req.LibraryID != nil && *req.LibraryID != book.LibraryID {
		if !sc.IsAdmin() && !(sc.Owns(book.LibraryID) && sc.Owns(*req.LibraryID)) {
			return nil, apperror.Wrap(apperror.ErrForbidden, "book cannot be moved to another library")
		}
		if _, err := s.libraryRepo.FindByID(ctx, *req.LibraryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperror.Wrap(apperror.ErrNotFound, "library not found")
			}
			return nil, err
		}
		book.LibraryID = *req.LibraryID
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.ISBN != nil {
		book.ISBN = *req.ISBN
	}
	if req.PublishYear != nil {
		book.PublishYear = *req.PublishYear
	}
	if req.Publisher != nil {
		book.Publisher = *req.Publisher
	}
	if req.SummaryEN != nil {
		book.SummaryEN = req.SummaryEN
	}
	if req.SummaryID != nil {
		book.SummaryID = req.SummaryID
	}

	if err := s.repo.Save(ctx, book); err != nil {
		return nil, err
	}

	if req.CategoryIDs != nil {
		categories, err := s.resolveCategories(ctx, book.LibraryID, req.CategoryIDs)
		if err != nil {
			return nil, err
		}
		if err := s.repo.ReplaceCategories(ctx, book, categories); err != nil {
			return nil, err
		}
		book.Categories = categories
	}

	s.syncIndex(book)
	return book, nil
}

func (s *bookService) SoftDelete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	book, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}

	if !scope.FromUser(actor).Allows(book.LibraryID, scope.Write) {
		return apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	// Existing loans keep running; soft-delete only hides the book.
	now := time.Now()
	book.DeletedAt = &now
	if err := s.repo.Save(ctx, book); err != nil {
		return err
	}

	s.syncIndex(book)
	return nil
}

func (s *bookService) HardDelete(ctx context.Context, actor *model.User, id uuid.UUID) error {
	book, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return err
	}

	if !scope.FromUser(actor).Allows(book.LibraryID, scope.Write) {
		return apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	if err := s.repo.HardDelete(ctx, book.ID); err != nil {
		return err
	}

	if err := s.search.DeleteBook(book.ID); err != nil {
		log.Printf("failed to remove book %s from search index: %v", book.ID, err)
	}
	return nil
}

func (s *bookService) Restore(ctx context.Context, actor *model.User, id uuid.UUID) (*model.Book, error) {
	book, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !scope.FromUser(actor).Allows(book.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	if !book.IsDeleted() {
		return book, nil
	}

	book.DeletedAt = nil
	if err := s.repo.Save(ctx, book); err != nil {
		return nil, err
	}

	s.syncIndex(book)
	return book, nil
}

func (s *bookService) UploadCover(ctx context.Context, actor *model.User, id uuid.UUID, cover *CoverFile) (*model.Book, error) {
	book, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if !scope.FromUser(actor).Allows(book.LibraryID, scope.Write) {
		return nil, apperror.Wrap(apperror.ErrForbidden, "library is not writable for this account")
	}

	if cover == nil || cover.Reader == nil {
		return nil, apperror.Wrap(apperror.ErrBadRequest, "cover file is required")
	}
	if s.imageStorage == nil {
		return nil, apperror.Wrap(apperror.ErrExternal, "image storage is not configured")
	}

	url, err := s.imageStorage.UploadImage(ctx, cover.Reader, "covers", cover.FileName)
	if err != nil {
		return nil, apperror.New(apperror.MapErrorToStatus(apperror.ErrExternal), "cover upload failed", err)
	}

	if book.CoverURL != nil {
		if err := s.imageStorage.DeleteImage(ctx, *book.CoverURL); err != nil {
			log.Printf("failed to delete old cover for book %s: %v", book.ID, err)
		}
	}

	book.CoverURL = &url
	if err := s.repo.Save(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) GenerateSummary(ctx context.Context, req dto.GenerateSummaryRequest) (*dto.SummaryResponse, error) {
	if s.summarizer == nil {
		return nil, apperror.Wrap(apperror.ErrExternal, "summarizer is not configured")
	}

	summary, err := s.summarizer.Summarize(ctx, req.Name, req.Author)
	if err != nil {
		return nil, apperror.New(apperror.MapErrorToStatus(apperror.ErrExternal), "summary generation failed", err)
	}

	return &dto.SummaryResponse{
		SummaryEN: summary.English,
		SummaryID: summary.Indonesian,
	}, nil
}

// resolveCategories loads the requested categories and enforces that each one
// belongs to the book's library.
func (s *bookService) resolveCategories(ctx context.Context, libraryID uuid.UUID, ids []uuid.UUID) ([]model.Category, error) {
	if len(ids) == 0 {
		return []model.Category{}, nil
	}

	categories, err := s.categoryRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(categories) != len(ids) {
		return nil, apperror.Wrap(apperror.ErrNotFound, "category not found")
	}
	for _, category := range categories {
		if category.LibraryID != libraryID {
			return nil, apperror.Wrap(apperror.ErrConflict, "categories must belong to the book's library")
		}
	}
	return categories, nil
}

func (s *bookService) syncIndex(book *model.Book) {
	if err := s.search.IndexBook(book); err != nil {
		log.Printf("failed to index book %s: %v", book.ID, err)
	}
}
