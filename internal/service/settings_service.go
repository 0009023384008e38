package service

import (
	"context"
	"errors"
	"fmt"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"anoa.com/perpustakaan/pkg/apperror"
	"anoa.com/perpustakaan/pkg/mailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettingsService interface {
	Get(ctx context.Context, actor *model.User, query dto.SettingsQuery) (*model.Settings, error)
	Update(ctx context.Context, actor *model.User, query dto.SettingsQuery, req dto.UpdateSettingsRequest) (*model.Settings, error)
	TestEmail(ctx context.Context, req dto.TestEmailRequest) error
}

type settingsService struct {
	repo        repository.SettingsRepository
	libraryRepo repository.LibraryRepository
}

func NewSettingsService(repo repository.SettingsRepository, libraryRepo repository.LibraryRepository) SettingsService {
	return &settingsService{repo: repo, libraryRepo: libraryRepo}
}

// Get returns the settings row for the resolved library, creating one with
// defaults when it is missing.
func (s *settingsService) Get(ctx context.Context, actor *model.User, query dto.SettingsQuery) (*model.Settings, error) {
	libraryID, err := s.resolveLibrary(ctx, actor, query)
	if err != nil {
		return nil, err
	}

	settings, err := s.repo.FindByLibrary(ctx, libraryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = &model.Settings{
			LibraryID:   libraryID,
			OverdueDays: model.DefaultOverdueDays,
		}
		if err := s.repo.Create(ctx, settings); err != nil {
			return nil, err
		}
		return settings, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, actor *model.User, query dto.SettingsQuery, req dto.UpdateSettingsRequest) (*model.Settings, error) {
	settings, err := s.Get(ctx, actor, query)
	if err != nil {
		return nil, err
	}

	if req.SMTPHost != nil {
		settings.SMTPHost = *req.SMTPHost
	}
	if req.SMTPPort != nil {
		settings.SMTPPort = *req.SMTPPort
	}
	if req.SMTPUser != nil {
		settings.SMTPUser = *req.SMTPUser
	}
	if req.SMTPPassword != nil {
		settings.SMTPPassword = *req.SMTPPassword
	}
	if req.GmailUser != nil {
		settings.GmailUser = *req.GmailUser
	}
	if req.GmailAppPassword != nil {
		settings.GmailAppPassword = *req.GmailAppPassword
	}
	if req.FromEmail != nil {
		settings.FromEmail = *req.FromEmail
	}
	if req.OverdueDays != nil {
		settings.OverdueDays = *req.OverdueDays
	}
	if req.Templates != nil {
		settings.Templates = *req.Templates
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// TestEmail sends one message with the credentials from the request body, so
// staff can verify an SMTP setup before saving it.
func (s *settingsService) TestEmail(ctx context.Context, req dto.TestEmailRequest) error {
	m := mailer.NewSMTP(mailer.SMTPConfig{
		Host:     req.SMTPHost,
		Port:     req.SMTPPort,
		User:     req.SMTPUser,
		Password: req.SMTPPassword,
		From:     req.FromEmail,
	})

	err := m.Send(ctx, req.ToEmail, "Tes Email Perpustakaan",
		"Email percobaan dari pengaturan perpustakaan. Jika pesan ini sampai, konfigurasi SMTP sudah benar.")
	if err != nil {
		return apperror.Wrap(apperror.ErrExternal, fmt.Sprintf("failed to send test email: %v", err))
	}
	return nil
}

// resolveLibrary picks the library the settings call targets. An explicit
// library_id wins; a librarian with exactly one visible library falls back to
// it; everything else must name one.
func (s *settingsService) resolveLibrary(ctx context.Context, actor *model.User, query dto.SettingsQuery) (uuid.UUID, error) {
	sc := scope.FromUser(actor)

	if query.LibraryID != nil {
		if _, err := s.libraryRepo.FindByID(ctx, *query.LibraryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, apperror.Wrap(apperror.ErrNotFound, "library not found")
			}
			return uuid.Nil, err
		}
		if !sc.Allows(*query.LibraryID, scope.Write) {
			return uuid.Nil, apperror.Wrap(apperror.ErrNotFound, "library not found")
		}
		return *query.LibraryID, nil
	}

	if sc.IsAdmin() {
		return uuid.Nil, apperror.Wrap(apperror.ErrBadRequest, "library_id is required")
	}

	visible := sc.Visible()
	if len(visible) != 1 {
		return uuid.Nil, apperror.Wrap(apperror.ErrBadRequest, "library_id is required")
	}
	return visible[0], nil
}
