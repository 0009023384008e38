package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/perpustakaan/internal/dto"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/scope"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardCacheTTL = 30 * time.Second
	topBooksLimit     = 5
	recentFeedLimit   = 5
)

type DashboardService interface {
	Stats(ctx context.Context, actor *model.User) (*dto.DashboardStats, error)
}

type dashboardService struct {
	bookRepo     repository.BookRepository
	userRepo     repository.UserRepository
	libraryRepo  repository.LibraryRepository
	categoryRepo repository.CategoryRepository
	loanRepo     repository.LoanRepository
	requestRepo  repository.RequestRepository
	redisClient  *redis.Client
}

func NewDashboardService(
	bookRepo repository.BookRepository,
	userRepo repository.UserRepository,
	libraryRepo repository.LibraryRepository,
	categoryRepo repository.CategoryRepository,
	loanRepo repository.LoanRepository,
	requestRepo repository.RequestRepository,
	redisClient *redis.Client,
) DashboardService {
	return &dashboardService{
		bookRepo:     bookRepo,
		userRepo:     userRepo,
		libraryRepo:  libraryRepo,
		categoryRepo: categoryRepo,
		loanRepo:     loanRepo,
		requestRepo:  requestRepo,
		redisClient:  redisClient,
	}
}

// Stats assembles the dashboard counters for the actor's visible libraries.
// The queries are independent, so they fan out through an errgroup; results
// are cached per user for a short window.
func (s *dashboardService) Stats(ctx context.Context, actor *model.User) (*dto.DashboardStats, error) {
	cacheKey := fmt.Sprintf("dashboard:stats:%s", actor.ID.String())
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Bytes(); err == nil {
			var stats dto.DashboardStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	sc := scope.FromUser(actor)
	stats := &dto.DashboardStats{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.bookRepo.Count(gctx, sc, false)
		stats.Books = count
		return err
	})
	g.Go(func() error {
		count, err := s.userRepo.Count(gctx, sc)
		stats.Users = count
		return err
	})
	g.Go(func() error {
		count, err := s.libraryRepo.Count(gctx, sc)
		stats.Libraries = count
		return err
	})
	g.Go(func() error {
		count, err := s.categoryRepo.Count(gctx, sc)
		stats.Categories = count
		return err
	})
	g.Go(func() error {
		count, err := s.loanRepo.Count(gctx, sc, true)
		stats.LoansActive = count
		return err
	})
	g.Go(func() error {
		count, err := s.loanRepo.Count(gctx, sc, false)
		stats.LoansTotal = count
		return err
	})
	g.Go(func() error {
		counts, err := s.requestRepo.CountByStatus(gctx, sc)
		stats.RequestsByStatus = counts
		return err
	})
	g.Go(func() error {
		rows, err := s.categoryRepo.BookCounts(gctx, sc)
		if err != nil {
			return err
		}
		stats.BooksPerCategory = make([]dto.CategoryCount, 0, len(rows))
		for _, row := range rows {
			stats.BooksPerCategory = append(stats.BooksPerCategory, dto.CategoryCount{
				CategoryID: row.CategoryID.String(),
				Name:       row.Name,
				Count:      row.Count,
			})
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.bookRepo.MostLoaned(gctx, sc, topBooksLimit)
		if err != nil {
			return err
		}
		stats.TopBooks = make([]dto.TopBook, 0, len(rows))
		for _, row := range rows {
			stats.TopBooks = append(stats.TopBooks, dto.TopBook{
				BookID: row.BookID.String(),
				Title:  row.Title,
				Count:  row.Count,
			})
		}
		return nil
	})
	g.Go(func() error {
		recent, err := s.requestRepo.Recent(gctx, sc, recentFeedLimit)
		if err != nil {
			return err
		}
		stats.RecentRequests = make([]dto.FeedItem, 0, len(recent))
		for _, request := range recent {
			stats.RecentRequests = append(stats.RecentRequests, dto.FeedItem{
				Kind:      dto.FeedKindBorrow,
				ID:        request.ID,
				LibraryID: request.LibraryID,
				BookID:    request.BookID,
				BookTitle: request.Book.Title,
				UserID:    request.UserID,
				UserName:  request.User.Name,
				Status:    request.Status,
				CreatedAt: request.RequestedAt,
				DecidedAt: request.DecidedAt,
			})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.redisClient != nil {
		if payload, err := json.Marshal(stats); err == nil {
			s.redisClient.Set(ctx, cacheKey, payload, dashboardCacheTTL)
		}
	}

	return stats, nil
}
