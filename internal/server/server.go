package server

import (
	"context"
	"log"
	"strings"
	"time"

	"anoa.com/perpustakaan/internal/config"
	"anoa.com/perpustakaan/internal/handler"
	"anoa.com/perpustakaan/internal/middleware"
	"anoa.com/perpustakaan/internal/model"
	"anoa.com/perpustakaan/internal/repository"
	"anoa.com/perpustakaan/internal/service"
	"anoa.com/perpustakaan/pkg/storage"
	"anoa.com/perpustakaan/pkg/summarizer"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
}

func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	libraryRepo := repository.NewLibraryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	bookRepo := repository.NewBookRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	loanRepo := repository.NewLoanRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Printf("cloudinary storage unavailable, cover upload disabled: %v", err)
		imageStorage = nil
	}

	var meiliClient meilisearch.ServiceManager
	if cfg.MeiliSearchHost != "" {
		host := cfg.MeiliSearchHost
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient = meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	}
	searchSvc := service.NewSearchService(meiliClient)

	var geminiSvc summarizer.Summarizer
	if cfg.GeminiAPIKey != "" {
		geminiSvc, err = summarizer.NewGemini(context.Background())
		if err != nil {
			log.Printf("gemini summarizer unavailable: %v", err)
			geminiSvc = nil
		}
	}

	authSvc := service.NewAuthService(userRepo)
	authHandler := handler.NewAuthHandler(authSvc)

	userSvc := service.NewUserService(userRepo, libraryRepo)
	userHandler := handler.NewUserHandler(userSvc)

	librarySvc := service.NewLibraryService(libraryRepo)
	libraryHandler := handler.NewLibraryHandler(librarySvc)

	categorySvc := service.NewCategoryService(categoryRepo, libraryRepo)
	categoryHandler := handler.NewCategoryHandler(categorySvc)

	bookSvc := service.NewBookService(bookRepo, categoryRepo, libraryRepo, searchSvc, imageStorage, geminiSvc)
	bookHandler := handler.NewBookHandler(bookSvc)

	requestSvc := service.NewRequestService(db, requestRepo, loanRepo, bookRepo, redisClient, cfg.RateLimitBorrow)
	requestHandler := handler.NewRequestHandler(requestSvc)

	loanSvc := service.NewLoanService(db, loanRepo, bookRepo, userRepo, settingsRepo)
	loanHandler := handler.NewLoanHandler(loanSvc)

	dashboardSvc := service.NewDashboardService(bookRepo, userRepo, libraryRepo, categoryRepo, loanRepo, requestRepo, redisClient)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	settingsSvc := service.NewSettingsService(settingsRepo, libraryRepo)
	settingsHandler := handler.NewSettingsHandler(settingsSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	setupCORS(router, cfg.AllowedOrigins)

	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/roles", userHandler.ListRoles)

		protected.GET("/libraries", libraryHandler.GetAll)
		protected.GET("/libraries/:id", libraryHandler.GetByID)

		protected.GET("/categories", categoryHandler.GetAll)

		protected.GET("/books", bookHandler.GetAll)
		protected.GET("/books/:id", bookHandler.GetByID)

		protected.GET("/requests", requestHandler.Feed)
		protected.POST("/requests", requestHandler.Create)
		protected.DELETE("/requests/:id", requestHandler.Cancel)

		protected.GET("/loans", loanHandler.GetAll)
		protected.GET("/loans/:id", loanHandler.GetByID)
		protected.POST("/loans/:id/return-request", loanHandler.RequestReturn)
		protected.POST("/loans/:id/cancel-return", loanHandler.CancelReturn)

		protected.GET("/dashboard/stats", dashboardHandler.Stats)

		staff := protected.Group("")
		staff.Use(authMiddleware.RequireRoles(model.RoleAdmin, model.RoleLibrarian))
		{
			staff.POST("/libraries", libraryHandler.Create)
			staff.PUT("/libraries/:id", libraryHandler.Update)
			staff.DELETE("/libraries/:id", libraryHandler.Delete)

			staff.POST("/categories", categoryHandler.Create)
			staff.PUT("/categories/:id", categoryHandler.Update)
			staff.DELETE("/categories/:id", categoryHandler.Delete)

			staff.POST("/books", bookHandler.Create)
			staff.PUT("/books/:id", bookHandler.Update)
			staff.DELETE("/books/:id", bookHandler.Delete)
			staff.POST("/books/:id/restore", bookHandler.Restore)
			staff.POST("/books/:id/cover", bookHandler.UploadCover)
			staff.POST("/books/generate-summary", bookHandler.GenerateSummary)

			staff.PUT("/requests/:id", requestHandler.Decide)

			staff.POST("/loans", loanHandler.Assign)
			staff.POST("/loans/:id/return", loanHandler.ApproveReturn)
			staff.POST("/loans/:id/reject", loanHandler.RejectReturn)

			staff.GET("/settings", settingsHandler.Get)
			staff.PUT("/settings", settingsHandler.Update)
			staff.POST("/settings/test-email", settingsHandler.TestEmail)
		}

		admin := protected.Group("")
		admin.Use(authMiddleware.RequireRoles(model.RoleAdmin))
		{
			admin.POST("/users", userHandler.Create)
			admin.GET("/users", userHandler.GetAll)
			admin.PUT("/users/:id", userHandler.Update)
			admin.DELETE("/users/:id", userHandler.Delete)
		}
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func setupCORS(router *gin.Engine, allowedOrigins string) {
	origins := []string{"http://localhost:3000"}
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
