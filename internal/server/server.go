package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/mlefebvre/plume/internal/config"
	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/internal/service"
	"github.com/mlefebvre/plume/internal/service/affiliate"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Store        *service.GormStore
	Catalog      *service.CatalogService
	Optimizer    *service.OptimizerService
	Orchestrator *service.Orchestrator
	Scheduler    *service.Scheduler
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := service.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Storage and caches
	store := service.NewGormStore(db)
	seenCache := service.NewGormSeenCache(db)
	rewriteCache := service.NewGormRewriteCache(db)
	publicationCache := service.NewGormPublicationCache(db)
	catalog := service.NewCatalogService(db, cfg.Affiliate.Account, logger)

	// Outbound clients
	openRouter := service.NewOpenRouterClient(&cfg.Models, logger)
	wordPress := service.NewWordPressClient(&cfg.WordPress, logger)

	// Pipeline stages
	collector := service.NewCollectorService(&cfg.Collector, store, seenCache, store, logger)
	rewriter := service.NewRewriterService(store, rewriteCache, openRouter, cfg.Models.TextModels, logger)
	linker := service.NewLinkerService(store, catalog, affiliate.NewInserter(), &cfg.Affiliate, logger)
	publisher := service.NewPublisherService(store, publicationCache, openRouter, cfg.Models.ImageModels, wordPress, logger)

	stages := []service.Stage{collector, rewriter, linker, publisher}

	if cfg.Twitter.Enabled {
		interval, err := time.ParseDuration(cfg.Twitter.MinPostInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid twitter post interval: %w", err)
		}
		twitter := service.NewTwitterClient(&cfg.Twitter, logger)
		limiter := rate.NewLimiter(rate.Every(interval), 1)
		promoter := service.NewPromoterService(store, openRouter, cfg.Models.TextModels, twitter, limiter, logger)
		stages = append(stages, promoter)
	} else {
		logger.Info("Twitter promotion is disabled")
	}

	orchestrator := service.NewOrchestrator(logger, stages...)
	optimizer := service.NewOptimizerService(store, store, service.NewSimulatedAnalytics(), logger)
	scheduler := service.NewScheduler(&cfg.Scheduler, logger, orchestrator, optimizer)

	// Create router
	router := gin.New()

	// Create server
	srv := &Server{
		Config:       cfg,
		DB:           db,
		Router:       router,
		Logger:       logger,
		Store:        store,
		Catalog:      catalog,
		Optimizer:    optimizer,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
	}

	// Setup middleware and routes
	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		articles := api.Group("/articles")
		{
			articles.GET("", s.handleListArticles)
			articles.GET("/:id", s.handleGetArticle)
		}

		api.POST("/cycle", s.handleRunCycle)
		api.POST("/optimize", s.handleRunOptimize)

		products := api.Group("/products")
		{
			products.GET("", s.handleListProducts)
			products.POST("", s.handleUpsertProducts)
		}
	}
}

func (s *Server) handleListArticles(c *gin.Context) {
	var (
		articles []models.Article
		err      error
	)

	if raw := c.Query("status"); raw != "" {
		status, parseErr := models.ParseStatus(raw)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + raw})
			return
		}
		articles, err = s.Store.ArticlesByStatus(c.Request.Context(), status)
	} else {
		articles, err = s.Store.AllArticles(c.Request.Context())
	}
	if err != nil {
		s.Logger.Error("Failed to list articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"articles": articles, "count": len(articles)})
}

func (s *Server) handleGetArticle(c *gin.Context) {
	article, err := s.Store.ArticleByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"article": article})
}

func (s *Server) handleRunCycle(c *gin.Context) {
	go func() {
		if err := s.Orchestrator.RunCycle(context.Background()); err != nil {
			s.Logger.Error("Manual pipeline cycle failed", zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Pipeline cycle started"})
}

func (s *Server) handleRunOptimize(c *gin.Context) {
	go func() {
		if err := s.Optimizer.AdjustStrategy(context.Background()); err != nil {
			s.Logger.Error("Manual strategy optimization failed", zap.Error(err))
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Strategy optimization started"})
}

func (s *Server) handleListProducts(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		category = s.Config.Affiliate.DefaultCategory
	}

	products, err := s.Catalog.CatalogByCategory(c.Request.Context(), category)
	if err != nil {
		s.Logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (s *Server) handleUpsertProducts(c *gin.Context) {
	var products []models.CatalogProduct
	if err := c.ShouldBindJSON(&products); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product payload"})
		return
	}

	if err := s.Catalog.UpsertProducts(c.Request.Context(), products); err != nil {
		s.Logger.Error("Failed to upsert products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upsert products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Products updated", "count": len(products)})
}

func (s *Server) Start(ctx context.Context) error {
	// Start scheduler
	if err := s.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop scheduler first
	s.Scheduler.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
