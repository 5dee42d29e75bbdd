package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/crmforge/salesrag/internal/ai"
	"github.com/crmforge/salesrag/internal/config"
	"github.com/crmforge/salesrag/internal/db"
	"github.com/crmforge/salesrag/internal/embedcache"
	"github.com/crmforge/salesrag/internal/handler"
	"github.com/crmforge/salesrag/internal/job"
	"github.com/crmforge/salesrag/internal/middleware"
	"github.com/crmforge/salesrag/internal/repo"
	"github.com/crmforge/salesrag/internal/schedule"
	"github.com/crmforge/salesrag/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "salesrag",
		Short: "sales retrieval and pattern mining server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run salesrag server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			conn, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			if err := db.ApplyMigrations(conn); err != nil {
				return fmt.Errorf("migrations: %w", err)
			}
			return runServer(cfg, conn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildEmbedder(cfg *config.Config, cacheRepo *repo.EmbeddingCacheRepo) (ai.IEmbedder, error) {
	provider, err := ai.NewEmbedProvider(cfg.AI.Provider, cfg.AI.Data)
	if err != nil {
		return nil, fmt.Errorf("init embed provider: %w", err)
	}
	embedder := ai.NewEmbedder(provider, cfg.AI.Model)
	if len(cfg.AI.Fallbacks) > 0 {
		entries := []ai.EmbedderEntry{{Name: cfg.AI.Provider, Embedder: embedder}}
		for _, fb := range cfg.AI.Fallbacks {
			fbProvider, err := ai.NewEmbedProvider(fb.Provider, fb.Data)
			if err != nil {
				return nil, fmt.Errorf("init fallback embed provider %s: %w", fb.Provider, err)
			}
			entries = append(entries, ai.EmbedderEntry{Name: fb.Provider, Embedder: ai.NewEmbedder(fbProvider, fb.Model)})
		}
		embedder = ai.NewGroupEmbedder(entries)
	}
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(
		embedder,
		cfg.AI.Cache.LRUSize,
		time.Duration(cfg.AI.Cache.LRUTTLMinutes)*time.Minute,
	)
	return embedder, nil
}

func runServer(cfg *config.Config, conn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("ai_provider", cfg.AI.Provider),
		zap.Int("dimension", cfg.AI.Dimension),
	)

	cacheRepo := repo.NewEmbeddingCacheRepo(conn)
	docRepo := repo.NewDocumentRepo(conn, cfg.AI.Dimension)
	customerRepo := repo.NewCustomerRepo(conn)
	interactionRepo := repo.NewInteractionRepo(conn)
	opportunityRepo := repo.NewOpportunityRepo(conn)

	embedder, err := buildEmbedder(cfg, cacheRepo)
	if err != nil {
		return err
	}

	embedTimeout := time.Duration(cfg.AI.TimeoutSeconds) * time.Second
	storeTimeout := time.Duration(cfg.Engine.StoreTimeoutSeconds) * time.Second

	retrievalService := service.NewRetrievalService(embedder, docRepo, embedTimeout, storeTimeout)
	patternService := service.NewPatternService(interactionRepo, cfg.Engine.ExampleCap, storeTimeout)
	suggestionService := service.NewSuggestionService(
		opportunityRepo,
		interactionRepo,
		cfg.Engine.HighValueThreshold,
		cfg.Engine.RecentWindowDays,
		cfg.Engine.TalkingPoints,
		storeTimeout,
	)
	contextService := service.NewContextService(customerRepo, interactionRepo, opportunityRepo, docRepo, storeTimeout)

	deps := handler.RouterDeps{
		Search:      handler.NewSearchHandler(retrievalService),
		Patterns:    handler.NewPatternHandler(patternService),
		Suggestions: handler.NewSuggestionHandler(suggestionService),
		Contexts:    handler.NewContextHandler(contextService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSAllow),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	cleanup := job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.AI.Cache.DBCacheMaxAgeDays)
	if err := scheduler.AddJob(cleanup, cfg.AI.Cache.CleanupCron); err != nil {
		return fmt.Errorf("schedule cleanup job: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
