package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	config "taskhub.com/taskhub/internal/configs"
	"taskhub.com/taskhub/internal/events"
	httpapi "taskhub.com/taskhub/internal/http"
	"taskhub.com/taskhub/internal/logging"
	repository "taskhub.com/taskhub/internal/repositories"
	"taskhub.com/taskhub/internal/services"
	"taskhub.com/taskhub/internal/storage"
	"taskhub.com/taskhub/internal/thumbs"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Starts the task API, the task-created event publisher, and the orphan-blob sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}

		cfg := config.Load()
		logger := logging.New(cfg.LogFile, cfg.LogLevel)

		database := config.NewDatabase(cfg.DatabaseDSN)
		repos := repository.New(database)

		redisClient := config.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
		publisher := events.NewRedisPublisher(redisClient, cfg.RedisEventsChannel)

		store := storage.NewDiskStore(cfg.StorageRoot, cfg.StoragePublicPrefix)
		thumbGen := thumbs.NewGenerator(store)

		taskService := services.NewTaskService(repos, store, thumbGen, publisher, logger)

		sweeper := services.NewSweeperService(
			repos.Attachments,
			store,
			time.Duration(cfg.SweepIntervalSeconds)*time.Second,
			time.Duration(cfg.SweepGraceSeconds)*time.Second,
			logger,
		)

		e := echo.New()
		handler := httpapi.NewHandler(taskService)
		httpapi.Register(e, handler, repos.References, cfg.RateLimit)

		go func() {
			logger.Infof("HTTP server listening on %s", cfg.AppURL)
			if err := e.Start(cfg.AppURL); err != nil {
				logger.Infof("server stopped: %v", err)
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		ctx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second,
		)
		defer cancel()

		_ = e.Shutdown(ctx)
		sweeper.Shutdown(ctx)

		logger.Info("HTTP server and sweeper shut down gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
