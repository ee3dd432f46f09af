package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BuzzLyutic/task-list/internal/config"
	"github.com/BuzzLyutic/task-list/internal/handler"
	"github.com/BuzzLyutic/task-list/internal/metrics"
	"github.com/BuzzLyutic/task-list/internal/repo"
	"github.com/BuzzLyutic/task-list/internal/service"
	"github.com/BuzzLyutic/task-list/internal/session"
	"github.com/BuzzLyutic/task-list/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем логгер
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Подключаем хранилище
	blobs, err := repo.Open(context.Background(), cfg.Storage)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer blobs.Close()
	logger.Info("Storage ready", zap.String("driver", cfg.Storage.Driver), zap.String("key", cfg.Storage.Key))

	store := service.NewTaskStore(blobs, logger, service.WithKey(cfg.Storage.Key))
	sess := session.New(store, worker.NewDebouncer(cfg.SearchDebounce, logger), logger)
	sess.Start(context.Background())
	defer sess.Close()

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, handler.NewTaskHandler(sess, store, logger)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}

func newRouter(cfg config.Config, tasks *handler.TaskHandler) *chi.Mux {
	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Location", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})
	r.Handle("/metrics", metrics.Handler())

	tasks.Routes(r)
	return r
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}
