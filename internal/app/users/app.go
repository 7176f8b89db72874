// Package users собирает HTTP-сервис пользователей: хранилище, кэш, публикацию
// событий, аутентификацию и маршруты.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/users-service/internal/cache"
	"github.com/magabrotheeeer/users-service/internal/config"
	"github.com/magabrotheeeer/users-service/internal/lib/jwt"
	"github.com/magabrotheeeer/users-service/internal/lib/password"
	"github.com/magabrotheeeer/users-service/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/users-service/internal/lib/sl"
	"github.com/magabrotheeeer/users-service/internal/metrics"
	"github.com/magabrotheeeer/users-service/internal/migrations"
	"github.com/magabrotheeeer/users-service/internal/models"
	userservice "github.com/magabrotheeeer/users-service/internal/services/users"
	"github.com/magabrotheeeer/users-service/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App — HTTP-сервис пользователей со всеми открытыми ресурсами.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	cache    *cache.Cache
	amqpConn *amqp.Connection
	amqpCh   *amqp.Channel
}

// New открывает ресурсы, применяет миграции и собирает маршруты.
// Redis и RabbitMQ подключаются, только если заданы их адреса.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.users.New"

	db, err := storage.New(ctx, cfg.Storage.DSN())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a := &App{logger: logger, db: db}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		a.close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var repo userservice.Repository = db
	if cfg.RedisConnection.AddressRedis != "" {
		a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		repo = cache.NewCachedUsers(db, a.cache, cfg.RedisConnection.CacheTTL, logger)
		logger.Info("user cache enabled", slog.String("address", cfg.RedisConnection.AddressRedis))
	}

	var events userservice.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		a.amqpConn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		a.amqpCh, err = rabbitmq.SetupExchange(a.amqpConn, cfg.RabbitMQ.Exchange)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = rabbitmq.NewPublisher(a.amqpCh, cfg.RabbitMQ.Exchange)
		logger.Info("event publishing enabled", slog.String("exchange", cfg.RabbitMQ.Exchange))
	}

	if cfg.JWTToken.JWTSecretKey == "" {
		logger.Warn("JWT secret is not set, authentication will fail")
	}
	tokens := jwt.NewMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	service := userservice.New(logger, repo, password.NewHasher(cfg.Auth.BcryptCost), tokens, events)

	if cfg.Admin.Email != "" {
		if err = ensureAdmin(ctx, service, cfg.Admin); err != nil {
			a.close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Users:          service,
		Tokens:         tokens,
		Limiter:        rate.NewLimiter(rate.Limit(cfg.Auth.RateLimitRPS), cfg.Auth.RateLimitBurst),
		Metrics:        metrics.New(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		DB:             db,
		CheckActive:    cfg.Auth.CheckActive,
	})

	a.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return a, nil
}

func ensureAdmin(ctx context.Context, service *userservice.Service, admin config.Admin) error {
	dob, err := time.Parse(models.DateLayout, admin.DateOfBirth)
	if err != nil {
		return fmt.Errorf("admin date of birth: %w", err)
	}
	if len(admin.Password) < 6 {
		return errors.New("admin password must be at least 6 characters long")
	}
	return service.EnsureAdmin(ctx, userservice.RegisterInput{
		FullName:    admin.FullName,
		DateOfBirth: dob,
		Email:       admin.Email,
		Password:    admin.Password,
	})
}

// Run запускает HTTP-сервер и блокируется до отмены ctx или ошибки сервера.
// После отмены сервер останавливается с таймаутом, ресурсы закрываются.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.amqpCh != nil {
		if err := a.amqpCh.Close(); err != nil {
			a.logger.Warn("failed to close amqp channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close amqp connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis client", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
