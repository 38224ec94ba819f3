package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ecosnap/ecosnap/internal/config"
	"github.com/ecosnap/ecosnap/internal/content"
	"github.com/ecosnap/ecosnap/internal/db"
	"github.com/ecosnap/ecosnap/internal/imagehost"
	"github.com/ecosnap/ecosnap/internal/mailer"
	"github.com/ecosnap/ecosnap/internal/middleware"
	"github.com/ecosnap/ecosnap/internal/repository"
	"github.com/ecosnap/ecosnap/internal/service"
	"github.com/ecosnap/ecosnap/internal/vision"
)

type App struct {
	Cfg                   *config.Config
	DB                    *sqlx.DB
	AuthService           *service.AuthService
	UserService           *service.UserService
	ClassificationService *service.ClassificationService
	PromptService         *service.PromptService

	// TrustedProxies may set X-Forwarded-For; the zero value trusts none.
	TrustedProxies middleware.TrustedProxies

	// Done is closed by Close and stops background work such as rate limiter cleanup.
	Done chan struct{}
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	proxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		database.Close()
		return nil, err
	}

	// Outbound integrations
	mail, err := mailer.New(cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	host, err := imagehost.New(ctx, cfg)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize image host: %w", err)
	}
	classifier := vision.New(cfg)

	defaults, err := content.DefaultPrompts()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load default prompts: %w", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	classificationRepository := repository.NewClassificationRepository(database)
	promptRepository := repository.NewPromptRepository(database)

	// Services
	authService := service.NewAuthService(
		userRepository,
		mail,
		cfg.AppName,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.VerificationCodeExpiry,
		cfg.PasswordResetCodeExpiry,
	)
	userService := service.NewUserService(userRepository)
	classificationService := service.NewClassificationService(classificationRepository, host, classifier)
	promptService := service.NewPromptService(promptRepository, defaults)

	return &App{
		Cfg:                   cfg,
		DB:                    database,
		AuthService:           authService,
		UserService:           userService,
		ClassificationService: classificationService,
		PromptService:         promptService,
		TrustedProxies:        proxies,
		Done:                  make(chan struct{}),
	}, nil
}

func (a *App) Close() error {
	if a.Done != nil {
		select {
		case <-a.Done:
		default:
			close(a.Done)
		}
	}
	return db.Close(a.DB)
}
