package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lozanotech/task-manager-api/internal/config"
	"github.com/lozanotech/task-manager-api/internal/db"
	"github.com/lozanotech/task-manager-api/internal/repository"
	"github.com/lozanotech/task-manager-api/internal/service"
	"github.com/lozanotech/task-manager-api/internal/storage"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	AuthService   *service.AuthService
	UserService   *service.UserService
	TaskService   *service.TaskService
	AvatarService *service.AvatarService
	EmailService  *service.EmailService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	taskRepository := repository.NewTaskRepository(database)

	// Storage
	avatarStorage, err := storage.New(cfg, userRepository)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		userRepository,
		sessionRepository,
		emailService,
		cfg.JWTSecret,
		cfg.JWTExpiry,
		cfg.BcryptCost,
	)
	userService := service.NewUserService(userRepository, taskRepository, authService, emailService)
	taskService := service.NewTaskService(taskRepository)
	avatarService := service.NewAvatarService(avatarStorage)

	return &App{
		Cfg:           cfg,
		DB:            database,
		AuthService:   authService,
		UserService:   userService,
		TaskService:   taskService,
		AvatarService: avatarService,
		EmailService:  emailService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
