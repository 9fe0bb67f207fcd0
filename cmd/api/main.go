package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog-api/docs"
	"github.com/redmonkez12/go-blog-api/internal/auth"
	"github.com/redmonkez12/go-blog-api/internal/category"
	"github.com/redmonkez12/go-blog-api/internal/config"
	"github.com/redmonkez12/go-blog-api/internal/database"
	httpServer "github.com/redmonkez12/go-blog-api/internal/http"
	"github.com/redmonkez12/go-blog-api/internal/logging"
	"github.com/redmonkez12/go-blog-api/internal/password"
	"github.com/redmonkez12/go-blog-api/internal/post"
	"github.com/redmonkez12/go-blog-api/internal/ratelimit"
	"github.com/redmonkez12/go-blog-api/internal/tag"
	"github.com/redmonkez12/go-blog-api/internal/user"
)

// @title           Go Blog API
// @version         1.0
// @description     Blog backend with bearer-token authentication and CRUD over posts, categories and tags.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"base_path", cfg.Server.BasePath,
		"token_format", cfg.Auth.TokenFormat,
	)

	// Initialize database connection
	db, err := initDB(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// Initialize rate limiter; Redis is only needed when limiting is on
	var rateLimiter auth.RateLimiter = ratelimit.Noop{}
	if cfg.RateLimit.Enabled {
		redisClient, err := initRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()

		rateLimiter = ratelimit.NewLimiter(redisClient, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	} else {
		logger.Warn("rate limiting disabled")
	}

	// Initialize repositories
	userRepo := user.NewRepository(db)
	categoryRepo := category.NewRepository(db)
	tagRepo := tag.NewRepository(db)
	postRepo := post.NewRepository(db)

	hasher, err := password.NewHasher(cfg.Auth.PasswordAlgorithm, cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to initialize password hasher: %w", err)
	}

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	// Initialize services
	authService, err := auth.NewService(userRepo, hasher, tokenService, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize auth service: %w", err)
	}
	postService := post.NewService(postRepo, categoryRepo, tagRepo)

	if err := bootstrapUser(context.Background(), cfg.Bootstrap, authService, logger); err != nil {
		return err
	}

	policy, err := auth.NewPolicy(auth.DefaultRules(cfg.Server.BasePath))
	if err != nil {
		return fmt.Errorf("failed to build authorization policy: %w", err)
	}

	// Initialize HTTP handlers
	handlers := httpServer.Handlers{
		Auth:       auth.NewHandler(authService, rateLimiter),
		Categories: category.NewHandler(categoryRepo),
		Tags:       tag.NewHandler(tagRepo),
		Posts:      post.NewHandler(postService),
	}

	docs.SwaggerInfo.BasePath = cfg.Server.BasePath
	router := httpServer.NewRouter(cfg, handlers, auth.NewMiddleware(authService), policy, logger)

	// Initialize HTTP server
	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB opens the Postgres pool, applies migrations when enabled and
// returns a Bun DB instance
func initDB(cfg config.DatabaseConfig, logger *logging.Logger) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)

	if cfg.AutoMigrate {
		if err := database.Migrate(sqlDB); err != nil {
			sqlDB.Close()
			return nil, err
		}
		logger.Info("database migrations applied")
	}

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	if cfg.TokenFormat == config.TokenFormatPaseto {
		return auth.NewPasetoService(cfg.PasetoKey, cfg.TokenDuration)
	}
	return auth.NewJWTService(cfg.JWTSecret, cfg.TokenDuration)
}

// bootstrapUser ensures the configured start-up account exists. A generated
// password is logged once, when the account is created with it.
func bootstrapUser(ctx context.Context, cfg config.BootstrapConfig, authService *auth.Service, logger *logging.Logger) error {
	created, err := authService.EnsureUser(ctx, cfg.Name, cfg.Email, cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to ensure bootstrap user: %w", err)
	}

	switch {
	case created && cfg.PasswordGenerated:
		logger.Warn("bootstrap user created with generated password", "email", cfg.Email, "password", cfg.Password)
	case created:
		logger.Info("bootstrap user created", "email", cfg.Email)
	}
	return nil
}
