package mockapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/simp-lee/consolekit/internal/config"
	"github.com/simp-lee/consolekit/internal/middleware"
	"github.com/simp-lee/consolekit/internal/mockapi/authn"
	"github.com/simp-lee/consolekit/internal/mockapi/employee"
)

const defaultTokenExpiry = 30 * time.Minute

// App holds the mock API's dependencies and HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the SQLite database, repositories, services, handlers,
// middleware, and routes, and seeds the demo dataset in debug mode.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	srvCfg := &cfg.MockAPI

	// 2. Setup database.
	db, err := config.SetupDatabase(&srvCfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. Migrate and seed. The mock API owns its schema, so migration runs
	// in every mode.
	if err := db.AutoMigrate(&employee.Employee{}, &authn.Operator{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := seed(db, &srvCfg.Auth, srvCfg.Server.Mode); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	// 4. Manual dependency injection: repository → service → handler.
	authSvc := authn.NewService(db, srvCfg.Auth.JWTSecret, srvCfg.TokenExpiry(defaultTokenExpiry))
	authHandler := authn.NewHandler(authSvc)

	empRepo := employee.NewRepository(db)
	empSvc := employee.NewService(db, empRepo)
	empHandler := employee.NewHandler(empSvc)

	// 5. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(srvCfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(srvCfg.Server.Mode)
	engine := gin.New()

	corsConfig := resolveCORSConfig(srvCfg.Server.Mode, srvCfg.Server.CORS.AllowOrigins)
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: true,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
	)

	// 6. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules: []Module{
			authn.NewModule(authHandler),
			employee.NewModule(empHandler),
		},
		Auth: authSvc,
		DB:   db,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
	}, nil
}

// seed creates the configured operator account and, in debug mode, the demo
// employee rows.
func seed(db *gorm.DB, auth *config.AuthConfig, mode string) error {
	if auth.Seed.Username != "" {
		if err := authn.EnsureOperator(db,
			auth.Seed.Username,
			auth.Seed.Password,
			auth.Seed.Name,
			auth.Seed.Email,
			auth.Seed.Role,
			auth.Seed.LocationID,
		); err != nil {
			return fmt.Errorf("ensure operator: %w", err)
		}
	}
	if mode == gin.DebugMode {
		if err := employee.Seed(db); err != nil {
			return fmt.Errorf("seed employees: %w", err)
		}
	}
	return nil
}

func resolveCORSConfig(mode string, configuredAllowOrigins []string) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(configuredAllowOrigins) > 0 {
		corsConfig.AllowOrigins = configuredAllowOrigins
		return corsConfig
	}

	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid mockapi.server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Engine exposes the router, mainly for tests driving it with httptest.
func (a *App) Engine() *gin.Engine {
	return a.engine
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the
// database connection.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.MockAPI.Server.Host, a.cfg.MockAPI.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("mock api started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logger.Error("database close error", slog.Any("error", err))
			} else {
				a.logger.Info("database connection closed")
			}
		}
	}

	a.logger.Info("mock api stopped")
	if err := a.logger.Close(); err != nil {
		slog.Error("logger close error", slog.Any("error", err))
	}

	if runErr != nil {
		return runErr
	}
	return nil
}
