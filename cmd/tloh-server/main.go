package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Wendpat-byte/banfora/internal/config"
	"github.com/Wendpat-byte/banfora/internal/domain/indicator"
	"github.com/Wendpat-byte/banfora/internal/domain/report"
	"github.com/Wendpat-byte/banfora/internal/domain/user"
	"github.com/Wendpat-byte/banfora/internal/platform/auth"
	"github.com/Wendpat-byte/banfora/internal/platform/db"
	"github.com/Wendpat-byte/banfora/internal/platform/middleware"
)

func main() {
	root := &cobra.Command{
		Use:   "tloh-server",
		Short: "TLOH epidemiological surveillance bulletin server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	root.AddCommand(serveCmd(), migrateCmd(), userCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info().Msg("database connected")

	// Services
	indicatorSvc := indicator.NewService(indicator.NewRepoPG(pool))
	reportSvc := report.NewService(report.NewRepoPG(pool), report.NewValidator(cfg.Services))
	userSvc := user.NewService(user.NewRepoPG(pool))
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, middleware.RequestIDHeader},
	}))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	api := e.Group("/api/v1")
	if cfg.IsDev() && cfg.JWTSecret == "" {
		logger.Warn().Msg("JWT_SECRET not set, running with development auth")
		api.Use(auth.DevMiddleware())
	} else {
		api.Use(auth.Middleware(issuer, "/api/v1/login"))
	}

	user.NewHandler(userSvc, issuer).RegisterRoutes(api)
	indicator.NewHandler(indicatorSvc).RegisterRoutes(api)
	report.NewHandler(reportSvc).RegisterRoutes(api)

	// Serve in the background so shutdown signals can be handled here.
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-quit:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
				count, err := m.Up(ctx)
				if err != nil {
					return err
				}
				logger.Info().Int("applied", count).Msg("migrations complete")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(ctx context.Context, m *db.Migrator, logger zerolog.Logger) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				for _, s := range statuses {
					state := "pending"
					if s.Applied {
						state = "applied " + s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Printf("%03d %-40s %s\n", s.Version, s.Name, state)
				}
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(context.Context, *db.Migrator, zerolog.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, db.NewMigrator(pool, cfg.MigrationsDir), logger)
}

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	var lastName, firstName, identifier, password, role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := newLogger(cfg)

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			svc := user.NewService(user.NewRepoPG(pool))
			u, err := svc.CreateUser(ctx, lastName, firstName, identifier, password, role)
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			logger.Info().
				Str("id", u.ID.String()).
				Str("identifier", u.Identifier).
				Str("role", u.Role).
				Msg("user created")
			return nil
		},
	}
	create.Flags().StringVar(&lastName, "last-name", "", "last name")
	create.Flags().StringVar(&firstName, "first-name", "", "first name")
	create.Flags().StringVar(&identifier, "identifier", "", "login identifier")
	create.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	create.Flags().StringVar(&role, "role", auth.RoleUser, "role: administrator or user")
	create.MarkFlagRequired("last-name")
	create.MarkFlagRequired("first-name")
	create.MarkFlagRequired("identifier")
	create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
