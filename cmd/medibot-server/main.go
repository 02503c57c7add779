package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/medibot/medibot/internal/config"
	"github.com/medibot/medibot/internal/domain/account"
	"github.com/medibot/medibot/internal/domain/audit"
	"github.com/medibot/medibot/internal/domain/inventory"
	"github.com/medibot/medibot/internal/domain/locator"
	"github.com/medibot/medibot/internal/domain/patient"
	"github.com/medibot/medibot/internal/domain/pharmacy"
	"github.com/medibot/medibot/internal/domain/reporting"
	"github.com/medibot/medibot/internal/domain/sales"
	"github.com/medibot/medibot/internal/platform/auth"
	"github.com/medibot/medibot/internal/platform/db"
	"github.com/medibot/medibot/internal/platform/geo"
	"github.com/medibot/medibot/internal/platform/middleware"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medibot-server",
		Short: "Pharmacy network API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the initial super admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" || password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			if len(password) < auth.MinPasswordLength {
				return fmt.Errorf("password must be at least %d characters", auth.MinPasswordLength)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			users := account.NewUserRepoPG(pool)
			if existing, err := users.GetByEmail(ctx, strings.ToLower(email)); err == nil && existing != nil {
				return fmt.Errorf("account %s already exists", email)
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			user := &account.User{
				Email:        strings.ToLower(email),
				PasswordHash: hash,
				Role:         auth.RoleSuperAdmin.String(),
				Active:       true,
			}
			if err := users.Create(ctx, user); err != nil {
				return err
			}
			profiles := account.NewProfileRepoPG(pool)
			if err := profiles.Create(ctx, &account.Profile{UserID: user.ID, FullName: "Administrator"}); err != nil {
				return err
			}

			fmt.Printf("Super admin %s created (%s).\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Super admin email")
	cmd.Flags().String("password", "", "Super admin password")
	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Tokens and revocation
	tokens := auth.NewTokenIssuer([]byte(cfg.AuthSigningKey), "medibot",
		time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	revoked := auth.NewTokenRevocationStore()
	defer revoked.Close()

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	if cfg.IsDev() {
		e.Use(auth.DevMiddleware(tokens, revoked, auth.DefaultSkipper))
	} else {
		e.Use(auth.Middleware(tokens, revoked, auth.DefaultSkipper))
	}

	// Audit trail: mutations under /api/v1 land in the audit_log table.
	auditSvc := audit.NewService(audit.NewEntryRepoPG(pool))
	e.Use(middleware.Audit(logger, auditSvc))

	// API group with rate limiting
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Repositories
	users := account.NewUserRepoPG(pool)
	profiles := account.NewProfileRepoPG(pool)
	pharmacies := pharmacy.NewPharmacyRepoPG(pool)
	staff := pharmacy.NewStaffRepoPG(pool)
	medicines := inventory.NewMedicineRepoPG(pool)
	salesRepo := sales.NewSaleRepoPG(pool)

	// Services and routes
	accountSvc := account.NewService(pool, users, profiles, tokens, revoked)
	account.NewHandler(accountSvc).RegisterRoutes(apiV1)

	pharmacySvc := pharmacy.NewService(pharmacies, staff)
	pharmacy.NewHandler(pharmacySvc).RegisterRoutes(apiV1)

	inventorySvc := inventory.NewService(medicines, pharmacies)
	inventory.NewHandler(inventorySvc).RegisterRoutes(apiV1)

	salesSvc := sales.NewService(pool, salesRepo, medicines, pharmacies)
	sales.NewHandler(salesSvc).RegisterRoutes(apiV1)

	patientSvc := patient.NewService(pool,
		patient.NewMedicalProfileRepoPG(pool),
		patient.NewVitalRepoPG(pool),
		patient.NewAppointmentRepoPG(pool),
		patient.NewContactRepoPG(pool),
		patient.NewPrescriptionRepoPG(pool))
	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)

	locatorSvc := locator.NewService(locator.NewStockRepoPG(pool),
		geo.Point{Latitude: cfg.DefaultLatitude, Longitude: cfg.DefaultLongitude},
		cfg.LocatorMaxRadius)
	locator.NewHandler(locatorSvc).RegisterRoutes(apiV1)

	reportingSvc := reporting.NewService(reporting.NewReportRepoPG(pool), pharmacies)
	reporting.NewHandler(reportingSvc, salesSvc).RegisterRoutes(apiV1)

	audit.NewHandler(auditSvc).RegisterRoutes(apiV1)

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
