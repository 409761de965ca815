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

	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/config"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/audit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/backup"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/bed"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/billing"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/discharge"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/doctor"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/employee"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ipd"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/ot"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/patient"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/payment"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/user"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/domain/visit"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/auth"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/db"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/idgen"
	"github.com/sushant8ds/Tiwari-Hospital-Management-sub000/internal/platform/middleware"
)

// chargeTargetChecker resolves billing targets against the visit and
// admission services. Lives here to avoid a circular import between
// billing and ipd.
type chargeTargetChecker struct {
	visits     *visit.Service
	admissions *ipd.Service
}

func (t *chargeTargetChecker) CheckTarget(ctx context.Context, target billing.Target) error {
	if target.VisitID != nil {
		_, err := t.visits.Get(ctx, *target.VisitID)
		return err
	}
	if target.AdmissionID != nil {
		_, err := t.admissions.Get(ctx, *target.AdmissionID)
		return err
	}
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "hms-server",
		Short: "Hospital Management API Server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(backupCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the hospital API server",
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			count, err := db.NewMigrator(pool, dir).Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
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
			if dir == "" {
				dir = cfg.MigrationsDir
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			statuses, err := db.NewMigrator(pool, dir).Status(ctx)
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
	statusCmd.Flags().String("dir", "", "Path to migrations directory (defaults to MIGRATIONS_DIR)")
	cmd.AddCommand(statusCmd)

	return cmd
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Write a full-database JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")

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

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			meta, err := backup.NewService(pool, cfg.BackupDir, logger).Create(ctx, name)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}

			fmt.Printf("Backup written to %s (%d bytes)\n", meta.Path, meta.SizeBytes)
			return nil
		},
	}
	createCmd.Flags().String("name", "", "Backup file name (defaults to a timestamped name)")
	cmd.AddCommand(createCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List existing backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
			backups, err := backup.NewService(nil, cfg.BackupDir, logger).List()
			if err != nil {
				return err
			}

			fmt.Printf("%-50s %-20s %s\n", "NAME", "CREATED AT", "SIZE")
			for _, b := range backups {
				fmt.Printf("%-50s %-20s %d\n", b.Name, b.CreatedAt.Format("2006-01-02 15:04:05"), b.SizeBytes)
			}
			return nil
		},
	}
	cmd.AddCommand(listCmd)

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

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Auth middleware
	var authMW echo.MiddlewareFunc
	if cfg.IsDev() && cfg.AuthSigningKey == "" {
		authMW = auth.DevMiddleware()
	} else {
		authMW = auth.JWTMiddleware([]byte(cfg.AuthSigningKey))
	}
	admin := auth.RequireRole(auth.RoleAdmin)

	// Shared infrastructure
	ids := idgen.New()
	txRunner := db.NewRunner(pool)

	// Audit trail
	auditSvc := audit.NewService(audit.NewRepoPG(pool), ids)
	chargeAuditor := audit.NewChargeAuditor(auditSvc)
	rateAuditor := audit.NewRateAuditor(auditSvc)

	// Registries
	patientSvc := patient.NewService(patient.NewRepoPG(pool), ids)
	doctorSvc := doctor.NewService(doctor.NewRepoPG(pool), ids, rateAuditor, txRunner)
	bedRepo := bed.NewRepoPG(pool)
	bedSvc := bed.NewService(bedRepo, rateAuditor, txRunner)

	// Visits and admissions
	visitSvc := visit.NewService(visit.NewRepoPG(pool), patientSvc, doctorSvc, ids, txRunner)
	ipdSvc := ipd.NewService(ipd.NewRepoPG(pool), bedRepo, patientSvc, visitSvc, ids, txRunner)

	// Billing ledger
	targets := &chargeTargetChecker{visits: visitSvc, admissions: ipdSvc}
	billingSvc := billing.NewService(billing.NewRepoPG(pool), targets, chargeAuditor, ids, txRunner)

	// Payments and discharge
	paymentSvc := payment.NewService(payment.NewRepoPG(pool), patientSvc, visitSvc, ipdSvc, billingSvc, ids)
	dischargeSvc := discharge.NewService(ipdSvc, patientSvc, visitSvc, billingSvc, paymentSvc)

	// Operation theatre
	otSvc := ot.NewService(ot.NewRepoPG(pool), ipdSvc, billingSvc, ids)

	// Staff and payroll
	employeeSvc := employee.NewService(employee.NewRepoPG(pool), ids)

	// Accounts and backups
	userSvc := user.NewService(user.NewRepoPG(pool), ids, []byte(cfg.AuthSigningKey))
	backupSvc := backup.NewService(pool, cfg.BackupDir, logger)

	// Public routes
	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/ready", db.HealthHandler(pool))

	userHandler := user.NewHandler(userSvc, logger)
	public := e.Group("/api/v1")
	userHandler.RegisterPublic(public)

	// Authenticated API
	api := e.Group("/api/v1", authMW)

	patient.NewHandler(patientSvc).RegisterRoutes(api)
	doctor.NewHandler(doctorSvc).RegisterRoutes(api)
	bed.NewHandler(bedSvc).RegisterRoutes(api)
	visit.NewHandler(visitSvc).RegisterRoutes(api)
	employee.NewHandler(employeeSvc).RegisterRoutes(api)
	ipd.NewHandler(ipdSvc, logger).Register(api)
	billing.NewHandler(billingSvc, logger).Register(api, admin)
	payment.NewHandler(paymentSvc, logger).Register(api)
	discharge.NewHandler(dischargeSvc, logger).Register(api)
	ot.NewHandler(otSvc, logger).Register(api)
	audit.NewHandler(auditSvc).Register(api)
	backup.NewHandler(backupSvc).Register(api, admin)
	userHandler.Register(api, admin)

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
