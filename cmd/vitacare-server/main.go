package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vitacare/vitacare/internal/config"
	"github.com/vitacare/vitacare/internal/domain/checkup"
	"github.com/vitacare/vitacare/internal/domain/push"
	"github.com/vitacare/vitacare/internal/domain/reminder"
	"github.com/vitacare/vitacare/internal/domain/subject"
	"github.com/vitacare/vitacare/internal/domain/uexam"
	"github.com/vitacare/vitacare/internal/domain/vaccination"
	"github.com/vitacare/vitacare/internal/platform/auth"
	"github.com/vitacare/vitacare/internal/platform/db"
	"github.com/vitacare/vitacare/internal/platform/metrics"
	"github.com/vitacare/vitacare/internal/platform/middleware"
	"github.com/vitacare/vitacare/internal/platform/notification"
	"github.com/vitacare/vitacare/internal/platform/phi"
)

// childResolverAdapter gives the examination service access to child
// attributes without a circular dependency between the subject and uexam
// packages. The subject service is assigned after both services exist.
type childResolverAdapter struct {
	svc *subject.Service
}

func (a *childResolverAdapter) ChildName(ctx context.Context, accountID, childID uuid.UUID) (string, error) {
	return a.svc.ChildName(ctx, accountID, childID)
}

func (a *childResolverAdapter) ChildBirthDate(ctx context.Context, accountID, childID uuid.UUID) (time.Time, error) {
	return a.svc.ChildBirthDate(ctx, accountID, childID)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "vitacare-server",
		Short: "Family preventive care API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(notifyCmd())

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

func notifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send the reminder digest push notification for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			account, _ := cmd.Flags().GetString("account")
			accountID, err := uuid.Parse(account)
			if err != nil {
				return fmt.Errorf("--account must be a valid account id")
			}

			logger := newLogger()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			app, err := buildApp(cfg, pool, logger)
			if err != nil {
				return err
			}

			digest, err := app.reminderSvc.Digest(ctx, accountID, time.Now())
			if err != nil {
				return err
			}
			if digest == "" {
				fmt.Println("Nothing pending, no notification sent.")
				return nil
			}

			if _, err := app.notifications.SendFromTemplate(ctx, "reminder-digest", map[string]string{
				"summary": "Preventive care reminders",
				"message": digest,
			}, accountID.String()); err != nil {
				return err
			}
			fmt.Println("Reminder digest sent.")
			return nil
		},
	}
	cmd.Flags().String("account", "", "Account id to notify")
	return cmd
}

// app bundles the wired services the commands share.
type app struct {
	subjectSvc     *subject.Service
	uexamSvc       *uexam.Service
	checkupSvc     *checkup.Service
	vaccinationSvc *vaccination.Service
	pushSvc        *push.Service
	reminderSvc    *reminder.Service
	notifications  *notification.NotificationManager
}

func buildApp(cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (*app, error) {
	var encryptor *phi.FieldEncryptor
	if cfg.NotesEncryptionKey != "" {
		enc, err := phi.NewFieldEncryptorFromHex(cfg.NotesEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("create notes encryptor: %w", err)
		}
		encryptor = enc
		logger.Info().Msg("notes field-level encryption enabled")
	} else {
		logger.Warn().Msg("NOTES_ENCRYPTION_KEY not set; notes are stored in plaintext")
	}

	profileRepo := subject.NewProfileRepoPG(pool)
	childRepo := subject.NewChildRepoPG(pool)
	examRepo := uexam.NewExaminationRepoPG(pool)
	checkupRepo := checkup.NewCheckupRepoPG(pool)
	vaccRepo := vaccination.NewVaccinationRepoPG(pool)
	subRepo := push.NewSubscriptionRepoPG(pool)

	// The subject and uexam services reference each other: creating a child
	// seeds its examination schedule, and exporting an examination needs the
	// child's name and birth date. The adapter breaks the construction cycle.
	resolver := &childResolverAdapter{}
	uexamSvc := uexam.NewService(examRepo, resolver, encryptor)
	subjectSvc := subject.NewService(profileRepo, childRepo, uexamSvc,
		func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		})
	resolver.svc = subjectSvc

	checkupSvc := checkup.NewService(checkupRepo, subjectSvc, encryptor)
	vaccinationSvc := vaccination.NewService(vaccRepo, encryptor)
	pushSvc := push.NewService(subRepo)
	reminderSvc := reminder.NewService(uexamSvc, checkupSvc, vaccinationSvc, subjectSvc,
		cfg.ReminderHorizon, cfg.ReminderUrgent)

	var pushSender notification.PushSender
	if cfg.VAPIDPrivateKey != "" {
		pushSender = notification.NewWebPushSender(pushSvc, cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject, logger)
		logger.Info().Msg("web push delivery enabled")
	} else {
		pushSender = &notification.MockPushSender{}
		logger.Warn().Msg("VAPID keys not set; push notifications are logged only")
	}
	notifications := notification.NewNotificationManager(
		&notification.MockEmailSender{},
		pushSender,
		notification.NewTemplateEngine(),
	)

	return &app{
		subjectSvc:     subjectSvc,
		uexamSvc:       uexamSvc,
		checkupSvc:     checkupSvc,
		vaccinationSvc: vaccinationSvc,
		pushSvc:        pushSvc,
		reminderSvc:    reminderSvc,
		notifications:  notifications,
	}, nil
}

func newLogger() zerolog.Logger {
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	application, err := buildApp(cfg, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to wire services")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	if cfg.IsDev() {
		e.Use(auth.DevAuthMiddleware())
	} else {
		e.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthDevSigningKey),
		}))
	}

	// Health and metrics endpoints
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rateLimitCfg))

	subject.NewHandler(application.subjectSvc).RegisterRoutes(api)
	uexam.NewHandler(application.uexamSvc).RegisterRoutes(api)
	checkup.NewHandler(application.checkupSvc).RegisterRoutes(api)
	vaccination.NewHandler(application.vaccinationSvc).RegisterRoutes(api)
	reminder.NewHandler(application.reminderSvc).RegisterRoutes(api)
	push.NewHandler(application.pushSvc, cfg.VAPIDPublicKey).RegisterRoutes(api)
	notification.NewNotificationHandler(application.notifications).RegisterRoutes(api)

	// Serve in the background so shutdown can drain in-flight requests.
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info().Msg("server stopped cleanly")
	return nil
}
