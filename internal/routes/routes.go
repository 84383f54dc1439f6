package routes

import (
    "context"
    "database/sql"
    "fmt"
    "log/slog"
    "time"

    "github.com/gofiber/fiber/v2"
    "github.com/gofiber/fiber/v2/middleware/cors"
    "github.com/gofiber/fiber/v2/middleware/logger"
    "github.com/gofiber/fiber/v2/middleware/recover"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "github.com/Shaanrahman123/driver-tracker/internal/attendance"
    "github.com/Shaanrahman123/driver-tracker/internal/auth"
    "github.com/Shaanrahman123/driver-tracker/internal/config"
    "github.com/Shaanrahman123/driver-tracker/internal/identity"
    "github.com/Shaanrahman123/driver-tracker/internal/logging"
    "github.com/Shaanrahman123/driver-tracker/internal/middleware"
    "github.com/Shaanrahman123/driver-tracker/internal/notification"
    "github.com/Shaanrahman123/driver-tracker/internal/photo"
    "github.com/Shaanrahman123/driver-tracker/internal/session"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
    Cfg    config.Config
    DB     *pgxpool.Pool
    SQL    *sql.DB
    Cache  *redis.Client
    Logger *slog.Logger
    // Clock stamps attendance events; nil means time.Now.
    Clock func() time.Time
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
    // Enforce a durable store and Redis outside of dev, even though main also checks.
    if !d.Cfg.IsDev() {
        if d.DB == nil && d.SQL == nil {
            return fmt.Errorf("a database is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
        if d.Cache == nil {
            return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
        }
    }
    if d.Logger == nil {
        d.Logger = logging.Discard()
    }
    ctx := context.Background()

    // Middlewares
    app.Use(recover.New())
    app.Use(middleware.RequestID())
    // Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
    app.Use(logger.New(logger.Config{
        Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
        TimeFormat: "15:04:05",
        TimeZone:   "Local",
    }))
    if d.Cfg.CORSOrigins != "" {
        app.Use(cors.New(cors.Config{
            AllowOrigins:     d.Cfg.CORSOrigins,
            AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
            AllowHeaders:     "Origin, Content-Type, Accept, Idempotency-Key",
            AllowCredentials: d.Cfg.CORSOrigins != "*",
        }))
    }
    app.Use(middleware.Audit(d.Logger))

    // Health
    RegisterHealthRoutes(app, d)

    // Services and handlers
    sessions, err := session.NewManager(d.Cfg.SessionSecret, d.Cfg.SessionTTL)
    if err != nil {
        return err
    }
    st, err := openStores(ctx, d)
    if err != nil {
        return err
    }
    identitySvc := identity.NewService(st.users)
    if d.Cfg.SeedDefaults {
        if err := identitySvc.SeedDefaults(ctx); err != nil {
            return fmt.Errorf("seed defaults: %w", err)
        }
        d.Logger.Info("default accounts ensured", slog.String("admin", identity.DefaultAdminEmail))
    }

    photos, err := photo.NewStore(d.Cfg.UploadDir, d.Cfg.PhotoMaxWidth)
    if err != nil {
        return err
    }
    ledgerOpts := []attendance.Option{
        attendance.WithLocation(d.Cfg.LedgerTimezone),
        attendance.WithPhotoStore(photos),
        attendance.WithNotifier(notification.NewLoggerNotifier(d.Logger)),
    }
    if d.Clock != nil {
        ledgerOpts = append(ledgerOpts, attendance.WithClock(d.Clock))
    }
    ledger := attendance.NewService(st.events, ownerDirectory{users: identitySvc}, ledgerOpts...)
    authSvc := auth.NewService(identitySvc, sessions)

    authHandler := auth.NewHandler(authSvc, !d.Cfg.IsDev())
    attendanceHandler := attendance.NewHandler(ledger)
    identityHandler := identity.NewHandler(identitySvc)

    // Pages and stored photos sit behind the page guard.
    app.Use(middleware.PageGuard(sessions))
    RegisterPageRoutes(app)
    app.Static("/uploads", photos.Dir())

    // API routes
    api := app.Group("/api", middleware.APIGuard(sessions))
    api.Get("/ping", func(c *fiber.Ctx) error {
        reqID, _ := c.Locals("X-Request-ID").(string)
        return c.Status(fiber.StatusOK).JSON(fiber.Map{
            "status":     "ok",
            "request_id": reqID,
            "timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
        })
    })

    rateLimiter := middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit)
    RegisterAuthRoutes(api, authHandler, rateLimiter)

    idempotent := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
    RegisterAttendanceRoutes(api, ledger, attendanceHandler, idempotent)
    RegisterAdminRoutes(api, ledger, attendanceHandler, identityHandler)

    return nil
}
