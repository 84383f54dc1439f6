package server

import (
    "context"
    "time"

    "github.com/gofiber/fiber/v2"

    "github.com/Shaanrahman123/driver-tracker/internal/middleware"
    "github.com/Shaanrahman123/driver-tracker/internal/routes"
)

// bodyLimit leaves room for a base64 camera frame in /attendance/mark.
const bodyLimit = 12 * 1024 * 1024

// Server wraps the Fiber application and shared dependencies.
type Server struct {
    app  *fiber.App
    deps routes.Deps
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(d routes.Deps) (*Server, error) {
    app := NewApp(d)
    if err := routes.Setup(app, d); err != nil {
        return nil, err
    }
    return &Server{app: app, deps: d}, nil
}

// NewApp builds the bare Fiber application with the shared error handler.
func NewApp(d routes.Deps) *fiber.App {
    return fiber.New(fiber.Config{
        AppName:               d.Cfg.AppName,
        ReadTimeout:           30 * time.Second,
        WriteTimeout:          30 * time.Second,
        BodyLimit:             bodyLimit,
        CaseSensitive:         true,
        DisableStartupMessage: !d.Cfg.IsDev(),
        ErrorHandler:          middleware.ErrorHandler(d.Logger),
    })
}

// App exposes the Fiber application, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen starts the HTTP server.
func (s *Server) Listen() error {
    return s.app.Listen(s.deps.Cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
    return s.app.ShutdownWithContext(ctx)
}
