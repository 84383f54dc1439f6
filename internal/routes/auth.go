package routes

import (
    "github.com/gofiber/fiber/v2"

    "github.com/Shaanrahman123/driver-tracker/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
    group := r.Group("/auth")
    if rateLimiter != nil {
        group.Post("/login", rateLimiter, h.Login)
    } else {
        group.Post("/login", h.Login)
    }
    group.Post("/logout", h.Logout)
    group.Post("/signup", h.Signup)
}
