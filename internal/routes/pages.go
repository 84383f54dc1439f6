package routes

import (
    "net/http"

    "github.com/gofiber/fiber/v2"

    "github.com/Shaanrahman123/driver-tracker/internal/middleware"
)

var pages = map[string]string{
    "/":                "landing",
    "/login":           "login",
    "/signup":          "signup",
    "/forgot-password": "forgot-password",
    "/dashboard":       "driver-dashboard",
    "/dashboard/logs":  "driver-logs",
    "/admin":           "admin-dashboard",
    "/admin/teams":     "admin-teams",
    "/admin/users":     "admin-teams",
    "/admin/settings":  "admin-settings",
}

// RegisterPageRoutes serves the view model of each page. Markup is rendered
// by the client.
func RegisterPageRoutes(app *fiber.App) {
    for path, name := range pages {
        app.Get(path, func(c *fiber.Ctx) error {
            view := fiber.Map{"page": name}
            if sess, ok := middleware.SessionFrom(c); ok {
                view["user"] = fiber.Map{
                    "id":    sess.UserID,
                    "name":  sess.Name,
                    "email": sess.Email,
                    "role":  sess.Role,
                }
            }
            return c.Status(http.StatusOK).JSON(view)
        })
    }
}
