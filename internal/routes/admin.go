package routes

import (
    "net/http"
    "time"

    "github.com/gofiber/fiber/v2"

    "github.com/Shaanrahman123/driver-tracker/internal/aggregate"
    "github.com/Shaanrahman123/driver-tracker/internal/attendance"
    "github.com/Shaanrahman123/driver-tracker/internal/identity"
)

// RegisterAdminRoutes wires the administrator endpoints. The API guard has
// already restricted this group to admin sessions.
func RegisterAdminRoutes(r fiber.Router, ledger *attendance.Service, h *attendance.Handler, users *identity.Handler) {
    group := r.Group("/admin")

    group.Get("/logs", func(c *fiber.Ctx) error {
        typ, err := typeFilter(c.Query("type"))
        if err != nil {
            return err
        }
        events, err := ledger.ListAll(c.UserContext())
        if err != nil {
            return fiber.NewError(http.StatusInternalServerError, "failed to fetch logs")
        }
        if date := c.Query("date"); date != "" {
            if _, err := time.Parse(attendance.DateLayout, date); err != nil {
                return fiber.NewError(http.StatusBadRequest, "date must be YYYY-MM-DD")
            }
            events = aggregate.FilterByDate(events, date)
        }
        events = aggregate.SearchOwned(aggregate.FilterByType(events, typ), c.Query("q"))
        if events == nil {
            events = []attendance.OwnedEvent{}
        }
        return c.Status(http.StatusOK).JSON(events)
    })

    group.Get("/stats", func(c *fiber.Ctx) error {
        date := c.Query("date", ledger.Now().Format(attendance.DateLayout))
        if _, err := time.Parse(attendance.DateLayout, date); err != nil {
            return fiber.NewError(http.StatusBadRequest, "date must be YYYY-MM-DD")
        }
        events, err := ledger.ListAll(c.UserContext())
        if err != nil {
            return fiber.NewError(http.StatusInternalServerError, "failed to fetch logs")
        }
        stats := aggregate.ComputeDailyStats(events, date)
        return c.Status(http.StatusOK).JSON(fiber.Map{
            "date":     date,
            "total":    stats.Total,
            "pending":  stats.Pending,
            "verified": stats.Verified,
        })
    })

    group.Post("/verify", h.Verify)

    group.Get("/users", users.List)
    group.Post("/users", users.Create)
    group.Patch("/users", users.Update)
    group.Delete("/users", users.Delete)
}
