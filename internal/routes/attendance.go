package routes

import (
    "net/http"
    "strconv"
    "time"

    "github.com/gofiber/fiber/v2"

    "github.com/Shaanrahman123/driver-tracker/internal/aggregate"
    "github.com/Shaanrahman123/driver-tracker/internal/attendance"
    "github.com/Shaanrahman123/driver-tracker/internal/middleware"
)

type dayView struct {
    Date     string            `json:"date"`
    ClockIn  *attendance.Event `json:"clock_in"`
    ClockOut *attendance.Event `json:"clock_out"`
    Verified bool              `json:"verified"`
}

// RegisterAttendanceRoutes wires the driver's own attendance endpoints.
func RegisterAttendanceRoutes(r fiber.Router, ledger *attendance.Service, h *attendance.Handler, idempotent fiber.Handler) {
    group := r.Group("/attendance")
    group.Post("/mark", idempotent, h.Mark)

    // Logs, optionally narrowed to a month and a type.
    group.Get("/logs", func(c *fiber.Ctx) error {
        sess, ok := middleware.SessionFrom(c)
        if !ok {
            return fiber.NewError(http.StatusUnauthorized, "unauthorized")
        }
        typ, err := typeFilter(c.Query("type"))
        if err != nil {
            return err
        }
        events, err := ledger.ListForUser(c.UserContext(), sess.UserID)
        if err != nil {
            return fiber.NewError(http.StatusInternalServerError, "failed to fetch logs")
        }
        if c.Query("year") != "" || c.Query("month") != "" {
            year, month, err := monthQuery(c, ledger.Now())
            if err != nil {
                return err
            }
            events = aggregate.FilterByMonth(events, year, month, ledger.Location())
        }
        events = aggregate.FilterByType(events, typ)
        if events == nil {
            events = []attendance.Event{}
        }
        return c.Status(http.StatusOK).JSON(events)
    })

    // Clock-in/clock-out pairs per day for one month.
    group.Get("/summary", func(c *fiber.Ctx) error {
        sess, ok := middleware.SessionFrom(c)
        if !ok {
            return fiber.NewError(http.StatusUnauthorized, "unauthorized")
        }
        year, month, err := monthQuery(c, ledger.Now())
        if err != nil {
            return err
        }
        events, err := ledger.ListForUser(c.UserContext(), sess.UserID)
        if err != nil {
            return fiber.NewError(http.StatusInternalServerError, "failed to fetch logs")
        }
        days := aggregate.GroupAttendanceByDate(aggregate.FilterByMonth(events, year, month, ledger.Location()))
        out := make([]dayView, 0, len(days))
        for _, d := range days {
            out = append(out, dayView{Date: d.Date, ClockIn: d.ClockIn, ClockOut: d.ClockOut, Verified: d.Verified()})
        }
        return c.Status(http.StatusOK).JSON(fiber.Map{
            "year":  year,
            "month": int(month),
            "days":  out,
        })
    })
}

func typeFilter(raw string) (string, error) {
    if raw == "" || raw == aggregate.TypeAll {
        return aggregate.TypeAll, nil
    }
    typ, err := attendance.ParseEventType(raw)
    if err != nil {
        return "", fiber.NewError(http.StatusBadRequest, err.Error())
    }
    return string(typ), nil
}

// monthQuery reads ?year=&month=, defaulting each to the current one.
func monthQuery(c *fiber.Ctx, now time.Time) (int, time.Month, error) {
    year, month := now.Year(), now.Month()
    if raw := c.Query("year"); raw != "" {
        y, err := strconv.Atoi(raw)
        if err != nil || y < 1970 || y > 9999 {
            return 0, 0, fiber.NewError(http.StatusBadRequest, "invalid year")
        }
        year = y
    }
    if raw := c.Query("month"); raw != "" {
        m, err := strconv.Atoi(raw)
        if err != nil || m < 1 || m > 12 {
            return 0, 0, fiber.NewError(http.StatusBadRequest, "invalid month")
        }
        month = time.Month(m)
    }
    return year, month, nil
}
