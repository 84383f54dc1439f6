package capture

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/Shaanrahman123/driver-tracker/internal/attendance"
	"github.com/Shaanrahman123/driver-tracker/internal/session"
)

func startServer(t *testing.T, handler fiber.Handler) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post(MarkPath, handler)
	go app.Listener(ln)
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func TestHTTPSubmitterSendsSessionAndKey(t *testing.T) {
	type seen struct {
		cookie, key string
		body        markBody
	}
	got := make(chan seen, 1)
	base := startServer(t, func(c *fiber.Ctx) error {
		var s seen
		s.cookie = c.Cookies(session.CookieName)
		s.key = c.Get("Idempotency-Key")
		if err := c.BodyParser(&s.body); err != nil {
			return err
		}
		got <- s
		return c.JSON(fiber.Map{"success": true})
	})

	sub := NewHTTPSubmitter(base+"/", "tok", time.Second)
	err := sub.Submit(context.Background(), Draft{
		ID:        "draft-1",
		Photo:     "data:image/jpeg;base64,AA==",
		Latitude:  12.34,
		Longitude: 56.78,
		Address:   "Depot",
		Type:      attendance.ClockIn,
	})
	require.NoError(t, err)

	s := <-got
	require.Equal(t, "tok", s.cookie)
	require.Equal(t, "draft-1", s.key)
	require.Equal(t, "clock_in", s.body.Type)
	require.Equal(t, 56.78, s.body.Longitude)
	require.Equal(t, "data:image/jpeg;base64,AA==", s.body.Image)
}

func TestHTTPSubmitterReportsServerError(t *testing.T) {
	base := startServer(t, func(c *fiber.Ctx) error {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save attendance"})
	})

	err := NewHTTPSubmitter(base, "tok", time.Second).Submit(context.Background(), Draft{Type: attendance.ClockOut})
	require.ErrorIs(t, err, ErrRejected)
	require.Contains(t, err.Error(), "failed to save attendance")
}
