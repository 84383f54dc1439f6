package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/Shaanrahman123/driver-tracker/internal/session"
)

func newGuardedApp(t *testing.T) (*fiber.App, *session.Manager) {
	t.Helper()
	mgr, err := session.NewManager("guard-test-secret-guard-test-secret", time.Hour)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(PageGuard(mgr))
	ok := func(c *fiber.Ctx) error {
		sess, _ := SessionFrom(c)
		return c.JSON(fiber.Map{"user_id": sess.UserID})
	}
	app.Get("/", ok)
	app.Get("/login", ok)
	app.Get("/dashboard", ok)
	app.Get("/admin", ok)
	app.Get("/admin/users", ok)

	api := app.Group("/api", APIGuard(mgr))
	api.Get("/attendance/logs", ok)
	api.Get("/admin/logs", ok)
	api.Post("/auth/login", ok)
	return app, mgr
}

func cookieFor(t *testing.T, mgr *session.Manager, id int64, role string) *http.Cookie {
	t.Helper()
	token, _, err := mgr.Issue(session.Subject{ID: id, Name: "n", Role: role})
	require.NoError(t, err)
	return &http.Cookie{Name: session.CookieName, Value: token}
}

func do(t *testing.T, app *fiber.App, method, path string, cookie *http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestPageGuardRedirects(t *testing.T) {
	app, mgr := newGuardedApp(t)
	driver := cookieFor(t, mgr, 2, session.RoleDriver)
	admin := cookieFor(t, mgr, 1, session.RoleAdmin)

	cases := []struct {
		path     string
		cookie   *http.Cookie
		status   int
		location string
	}{
		{"/admin/users", nil, http.StatusFound, "/login"},
		{"/dashboard", nil, http.StatusFound, "/login"},
		{"/admin", driver, http.StatusFound, "/dashboard"},
		{"/login", driver, http.StatusFound, "/dashboard"},
		{"/login", admin, http.StatusFound, "/admin"},
		{"/login", nil, http.StatusOK, ""},
		{"/", nil, http.StatusOK, ""},
		{"/dashboard", driver, http.StatusOK, ""},
		{"/admin", admin, http.StatusOK, ""},
	}
	for _, tc := range cases {
		resp := do(t, app, http.MethodGet, tc.path, tc.cookie)
		require.Equal(t, tc.status, resp.StatusCode, tc.path)
		require.Equal(t, tc.location, resp.Header.Get("Location"), tc.path)
	}
}

func TestPageGuardTreatsBadCookieAsAnonymous(t *testing.T) {
	app, _ := newGuardedApp(t)
	resp := do(t, app, http.MethodGet, "/login", &http.Cookie{Name: session.CookieName, Value: "garbage"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, app, http.MethodGet, "/dashboard", &http.Cookie{Name: session.CookieName, Value: "garbage"})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestAPIGuardStatuses(t *testing.T) {
	app, mgr := newGuardedApp(t)
	driver := cookieFor(t, mgr, 2, session.RoleDriver)
	admin := cookieFor(t, mgr, 1, session.RoleAdmin)

	require.Equal(t, http.StatusUnauthorized, do(t, app, http.MethodGet, "/api/attendance/logs", nil).StatusCode)
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/attendance/logs", driver).StatusCode)
	require.Equal(t, http.StatusForbidden, do(t, app, http.MethodGet, "/api/admin/logs", driver).StatusCode)
	require.Equal(t, http.StatusOK, do(t, app, http.MethodGet, "/api/admin/logs", admin).StatusCode)
	require.Equal(t, http.StatusOK, do(t, app, http.MethodPost, "/api/auth/login", driver).StatusCode)
}
