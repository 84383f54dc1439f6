package routes

import (
    "bytes"
    "encoding/base64"
    "encoding/json"
    "fmt"
    "image/color"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/disintegration/imaging"
    "github.com/gofiber/fiber/v2"
    "github.com/stretchr/testify/require"

    "github.com/Shaanrahman123/driver-tracker/internal/config"
    "github.com/Shaanrahman123/driver-tracker/internal/logging"
    "github.com/Shaanrahman123/driver-tracker/internal/middleware"
    "github.com/Shaanrahman123/driver-tracker/internal/session"
)

const markedAt = 1700000000000

func newTestApp(t *testing.T) *fiber.App {
    t.Helper()
    return newTestAppWith(t, false)
}

func newTestAppWith(t *testing.T, caseSensitive bool) *fiber.App {
    t.Helper()
    cfg := config.Config{
        AppName:        "DriverTracker",
        AppEnv:         "test",
        SessionSecret:  "routes-test-secret",
        SessionTTL:     time.Hour,
        IdempotencyTTL: time.Minute,
        UploadDir:      t.TempDir(),
        PhotoMaxWidth:  640,
        LoginRateLimit: 5,
        LedgerTimezone: time.UTC,
        SeedDefaults:   true,
    }
    logger := logging.Discard()
    app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger), CaseSensitive: caseSensitive})
    clock := func() time.Time { return time.UnixMilli(markedAt) }
    require.NoError(t, Setup(app, Deps{Cfg: cfg, Logger: logger, Clock: clock}))
    return app
}

func photoDataURL(t *testing.T) string {
    t.Helper()
    var buf bytes.Buffer
    require.NoError(t, imaging.Encode(&buf, imaging.New(32, 24, color.NRGBA{G: 255, A: 255}), imaging.JPEG))
    return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func call(t *testing.T, app *fiber.App, method, path string, body any, cookie *http.Cookie) *http.Response {
    t.Helper()
    var reader io.Reader
    if body != nil {
        raw, err := json.Marshal(body)
        require.NoError(t, err)
        reader = bytes.NewReader(raw)
    }
    req := httptest.NewRequest(method, path, reader)
    if body != nil {
        req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
    }
    if cookie != nil {
        req.AddCookie(cookie)
    }
    resp, err := app.Test(req, -1)
    require.NoError(t, err)
    return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
    t.Helper()
    defer resp.Body.Close()
    require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func login(t *testing.T, app *fiber.App, body any, wantRole string) *http.Cookie {
    t.Helper()
    resp := call(t, app, http.MethodPost, "/api/auth/login", body, nil)
    require.Equal(t, http.StatusOK, resp.StatusCode)
    var out struct {
        Role string `json:"role"`
    }
    var cookie *http.Cookie
    for _, c := range resp.Cookies() {
        if c.Name == session.CookieName {
            cookie = c
        }
    }
    decode(t, resp, &out)
    require.Equal(t, wantRole, out.Role)
    require.NotNil(t, cookie)
    return &http.Cookie{Name: cookie.Name, Value: cookie.Value}
}

type logEntry struct {
    ID        int64   `json:"id"`
    Type      string  `json:"type"`
    Verified  bool    `json:"verified"`
    Timestamp int64   `json:"timestamp"`
    Date      string  `json:"date"`
    Latitude  float64 `json:"latitude"`
    Longitude float64 `json:"longitude"`
    Photo     string  `json:"photo"`
    UserName  string  `json:"user_name"`
    Contact   string  `json:"user_contact"`
}

func TestDriverMarksAndAdminVerifies(t *testing.T) {
    app := newTestApp(t)

    driver := login(t, app, map[string]string{"phone": "9801540172"}, session.RoleDriver)

    resp := call(t, app, http.MethodPost, "/api/attendance/mark", map[string]any{
        "latitude":  12.34,
        "longitude": 56.78,
        "address":   "Latitude: 12.3400, Longitude: 56.7800",
        "image":     photoDataURL(t),
        "type":      "clock_in",
    }, driver)
    require.Equal(t, http.StatusOK, resp.StatusCode)
    var marked struct {
        Success bool `json:"success"`
    }
    decode(t, resp, &marked)
    require.True(t, marked.Success)

    var logs []logEntry
    decode(t, call(t, app, http.MethodGet, "/api/attendance/logs", nil, driver), &logs)
    require.Len(t, logs, 1)
    ev := logs[0]
    require.Equal(t, "clock_in", ev.Type)
    require.False(t, ev.Verified)
    require.Equal(t, int64(markedAt), ev.Timestamp)
    require.Equal(t, "2023-11-14", ev.Date)
    require.Equal(t, 12.34, ev.Latitude)
    require.Equal(t, 56.78, ev.Longitude)
    require.Equal(t, fmt.Sprintf("/uploads/%d_%d.jpg", markedAt, 2), ev.Photo)

    photoResp := call(t, app, http.MethodGet, ev.Photo, nil, driver)
    require.Equal(t, http.StatusOK, photoResp.StatusCode)
    anon := call(t, app, http.MethodGet, ev.Photo, nil, nil)
    require.Equal(t, http.StatusFound, anon.StatusCode)
    require.Equal(t, "/login", anon.Header.Get("Location"))

    require.Equal(t, http.StatusForbidden, call(t, app, http.MethodPost, "/api/admin/verify", map[string]any{"id": ev.ID, "verified": true}, driver).StatusCode)

    admin := login(t, app, map[string]string{"email": "admin@example.com", "password": "admin123"}, session.RoleAdmin)
    resp = call(t, app, http.MethodPost, "/api/admin/verify", map[string]any{"id": ev.ID, "verified": true}, admin)
    require.Equal(t, http.StatusOK, resp.StatusCode)

    var all []logEntry
    decode(t, call(t, app, http.MethodGet, "/api/admin/logs", nil, admin), &all)
    require.Len(t, all, 1)
    require.Equal(t, ev.ID, all[0].ID)
    require.True(t, all[0].Verified)
    require.Equal(t, "Shaan Rahman", all[0].UserName)
    require.Equal(t, "driver@example.com", all[0].Contact)

    var stats map[string]any
    decode(t, call(t, app, http.MethodGet, "/api/admin/stats?date=2023-11-14", nil, admin), &stats)
    require.EqualValues(t, 1, stats["total"])
    require.EqualValues(t, 1, stats["verified"])
    require.EqualValues(t, 0, stats["pending"])

    var summary struct {
        Days []struct {
            Date     string    `json:"date"`
            ClockIn  *logEntry `json:"clock_in"`
            ClockOut *logEntry `json:"clock_out"`
            Verified bool      `json:"verified"`
        } `json:"days"`
    }
    decode(t, call(t, app, http.MethodGet, "/api/attendance/summary?year=2023&month=11", nil, driver), &summary)
    require.Len(t, summary.Days, 1)
    require.NotNil(t, summary.Days[0].ClockIn)
    require.Nil(t, summary.Days[0].ClockOut)
    require.True(t, summary.Days[0].Verified)

    var october []logEntry
    decode(t, call(t, app, http.MethodGet, "/api/attendance/logs?year=2023&month=10", nil, driver), &october)
    require.Empty(t, october)
}

func TestGuardRedirectScenarios(t *testing.T) {
    app := newTestApp(t)

    resp := call(t, app, http.MethodGet, "/admin/users", nil, nil)
    require.Equal(t, http.StatusFound, resp.StatusCode)
    require.Equal(t, "/login", resp.Header.Get("Location"))

    driver := login(t, app, map[string]string{"phone": "9801540172"}, session.RoleDriver)
    resp = call(t, app, http.MethodGet, "/admin", nil, driver)
    require.Equal(t, http.StatusFound, resp.StatusCode)
    require.Equal(t, "/dashboard", resp.Header.Get("Location"))

    resp = call(t, app, http.MethodGet, "/login", nil, driver)
    require.Equal(t, http.StatusFound, resp.StatusCode)
    require.Equal(t, "/dashboard", resp.Header.Get("Location"))

    require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/dashboard", nil, driver).StatusCode)
    require.Equal(t, http.StatusUnauthorized, call(t, app, http.MethodGet, "/api/attendance/logs", nil, nil).StatusCode)
}

func TestGuardIgnoresPathCase(t *testing.T) {
    for _, caseSensitive := range []bool{false, true} {
        t.Run(fmt.Sprintf("case_sensitive=%v", caseSensitive), func(t *testing.T) {
            app := newTestAppWith(t, caseSensitive)

            driver := login(t, app, map[string]string{"phone": "9801540172"}, session.RoleDriver)
            resp := call(t, app, http.MethodPost, "/api/attendance/mark", map[string]any{
                "latitude": 1.0, "longitude": 2.0, "image": photoDataURL(t), "type": "clock_in",
            }, driver)
            require.Equal(t, http.StatusOK, resp.StatusCode)
            photoPath := fmt.Sprintf("/UPLOADS/%d_%d.jpg", markedAt, 2)

            denied := []struct {
                method string
                path   string
                body   any
                cookie *http.Cookie
            }{
                {http.MethodGet, "/API/ADMIN/LOGS", nil, nil},
                {http.MethodGet, "/Api/Admin/users", nil, nil},
                {http.MethodPost, "/API/admin/users", map[string]string{"name": "Mallory", "phone": "5550001"}, nil},
                {http.MethodPost, "/API/ADMIN/VERIFY", map[string]any{"id": 1, "verified": true}, driver},
                {http.MethodGet, "/ADMIN", nil, nil},
                {http.MethodGet, "/Dashboard", nil, nil},
                {http.MethodGet, photoPath, nil, nil},
            }
            for _, tc := range denied {
                resp := call(t, app, tc.method, tc.path, tc.body, tc.cookie)
                if caseSensitive && resp.StatusCode == http.StatusNotFound {
                    continue
                }
                require.Contains(t, []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusFound}, resp.StatusCode,
                    "%s %s", tc.method, tc.path)
            }

            resp = call(t, app, http.MethodPost, "/api/auth/login", map[string]string{"phone": "5550001"}, nil)
            require.Equal(t, http.StatusNotFound, resp.StatusCode)
        })
    }
}

func TestAdminManagesDrivers(t *testing.T) {
    app := newTestApp(t)
    admin := login(t, app, map[string]string{"email": "admin@example.com", "password": "admin123"}, session.RoleAdmin)

    resp := call(t, app, http.MethodPost, "/api/admin/users", map[string]string{"name": "Asha", "phone": "9000000001", "gender": "Female"}, admin)
    require.Equal(t, http.StatusCreated, resp.StatusCode)
    var created struct {
        ID int64 `json:"id"`
    }
    decode(t, resp, &created)

    dup := call(t, app, http.MethodPost, "/api/admin/users", map[string]string{"name": "Twin", "phone": "9000000001"}, admin)
    require.Equal(t, http.StatusBadRequest, dup.StatusCode)
    var errBody map[string]string
    decode(t, dup, &errBody)
    require.Contains(t, errBody["error"], "already exists")

    // The phone number doubles as the initial credential.
    login(t, app, map[string]string{"phone": "9000000001"}, session.RoleDriver)

    resp = call(t, app, http.MethodPatch, "/api/admin/users", map[string]any{"id": created.ID, "name": "Asha K", "phone": "9000000002"}, admin)
    require.Equal(t, http.StatusOK, resp.StatusCode)

    var users []map[string]any
    decode(t, call(t, app, http.MethodGet, "/api/admin/users", nil, admin), &users)
    require.Len(t, users, 2)

    require.Equal(t, http.StatusOK, call(t, app, http.MethodDelete, "/api/admin/users", map[string]any{"id": created.ID}, admin).StatusCode)
    require.Equal(t, http.StatusNotFound, call(t, app, http.MethodDelete, "/api/admin/users", map[string]any{"id": created.ID}, admin).StatusCode)
}

func TestMarkValidation(t *testing.T) {
    app := newTestApp(t)
    driver := login(t, app, map[string]string{"phone": "9801540172"}, session.RoleDriver)

    cases := []map[string]any{
        {"latitude": 1, "longitude": 2, "type": "clock_in"},
        {"latitude": 1, "longitude": 2, "image": photoDataURL(t), "type": "lunch"},
        {"latitude": 95, "longitude": 2, "image": photoDataURL(t)},
        {"latitude": 1, "longitude": 2, "image": "data:image/jpeg;base64," + strings.Repeat("A", 8)},
    }
    for i, body := range cases {
        resp := call(t, app, http.MethodPost, "/api/attendance/mark", body, driver)
        require.Equal(t, http.StatusBadRequest, resp.StatusCode, "case %d", i)
    }
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
    app := newTestApp(t)
    require.Equal(t, http.StatusOK, call(t, app, http.MethodPost, "/api/auth/logout", nil, nil).StatusCode)
}
