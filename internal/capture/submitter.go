package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Shaanrahman123/driver-tracker/internal/session"
)

// MarkPath is the ledger endpoint drafts are posted to.
const MarkPath = "/api/attendance/mark"

// ErrRejected is returned when the server answers with a non-2xx status.
var ErrRejected = errors.New("attendance submission rejected")

// HTTPSubmitter posts drafts to the attendance API as the signed-in driver.
type HTTPSubmitter struct {
	baseURL string
	token   string
	timeout time.Duration
}

// NewHTTPSubmitter targets baseURL and authenticates with the session token.
func NewHTTPSubmitter(baseURL, token string, timeout time.Duration) *HTTPSubmitter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSubmitter{baseURL: strings.TrimRight(baseURL, "/"), token: token, timeout: timeout}
}

type markBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address"`
	Image     string  `json:"image"`
	Type      string  `json:"type"`
}

// Submit sends d with its ID as the Idempotency-Key, so a retry after a lost
// response is recorded once.
func (s *HTTPSubmitter) Submit(ctx context.Context, d Draft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := s.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	agent := fiber.Post(s.baseURL + MarkPath)
	agent.JSON(markBody{
		Latitude:  d.Latitude,
		Longitude: d.Longitude,
		Address:   d.Address,
		Image:     d.Photo,
		Type:      string(d.Type),
	})
	agent.Cookie(session.CookieName, s.token)
	if d.ID != "" {
		agent.Set("Idempotency-Key", d.ID)
	}
	agent.Timeout(timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("submit attendance: %w", errors.Join(errs...))
	}
	if code < http.StatusOK || code >= http.StatusMultipleChoices {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(body, &payload)
		if payload.Error == "" {
			payload.Error = http.StatusText(code)
		}
		return fmt.Errorf("%w: %d %s", ErrRejected, code, payload.Error)
	}
	return nil
}
