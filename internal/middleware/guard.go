package middleware

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Shaanrahman123/driver-tracker/internal/guard"
	"github.com/Shaanrahman123/driver-tracker/internal/session"
)

const sessionLocal = "session"

// SessionVerifier reconstructs a session from its cookie value.
type SessionVerifier interface {
	Verify(token string) (session.Session, bool)
}

// SessionFrom returns the session stored by PageGuard or APIGuard.
func SessionFrom(c *fiber.Ctx) (session.Session, bool) {
	sess, ok := c.Locals(sessionLocal).(session.Session)
	return sess, ok
}

func readSession(c *fiber.Ctx, verifier SessionVerifier) *session.Session {
	token := c.Cookies(session.CookieName)
	if token == "" {
		return nil
	}
	sess, ok := verifier.Verify(token)
	if !ok {
		return nil
	}
	return &sess
}

// PageGuard enforces guard.PageRules on browser navigation. Denied requests
// are redirected; paths under /api are left to APIGuard.
func PageGuard(verifier SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := guard.NormalizePath(c.Path())
		if path == "/api" || strings.HasPrefix(path, "/api/") {
			return c.Next()
		}
		sess := readSession(c, verifier)
		decision := guard.PageRules.Evaluate(path, sess)
		if !decision.Allowed() {
			return c.Redirect(decision.Redirect, http.StatusFound)
		}
		if sess != nil {
			c.Locals(sessionLocal, *sess)
		}
		return c.Next()
	}
}

// APIGuard enforces guard.APIRules. Missing sessions get 401 and wrong roles 403.
func APIGuard(verifier SessionVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := readSession(c, verifier)
		decision := guard.APIRules.Evaluate(c.Path(), sess)
		switch decision.Outcome {
		case guard.Unauthorized:
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		case guard.Forbidden:
			return fiber.NewError(http.StatusForbidden, "forbidden")
		}
		if sess != nil {
			c.Locals(sessionLocal, *sess)
		}
		return c.Next()
	}
}
