package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as {"error": msg}.
// Errors that are not *fiber.Error are logged and reported as a 500.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code, msg = fe.Code, fe.Message
		} else if logger != nil {
			requestID, _ := c.Locals(requestIDHeader).(string)
			logger.Error("unhandled error",
				slog.String("path", c.Path()),
				slog.String("request_id", requestID),
				slog.Any("error", err),
			)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
