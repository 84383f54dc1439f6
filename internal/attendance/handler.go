package attendance

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Shaanrahman123/driver-tracker/internal/middleware"
	"github.com/Shaanrahman123/driver-tracker/internal/photo"
)

var validate = validator.New()

// Handler exposes ledger writes over HTTP. Reads are composed with the
// aggregator in the routes package.
type Handler struct {
	service *Service
}

// NewHandler constructs an attendance HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type markRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Address   string  `json:"address"`
	Image     string  `json:"image" validate:"required"`
	Type      string  `json:"type" validate:"omitempty,oneof=clock_in clock_out pickup dropping breakdown"`
}

type verifyRequest struct {
	ID       int64 `json:"id" validate:"required"`
	Verified *bool `json:"verified" validate:"required"`
}

// Mark records an attendance event for the signed-in driver.
func (h *Handler) Mark(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFrom(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "unauthorized")
	}

	var req markRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "image is required and coordinates must be valid")
	}
	typ, err := ParseEventType(req.Type)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	event, err := h.service.Record(c.UserContext(), sess.UserID, Payload{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Address:   req.Address,
		Image:     req.Image,
		Type:      typ,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidType), errors.Is(err, photo.ErrInvalidImage):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusInternalServerError, "failed to save attendance")
		}
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "event": event})
}

// Verify sets or clears the verified flag of an event.
func (h *Handler) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "id and verified are required")
	}

	event, err := h.service.SetVerified(c.UserContext(), req.ID, *req.Verified)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "failed to update")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "event": event})
}
