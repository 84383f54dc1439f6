package identity

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Handler exposes the administrator's driver management endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type driverRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"required"`
	Gender   string `json:"gender"`
	Password string `json:"password"`
}

type updateRequest struct {
	ID     int64  `json:"id" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"omitempty,email"`
	Phone  string `json:"phone" validate:"required"`
	Gender string `json:"gender"`
}

type deleteRequest struct {
	ID int64 `json:"id" validate:"required"`
}

type userResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone"`
	Gender string `json:"gender,omitempty"`
	Role   string `json:"role"`
}

func toResponse(u User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Gender: u.Gender, Role: u.Role}
}

// List returns every driver.
func (h *Handler) List(c *fiber.Ctx) error {
	users, err := h.service.ListDrivers(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to fetch users")
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toResponse(u))
	}
	return c.Status(http.StatusOK).JSON(out)
}

// Create provisions a driver account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req driverRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "name and phone are required")
	}
	user, err := h.service.CreateDriver(c.UserContext(), DriverInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Gender:   req.Gender,
		Password: req.Password,
	})
	if err != nil {
		return mapError(err, "failed to create user")
	}
	return c.Status(http.StatusCreated).JSON(toResponse(user))
}

// Update edits a driver's profile.
func (h *Handler) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "id, name and phone are required")
	}
	user, err := h.service.UpdateDriver(c.UserContext(), DriverUpdate{
		ID:     req.ID,
		Name:   req.Name,
		Email:  req.Email,
		Phone:  req.Phone,
		Gender: req.Gender,
	})
	if err != nil {
		return mapError(err, "failed to update user")
	}
	return c.Status(http.StatusOK).JSON(toResponse(user))
}

// Delete removes a driver account.
func (h *Handler) Delete(c *fiber.Ctx) error {
	var req deleteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "id is required")
	}
	if err := h.service.DeleteDriver(c.UserContext(), req.ID); err != nil {
		return mapError(err, "failed to delete user")
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

func mapError(err error, fallback string) error {
	switch {
	case errors.Is(err, ErrDuplicate):
		return fiber.NewError(http.StatusBadRequest, ErrDuplicate.Error())
	case errors.Is(err, ErrInvalidInput):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, ErrNotFound.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, fallback)
	}
}
