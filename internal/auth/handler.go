package auth

import (
    "errors"
    "net/http"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/gofiber/fiber/v2"

    "github.com/Shaanrahman123/driver-tracker/internal/identity"
    "github.com/Shaanrahman123/driver-tracker/internal/session"
)

var validate = validator.New()

// Handler exposes login, logout and signup.
type Handler struct {
    svc          *Service
    secureCookie bool
}

func NewHandler(svc *Service, secureCookie bool) *Handler {
    return &Handler{svc: svc, secureCookie: secureCookie}
}

type loginRequest struct {
    Phone    string `json:"phone"`
    Email    string `json:"email"`
    Password string `json:"password"`
}

type signupRequest struct {
    Name     string `json:"name" validate:"required"`
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
    Phone    string `json:"phone"`
}

// Login authenticates and sets the session cookie.
func (h *Handler) Login(c *fiber.Ctx) error {
    var req loginRequest
    if err := c.BodyParser(&req); err != nil {
        return fiber.NewError(http.StatusBadRequest, err.Error())
    }
    res, err := h.svc.Login(c.UserContext(), Credentials{Phone: req.Phone, Email: req.Email, Password: req.Password})
    if err != nil {
        switch {
        case errors.Is(err, ErrMissingCredentials):
            return fiber.NewError(http.StatusBadRequest, "provide a phone number, or an email and password")
        case errors.Is(err, ErrInvalidCredentials):
            return fiber.NewError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
        case errors.Is(err, identity.ErrNotFound):
            return fiber.NewError(http.StatusNotFound, "user not found")
        default:
            return fiber.NewError(http.StatusInternalServerError, "login failed")
        }
    }

    c.Cookie(&fiber.Cookie{
        Name:     session.CookieName,
        Value:    res.Token,
        Path:     "/",
        Expires:  res.Session.ExpiresAt,
        HTTPOnly: true,
        Secure:   h.secureCookie,
        SameSite: fiber.CookieSameSiteLaxMode,
    })
    return c.Status(http.StatusOK).JSON(fiber.Map{
        "success":  true,
        "role":     res.Role,
        "redirect": res.Home,
    })
}

// Logout clears the session cookie. It always succeeds.
func (h *Handler) Logout(c *fiber.Ctx) error {
    c.Cookie(&fiber.Cookie{
        Name:     session.CookieName,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HTTPOnly: true,
        Secure:   h.secureCookie,
        SameSite: fiber.CookieSameSiteLaxMode,
    })
    return c.Status(http.StatusOK).JSON(fiber.Map{"success": true})
}

// Signup creates a driver account.
func (h *Handler) Signup(c *fiber.Ctx) error {
    var req signupRequest
    if err := c.BodyParser(&req); err != nil {
        return fiber.NewError(http.StatusBadRequest, err.Error())
    }
    if err := validate.Struct(req); err != nil {
        return fiber.NewError(http.StatusBadRequest, "name, email and password are required")
    }
    user, err := h.svc.Signup(c.UserContext(), identity.SignupInput{
        Name:     req.Name,
        Email:    req.Email,
        Password: req.Password,
        Phone:    req.Phone,
    })
    if err != nil {
        switch {
        case errors.Is(err, identity.ErrDuplicate):
            return fiber.NewError(http.StatusBadRequest, identity.ErrDuplicate.Error())
        case errors.Is(err, identity.ErrInvalidInput):
            return fiber.NewError(http.StatusBadRequest, err.Error())
        default:
            return fiber.NewError(http.StatusInternalServerError, "signup failed")
        }
    }
    return c.Status(http.StatusCreated).JSON(fiber.Map{"success": true, "user_id": user.ID})
}
