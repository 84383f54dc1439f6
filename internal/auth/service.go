package auth

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "golang.org/x/crypto/bcrypt"

    "github.com/Shaanrahman123/driver-tracker/internal/guard"
    "github.com/Shaanrahman123/driver-tracker/internal/identity"
    "github.com/Shaanrahman123/driver-tracker/internal/session"
)

var (
    // ErrInvalidCredentials is returned for an unknown admin email or a wrong password.
    ErrInvalidCredentials = errors.New("invalid credentials")

    // ErrMissingCredentials is returned when the input is neither {phone} nor {email, password}.
    ErrMissingCredentials = errors.New("missing credentials")
)

// Users is the part of the user directory login and signup need.
type Users interface {
    FindByPhone(ctx context.Context, phone string) (identity.User, error)
    FindByEmail(ctx context.Context, email string) (identity.User, error)
    Register(ctx context.Context, in identity.SignupInput) (identity.User, error)
}

// Issuer mints session tokens.
type Issuer interface {
    Issue(sub session.Subject) (string, session.Session, error)
}

// Credentials holds one of the two login shapes.
type Credentials struct {
    Phone    string
    Email    string
    Password string
}

// Result is a successful login.
type Result struct {
    Token   string
    Session session.Session
    Role    string
    Home    string
}

type Service struct {
    users    Users
    sessions Issuer
}

func NewService(users Users, sessions Issuer) *Service {
    return &Service{users: users, sessions: sessions}
}

// Login authenticates either a member by phone or an admin by email and
// password, then issues a session.
//
// The member path performs no password check: any phone present in the
// directory is accepted. This is a known gap kept for compatibility with the
// existing driver app.
func (s *Service) Login(ctx context.Context, in Credentials) (Result, error) {
    phone := strings.TrimSpace(in.Phone)
    email := strings.TrimSpace(in.Email)

    var (
        user identity.User
        err  error
    )
    switch {
    case phone != "" && email == "" && in.Password == "":
        user, err = s.users.FindByPhone(ctx, phone)
        if err != nil {
            return Result{}, fmt.Errorf("member login: %w", err)
        }
    case phone == "" && email != "" && in.Password != "":
        user, err = s.users.FindByEmail(ctx, email)
        if errors.Is(err, identity.ErrNotFound) {
            return Result{}, ErrInvalidCredentials
        }
        if err != nil {
            return Result{}, fmt.Errorf("admin login: %w", err)
        }
        if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(in.Password)) != nil {
            return Result{}, ErrInvalidCredentials
        }
    default:
        return Result{}, ErrMissingCredentials
    }

    token, sess, err := s.sessions.Issue(user.Subject())
    if err != nil {
        return Result{}, fmt.Errorf("issue session: %w", err)
    }
    return Result{Token: token, Session: sess, Role: sess.Role, Home: guard.HomeFor(sess.Role)}, nil
}

// Signup registers a new driver account.
func (s *Service) Signup(ctx context.Context, in identity.SignupInput) (identity.User, error) {
    return s.users.Register(ctx, in)
}
