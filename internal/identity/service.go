package identity

import (
    "context"
    "errors"
    "fmt"
    "strings"
    "time"

    "golang.org/x/crypto/bcrypt"

    "github.com/Shaanrahman123/driver-tracker/internal/session"
)

// Default accounts created by SeedDefaults.
const (
    DefaultAdminEmail    = "admin@example.com"
    DefaultAdminPassword = "admin123"
    SampleDriverPhone    = "9801540172"
)

// Service manages the user directory.
type Service struct {
    repo Repository
    now  func() time.Time
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
    return &Service{repo: repo, now: time.Now}
}

// FindByPhone looks a user up by phone number.
func (s *Service) FindByPhone(ctx context.Context, phone string) (User, error) {
    return s.repo.FindByPhone(ctx, strings.TrimSpace(phone))
}

// FindByEmail looks a user up by email address.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
    return s.repo.FindByEmail(ctx, normalizeEmail(email))
}

// FindByIDs returns the users with the given identifiers; unknown ids are skipped.
func (s *Service) FindByIDs(ctx context.Context, ids []int64) ([]User, error) {
    return s.repo.FindByIDs(ctx, ids)
}

// ListDrivers returns every driver account.
func (s *Service) ListDrivers(ctx context.Context) ([]User, error) {
    return s.repo.ListByRole(ctx, session.RoleDriver)
}

// CreateDriver provisions a driver. When no password is supplied the phone
// number becomes the initial credential.
func (s *Service) CreateDriver(ctx context.Context, in DriverInput) (User, error) {
    in.Name = strings.TrimSpace(in.Name)
    in.Phone = strings.TrimSpace(in.Phone)
    if in.Name == "" || in.Phone == "" {
        return User{}, fmt.Errorf("%w: name and phone are required", ErrInvalidInput)
    }

    secret := in.Password
    if secret == "" {
        secret = in.Phone
    }
    hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
    if err != nil {
        return User{}, err
    }

    return s.repo.Create(ctx, User{
        Name:         in.Name,
        Email:        normalizeEmail(in.Email),
        Phone:        in.Phone,
        Gender:       strings.TrimSpace(in.Gender),
        PasswordHash: hash,
        Role:         session.RoleDriver,
        CreatedAt:    s.now().UTC(),
    })
}

// Register handles self-service signup. New accounts are always drivers.
func (s *Service) Register(ctx context.Context, in SignupInput) (User, error) {
    in.Name = strings.TrimSpace(in.Name)
    if in.Name == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
        return User{}, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
    }

    hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
    if err != nil {
        return User{}, err
    }

    return s.repo.Create(ctx, User{
        Name:         in.Name,
        Email:        normalizeEmail(in.Email),
        Phone:        strings.TrimSpace(in.Phone),
        PasswordHash: hash,
        Role:         session.RoleDriver,
        CreatedAt:    s.now().UTC(),
    })
}

// UpdateDriver edits a driver's profile. Credentials are left unchanged.
func (s *Service) UpdateDriver(ctx context.Context, in DriverUpdate) (User, error) {
    in.Name = strings.TrimSpace(in.Name)
    in.Phone = strings.TrimSpace(in.Phone)
    if in.ID == 0 || in.Name == "" || in.Phone == "" {
        return User{}, fmt.Errorf("%w: id, name and phone are required", ErrInvalidInput)
    }

    existing, err := s.driver(ctx, in.ID)
    if err != nil {
        return User{}, err
    }
    existing.Name = in.Name
    existing.Email = normalizeEmail(in.Email)
    existing.Phone = in.Phone
    existing.Gender = strings.TrimSpace(in.Gender)

    if err := s.repo.Update(ctx, existing); err != nil {
        return User{}, err
    }
    return existing, nil
}

// DeleteDriver removes a driver account. Administrators cannot be removed here.
func (s *Service) DeleteDriver(ctx context.Context, id int64) error {
    if id == 0 {
        return fmt.Errorf("%w: id is required", ErrInvalidInput)
    }
    if _, err := s.driver(ctx, id); err != nil {
        return err
    }
    return s.repo.Delete(ctx, id)
}

// SeedDefaults creates the default administrator and the sample driver when
// they do not exist yet.
func (s *Service) SeedDefaults(ctx context.Context) error {
    if _, err := s.repo.FindByEmail(ctx, DefaultAdminEmail); errors.Is(err, ErrNotFound) {
        hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
        if err != nil {
            return err
        }
        if _, err := s.repo.Create(ctx, User{
            Name:         "System Admin",
            Email:        DefaultAdminEmail,
            PasswordHash: hash,
            Role:         session.RoleAdmin,
            CreatedAt:    s.now().UTC(),
        }); err != nil && !errors.Is(err, ErrDuplicate) {
            return fmt.Errorf("seed admin: %w", err)
        }
    } else if err != nil {
        return err
    }

    if _, err := s.repo.FindByPhone(ctx, SampleDriverPhone); errors.Is(err, ErrNotFound) {
        if _, err := s.CreateDriver(ctx, DriverInput{
            Name:   "Shaan Rahman",
            Email:  "driver@example.com",
            Phone:  SampleDriverPhone,
            Gender: "Male",
        }); err != nil && !errors.Is(err, ErrDuplicate) {
            return fmt.Errorf("seed driver: %w", err)
        }
    } else if err != nil {
        return err
    }
    return nil
}

func (s *Service) driver(ctx context.Context, id int64) (User, error) {
    user, err := s.repo.FindByID(ctx, id)
    if err != nil {
        return User{}, err
    }
    if user.Role != session.RoleDriver {
        return User{}, ErrNotFound
    }
    return user, nil
}

func normalizeEmail(email string) string {
    return strings.ToLower(strings.TrimSpace(email))
}
