package auth

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/stretchr/testify/require"

    "github.com/Shaanrahman123/driver-tracker/internal/identity"
    "github.com/Shaanrahman123/driver-tracker/internal/session"
)

func newTestService(t *testing.T) (*Service, *session.Manager) {
    t.Helper()
    ids := identity.NewService(identity.NewMemoryRepository())
    require.NoError(t, ids.SeedDefaults(context.Background()))
    mgr, err := session.NewManager("auth-test-secret", time.Hour)
    require.NoError(t, err)
    return NewService(ids, mgr), mgr
}

func TestAdminLoginIssuesAdminSession(t *testing.T) {
    svc, mgr := newTestService(t)

    res, err := svc.Login(context.Background(), Credentials{Email: identity.DefaultAdminEmail, Password: identity.DefaultAdminPassword})
    require.NoError(t, err)
    require.Equal(t, session.RoleAdmin, res.Role)
    require.Equal(t, "/admin", res.Home)

    sess, ok := mgr.Verify(res.Token)
    require.True(t, ok)
    require.Equal(t, session.RoleAdmin, sess.Role)
    require.Equal(t, res.Session.UserID, sess.UserID)
}

func TestAdminLoginRejectsBadPassword(t *testing.T) {
    svc, _ := newTestService(t)
    ctx := context.Background()

    for _, pw := range []string{"admin", "ADMIN123", "admin123 "} {
        res, err := svc.Login(ctx, Credentials{Email: identity.DefaultAdminEmail, Password: pw})
        require.ErrorIs(t, err, ErrInvalidCredentials, pw)
        require.Empty(t, res.Token)
    }
    _, err := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "x"})
    require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemberLoginIsPhoneOnly(t *testing.T) {
    svc, mgr := newTestService(t)
    ctx := context.Background()

    res, err := svc.Login(ctx, Credentials{Phone: identity.SampleDriverPhone})
    require.NoError(t, err)
    require.Equal(t, session.RoleDriver, res.Role)
    require.Equal(t, "/dashboard", res.Home)
    sess, ok := mgr.Verify(res.Token)
    require.True(t, ok)
    require.Equal(t, "Shaan Rahman", sess.Name)

    _, err = svc.Login(ctx, Credentials{Phone: "0000000000"})
    require.True(t, errors.Is(err, identity.ErrNotFound))
}

func TestLoginRejectsOtherShapes(t *testing.T) {
    svc, _ := newTestService(t)
    ctx := context.Background()

    for _, in := range []Credentials{
        {},
        {Email: identity.DefaultAdminEmail},
        {Password: "admin123"},
        {Phone: identity.SampleDriverPhone, Password: "x"},
        {Phone: identity.SampleDriverPhone, Email: identity.DefaultAdminEmail, Password: "admin123"},
    } {
        _, err := svc.Login(ctx, in)
        require.ErrorIs(t, err, ErrMissingCredentials, "%+v", in)
    }
}

func TestSignupCreatesDriver(t *testing.T) {
    svc, _ := newTestService(t)
    ctx := context.Background()

    user, err := svc.Signup(ctx, identity.SignupInput{Name: "New", Email: "new@example.com", Password: "pw"})
    require.NoError(t, err)
    require.Equal(t, session.RoleDriver, user.Role)

    _, err = svc.Signup(ctx, identity.SignupInput{Name: "Again", Email: "NEW@example.com", Password: "pw"})
    require.ErrorIs(t, err, identity.ErrDuplicate)

    res, err := svc.Login(ctx, Credentials{Email: "new@example.com", Password: "pw"})
    require.NoError(t, err)
    require.Equal(t, "/dashboard", res.Home)
}
