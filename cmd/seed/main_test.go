package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shaanrahman123/driver-tracker/internal/identity"
	"github.com/Shaanrahman123/driver-tracker/internal/infra"
)

func seedEnv(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.db")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLITE_PATH", path)
	t.Setenv("LOG_LEVEL", "error")
	return path
}

func TestRunSeedsDefaultsAndDriver(t *testing.T) {
	path := seedEnv(t)

	require.Equal(t, 0, run([]string{"-name", "Ravi", "-phone", "9000000002"}))
	require.Equal(t, 0, run([]string{"-name", "Ravi", "-phone", "9000000002"}))

	db, err := infra.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	svc := identity.NewService(identity.NewSQLiteRepository(db))
	_, err = svc.FindByEmail(context.Background(), identity.DefaultAdminEmail)
	require.NoError(t, err)
	driver, err := svc.FindByPhone(context.Background(), "9000000002")
	require.NoError(t, err)
	require.Equal(t, "Ravi", driver.Name)
}

func TestRunReportsFailureAfterClosingStore(t *testing.T) {
	path := seedEnv(t)

	require.Equal(t, 1, run([]string{"-phone", "9000000003"}))
	require.Equal(t, 2, run([]string{"-unknown"}))

	db, err := infra.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()
	_, err = identity.NewService(identity.NewSQLiteRepository(db)).FindByPhone(context.Background(), "9000000003")
	require.ErrorIs(t, err, identity.ErrNotFound)
}
