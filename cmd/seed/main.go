// Command seed creates the default accounts and, optionally, one extra driver.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Shaanrahman123/driver-tracker/internal/config"
	"github.com/Shaanrahman123/driver-tracker/internal/identity"
	"github.com/Shaanrahman123/driver-tracker/internal/infra"
	"github.com/Shaanrahman123/driver-tracker/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	name := fs.String("name", "", "driver name")
	phone := fs.String("phone", "", "driver phone; also the initial credential")
	email := fs.String("email", "", "driver email (optional)")
	gender := fs.String("gender", "", "driver gender (optional)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	logger := logging.New(cfg.LogLevel, cfg.AppName+"-seed", cfg.AppEnv)
	ctx := context.Background()

	repo, closeStore, err := openUsers(ctx, cfg)
	if err != nil {
		logger.Error("open store", "error", err)
		return 1
	}
	defer closeStore()

	svc := identity.NewService(repo)
	if err := svc.SeedDefaults(ctx); err != nil {
		logger.Error("seed defaults", "error", err)
		return 1
	}
	logger.Info("default accounts ensured", "admin", identity.DefaultAdminEmail, "driver", identity.SampleDriverPhone)

	if *phone == "" {
		return 0
	}
	user, err := svc.CreateDriver(ctx, identity.DriverInput{Name: *name, Phone: *phone, Email: *email, Gender: *gender})
	switch {
	case errors.Is(err, identity.ErrDuplicate):
		logger.Info("driver already exists", "phone", *phone)
	case err != nil:
		logger.Error("create driver", "error", err)
		return 1
	default:
		logger.Info("driver created", "id", user.ID, "phone", user.Phone)
	}
	return 0
}

type migratingRepository interface {
	identity.Repository
	Migrate(ctx context.Context) error
}

func openUsers(ctx context.Context, cfg config.Config) (identity.Repository, func(), error) {
	var (
		repo    migratingRepository
		closeFn func()
	)
	if cfg.DatabaseURL != "" {
		db, err := infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo, closeFn = identity.NewPostgresRepository(db), db.Close
	} else {
		db, err := infra.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		repo, closeFn = identity.NewSQLiteRepository(db), func() { db.Close() }
	}
	if err := repo.Migrate(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return repo, closeFn, nil
}
