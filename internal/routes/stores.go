package routes

import (
    "context"

    "github.com/Shaanrahman123/driver-tracker/internal/attendance"
    "github.com/Shaanrahman123/driver-tracker/internal/identity"
)

type migrator interface {
    Migrate(ctx context.Context) error
}

type stores struct {
    users  identity.Repository
    events attendance.Repository
}

// openStores picks Postgres when a pool is given, then SQLite, then memory,
// and migrates the chosen schema.
func openStores(ctx context.Context, d Deps) (stores, error) {
    var (
        st         stores
        migrations []migrator
    )
    switch {
    case d.DB != nil:
        users := identity.NewPostgresRepository(d.DB)
        events := attendance.NewPostgresRepository(d.DB)
        st = stores{users: users, events: events}
        migrations = []migrator{users, events}
    case d.SQL != nil:
        users := identity.NewSQLiteRepository(d.SQL)
        events := attendance.NewSQLiteRepository(d.SQL)
        st = stores{users: users, events: events}
        migrations = []migrator{users, events}
    default:
        st = stores{users: identity.NewMemoryRepository(), events: attendance.NewInMemory()}
    }
    for _, m := range migrations {
        if err := m.Migrate(ctx); err != nil {
            return stores{}, err
        }
    }
    return st, nil
}
