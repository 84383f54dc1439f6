package routes

import (
    "context"

    "github.com/Shaanrahman123/driver-tracker/internal/attendance"
    "github.com/Shaanrahman123/driver-tracker/internal/identity"
)

// ownerDirectory resolves event owners from the user directory.
type ownerDirectory struct {
    users *identity.Service
}

func (d ownerDirectory) Owners(ctx context.Context, ids []int64) (map[int64]attendance.Owner, error) {
    users, err := d.users.FindByIDs(ctx, ids)
    if err != nil {
        return nil, err
    }
    out := make(map[int64]attendance.Owner, len(users))
    for _, u := range users {
        out[u.ID] = attendance.Owner{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
    }
    return out, nil
}
