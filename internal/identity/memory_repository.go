package identity

import (
    "context"
    "sort"
    "sync"
)

type memoryRepository struct {
    mu     sync.RWMutex
    nextID int64
    users  map[int64]User
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
    return &memoryRepository{users: make(map[int64]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) (User, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    if r.conflicts(user) {
        return User{}, ErrDuplicate
    }
    r.nextID++
    user.ID = r.nextID
    r.users[user.ID] = user
    return user, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int64) (User, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    user, ok := r.users[id]
    if !ok {
        return User{}, ErrNotFound
    }
    return user, nil
}

func (r *memoryRepository) FindByIDs(_ context.Context, ids []int64) ([]User, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    var out []User
    for _, id := range ids {
        if user, ok := r.users[id]; ok {
            out = append(out, user)
        }
    }
    return out, nil
}

func (r *memoryRepository) FindByPhone(_ context.Context, phone string) (User, error) {
    return r.findFirst(func(u User) bool { return phone != "" && u.Phone == phone })
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
    return r.findFirst(func(u User) bool { return email != "" && u.Email == email })
}

func (r *memoryRepository) ListByRole(_ context.Context, role string) ([]User, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    var out []User
    for _, user := range r.users {
        if user.Role == role {
            out = append(out, user)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (r *memoryRepository) Update(_ context.Context, user User) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    existing, ok := r.users[user.ID]
    if !ok {
        return ErrNotFound
    }
    if r.conflicts(user) {
        return ErrDuplicate
    }
    existing.Name = user.Name
    existing.Email = user.Email
    existing.Phone = user.Phone
    existing.Gender = user.Gender
    r.users[user.ID] = existing
    return nil
}

func (r *memoryRepository) Delete(_ context.Context, id int64) error {
    r.mu.Lock()
    defer r.mu.Unlock()
    if _, ok := r.users[id]; !ok {
        return ErrNotFound
    }
    delete(r.users, id)
    return nil
}

func (r *memoryRepository) findFirst(match func(User) bool) (User, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()
    for _, user := range r.users {
        if match(user) {
            return user, nil
        }
    }
    return User{}, ErrNotFound
}

// conflicts mirrors the UNIQUE constraints on email and phone. Caller holds mu.
func (r *memoryRepository) conflicts(candidate User) bool {
    for id, user := range r.users {
        if id == candidate.ID {
            continue
        }
        if candidate.Email != "" && user.Email == candidate.Email {
            return true
        }
        if candidate.Phone != "" && user.Phone == candidate.Phone {
            return true
        }
    }
    return false
}
