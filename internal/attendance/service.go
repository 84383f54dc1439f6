package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Shaanrahman123/driver-tracker/internal/notification"
)

// Service is the attendance ledger: it records, lists and verifies events.
type Service struct {
	repo   Repository
	photos PhotoStore
	owners Directory
	notify notification.Notifier
	loc    *time.Location
	now    func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides the time source used to stamp new events.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the zone used to derive an event's calendar date.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPhotoStore routes submitted images through store instead of keeping
// them inline on the event.
func WithPhotoStore(store PhotoStore) Option {
	return func(s *Service) { s.photos = store }
}

// WithNotifier announces recorded and verified events. Delivery failures do
// not fail the ledger operation.
func WithNotifier(n notification.Notifier) Option {
	return func(s *Service) { s.notify = n }
}

// NewService wires a ledger over repo. owners may be nil, in which case
// ListAll returns events without owner details.
func NewService(repo Repository, owners Directory, opts ...Option) *Service {
	s := &Service{repo: repo, owners: owners, loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Location returns the zone event dates are derived in.
func (s *Service) Location() *time.Location { return s.loc }

// Now returns the ledger clock in its location.
func (s *Service) Now() time.Time { return s.now().In(s.loc) }

// Record appends an event for userID stamped with the current time.
func (s *Service) Record(ctx context.Context, userID int64, p Payload) (Event, error) {
	if !p.Type.Valid() {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidType, p.Type)
	}

	at := s.Now().Truncate(time.Millisecond)
	photo, saved := p.Image, false
	if s.photos != nil && photo != "" {
		ref, err := s.photos.Save(ctx, userID, photo, at)
		if err != nil {
			return Event{}, err
		}
		photo, saved = ref, true
	}

	e, err := s.repo.Insert(ctx, Event{
		UserID:    userID,
		Date:      at.Format(DateLayout),
		Timestamp: at.UnixMilli(),
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Address:   strings.TrimSpace(p.Address),
		Photo:     photo,
		Type:      p.Type,
	})
	if err != nil {
		if saved {
			_ = s.photos.Delete(context.WithoutCancel(ctx), photo)
		}
		return Event{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.send(ctx, notification.Message{
		Kind:        notification.KindEventRecorded,
		Destination: "admins",
		Body:        fmt.Sprintf("user %d recorded %s (event %d)", e.UserID, e.Type.Label(), e.ID),
	})
	return e, nil
}

// ListForUser returns the user's events, newest first.
func (s *Service) ListForUser(ctx context.Context, userID int64) ([]Event, error) {
	events, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return events, nil
}

// ListAll returns every event joined with its owner, newest first. Events
// whose owner no longer exists are left out.
func (s *Service) ListAll(ctx context.Context) ([]OwnedEvent, error) {
	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if s.owners == nil {
		out := make([]OwnedEvent, len(events))
		for i, e := range events {
			out[i] = OwnedEvent{Event: e}
		}
		return out, nil
	}

	seen := make(map[int64]struct{})
	ids := make([]int64, 0)
	for _, e := range events {
		if _, ok := seen[e.UserID]; !ok {
			seen[e.UserID] = struct{}{}
			ids = append(ids, e.UserID)
		}
	}
	owners, err := s.owners.Owners(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	out := make([]OwnedEvent, 0, len(events))
	for _, e := range events {
		o, ok := owners[e.UserID]
		if !ok {
			continue
		}
		out = append(out, OwnedEvent{
			Event:        e,
			OwnerName:    o.Name,
			OwnerEmail:   o.Email,
			OwnerPhone:   o.Phone,
			OwnerContact: o.Contact(),
		})
	}
	return out, nil
}

// SetVerified updates only the verified flag. Repeating a call is harmless.
func (s *Service) SetVerified(ctx context.Context, id int64, verified bool) (Event, error) {
	e, err := s.repo.SetVerified(ctx, id, verified)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Event{}, err
		}
		return Event{}, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	state := "unverified"
	if e.Verified {
		state = "verified"
	}
	s.send(ctx, notification.Message{
		Kind:        notification.KindEventVerified,
		Destination: fmt.Sprintf("user:%d", e.UserID),
		Body:        fmt.Sprintf("%s on %s marked %s", e.Type.Label(), e.Date, state),
	})
	return e, nil
}

func (s *Service) send(ctx context.Context, msg notification.Message) {
	if s.notify != nil {
		_ = s.notify.Send(ctx, msg)
	}
}
