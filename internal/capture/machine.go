// Package capture drives the attendance capture flow: camera and location
// acquisition, review and submission. It knows nothing about rendering.
package capture

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Shaanrahman123/driver-tracker/internal/attendance"
)

var (
	// ErrInvalidTransition is returned when an action is not valid in the current state.
	ErrInvalidTransition = errors.New("invalid capture transition")

	// ErrNoFrame is returned by Capture when the camera has no frame yet.
	ErrNoFrame = errors.New("camera frame not available")
)

// UnavailableAddress is recorded when no position could be obtained.
const UnavailableAddress = "Location Unavailable"

// State is a step of the capture flow.
type State int

const (
	Idle State = iota
	Capturing
	Review
	Submitting
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Capturing:
		return "capturing"
	case Review:
		return "review"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Stream is an open camera.
type Stream interface {
	Frame() ([]byte, error)
	Stop()
}

// Camera opens the device camera.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Position is a geolocation fix. Address may be empty.
type Position struct {
	Latitude  float64
	Longitude float64
	Address   string
}

// Locator obtains the current position.
type Locator interface {
	Locate(ctx context.Context) (Position, error)
}

// Draft is what gets submitted to the ledger.
type Draft struct {
	ID        string
	Photo     string
	Latitude  float64
	Longitude float64
	Address   string
	Type      attendance.EventType
}

// Submitter delivers a draft to the ledger.
type Submitter interface {
	Submit(ctx context.Context, d Draft) error
}

type fix struct {
	pos Position
	err error
}

// Machine is the capture state machine. It is safe for concurrent use, but
// actions are expected to come from a single UI loop.
type Machine struct {
	camera    Camera
	locator   Locator
	submitter Submitter
	newID     func() string

	mu       sync.Mutex
	state    State
	stream   Stream
	frame    []byte
	draftID  string
	typ      attendance.EventType
	fixes    chan fix
	location *fix
	stopFix  context.CancelFunc
	lastErr  error
}

// NewMachine builds an idle machine over the given ports.
func NewMachine(camera Camera, locator Locator, submitter Submitter) *Machine {
	return &Machine{
		camera:    camera,
		locator:   locator,
		submitter: submitter,
		newID:     uuid.NewString,
		typ:       attendance.ClockIn,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the last submission error while in Error.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Type returns the selected event type.
func (m *Machine) Type() attendance.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.typ
}

// Start moves Idle to Capturing. Location lookup runs in the background while
// the camera opens; a camera failure returns the machine to Idle.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Idle {
		return m.invalid("start")
	}

	m.locate(ctx)
	stream, err := m.camera.Open(ctx)
	if err != nil {
		m.reset()
		return fmt.Errorf("open camera: %w", err)
	}
	m.stream = stream
	m.state = Capturing
	return nil
}

// Capture moves Capturing to Review with the current frame and releases the
// camera. Location is attached when it has already resolved.
func (m *Machine) Capture() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Capturing {
		return m.invalid("capture")
	}

	frame, err := m.stream.Frame()
	if err != nil || len(frame) == 0 {
		if err == nil {
			err = errors.New("empty frame")
		}
		return fmt.Errorf("%w: %v", ErrNoFrame, err)
	}
	m.stopStream()
	m.frame = frame
	m.draftID = m.newID()
	m.pollLocation()
	m.state = Review
	return nil
}

// Retake discards the frame and reopens the camera. The location already
// obtained is kept.
func (m *Machine) Retake(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Review {
		return m.invalid("retake")
	}

	m.frame = nil
	m.draftID = ""
	stream, err := m.camera.Open(ctx)
	if err != nil {
		m.reset()
		return fmt.Errorf("open camera: %w", err)
	}
	m.stream = stream
	m.state = Capturing
	return nil
}

// SelectType chooses the event type for the pending draft.
func (m *Machine) SelectType(t attendance.EventType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Review && m.state != Error {
		return m.invalid("select type")
	}
	if !t.Valid() {
		return fmt.Errorf("%w: %q", attendance.ErrInvalidType, t)
	}
	m.typ = t
	return nil
}

// Draft returns the draft that Confirm would submit.
func (m *Machine) Draft() (Draft, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frame == nil {
		return Draft{}, false
	}
	m.pollLocation()
	return m.draft(), true
}

// Confirm submits the draft and waits for the result. On failure the machine
// enters Error with the draft intact; Acknowledge returns to Review.
func (m *Machine) Confirm(ctx context.Context) error {
	m.mu.Lock()
	if m.state != Review && m.state != Error {
		err := m.invalid("confirm")
		m.mu.Unlock()
		return err
	}
	m.pollLocation()
	d := m.draft()
	m.state = Submitting
	m.lastErr = nil
	m.mu.Unlock()

	err := m.submitter.Submit(ctx, d)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = Error
		m.lastErr = err
		return err
	}
	m.state = Success
	return nil
}

// Acknowledge dismisses a submission error and returns to Review.
func (m *Machine) Acknowledge() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Error {
		return m.invalid("acknowledge")
	}
	m.state = Review
	m.lastErr = nil
	return nil
}

// Done returns from Success to Idle and clears the draft.
func (m *Machine) Done() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Success {
		return m.invalid("done")
	}
	m.reset()
	return nil
}

// Cancel abandons the flow from Capturing, Review or Error.
func (m *Machine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.state {
	case Capturing, Review, Error:
		m.reset()
		return nil
	default:
		return m.invalid("cancel")
	}
}

// Close releases the camera and the location lookup. A submission in flight
// is left to finish.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Submitting {
		m.stopStream()
		return
	}
	m.reset()
}

func (m *Machine) invalid(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, m.state)
}

func (m *Machine) locate(ctx context.Context) {
	lctx, cancel := context.WithCancel(ctx)
	ch := make(chan fix, 1)
	m.fixes, m.stopFix, m.location = ch, cancel, nil
	go func() {
		pos, err := m.locator.Locate(lctx)
		ch <- fix{pos: pos, err: err}
	}()
}

func (m *Machine) pollLocation() {
	if m.location != nil || m.fixes == nil {
		return
	}
	select {
	case f := <-m.fixes:
		m.location = &f
		m.fixes = nil
	default:
	}
}

func (m *Machine) draft() Draft {
	d := Draft{
		ID:      m.draftID,
		Photo:   "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(m.frame),
		Address: UnavailableAddress,
		Type:    m.typ,
	}
	if m.location != nil && m.location.err == nil {
		d.Latitude = m.location.pos.Latitude
		d.Longitude = m.location.pos.Longitude
		d.Address = m.location.pos.Address
		if d.Address == "" {
			d.Address = fmt.Sprintf("Latitude: %.4f, Longitude: %.4f", d.Latitude, d.Longitude)
		}
	}
	return d
}

func (m *Machine) stopStream() {
	if m.stream != nil {
		m.stream.Stop()
		m.stream = nil
	}
}

func (m *Machine) reset() {
	m.stopStream()
	if m.stopFix != nil {
		m.stopFix()
	}
	m.state = Idle
	m.frame = nil
	m.draftID = ""
	m.typ = attendance.ClockIn
	m.fixes = nil
	m.location = nil
	m.stopFix = nil
	m.lastErr = nil
}
