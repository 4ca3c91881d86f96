// Package booking implements the in-memory ticket booking service: creating
// bookings with deterministic fares, lookup by booking ID, cancellation, and
// listing. Bookings live for the lifetime of the process; persistence is out
// of scope for the demo service.
package booking

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status of a booking.
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Fare parameters. The fare is deterministic from the station pair so that
// repeated inquiries for the same route always agree.
const (
	baseFare     = 10
	maxDistance  = 50
	maxTickets   = 10
	idRandomLen  = 4 // random bytes; hex-encoded to 8 chars
	bookingIDTag = "BM"
)

// ErrNotFound is returned when no booking exists for the given ID.
var ErrNotFound = errors.New("booking: not found")

// Booking is one confirmed or cancelled ticket purchase.
type Booking struct {
	ID        string    `json:"booking_id"`
	From      string    `json:"from_station"`
	To        string    `json:"to_station"`
	Quantity  int       `json:"quantity"`
	Price     int       `json:"price"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Service is the mutex-guarded in-memory booking store. Safe for concurrent
// use.
type Service struct {
	mu       sync.RWMutex
	bookings map[string]Booking
	log      *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an empty booking Service.
func NewService(opts ...Option) *Service {
	s := &Service{
		bookings: make(map[string]Booking),
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Create books quantity tickets from one station to another and returns the
// confirmed booking. Station names are stored as given; callers are expected
// to pass canonical names from the station catalog.
func (s *Service) Create(_ context.Context, from, to string, quantity int) (Booking, error) {
	if from == "" || to == "" {
		return Booking{}, fmt.Errorf("booking: both stations are required")
	}
	if quantity < 1 || quantity > maxTickets {
		return Booking{}, fmt.Errorf("booking: quantity %d out of range [1, %d]", quantity, maxTickets)
	}

	id, err := newBookingID()
	if err != nil {
		return Booking{}, fmt.Errorf("booking: generate id: %w", err)
	}

	b := Booking{
		ID:        id,
		From:      from,
		To:        to,
		Quantity:  quantity,
		Price:     Fare(from, to) * quantity,
		Status:    StatusConfirmed,
		CreatedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.bookings[b.ID] = b
	s.mu.Unlock()

	s.log.Info("booking created",
		"bookingID", b.ID,
		"from", b.From,
		"to", b.To,
		"quantity", b.Quantity,
		"price", b.Price,
	)
	return b, nil
}

// Get returns the booking with the given ID. IDs are case-insensitive.
func (s *Service) Get(_ context.Context, id string) (Booking, error) {
	s.mu.RLock()
	b, ok := s.bookings[strings.ToUpper(id)]
	s.mu.RUnlock()
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

// Cancel flips a confirmed booking to cancelled and returns the updated
// booking. Cancelling a booking that is already cancelled is not an error;
// the booking is returned unchanged.
func (s *Service) Cancel(_ context.Context, id string) (Booking, error) {
	key := strings.ToUpper(id)

	s.mu.Lock()
	b, ok := s.bookings[key]
	if ok && b.Status != StatusCancelled {
		b.Status = StatusCancelled
		s.bookings[key] = b
	}
	s.mu.Unlock()

	if !ok {
		return Booking{}, ErrNotFound
	}
	s.log.Info("booking cancelled", "bookingID", b.ID)
	return b, nil
}

// List returns all bookings, newest first.
func (s *Service) List(_ context.Context) []Booking {
	s.mu.RLock()
	out := make([]Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Fare returns the per-ticket fare between two stations. The fare is the base
// fare plus a pseudo-distance derived from hashing both station names, so it
// is stable across processes, symmetric, and never zero.
func Fare(from, to string) int {
	return baseFare + distanceFactor(from, to)
}

// distanceFactor hashes both canonical station names into [0, maxDistance)
// buckets and returns the absolute difference. Symmetric by construction.
func distanceFactor(from, to string) int {
	d := stationBucket(from) - stationBucket(to)
	if d < 0 {
		d = -d
	}
	return d
}

func stationBucket(name string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return int(h.Sum32() % maxDistance)
}

// newBookingID returns "BM" followed by 8 uppercase hex characters.
func newBookingID() (string, error) {
	buf := make([]byte, idRandomLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return bookingIDTag + strings.ToUpper(hex.EncodeToString(buf)), nil
}
