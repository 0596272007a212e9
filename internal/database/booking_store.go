package database

import (
	"context"

	"github.com/nfrund/eventhub/internal/config"
	"github.com/nfrund/eventhub/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

type bookingRecord struct {
	ID               *surrealmodels.RecordID       `json:"id,omitempty"`
	EventID          string                        `json:"event_id"`
	UserID           string                        `json:"user_id"`
	TicketID         string                        `json:"ticket_id"`
	EventTitle       string                        `json:"event_title,omitempty"`
	EventDate        string                        `json:"event_date,omitempty"`
	EventLocation    string                        `json:"event_location,omitempty"`
	UserName         string                        `json:"user_name,omitempty"`
	UserEmail        string                        `json:"user_email,omitempty"`
	ConfirmationCode string                        `json:"confirmation_code"`
	VerificationURL  string                        `json:"verification_url"`
	CreatedAt        *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
}

func (r *bookingRecord) toDomain() *domain.Booking {
	return &domain.Booking{
		ID:               recordString(r.ID),
		EventID:          r.EventID,
		UserID:           r.UserID,
		TicketID:         r.TicketID,
		EventTitle:       r.EventTitle,
		EventDate:        r.EventDate,
		EventLocation:    r.EventLocation,
		UserName:         r.UserName,
		UserEmail:        r.UserEmail,
		ConfirmationCode: r.ConfirmationCode,
		VerificationURL:  r.VerificationURL,
		CreatedAt:        timeOf(r.CreatedAt),
	}
}

var _ domain.BookingRepository = (*BookingStore)(nil)

// BookingStore implements domain.BookingRepository.
type BookingStore struct {
	client Client[bookingRecord]
}

// NewBookingStore creates a booking store over conn.
func NewBookingStore(conn Conn, cfg config.Provider, opts ...ClientOption[bookingRecord]) (*BookingStore, error) {
	client, err := NewClient[bookingRecord](conn, cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &BookingStore{client: client}, nil
}

// Create persists b and returns the stored booking.
func (s *BookingStore) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if b == nil || b.ConfirmationCode == "" {
		return nil, NewDBError(ErrInvalidInput, "booking confirmation code is required")
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = timeNow()
	}
	rec := bookingRecord{
		EventID:          b.EventID,
		UserID:           b.UserID,
		TicketID:         b.TicketID,
		EventTitle:       b.EventTitle,
		EventDate:        b.EventDate,
		EventLocation:    b.EventLocation,
		UserName:         b.UserName,
		UserEmail:        b.UserEmail,
		ConfirmationCode: b.ConfirmationCode,
		VerificationURL:  b.VerificationURL,
		CreatedAt:        datetime(b.CreatedAt),
	}
	created, err := s.client.QueryOne(ctx, "CREATE booking CONTENT $data", map[string]any{"data": rec})
	if err != nil {
		return nil, WrapError(err, "create booking")
	}
	if created == nil {
		return nil, NewDBError(ErrNotFound, "create booking returned no record")
	}
	return created.toDomain(), nil
}

// FindByCode returns the booking with the given confirmation code.
func (s *BookingStore) FindByCode(ctx context.Context, code string) (*domain.Booking, error) {
	rec, err := s.client.QueryOne(ctx, "SELECT * FROM booking WHERE confirmation_code = $code LIMIT 1", map[string]any{"code": code})
	if err != nil {
		return nil, WrapError(err, "find booking")
	}
	if rec == nil {
		return nil, NewDBError(ErrNotFound, "booking "+code)
	}
	return rec.toDomain(), nil
}
