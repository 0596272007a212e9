package booking

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/pubsub"
	"github.com/nfrund/eventhub/internal/storage"
	"github.com/skip2/go-qrcode"
)

// BookingConfirmed is published after a booking has been stored.
var BookingConfirmed = pubsub.NewEvent[domain.Booking]("booking.confirmed")

// ErrMissingParams is returned when eventId, userId or ticketId is empty.
var ErrMissingParams = errors.New("missing required parameters")

const (
	codePrefixLen = 4
	qrSize        = 256
)

// ConfirmRequest is the body of POST /api/bookings/confirm.
type ConfirmRequest struct {
	EventID       string `json:"eventId"`
	UserID        string `json:"userId"`
	TicketID      string `json:"ticketId"`
	EventTitle    string `json:"eventTitle"`
	EventDate     string `json:"eventDate"`
	EventLocation string `json:"eventLocation"`
	UserName      string `json:"userName"`
	UserEmail     string `json:"userEmail"`
}

// Confirmation is the successful answer of a booking confirmation.
type Confirmation struct {
	Success          bool   `json:"success"`
	ConfirmationCode string `json:"confirmationCode"`
	QRCodeURL        string `json:"qrCodeUrl"`
	VerificationURL  string `json:"verificationUrl"`
}

// ConfirmationCode derives the human-readable code of a booking made at t:
// up to four leading alphanumerics of eventID, a dash, and the base-36 unix
// milliseconds, all upper case.
func ConfirmationCode(eventID string, t time.Time) string {
	var prefix strings.Builder
	for _, r := range eventID {
		if prefix.Len() == codePrefixLen {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			prefix.WriteRune(r)
		}
	}
	return strings.ToUpper(prefix.String()) + "-" + strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36))
}

// qrPath is where the QR image of code is kept in file storage.
func qrPath(code string) string {
	return "qr/" + code + ".png"
}

func pngDataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// Service confirms bookings.
type Service struct {
	bookings  domain.BookingRepository
	rooms     domain.RoomRepository
	files     storage.Store
	publisher pubsub.Publisher
	baseURL   string
	now       func() time.Time
}

// NewService creates a Service. baseURL prefixes verification links.
func NewService(bookings domain.BookingRepository, rooms domain.RoomRepository, files storage.Store, publisher pubsub.Publisher, baseURL string) *Service {
	return &Service{
		bookings:  bookings,
		rooms:     rooms,
		files:     files,
		publisher: publisher,
		baseURL:   strings.TrimRight(baseURL, "/"),
		now:       time.Now,
	}
}

// Confirm stores a booking, renders its QR code and adds the user to the
// event chat.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (*Confirmation, error) {
	if req.EventID == "" || req.UserID == "" || req.TicketID == "" {
		return nil, ErrMissingParams
	}

	now := s.now()
	code := ConfirmationCode(req.EventID, now)
	verificationURL := s.baseURL + "/verify/" + code

	png, err := qrcode.Encode(verificationURL, qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}
	if _, err := s.files.Save(ctx, qrPath(code), bytes.NewReader(png)); err != nil {
		return nil, fmt.Errorf("store QR code: %w", err)
	}

	created, err := s.bookings.Create(ctx, &domain.Booking{
		EventID:          req.EventID,
		UserID:           req.UserID,
		TicketID:         req.TicketID,
		EventTitle:       req.EventTitle,
		EventDate:        req.EventDate,
		EventLocation:    req.EventLocation,
		UserName:         req.UserName,
		UserEmail:        req.UserEmail,
		ConfirmationCode: code,
		VerificationURL:  verificationURL,
		CreatedAt:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("store booking: %w", err)
	}

	if err := s.rooms.AddParticipant(ctx, req.EventID, req.UserID); err != nil {
		// Events without a chat room are still bookable.
		slog.Warn("Could not add booker to event chat", "eventID", req.EventID, "userID", req.UserID, "error", err)
	}
	if err := pubsub.Publish(ctx, s.publisher, BookingConfirmed, req.UserID, *created); err != nil {
		slog.Warn("Failed to publish booking confirmation", "code", code, "error", err)
	}

	return &Confirmation{
		Success:          true,
		ConfirmationCode: code,
		QRCodeURL:        pngDataURL(png),
		VerificationURL:  verificationURL,
	}, nil
}

// Verify returns the booking with code.
func (s *Service) Verify(ctx context.Context, code string) (*domain.Booking, error) {
	return s.bookings.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// QRCode opens the stored QR image of code.
func (s *Service) QRCode(ctx context.Context, code string) (io.ReadCloser, error) {
	return s.files.Open(ctx, qrPath(strings.ToUpper(code)))
}
