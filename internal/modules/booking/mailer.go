package booking

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/nfrund/eventhub/internal/domain"
	"github.com/nfrund/eventhub/internal/email"
	"github.com/nfrund/eventhub/internal/pubsub"
	"github.com/nfrund/eventhub/internal/storage"
)

// Mailer emails a confirmation for every booking.confirmed event.
type Mailer struct {
	subscriber pubsub.Subscriber
	emailer    domain.EmailSender
	files      storage.Store
}

// NewMailer creates a Mailer.
func NewMailer(subscriber pubsub.Subscriber, emailer domain.EmailSender, files storage.Store) *Mailer {
	return &Mailer{subscriber: subscriber, emailer: emailer, files: files}
}

// Start subscribes to booking confirmations until ctx is cancelled.
func (m *Mailer) Start(ctx context.Context) error {
	slog.Info("Booking mailer subscribed", "topic", BookingConfirmed.Name())
	return pubsub.Subscribe(ctx, m.subscriber, BookingConfirmed, m.handle)
}

func (m *Mailer) handle(ctx context.Context, _ string, b domain.Booking) error {
	if b.UserEmail == "" {
		slog.Debug("Booking has no email address, skipping confirmation", "code", b.ConfirmationCode)
		return nil
	}

	qr, err := m.qrDataURL(ctx, b.ConfirmationCode)
	if err != nil {
		slog.Warn("Sending confirmation without QR code", "code", b.ConfirmationCode, "error", err)
	}

	subject, body, err := email.BookingConfirmation(&b, qr)
	if err != nil {
		return fmt.Errorf("render confirmation %s: %w", b.ConfirmationCode, err)
	}
	if err := m.emailer.Send(ctx, b.UserEmail, subject, body); err != nil {
		return fmt.Errorf("send confirmation %s: %w", b.ConfirmationCode, err)
	}
	return nil
}

func (m *Mailer) qrDataURL(ctx context.Context, code string) (string, error) {
	f, err := m.files.Open(ctx, qrPath(code))
	if err != nil {
		return "", err
	}
	defer f.Close()
	png, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return pngDataURL(png), nil
}
