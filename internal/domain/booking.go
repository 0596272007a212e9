package domain

import (
	"context"
	"time"
)

// Booking is a confirmed registration of a user for an event.
type Booking struct {
	ID               string    `json:"id,omitempty"`
	EventID          string    `json:"eventId"`
	UserID           string    `json:"userId"`
	TicketID         string    `json:"ticketId"`
	EventTitle       string    `json:"eventTitle,omitempty"`
	EventDate        string    `json:"eventDate,omitempty"`
	EventLocation    string    `json:"eventLocation,omitempty"`
	UserName         string    `json:"userName,omitempty"`
	UserEmail        string    `json:"userEmail,omitempty"`
	ConfirmationCode string    `json:"confirmationCode"`
	VerificationURL  string    `json:"verificationUrl"`
	CreatedAt        time.Time `json:"createdAt"`
}

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *Booking) (*Booking, error)
	FindByCode(ctx context.Context, code string) (*Booking, error)
}
