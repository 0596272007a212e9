package email

import (
	"bytes"

	"github.com/nfrund/eventhub/internal/domain"
	cmp "maragu.dev/gomponents"
	g "maragu.dev/gomponents/html"
)

// BookingConfirmation renders the subject and HTML body of a booking
// confirmation. qrDataURL is embedded as the ticket image when set.
func BookingConfirmation(b *domain.Booking, qrDataURL string) (string, string, error) {
	title := b.EventTitle
	if title == "" {
		title = "your event"
	}
	subject := "Booking confirmed: " + title

	greeting := "Hi,"
	if b.UserName != "" {
		greeting = "Hi " + b.UserName + ","
	}

	node := g.HTML(
		g.Body(
			g.H1(cmp.Text("You're booked!")),
			g.P(cmp.Text(greeting)),
			g.P(cmp.Textf("Your booking for %s is confirmed.", title)),
			g.Table(
				detailRow("Confirmation code", b.ConfirmationCode),
				cmp.If(b.EventDate != "", detailRow("Date", b.EventDate)),
				cmp.If(b.EventLocation != "", detailRow("Location", b.EventLocation)),
				detailRow("Ticket", b.TicketID),
			),
			cmp.If(qrDataURL != "",
				g.Img(g.Src(qrDataURL), g.Alt("Ticket QR code"), g.Width("256"), g.Height("256")),
			),
			g.P(
				cmp.Text("Show this code at the entrance or open "),
				g.A(g.Href(b.VerificationURL), cmp.Text(b.VerificationURL)),
				cmp.Text("."),
			),
		),
	)

	var buf bytes.Buffer
	if err := node.Render(&buf); err != nil {
		return "", "", err
	}
	return subject, buf.String(), nil
}

func detailRow(label, value string) cmp.Node {
	return g.Tr(g.Td(g.Strong(cmp.Text(label))), g.Td(cmp.Text(value)))
}
