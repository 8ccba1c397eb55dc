package message

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AkshatJangid787/concert-ticket-booking/entity"
	"github.com/AkshatJangid787/concert-ticket-booking/event"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
)

type ShowReader interface {
	Get(ctx context.Context, showID string) (entity.Show, error)
}

type Notifier interface {
	Send(ctx context.Context, recipient, subject, content string) error
}

func handleNotifyBuyerConfirmed(shows ShowReader, n Notifier) func(ctx context.Context, e *event.ReservationConfirmed) error {
	return func(ctx context.Context, e *event.ReservationConfirmed) error {
		show, err := shows.Get(ctx, e.ShowID)
		if errors.Is(err, entity.ErrNotFound) {
			log.FromContext(ctx).WithField("show_id", e.ShowID).Info("Show deleted, skipping confirmation email")
			return nil
		}
		if err != nil {
			return fmt.Errorf("getting show: %w", err)
		}

		subject := "Your ticket for " + show.Title
		if err := n.Send(ctx, e.BuyerEmail, subject, confirmationContent(e, show)); err != nil {
			return fmt.Errorf("sending confirmation email: %w", err)
		}

		return nil
	}
}

func confirmationContent(e *event.ReservationConfirmed, show entity.Show) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your payment was received and your seat for %s is confirmed.\n\n", show.Title)
	fmt.Fprintf(&b, "Reservation: %s\n", e.ReservationID)
	fmt.Fprintf(&b, "Payment: %s\n", e.PaymentRef)
	fmt.Fprintf(&b, "Starts at: %s\n", show.StartTime.UTC().Format(time.RFC1123))
	if show.LiveEnabled && show.LiveLink != "" {
		fmt.Fprintf(&b, "Live stream: %s\n", show.LiveLink)
	}

	return b.String()
}
