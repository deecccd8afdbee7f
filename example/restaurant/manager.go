package main

import (
	"context"
	"log/slog"

	"github.com/tbxark/formbot/form"
	"github.com/tbxark/formbot/types"
)

var _ form.Manager = (*BookingManager)(nil)

type BookingManager struct {
	form *form.RestaurantForm
}

func (m *BookingManager) Cancel(ctx context.Context, tracker *types.Tracker) error {
	slog.Debug("Booking cancelled", "sender", tracker.SenderID, "slots", tracker.Slots)
	return nil
}

func (m *BookingManager) Submit(ctx context.Context, tracker *types.Tracker) error {
	slog.Info("Booking submitted", "sender", tracker.SenderID, "booking", m.form.Booking(tracker))
	return nil
}
