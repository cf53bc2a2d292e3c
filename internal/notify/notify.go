// Package notify fans a summary out to the configured delivery channels.
package notify

import (
	"context"
	"errors"
	"log/slog"
)

// ErrNotConfigured marks a notifier whose credentials are absent. The channel
// is skipped silently rather than treated as a failure.
var ErrNotConfigured = errors.New("notifier not configured")

type Notification struct {
	Title   string
	Message string
	URL     string
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// Delivery is the per-channel outcome of a fanout.
type Delivery struct {
	Name      string
	Delivered bool
	Err       error
}

// Fanout attempts every notifier and collects an outcome per channel. One
// channel failing never prevents the others from being attempted, and never
// masks their success.
func Fanout(ctx context.Context, logger *slog.Logger, notifiers []Notifier, n Notification) []Delivery {
	if logger == nil {
		logger = slog.Default()
	}
	deliveries := make([]Delivery, 0, len(notifiers))
	for _, notifier := range notifiers {
		delivery := Delivery{Name: notifier.Name()}
		err := notifier.Notify(ctx, n)
		switch {
		case err == nil:
			delivery.Delivered = true
		case errors.Is(err, ErrNotConfigured):
			logger.Debug("notifier skipped", "notifier", delivery.Name)
		default:
			delivery.Err = err
			logger.Warn("notifier failed", "notifier", delivery.Name, "error", err)
		}
		deliveries = append(deliveries, delivery)
	}
	return deliveries
}

// Delivered reports whether the named channel succeeded in a fanout result.
func Delivered(deliveries []Delivery, name string) bool {
	for _, d := range deliveries {
		if d.Name == name {
			return d.Delivered
		}
	}
	return false
}
