package notify

import (
	"context"
	"errors"
	"testing"
)

type scriptedNotifier struct {
	name  string
	err   error
	calls int
}

func (n *scriptedNotifier) Name() string { return n.name }

func (n *scriptedNotifier) Notify(ctx context.Context, _ Notification) error {
	_ = ctx
	n.calls++
	return n.err
}

func TestFanoutCollectsIndependentOutcomes(t *testing.T) {
	push := &scriptedNotifier{name: "pushover"}
	email := &scriptedNotifier{name: "email", err: errors.New("smtp: connection refused")}

	deliveries := Fanout(context.Background(), nil, []Notifier{push, email}, Notification{Message: "hi"})

	if len(deliveries) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(deliveries))
	}
	if !Delivered(deliveries, "pushover") {
		t.Fatal("expected pushover to be delivered")
	}
	if Delivered(deliveries, "email") {
		t.Fatal("expected email to fail")
	}
	if deliveries[1].Err == nil {
		t.Fatal("expected email delivery to carry its error")
	}
}

func TestFanoutFailureDoesNotBlockLaterNotifiers(t *testing.T) {
	first := &scriptedNotifier{name: "pushover", err: errors.New("pushover: status 500")}
	second := &scriptedNotifier{name: "email"}

	deliveries := Fanout(context.Background(), nil, []Notifier{first, second}, Notification{Message: "hi"})

	if second.calls != 1 {
		t.Fatal("expected second notifier to be attempted after first failed")
	}
	if !Delivered(deliveries, "email") {
		t.Fatal("expected email to succeed")
	}
}

func TestFanoutSkipsUnconfiguredNotifier(t *testing.T) {
	skipped := &scriptedNotifier{name: "email", err: ErrNotConfigured}

	deliveries := Fanout(context.Background(), nil, []Notifier{skipped}, Notification{Message: "hi"})

	if Delivered(deliveries, "email") {
		t.Fatal("expected unconfigured notifier to report not delivered")
	}
	if deliveries[0].Err != nil {
		t.Fatalf("expected skip, not failure, got %v", deliveries[0].Err)
	}
}

func TestDeliveredUnknownName(t *testing.T) {
	if Delivered(nil, "pushover") {
		t.Fatal("expected false for unknown channel")
	}
}
