package booking

import (
	"errors"
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusRejected, false},
		{StatusRejected, StatusConfirmed, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
	}
	for _, tt := range tests {
		err := tt.from.CanTransitionTo(tt.to)
		if (err == nil) != tt.ok {
			t.Errorf("%s -> %s: err = %v, want ok=%v", tt.from, tt.to, err, tt.ok)
		}
		var te ErrTransition
		if err != nil && !errors.As(err, &te) {
			t.Errorf("%s -> %s: error should be ErrTransition, got %T", tt.from, tt.to, err)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusRejected, StatusCompleted, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	if StatusPending.IsTerminal() || StatusConfirmed.IsTerminal() {
		t.Fatal("pending and confirmed are not terminal")
	}
}

func TestApplyStatusStampsTimes(t *testing.T) {
	b := &Booking{Status: StatusPending}
	now := time.Now()

	if err := b.ApplyStatus(StatusConfirmed, now); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if b.ConfirmedAt == nil || !b.ConfirmedAt.Equal(now) {
		t.Fatal("ConfirmedAt not stamped")
	}
	if err := b.ApplyStatus(StatusCompleted, now.Add(time.Hour)); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if b.CompletedAt == nil || b.Status != StatusCompleted {
		t.Fatal("CompletedAt not stamped")
	}
	if err := b.ApplyStatus(StatusCancelled, now); err == nil {
		t.Fatal("completed booking must not be cancellable")
	}
}

func TestIsDecision(t *testing.T) {
	if StatusPending.IsDecision() {
		t.Fatal("Pending is not an organizer decision")
	}
	if !StatusCancelled.IsDecision() {
		t.Fatal("Cancelled is an organizer decision")
	}
	if Status("Accepted").IsDecision() {
		t.Fatal("unknown status accepted")
	}
}
