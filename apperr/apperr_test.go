package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestSentinelSurvivesWrapAndCopy(t *testing.T) {
	wrapped := fmt.Errorf("apply: %w", ErrNoAvailableSlots.With("event is full"))
	if !errors.Is(wrapped, ErrNoAvailableSlots) {
		t.Fatal("errors.Is should match a copied sentinel through fmt wrapping")
	}
	if errors.Is(wrapped, ErrServiceMismatch) {
		t.Fatal("different sentinels must not match")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *Error
		want int
	}{
		{Validation("bad"), fiber.StatusBadRequest},
		{ErrAlreadyApplied, fiber.StatusBadRequest},
		{ErrEventNotFound, fiber.StatusNotFound},
		{Unauthorized("no"), fiber.StatusUnauthorized},
		{ErrInvalidCode, fiber.StatusBadRequest},
		{ErrProvider, fiber.StatusBadGateway},
		{ErrProviderTimeout, fiber.StatusGatewayTimeout},
		{Internal(errors.New("boom")), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.err.HTTPStatus(); got != tt.want {
			t.Errorf("%s: HTTPStatus() = %d, want %d", tt.err.Code, got, tt.want)
		}
	}
}

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", ErrPhoneTaken)
	e, ok := As(err)
	if !ok || e.Code != "phone_taken" {
		t.Fatalf("As() = %v, %v", e, ok)
	}
	if !IsKind(err, KindConflict) {
		t.Fatal("expected conflict kind")
	}
}
