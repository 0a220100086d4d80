package metrics

import (
	"errors"
	"testing"

	"vizhaa-backend/apperr"
)

func TestResult(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{apperr.ErrAlreadyApplied, "already_applied"},
		{apperr.ErrInvalidCode.With("Invalid OTP. 2 attempts remaining"), "invalid_code"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		if got := Result(tt.err); got != tt.want {
			t.Errorf("Result(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestMustRegisterTwice(t *testing.T) {
	MustRegister()
	MustRegister()
	LoginsTotal.WithLabelValues("success").Inc()
}
