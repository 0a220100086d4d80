package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vizhaa-backend/apperr"
	"vizhaa-backend/constants"
	"vizhaa-backend/httpServices/twofactor"
	"vizhaa-backend/logger"
	otpModel "vizhaa-backend/models/otp"
	"vizhaa-backend/services/throttle"
	"vizhaa-backend/utils"

	"gorm.io/gorm"
)

// Service handles OTP session operations
type Service struct {
	DB       *gorm.DB
	Provider twofactor.Provider
	Limiter  throttle.Limiter
	TTL      time.Duration
	Timeout  time.Duration
	now      func() time.Time
}

func NewOTPService(db *gorm.DB, provider twofactor.Provider, limiter throttle.Limiter, timeout time.Duration) *Service {
	if limiter == nil {
		limiter = throttle.Unlimited{}
	}
	return &Service{
		DB:       db,
		Provider: provider,
		Limiter:  limiter,
		TTL:      constants.OTPSessionTTL,
		Timeout:  timeout,
		now:      time.Now,
	}
}

func templateFor(purpose otpModel.Purpose) string {
	if purpose == otpModel.PurposePasswordReset {
		return constants.OTPPasswordResetSMS
	}
	return constants.OTPRegistrationSMS
}

func (s *Service) providerCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// IssueSession sends a code to contact and replaces any earlier session for
// the same contact and purpose.
func (s *Service) IssueSession(ctx context.Context, contact string, purpose otpModel.Purpose, pendingUserType string) (*otpModel.Session, error) {
	if !purpose.IsValid() {
		return nil, apperr.Validation("Invalid OTP purpose")
	}
	contact = utils.NormalizePhone(contact)
	if !utils.ValidatePhoneNumber(contact) {
		return nil, apperr.Validation("Please enter a valid 10-digit phone number",
			apperr.FieldError{Field: "phone", Message: "must be 10 digits"})
	}

	allowed, err := s.Limiter.Allow(ctx, string(purpose)+":"+contact)
	if err != nil {
		logger.Warning(fmt.Sprintf("OTP throttle unavailable, allowing send: %v", err))
		allowed = true
	}
	if !allowed {
		return nil, apperr.ErrTooManyAttempts.With("Too many OTP requests. Please try again later.")
	}

	pctx, cancel := s.providerCtx(ctx)
	defer cancel()
	sessionID, err := s.Provider.SendCode(pctx, utils.ToE164India(contact), templateFor(purpose))
	if err != nil {
		if errors.Is(pctx.Err(), context.DeadlineExceeded) && !errors.Is(err, apperr.ErrProviderTimeout) {
			err = apperr.ErrProviderTimeout.Wrap(err)
		}
		if _, ok := apperr.As(err); !ok {
			err = apperr.ErrProvider.Wrap(err)
		}
		logger.Error("Failed to send OTP to "+contact, err)
		return nil, err
	}

	session := &otpModel.Session{
		Contact:     contact,
		SessionID:   sessionID,
		Purpose:     purpose,
		UserType:    pendingUserType,
		MaxAttempts: constants.OTPMaxAttempts,
		ExpiresAt:   s.now().Add(s.TTL),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contact = ? AND purpose = ?", contact, purpose).Delete(&otpModel.Session{}).Error; err != nil {
			return fmt.Errorf("failed to remove previous sessions: %w", err)
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create OTP session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return session, nil
}

// VerifySession checks code with the provider and marks the stored session verified.
func (s *Service) VerifySession(ctx context.Context, sessionID, contact string, purpose otpModel.Purpose, code string) (*otpModel.Session, error) {
	contact = utils.NormalizePhone(contact)
	session, err := s.find(ctx, sessionID, contact, purpose)
	if err != nil && !errors.Is(err, apperr.ErrSessionNotFound) {
		return nil, err
	}
	if session != nil && session.IsBlocked(s.now()) {
		return nil, apperr.ErrTooManyAttempts
	}

	pctx, cancel := s.providerCtx(ctx)
	defer cancel()
	ok, err := s.Provider.VerifyCode(pctx, sessionID, code)
	if err != nil {
		if errors.Is(pctx.Err(), context.DeadlineExceeded) && !errors.Is(err, apperr.ErrProviderTimeout) {
			err = apperr.ErrProviderTimeout.Wrap(err)
		}
		if _, isApp := apperr.As(err); !isApp {
			err = apperr.ErrProvider.Wrap(err)
		}
		return nil, err
	}
	if !ok {
		if session == nil {
			return nil, apperr.ErrInvalidCode
		}
		session.RecordFailure()
		if err := s.DB.WithContext(ctx).Save(session).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		if session.IsBlocked(s.now()) {
			return nil, apperr.ErrTooManyAttempts.With("Invalid OTP. Maximum attempts exceeded.")
		}
		return nil, apperr.ErrInvalidCode.With(fmt.Sprintf("Invalid OTP. %d attempts remaining", session.RemainingAttempts()))
	}

	if session == nil {
		return nil, apperr.ErrSessionNotFound
	}
	if session.IsExpired(s.now()) {
		s.discard(ctx, session)
		return nil, apperr.ErrSessionExpired
	}
	session.MarkVerified(s.now())
	if err := s.DB.WithContext(ctx).Save(session).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return session, nil
}

// RequireVerified returns the verified, unexpired session gating a registration
// or password reset.
func (s *Service) RequireVerified(ctx context.Context, sessionID, contact string, purpose otpModel.Purpose) (*otpModel.Session, error) {
	session, err := s.find(ctx, sessionID, utils.NormalizePhone(contact), purpose)
	if err != nil {
		if errors.Is(err, apperr.ErrSessionNotFound) {
			return nil, apperr.ErrSessionNotFound.With("Please verify your phone number first")
		}
		return nil, err
	}
	if !session.IsVerified {
		return nil, apperr.ErrSessionNotFound.With("Please verify your phone number first")
	}
	if session.IsExpired(s.now()) {
		s.discard(ctx, session)
		return nil, apperr.ErrSessionExpired
	}
	return session, nil
}

// Expired reports whether session has expired on the service clock.
func (s *Service) Expired(session *otpModel.Session) bool {
	return session.IsExpired(s.now())
}

// discard deletes an expired session; the sweeper retries on failure.
func (s *Service) discard(ctx context.Context, session *otpModel.Session) {
	if err := s.DB.WithContext(ctx).Delete(session).Error; err != nil {
		logger.Warning(fmt.Sprintf("Expired OTP session %s was not deleted: %v", session.ID, err))
	}
}

// ConsumeSession deletes a used session so it cannot be replayed.
func (s *Service) ConsumeSession(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&otpModel.Session{})
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrSessionNotFound
	}
	return nil
}

// Status reports the state of a session without changing it.
func (s *Service) Status(ctx context.Context, sessionID, contact string, purpose otpModel.Purpose) (*otpModel.Session, error) {
	return s.find(ctx, sessionID, utils.NormalizePhone(contact), purpose)
}

// SweepExpired removes expired sessions and returns how many were deleted.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	res := s.DB.WithContext(ctx).Where("expires_at < ?", s.now()).Delete(&otpModel.Session{})
	return res.RowsAffected, res.Error
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.SweepExpired(ctx)
			if err != nil {
				logger.Error("Failed to sweep expired OTP sessions", err)
			} else if n > 0 {
				logger.Debug(fmt.Sprintf("Removed %d expired OTP sessions", n))
			}
		}
	}
}

// DevCode exposes the issued code when the fake provider is wired.
func (s *Service) DevCode(sessionID string) string {
	if fake, ok := s.Provider.(*twofactor.Fake); ok {
		return fake.CodeFor(sessionID)
	}
	return ""
}

func (s *Service) find(ctx context.Context, sessionID, contact string, purpose otpModel.Purpose) (*otpModel.Session, error) {
	var session otpModel.Session
	err := s.DB.WithContext(ctx).
		Where("session_id = ? AND contact = ? AND purpose = ?", sessionID, contact, purpose).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrSessionNotFound
		}
		return nil, apperr.Internal(err)
	}
	return &session, nil
}
