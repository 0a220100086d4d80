package otp

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purpose is what a verified session can be used for.
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"
	PurposePasswordReset Purpose = "password_reset"
)

func (p Purpose) IsValid() bool {
	return p == PurposeRegistration || p == PurposePasswordReset
}

// Session is a short-lived phone verification record. The code itself lives
// with the provider; SessionID is the provider's handle for it.
type Session struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Contact      string     `gorm:"type:varchar(255);not null;index:idx_otp_contact_purpose" json:"contact"`
	SessionID    string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"sessionId"`
	Purpose      Purpose    `gorm:"type:varchar(30);not null;index:idx_otp_contact_purpose" json:"purpose"`
	UserType     string     `gorm:"type:varchar(20)" json:"userType,omitempty"`
	IsVerified   bool       `gorm:"default:false" json:"isVerified"`
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty"`
	Attempts     int        `gorm:"default:0" json:"attempts"`
	MaxAttempts  int        `gorm:"default:3" json:"maxAttempts"`
	BlockedUntil *time.Time `json:"blockedUntil,omitempty"`
	ExpiresAt    time.Time  `gorm:"not null;index" json:"expiresAt"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Session) TableName() string {
	return "otp_sessions"
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// IsBlocked reports whether failed attempts lock the session at now.
func (s *Session) IsBlocked(now time.Time) bool {
	return s.BlockedUntil != nil && now.Before(*s.BlockedUntil)
}

// RecordFailure counts a rejected code and blocks the session after MaxAttempts.
func (s *Session) RecordFailure() {
	s.Attempts++
	if s.MaxAttempts > 0 && s.Attempts >= s.MaxAttempts {
		until := s.ExpiresAt
		s.BlockedUntil = &until
	}
}

// MarkVerified flags the session as verified at t.
func (s *Session) MarkVerified(t time.Time) {
	s.IsVerified = true
	s.VerifiedAt = &t
}

// RemainingAttempts returns how many verification tries are left.
func (s *Session) RemainingAttempts() int {
	if n := s.MaxAttempts - s.Attempts; n > 0 {
		return n
	}
	return 0
}
