package booking

import (
	"time"

	"vizhaa-backend/models/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is a supplier's application to an event.
type Booking struct {
	ID               string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID          string             `gorm:"type:varchar(36);not null;uniqueIndex:idx_bookings_event_supplier;index" json:"eventId"`
	SupplierID       string             `gorm:"type:varchar(36);not null;uniqueIndex:idx_bookings_event_supplier;index" json:"supplierId"`
	OrganizerID      string             `gorm:"type:varchar(36);not null;index" json:"organizerId"`
	Services         common.StringSlice `gorm:"type:text" json:"services"`
	ProposedPrice    float64            `gorm:"default:0" json:"proposedPrice"`
	Message          string             `gorm:"type:text" json:"message,omitempty"`
	Status           Status             `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	OrganizerMessage string             `gorm:"type:text" json:"organizerMessage,omitempty"`
	StatusUpdatedAt  *time.Time         `json:"statusUpdatedAt,omitempty"`
	ConfirmedAt      *time.Time         `json:"confirmedAt,omitempty"`
	CompletedAt      *time.Time         `json:"completedAt,omitempty"`
	CreatedAt        time.Time          `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt        time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = StatusPending
	}
	return nil
}

// ApplyStatus moves the booking to next and stamps the matching timestamps.
func (b *Booking) ApplyStatus(next Status, at time.Time) error {
	if err := b.Status.CanTransitionTo(next); err != nil {
		return err
	}
	b.Status = next
	b.StatusUpdatedAt = &at
	switch next {
	case StatusConfirmed:
		b.ConfirmedAt = &at
	case StatusCompleted:
		b.CompletedAt = &at
	}
	return nil
}

// Slot is the roster view of a booking on its event.
type Slot struct {
	BookingID  string    `json:"bookingId"`
	SupplierID string    `json:"supplierId"`
	BookedAt   time.Time `json:"bookedAt"`
	Status     Status    `json:"status"`
}

func (b *Booking) Slot() Slot {
	return Slot{BookingID: b.ID, SupplierID: b.SupplierID, BookedAt: b.CreatedAt, Status: b.Status}
}
