package booking

import (
	"time"
)

// BookingStatusEvent records one status change of a booking.
type BookingStatusEvent struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	BookingID string  `gorm:"type:varchar(36);not null;index" json:"bookingId"`
	Booking   Booking `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE" json:"-"`

	FromStatus Status    `gorm:"size:20" json:"fromStatus,omitempty"`
	ToStatus   Status    `gorm:"size:20;not null" json:"toStatus"`
	ChangedBy  string    `gorm:"type:varchar(36);not null" json:"changedBy"`
	Note       string    `gorm:"type:text" json:"note,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName sets the table name for the BookingStatusEvent model
func (BookingStatusEvent) TableName() string {
	return "booking_status_events"
}
