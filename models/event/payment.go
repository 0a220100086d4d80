package event

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentPartial   PaymentStatus = "Partial"
	PaymentCompleted PaymentStatus = "Completed"
)

func (ps PaymentStatus) IsValid() bool {
	switch ps {
	case PaymentPending, PaymentPartial, PaymentCompleted:
		return true
	default:
		return false
	}
}

// Payment is embedded into the events table with a payment_ prefix.
type Payment struct {
	TotalAmount   float64              `gorm:"default:0" json:"totalAmount"`
	AdvancePaid   float64              `gorm:"default:0" json:"advancePaid"`
	PaymentStatus PaymentStatus        `gorm:"type:varchar(20);default:'Pending'" json:"paymentStatus"`
	Transactions  []PaymentTransaction `gorm:"-" json:"transactions"`
}

type PaymentTransaction struct {
	ID            string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	EventID       string    `gorm:"type:varchar(36);not null;index" json:"-"`
	Amount        float64   `gorm:"not null" json:"amount"`
	PaymentDate   time.Time `json:"paymentDate"`
	PaymentMethod string    `gorm:"type:varchar(50)" json:"paymentMethod,omitempty"`
	TransactionID string    `gorm:"type:varchar(100)" json:"transactionId,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}

func (t *PaymentTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.PaymentDate.IsZero() {
		t.PaymentDate = time.Now()
	}
	return nil
}
