package event

import (
	"time"

	"vizhaa-backend/models/booking"
	"vizhaa-backend/models/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is an organizer-owned occasion that needs suppliers.
type Event struct {
	ID                string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrganizerID       string           `gorm:"type:varchar(36);not null;index" json:"organizerId"`
	EventName         string           `gorm:"type:varchar(100);not null" json:"eventName"`
	EventType         string           `gorm:"type:varchar(50);not null" json:"eventType"`
	Location          string           `gorm:"type:varchar(200);not null" json:"location"`
	NumberOfSuppliers int              `gorm:"not null" json:"numberOfSuppliers"`
	EventDate         time.Time        `gorm:"not null;index" json:"eventDate"`
	EventTime         string           `gorm:"type:varchar(5);not null" json:"eventTime"`
	DressCodeOptions  DressCodeOptions `gorm:"embedded;embeddedPrefix:dress_code_" json:"dressCodeOptions"`
	Budget            float64          `gorm:"default:0" json:"budget"`
	Notes             string           `gorm:"type:text" json:"notes,omitempty"`
	Status            Status           `gorm:"type:varchar(20);not null;default:'Draft';index" json:"status"`
	Payment           Payment          `gorm:"embedded;embeddedPrefix:payment_" json:"payment"`

	Services     []EventService       `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Transactions []PaymentTransaction `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`
	Bookings     []booking.Booking    `gorm:"foreignKey:EventID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	// Response-only projections.
	ServicesNeeded  []string       `gorm:"-" json:"servicesNeeded"`
	BookedSuppliers []booking.Slot `gorm:"-" json:"bookedSuppliers"`
	Organizer       *user.Contact  `gorm:"-" json:"organizer,omitempty"`
}

func (Event) TableName() string {
	return "events"
}

func (e *Event) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Status == "" {
		e.Status = StatusDraft
	}
	if e.Payment.PaymentStatus == "" {
		e.Payment.PaymentStatus = PaymentPending
	}
	return nil
}

// AfterFind flattens the preloaded rows into the response fields.
func (e *Event) AfterFind(tx *gorm.DB) error {
	e.Hydrate()
	return nil
}

// Hydrate fills ServicesNeeded and Payment.Transactions from the child rows.
func (e *Event) Hydrate() {
	e.ServicesNeeded = make([]string, 0, len(e.Services))
	for _, s := range e.Services {
		e.ServicesNeeded = append(e.ServicesNeeded, s.Service)
	}
	e.Payment.Transactions = e.Transactions
	if e.Payment.Transactions == nil {
		e.Payment.Transactions = []PaymentTransaction{}
	}
	if e.BookedSuppliers == nil {
		e.BookedSuppliers = []booking.Slot{}
	}
}

// SetServices replaces the service rows from a list of names.
func (e *Event) SetServices(names []string) {
	e.Services = make([]EventService, 0, len(names))
	for _, n := range names {
		e.Services = append(e.Services, EventService{EventID: e.ID, Service: n})
	}
}

// AvailableSlots returns how many roster positions remain.
func (e *Event) AvailableSlots(booked int64) int64 {
	if n := int64(e.NumberOfSuppliers) - booked; n > 0 {
		return n
	}
	return 0
}

type DressCodeOptions struct {
	Premium string `gorm:"type:text" json:"premium,omitempty"`
	Gold    string `gorm:"type:text" json:"gold,omitempty"`
	Silver  string `gorm:"type:text" json:"silver,omitempty"`
}

// EventService is one requested service category.
type EventService struct {
	ID      uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	EventID string `gorm:"type:varchar(36);not null;index" json:"-"`
	Service string `gorm:"type:varchar(50);not null;index" json:"service"`
}

func (EventService) TableName() string {
	return "event_services"
}
