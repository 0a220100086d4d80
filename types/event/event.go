package event

// DressCode mirrors the three dress tiers an organizer can describe.
type DressCode struct {
	Premium string `json:"premium" validate:"omitempty,max=500"`
	Gold    string `json:"gold" validate:"omitempty,max=500"`
	Silver  string `json:"silver" validate:"omitempty,max=500"`
}

// CreateEventRequest represents the request payload for creating an event
type CreateEventRequest struct {
	EventName         string    `json:"eventName" validate:"required,min=2,max=100"`
	EventType         string    `json:"eventType" validate:"required,min=2,max=50"`
	Location          string    `json:"location" validate:"required,min=5,max=200"`
	NumberOfSuppliers int       `json:"numberOfSuppliers" validate:"required,min=1"`
	EventDate         string    `json:"eventDate" validate:"required"`
	EventTime         string    `json:"eventTime" validate:"required,hhmm"`
	DressCodeOptions  DressCode `json:"dressCodeOptions"`
	ServicesNeeded    []string  `json:"servicesNeeded" validate:"omitempty,dive,service"`
	Budget            float64   `json:"budget" validate:"min=0"`
	Notes             string    `json:"notes" validate:"omitempty,max=1000"`
	Status            string    `json:"status" validate:"omitempty,oneof=Draft Planning Confirmed"`
}

// UpdateEventRequest carries only the fields an organizer may change.
// Absent fields are left untouched.
type UpdateEventRequest struct {
	EventName         *string    `json:"eventName" validate:"omitempty,min=2,max=100"`
	EventType         *string    `json:"eventType" validate:"omitempty,min=2,max=50"`
	Location          *string    `json:"location" validate:"omitempty,min=5,max=200"`
	NumberOfSuppliers *int       `json:"numberOfSuppliers" validate:"omitempty,min=1"`
	EventDate         *string    `json:"eventDate"`
	EventTime         *string    `json:"eventTime" validate:"omitempty,hhmm"`
	DressCodeOptions  *DressCode `json:"dressCodeOptions"`
	ServicesNeeded    []string   `json:"servicesNeeded" validate:"omitempty,dive,service"`
	Budget            *float64   `json:"budget" validate:"omitempty,min=0"`
	Notes             *string    `json:"notes" validate:"omitempty,max=1000"`
	Status            *string    `json:"status" validate:"omitempty,oneof=Draft Planning Confirmed Completed Cancelled"`
}

// PaymentTransactionRequest is one payment appended to an event.
type PaymentTransactionRequest struct {
	Amount        float64 `json:"amount" validate:"gt=0"`
	PaymentDate   string  `json:"paymentDate"`
	PaymentMethod string  `json:"paymentMethod" validate:"omitempty,max=50"`
	TransactionID string  `json:"transactionId" validate:"omitempty,max=100"`
}

// PaymentUpdateRequest represents the request payload for updating event payment
type PaymentUpdateRequest struct {
	TotalAmount   *float64                   `json:"totalAmount" validate:"omitempty,min=0"`
	AdvancePaid   *float64                   `json:"advancePaid" validate:"omitempty,min=0"`
	PaymentStatus *string                    `json:"paymentStatus" validate:"omitempty,oneof=Pending Partial Completed"`
	Transaction   *PaymentTransactionRequest `json:"transaction"`
}

// AvailableEventsFilter holds the supplier-side search query.
type AvailableEventsFilter struct {
	Services  []string
	Location  string
	EventType string
}
