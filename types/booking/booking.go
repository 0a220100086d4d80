package booking

// ApplyRequest represents the request payload for a supplier applying to an event
type ApplyRequest struct {
	EventID       string   `json:"eventId" validate:"omitempty,uuid"`
	Services      []string `json:"services" validate:"omitempty,dive,service"`
	ProposedPrice float64  `json:"proposedPrice" validate:"min=0"`
	Message       string   `json:"message" validate:"omitempty,max=1000"`

	// Older clients send the price and message under these names.
	ProposedBudget float64 `json:"proposedBudget" validate:"min=0"`
	Notes          string  `json:"notes" validate:"omitempty,max=1000"`
}

// Price returns the proposed price, falling back to the legacy field.
func (r ApplyRequest) Price() float64 {
	if r.ProposedPrice > 0 {
		return r.ProposedPrice
	}
	return r.ProposedBudget
}

// Note returns the supplier message, falling back to the legacy field.
func (r ApplyRequest) Note() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Notes
}

// StatusUpdateRequest represents the request payload for an organizer decision
type StatusUpdateRequest struct {
	Status           string `json:"status" validate:"required"`
	OrganizerMessage string `json:"organizerMessage" validate:"omitempty,max=1000"`
}
