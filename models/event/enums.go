package event

type Status string

const (
	StatusDraft     Status = "Draft"
	StatusPlanning  Status = "Planning"
	StatusConfirmed Status = "Confirmed"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPlanning, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

func GetAllStatuses() []Status {
	return []Status{StatusDraft, StatusPlanning, StatusConfirmed, StatusCompleted, StatusCancelled}
}

func ActiveStatuses() []Status {
	return []Status{StatusDraft, StatusPlanning, StatusConfirmed}
}

func OpenStatuses() []Status {
	return []Status{StatusPlanning, StatusConfirmed}
}
