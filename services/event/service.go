// Package event is the registry of organizer events.
package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vizhaa-backend/apperr"
	bookingModel "vizhaa-backend/models/booking"
	eventModel "vizhaa-backend/models/event"
	userModel "vizhaa-backend/models/user"
	eventTypes "vizhaa-backend/types/event"
	"vizhaa-backend/utils"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db, now: time.Now}
}

// StatusStat is one row of the per-status aggregate.
type StatusStat struct {
	Status      eventModel.Status `json:"status"`
	Count       int64             `json:"count"`
	TotalBudget float64           `json:"totalBudget"`
}

type Stats struct {
	Stats               []StatusStat `json:"stats"`
	TotalEvents         int64        `json:"totalEvents"`
	UpcomingEvents      int64        `json:"upcomingEvents"`
	PendingApplications int64        `json:"pendingApplications"`
}

// Summary is the short form of an event used in dashboards and booking views.
type Summary struct {
	ID        string            `json:"id"`
	EventName string            `json:"eventName"`
	EventType string            `json:"eventType,omitempty"`
	Location  string            `json:"location,omitempty"`
	EventDate time.Time         `json:"eventDate"`
	EventTime string            `json:"eventTime,omitempty"`
	Status    eventModel.Status `json:"status"`
}

type Dashboard struct {
	TotalEvents   int64     `json:"totalEvents"`
	ActiveEvents  int64     `json:"activeEvents"`
	TotalBookings int64     `json:"totalBookings"`
	RecentEvents  []Summary `json:"recentEvents"`
}

// ParseDate accepts a plain calendar date or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func parseStatus(status string) (eventModel.Status, error) {
	st := eventModel.Status(status)
	if !st.IsValid() {
		names := make([]string, 0, 5)
		for _, s := range eventModel.GetAllStatuses() {
			names = append(names, s.String())
		}
		return "", apperr.ErrInvalidStatus.With(fmt.Sprintf("Invalid event status: %s. Use one of %s", status, strings.Join(names, ", ")))
	}
	return st, nil
}

// isAll reports whether a status filter means "no filter".
func isAll(status string) bool {
	return status == "" || strings.EqualFold(status, "all")
}

// Create stores a new Draft event owned by organizerID with an empty roster.
func (s *Service) Create(ctx context.Context, organizerID string, req eventTypes.CreateEventRequest) (*eventModel.Event, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}
	date, err := ParseDate(req.EventDate)
	if err != nil {
		return nil, apperr.Validation("Please provide a valid date",
			apperr.FieldError{Field: "eventDate", Message: "must be an ISO 8601 date"})
	}

	e := &eventModel.Event{
		OrganizerID:       organizerID,
		EventName:         strings.TrimSpace(req.EventName),
		EventType:         strings.TrimSpace(req.EventType),
		Location:          strings.TrimSpace(req.Location),
		NumberOfSuppliers: req.NumberOfSuppliers,
		EventDate:         date,
		EventTime:         req.EventTime,
		DressCodeOptions: eventModel.DressCodeOptions{
			Premium: req.DressCodeOptions.Premium,
			Gold:    req.DressCodeOptions.Gold,
			Silver:  req.DressCodeOptions.Silver,
		},
		Budget: req.Budget,
		Notes:  req.Notes,
		Status: eventModel.StatusDraft,
	}
	if req.Status != "" {
		e.Status = eventModel.Status(req.Status)
	}
	e.SetServices(dedupe(req.ServicesNeeded))

	if err := s.DB.WithContext(ctx).Create(e).Error; err != nil {
		return nil, apperr.Internalf("failed to create event: %w", err)
	}
	e.Hydrate()
	return e, nil
}

func (s *Service) ownedWithStatus(organizerID, status string) (func(*gorm.DB) *gorm.DB, error) {
	if isAll(status) {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("organizer_id = ?", organizerID)
		}, nil
	}
	st, err := parseStatus(status)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("organizer_id = ? AND status = ?", organizerID, st)
	}, nil
}

func (s *Service) page(ctx context.Context, scope func(*gorm.DB) *gorm.DB, order string, page, limit int) ([]eventModel.Event, int64, error) {
	var total int64
	if err := s.DB.WithContext(ctx).Model(&eventModel.Event{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	events := []eventModel.Event{}
	err := s.DB.WithContext(ctx).
		Scopes(scope).
		Preload("Services").
		Preload("Transactions").
		Order(order).
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	if err := s.attachRosters(ctx, events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// ListForOrganizer returns the organizer's events newest first.
// A status of "" or "all" disables the status filter.
func (s *Service) ListForOrganizer(ctx context.Context, organizerID, status string, page, limit int) ([]eventModel.Event, int64, error) {
	scope, err := s.ownedWithStatus(organizerID, status)
	if err != nil {
		return nil, 0, err
	}
	return s.page(ctx, scope, "created_at DESC", page, limit)
}

// ListByStatus returns the organizer's events with status, soonest first.
func (s *Service) ListByStatus(ctx context.Context, organizerID, status string, page, limit int) ([]eventModel.Event, int64, error) {
	scope, err := s.ownedWithStatus(organizerID, status)
	if err != nil {
		return nil, 0, err
	}
	return s.page(ctx, scope, "event_date ASC", page, limit)
}

// Get returns an event with its roster. Only the owner can read it.
func (s *Service) Get(ctx context.Context, id, organizerID string) (*eventModel.Event, error) {
	var e eventModel.Event
	err := s.DB.WithContext(ctx).
		Preload("Services").
		Preload("Transactions").
		Where("id = ? AND organizer_id = ?", id, organizerID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrEventNotFound
		}
		return nil, apperr.Internal(err)
	}
	events := []eventModel.Event{e}
	if err := s.attachRosters(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// ListAvailableForSupplier returns open, upcoming events matching filter.
//
// The page is fetched first and then events the supplier already applied to,
// and events whose roster is full, are removed. A page can therefore hold
// fewer than limit events while total still counts the unfiltered query.
func (s *Service) ListAvailableForSupplier(ctx context.Context, supplierID string, filter eventTypes.AvailableEventsFilter, page, limit int) ([]eventModel.Event, int64, error) {
	today := now.With(s.now()).BeginningOfDay()
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("status IN ?", eventModel.OpenStatuses()).Where("event_date >= ?", today)
		if loc := strings.TrimSpace(filter.Location); loc != "" {
			db = db.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
		}
		if et := strings.TrimSpace(filter.EventType); et != "" {
			db = db.Where("LOWER(event_type) LIKE ?", "%"+strings.ToLower(et)+"%")
		}
		if len(filter.Services) > 0 {
			db = db.Where("id IN (?)", db.Session(&gorm.Session{NewDB: true}).
				Model(&eventModel.EventService{}).
				Select("event_id").
				Where("service IN ?", filter.Services))
		}
		return db
	}

	events, total, err := s.page(ctx, scope, "event_date ASC", page, limit)
	if err != nil {
		return nil, 0, err
	}
	if len(events) == 0 {
		return events, total, nil
	}

	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	var applied []string
	err = s.DB.WithContext(ctx).Model(&bookingModel.Booking{}).
		Where("supplier_id = ? AND event_id IN ?", supplierID, ids).
		Pluck("event_id", &applied).Error
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	skip := make(map[string]bool, len(applied))
	for _, id := range applied {
		skip[id] = true
	}

	available := make([]eventModel.Event, 0, len(events))
	for _, e := range events {
		if skip[e.ID] || len(e.BookedSuppliers) >= e.NumberOfSuppliers {
			continue
		}
		available = append(available, e)
	}
	if err := s.attachOrganizers(ctx, available); err != nil {
		return nil, 0, err
	}
	return available, total, nil
}

// Update applies the present fields of req. Roster, owner and creation time
// cannot be changed this way.
func (s *Service) Update(ctx context.Context, id, organizerID string, req eventTypes.UpdateEventRequest) (*eventModel.Event, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.EventName != nil {
		updates["event_name"] = strings.TrimSpace(*req.EventName)
	}
	if req.EventType != nil {
		updates["event_type"] = strings.TrimSpace(*req.EventType)
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.NumberOfSuppliers != nil {
		updates["number_of_suppliers"] = *req.NumberOfSuppliers
	}
	if req.EventDate != nil {
		date, err := ParseDate(*req.EventDate)
		if err != nil {
			return nil, apperr.Validation("Please provide a valid date",
				apperr.FieldError{Field: "eventDate", Message: "must be an ISO 8601 date"})
		}
		updates["event_date"] = date
	}
	if req.EventTime != nil {
		updates["event_time"] = *req.EventTime
	}
	if req.DressCodeOptions != nil {
		updates["dress_code_premium"] = req.DressCodeOptions.Premium
		updates["dress_code_gold"] = req.DressCodeOptions.Gold
		updates["dress_code_silver"] = req.DressCodeOptions.Silver
	}
	if req.Budget != nil {
		updates["budget"] = *req.Budget
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.Status != nil {
		updates["status"] = eventModel.Status(*req.Status)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current eventModel.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND organizer_id = ?", id, organizerID).
			First(&current).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrEventNotFound
			}
			return apperr.Internal(err)
		}

		if req.NumberOfSuppliers != nil {
			var booked int64
			if err := tx.Model(&bookingModel.Booking{}).Where("event_id = ?", id).Count(&booked).Error; err != nil {
				return apperr.Internal(err)
			}
			if int64(*req.NumberOfSuppliers) < booked {
				return apperr.Validation(fmt.Sprintf("Number of suppliers cannot be less than the %d already booked", booked),
					apperr.FieldError{Field: "numberOfSuppliers", Message: "below current bookings"})
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&eventModel.Event{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return apperr.Internalf("failed to update event: %w", err)
			}
		}

		if req.ServicesNeeded != nil {
			if err := tx.Where("event_id = ?", id).Delete(&eventModel.EventService{}).Error; err != nil {
				return apperr.Internal(err)
			}
			current.SetServices(dedupe(req.ServicesNeeded))
			if len(current.Services) > 0 {
				if err := tx.Create(&current.Services).Error; err != nil {
					return apperr.Internalf("failed to replace event services: %w", err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id, organizerID)
}

// Delete removes the event together with its bookings, their history,
// its services and payment transactions.
func (s *Service) Delete(ctx context.Context, id, organizerID string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e eventModel.Event
		if err := tx.Select("id").Where("id = ? AND organizer_id = ?", id, organizerID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrEventNotFound
			}
			return apperr.Internal(err)
		}

		bookingIDs := tx.Session(&gorm.Session{NewDB: true}).Model(&bookingModel.Booking{}).Select("id").Where("event_id = ?", id)
		steps := []struct {
			what string
			run  func() error
		}{
			{"booking history", func() error {
				return tx.Where("booking_id IN (?)", bookingIDs).Delete(&bookingModel.BookingStatusEvent{}).Error
			}},
			{"bookings", func() error { return tx.Where("event_id = ?", id).Delete(&bookingModel.Booking{}).Error }},
			{"services", func() error { return tx.Where("event_id = ?", id).Delete(&eventModel.EventService{}).Error }},
			{"transactions", func() error { return tx.Where("event_id = ?", id).Delete(&eventModel.PaymentTransaction{}).Error }},
			{"event", func() error { return tx.Where("id = ?", id).Delete(&eventModel.Event{}).Error }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return apperr.Internalf("failed to delete %s: %w", step.what, err)
			}
		}
		return nil
	})
}

// RecordPayment applies the present payment fields and appends a transaction.
// The advance can never exceed the total amount.
func (s *Service) RecordPayment(ctx context.Context, id, organizerID string, req eventTypes.PaymentUpdateRequest) (*eventModel.Event, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e eventModel.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND organizer_id = ?", id, organizerID).
			First(&e).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrEventNotFound
			}
			return apperr.Internal(err)
		}

		p := e.Payment
		if req.TotalAmount != nil {
			p.TotalAmount = *req.TotalAmount
		}
		if req.AdvancePaid != nil {
			p.AdvancePaid = *req.AdvancePaid
		}
		if req.PaymentStatus != nil {
			p.PaymentStatus = eventModel.PaymentStatus(*req.PaymentStatus)
		}
		if p.AdvancePaid > p.TotalAmount {
			return apperr.Validation("Advance paid cannot exceed total amount",
				apperr.FieldError{Field: "advancePaid", Message: "must not exceed totalAmount"})
		}

		err = tx.Model(&eventModel.Event{}).Where("id = ?", id).Updates(map[string]interface{}{
			"payment_total_amount":   p.TotalAmount,
			"payment_advance_paid":   p.AdvancePaid,
			"payment_payment_status": p.PaymentStatus,
		}).Error
		if err != nil {
			return apperr.Internalf("failed to update payment: %w", err)
		}

		if req.Transaction != nil {
			txn := eventModel.PaymentTransaction{
				EventID:       id,
				Amount:        req.Transaction.Amount,
				PaymentMethod: req.Transaction.PaymentMethod,
				TransactionID: req.Transaction.TransactionID,
			}
			if req.Transaction.PaymentDate != "" {
				date, err := ParseDate(req.Transaction.PaymentDate)
				if err != nil {
					return apperr.Validation("Please provide a valid payment date",
						apperr.FieldError{Field: "transaction.paymentDate", Message: "must be an ISO 8601 date"})
				}
				txn.PaymentDate = date
			}
			if err := tx.Create(&txn).Error; err != nil {
				return apperr.Internalf("failed to record transaction: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id, organizerID)
}

// AggregateStats groups the organizer's events by status.
func (s *Service) AggregateStats(ctx context.Context, organizerID string) (*Stats, error) {
	db := s.DB.WithContext(ctx)
	out := &Stats{Stats: []StatusStat{}}

	err := db.Model(&eventModel.Event{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(budget), 0) AS total_budget").
		Where("organizer_id = ?", organizerID).
		Group("status").
		Order("status").
		Scan(&out.Stats).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	for _, st := range out.Stats {
		out.TotalEvents += st.Count
	}

	err = db.Model(&eventModel.Event{}).
		Where("organizer_id = ? AND event_date >= ? AND status IN ?", organizerID, now.With(s.now()).BeginningOfDay(), eventModel.ActiveStatuses()).
		Count(&out.UpcomingEvents).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	err = db.Model(&bookingModel.Booking{}).
		Where("organizer_id = ? AND status = ?", organizerID, bookingModel.StatusPending).
		Count(&out.PendingApplications).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

// OrganizerDashboard returns headline counts and the latest events.
func (s *Service) OrganizerDashboard(ctx context.Context, organizerID string) (*Dashboard, error) {
	db := s.DB.WithContext(ctx)
	d := &Dashboard{RecentEvents: []Summary{}}

	if err := db.Model(&eventModel.Event{}).Where("organizer_id = ?", organizerID).Count(&d.TotalEvents).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	err := db.Model(&eventModel.Event{}).
		Where("organizer_id = ? AND status IN ?", organizerID, eventModel.ActiveStatuses()).
		Count(&d.ActiveEvents).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := db.Model(&bookingModel.Booking{}).Where("organizer_id = ?", organizerID).Count(&d.TotalBookings).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	var recent []eventModel.Event
	if err := db.Where("organizer_id = ?", organizerID).Order("created_at DESC").Limit(5).Find(&recent).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	for _, e := range recent {
		d.RecentEvents = append(d.RecentEvents, Summarize(&e))
	}
	return d, nil
}

// Summarize returns the short view of e.
func Summarize(e *eventModel.Event) Summary {
	return Summary{
		ID:        e.ID,
		EventName: e.EventName,
		EventType: e.EventType,
		Location:  e.Location,
		EventDate: e.EventDate,
		EventTime: e.EventTime,
		Status:    e.Status,
	}
}

// attachRosters fills BookedSuppliers from the bookings of each event.
func (s *Service) attachRosters(ctx context.Context, events []eventModel.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	var bookings []bookingModel.Booking
	err := s.DB.WithContext(ctx).
		Where("event_id IN ?", ids).
		Order("created_at ASC").
		Find(&bookings).Error
	if err != nil {
		return apperr.Internal(err)
	}
	roster := make(map[string][]bookingModel.Slot, len(events))
	for i := range bookings {
		roster[bookings[i].EventID] = append(roster[bookings[i].EventID], bookings[i].Slot())
	}
	for i := range events {
		events[i].BookedSuppliers = roster[events[i].ID]
		if events[i].BookedSuppliers == nil {
			events[i].BookedSuppliers = []bookingModel.Slot{}
		}
	}
	return nil
}

func (s *Service) attachOrganizers(ctx context.Context, events []eventModel.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.OrganizerID)
	}
	var users []userModel.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return apperr.Internal(err)
	}
	byID := make(map[string]*userModel.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range events {
		if u, ok := byID[events[i].OrganizerID]; ok {
			events[i].Organizer = u.Contact()
		}
	}
	return nil
}
