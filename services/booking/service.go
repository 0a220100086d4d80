// Package booking coordinates supplier applications and organizer decisions.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vizhaa-backend/apperr"
	"vizhaa-backend/constants"
	"vizhaa-backend/logger"
	bookingModel "vizhaa-backend/models/booking"
	"vizhaa-backend/models/common"
	eventModel "vizhaa-backend/models/event"
	userModel "vizhaa-backend/models/user"
	eventService "vizhaa-backend/services/event"
	bookingTypes "vizhaa-backend/types/booking"
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

// View is a booking with the event and the people on both sides attached.
type View struct {
	bookingModel.Booking
	Event     *eventService.Summary `json:"event,omitempty"`
	Supplier  *userModel.Contact    `json:"supplier,omitempty"`
	Organizer *userModel.Contact    `json:"organizer,omitempty"`
}

// EventGroup collects an organizer's bookings for one event.
type EventGroup struct {
	EventID        string    `json:"eventId"`
	EventName      string    `json:"eventName"`
	EventDate      time.Time `json:"eventDate"`
	Bookings       []View    `json:"bookings"`
	TotalBookings  int       `json:"totalBookings"`
	PendingCount   int       `json:"pendingCount"`
	ConfirmedCount int       `json:"confirmedCount"`
}

type Overview struct {
	TotalBookings     int          `json:"totalBookings"`
	PendingBookings   int          `json:"pendingBookings"`
	ConfirmedBookings int          `json:"confirmedBookings"`
	RejectedBookings  int          `json:"rejectedBookings"`
	BookingsByEvent   []EventGroup `json:"bookingsByEvent"`
	AllBookings       []View       `json:"allBookings"`
}

type SupplierDashboard struct {
	TotalBookings   int64  `json:"totalBookings"`
	ActiveBookings  int64  `json:"activeBookings"`
	AvailableEvents int64  `json:"availableEvents"`
	RecentBookings  []View `json:"recentBookings"`
}

// EventListing is an open event as a supplier sees it, with their own booking if any.
type EventListing struct {
	eventModel.Event
	IsBooked      bool                 `json:"isBooked"`
	BookingStatus *bookingModel.Status `json:"bookingStatus"`
	BookingID     *string              `json:"bookingId"`
}

type viewParts struct {
	supplier, organizer bool
}

func parseStatusFilter(status string) (bookingModel.Status, error) {
	if status == "" || strings.EqualFold(status, "all") {
		return "", nil
	}
	st := bookingModel.Status(status)
	if !st.IsValid() {
		return "", apperr.ErrInvalidStatus.With(fmt.Sprintf("Invalid booking status: %s. Use one of %s", status, allStatuses()))
	}
	return st, nil
}

func allStatuses() string {
	names := make([]string, 0, 5)
	for _, st := range bookingModel.GetAllStatuses() {
		names = append(names, st.String())
	}
	return strings.Join(names, ", ")
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// ApplyToEvent files a Pending booking for supplierID on eventID.
//
// The event row is locked for the whole check-then-insert so two suppliers
// racing for the last slot cannot both get in. Checks run in a fixed order:
// event exists, supplier has not applied, a slot is free, services overlap.
func (s *Service) ApplyToEvent(ctx context.Context, eventID, supplierID string, req bookingTypes.ApplyRequest) (*View, error) {
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	var b bookingModel.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e eventModel.Event
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", eventID).First(&e).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrEventNotFound
			}
			return apperr.Internal(err)
		}

		var existing int64
		if err := tx.Model(&bookingModel.Booking{}).Where("event_id = ? AND supplier_id = ?", eventID, supplierID).Count(&existing).Error; err != nil {
			return apperr.Internal(err)
		}
		if existing > 0 {
			return apperr.ErrAlreadyApplied
		}

		var booked int64
		if err := tx.Model(&bookingModel.Booking{}).Where("event_id = ?", eventID).Count(&booked).Error; err != nil {
			return apperr.Internal(err)
		}
		if e.AvailableSlots(booked) == 0 {
			return apperr.ErrNoAvailableSlots
		}

		var supplier userModel.User
		if err := tx.Where("id = ?", supplierID).First(&supplier).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrUserNotFound
			}
			return apperr.Internal(err)
		}
		var needed []string
		if err := tx.Model(&eventModel.EventService{}).Where("event_id = ?", eventID).Pluck("service", &needed).Error; err != nil {
			return apperr.Internal(err)
		}
		if len(supplier.Services) > 0 && !supplier.Services.Intersects(needed) {
			return apperr.ErrServiceMismatch
		}

		services := common.StringSlice(req.Services)
		if len(services) == 0 {
			services = supplier.Services
		}
		b = bookingModel.Booking{
			EventID:       eventID,
			SupplierID:    supplierID,
			OrganizerID:   e.OrganizerID,
			Services:      services,
			ProposedPrice: req.Price(),
			Message:       req.Note(),
			Status:        bookingModel.StatusPending,
		}
		if err := tx.Create(&b).Error; err != nil {
			if isDuplicate(err) {
				return apperr.ErrAlreadyApplied
			}
			return apperr.Internalf("failed to create booking: %w", err)
		}
		return recordStatus(tx, &b, "", supplierID, req.Note())
	})
	if err != nil {
		return nil, err
	}

	logger.Info(fmt.Sprintf("Supplier %s applied to event %s", supplierID, eventID))
	views, err := s.views(ctx, []bookingModel.Booking{b}, viewParts{supplier: true, organizer: true})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateApplicationStatus records an organizer decision on a booking.
// Both the event and organizer routes go through here.
func (s *Service) UpdateApplicationStatus(ctx context.Context, bookingID, organizerID string, req bookingTypes.StatusUpdateRequest) (*View, error) {
	next := bookingModel.Status(req.Status)
	if !next.IsDecision() {
		return nil, apperr.ErrInvalidStatus.With("Invalid status value. Must be Confirmed, Rejected, Completed or Cancelled")
	}
	if err := utils.Validate(req); err != nil {
		return nil, err
	}

	var b bookingModel.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND organizer_id = ?", bookingID, organizerID).
			First(&b).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrBookingNotFound
			}
			return apperr.Internal(err)
		}

		from := b.Status
		if err := b.ApplyStatus(next, s.now()); err != nil {
			return apperr.ErrInvalidTransition.With(fmt.Sprintf("Cannot change booking from %s to %s", from, next))
		}
		if req.OrganizerMessage != "" {
			b.OrganizerMessage = req.OrganizerMessage
		}
		if err := tx.Save(&b).Error; err != nil {
			return apperr.Internalf("failed to update booking: %w", err)
		}
		return recordStatus(tx, &b, from, organizerID, req.OrganizerMessage)
	})
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, []bookingModel.Booking{b}, viewParts{supplier: true})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func recordStatus(tx *gorm.DB, b *bookingModel.Booking, from bookingModel.Status, changedBy, note string) error {
	ev := bookingModel.BookingStatusEvent{
		BookingID:  b.ID,
		FromStatus: from,
		ToStatus:   b.Status,
		ChangedBy:  changedBy,
		Note:       note,
	}
	if err := tx.Omit(clause.Associations).Create(&ev).Error; err != nil {
		return apperr.Internalf("failed to record booking status: %w", err)
	}
	return nil
}

// ListForEvent returns the applications to one of the organizer's events.
func (s *Service) ListForEvent(ctx context.Context, eventID, organizerID, status string) ([]View, error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}
	var owned int64
	if err := s.DB.WithContext(ctx).Model(&eventModel.Event{}).Where("id = ? AND organizer_id = ?", eventID, organizerID).Count(&owned).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	if owned == 0 {
		return nil, apperr.ErrEventNotFound
	}

	q := s.DB.WithContext(ctx).Where("event_id = ?", eventID)
	if st != "" {
		q = q.Where("status = ?", st)
	}
	var bookings []bookingModel.Booking
	if err := q.Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.views(ctx, bookings, viewParts{supplier: true})
}

// ListForSupplier pages through a supplier's bookings, newest first.
func (s *Service) ListForSupplier(ctx context.Context, supplierID, status string, page, limit int) ([]View, int64, error) {
	st, err := parseStatusFilter(status)
	if err != nil {
		return nil, 0, err
	}
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("supplier_id = ?", supplierID)
		if st != "" {
			db = db.Where("status = ?", st)
		}
		return db
	}

	var total int64
	if err := s.DB.WithContext(ctx).Model(&bookingModel.Booking{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var bookings []bookingModel.Booking
	err = s.DB.WithContext(ctx).Scopes(scope).
		Order("created_at DESC").
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	views, err := s.views(ctx, bookings, viewParts{organizer: true})
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListForOrganizer returns every booking on the organizer's events grouped by event.
func (s *Service) ListForOrganizer(ctx context.Context, organizerID string) (*Overview, error) {
	var bookings []bookingModel.Booking
	if err := s.DB.WithContext(ctx).Where("organizer_id = ?", organizerID).Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	views, err := s.views(ctx, bookings, viewParts{supplier: true})
	if err != nil {
		return nil, err
	}

	out := &Overview{TotalBookings: len(views), BookingsByEvent: []EventGroup{}, AllBookings: views}
	index := map[string]int{}
	for _, v := range views {
		switch v.Status {
		case bookingModel.StatusPending:
			out.PendingBookings++
		case bookingModel.StatusConfirmed:
			out.ConfirmedBookings++
		case bookingModel.StatusRejected:
			out.RejectedBookings++
		}

		i, ok := index[v.EventID]
		if !ok {
			g := EventGroup{EventID: v.EventID, Bookings: []View{}}
			if v.Event != nil {
				g.EventName = v.Event.EventName
				g.EventDate = v.Event.EventDate
			}
			out.BookingsByEvent = append(out.BookingsByEvent, g)
			i = len(out.BookingsByEvent) - 1
			index[v.EventID] = i
		}
		g := &out.BookingsByEvent[i]
		g.Bookings = append(g.Bookings, v)
		g.TotalBookings++
		switch v.Status {
		case bookingModel.StatusPending:
			g.PendingCount++
		case bookingModel.StatusConfirmed:
			g.ConfirmedCount++
		}
	}
	return out, nil
}

// GetForOrganizer returns one booking if it belongs to the organizer.
func (s *Service) GetForOrganizer(ctx context.Context, bookingID, organizerID string) (*View, error) {
	b, err := s.ownedBooking(ctx, bookingID, organizerID)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, []bookingModel.Booking{*b}, viewParts{supplier: true})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// History lists the status changes of a booking, oldest first.
func (s *Service) History(ctx context.Context, bookingID, organizerID string) ([]bookingModel.BookingStatusEvent, error) {
	if _, err := s.ownedBooking(ctx, bookingID, organizerID); err != nil {
		return nil, err
	}
	events := []bookingModel.BookingStatusEvent{}
	err := s.DB.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return events, nil
}

func (s *Service) ownedBooking(ctx context.Context, bookingID, organizerID string) (*bookingModel.Booking, error) {
	var b bookingModel.Booking
	if err := s.DB.WithContext(ctx).Where("id = ? AND organizer_id = ?", bookingID, organizerID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrBookingNotFound
		}
		return nil, apperr.Internal(err)
	}
	return &b, nil
}

// SupplierDashboard returns the supplier's headline counts and latest bookings.
func (s *Service) SupplierDashboard(ctx context.Context, supplierID string) (*SupplierDashboard, error) {
	db := s.DB.WithContext(ctx)
	d := &SupplierDashboard{RecentBookings: []View{}}

	if err := db.Model(&bookingModel.Booking{}).Where("supplier_id = ?", supplierID).Count(&d.TotalBookings).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	err := db.Model(&bookingModel.Booking{}).
		Where("supplier_id = ? AND status IN ?", supplierID, []bookingModel.Status{bookingModel.StatusPending, bookingModel.StatusConfirmed}).
		Count(&d.ActiveBookings).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	err = db.Model(&eventModel.Event{}).Scopes(s.openUpcoming).Count(&d.AvailableEvents).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var recent []bookingModel.Booking
	if err := db.Where("supplier_id = ?", supplierID).Order("created_at DESC").Limit(constants.RecentItems).Find(&recent).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	views, err := s.views(ctx, recent, viewParts{})
	if err != nil {
		return nil, err
	}
	d.RecentBookings = append(d.RecentBookings, views...)
	return d, nil
}

// openUpcoming limits events to open ones dated today or later.
func (s *Service) openUpcoming(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ? AND event_date >= ?", eventModel.OpenStatuses(), now.With(s.now()).BeginningOfDay())
}

// EventsForSupplier pages through open upcoming events, newest first, marking the
// ones the supplier has already booked.
func (s *Service) EventsForSupplier(ctx context.Context, supplierID string, page, limit int) ([]EventListing, int64, error) {
	db := s.DB.WithContext(ctx)
	var total int64
	if err := db.Model(&eventModel.Event{}).Scopes(s.openUpcoming).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal(err)
	}
	var events []eventModel.Event
	err := db.Preload("Services").
		Scopes(s.openUpcoming).
		Order("created_at DESC").
		Offset(utils.Offset(page, limit)).
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}

	ids := make([]string, 0, len(events))
	organizerIDs := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
		organizerIDs = append(organizerIDs, e.OrganizerID)
	}
	mine := map[string]bookingModel.Booking{}
	if len(ids) > 0 {
		var bookings []bookingModel.Booking
		if err := db.Where("supplier_id = ? AND event_id IN ?", supplierID, ids).Find(&bookings).Error; err != nil {
			return nil, 0, apperr.Internal(err)
		}
		for _, b := range bookings {
			mine[b.EventID] = b
		}
	}
	contacts, err := s.contacts(ctx, organizerIDs)
	if err != nil {
		return nil, 0, err
	}

	out := make([]EventListing, 0, len(events))
	for _, e := range events {
		l := EventListing{Event: e}
		l.Organizer = contacts[e.OrganizerID]
		if b, ok := mine[e.ID]; ok {
			st, id := b.Status, b.ID
			l.IsBooked = true
			l.BookingStatus = &st
			l.BookingID = &id
		}
		out = append(out, l)
	}
	return out, total, nil
}

// views attaches event summaries and, on request, contact cards.
func (s *Service) views(ctx context.Context, bookings []bookingModel.Booking, parts viewParts) ([]View, error) {
	out := make([]View, 0, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}

	eventIDs := make([]string, 0, len(bookings))
	userIDs := make([]string, 0, len(bookings)*2)
	for _, b := range bookings {
		eventIDs = append(eventIDs, b.EventID)
		if parts.supplier {
			userIDs = append(userIDs, b.SupplierID)
		}
		if parts.organizer {
			userIDs = append(userIDs, b.OrganizerID)
		}
	}

	var events []eventModel.Event
	if err := s.DB.WithContext(ctx).Where("id IN ?", eventIDs).Find(&events).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	summaries := make(map[string]eventService.Summary, len(events))
	for i := range events {
		summaries[events[i].ID] = eventService.Summarize(&events[i])
	}
	contacts, err := s.contacts(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		v := View{Booking: b}
		if sum, ok := summaries[b.EventID]; ok {
			v.Event = &sum
		}
		if parts.supplier {
			v.Supplier = contacts[b.SupplierID]
		}
		if parts.organizer {
			v.Organizer = contacts[b.OrganizerID]
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Service) contacts(ctx context.Context, ids []string) (map[string]*userModel.Contact, error) {
	out := make(map[string]*userModel.Contact, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var users []userModel.User
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	for i := range users {
		out[users[i].ID] = users[i].Contact()
	}
	return out, nil
}
