package booking

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"vizhaa-backend/apperr"
	"vizhaa-backend/database/dbtest"
	bookingModel "vizhaa-backend/models/booking"
	"vizhaa-backend/models/common"
	eventModel "vizhaa-backend/models/event"
	userModel "vizhaa-backend/models/user"
	eventService "vizhaa-backend/services/event"
	bookingTypes "vizhaa-backend/types/booking"
	eventTypes "vizhaa-backend/types/event"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	userModel.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

type fixture struct {
	db        *gorm.DB
	bookings  *Service
	events    *eventService.Service
	organizer *userModel.User
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.Open(t)
	f := &fixture{db: db, bookings: NewService(db), events: eventService.NewService(db)}
	f.organizer = f.user(t, "organizer", "9000000001")
	return f
}

func (f *fixture) user(t *testing.T, userType, phone string, services ...string) *userModel.User {
	t.Helper()
	u := &userModel.User{
		FullName: userType + " " + phone,
		Email:    phone + "@example.com",
		Phone:    phone,
		Password: "secret123",
		UserType: userType,
		IsActive: true,
		Services: common.StringSlice(services),
	}
	if err := f.db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) event(t *testing.T, slots int, services ...string) *eventModel.Event {
	t.Helper()
	e, err := f.events.Create(context.Background(), f.organizer.ID, eventTypes.CreateEventRequest{
		EventName:         "Corporate Offsite",
		EventType:         "Corporate",
		Location:          "ECR, Chennai",
		NumberOfSuppliers: slots,
		EventDate:         "2031-01-15",
		EventTime:         "10:00",
		ServicesNeeded:    services,
		Status:            "Planning",
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func decide(status string) bookingTypes.StatusUpdateRequest {
	return bookingTypes.StatusUpdateRequest{Status: status}
}

func TestCapacityOneScenario(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	e := f.event(t, 1, "Dinner")
	a := f.user(t, "supplier", "9000000002", "Dinner")
	b := f.user(t, "supplier", "9000000003", "Dinner")

	applied, err := f.bookings.ApplyToEvent(ctx, e.ID, a.ID, bookingTypes.ApplyRequest{ProposedPrice: 12000})
	if err != nil {
		t.Fatalf("A apply: %v", err)
	}
	if applied.Status != bookingModel.StatusPending || applied.OrganizerID != f.organizer.ID {
		t.Fatalf("booking = %+v", applied.Booking)
	}

	if _, err := f.bookings.ApplyToEvent(ctx, e.ID, b.ID, bookingTypes.ApplyRequest{}); !errors.Is(err, apperr.ErrNoAvailableSlots) {
		t.Fatalf("B apply: want ErrNoAvailableSlots, got %v", err)
	}

	confirmed, err := f.bookings.UpdateApplicationStatus(ctx, applied.ID, f.organizer.ID, decide("Confirmed"))
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != bookingModel.StatusConfirmed || confirmed.ConfirmedAt == nil {
		t.Fatalf("booking after confirm = %+v", confirmed.Booking)
	}

	got, err := f.events.Get(ctx, e.ID, f.organizer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.BookedSuppliers) != 1 || got.BookedSuppliers[0].Status != bookingModel.StatusConfirmed {
		t.Fatalf("roster = %+v", got.BookedSuppliers)
	}
	if got.BookedSuppliers[0].SupplierID != a.ID {
		t.Fatal("roster holds the wrong supplier")
	}
}

func TestApplyTwiceConflicts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	e := f.event(t, 3, "Lunch")
	s := f.user(t, "supplier", "9000000002", "Lunch")

	if _, err := f.bookings.ApplyToEvent(ctx, e.ID, s.ID, bookingTypes.ApplyRequest{}); err != nil {
		t.Fatal(err)
	}
	_, err := f.bookings.ApplyToEvent(ctx, e.ID, s.ID, bookingTypes.ApplyRequest{})
	if !errors.Is(err, apperr.ErrAlreadyApplied) || !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("want AlreadyApplied conflict, got %v", err)
	}
}

func TestApplyCheckOrder(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	full := f.event(t, 1, "Lunch")
	first := f.user(t, "supplier", "9000000002", "Lunch")
	if _, err := f.bookings.ApplyToEvent(ctx, full.ID, first.ID, bookingTypes.ApplyRequest{}); err != nil {
		t.Fatal(err)
	}
	mismatched := f.user(t, "supplier", "9000000003", "Cocktails")
	open := f.event(t, 2, "Lunch")
	generalist := f.user(t, "supplier", "9000000004")

	tests := []struct {
		name     string
		event    string
		supplier string
		want     error
	}{
		{"missing event", "no-such-event", first.ID, apperr.ErrEventNotFound},
		{"applied beats full", full.ID, first.ID, apperr.ErrAlreadyApplied},
		{"full beats mismatch", full.ID, mismatched.ID, apperr.ErrNoAvailableSlots},
		{"service mismatch", open.ID, mismatched.ID, apperr.ErrServiceMismatch},
		{"no services listed applies anywhere", open.ID, generalist.ID, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.bookings.ApplyToEvent(ctx, tt.event, tt.supplier, bookingTypes.ApplyRequest{})
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTransitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	e := f.event(t, 5, "Snacks")

	apply := func(phone string) *View {
		s := f.user(t, "supplier", phone, "Snacks")
		v, err := f.bookings.ApplyToEvent(ctx, e.ID, s.ID, bookingTypes.ApplyRequest{})
		if err != nil {
			t.Fatal(err)
		}
		return v
	}

	rejected := apply("9000000002")
	if _, err := f.bookings.UpdateApplicationStatus(ctx, rejected.ID, f.organizer.ID, decide("Rejected")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.bookings.UpdateApplicationStatus(ctx, rejected.ID, f.organizer.ID, decide("Confirmed")); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("Rejected -> Confirmed: %v", err)
	}

	pending := apply("9000000003")
	if _, err := f.bookings.UpdateApplicationStatus(ctx, pending.ID, f.organizer.ID, decide("Completed")); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("Pending -> Completed: %v", err)
	}
	if _, err := f.bookings.UpdateApplicationStatus(ctx, pending.ID, f.organizer.ID, decide("Pending")); !errors.Is(err, apperr.ErrInvalidStatus) {
		t.Fatalf("Pending is not a decision: %v", err)
	}
	if _, err := f.bookings.UpdateApplicationStatus(ctx, pending.ID, "someone-else", decide("Confirmed")); !errors.Is(err, apperr.ErrBookingNotFound) {
		t.Fatalf("foreign organizer: %v", err)
	}

	done, err := f.bookings.UpdateApplicationStatus(ctx, pending.ID, f.organizer.ID, bookingTypes.StatusUpdateRequest{Status: "Confirmed", OrganizerMessage: "See you there"})
	if err != nil {
		t.Fatal(err)
	}
	done, err = f.bookings.UpdateApplicationStatus(ctx, done.ID, f.organizer.ID, decide("Completed"))
	if err != nil {
		t.Fatal(err)
	}
	if done.CompletedAt == nil || done.OrganizerMessage != "See you there" {
		t.Fatalf("completed booking = %+v", done.Booking)
	}

	history, err := f.bookings.History(ctx, done.ID, f.organizer.ID)
	if err != nil {
		t.Fatal(err)
	}
	want := []bookingModel.Status{bookingModel.StatusPending, bookingModel.StatusConfirmed, bookingModel.StatusCompleted}
	if len(history) != len(want) {
		t.Fatalf("history = %+v", history)
	}
	for i, h := range history {
		if h.ToStatus != want[i] {
			t.Fatalf("history[%d] = %s, want %s", i, h.ToStatus, want[i])
		}
	}
}

func TestDeleteEventRemovesBookings(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	e := f.event(t, 2, "Dinner")
	s := f.user(t, "supplier", "9000000002", "Dinner")
	v, err := f.bookings.ApplyToEvent(ctx, e.ID, s.ID, bookingTypes.ApplyRequest{})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.events.Delete(ctx, e.ID, f.organizer.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.bookings.GetForOrganizer(ctx, v.ID, f.organizer.ID); !errors.Is(err, apperr.ErrBookingNotFound) {
		t.Fatalf("booking should be gone, got %v", err)
	}
}

func TestOrganizerOverviewAndSupplierViews(t *testing.T) {
	f := setup(t)
	f.bookings.now = func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	e1 := f.event(t, 3, "Dinner")
	e2 := f.event(t, 3, "Dinner")
	s1 := f.user(t, "supplier", "9000000002", "Dinner")
	s2 := f.user(t, "supplier", "9000000003", "Dinner")

	b1, _ := f.bookings.ApplyToEvent(ctx, e1.ID, s1.ID, bookingTypes.ApplyRequest{})
	_, _ = f.bookings.ApplyToEvent(ctx, e1.ID, s2.ID, bookingTypes.ApplyRequest{})
	_, _ = f.bookings.ApplyToEvent(ctx, e2.ID, s1.ID, bookingTypes.ApplyRequest{})
	if _, err := f.bookings.UpdateApplicationStatus(ctx, b1.ID, f.organizer.ID, decide("Confirmed")); err != nil {
		t.Fatal(err)
	}

	overview, err := f.bookings.ListForOrganizer(ctx, f.organizer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if overview.TotalBookings != 3 || overview.PendingBookings != 2 || overview.ConfirmedBookings != 1 {
		t.Fatalf("overview counts = %+v", overview)
	}
	if len(overview.BookingsByEvent) != 2 {
		t.Fatalf("groups = %d", len(overview.BookingsByEvent))
	}

	apps, err := f.bookings.ListForEvent(ctx, e1.ID, f.organizer.ID, "Pending")
	if err != nil || len(apps) != 1 || apps[0].Supplier == nil || apps[0].Supplier.ID != s2.ID {
		t.Fatalf("ListForEvent = %+v, %v", apps, err)
	}
	if _, err := f.bookings.ListForEvent(ctx, e1.ID, "other-organizer", ""); !errors.Is(err, apperr.ErrEventNotFound) {
		t.Fatalf("foreign event: %v", err)
	}

	mine, total, err := f.bookings.ListForSupplier(ctx, s1.ID, "", 1, 10)
	if err != nil || total != 2 || len(mine) != 2 || mine[0].Organizer == nil {
		t.Fatalf("ListForSupplier = %d/%d, %v", len(mine), total, err)
	}

	dash, err := f.bookings.SupplierDashboard(ctx, s1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if dash.TotalBookings != 2 || dash.ActiveBookings != 2 || dash.AvailableEvents != 2 || len(dash.RecentBookings) != 2 {
		t.Fatalf("dashboard = %+v", dash)
	}

	listings, _, err := f.bookings.EventsForSupplier(ctx, s2.ID, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	booked := 0
	for _, l := range listings {
		if l.IsBooked {
			booked++
			if *l.BookingStatus != bookingModel.StatusPending {
				t.Fatalf("listing status = %s", *l.BookingStatus)
			}
		}
	}
	if len(listings) != 2 || booked != 1 {
		t.Fatalf("listings = %d, booked = %d", len(listings), booked)
	}

	// Once the event day has passed, nothing is listed as open.
	f.bookings.now = func() time.Time { return time.Date(2031, 1, 16, 9, 0, 0, 0, time.UTC) }
	listings, total, err = f.bookings.EventsForSupplier(ctx, s2.ID, 1, 10)
	if err != nil || total != 0 || len(listings) != 0 {
		t.Fatalf("past events listed: %d/%d, %v", len(listings), total, err)
	}
	dash, err = f.bookings.SupplierDashboard(ctx, s2.ID)
	if err != nil || dash.AvailableEvents != 0 {
		t.Fatalf("dashboard after event day = %+v, %v", dash, err)
	}
}

func TestConcurrentApplyLastSlot(t *testing.T) {
	f := setup(t)
	e := f.event(t, 1, "Snacks")
	suppliers := []*userModel.User{
		f.user(t, "supplier", "9000000002", "Snacks"),
		f.user(t, "supplier", "9000000003", "Snacks"),
	}

	var wg sync.WaitGroup
	errs := make([]error, len(suppliers))
	start := make(chan struct{})
	for i, s := range suppliers {
		wg.Add(1)
		go func(i int, supplierID string) {
			defer wg.Done()
			<-start
			_, errs[i] = f.bookings.ApplyToEvent(context.Background(), e.ID, supplierID, bookingTypes.ApplyRequest{})
		}(i, s.ID)
	}
	close(start)
	wg.Wait()

	var ok, full int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrNoAvailableSlots):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || full != 1 {
		t.Fatalf("successes = %d, no-slot failures = %d", ok, full)
	}

	var n int64
	f.db.Model(&bookingModel.Booking{}).Where("event_id = ?", e.ID).Count(&n)
	if n != 1 {
		t.Fatalf("bookings stored = %d, want 1", n)
	}
}
