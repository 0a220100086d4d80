package event

import (
	"fmt"
	"strings"

	"vizhaa-backend/apperr"
	"vizhaa-backend/logger"
	"vizhaa-backend/metrics"
	"vizhaa-backend/middleware"
	bookingModel "vizhaa-backend/models/booking"
	bookingService "vizhaa-backend/services/booking"
	eventService "vizhaa-backend/services/event"
	"vizhaa-backend/types"
	bookingTypes "vizhaa-backend/types/booking"
	eventTypes "vizhaa-backend/types/event"
	"vizhaa-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// Controller serves /api/events for both organizers and suppliers.
type Controller struct {
	Events   *eventService.Service
	Bookings *bookingService.Service
}

func NewEventController(events *eventService.Service, bookings *bookingService.Service) *Controller {
	return &Controller{Events: events, Bookings: bookings}
}

func (h *Controller) Create(c *fiber.Ctx) error {
	var req eventTypes.CreateEventRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	organizer := middleware.CurrentUser(c)
	e, err := h.Events.Create(c.UserContext(), organizer.ID, req)
	if err != nil {
		return err
	}

	logger.Success(fmt.Sprintf("Event %s created by %s", e.ID, organizer.ID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusCreated,
		Message: "Event created successfully",
		Data:    e,
	})
}

// List returns the organizer's events, newest first. ?status=All disables the filter.
func (h *Controller) List(c *fiber.Ctx) error {
	page, limit := utils.Pagination(c)
	events, total, err := h.Events.ListForOrganizer(c.UserContext(), middleware.CurrentUser(c).ID, c.Query("status"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success:    true,
		Status:     fiber.StatusOK,
		Message:    "Events fetched successfully",
		Data:       events,
		Pagination: types.NewPagination(page, limit, total),
	})
}

func (h *Controller) ListByStatus(c *fiber.Ctx) error {
	page, limit := utils.Pagination(c)
	events, total, err := h.Events.ListByStatus(c.UserContext(), middleware.CurrentUser(c).ID, c.Params("status"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success:    true,
		Status:     fiber.StatusOK,
		Message:    "Events fetched successfully",
		Data:       events,
		Pagination: types.NewPagination(page, limit, total),
	})
}

func (h *Controller) Stats(c *fiber.Ctx) error {
	stats, err := h.Events.AggregateStats(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Event statistics fetched successfully",
		Data:    stats,
	})
}

func (h *Controller) Get(c *fiber.Ctx) error {
	e, err := h.Events.Get(c.UserContext(), c.Params("id"), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Event fetched successfully",
		Data:    e,
	})
}

func (h *Controller) Update(c *fiber.Ctx) error {
	var req eventTypes.UpdateEventRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	e, err := h.Events.Update(c.UserContext(), c.Params("id"), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Event updated successfully",
		Data:    e,
	})
}

func (h *Controller) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.Events.Delete(c.UserContext(), id, middleware.CurrentUser(c).ID); err != nil {
		return err
	}

	logger.Success("Event deleted: " + id)
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Event deleted successfully",
	})
}

func (h *Controller) UpdatePayment(c *fiber.Ctx) error {
	var req eventTypes.PaymentUpdateRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	e, err := h.Events.RecordPayment(c.UserContext(), c.Params("eventId"), middleware.CurrentUser(c).ID, req)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Payment updated successfully",
		Data:    e,
	})
}

// Available lists open events a supplier can still apply to.
// Query: services (comma separated), location, eventType.
func (h *Controller) Available(c *fiber.Ctx) error {
	page, limit := utils.Pagination(c)
	filter := eventTypes.AvailableEventsFilter{
		Services:  SplitList(c.Query("services")),
		Location:  c.Query("location"),
		EventType: c.Query("eventType"),
	}

	events, total, err := h.Events.ListAvailableForSupplier(c.UserContext(), middleware.CurrentUser(c).ID, filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success:    true,
		Status:     fiber.StatusOK,
		Message:    "Available events fetched successfully",
		Data:       events,
		Pagination: types.NewPagination(page, limit, total),
	})
}

// Book applies to the event named in the body.
func (h *Controller) Book(c *fiber.Ctx) error {
	var req bookingTypes.ApplyRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}
	if req.EventID == "" {
		return apperr.Validation("eventId is required", apperr.FieldError{Field: "eventId", Message: "eventId is required"})
	}
	return Apply(c, h.Bookings, req.EventID, req)
}

// Apply files a supplier application and renders the result. The supplier
// routes share it.
func Apply(c *fiber.Ctx, bookings *bookingService.Service, eventID string, req bookingTypes.ApplyRequest) error {
	supplier := middleware.CurrentUser(c)
	view, err := bookings.ApplyToEvent(c.UserContext(), eventID, supplier.ID, req)
	metrics.BookingApplicationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	logger.Success(fmt.Sprintf("Supplier %s applied to event %s", supplier.ID, eventID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusCreated,
		Message: "Application submitted successfully",
		Data:    view,
	})
}

func (h *Controller) SupplierBookings(c *fiber.Ctx) error {
	return SupplierBookings(c, h.Bookings)
}

// SupplierBookings pages through the current supplier's bookings. ?status filters.
func SupplierBookings(c *fiber.Ctx, bookings *bookingService.Service) error {
	page, limit := utils.Pagination(c)
	views, total, err := bookings.ListForSupplier(c.UserContext(), middleware.CurrentUser(c).ID, c.Query("status"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success:    true,
		Status:     fiber.StatusOK,
		Message:    "Bookings fetched successfully",
		Data:       views,
		Pagination: types.NewPagination(page, limit, total),
	})
}

func (h *Controller) Applications(c *fiber.Ctx) error {
	return EventApplications(c, h.Bookings, c.Params("eventId"))
}

// EventApplications lists the applications to one of the organizer's events.
func EventApplications(c *fiber.Ctx, bookings *bookingService.Service, eventID string) error {
	views, err := bookings.ListForEvent(c.UserContext(), eventID, middleware.CurrentUser(c).ID, c.Query("status"))
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Applications fetched successfully",
		Data:    views,
	})
}

func (h *Controller) UpdateApplicationStatus(c *fiber.Ctx) error {
	return Decide(c, h.Bookings, c.Params("bookingId"))
}

// Decide applies an organizer decision to a booking.
func Decide(c *fiber.Ctx, bookings *bookingService.Service, bookingID string) error {
	var req bookingTypes.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("Invalid request body")
	}

	view, err := bookings.UpdateApplicationStatus(c.UserContext(), bookingID, middleware.CurrentUser(c).ID, req)
	label := req.Status
	if !bookingModel.Status(label).IsDecision() {
		label = "invalid"
	}
	metrics.BookingStatusChangesTotal.WithLabelValues(label, metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	logger.Success(fmt.Sprintf("Booking %s marked %s", bookingID, view.Status))
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: fmt.Sprintf("Application %s successfully", strings.ToLower(string(view.Status))),
		Data:    view,
	})
}

// SplitList turns "a, b,,c" into [a b c].
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
