package organizer

import (
	eventController "vizhaa-backend/controllers/event"
	"vizhaa-backend/middleware"
	bookingService "vizhaa-backend/services/booking"
	eventService "vizhaa-backend/services/event"
	"vizhaa-backend/types"

	"github.com/gofiber/fiber/v2"
)

// Controller serves the organizer workspace under /api/organizer.
// Event creation and listing are shared with /api/events and routed there.
type Controller struct {
	Events   *eventService.Service
	Bookings *bookingService.Service
}

func NewOrganizerController(events *eventService.Service, bookings *bookingService.Service) *Controller {
	return &Controller{Events: events, Bookings: bookings}
}

func (h *Controller) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.Events.OrganizerDashboard(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Dashboard fetched successfully",
		Data:    dashboard,
	})
}

func (h *Controller) EventSuppliers(c *fiber.Ctx) error {
	return eventController.EventApplications(c, h.Bookings, c.Params("eventId"))
}

// ListBookings returns every booking on the organizer's events, grouped by event.
func (h *Controller) ListBookings(c *fiber.Ctx) error {
	overview, err := h.Bookings.ListForOrganizer(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Bookings fetched successfully",
		Data:    overview,
	})
}

func (h *Controller) GetBooking(c *fiber.Ctx) error {
	view, err := h.Bookings.GetForOrganizer(c.UserContext(), c.Params("bookingId"), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Booking fetched successfully",
		Data:    view,
	})
}

func (h *Controller) BookingHistory(c *fiber.Ctx) error {
	history, err := h.Bookings.History(c.UserContext(), c.Params("bookingId"), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Booking history fetched successfully",
		Data:    history,
	})
}

func (h *Controller) UpdateBookingStatus(c *fiber.Ctx) error {
	return eventController.Decide(c, h.Bookings, c.Params("bookingId"))
}
