package supplier

import (
	eventController "vizhaa-backend/controllers/event"
	"vizhaa-backend/middleware"
	bookingService "vizhaa-backend/services/booking"
	documentService "vizhaa-backend/services/document"
	"vizhaa-backend/types"
	bookingTypes "vizhaa-backend/types/booking"
	"vizhaa-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// Controller serves the supplier workspace under /api/supplier.
type Controller struct {
	Bookings  *bookingService.Service
	Documents *documentService.Service
}

func NewSupplierController(bookings *bookingService.Service, documents *documentService.Service) *Controller {
	return &Controller{Bookings: bookings, Documents: documents}
}

func (h *Controller) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.Bookings.SupplierDashboard(c.UserContext(), middleware.CurrentUser(c).ID)
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

// Events lists open events with the supplier's own booking state on each.
func (h *Controller) Events(c *fiber.Ctx) error {
	page, limit := utils.Pagination(c)
	listings, total, err := h.Bookings.EventsForSupplier(c.UserContext(), middleware.CurrentUser(c).ID, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success:    true,
		Status:     fiber.StatusOK,
		Message:    "Events fetched successfully",
		Data:       listings,
		Pagination: types.NewPagination(page, limit, total),
	})
}

func (h *Controller) Book(c *fiber.Ctx) error {
	var req bookingTypes.ApplyRequest
	if len(c.Body()) > 0 {
		if err := utils.ParseBody(c, &req); err != nil {
			return err
		}
	}
	return eventController.Apply(c, h.Bookings, c.Params("eventId"), req)
}

func (h *Controller) ListBookings(c *fiber.Ctx) error {
	return eventController.SupplierBookings(c, h.Bookings)
}

// ListDocuments lists uploaded identity documents and their scan state.
func (h *Controller) ListDocuments(c *fiber.Ctx) error {
	scans, err := h.Documents.ListForUser(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Documents fetched successfully",
		Data:    scans,
	})
}
