package routes

import (
	"vizhaa-backend/constants"
	"vizhaa-backend/controllers/auth"
	"vizhaa-backend/controllers/event"
	"vizhaa-backend/controllers/organizer"
	"vizhaa-backend/controllers/server"
	"vizhaa-backend/controllers/supplier"
	"vizhaa-backend/middleware"
	bookingService "vizhaa-backend/services/booking"
	documentService "vizhaa-backend/services/document"
	eventService "vizhaa-backend/services/event"
	otpService "vizhaa-backend/services/otp"
	"vizhaa-backend/services/token"
	userService "vizhaa-backend/services/user"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer needs, built once in main.
type Services struct {
	DB        *gorm.DB
	Env       string
	Users     *userService.Service
	OTP       *otpService.Service
	Tokens    *token.Service
	Events    *eventService.Service
	Bookings  *bookingService.Service
	Documents *documentService.Service
}

func SetupRoutes(app *fiber.App, s Services) {
	healthController := server.NewHealthController(s.DB, s.Env)
	authController := auth.NewAuthController(s.Users, s.OTP, s.Tokens, s.Documents)
	eventController := event.NewEventController(s.Events, s.Bookings)
	organizerController := organizer.NewOrganizerController(s.Events, s.Bookings)
	supplierController := supplier.NewSupplierController(s.Bookings, s.Documents)

	authenticate := middleware.Authenticate(s.Tokens, s.Users)
	organizerOnly := middleware.RequireUserType(constants.UserTypeOrganizer)
	supplierOnly := middleware.RequireUserType(constants.UserTypeSupplier)

	/*=============================================================================
	| Health & Metrics
	===============================================================================*/
	app.Get("/health", healthController.Health)
	app.Get("/metrics", middleware.MetricsHandler())

	api := app.Group("/api")
	api.Get("/health", healthController.Health)

	/*=============================================================================
	| Public Auth Routes
	===============================================================================*/
	authGroup := api.Group("/auth")
	authGroup.Post("/send-otp", authController.SendOTP)
	authGroup.Post("/verify-otp", authController.VerifyOTP)
	authGroup.Post("/otp-status", authController.OTPStatus)
	authGroup.Post("/organizer/signup", authController.OrganizerSignup)
	authGroup.Post("/supplier/signup", authController.SupplierSignup)
	authGroup.Post("/login", authController.Login)
	authGroup.Post("/forgot-password", authController.ForgotPassword)
	authGroup.Post("/verify-reset-otp", authController.VerifyResetOTP)
	authGroup.Post("/reset-password", authController.ResetPassword)

	/*=============================================================================
	| Protected Auth Routes
	===============================================================================*/
	authGroup.Get("/profile", authenticate, authController.GetProfile)
	authGroup.Put("/profile", authenticate, authController.UpdateProfile)

	/*=============================================================================
	| Event Routes
	===============================================================================*/
	events := api.Group("/events", authenticate)

	// Supplier side
	events.Get("/available/events", supplierOnly, eventController.Available)
	events.Post("/book", supplierOnly, eventController.Book)
	events.Get("/supplier/bookings", supplierOnly, eventController.SupplierBookings)

	// Organizer side
	events.Get("/stats", organizerOnly, eventController.Stats)
	events.Get("/status/:status", organizerOnly, eventController.ListByStatus)
	events.Get("/applications/:eventId", organizerOnly, eventController.Applications)
	events.Put("/application/:bookingId/status", organizerOnly, eventController.UpdateApplicationStatus)
	events.Put("/:eventId/payment", organizerOnly, eventController.UpdatePayment)
	events.Post("/", organizerOnly, eventController.Create)
	events.Get("/", organizerOnly, eventController.List)
	events.Get("/:id", organizerOnly, eventController.Get)
	events.Put("/:id", organizerOnly, eventController.Update)
	events.Delete("/:id", organizerOnly, eventController.Delete)

	/*=============================================================================
	| Organizer Routes
	===============================================================================*/
	org := api.Group("/organizer", authenticate, organizerOnly)
	org.Get("/dashboard", organizerController.Dashboard)
	org.Post("/events", eventController.Create)
	org.Get("/events", eventController.List)
	org.Get("/events/:eventId/suppliers", organizerController.EventSuppliers)
	org.Get("/bookings", organizerController.ListBookings)
	org.Get("/bookings/:bookingId", organizerController.GetBooking)
	org.Get("/bookings/:bookingId/history", organizerController.BookingHistory)
	org.Put("/bookings/:bookingId/status", organizerController.UpdateBookingStatus)

	/*=============================================================================
	| Supplier Routes
	===============================================================================*/
	sup := api.Group("/supplier", authenticate, supplierOnly)
	sup.Get("/dashboard", supplierController.Dashboard)
	sup.Get("/events", supplierController.Events)
	sup.Post("/events/:eventId/book", supplierController.Book)
	sup.Get("/bookings", supplierController.ListBookings)
	sup.Get("/documents", supplierController.ListDocuments)
}
