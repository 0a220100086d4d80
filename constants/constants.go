package constants

import "time"

// User roles
const (
	UserTypeOrganizer = "organizer"
	UserTypeSupplier  = "supplier"
)

// Service categories an event can request and a supplier can offer.
const (
	ServiceBreakfast = "Breakfast"
	ServiceDinner    = "Dinner"
	ServiceSnacks    = "Snacks"
	ServiceCocktails = "Cocktails"
	ServiceLunch     = "Lunch"
	ServiceMiniTifin = "Mini Tifin"
	ServiceHighTea   = "High Tea"
	ServiceDesserts  = "Desserts"
)

var ServiceCategories = []string{
	ServiceBreakfast,
	ServiceDinner,
	ServiceSnacks,
	ServiceCocktails,
	ServiceLunch,
	ServiceMiniTifin,
	ServiceHighTea,
	ServiceDesserts,
}

// IsServiceCategory reports whether s is a known service category.
func IsServiceCategory(s string) bool {
	for _, c := range ServiceCategories {
		if c == s {
			return true
		}
	}
	return false
}

// OTP
const (
	OTPSessionTTL       = 10 * time.Minute
	OTPMaxAttempts      = 3
	OTPRegistrationSMS  = "Your OTP for registration is {otp}. Valid for 10 minutes."
	OTPPasswordResetSMS = "Your OTP for password reset is {otp}. Valid for 10 minutes."
)

// Pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	RecentItems     = 5
	MaxPage         = 100000
)

// Uploads
const (
	MaxDocumentSize = 5 * 1024 * 1024
)

var AllowedDocumentTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "application/pdf"}
