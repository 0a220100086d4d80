package auth

import "strings"

// SignupRequest is shared by organizer and supplier registration. It arrives
// either as JSON or as multipart form fields next to the aadharCard file.
type SignupRequest struct {
	SessionID    string   `json:"sessionId" form:"sessionId" validate:"required"`
	Phone        string   `json:"phone" form:"phone" validate:"required,phone10"`
	FullName     string   `json:"fullName" form:"fullName" validate:"required,min=2,max=100"`
	Email        string   `json:"email" form:"email" validate:"required,email"`
	Password     string   `json:"password" form:"password" validate:"required,min=6,max=72"`
	CompanyName  string   `json:"companyName" form:"companyName" validate:"omitempty,max=100"`
	Services     []string `json:"services" form:"services" validate:"omitempty,dive,service"`
	AadharNumber string   `json:"aadharNumber" form:"aadharNumber" validate:"omitempty,len=12,numeric"`
	Gender       string   `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
}

// LoginRequest accepts either a phone number or an email address.
type LoginRequest struct {
	Phone    string `json:"phone" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// Contact returns whichever identifier the client sent.
func (r LoginRequest) Contact() string {
	return pickContact(r.Phone, r.Email)
}

type ForgotPasswordRequest struct {
	Phone string `json:"phone" validate:"required_without=Email"`
	Email string `json:"email" validate:"omitempty,email"`
}

func (r ForgotPasswordRequest) Contact() string {
	return pickContact(r.Phone, r.Email)
}

type VerifyResetRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	OTP       string `json:"otp" validate:"required,numeric,min=4,max=8"`
	Phone     string `json:"phone" validate:"required_without=Email"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func (r VerifyResetRequest) Contact() string {
	return pickContact(r.Phone, r.Email)
}

type ResetPasswordRequest struct {
	SessionID   string `json:"sessionId" validate:"required"`
	Phone       string `json:"phone" validate:"required_without=Email"`
	Email       string `json:"email" validate:"omitempty,email"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=72"`
}

func (r ResetPasswordRequest) Contact() string {
	return pickContact(r.Phone, r.Email)
}

func pickContact(phone, email string) string {
	if p := strings.TrimSpace(phone); p != "" {
		return p
	}
	return strings.TrimSpace(email)
}

// UserResponse is the account card returned by login, signup and profile reads.
type UserResponse struct {
	ID           string   `json:"id"`
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	UserType     string   `json:"userType"`
	IsVerified   bool     `json:"isVerified"`
	Gender       string   `json:"gender,omitempty"`
	DOB          string   `json:"dob,omitempty"`
	CompanyName  string   `json:"companyName,omitempty"`
	Services     []string `json:"services,omitempty"`
	AadharNumber string   `json:"aadharNumber,omitempty"`
	AadharCard   string   `json:"aadharCard,omitempty"`
	IsApproved   *bool    `json:"isApproved,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
}
