package otp

// SendOTPRequest represents the request payload for sending a registration OTP
type SendOTPRequest struct {
	Phone    string `json:"phone" form:"phone" validate:"required,phone10"`
	UserType string `json:"userType" form:"userType" validate:"omitempty,oneof=organizer supplier"`
}

// VerifyOTPRequest represents the request payload for verifying an OTP
type VerifyOTPRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	OTP       string `json:"otp" validate:"required,numeric,min=4,max=8"`
	Phone     string `json:"phone" validate:"required,phone10"`
}

// StatusRequest asks for the state of a session without changing it.
type StatusRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Phone     string `json:"phone" validate:"required,phone10"`
}

// SendOTPResponse is returned after a code has been dispatched. Code is only
// filled when the fake provider is configured.
type SendOTPResponse struct {
	SessionID string `json:"sessionId"`
	ExpiresAt string `json:"expiresAt"`
	OTP       string `json:"otp,omitempty"`
}

// StatusResponse describes a stored OTP session.
type StatusResponse struct {
	IsVerified bool   `json:"isVerified"`
	IsExpired  bool   `json:"isExpired"`
	ExpiresAt  string `json:"expiresAt"`
	CreatedAt  string `json:"createdAt"`
	UserType   string `json:"userType,omitempty"`
}
