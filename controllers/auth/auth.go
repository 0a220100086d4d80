package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"vizhaa-backend/apperr"
	"vizhaa-backend/constants"
	"vizhaa-backend/logger"
	"vizhaa-backend/metrics"
	"vizhaa-backend/middleware"
	otpModel "vizhaa-backend/models/otp"
	userModel "vizhaa-backend/models/user"
	documentService "vizhaa-backend/services/document"
	otpService "vizhaa-backend/services/otp"
	"vizhaa-backend/services/token"
	userService "vizhaa-backend/services/user"
	"vizhaa-backend/types"
	authTypes "vizhaa-backend/types/auth"
	otpTypes "vizhaa-backend/types/otp"
	"vizhaa-backend/utils"

	"github.com/gofiber/fiber/v2"
)

// Controller serves registration, login, password reset and profile routes.
type Controller struct {
	Users     *userService.Service
	OTP       *otpService.Service
	Tokens    *token.Service
	Documents *documentService.Service
}

func NewAuthController(users *userService.Service, otp *otpService.Service, tokens *token.Service, documents *documentService.Service) *Controller {
	return &Controller{Users: users, OTP: otp, Tokens: tokens, Documents: documents}
}

// SendOTP starts phone verification for a new account.
func (h *Controller) SendOTP(c *fiber.Ctx) error {
	var req otpTypes.SendOTPRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	taken, err := h.Users.ExistsByPhone(ctx, req.Phone)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ErrPhoneTaken
	}

	session, err := h.OTP.IssueSession(ctx, req.Phone, otpModel.PurposeRegistration, req.UserType)
	metrics.OTPSendsTotal.WithLabelValues(string(otpModel.PurposeRegistration), metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "OTP sent to your mobile number",
		Data: otpTypes.SendOTPResponse{
			SessionID: session.SessionID,
			ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
			OTP:       h.OTP.DevCode(session.SessionID),
		},
	})
}

// VerifyOTP checks a registration code.
func (h *Controller) VerifyOTP(c *fiber.Ctx) error {
	var req otpTypes.VerifyOTPRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	session, err := h.OTP.VerifySession(c.UserContext(), req.SessionID, req.Phone, otpModel.PurposeRegistration, req.OTP)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Phone number verified successfully",
		Data: fiber.Map{
			"phoneVerified": true,
			"sessionId":     session.SessionID,
			"userType":      session.UserType,
		},
	})
}

// OTPStatus reports whether a registration session is verified or expired.
func (h *Controller) OTPStatus(c *fiber.Ctx) error {
	var req otpTypes.StatusRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	session, err := h.OTP.Status(c.UserContext(), req.SessionID, req.Phone, otpModel.PurposeRegistration)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "OTP session found",
		Data: otpTypes.StatusResponse{
			IsVerified: session.IsVerified,
			IsExpired:  h.OTP.Expired(session),
			ExpiresAt:  session.ExpiresAt.Format(time.RFC3339),
			CreatedAt:  session.CreatedAt.Format(time.RFC3339),
			UserType:   session.UserType,
		},
	})
}

func (h *Controller) OrganizerSignup(c *fiber.Ctx) error {
	return h.signup(c, constants.UserTypeOrganizer)
}

func (h *Controller) SupplierSignup(c *fiber.Ctx) error {
	return h.signup(c, constants.UserTypeSupplier)
}

type upload struct {
	name     string
	mimeType string
	data     []byte
}

func (h *Controller) signup(c *fiber.Ctx, userType string) (err error) {
	defer func() {
		metrics.RegistrationsTotal.WithLabelValues(userType, metrics.Result(err)).Inc()
	}()

	var req authTypes.SignupRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	var card *upload
	if userType == constants.UserTypeSupplier {
		if card, err = readCard(c); err != nil {
			return err
		}
	}

	ctx := c.UserContext()
	session, err := h.OTP.RequireVerified(ctx, req.SessionID, req.Phone, otpModel.PurposeRegistration)
	if err != nil {
		return err
	}
	if session.UserType != "" && session.UserType != userType {
		return apperr.Validation(fmt.Sprintf("This phone number was verified for a %s account", session.UserType))
	}

	u := &userModel.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        req.Email,
		Password:     req.Password,
		UserType:     userType,
		Phone:        req.Phone,
		Gender:       req.Gender,
		AadharNumber: req.AadharNumber,
		IsVerified:   true,
		IsActive:     true,
	}
	if u.IsOrganizer() {
		u.CompanyName = req.CompanyName
	} else {
		u.Services = req.Services
		u.IsApproved = true
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return err
	}
	if err := h.OTP.ConsumeSession(ctx, session.ID); err != nil {
		logger.Warning(fmt.Sprintf("Registration session %s was not consumed: %v", session.ID, err))
	}

	if card != nil {
		h.storeCard(ctx, u, card, req.AadharNumber)
	}

	signed, err := h.Tokens.Issue(u.ID, u.UserType)
	if err != nil {
		return apperr.Internal(err)
	}

	message := "Organizer registered successfully!"
	if u.IsSupplier() {
		message = "Supplier registered successfully!"
	}
	logger.Success(fmt.Sprintf("Registered %s %s", userType, u.ID))
	return c.Status(fiber.StatusCreated).JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusCreated,
		Message: message,
		Token:   signed,
		User:    h.userResponse(u, false),
	})
}

// readCard loads the optional aadharCard file so it can be rejected before
// the account is created.
func readCard(c *fiber.Ctx) (*upload, error) {
	fh, err := c.FormFile("aadharCard")
	if err != nil {
		if errors.Is(err, fiber.ErrUnprocessableEntity) || errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, apperr.Validation("Invalid aadharCard upload")
		}
		return nil, nil
	}

	mimeType := fh.Header.Get(fiber.HeaderContentType)
	if !documentService.IsAllowedType(mimeType) {
		return nil, apperr.Validation("Invalid file type. Only JPEG, PNG, WebP and PDF files are allowed",
			apperr.FieldError{Field: "aadharCard", Message: "unsupported file type"})
	}
	if fh.Size > constants.MaxDocumentSize {
		return nil, apperr.Validation("File size must be less than 5MB",
			apperr.FieldError{Field: "aadharCard", Message: "file too large"})
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &upload{name: fh.Filename, mimeType: mimeType, data: data}, nil
}

// storeCard keeps the account even when the document cannot be stored.
func (h *Controller) storeCard(ctx context.Context, u *userModel.User, card *upload, aadharNumber string) {
	if h.Documents == nil {
		return
	}
	scan, err := h.Documents.Upload(ctx, u.ID, card.name, card.mimeType, card.data, aadharNumber)
	if err != nil {
		logger.Error("Failed to store aadhar card for "+u.ID, err)
		return
	}
	if err := h.Users.SetDocument(ctx, u.ID, scan.Location); err != nil {
		logger.Error("Failed to link aadhar card for "+u.ID, err)
		return
	}
	u.AadharCard = scan.Location
}

// Login exchanges a phone or email and password for a token.
func (h *Controller) Login(c *fiber.Ctx) error {
	var req authTypes.LoginRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	u, err := h.Users.Authenticate(c.UserContext(), req.Contact(), req.Password)
	metrics.LoginsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	signed, err := h.Tokens.Issue(u.ID, u.UserType)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Login successful",
		Token:   signed,
		User:    h.userResponse(u, false),
	})
}

// ForgotPassword sends a reset code without revealing whether the account exists.
func (h *Controller) ForgotPassword(c *fiber.Ctx) error {
	var req authTypes.ForgotPasswordRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	u, err := h.Users.FindByContact(ctx, req.Contact())
	if errors.Is(err, apperr.ErrUserNotFound) {
		return c.JSON(types.ApiResponse{
			Success: true,
			Status:  fiber.StatusOK,
			Message: "If the account exists, a reset OTP has been sent",
		})
	}
	if err != nil {
		return err
	}

	session, err := h.OTP.IssueSession(ctx, u.Phone, otpModel.PurposePasswordReset, "")
	metrics.OTPSendsTotal.WithLabelValues(string(otpModel.PurposePasswordReset), metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "OTP sent to your phone for password reset",
		Data: otpTypes.SendOTPResponse{
			SessionID: session.SessionID,
			ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
			OTP:       h.OTP.DevCode(session.SessionID),
		},
	})
}

// resetPhone maps the contact a client used for a reset onto the phone the
// session was issued for.
func (h *Controller) resetPhone(ctx context.Context, contact string) (string, error) {
	if !strings.Contains(contact, "@") {
		return contact, nil
	}
	u, err := h.Users.FindByEmail(ctx, contact)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return "", apperr.ErrSessionNotFound.With("Invalid OTP session")
		}
		return "", err
	}
	return u.Phone, nil
}

func (h *Controller) VerifyResetOTP(c *fiber.Ctx) error {
	var req authTypes.VerifyResetRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	phone, err := h.resetPhone(ctx, req.Contact())
	if err != nil {
		return err
	}
	session, err := h.OTP.VerifySession(ctx, req.SessionID, phone, otpModel.PurposePasswordReset, req.OTP)
	if err != nil {
		return err
	}

	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "OTP verified successfully",
		Data:    fiber.Map{"sessionId": session.SessionID},
	})
}

func (h *Controller) ResetPassword(c *fiber.Ctx) error {
	var req authTypes.ResetPasswordRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return err
	}

	ctx := c.UserContext()
	phone, err := h.resetPhone(ctx, req.Contact())
	if err != nil {
		return err
	}
	session, err := h.OTP.RequireVerified(ctx, req.SessionID, phone, otpModel.PurposePasswordReset)
	if err != nil {
		if errors.Is(err, apperr.ErrSessionNotFound) {
			return apperr.ErrSessionNotFound.With("Please verify your OTP first")
		}
		return err
	}
	u, err := h.Users.FindByPhone(ctx, phone)
	if err != nil {
		return err
	}
	if err := h.Users.ResetPassword(ctx, u.ID, req.NewPassword); err != nil {
		return err
	}
	if err := h.OTP.ConsumeSession(ctx, session.ID); err != nil {
		logger.Warning(fmt.Sprintf("Reset session %s was not consumed: %v", session.ID, err))
	}

	logger.Success("Password reset for " + u.ID)
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Password reset successfully",
	})
}

func (h *Controller) GetProfile(c *fiber.Ctx) error {
	u, err := h.Users.FindByID(c.UserContext(), middleware.CurrentUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Profile fetched successfully",
		Data:    h.userResponse(u, true),
	})
}

// UpdateProfile applies a partial profile update. Role, password and
// verification flags are ignored.
func (h *Controller) UpdateProfile(c *fiber.Ctx) error {
	fields := map[string]interface{}{}
	if err := c.BodyParser(&fields); err != nil {
		return apperr.Validation("Invalid request body")
	}

	u, err := h.Users.UpdateFields(c.UserContext(), middleware.CurrentUser(c).ID, fields)
	if err != nil {
		return err
	}
	return c.JSON(types.ApiResponse{
		Success: true,
		Status:  fiber.StatusOK,
		Message: "Profile updated successfully",
		Data:    h.userResponse(u, true),
	})
}

func (h *Controller) userResponse(u *userModel.User, full bool) authTypes.UserResponse {
	resp := authTypes.UserResponse{
		ID:         u.ID,
		FullName:   u.FullName,
		Email:      u.Email,
		Phone:      u.Phone,
		UserType:   u.UserType,
		IsVerified: u.IsVerified,
	}
	if full {
		resp.Gender = u.Gender
		resp.CreatedAt = u.CreatedAt.Format(time.RFC3339)
		if u.DOB != nil {
			resp.DOB = u.DOB.Format("2006-01-02")
		}
	}

	switch {
	case u.IsOrganizer():
		resp.CompanyName = u.CompanyName
	case u.IsSupplier():
		approved := u.IsApproved
		resp.Services = u.Services
		resp.IsApproved = &approved
		if full {
			resp.AadharCard = u.AadharCard
			if u.AadharNumber != "" {
				number, err := h.Users.AadharNumber(u)
				if err != nil {
					logger.Error("Failed to decrypt aadhar number for "+u.ID, err)
				} else {
					resp.AadharNumber = number
				}
			}
		}
	}
	return resp
}
