// Package user is the account directory for organizers and suppliers.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vizhaa-backend/apperr"
	"vizhaa-backend/models/common"
	userModel "vizhaa-backend/models/user"
	"vizhaa-backend/utils"

	"gorm.io/gorm"
)

type Service struct {
	DB     *gorm.DB
	Cipher *utils.Cipher
}

func NewService(db *gorm.DB, cipher *utils.Cipher) *Service {
	return &Service{DB: db, Cipher: cipher}
}

// Create stores a new account. Phone and email must be unused.
func (s *Service) Create(ctx context.Context, u *userModel.User) error {
	u.Phone = utils.NormalizePhone(u.Phone)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	var missing []apperr.FieldError
	for _, f := range []struct{ name, value string }{
		{"fullName", u.FullName}, {"email", u.Email}, {"password", u.Password}, {"userType", u.UserType}, {"phone", u.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, apperr.FieldError{Field: f.name, Message: f.name + " is required"})
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("Missing required fields", missing...)
	}
	if len(u.Password) > userModel.MaxPasswordLength {
		return checkPassword("password", u.Password)
	}
	if !userModel.IsValidUserType(u.UserType) {
		return apperr.Validation("Invalid user type", apperr.FieldError{Field: "userType", Message: "must be organizer or supplier"})
	}

	db := s.DB.WithContext(ctx)
	if err := s.ensureUnique(db, u.Phone, u.Email, ""); err != nil {
		return err
	}

	if u.AadharNumber != "" {
		sealed, err := s.Cipher.Encrypt(u.AadharNumber)
		if err != nil {
			return apperr.Internal(err)
		}
		u.AadharNumber = sealed
	}

	if err := db.Create(u).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (s *Service) ensureUnique(db *gorm.DB, phone, email, exceptID string) error {
	if phone != "" {
		var n int64
		q := db.Model(&userModel.User{}).Where("phone = ?", phone)
		if exceptID != "" {
			q = q.Where("id <> ?", exceptID)
		}
		if err := q.Count(&n).Error; err != nil {
			return apperr.Internal(err)
		}
		if n > 0 {
			return apperr.ErrPhoneTaken
		}
	}
	if email != "" {
		var n int64
		q := db.Model(&userModel.User{}).Where("email = ?", email)
		if exceptID != "" {
			q = q.Where("id <> ?", exceptID)
		}
		if err := q.Count(&n).Error; err != nil {
			return apperr.Internal(err)
		}
		if n > 0 {
			return apperr.ErrEmailTaken
		}
	}
	return nil
}

func (s *Service) FindByPhone(ctx context.Context, phone string) (*userModel.User, error) {
	return s.findOne(ctx, "phone = ?", utils.NormalizePhone(phone))
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*userModel.User, error) {
	return s.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) FindByID(ctx context.Context, id string) (*userModel.User, error) {
	return s.findOne(ctx, "id = ?", id)
}

// FindByContact looks up by email when contact contains @, otherwise by phone.
func (s *Service) FindByContact(ctx context.Context, contact string) (*userModel.User, error) {
	if strings.Contains(contact, "@") {
		return s.FindByEmail(ctx, contact)
	}
	return s.FindByPhone(ctx, contact)
}

// ExistsByPhone reports whether an account already uses phone.
func (s *Service) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	var n int64
	err := s.DB.WithContext(ctx).Model(&userModel.User{}).Where("phone = ?", utils.NormalizePhone(phone)).Count(&n).Error
	if err != nil {
		return false, apperr.Internal(err)
	}
	return n > 0, nil
}

func (s *Service) findOne(ctx context.Context, query string, arg interface{}) (*userModel.User, error) {
	var u userModel.User
	if err := s.DB.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, apperr.Internal(err)
	}
	return &u, nil
}

// ValidateCredential compares a plaintext candidate against the stored hash.
func (s *Service) ValidateCredential(u *userModel.User, candidate string) bool {
	if u == nil || candidate == "" {
		return false
	}
	return u.CheckPassword(candidate)
}

// Authenticate resolves a phone or email plus password into an active user.
// Unknown accounts and wrong passwords give the same error.
func (s *Service) Authenticate(ctx context.Context, contact, password string) (*userModel.User, error) {
	u, err := s.FindByContact(ctx, contact)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return nil, apperr.ErrInvalidCredential
		}
		return nil, err
	}
	if !s.ValidateCredential(u, password) {
		return nil, apperr.ErrInvalidCredential
	}
	if !u.IsActive {
		return nil, apperr.ErrAccountInactive
	}
	return u, nil
}

// ResetPassword hashes the new password and writes only the password column.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	if err := checkPassword("newPassword", newPassword); err != nil {
		return err
	}
	hash, err := userModel.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	res := s.DB.WithContext(ctx).Model(&userModel.User{}).Where("id = ?", id).Update("password", hash)
	if res.Error != nil {
		return apperr.Internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUserNotFound
	}
	return nil
}

func checkPassword(field, password string) error {
	switch {
	case len(password) < 6:
		return apperr.Validation("Password must be at least 6 characters",
			apperr.FieldError{Field: field, Message: "must be at least 6 characters"})
	case len(password) > userModel.MaxPasswordLength:
		return apperr.Validation(fmt.Sprintf("Password must be at most %d bytes", userModel.MaxPasswordLength),
			apperr.FieldError{Field: field, Message: fmt.Sprintf("must be at most %d bytes", userModel.MaxPasswordLength)})
	}
	return nil
}

// protectedFields can never change through a profile update.
var protectedFields = map[string]bool{
	"password":     true,
	"userType":     true,
	"isVerified":   true,
	"isApproved":   true,
	"isActive":     true,
	"phone":        true,
	"id":           true,
	"aadharNumber": true,
	"aadharCard":   true,
	"createdAt":    true,
	"updatedAt":    true,
}

var profileColumns = map[string]string{
	"fullName":     "full_name",
	"email":        "email",
	"gender":       "gender",
	"companyName":  "company_name",
	"profileImage": "profile_image",
}

var addressColumns = map[string]string{
	"street":  "address_street",
	"city":    "address_city",
	"state":   "address_state",
	"pincode": "address_pincode",
}

// UpdateFields applies a generic profile update. Protected and unknown keys
// are dropped before anything is written.
func (s *Service) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) (*userModel.User, error) {
	updates := map[string]interface{}{}
	for key, value := range fields {
		if protectedFields[key] {
			continue
		}
		switch key {
		case "services":
			list, err := toStringSlice(value)
			if err != nil {
				return nil, apperr.Validation("services must be a list of strings")
			}
			updates["services"] = list
		case "dob":
			str, _ := value.(string)
			dob, err := parseDate(str)
			if err != nil {
				return nil, apperr.Validation("dob must be a date (YYYY-MM-DD)")
			}
			updates["dob"] = dob
		case "address":
			addr, ok := value.(map[string]interface{})
			if !ok {
				return nil, apperr.Validation("address must be an object")
			}
			for k, v := range addr {
				if col, ok := addressColumns[k]; ok {
					updates[col] = fmt.Sprint(v)
				}
			}
		default:
			col, ok := profileColumns[key]
			if !ok {
				continue
			}
			str, ok := value.(string)
			if !ok {
				return nil, apperr.Validation(key + " must be a string")
			}
			if key == "email" {
				str = strings.ToLower(strings.TrimSpace(str))
				if str == "" {
					return nil, apperr.Validation("email cannot be empty")
				}
			}
			updates[col] = str
		}
	}

	db := s.DB.WithContext(ctx)
	u, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return u, nil
	}
	if email, ok := updates["email"].(string); ok && email != u.Email {
		if err := s.ensureUnique(db, "", email, id); err != nil {
			return nil, err
		}
	}
	if err := db.Model(&userModel.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return s.FindByID(ctx, id)
}

// SetDocument records where the identity card was stored.
func (s *Service) SetDocument(ctx context.Context, id, location string) error {
	err := s.DB.WithContext(ctx).Model(&userModel.User{}).Where("id = ?", id).Update("aadhar_card", location).Error
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// AadharNumber returns the decrypted identity number of a user.
func (s *Service) AadharNumber(u *userModel.User) (string, error) {
	return s.Cipher.Decrypt(u.AadharNumber)
}

func toStringSlice(v interface{}) (common.StringSlice, error) {
	switch list := v.(type) {
	case []string:
		return common.StringSlice(list), nil
	case []interface{}:
		out := make(common.StringSlice, 0, len(list))
		for _, item := range list {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("non-string item %v", item)
			}
			out = append(out, str)
		}
		return out, nil
	case nil:
		return common.StringSlice{}, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// translateWriteError maps storage-level uniqueness failures onto conflicts.
func translateWriteError(err error) error {
	msg := strings.ToLower(err.Error())
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate") {
		switch {
		case strings.Contains(msg, "phone"):
			return apperr.ErrPhoneTaken
		case strings.Contains(msg, "email"):
			return apperr.ErrEmailTaken
		default:
			return apperr.Conflict("Duplicate value")
		}
	}
	return apperr.Internal(err)
}
