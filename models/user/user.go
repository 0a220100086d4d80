package user

import (
	"strings"
	"time"

	"vizhaa-backend/constants"
	"vizhaa-backend/models/common"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// BcryptCost is the work factor for stored password hashes.
var BcryptCost = 12

// User is an organizer or supplier account.
type User struct {
	ID           string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	FullName     string     `gorm:"type:varchar(255);not null" json:"fullName"`
	Email        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Phone        string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	UserType     string     `gorm:"type:varchar(20);not null;index" json:"userType"`
	Gender       string     `gorm:"type:varchar(10)" json:"gender,omitempty"`
	DOB          *time.Time `json:"dob,omitempty"`
	IsVerified   bool       `gorm:"default:false" json:"isVerified"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`
	Address      Address    `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	ProfileImage string     `gorm:"type:varchar(2048)" json:"profileImage,omitempty"`

	// Organizer
	CompanyName string `gorm:"type:varchar(255)" json:"companyName,omitempty"`

	// Supplier
	Services     common.StringSlice `gorm:"type:text" json:"services"`
	AadharNumber string             `gorm:"type:varchar(255)" json:"-"`
	AadharCard   string             `gorm:"type:varchar(2048)" json:"aadharCard,omitempty"`
	IsApproved   bool               `gorm:"default:false" json:"isApproved"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns an id, normalises the email and hashes the password.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hash
	return nil
}

// MaxPasswordLength is the longest password bcrypt accepts, in bytes.
const MaxPasswordLength = 72

// HashPassword hashes a plaintext password. Callers that change a password
// after creation write the result to the password column themselves.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext candidate with the stored hash.
func (u *User) CheckPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

func (u *User) IsOrganizer() bool { return u.UserType == constants.UserTypeOrganizer }
func (u *User) IsSupplier() bool  { return u.UserType == constants.UserTypeSupplier }

// IsValidUserType reports whether t is a known role.
func IsValidUserType(t string) bool {
	return t == constants.UserTypeOrganizer || t == constants.UserTypeSupplier
}

// Contact is the public card of a user shown to the other side of a booking.
type Contact struct {
	ID          string             `json:"id"`
	FullName    string             `json:"fullName"`
	CompanyName string             `json:"companyName,omitempty"`
	Phone       string             `json:"phone"`
	Email       string             `json:"email"`
	Services    common.StringSlice `json:"services,omitempty"`
}

func (u *User) Contact() *Contact {
	return &Contact{
		ID:          u.ID,
		FullName:    u.FullName,
		CompanyName: u.CompanyName,
		Phone:       u.Phone,
		Email:       u.Email,
		Services:    u.Services,
	}
}
