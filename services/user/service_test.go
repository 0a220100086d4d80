package user

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"vizhaa-backend/apperr"
	"vizhaa-backend/database/dbtest"
	userModel "vizhaa-backend/models/user"
	"vizhaa-backend/utils"

	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	userModel.BcryptCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func newOrganizer(phone, email string) *userModel.User {
	return &userModel.User{
		FullName: "Asha Rao",
		Email:    email,
		Phone:    phone,
		Password: "secret123",
		UserType: "organizer",
	}
}

func TestCreateHashesPassword(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()

	u := newOrganizer("9876543210", "Asha@Example.com")
	if err := svc.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := svc.FindByPhone(ctx, "9876543210")
	if err != nil {
		t.Fatalf("FindByPhone: %v", err)
	}
	if stored.Password == "secret123" {
		t.Fatal("password stored in plaintext")
	}
	if !svc.ValidateCredential(stored, "secret123") {
		t.Fatal("hash does not match original password")
	}
	if svc.ValidateCredential(stored, "wrong") {
		t.Fatal("wrong password accepted")
	}
	if stored.Email != "asha@example.com" {
		t.Fatalf("email not lower-cased: %q", stored.Email)
	}
	if !stored.IsActive {
		t.Fatal("new accounts should be active")
	}
}

func TestCreateRejectsDuplicates(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()

	if err := svc.Create(ctx, newOrganizer("9876543210", "a@example.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := svc.Create(ctx, newOrganizer("9876543210", "b@example.com"))
	if !errors.Is(err, apperr.ErrPhoneTaken) {
		t.Fatalf("duplicate phone: err = %v", err)
	}
	err = svc.Create(ctx, newOrganizer("9123456789", "A@example.com"))
	if !errors.Is(err, apperr.ErrEmailTaken) {
		t.Fatalf("duplicate email: err = %v", err)
	}
}

func TestCreateValidates(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	err := svc.Create(context.Background(), &userModel.User{Phone: "9876543210"})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	err = svc.Create(context.Background(), &userModel.User{
		FullName: "X", Email: "x@example.com", Phone: "9876543210", Password: "secret123", UserType: "admin",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("unknown user type: err = %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()
	if err := svc.Create(ctx, newOrganizer("9876543210", "a@example.com")); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Authenticate(ctx, "9876543210", "secret123"); err != nil {
		t.Fatalf("phone login: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "A@example.com", "secret123"); err != nil {
		t.Fatalf("email login: %v", err)
	}

	_, wrongPassword := svc.Authenticate(ctx, "9876543210", "nope")
	_, unknownPhone := svc.Authenticate(ctx, "9000000000", "secret123")
	if !errors.Is(wrongPassword, apperr.ErrInvalidCredential) || !errors.Is(unknownPhone, apperr.ErrInvalidCredential) {
		t.Fatalf("want identical invalid credential errors, got %v and %v", wrongPassword, unknownPhone)
	}
	if wrongPassword.Error() != unknownPhone.Error() {
		t.Fatal("messages must not reveal whether the phone exists")
	}
}

func TestAuthenticateInactive(t *testing.T) {
	db := dbtest.Open(t)
	svc := NewService(db, nil)
	ctx := context.Background()
	u := newOrganizer("9876543210", "a@example.com")
	if err := svc.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := db.Model(&userModel.User{}).Where("id = ?", u.ID).Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Authenticate(ctx, "9876543210", "secret123"); !errors.Is(err, apperr.ErrAccountInactive) {
		t.Fatalf("want ErrAccountInactive, got %v", err)
	}
}

func TestResetPasswordRehashes(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()
	u := newOrganizer("9876543210", "a@example.com")
	if err := svc.Create(ctx, u); err != nil {
		t.Fatal(err)
	}

	if err := svc.ResetPassword(ctx, u.ID, "brandnew1"); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	stored, _ := svc.FindByID(ctx, u.ID)
	if stored.Password == "brandnew1" {
		t.Fatal("new password stored in plaintext")
	}
	if !svc.ValidateCredential(stored, "brandnew1") || svc.ValidateCredential(stored, "secret123") {
		t.Fatal("password was not replaced")
	}
	if err := svc.ResetPassword(ctx, u.ID, "123"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("short password: err = %v", err)
	}
}

func TestCreateHashesHashShapedPassword(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()

	other, err := bcrypt.GenerateFromPassword([]byte("other-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	submitted := string(other)
	u := newOrganizer("9876543210", "a@example.com")
	u.Password = submitted
	if err := svc.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, _ := svc.FindByID(ctx, u.ID)
	if stored.Password == submitted {
		t.Fatal("submitted password stored verbatim")
	}
	if _, err := svc.Authenticate(ctx, "9876543210", submitted); err != nil {
		t.Fatalf("login with the submitted password: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "9876543210", "other-password"); !errors.Is(err, apperr.ErrInvalidCredential) {
		t.Fatalf("login with the hash's source password should fail, got %v", err)
	}
}

func TestPasswordTooLong(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()
	long := strings.Repeat("p", 80)

	u := newOrganizer("9876543210", "a@example.com")
	u.Password = long
	if err := svc.Create(ctx, u); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("Create with long password: err = %v", err)
	}

	u = newOrganizer("9876543210", "a@example.com")
	if err := svc.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetPassword(ctx, u.ID, long); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("ResetPassword with long password: err = %v", err)
	}
	if err := svc.ResetPassword(ctx, u.ID, strings.Repeat("p", 72)); err != nil {
		t.Fatalf("72 bytes should be accepted: %v", err)
	}
}

func TestResetPasswordUnknownUser(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	err := svc.ResetPassword(context.Background(), "missing", "brandnew1")
	if !errors.Is(err, apperr.ErrUserNotFound) {
		t.Fatalf("want ErrUserNotFound, got %v", err)
	}
}

func TestUpdateFieldsStripsProtected(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()
	u := newOrganizer("9876543210", "a@example.com")
	if err := svc.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	before, _ := svc.FindByID(ctx, u.ID)

	updated, err := svc.UpdateFields(ctx, u.ID, map[string]interface{}{
		"fullName":   "Asha R",
		"password":   "hijack",
		"userType":   "supplier",
		"isVerified": true,
		"isApproved": true,
		"address":    map[string]interface{}{"city": "Chennai", "pincode": "600001"},
		"services":   []interface{}{"Lunch"},
	})
	if err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	if updated.FullName != "Asha R" || updated.Address.City != "Chennai" {
		t.Fatalf("allowed fields not applied: %+v", updated)
	}
	if updated.UserType != "organizer" || updated.IsVerified || updated.IsApproved {
		t.Fatalf("protected fields changed: %+v", updated)
	}
	if updated.Password != before.Password {
		t.Fatal("password changed through profile update")
	}
	if len(updated.Services) != 1 || updated.Services[0] != "Lunch" {
		t.Fatalf("services = %v", updated.Services)
	}
}

func TestUpdateFieldsEmailConflict(t *testing.T) {
	svc := NewService(dbtest.Open(t), nil)
	ctx := context.Background()
	a := newOrganizer("9876543210", "a@example.com")
	b := newOrganizer("9123456789", "b@example.com")
	if err := svc.Create(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := svc.Create(ctx, b); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateFields(ctx, b.ID, map[string]interface{}{"email": "A@example.com"}); !errors.Is(err, apperr.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestAadharNumberEncrypted(t *testing.T) {
	cipher, err := utils.NewCipher("test-encryption-key")
	if err != nil {
		t.Fatal(err)
	}
	db := dbtest.Open(t)
	svc := NewService(db, cipher)
	ctx := context.Background()

	u := &userModel.User{
		FullName: "Ravi", Email: "r@example.com", Phone: "9876543210", Password: "secret123",
		UserType: "supplier", AadharNumber: "123412341234",
	}
	if err := svc.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	var raw string
	db.Raw("SELECT aadhar_number FROM users WHERE id = ?", u.ID).Scan(&raw)
	if raw == "123412341234" || raw == "" {
		t.Fatalf("aadhar number not sealed: %q", raw)
	}
	stored, _ := svc.FindByID(ctx, u.ID)
	if got, err := svc.AadharNumber(stored); err != nil || got != "123412341234" {
		t.Fatalf("AadharNumber = %q, %v", got, err)
	}
}
