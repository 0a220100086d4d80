package utils

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"vizhaa-backend/apperr"
	"vizhaa-backend/constants"

	"github.com/gofiber/fiber/v2"
)

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"9876543210":      "9876543210",
		"+91 98765 43210": "9876543210",
		"919876543210":    "9876543210",
		"09876543210":     "9876543210",
		"98765-43210":     "9876543210",
		"12345":           "12345",
	}
	for in, want := range tests {
		if got := NormalizePhone(in); got != want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", in, got, want)
		}
	}
	if got := ToE164India("9876543210"); got != "919876543210" {
		t.Fatalf("ToE164India = %q", got)
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if !ValidatePhoneNumber("9876543210") {
		t.Fatal("ten digits should be valid")
	}
	for _, bad := range []string{"", "987654321", "98765432100", "98765abcde"} {
		if ValidatePhoneNumber(bad) {
			t.Errorf("%q should be invalid", bad)
		}
	}
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher("a passphrase that is not base64!")
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	sealed, err := c.Encrypt("123412341234")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if sealed == "123412341234" {
		t.Fatal("value stored in clear")
	}
	opened, err := c.Decrypt(sealed)
	if err != nil || opened != "123412341234" {
		t.Fatalf("Decrypt = %q, %v", opened, err)
	}
}

func TestNilCipherPassesThrough(t *testing.T) {
	c, err := NewCipher("")
	if err != nil || c != nil {
		t.Fatalf("empty key should give nil cipher, got %v %v", c, err)
	}
	v, _ := c.Encrypt("plain")
	if v != "plain" {
		t.Fatalf("nil cipher changed value: %q", v)
	}
}

type sampleRequest struct {
	Phone     string   `json:"phone" validate:"required,phone10"`
	EventTime string   `json:"eventTime" validate:"required,hhmm"`
	Services  []string `json:"services" validate:"dive,service"`
	Name      string   `json:"name" validate:"required,min=2,max=100"`
}

func TestValidate(t *testing.T) {
	ok := sampleRequest{Phone: "9876543210", EventTime: "18:30", Services: []string{"High Tea"}, Name: "Gala"}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := sampleRequest{Phone: "123", EventTime: "25:00", Services: []string{"Brunch"}, Name: "G"}
	err := Validate(bad)
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Kind != apperr.KindValidation {
		t.Fatalf("want validation error, got %v", err)
	}
	if len(ae.Fields) != 4 {
		t.Fatalf("want 4 field errors, got %d: %+v", len(ae.Fields), ae.Fields)
	}
	if ae.Fields[0].Field != "phone" {
		t.Fatalf("field names should use json tags, got %q", ae.Fields[0].Field)
	}
}

func TestRedactJSON(t *testing.T) {
	out := redactJSON(`{"phone":"9876543210","password":"secret","nested":{"otp":"1234"}}`)
	if strings.Contains(out, "secret") || strings.Contains(out, "1234") {
		t.Fatalf("secrets leaked: %s", out)
	}
	if !strings.Contains(out, "9876543210") {
		t.Fatalf("non-sensitive field dropped: %s", out)
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		query       string
		page, limit int
	}{
		{"", 1, constants.DefaultPageSize},
		{"?page=3&limit=20", 3, 20},
		{"?page=-4&limit=0", 1, constants.DefaultPageSize},
		{"?limit=5000", 1, constants.MaxPageSize},
		{"?page=9223372036854775807&limit=100", constants.MaxPage, 100},
	}

	for _, tt := range tests {
		var page, limit, offset int
		app := fiber.New()
		app.Get("/", func(c *fiber.Ctx) error {
			page, limit = Pagination(c)
			offset = Offset(page, limit)
			return nil
		})
		if _, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/"+tt.query, nil)); err != nil {
			t.Fatal(err)
		}
		if page != tt.page || limit != tt.limit {
			t.Errorf("%q: page, limit = %d, %d; want %d, %d", tt.query, page, limit, tt.page, tt.limit)
		}
		if offset < 0 {
			t.Errorf("%q: negative offset %d", tt.query, offset)
		}
	}
}
