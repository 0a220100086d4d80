package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"vizhaa-backend/apperr"
	userModel "vizhaa-backend/models/user"
	"vizhaa-backend/services/token"
	"vizhaa-backend/types"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type stubUsers map[string]*userModel.User

func (s stubUsers) FindByID(_ context.Context, id string) (*userModel.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperr.ErrUserNotFound
}

func newApp(t *testing.T) (*fiber.App, *token.Service) {
	t.Helper()
	tokens := token.NewService("test-secret", time.Hour)
	users := stubUsers{
		"org":      {ID: "org", UserType: "organizer", IsActive: true},
		"sup":      {ID: "sup", UserType: "supplier", IsActive: true},
		"inactive": {ID: "inactive", UserType: "supplier", IsActive: false},
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(false)})
	app.Use(Metrics())
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db exploded") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperr.ErrEventNotFound })
	app.Get("/no-row", func(c *fiber.Ctx) error { return fmt.Errorf("load: %w", gorm.ErrRecordNotFound) })
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return apperr.Validation("eventName is required", apperr.FieldError{Field: "eventName", Message: "eventName is required"})
	})

	api := app.Group("/api", Authenticate(tokens, users))
	api.Get("/me", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"id": CurrentUser(c).ID}) })
	api.Get("/organizer-only", RequireUserType("organizer"), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app, tokens
}

func do(t *testing.T, app *fiber.App, path, bearer string) (int, types.ApiResponse) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	var body types.ApiResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return resp.StatusCode, body
}

func TestAuthenticate(t *testing.T) {
	app, tokens := newApp(t)
	orgToken, _ := tokens.Issue("org", "organizer")
	supToken, _ := tokens.Issue("sup", "supplier")
	inactiveToken, _ := tokens.Issue("inactive", "supplier")
	ghostToken, _ := tokens.Issue("ghost", "supplier")

	tests := []struct {
		name   string
		path   string
		bearer string
		want   int
	}{
		{"no token", "/api/me", "", fiber.StatusUnauthorized},
		{"garbage token", "/api/me", "not-a-jwt", fiber.StatusUnauthorized},
		{"unknown user", "/api/me", ghostToken, fiber.StatusUnauthorized},
		{"inactive user", "/api/me", inactiveToken, fiber.StatusUnauthorized},
		{"valid", "/api/me", orgToken, fiber.StatusOK},
		{"wrong role", "/api/organizer-only", supToken, fiber.StatusForbidden},
		{"right role", "/api/organizer-only", orgToken, fiber.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, body := do(t, app, tt.path, tt.bearer); got != tt.want {
				t.Fatalf("status = %d (%s), want %d", got, body.Message, tt.want)
			}
		})
	}
}

func TestErrorHandlerEnvelope(t *testing.T) {
	app, _ := newApp(t)

	status, body := do(t, app, "/boom", "")
	if status != fiber.StatusInternalServerError || body.Success || body.Message != "Internal server error" {
		t.Fatalf("internal error = %d %+v", status, body)
	}
	if body.Data != nil {
		t.Fatal("internal details must stay hidden outside development")
	}

	status, body = do(t, app, "/missing", "")
	if status != fiber.StatusNotFound || body.Message != "Event not found" {
		t.Fatalf("not found = %d %+v", status, body)
	}

	status, body = do(t, app, "/no-row", "")
	if status != fiber.StatusNotFound || body.Message != "Resource not found" {
		t.Fatalf("record not found = %d %+v", status, body)
	}

	status, body = do(t, app, "/invalid", "")
	if status != fiber.StatusBadRequest || body.Errors == nil {
		t.Fatalf("validation = %d %+v", status, body)
	}
}
