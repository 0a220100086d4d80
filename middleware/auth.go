package middleware

import (
	"context"
	"strings"

	"vizhaa-backend/apperr"
	userModel "vizhaa-backend/models/user"
	"vizhaa-backend/services/token"

	"github.com/gofiber/fiber/v2"
)

// UserFinder resolves the subject of a token to an account.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*userModel.User, error)
}

// Authenticate requires a bearer token that resolves to an active account.
// The account is stored in Locals under "user".
func Authenticate(tokens *token.Service, users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			return apperr.Unauthorized("Access denied. No token provided.")
		}

		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			return apperr.Unauthorized("Invalid token.")
		}

		user, err := users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return apperr.Unauthorized("Invalid token. User not found.")
			}
			return err
		}
		if !user.IsActive {
			return apperr.Unauthorized("Account is deactivated.")
		}

		c.Locals("user", user)
		c.Locals("userId", user.ID)
		return c.Next()
	}
}

// RequireUserType lets only the given role through. It must run after Authenticate.
func RequireUserType(userType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperr.Unauthorized("Access denied. No token provided.")
		}
		if user.UserType != userType {
			return apperr.Forbidden("Access denied. Only " + userType + "s can access this resource.")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated account, or nil.
func CurrentUser(c *fiber.Ctx) *userModel.User {
	user, _ := c.Locals("user").(*userModel.User)
	return user
}
