package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/taskboard-service/internal/api/dto"
	"github.com/spec-kit/taskboard-service/internal/auth"
	"github.com/spec-kit/taskboard-service/internal/service"
)

// AuthHandler exposes registration, login, logout, email verification and the
// current-user endpoint. Expected operation failures travel as 200 responses
// with success:false and a message; only a verification timeout (503),
// a missing session (401) and a tripped rate limit (429) carry their own
// status codes.
type AuthHandler struct {
	auth    *service.AuthService
	cookies *auth.SessionCookies
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookies *auth.SessionCookies) *AuthHandler {
	return &AuthHandler{auth: authService, cookies: cookies}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, "Missing details")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return failure(c, "Missing details")
	}

	_, token, _, err := h.auth.Register(c.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return failure(c, "User already exists")
		}
		return failure(c, "Registration failed")
	}

	h.cookies.Attach(c, token)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Check your email for verification code.",
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, "Email and password are required")
	}
	if req.Email == "" || req.Password == "" {
		return failure(c, "Email and password are required")
	}

	_, token, _, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return failure(c, "No user found")
		case errors.Is(err, service.ErrInvalidCredentials):
			return failure(c, "Invalid Credentials")
		case errors.Is(err, service.ErrVerificationTimeout):
			return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "Password verification failed",
			})
		default:
			return failure(c, "Log in error")
		}
	}

	h.cookies.Attach(c, token)
	return c.JSON(fiber.Map{"success": true})
}

// Logout handles POST /api/auth/logout. Clearing is unconditional: a request
// without a session still succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.cookies.Clear(c)
	return c.JSON(fiber.Map{"success": true, "message": "Logged out"})
}

// VerifyEmail handles POST /api/auth/verify-email.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return failure(c, "User not found.")
	}

	_, token, _, err := h.auth.VerifyEmail(c.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return failure(c, "User not found.")
		case errors.Is(err, service.ErrCodeMismatch):
			return failure(c, "Invalid verification code.")
		case errors.Is(err, service.ErrCodeExpired):
			return failure(c, "Verification code expired.")
		default:
			return failure(c, "Verification failed")
		}
	}

	h.cookies.AttachStrict(c, token)
	return c.JSON(fiber.Map{"success": true, "message": "Email verification complete."})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Not authenticated",
		})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"user":    dto.NewUserProfile(user),
	})
}

func failure(c *fiber.Ctx, message string) error {
	return c.JSON(fiber.Map{"success": false, "message": message})
}
