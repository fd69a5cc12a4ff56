package admin

import (
	"errors"
	"log"
	"strings"
	"time"

	"shelleylegion/middleware"
	"shelleylegion/services"
	"shelleylegion/utils"

	"github.com/gofiber/fiber/v2"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type AuthHandler struct {
	session *services.AdminSession
}

func NewAuthHandler(session *services.AdminSession) *AuthHandler {
	return &AuthHandler{session: session}
}

// Login exchanges the admin username and password for a bearer token
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	// Validate input
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "Username and password are required")
	}

	token, expiresAt, err := h.session.Authenticate(req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		log.Printf("🚫 Failed admin login for %q from %s", req.Username, c.IP())
		return utils.JSONError(c, fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return err
	}

	log.Printf("🔐 Admin %s logged in from %s", req.Username, c.IP())
	return c.JSON(LoginResponse{
		Success:   true,
		Token:     token,
		Username:  req.Username,
		ExpiresAt: expiresAt,
	})
}

// VerifyToken reports the identity behind a token already checked by
// AdminAuthMiddleware
func (h *AuthHandler) VerifyToken(c *fiber.Ctx) error {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return utils.JSONError(c, fiber.StatusUnauthorized, "Invalid or expired token")
	}

	resp := fiber.Map{
		"valid":    true,
		"username": claims.Username,
		"isAdmin":  claims.IsAdmin,
	}
	if claims.ExpiresAt != nil {
		resp["expiresAt"] = claims.ExpiresAt.Time
	}
	return utils.JSONSuccess(c, resp)
}

// Logout handles admin logout (client-side token removal)
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	return utils.JSONSuccess(c, fiber.Map{
		"message": "Logged out successfully",
	})
}
