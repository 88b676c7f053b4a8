package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"booknet/internal/core/domain"
	"booknet/internal/core/services"
	"booknet/internal/pkg/response"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	DateOfBirth string `json:"date_of_birth"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// Validate validates the registration payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Firstname, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Lastname, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.DateOfBirth, validation.Date("2006-01-02")),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
	)
}

// LoginRequest represents login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the login payload
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// Register handles user registration. The account is created disabled and
// an activation code is emailed.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	input := &services.RegisterInput{
		Firstname: strings.TrimSpace(req.Firstname),
		Lastname:  strings.TrimSpace(req.Lastname),
		Email:     strings.TrimSpace(req.Email),
		Password:  req.Password,
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return response.BadRequest(c, "Invalid date of birth")
		}
		input.DateOfBirth = &dob
	}

	if err := h.authService.Register(c.Context(), input); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateIdentity):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, domain.ErrRoleNotConfigured):
			log.Printf("Registration failed: %v", err)
			return response.InternalServerError(c, "Registration is not available")
		case errors.Is(err, domain.ErrEmailDispatch):
			log.Printf("Registration failed: %v", err)
			return response.InternalServerError(c, "Failed to send activation email")
		default:
			log.Printf("Registration failed: %v", err)
			return response.InternalServerError(c, "Failed to register")
		}
	}

	return response.Accepted(c, "Registration accepted, check your email for the activation code")
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return response.BadRequest(c, err.Error())
	}

	token, user, err := h.authService.Authenticate(c.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return response.Unauthorized(c, "Invalid email or password")
		case errors.Is(err, domain.ErrAccountDisabled):
			return response.Forbidden(c, "Account is not activated")
		case errors.Is(err, domain.ErrAccountLocked):
			return response.Forbidden(c, "Account is locked")
		default:
			log.Printf("Login failed: %v", err)
			return response.InternalServerError(c, "Failed to login")
		}
	}

	return response.Success(c, "Login successful", fiber.Map{
		"token": token,
		"user":  user.ToResponse(),
	})
}

// ActivateAccount consumes an activation code from the query string
func (h *AuthHandler) ActivateAccount(c *fiber.Ctx) error {
	code := c.Query("token")
	if code == "" {
		return response.BadRequest(c, "Activation code is required")
	}

	if err := h.authService.ActivateAccount(c.Context(), code); err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenNotFound):
			return response.NotFound(c, "Activation code not found")
		case errors.Is(err, domain.ErrTokenExpired):
			return response.Gone(c, "Activation code has expired, a new code has been sent")
		case errors.Is(err, domain.ErrEmailDispatch):
			log.Printf("Activation failed: %v", err)
			return response.InternalServerError(c, "Failed to send activation email")
		default:
			log.Printf("Activation failed: %v", err)
			return response.InternalServerError(c, "Failed to activate account")
		}
	}

	return response.Success(c, "Account activated successfully", nil)
}
