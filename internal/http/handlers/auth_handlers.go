package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/you/rakshasetu/domain"
	"github.com/you/rakshasetu/internal/http/middleware"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc domain.AuthService
	otpSvc  domain.OTPService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, otpSvc domain.OTPService) *AuthHandlers {
	return &AuthHandlers{
		authSvc: authSvc,
		otpSvc:  otpSvc,
	}
}

// SignupRequest represents a signup request. Phone, address and aadhaar are
// folded into the profile.
type SignupRequest struct {
	Email    string            `json:"email" binding:"required,email"`
	Name     string            `json:"name" binding:"required"`
	Password string            `json:"password" binding:"required"`
	Contact  string            `json:"contact,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Address  string            `json:"address,omitempty"`
	Aadhaar  string            `json:"aadhaar,omitempty"`
	Profile  map[string]string `json:"profile,omitempty"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// OTPIssueRequest represents an OTP issue request
type OTPIssueRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// OTPVerifyRequest represents OTP verification request
type OTPVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

func (r SignupRequest) toInput() domain.SignupInput {
	profile := make(map[string]string, len(r.Profile)+3)
	for k, v := range r.Profile {
		profile[k] = v
	}
	for k, v := range map[string]string{"phone": r.Phone, "address": r.Address, "aadhaar": r.Aadhaar} {
		if v != "" {
			profile[k] = v
		}
	}
	return domain.SignupInput{
		Email:    r.Email,
		Name:     r.Name,
		Contact:  r.Contact,
		Password: r.Password,
		Profile:  profile,
	}
}

// Signup handles account creation
func (h *AuthHandlers) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidationFailed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrUserAlreadyExists):
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		default:
			log.Printf("SIGNUP_FAILED: email=%s error=%v timestamp=%s",
				req.Email, err, time.Now().UTC().Format(time.RFC3339))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": sessionBody(result)})
}

// Login handles password login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidationFailed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		default:
			log.Printf("LOGIN_FAILED: email=%s error=%v timestamp=%s",
				req.Email, err, time.Now().UTC().Format(time.RFC3339))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionBody(result)})
}

// IssueOTP handles OTP generation and delivery
func (h *AuthHandlers) IssueOTP(c *gin.Context) {
	var req OTPIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	challenge, err := h.otpSvc.Issue(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidationFailed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrUnknownIdentity):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			log.Printf("OTP_ISSUE_FAILED: email=%s error=%v timestamp=%s",
				req.Email, err, time.Now().UTC().Format(time.RFC3339))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send OTP"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":    "OTP sent successfully",
			"expires_at": challenge.ExpiresAt.UTC(),
		},
	})
}

// VerifyOTP handles OTP verification
func (h *AuthHandlers) VerifyOTP(c *gin.Context) {
	var req OTPVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.otpSvc.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidationFailed):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrChallengeNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No OTP found for this email"})
		case errors.Is(err, domain.ErrChallengeExpired):
			c.JSON(http.StatusGone, gin.H{"error": "OTP has expired"})
		case errors.Is(err, domain.ErrChallengeInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid OTP code"})
		default:
			log.Printf("OTP_VERIFY_FAILED: email=%s error=%v timestamp=%s",
				req.Email, err, time.Now().UTC().Format(time.RFC3339))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "OTP verification failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": sessionBody(result)})
}

// Me returns the profile of the authenticated identity
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity not found in context"})
		return
	}

	user, err := h.authSvc.GetUserProfile(c.Request.Context(), identity)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": userBody(user)})
}

// Protected is the sample bearer-guarded resource
func (h *AuthHandlers) Protected(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity not found in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":  "This is a protected route",
			"identity": identity,
		},
	})
}

func sessionBody(result *domain.AuthResult) gin.H {
	body := gin.H{
		"token":        result.AccessToken,
		"access_token": result.AccessToken,
		"token_type":   result.TokenType,
		"expires_in":   result.ExpiresIn,
		"expires_at":   result.ExpiresAt.UTC(),
	}
	if result.User != nil {
		body["user"] = userBody(result.User)
	}
	return body
}

func userBody(user *domain.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"contact":    user.Contact,
		"profile":    user.Profile,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}
}
