package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vmarchenko/contacts-api/internal/domain"
	"github.com/vmarchenko/contacts-api/internal/transport/http/middleware"
	"github.com/vmarchenko/contacts-api/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*usecase.TokenPair, error)
	Refresh(ctx context.Context, presented string) (*usecase.TokenPair, error)
	VerifyEmail(ctx context.Context, rawToken string) error
	ResendVerification(ctx context.Context, email string) error
	UpdateAvatar(ctx context.Context, user *domain.User, r io.Reader) (string, error)
}

type AuthHandler struct {
	authUsecase authUsecaser
	logger      *slog.Logger
}

func NewAuthHandler(authUsecase authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		logger:      logger.With("component", "auth_handler"),
	}
}

type credentialsRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type userResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	IsVerified bool    `json:"is_verified"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authUsecase.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": errAccountExists})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   userResponse{ID: user.ID, Email: user.Email, IsVerified: user.IsVerified},
		"detail": "User successfully created. Check email for verification",
	})
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// GET /auth/refresh_token — bearer credential is the refresh token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	pair, err := h.authUsecase.Refresh(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "refresh", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// GET /auth/verify?token=<jwt> — idempotent verification landing page.
func (h *AuthHandler) Verify(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		return
	}

	if err := h.authUsecase.VerifyEmail(c.Request.Context(), rawToken); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
		case errors.Is(err, domain.ErrUserNotFound):
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte("<h1>User not found</h1>"))
		default:
			h.logger.ErrorContext(c.Request.Context(), "verify email", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte("<h1>Email confirmed</h1><p>You can now sign in.</p>"))
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /auth/resend-verify
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.authUsecase.ResendVerification(c.Request.Context(), req.Email)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"detail": "Verification email sent"})
	case errors.Is(err, domain.ErrAlreadyVerified):
		c.JSON(http.StatusOK, gin.H{"detail": "Already verified"})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errUserNotFound})
	default:
		h.logger.ErrorContext(c.Request.Context(), "resend verification", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
	}
}

// POST /auth/avatar — multipart upload, requires a verified caller.
func (h *AuthHandler) UpdateAvatar(c *gin.Context) {
	user := middleware.CallerFromContext(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot open uploaded file"})
		return
	}
	defer f.Close()

	url, err := h.authUsecase.UpdateAvatar(c.Request.Context(), user, f)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "update avatar", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}
