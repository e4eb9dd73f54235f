package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/result"
	"github.com/taskhive/taskhive/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Register(ctx context.Context, cmd usecase.RegisterCommand) result.Result[usecase.RegisteredUser]
	Login(ctx context.Context, cmd usecase.LoginCommand) result.Result[usecase.TokenPair]
	Refresh(ctx context.Context, cmd usecase.RefreshCommand) result.Result[usecase.TokenPair]
	Logout(ctx context.Context, cmd usecase.LogoutCommand) result.Result[struct{}]
	ConfirmEmail(ctx context.Context, cmd usecase.ConfirmEmailCommand) result.Result[string]
	OAuthLogin(ctx context.Context, cmd usecase.OAuthLoginCommand) result.Union2[usecase.NewOAuthUser, usecase.ExistingOAuthUser]
}

type AuthHandler struct {
	auth   authUsecaser
	logger *slog.Logger
}

func NewAuthHandler(auth authUsecaser, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger.With("component", "auth_handler")}
}

type registerRequest struct {
	Email    string `json:"email"    binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerResponse struct {
	UserID string `json:"user_id"`
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := h.auth.Register(c.Request.Context(), usecase.RegisterCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.JSON(http.StatusCreated, registerResponse{UserID: r.Value().UserID})
}

type loginRequest struct {
	Email      string `json:"email"    binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := h.auth.Login(c.Request.Context(), usecase.LoginCommand{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  r.Value().AccessToken,
		RefreshToken: r.Value().RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := h.auth.Refresh(c.Request.Context(), usecase.RefreshCommand{RefreshToken: req.RefreshToken})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  r.Value().AccessToken,
		RefreshToken: r.Value().RefreshToken,
	})
}

// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r := h.auth.Logout(c.Request.Context(), usecase.LogoutCommand{RefreshToken: req.RefreshToken})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /auth/confirm?token=<jwt>
func (h *AuthHandler) Confirm(c *gin.Context) {
	r := h.auth.ConfirmEmail(c.Request.Context(), usecase.ConfirmEmailCommand{Token: c.Query("token")})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}

type oauthResponse struct {
	UserID       string `json:"user_id"`
	NewUser      bool   `json:"new_user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// GET /auth/oauth/:provider/callback?code=<code>
// A first-time identity answers 201, a returning one 200.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	r := h.auth.OAuthLogin(c.Request.Context(), usecase.OAuthLoginCommand{
		Provider:    c.Param("provider"),
		Code:        c.Query("code"),
		RedirectURI: c.Query("redirect_uri"),
	})
	if !r.IsOk() {
		respondError(c, r.Error())
		return
	}

	r.Match(
		func(created usecase.NewOAuthUser) {
			c.JSON(http.StatusCreated, oauthResponse{
				UserID:       created.UserID,
				NewUser:      true,
				AccessToken:  created.Tokens.AccessToken,
				RefreshToken: created.Tokens.RefreshToken,
			})
		},
		func(existing usecase.ExistingOAuthUser) {
			c.JSON(http.StatusOK, oauthResponse{
				UserID:       existing.UserID,
				AccessToken:  existing.Tokens.AccessToken,
				RefreshToken: existing.Tokens.RefreshToken,
			})
		},
		func(e *domain.Error) { respondError(c, e) },
	)
}
