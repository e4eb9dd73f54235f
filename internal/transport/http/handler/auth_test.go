package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/result"
	"github.com/taskhive/taskhive/internal/transport/http/handler"
	"github.com/taskhive/taskhive/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register     func(ctx context.Context, cmd usecase.RegisterCommand) result.Result[usecase.RegisteredUser]
	login        func(ctx context.Context, cmd usecase.LoginCommand) result.Result[usecase.TokenPair]
	refresh      func(ctx context.Context, cmd usecase.RefreshCommand) result.Result[usecase.TokenPair]
	logout       func(ctx context.Context, cmd usecase.LogoutCommand) result.Result[struct{}]
	confirmEmail func(ctx context.Context, cmd usecase.ConfirmEmailCommand) result.Result[string]
	oauthLogin   func(ctx context.Context, cmd usecase.OAuthLoginCommand) result.Union2[usecase.NewOAuthUser, usecase.ExistingOAuthUser]
}

func (f *fakeAuthUsecase) Register(ctx context.Context, cmd usecase.RegisterCommand) result.Result[usecase.RegisteredUser] {
	return f.register(ctx, cmd)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, cmd usecase.LoginCommand) result.Result[usecase.TokenPair] {
	return f.login(ctx, cmd)
}

func (f *fakeAuthUsecase) Refresh(ctx context.Context, cmd usecase.RefreshCommand) result.Result[usecase.TokenPair] {
	return f.refresh(ctx, cmd)
}

func (f *fakeAuthUsecase) Logout(ctx context.Context, cmd usecase.LogoutCommand) result.Result[struct{}] {
	return f.logout(ctx, cmd)
}

func (f *fakeAuthUsecase) ConfirmEmail(ctx context.Context, cmd usecase.ConfirmEmailCommand) result.Result[string] {
	return f.confirmEmail(ctx, cmd)
}

func (f *fakeAuthUsecase) OAuthLogin(ctx context.Context, cmd usecase.OAuthLoginCommand) result.Union2[usecase.NewOAuthUser, usecase.ExistingOAuthUser] {
	return f.oauthLogin(ctx, cmd)
}

func newAuthEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/confirm", h.Confirm)
	r.GET("/auth/oauth/:provider/callback", h.OAuthCallback)
	return r
}

func postJSON(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestRegister_InvalidJSON_Returns400(t *testing.T) {
	w := postJSON(t, newAuthEngine(&fakeAuthUsecase{}), "/auth/register", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_Success_Returns201(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, cmd usecase.RegisterCommand) result.Result[usecase.RegisteredUser] {
			if cmd.Email != "a@example.com" {
				t.Errorf("email = %q", cmd.Email)
			}
			return result.Ok(usecase.RegisteredUser{UserID: "u1"})
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/register", `{"email":"a@example.com","password":"correct horse"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	var resp struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.UserID != "u1" {
		t.Errorf("user_id = %q", resp.UserID)
	}
}

func TestRegister_BreachedPassword_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _ usecase.RegisterCommand) result.Result[usecase.RegisteredUser] {
			return result.Err[usecase.RegisteredUser](domain.ErrPasswordBreached)
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/register", `{"email":"a@example.com","password":"password123"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
	if !strings.Contains(w.Body.String(), domain.ErrPasswordBreached.Code) {
		t.Errorf("body missing code: %s", w.Body.String())
	}
}

func TestLogin_BadCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _ usecase.LoginCommand) result.Result[usecase.TokenPair] {
			return result.Err[usecase.TokenPair](domain.ErrInvalidCredentials)
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/login", `{"email":"a@example.com","password":"nope nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_Success_ReturnsPair(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, cmd usecase.LoginCommand) result.Result[usecase.TokenPair] {
			if !cmd.RememberMe {
				t.Error("remember_me not carried through")
			}
			return result.Ok(usecase.TokenPair{AccessToken: "at", RefreshToken: "rt"})
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/login", `{"email":"a@example.com","password":"pw pw pw","remember_me":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp.AccessToken != "at" || resp.RefreshToken != "rt" {
		t.Errorf("pair = %+v", resp)
	}
}

func TestRefresh_RevokedToken_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		refresh: func(_ context.Context, _ usecase.RefreshCommand) result.Result[usecase.TokenPair] {
			return result.Err[usecase.TokenPair](domain.ErrTokenRevoked)
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/refresh", `{"refresh_token":"rt"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogout_Success_Returns204(t *testing.T) {
	uc := &fakeAuthUsecase{
		logout: func(_ context.Context, cmd usecase.LogoutCommand) result.Result[struct{}] {
			if cmd.RefreshToken != "rt" {
				t.Errorf("refresh token = %q", cmd.RefreshToken)
			}
			return result.Ok(struct{}{})
		},
	}
	w := postJSON(t, newAuthEngine(uc), "/auth/logout", `{"refresh_token":"rt"}`)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestConfirm_UsedToken_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		confirmEmail: func(_ context.Context, _ usecase.ConfirmEmailCommand) result.Result[string] {
			return result.Err[string](domain.ErrTokenAlreadyUsed)
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/confirm?token=x", nil)
	newAuthEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestOAuthCallback_NewUser_Returns201(t *testing.T) {
	uc := &fakeAuthUsecase{
		oauthLogin: func(_ context.Context, cmd usecase.OAuthLoginCommand) result.Union2[usecase.NewOAuthUser, usecase.ExistingOAuthUser] {
			if cmd.Provider != "google" || cmd.Code != "c1" {
				t.Errorf("cmd = %+v", cmd)
			}
			return result.First[usecase.NewOAuthUser, usecase.ExistingOAuthUser](usecase.NewOAuthUser{
				UserID: "u1",
				Tokens: usecase.TokenPair{AccessToken: "at", RefreshToken: "rt"},
			})
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/oauth/google/callback?code=c1", nil)
	newAuthEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"new_user":true`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestOAuthCallback_ExistingUser_Returns200(t *testing.T) {
	uc := &fakeAuthUsecase{
		oauthLogin: func(_ context.Context, _ usecase.OAuthLoginCommand) result.Union2[usecase.NewOAuthUser, usecase.ExistingOAuthUser] {
			return result.Second[usecase.NewOAuthUser](usecase.ExistingOAuthUser{
				UserID: "u1",
				Tokens: usecase.TokenPair{AccessToken: "at", RefreshToken: "rt"},
			})
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/oauth/google/callback?code=c1", nil)
	newAuthEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

func TestOAuthCallback_ProviderTimeout_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		oauthLogin: func(_ context.Context, _ usecase.OAuthLoginCommand) result.Union2[usecase.NewOAuthUser, usecase.ExistingOAuthUser] {
			return result.UnionErr[usecase.NewOAuthUser, usecase.ExistingOAuthUser](domain.ErrOAuthProviderTimeout)
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/oauth/google/callback?code=c1", nil)
	newAuthEngine(uc).ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
