package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/email"
	"github.com/taskhive/taskhive/internal/emailhash"
	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/oauth"
	"github.com/taskhive/taskhive/internal/password"
	"github.com/taskhive/taskhive/internal/pipeline"
	"github.com/taskhive/taskhive/internal/repository"
	"github.com/taskhive/taskhive/internal/result"
	"github.com/taskhive/taskhive/internal/token"
	"github.com/taskhive/taskhive/internal/verification"
)

// dummyPasswordHash is verified when the user does not exist so that a
// failed lookup and a failed password take comparable time. It is not a
// credential; no password produces it.
const dummyPasswordHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

type AuthUsecase struct {
	users        repository.UserRepository
	tokens       *token.Service
	verification *verification.Service
	hasher       *password.Hasher
	emails       *emailhash.Hasher
	breach       password.Checker
	sender       email.Sender
	providers    map[string]oauth.Provider
	registry     *pipeline.Registry
	confirmBase  string
	logger       *slog.Logger
}

func NewAuthUsecase(
	users repository.UserRepository,
	tokens *token.Service,
	verificationSvc *verification.Service,
	hasher *password.Hasher,
	emails *emailhash.Hasher,
	breach password.Checker,
	sender email.Sender,
	providers map[string]oauth.Provider,
	confirmBase string,
	logger *slog.Logger,
) *AuthUsecase {
	u := &AuthUsecase{
		users:        users,
		tokens:       tokens,
		verification: verificationSvc,
		hasher:       hasher,
		emails:       emails,
		breach:       breach,
		sender:       sender,
		providers:    providers,
		registry:     pipeline.NewRegistry(),
		confirmBase:  confirmBase,
		logger:       logger.With("component", "auth_usecase"),
	}
	u.registerValidators()
	return u
}

// ---- commands and results ----

type RegisterCommand struct {
	Email    string
	Password string
}

type RegisteredUser struct {
	UserID string
}

type LoginCommand struct {
	Email      string
	Password   string
	RememberMe bool
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type RefreshCommand struct {
	RefreshToken string
}

type LogoutCommand struct {
	RefreshToken string
}

type ConfirmEmailCommand struct {
	Token string
}

type OAuthLoginCommand struct {
	Provider    string
	Code        string
	RedirectURI string
}

// NewOAuthUser and ExistingOAuthUser are the two legitimate outcomes of a
// social login; callers branch on them to decide onboarding.
type NewOAuthUser struct {
	UserID string
	Tokens TokenPair
}

type ExistingOAuthUser struct {
	UserID string
	Tokens TokenPair
}

// ---- validators ----

var fieldValidate = validator.New()

func (u *AuthUsecase) registerValidators() {
	pipeline.Register(u.registry, func(_ context.Context, cmd RegisterCommand) *domain.Error {
		if fieldValidate.Var(cmd.Email, "required,email") != nil {
			return domain.NewValidationError("EMAIL_INVALID", "email is required and must be a valid address")
		}
		return nil
	})
	pipeline.Register(u.registry, func(_ context.Context, cmd RegisterCommand) *domain.Error {
		if len(cmd.Password) < 8 {
			return domain.NewValidationError("PASSWORD_TOO_SHORT", "password must be at least 8 characters")
		}
		return nil
	})

	pipeline.Register(u.registry, func(_ context.Context, cmd LoginCommand) *domain.Error {
		if cmd.Email == "" || cmd.Password == "" {
			return domain.NewValidationError("CREDENTIALS_REQUIRED", "email and password are required")
		}
		return nil
	})

	pipeline.Register(u.registry, func(_ context.Context, cmd RefreshCommand) *domain.Error {
		if cmd.RefreshToken == "" {
			return domain.NewValidationError("REFRESH_TOKEN_REQUIRED", "refresh token is required")
		}
		return nil
	})

	pipeline.Register(u.registry, func(_ context.Context, cmd ConfirmEmailCommand) *domain.Error {
		if cmd.Token == "" {
			return domain.NewValidationError("TOKEN_REQUIRED", "verification token is required")
		}
		return nil
	})

	pipeline.Register(u.registry, func(_ context.Context, cmd OAuthLoginCommand) *domain.Error {
		if cmd.Provider == "" || cmd.Code == "" {
			return domain.NewValidationError("OAUTH_PARAMS_REQUIRED", "provider and authorization code are required")
		}
		return nil
	})
}

// ---- operations ----

// Register creates an account: breach screen, hash password and email,
// store the user, email a verification link.
func (u *AuthUsecase) Register(ctx context.Context, cmd RegisterCommand) result.Result[RegisteredUser] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.register)
}

func (u *AuthUsecase) register(ctx context.Context, cmd RegisterCommand) result.Result[RegisteredUser] {
	breached, err := u.breach.IsBreached(ctx, cmd.Password)
	if err != nil {
		u.logger.ErrorContext(ctx, "breach screen", "error", err)
		return result.Err[RegisteredUser](domain.NewValidationError("REGISTRATION_UNAVAILABLE", "registration is temporarily unavailable"))
	}
	if breached {
		metrics.BreachChecksTotal.WithLabelValues("breached").Inc()
		return result.Err[RegisteredUser](domain.ErrPasswordBreached)
	}
	metrics.BreachChecksTotal.WithLabelValues("clean").Inc()

	passwordHash, err := u.hasher.Hash(cmd.Password)
	if err != nil {
		u.logger.ErrorContext(ctx, "hash password", "error", err)
		return result.Err[RegisteredUser](domain.NewValidationError("REGISTRATION_UNAVAILABLE", "registration is temporarily unavailable"))
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		EmailHash:    u.emails.Hash(cmd.Email),
		PasswordHash: passwordHash,
	}
	if err := u.users.Create(ctx, user); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return result.Err[RegisteredUser](derr)
		}
		u.logger.ErrorContext(ctx, "create user", "error", err)
		return result.Err[RegisteredUser](domain.NewValidationError("REGISTRATION_UNAVAILABLE", "registration is temporarily unavailable"))
	}

	if err := u.sendVerificationEmail(ctx, user.ID, cmd.Email); err != nil {
		// Account exists; the user can request the email again. Log and move on.
		u.logger.ErrorContext(ctx, "send verification email", "user_id", user.ID, "error", err)
	}

	return result.Ok(RegisteredUser{UserID: user.ID})
}

func (u *AuthUsecase) sendVerificationEmail(ctx context.Context, userID, emailAddr string) error {
	tok, err := u.verification.Generate(ctx, userID)
	if err != nil {
		return fmt.Errorf("generate verification token: %w", err)
	}
	metrics.TokensIssuedTotal.WithLabelValues("verification").Inc()

	subject, body := email.VerificationEmail(u.confirmBase, tok)
	if err := u.sender.Send(ctx, emailAddr, subject, body); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

// Login checks credentials and issues a token pair. Every failure surfaces
// the same error: a caller can never learn whether the address or the
// password was wrong.
func (u *AuthUsecase) Login(ctx context.Context, cmd LoginCommand) result.Result[TokenPair] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.login)
}

func (u *AuthUsecase) login(ctx context.Context, cmd LoginCommand) result.Result[TokenPair] {
	user, err := u.users.FindByEmailHash(ctx, u.emails.Hash(cmd.Email))

	// Verify against a dummy hash when the user is unknown so both paths
	// cost a bcrypt comparison.
	targetHash := dummyPasswordHash
	if err == nil {
		targetHash = user.PasswordHash
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		u.logger.ErrorContext(ctx, "find user by email hash", "error", err)
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return result.Err[TokenPair](domain.ErrInvalidCredentials)
	}

	if !u.hasher.Verify(cmd.Password, targetHash) || user == nil {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return result.Err[TokenPair](domain.ErrInvalidCredentials)
	}

	pair, derr := u.issueTokenPair(ctx, user, cmd.RememberMe)
	if derr != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("error").Inc()
		return result.Err[TokenPair](derr)
	}
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return result.Ok(pair)
}

func (u *AuthUsecase) issueTokenPair(ctx context.Context, user *domain.User, rememberMe bool) (TokenPair, *domain.Error) {
	access, err := u.tokens.GenerateAccessToken(ctx, user.ID, user.EmailHash)
	if err != nil {
		u.logger.ErrorContext(ctx, "generate access token", "error", err)
		return TokenPair{}, domain.ErrInvalidCredentials
	}
	refresh, err := u.tokens.GenerateRefreshToken(ctx, user.ID, rememberMe)
	if err != nil {
		u.logger.ErrorContext(ctx, "generate refresh token", "error", err)
		return TokenPair{}, domain.ErrInvalidCredentials
	}
	metrics.TokensIssuedTotal.WithLabelValues("access").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a live refresh token for a fresh pair. The old token is
// revoked so each refresh credential is honored once.
func (u *AuthUsecase) Refresh(ctx context.Context, cmd RefreshCommand) result.Result[TokenPair] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.refresh)
}

func (u *AuthUsecase) refresh(ctx context.Context, cmd RefreshCommand) result.Result[TokenPair] {
	subject := u.tokens.UserIDFromToken(ctx, cmd.RefreshToken)
	if !subject.IsOk() {
		return result.Err[TokenPair](subject.Error())
	}
	userID := subject.Value()

	validated := u.tokens.ValidateRefreshToken(ctx, cmd.RefreshToken, userID)
	if !validated.IsOk() {
		return result.Err[TokenPair](validated.Error())
	}

	// The subject must still resolve to a live account.
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return result.Err[TokenPair](domain.ErrInvalidCredentials)
	}

	if err := u.tokens.RevokeRefreshToken(ctx, cmd.RefreshToken); err != nil {
		u.logger.ErrorContext(ctx, "rotate refresh token", "error", err)
		return result.Err[TokenPair](domain.ErrInvalidCredentials)
	}

	pair, derr := u.issueTokenPair(ctx, user, false)
	if derr != nil {
		return result.Err[TokenPair](derr)
	}
	return result.Ok(pair)
}

// Logout revokes the presented refresh token. Idempotent.
func (u *AuthUsecase) Logout(ctx context.Context, cmd LogoutCommand) result.Result[struct{}] {
	if err := u.tokens.RevokeRefreshToken(ctx, cmd.RefreshToken); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return result.Err[struct{}](derr)
		}
		u.logger.ErrorContext(ctx, "revoke refresh token", "error", err)
		return result.Err[struct{}](domain.ErrInvalidCredentials)
	}
	metrics.TokensRevokedTotal.Inc()
	return result.Ok(struct{}{})
}

// ConfirmEmail consumes a verification token and marks the account
// verified. A replayed token fails.
func (u *AuthUsecase) ConfirmEmail(ctx context.Context, cmd ConfirmEmailCommand) result.Result[string] {
	return pipeline.Dispatch(ctx, u.registry, cmd, u.confirmEmail)
}

func (u *AuthUsecase) confirmEmail(ctx context.Context, cmd ConfirmEmailCommand) result.Result[string] {
	consumed := u.verification.Consume(ctx, cmd.Token)
	if !consumed.IsOk() {
		return consumed
	}
	userID := consumed.Value()

	if err := u.users.MarkEmailVerified(ctx, userID); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return result.Err[string](derr)
		}
		u.logger.ErrorContext(ctx, "mark email verified", "user_id", userID, "error", err)
		return result.Err[string](domain.ErrTokenMalformed.WithMessage("verification could not be completed"))
	}
	return result.Ok(userID)
}

// OAuthLogin runs the provider exchange and either links a new account or
// signs in an existing one; the two outcomes are distinct success shapes.
func (u *AuthUsecase) OAuthLogin(ctx context.Context, cmd OAuthLoginCommand) result.Union2[NewOAuthUser, ExistingOAuthUser] {
	plain := pipeline.Dispatch(ctx, u.registry, cmd, u.oauthLogin)
	if !plain.IsOk() {
		return result.UnionErr[NewOAuthUser, ExistingOAuthUser](plain.Error())
	}
	return plain.Value()
}

func (u *AuthUsecase) oauthLogin(ctx context.Context, cmd OAuthLoginCommand) result.Result[result.Union2[NewOAuthUser, ExistingOAuthUser]] {
	type union = result.Union2[NewOAuthUser, ExistingOAuthUser]

	provider, ok := u.providers[cmd.Provider]
	if !ok {
		return result.Err[union](domain.NewValidationError("OAUTH_PROVIDER_UNKNOWN", "unknown identity provider"))
	}

	authenticated := oauth.Authenticate(ctx, provider, cmd.Code, cmd.RedirectURI)
	if !authenticated.IsOk() {
		return result.Err[union](authenticated.Error())
	}
	info := authenticated.Value()

	existing, err := u.users.FindByOAuthIdentity(ctx, info.Provider, info.ProviderID)
	switch {
	case err == nil:
		pair, derr := u.issueTokenPair(ctx, existing, true)
		if derr != nil {
			return result.Err[union](derr)
		}
		return result.Ok(result.Second[NewOAuthUser](ExistingOAuthUser{UserID: existing.ID, Tokens: pair}))
	case !errors.Is(err, domain.ErrUserNotFound):
		u.logger.ErrorContext(ctx, "find oauth identity", "provider", info.Provider, "error", err)
		return result.Err[union](domain.ErrInvalidCredentials)
	}

	user := &domain.User{
		ID:            uuid.NewString(),
		EmailHash:     u.emails.Hash(info.Email),
		EmailVerified: info.EmailVerified,
	}
	if err := u.users.Create(ctx, user); err != nil {
		var derr *domain.Error
		if errors.As(err, &derr) {
			return result.Err[union](derr)
		}
		u.logger.ErrorContext(ctx, "create oauth user", "provider", info.Provider, "error", err)
		return result.Err[union](domain.ErrInvalidCredentials)
	}
	if err := u.users.LinkOAuthIdentity(ctx, &domain.OAuthIdentity{
		Provider:       info.Provider,
		ProviderUserID: info.ProviderID,
		UserID:         user.ID,
		CreatedAt:      time.Now(),
	}); err != nil {
		u.logger.ErrorContext(ctx, "link oauth identity", "provider", info.Provider, "error", err)
		return result.Err[union](domain.ErrInvalidCredentials)
	}

	pair, derr := u.issueTokenPair(ctx, user, true)
	if derr != nil {
		return result.Err[union](derr)
	}
	return result.Ok(result.First[NewOAuthUser, ExistingOAuthUser](NewOAuthUser{UserID: user.ID, Tokens: pair}))
}
