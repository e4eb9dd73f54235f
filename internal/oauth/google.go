package oauth

import (
	"context"
	"net/http"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/result"
)

// GoogleEndpoints are the production endpoints for Google sign-in.
var GoogleEndpoints = Endpoints{
	TokenURL:    "https://oauth2.googleapis.com/token",
	UserInfoURL: "https://openidconnect.googleapis.com/v1/userinfo",
}

type GoogleProvider struct {
	httpProvider
}

// NewGoogleProvider builds the Google adapter. Pass a nil client for the
// default with a finite timeout.
func NewGoogleProvider(endpoints Endpoints, creds Credentials, client *http.Client) *GoogleProvider {
	return &GoogleProvider{httpProvider: newHTTPProvider("google", endpoints, creds, client)}
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code, redirectURI string) result.Result[string] {
	return p.exchangeCode(ctx, code, redirectURI)
}

func (p *GoogleProvider) FetchUserInfo(ctx context.Context, accessToken string) result.Result[UserInfo] {
	var payload struct {
		Sub           string `json:"sub"`
		ID            string `json:"id"` // legacy v2 userinfo field
		Email         string `json:"email"`
		Name          string `json:"name"`
		VerifiedEmail bool   `json:"verified_email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if derr := p.fetchUserInfoJSON(ctx, accessToken, &payload); derr != nil {
		return result.Err[UserInfo](derr)
	}

	providerID := payload.Sub
	if providerID == "" {
		providerID = payload.ID
	}
	// A well-formed response missing a required field is a contract
	// violation, not an unexpected error: it means Google changed shape
	// under us and is worth alerting on.
	if providerID == "" || payload.Email == "" {
		return result.Err[UserInfo](domain.ErrOAuthContract)
	}

	return result.Ok(UserInfo{
		Email:         payload.Email,
		ProviderID:    providerID,
		Provider:      p.name,
		Name:          payload.Name,
		EmailVerified: payload.VerifiedEmail || payload.EmailVerified,
	})
}
