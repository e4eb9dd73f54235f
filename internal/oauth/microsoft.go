package oauth

import (
	"context"
	"net/http"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/result"
)

// MicrosoftEndpoints are the production endpoints for Microsoft sign-in
// (common tenant, Graph profile).
var MicrosoftEndpoints = Endpoints{
	TokenURL:    "https://login.microsoftonline.com/common/oauth2/v2.0/token",
	UserInfoURL: "https://graph.microsoft.com/v1.0/me",
}

type MicrosoftProvider struct {
	httpProvider
}

func NewMicrosoftProvider(endpoints Endpoints, creds Credentials, client *http.Client) *MicrosoftProvider {
	return &MicrosoftProvider{httpProvider: newHTTPProvider("microsoft", endpoints, creds, client)}
}

func (p *MicrosoftProvider) ExchangeCode(ctx context.Context, code, redirectURI string) result.Result[string] {
	return p.exchangeCode(ctx, code, redirectURI)
}

func (p *MicrosoftProvider) FetchUserInfo(ctx context.Context, accessToken string) result.Result[UserInfo] {
	var payload struct {
		ID                string `json:"id"`
		Mail              string `json:"mail"`
		UserPrincipalName string `json:"userPrincipalName"`
		DisplayName       string `json:"displayName"`
	}
	if derr := p.fetchUserInfoJSON(ctx, accessToken, &payload); derr != nil {
		return result.Err[UserInfo](derr)
	}

	// Graph leaves mail empty for accounts without a mailbox; the UPN is
	// the documented fallback address.
	email := payload.Mail
	if email == "" {
		email = payload.UserPrincipalName
	}
	if payload.ID == "" || email == "" {
		return result.Err[UserInfo](domain.ErrOAuthContract)
	}

	return result.Ok(UserInfo{
		Email:      email,
		ProviderID: payload.ID,
		Provider:   p.name,
		Name:       payload.DisplayName,
		// Graph does not expose a verified flag; a Microsoft account
		// address is provider-attested.
		EmailVerified: true,
	})
}
