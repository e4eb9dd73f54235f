// Package oauth implements the multi-provider social-login exchange:
// authorization code -> provider access token -> normalized user info.
//
// Providers implement two operations; Authenticate supplies the shared
// sequencing, so every provider fails and succeeds the same way.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/taskhive/taskhive/internal/domain"
	"github.com/taskhive/taskhive/internal/metrics"
	"github.com/taskhive/taskhive/internal/result"
)

// UserInfo is the normalized shape every provider response maps onto.
type UserInfo struct {
	Email         string
	ProviderID    string
	Provider      string
	Name          string
	EmailVerified bool
}

// Provider is one identity provider's two extension points.
type Provider interface {
	Name() string

	// ExchangeCode trades an authorization code for a provider access
	// token at the token endpoint.
	ExchangeCode(ctx context.Context, code, redirectURI string) result.Result[string]

	// FetchUserInfo retrieves and normalizes the user profile using the
	// access token from the exchange.
	FetchUserInfo(ctx context.Context, accessToken string) result.Result[UserInfo]
}

// Authenticate runs the full exchange. Strictly sequential: user-info needs
// the exchange's output. Short-circuits on the first failure, so a failed
// exchange never reaches the user-info endpoint.
func Authenticate(ctx context.Context, p Provider, code, redirectURI string) result.Result[UserInfo] {
	start := time.Now()
	r := result.Bind(p.ExchangeCode(ctx, code, redirectURI), func(accessToken string) result.Result[UserInfo] {
		return p.FetchUserInfo(ctx, accessToken)
	})
	metrics.OAuthExchangeDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())

	outcome := "success"
	if !r.IsOk() {
		outcome = r.Error().Code
	}
	metrics.OAuthLoginsTotal.WithLabelValues(p.Name(), outcome).Inc()
	return r
}

// ClassifyTransportError converts an HTTP client error into the failure
// taxonomy, once, at the transport boundary: timeout, network, or
// unexpected. Callers never branch on raw error types past this point.
func ClassifyTransportError(ctx context.Context, err error) *domain.Error {
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.ErrOAuthProviderTimeout
	case errors.As(err, &urlErr):
		if urlErr.Timeout() {
			return domain.ErrOAuthProviderTimeout
		}
		return domain.ErrOAuthProviderNetwork
	case ctx.Err() != nil:
		return domain.ErrOAuthProviderTimeout
	default:
		return domain.ErrOAuthProviderInternal
	}
}

// Endpoints configures a provider's two URLs. Tests point these at
// httptest servers.
type Endpoints struct {
	TokenURL    string
	UserInfoURL string
}

// Credentials holds the app's registration with a provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// httpProvider carries the transport plumbing shared by the concrete
// adapters: form-encoded token exchange and bearer-authenticated user-info
// retrieval.
type httpProvider struct {
	name      string
	endpoints Endpoints
	creds     Credentials
	client    *http.Client
}

const defaultProviderTimeout = 10 * time.Second

func newHTTPProvider(name string, endpoints Endpoints, creds Credentials, client *http.Client) httpProvider {
	if client == nil {
		client = &http.Client{Timeout: defaultProviderTimeout}
	}
	return httpProvider{name: name, endpoints: endpoints, creds: creds, client: client}
}

func (p *httpProvider) Name() string {
	return p.name
}

// String redacts everything sensitive; provider adapters must never leak
// secrets through logging or %v formatting.
func (p *httpProvider) String() string {
	return fmt.Sprintf("oauth provider %s", p.name)
}

// exchangeCode posts the authorization-code grant and returns the raw
// access token.
func (p *httpProvider) exchangeCode(ctx context.Context, code, redirectURI string) result.Result[string] {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.creds.ClientID)
	form.Set("client_secret", p.creds.ClientSecret)
	if redirectURI != "" {
		form.Set("redirect_uri", redirectURI)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoints.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return result.Err[string](domain.ErrOAuthProviderInternal)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return result.Err[string](ClassifyTransportError(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return result.Err[string](domain.ErrOAuthExchangeFailed.WithMessage(
			fmt.Sprintf("authorization code exchange failed with status %d", resp.StatusCode)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return result.Err[string](domain.ErrOAuthProviderInternal)
	}
	if payload.AccessToken == "" {
		return result.Err[string](domain.ErrOAuthContract)
	}
	return result.Ok(payload.AccessToken)
}

// fetchUserInfoJSON performs the bearer-authenticated GET and decodes the
// provider-specific body into out.
func (p *httpProvider) fetchUserInfoJSON(ctx context.Context, accessToken string, out any) *domain.Error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoints.UserInfoURL, nil)
	if err != nil {
		return domain.ErrOAuthProviderInternal
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return ClassifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ErrOAuthProviderInternal
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ErrOAuthProviderInternal
	}
	return nil
}
