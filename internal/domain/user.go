package domain

import "time"

// User is stored with an email hash only; the plaintext address never
// crosses the hashing boundary into persistence.
type User struct {
	ID            string
	EmailHash     string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OAuthIdentity links a provider account to a local user.
type OAuthIdentity struct {
	Provider       string
	ProviderUserID string
	UserID         string
	CreatedAt      time.Time
}
