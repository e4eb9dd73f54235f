package domain

// Category classifies an Error for HTTP status mapping at the transport
// boundary. It is fixed per error kind, never chosen at the call site.
type Category int

const (
	CategoryNone Category = iota
	CategoryValidation
	CategoryBusinessRule
	CategoryAuthentication
	CategoryAuthorization
	CategoryNotFound
	CategoryConflict
	CategoryPrivacy
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryBusinessRule:
		return "business_rule"
	case CategoryAuthentication:
		return "authentication"
	case CategoryAuthorization:
		return "authorization"
	case CategoryNotFound:
		return "not_found"
	case CategoryConflict:
		return "conflict"
	case CategoryPrivacy:
		return "privacy"
	default:
		return "none"
	}
}

// Error is an expected domain failure. Code is machine-stable and
// upper-snake-case; Message is human-readable and safe to surface.
type Error struct {
	Code     string
	Message  string
	Category Category
}

func (e *Error) Error() string {
	return e.Message
}

// WithMessage returns a copy of e with a different message. The code and
// category stay fixed so clients can keep matching on them.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{Code: e.Code, Message: msg, Category: e.Category}
}

func NewValidationError(code, message string) *Error {
	return &Error{Code: code, Message: message, Category: CategoryValidation}
}

func NewBusinessRuleError(code, message string) *Error {
	return &Error{Code: code, Message: message, Category: CategoryBusinessRule}
}

func NewAuthenticationError(code, message string) *Error {
	return &Error{Code: code, Message: message, Category: CategoryAuthentication}
}

func NewAuthorizationError(code, message string) *Error {
	return &Error{Code: code, Message: message, Category: CategoryAuthorization}
}

func NewNotFoundError(code, message string) *Error {
	return &Error{Code: code, Message: message, Category: CategoryNotFound}
}

func NewConflictError(code, message string) *Error {
	return &Error{Code: code, Message: message, Category: CategoryConflict}
}

// invalidCredentialsMessage is shared by every authentication failure so a
// caller can never tell which check rejected the attempt.
const invalidCredentialsMessage = "invalid credentials"

var (
	// Authentication. All of these surface the same message on purpose.
	ErrInvalidCredentials = NewAuthenticationError("INVALID_CREDENTIALS", invalidCredentialsMessage)
	ErrTokenExpired       = NewAuthenticationError("TOKEN_EXPIRED", invalidCredentialsMessage)
	ErrTokenRevoked       = NewAuthenticationError("TOKEN_REVOKED", invalidCredentialsMessage)
	ErrTokenMalformed     = NewAuthenticationError("TOKEN_MALFORMED", invalidCredentialsMessage)
	ErrTokenWrongPurpose  = NewAuthenticationError("TOKEN_WRONG_PURPOSE", invalidCredentialsMessage)

	// Business rules.
	ErrEmailTaken       = NewConflictError("EMAIL_ALREADY_REGISTERED", "this email is already registered")
	ErrPasswordBreached = NewBusinessRuleError("PASSWORD_BREACHED", "this password appears in a known data breach")
	ErrTokenAlreadyUsed = NewBusinessRuleError("TOKEN_ALREADY_USED", "this verification link was already used")

	// Lookups.
	ErrUserNotFound = NewNotFoundError("USER_NOT_FOUND", "user not found")
	ErrTaskNotFound = NewNotFoundError("TASK_NOT_FOUND", "task not found")

	// OAuth provider failures. Provider internals are never echoed.
	ErrOAuthExchangeFailed   = NewAuthenticationError("OAUTH_EXCHANGE_FAILED", invalidCredentialsMessage)
	ErrOAuthProviderTimeout  = NewAuthenticationError("OAUTH_PROVIDER_TIMEOUT", "identity provider did not respond in time")
	ErrOAuthProviderNetwork  = NewAuthenticationError("OAUTH_PROVIDER_NETWORK", "identity provider is unreachable")
	ErrOAuthProviderInternal = NewAuthenticationError("OAUTH_PROVIDER_ERROR", "identity provider returned an unexpected response")
	ErrOAuthContract         = NewValidationError("OAUTH_CONTRACT_VIOLATION", "identity provider response is missing required fields")

	// Cancellation.
	ErrCanceled = NewValidationError("REQUEST_CANCELED", "request was canceled")
)
