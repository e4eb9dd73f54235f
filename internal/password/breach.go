package password

import (
	"bufio"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// commonBreached is a small built-in screen for passwords that show up in
// every leaked-credential list. Matching is case-insensitive.
var commonBreached = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"password123": {},
	"123456":     {},
	"12345678":   {},
	"123456789":  {},
	"qwerty":     {},
	"qwerty123":  {},
	"letmein":    {},
	"welcome":    {},
	"admin":      {},
	"iloveyou":   {},
	"monkey":     {},
	"dragon":     {},
	"abc123":     {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"trustno1":   {},
	"passw0rd":   {},
}

// Checker screens a candidate password against known-compromised sources.
type Checker interface {
	IsBreached(ctx context.Context, password string) (bool, error)
}

// ListChecker screens against the built-in common-password list.
type ListChecker struct{}

func NewListChecker() *ListChecker {
	return &ListChecker{}
}

func (c *ListChecker) IsBreached(_ context.Context, password string) (bool, error) {
	_, found := commonBreached[strings.ToLower(password)]
	return found, nil
}

const defaultRangeAPIBase = "https://api.pwnedpasswords.com/range/"

// RangeAPIChecker screens against the Pwned Passwords range API using
// k-anonymity: only the first 5 hex chars of the SHA-1 leave the process.
// The password itself is never logged and never appears in a URL.
type RangeAPIChecker struct {
	client  *http.Client
	baseURL string
}

func NewRangeAPIChecker(timeout time.Duration) *RangeAPIChecker {
	return &RangeAPIChecker{
		client:  &http.Client{Timeout: timeout},
		baseURL: defaultRangeAPIBase,
	}
}

// NewRangeAPICheckerWithBase points the checker at a custom endpoint.
// Tests use this with an httptest server.
func NewRangeAPICheckerWithBase(baseURL string, timeout time.Duration) *RangeAPIChecker {
	return &RangeAPIChecker{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *RangeAPIChecker) IsBreached(ctx context.Context, password string) (bool, error) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix, suffix := digest[:5], digest[5:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+prefix, nil)
	if err != nil {
		return false, fmt.Errorf("build range request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("range request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("range request: unexpected status %d", resp.StatusCode)
	}

	// Response lines are "SUFFIX:COUNT".
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		candidate, _, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(candidate, suffix) {
			return true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("read range response: %w", err)
	}
	return false, nil
}

// CompositeChecker asks the local list first, then the remote API. A remote
// transport failure degrades open with a warning: registration availability
// wins over a best-effort screen.
type CompositeChecker struct {
	local  Checker
	remote Checker
	logger *slog.Logger
}

func NewCompositeChecker(local, remote Checker, logger *slog.Logger) *CompositeChecker {
	return &CompositeChecker{
		local:  local,
		remote: remote,
		logger: logger.With("component", "breach_checker"),
	}
}

func (c *CompositeChecker) IsBreached(ctx context.Context, password string) (bool, error) {
	breached, err := c.local.IsBreached(ctx, password)
	if err == nil && breached {
		return true, nil
	}

	if c.remote == nil {
		return false, nil
	}

	breached, err = c.remote.IsBreached(ctx, password)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		c.logger.WarnContext(ctx, "breach range check unavailable", "error", err)
		return false, nil
	}
	return breached, nil
}
