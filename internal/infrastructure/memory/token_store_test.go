package memory

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRevokeIsVisibleToNextRead(t *testing.T) {
	s := NewRefreshTokenStore()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	if err := s.Save(ctx, "jti-1", "u1", exp); err != nil {
		t.Fatalf("save: %v", err)
	}
	if active, _ := s.IsActive(ctx, "jti-1", "u1"); !active {
		t.Fatal("fresh token inactive")
	}
	if err := s.Revoke(ctx, "jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if active, _ := s.IsActive(ctx, "jti-1", "u1"); active {
		t.Error("revoked token still active on the very next read")
	}
	// Revoking again is a no-op.
	if err := s.Revoke(ctx, "jti-1"); err != nil {
		t.Errorf("second revoke: %v", err)
	}
}

func TestIsActiveBindsUser(t *testing.T) {
	s := NewRefreshTokenStore()
	ctx := context.Background()

	if err := s.Save(ctx, "jti-1", "u1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if active, _ := s.IsActive(ctx, "jti-1", "u2"); active {
		t.Error("token active for a different user")
	}
	if active, _ := s.IsActive(ctx, "unknown", "u1"); active {
		t.Error("unknown jti active")
	}
}

func TestConsumeClaimsExactlyOnce(t *testing.T) {
	s := NewVerificationTokenStore()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	claims := make(chan bool, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Consume(ctx, "jti-1", exp)
			if err != nil {
				t.Errorf("consume: %v", err)
			}
			claims <- ok
		}()
	}
	wg.Wait()
	close(claims)

	var winners int
	for ok := range claims {
		if ok {
			winners++
		}
	}
	if winners != 1 {
		t.Errorf("jti claimed %d times, want exactly 1", winners)
	}
}

func TestDeleteExpiredCounts(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	refresh := NewRefreshTokenStore()
	_ = refresh.Save(ctx, "old", "u1", now.Add(-time.Hour))
	_ = refresh.Save(ctx, "new", "u1", now.Add(time.Hour))
	if n, _ := refresh.DeleteExpired(ctx, now); n != 1 {
		t.Errorf("refresh deleted %d, want 1", n)
	}
	if active, _ := refresh.IsActive(ctx, "new", "u1"); !active {
		t.Error("live token swept")
	}

	verify := NewVerificationTokenStore()
	_, _ = verify.Consume(ctx, "old", now.Add(-time.Hour))
	_, _ = verify.Consume(ctx, "new", now.Add(time.Hour))
	if n, _ := verify.DeleteExpired(ctx, now); n != 1 {
		t.Errorf("verification deleted %d, want 1", n)
	}
}
