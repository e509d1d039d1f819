package denylist

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) *Redis {
	mr := miniredis.RunT(t)

	return NewRedis(&RedisConfig{
		Addr:         mr.Addr(),
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func TestRedis_RevokeAndCheck(t *testing.T) {
	dl := setupTestRedis(t)
	defer dl.Close()
	ctx := context.Background()

	revoked, err := dl.IsRevoked(ctx, "unknown-jti")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if revoked {
		t.Error("Expected unknown jti to not be revoked")
	}

	if err := dl.Revoke(ctx, "jti-1", time.Hour); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	revoked, err = dl.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !revoked {
		t.Error("Expected jti-1 to be revoked")
	}
}

func TestRedis_EntriesCarryTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	dl := NewRedis(&RedisConfig{
		Addr:        mr.Addr(),
		DialTimeout: 5 * time.Second,
	})
	defer dl.Close()
	ctx := context.Background()

	if err := dl.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	revoked, err := dl.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if revoked {
		t.Error("Expected entry to expire with the token")
	}
}

func TestRedis_NonPositiveTTLStillRecorded(t *testing.T) {
	dl := setupTestRedis(t)
	defer dl.Close()
	ctx := context.Background()

	if err := dl.Revoke(ctx, "jti-edge", 0); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	revoked, err := dl.IsRevoked(ctx, "jti-edge")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !revoked {
		t.Error("Expected edge-of-lifetime token to be recorded")
	}
}

func TestRedis_Health(t *testing.T) {
	dl := setupTestRedis(t)
	defer dl.Close()

	if err := dl.Health(); err != nil {
		t.Errorf("Expected healthy redis, got: %v", err)
	}
}
