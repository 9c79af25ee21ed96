package chain

import (
	"testing"
	"time"
)

func TestNonceCacheHitWithinTTL(t *testing.T) {
	cache := NewNonceCache(10 * time.Minute)
	now := time.Now()

	cache.Put("0xabc", 42, now)

	nonce, ok := cache.Get("0xabc", now.Add(5*time.Minute))
	if !ok {
		t.Fatal("expected cache hit within TTL")
	}
	if nonce != 42 {
		t.Errorf("nonce = %d, want 42", nonce)
	}
}

func TestNonceCacheMissAfterTTL(t *testing.T) {
	cache := NewNonceCache(10 * time.Minute)
	now := time.Now()

	cache.Put("0xabc", 42, now)

	if _, ok := cache.Get("0xabc", now.Add(10*time.Minute)); ok {
		t.Error("expected miss at exactly TTL")
	}
	if _, ok := cache.Get("0xabc", now.Add(time.Hour)); ok {
		t.Error("expected miss well past TTL")
	}
}

func TestNonceCacheMissUnknownWallet(t *testing.T) {
	cache := NewNonceCache(10 * time.Minute)

	if _, ok := cache.Get("0xnever", time.Now()); ok {
		t.Error("expected miss for wallet never stored")
	}
}

func TestNonceCachePutOverwrites(t *testing.T) {
	cache := NewNonceCache(10 * time.Minute)
	now := time.Now()

	cache.Put("0xabc", 1, now)
	cache.Put("0xabc", 2, now.Add(time.Minute))

	nonce, ok := cache.Get("0xabc", now.Add(2*time.Minute))
	if !ok || nonce != 2 {
		t.Errorf("Get = (%d, %v), want (2, true)", nonce, ok)
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

func TestNonceCacheCleanup(t *testing.T) {
	cache := NewNonceCache(10 * time.Minute)
	now := time.Now()

	cache.Put("0xold", 1, now)
	cache.Put("0xnew", 2, now.Add(8*time.Minute))

	cache.Cleanup(now.Add(10 * time.Minute))

	if cache.Len() != 1 {
		t.Errorf("Len() = %d after cleanup, want 1", cache.Len())
	}
	if _, ok := cache.Get("0xnew", now.Add(10*time.Minute)); !ok {
		t.Error("unexpired entry should survive cleanup")
	}
}
