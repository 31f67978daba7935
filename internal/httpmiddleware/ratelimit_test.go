package httpmiddleware

import "testing"

func TestTokenBucketExhausts(t *testing.T) {
	l := NewTokenBucket(2, 2)
	if !l.Allow("ip-1") {
		t.Fatal("first request should pass")
	}
	if !l.Allow("ip-1") {
		t.Fatal("second request should pass")
	}
	if l.Allow("ip-1") {
		t.Fatal("third request should be limited")
	}
}

func TestTokenBucketIsolatesKeys(t *testing.T) {
	l := NewTokenBucket(1, 1)
	if !l.Allow("ip-1") {
		t.Fatal("ip-1 should pass")
	}
	if !l.Allow("ip-2") {
		t.Fatal("ip-2 has its own bucket")
	}
	if l.Allow("ip-1") {
		t.Fatal("ip-1 should be limited")
	}
}

func TestTokenBucketDefaultsCapacity(t *testing.T) {
	l := NewTokenBucket(0, 5)
	if l.capacity != 5 {
		t.Fatalf("capacity = %d, want 5", l.capacity)
	}
}
