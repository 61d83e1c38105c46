package folio

import (
	"testing"
	"time"

	"go.uber.org/goleak"
)

// failLogin mirrors the preview login: a rejected attempt is recorded only
// after Check lets it through.
func failLogin(l *LoginLimiter, ip string) bool {
	if !l.Check(ip) {
		return false
	}
	l.Record(ip)
	return true
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, 200*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.10"

	if !failLogin(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if !failLogin(limiter, ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	if failLogin(limiter, ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, 150*time.Millisecond)
	defer limiter.Stop()
	ip := "203.0.113.20"

	if !failLogin(limiter, ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	if failLogin(limiter, ip) {
		t.Fatalf("expected second attempt to be blocked")
	}

	time.Sleep(200 * time.Millisecond)
	if !failLogin(limiter, ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	defer limiter.Stop()
	ip := "203.0.113.40"

	for i := 0; i < 3; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("Check %d: expected allowed without recorded failures", i)
		}
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected Check to block after a recorded failure")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := NewLoginLimiter(1, 200*time.Millisecond)
	defer limiter.Stop()

	if !failLogin(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be allowed")
	}
	if !failLogin(limiter, "203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if failLogin(limiter, "203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestLoginLimiterStopEndsSweep(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	limiter := NewLoginLimiter(1, 10*time.Millisecond)
	limiter.Stop()
	limiter.Stop()
}
