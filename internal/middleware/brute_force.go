package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	authMaxFailures   = 5
	authFailureWindow = 15 * time.Minute
	authLockoutPeriod = 5 * time.Minute
	authSweepInterval = 60 * time.Second
	authMaxTracked    = 10000
)

// authFailure tracks failed attempts for one hashed API key. A non-zero
// blockedUntil means the key is locked out until that instant.
type authFailure struct {
	count        int
	windowStart  time.Time
	blockedUntil time.Time
}

// BruteForceGuard locks out API keys after repeated authentication failures.
// Keys are tracked by SHA-256 hash so raw credentials never sit in memory.
type BruteForceGuard struct {
	mu       sync.Mutex
	failures map[string]*authFailure
	log      *logrus.Logger
}

// NewBruteForceGuard creates a guard and starts a background sweep goroutine
// that stops when ctx is cancelled.
func NewBruteForceGuard(ctx context.Context, log *logrus.Logger) *BruteForceGuard {
	g := &BruteForceGuard{
		failures: make(map[string]*authFailure),
		log:      log,
	}
	go g.sweepLoop(ctx)
	return g
}

func keyHash(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// IsBlocked reports whether the given API key is currently locked out.
func (g *BruteForceGuard) IsBlocked(apiKey string) bool {
	kh := keyHash(apiKey)
	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.failures[kh]
	return ok && time.Now().Before(f.blockedUntil)
}

// RecordFailure notes a failed authentication attempt. Crossing the failure
// threshold inside the window starts the lockout.
func (g *BruteForceGuard) RecordFailure(apiKey string) {
	kh := keyHash(apiKey)
	now := time.Now()

	g.mu.Lock()
	defer g.mu.Unlock()

	f, ok := g.failures[kh]
	if !ok || now.Sub(f.windowStart) > authFailureWindow {
		g.failures[kh] = &authFailure{count: 1, windowStart: now}
		return
	}

	f.count++
	if f.count >= authMaxFailures && f.blockedUntil.IsZero() {
		f.blockedUntil = now.Add(authLockoutPeriod)
		g.log.WithFields(logrus.Fields{
			"key_hash": kh[:16] + "...",
			"failures": f.count,
		}).Warn("api key locked out after repeated auth failures")
	}
}

// ResetKey clears failure tracking for a key. Called on successful auth.
func (g *BruteForceGuard) ResetKey(apiKey string) {
	kh := keyHash(apiKey)
	g.mu.Lock()
	delete(g.failures, kh)
	g.mu.Unlock()
}

func (g *BruteForceGuard) sweepLoop(ctx context.Context) {
	ticker := time.NewTicker(authSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			g.sweep(now)
		}
	}
}

// sweep drops expired lockouts and stale windows, then trims the table back
// under authMaxTracked by discarding the oldest windows first.
func (g *BruteForceGuard) sweep(now time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for k, f := range g.failures {
		expired := !f.blockedUntil.IsZero() && now.After(f.blockedUntil)
		stale := now.Sub(f.windowStart) >= authFailureWindow
		if expired || stale {
			delete(g.failures, k)
		}
	}

	if over := len(g.failures) - authMaxTracked; over > 0 {
		type aged struct {
			key   string
			start time.Time
		}
		all := make([]aged, 0, len(g.failures))
		for k, f := range g.failures {
			all = append(all, aged{k, f.windowStart})
		}
		sort.Slice(all, func(i, j int) bool { return all[i].start.Before(all[j].start) })
		for _, a := range all[:over] {
			delete(g.failures, a.key)
		}
	}
}

// BruteForceMiddleware rejects requests carrying a locked-out API key before
// the auth lookup runs. Requests without a token pass through to auth.
func BruteForceMiddleware(guard *BruteForceGuard) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := ExtractBearerToken(c)
		if apiKey != "" && guard.IsBlocked(apiKey) {
			respondError(c, http.StatusTooManyRequests, "rate_limited", "too many failed authentication attempts")
			c.Abort()
			return
		}

		c.Next()
	}
}
