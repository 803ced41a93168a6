package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL  = 10 * time.Minute
	limiterGCThresh = 1000
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per client IP with a token bucket refilled
// at rpm requests per minute, allowing bursts of rpm.
type RateLimiter struct {
	rpm     int
	mu      sync.Mutex
	clients map[string]*clientLimiter
}

// NewRateLimiter creates a RateLimiter. rpm <= 0 disables limiting.
func NewRateLimiter(rpm int) *RateLimiter {
	return &RateLimiter{
		rpm:     rpm,
		clients: map[string]*clientLimiter{},
	}
}

// Handler returns the Fiber middleware.
func (m *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.rpm <= 0 {
			return c.Next()
		}

		if !m.allow(c.IP()) {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(time.Minute.Seconds())/m.rpm+1))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests",
			})
		}
		return c.Next()
	}
}

func (m *RateLimiter) allow(clientIP string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	entry, ok := m.clients[clientIP]
	if !ok {
		entry = &clientLimiter{
			limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.rpm)), m.rpm),
		}
		m.clients[clientIP] = entry
	}
	entry.lastSeen = now
	m.gcLocked(now)

	return entry.limiter.Allow()
}

func (m *RateLimiter) gcLocked(now time.Time) {
	if len(m.clients) < limiterGCThresh {
		return
	}

	cutoff := now.Add(-limiterIdleTTL)
	for ip, entry := range m.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}
