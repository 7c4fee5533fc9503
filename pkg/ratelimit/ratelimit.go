// Package ratelimit provides keyed token-bucket limiters for commands and HTTP clients.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/time/rate"
)

const defaultCapacity = 10000

// Rule allows Requests per Window, bursting up to Requests
type Rule struct {
	Requests int
	Window   time.Duration
}

// PerMinute builds a Rule of n requests per minute
func PerMinute(n int) Rule {
	return Rule{Requests: n, Window: time.Minute}
}

func (r Rule) limiter() *rate.Limiter {
	if r.Requests <= 0 || r.Window <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(r.Window/time.Duration(r.Requests)), r.Requests)
}

// Limiter keeps one token bucket per key. Least recently used keys are
// evicted once capacity is reached.
type Limiter struct {
	rule    Rule
	mu      sync.Mutex
	buckets *lru.Cache
	now     func() time.Time
}

// New creates a Limiter for rule
func New(rule Rule) *Limiter {
	buckets, _ := lru.New(defaultCapacity)
	return &Limiter{rule: rule, buckets: buckets, now: time.Now}
}

func (l *Limiter) bucket(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if b, ok := l.buckets.Get(key); ok {
		return b.(*rate.Limiter)
	}
	b := l.rule.limiter()
	l.buckets.Add(key, b)
	return b
}

// Allow consumes one token for key
func (l *Limiter) Allow(key string) bool {
	return l.bucket(key).AllowN(l.now(), 1)
}

// Reserve consumes one token for key and reports how long until it would
// have been allowed. A zero wait means allowed.
func (l *Limiter) Reserve(key string) (bool, time.Duration) {
	b := l.bucket(key)
	now := l.now()
	if b.AllowN(now, 1) {
		return true, 0
	}
	r := b.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Duration(math.MaxInt64)
	}
	wait := r.DelayFrom(now)
	r.CancelAt(now)
	return false, wait
}

// Registry holds one Limiter per command name
type Registry struct {
	mu       sync.RWMutex
	limiters map[string]*Limiter
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{limiters: make(map[string]*Limiter)}
}

// Set installs rule for command
func (r *Registry) Set(command string, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiters[command] = New(rule)
}

// Check consumes a token of userID for command. Commands without a rule are always allowed.
func (r *Registry) Check(command, userID string) (bool, time.Duration) {
	r.mu.RLock()
	l, ok := r.limiters[command]
	r.mu.RUnlock()
	if !ok {
		return true, 0
	}
	return l.Reserve(fmt.Sprintf("%s:%s", command, userID))
}
