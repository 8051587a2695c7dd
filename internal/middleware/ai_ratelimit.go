package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Senjuv/healt-tracker/pkg/clientip"
)

// Generation endpoints are expensive upstream, so they get their own
// in-process per-IP limiter on top of the global Redis one.
// Auth: 10 req/min, burst 5. Anonymous: 4 req/min, burst 2.

const (
	aiAuthRPS         = 10.0 / 60.0
	aiAuthBurst       = 5
	aiAnonRPS         = 4.0 / 60.0
	aiAnonBurst       = 2
	aiCleanupInterval = 5 * time.Minute
	aiLimiterTTL      = 30 * time.Minute
)

type aiLimiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

var (
	aiEntries    = make(map[string]*aiLimiterEntry)
	aiEntriesMu  sync.Mutex
	aiCleanupRun bool
)

func getAILimiter(ip string, authenticated bool) *rate.Limiter {
	key := "anon:" + ip
	if authenticated {
		key = "auth:" + ip
	}

	aiEntriesMu.Lock()
	defer aiEntriesMu.Unlock()
	startAICleanupOnce()

	e, ok := aiEntries[key]
	if !ok {
		if authenticated {
			e = &aiLimiterEntry{limiter: rate.NewLimiter(rate.Limit(aiAuthRPS), aiAuthBurst)}
		} else {
			e = &aiLimiterEntry{limiter: rate.NewLimiter(rate.Limit(aiAnonRPS), aiAnonBurst)}
		}
		aiEntries[key] = e
	}
	e.lastUse = time.Now()
	return e.limiter
}

func startAICleanupOnce() {
	if aiCleanupRun {
		return
	}
	aiCleanupRun = true
	go func() {
		ticker := time.NewTicker(aiCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			aiEntriesMu.Lock()
			now := time.Now()
			for k, e := range aiEntries {
				if now.Sub(e.lastUse) > aiLimiterTTL {
					delete(aiEntries, k)
				}
			}
			aiEntriesMu.Unlock()
		}
	}()
}

func hasBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && len(strings.TrimPrefix(auth, "Bearer ")) > 0
}

// AIRateLimit limits the generation endpoints per IP. Returns 429 with
// rate-limit headers when exceeded.
func AIRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientip.RealClientIP(r)
		auth := hasBearerToken(r)

		limit := aiAnonBurst
		if auth {
			limit = aiAuthBurst
		}

		if !getAILimiter(ip, auth).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"success":false,"message":"Too many AI requests. Please slow down."}`))
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		next.ServeHTTP(w, r)
	})
}
