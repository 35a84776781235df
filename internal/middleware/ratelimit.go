package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bytedance/sonic"
)

// window счётчик одного вызывающего в текущем окне
type window struct {
	count   int
	resetAt time.Time
}

// windowLimiter фиксированное окно на ключ вызывающего
type windowLimiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	windows map[string]*window
	sweepAt time.Time
	now     func() time.Time
}

func newWindowLimiter(limit int, period time.Duration) *windowLimiter {
	return &windowLimiter{
		limit:   limit,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// allow учитывает запрос; при ok == false remaining равен нулю
func (l *windowLimiter) allow(key string) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, exists := l.windows[key]
	if !exists || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}

	if w.count >= l.limit {
		return 0, w.resetAt, false
	}
	w.count++
	return l.limit - w.count, w.resetAt, true
}

// sweep не чаще раза за период удаляет истёкшие окна
func (l *windowLimiter) sweep(now time.Time) {
	if now.Before(l.sweepAt) {
		return
	}
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
	l.sweepAt = now.Add(l.period)
}

// rateKey пользователь хоста считается отдельно от своего IP; анонимные делят лимит по IP
func rateKey(r *http.Request) string {
	if u := UserFromContext(r.Context()); !u.IsAnonymous() {
		return "user:" + u.ID
	}
	return "ip:" + clientIp(r)
}

// RateLimit rpm запросов в минуту на пользователя хоста; rpm <= 0 отключает ограничение.
// Ставится после Identity.
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return rateLimit(newWindowLimiter(rpm, time.Minute))
}

func rateLimit(l *windowLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remaining, resetAt, ok := l.allow(rateKey(r))
			if !ok {
				retryAfter := max(int(resetAt.Sub(l.now()).Seconds()), 1)

				body, _ := sonic.ConfigStd.Marshal(map[string]any{
					"error":       "rate_limit_exceeded",
					"message":     "Слишком много запросов. Попробуйте позже.",
					"retry_after": retryAfter,
					"request_id":  GetRequestID(r.Context()),
				})
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write(body)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			next.ServeHTTP(w, r)
		})
	}
}

func clientIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
