package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/logger"

	"golang.org/x/time/rate"
)

// limiterIdle: pasado este tiempo sin requests el limiter ya está lleno otra
// vez, así que borrarlo no cambia nada.
const limiterIdle = 10 * time.Minute

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// limiterStore guarda un rate.Limiter por IP y barre los inactivos.
type limiterStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	every     time.Duration
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

func newLimiterStore(every time.Duration, burst int) *limiterStore {
	return &limiterStore{
		visitors:  make(map[string]*visitor),
		every:     every,
		burst:     burst,
		now:       time.Now,
		lastSweep: time.Now(),
	}
}

func (s *limiterStore) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterIdle {
		s.sweep(now)
	}

	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.visitors[ip] = v
	}
	v.seen = now
	return v.limiter
}

// sweep requiere el lock tomado.
func (s *limiterStore) sweep(now time.Time) {
	for ip, v := range s.visitors {
		if now.Sub(v.seen) >= limiterIdle {
			delete(s.visitors, ip)
		}
	}
	s.lastSweep = now
}

// RateLimit limita requests por IP. Se usa en /login y en los registros.
func RateLimit(perMinute int, log logger.Logger) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		perMinute = 20
	}
	if log == nil {
		log = logger.Nop()
	}
	store := newLimiterStore(time.Minute/time.Duration(perMinute), perMinute)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !store.get(ip).Allow() {
				log.Warn("rate limit exceeded", map[string]any{"ip": ip, "path": r.URL.Path})
				apperr.WriteMessage(w, http.StatusTooManyRequests, apperr.Body{
					Message: "Muitas tentativas. Aguarde um instante e tente novamente.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP asume que chi/middleware.RealIP ya normalizó RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
