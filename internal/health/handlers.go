package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker probes optional dependencies for readiness.
type Checker interface {
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler exposes the health endpoints.
type Handler struct {
	Checker      Checker
	RedisTimeout time.Duration
}

// Live reports liveness.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness. The calculator itself has no dependencies; only a
// configured redis (rate limiter, rate cache) is probed.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"service": "ok"}
	code := http.StatusOK
	if h.Checker != nil {
		redisStatus := "ok"
		if err := h.Checker.PingRedis(r.Context(), h.redisTimeout()); err != nil {
			redisStatus = err.Error()
			code = http.StatusServiceUnavailable
		}
		status["redis"] = redisStatus
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
