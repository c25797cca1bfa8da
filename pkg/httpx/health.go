package httpx

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const healthProbeTimeout = 2 * time.Second

// Probe results reported per dependency.
const (
	probeOK          = "ok"
	probeUnreachable = "unreachable"
	probeDisabled    = "disabled"
)

// HealthChecker is implemented by the dynamo Database, the blob stores,
// RedisClient and EventBus.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks lists the dependencies probed by HealthHandler. A nil
// checker is reported as "disabled" and does not degrade the status.
type HealthChecks struct {
	Store    HealthChecker
	Blob     HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
}

type healthResponse struct {
	Status   string `json:"status"`
	Store    string `json:"store"`
	Blob     string `json:"blob"`
	Redis    string `json:"redis"`
	EventBus string `json:"event_bus"`
}

// HealthHandler probes every dependency in parallel under a shared deadline
// and answers 503 when any of them is unreachable.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		defer cancel()

		resp := healthResponse{Status: probeOK}
		targets := []struct {
			checker HealthChecker
			result  *string
		}{
			{checks.Store, &resp.Store},
			{checks.Blob, &resp.Blob},
			{checks.Redis, &resp.Redis},
			{checks.EventBus, &resp.EventBus},
		}

		var wg sync.WaitGroup
		for _, t := range targets {
			if t.checker == nil {
				*t.result = probeDisabled
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				*t.result = probeOK
				if err := t.checker.Ping(ctx); err != nil {
					*t.result = probeUnreachable
				}
			}()
		}
		wg.Wait()

		status := http.StatusOK
		for _, t := range targets {
			if *t.result == probeUnreachable {
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		JSON(w, status, resp)
	}
}
