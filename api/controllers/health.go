package controllers

import (
	"context"
	"net/http"

	"github.com/lumencart/storefront-backend/api/responses"
	"github.com/lumencart/storefront-backend/pkg/config"
	"github.com/lumencart/storefront-backend/pkg/logger"
)

// Pinger is anything whose connectivity the readiness probe should verify.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg config.AppConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Lumencart-Env", cfg.Env)
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

func HealthReady(cfg config.AppConfig, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Lumencart-Env", cfg.Env)

		status := http.StatusOK
		checks := make(map[string]string, len(pingers))
		for name, pinger := range pingers {
			if pinger == nil {
				checks[name] = "not configured"
				continue
			}
			if err := pinger.Ping(r.Context()); err != nil {
				checks[name] = "unavailable"
				status = http.StatusServiceUnavailable
				if logg != nil {
					logg.Error(r.Context(), "health.dependency_unavailable: "+name, err)
				}
				continue
			}
			checks[name] = "ok"
		}

		responses.WriteSuccessStatus(w, status, checks)
	}
}
