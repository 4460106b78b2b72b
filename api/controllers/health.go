package controllers

import (
	"context"
	"net/http"

	"github.com/attarhouse/attarhouse-backend/api/responses"
	"github.com/attarhouse/attarhouse-backend/pkg/config"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
)

const envHeader = "X-AttarHouse-Env"

// Pinger is a readiness probe over one backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each named dependency and reports the first failure.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, name+" not ready").
						WithDetails(map[string]any{"dependency": name}))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

// ReadinessDeps adapts concrete clients into the ping map HealthReady expects.
func ReadinessDeps(db, redisClient, pubsubClient Pinger) map[string]Pinger {
	deps := map[string]Pinger{}
	if db != nil {
		deps["database"] = db
	}
	if redisClient != nil {
		deps["redis"] = redisClient
	}
	if pubsubClient != nil {
		deps["pubsub"] = pubsubClient
	}
	return deps
}
