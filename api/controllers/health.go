package controllers

import (
	"net/http"

	"github.com/s4trading/storefront-backend/api/responses"
	"github.com/s4trading/storefront-backend/pkg/db"
	pkgerrors "github.com/s4trading/storefront-backend/pkg/errors"
	"github.com/s4trading/storefront-backend/pkg/logger"
	"github.com/s4trading/storefront-backend/pkg/redis"
)

type HealthController struct {
	DB     db.Pinger
	Redis  redis.Pinger
	Logger *logger.Logger
}

// Live reports process liveness only.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, map[string]string{"status": "ok"})
}

// Ready reports whether the backing stores are reachable.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if c.DB != nil {
		if err := c.DB.Ping(ctx); err != nil {
			responses.WriteError(ctx, c.Logger, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
			return
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Ping(ctx); err != nil {
			responses.WriteError(ctx, c.Logger, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
			return
		}
	}

	responses.WriteSuccess(w, map[string]string{"status": "ready"})
}
