package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const pingTimeout = 2 * time.Second

// Pinger checks the database connection. *sqlx.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	db          Pinger
	environment string
	started     time.Time
	now         func() time.Time
}

func NewHandler(db Pinger, environment string) *Handler {
	return &Handler{
		db:          db,
		environment: environment,
		started:     time.Now(),
		now:         time.Now,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.Check)
}

// Check reports process uptime and database reachability. It answers 503
// when the database does not respond.
func (h *Handler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	now := h.now()
	body := gin.H{
		"status":      "OK",
		"timestamp":   now.UTC().Format(time.RFC3339),
		"uptime":      int64(now.Sub(h.started).Seconds()),
		"environment": h.environment,
		"database":    "connected",
	}

	if err := h.db.PingContext(ctx); err != nil {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("health check: database unreachable")
		body["status"] = "ERROR"
		body["database"] = "disconnected"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
