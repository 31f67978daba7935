// Package handler wires the HTTP surface onto the domain services.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolms/internal/attendance"
	"schoolms/internal/auth"
	"schoolms/internal/catalog"
	"schoolms/internal/identity"
	"schoolms/internal/queue"
	"schoolms/internal/store"
)

// Handler holds every collaborator the HTTP layer needs.
type Handler struct {
	signer   *auth.Signer
	accounts *identity.Service
	users    *identity.Repository
	catalog  *catalog.Repository
	engine   *attendance.Engine
	queue    queue.Queue
	db       *store.DB
	redis    *store.Redis
}

// New creates a handler.
func New(
	signer *auth.Signer,
	accounts *identity.Service,
	users *identity.Repository,
	cat *catalog.Repository,
	engine *attendance.Engine,
	q queue.Queue,
	db *store.DB,
	redis *store.Redis,
) *Handler {
	return &Handler{
		signer:   signer,
		accounts: accounts,
		users:    users,
		catalog:  cat,
		engine:   engine,
		queue:    q,
		db:       db,
		redis:    redis,
	}
}

// Healthz reports dependency health.
func (h *Handler) Healthz(c *gin.Context) {
	redisHealthy := h.redis.Healthy(c.Request.Context())
	dbHealthy := h.db != nil && h.db.Client.PingContext(c.Request.Context()) == nil
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}
