package router

import (
	"github.com/gin-gonic/gin"

	"github.com/opsdesk/backend/internal/interfaces/http/handler"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	System     *handler.SystemHandler
	CashEvents *handler.CashEventHandler
	Handovers  *handler.HandoverHandler
	Movements  *handler.MovementHandler
	Deposits   *handler.DepositHandler
	Balance    *handler.BalanceHandler
	Settings   *handler.SettingsHandler
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	handlers   Handlers
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, handlers Handlers, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		handlers:   handlers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	h := r.handlers

	if h.System != nil {
		r.engine.GET("/health", h.System.Health)
		r.engine.GET("/ready", h.System.Ready)
	}

	api := r.engine.Group("/api/" + r.apiVersion)

	if h.System != nil {
		api.GET("/health", h.System.Health)
	}

	treasury := api.Group("/treasury")

	if h.CashEvents != nil {
		treasury.GET("/cash-events/pending", h.CashEvents.Pending)
		treasury.POST("/cash-events/accept", h.CashEvents.Accept)
	}

	if h.Handovers != nil {
		treasury.GET("/handovers/virtual-warehouse", h.Handovers.VirtualWarehouse)
		treasury.GET("/handovers/:id", h.Handovers.Get)
		treasury.POST("/handovers/:id/close", h.Handovers.Close)
	}

	if h.Movements != nil {
		treasury.POST("/movements", h.Movements.Record)
		treasury.GET("/movements/:id", h.Movements.Get)
		treasury.POST("/movements/:id/approve", h.Movements.Approve)
		treasury.DELETE("/movements/:id", h.Movements.Delete)
		treasury.GET("/movements/:id/evidence", h.Movements.EvidenceURL)
	}

	if h.Deposits != nil {
		treasury.GET("/deposits/candidates", h.Deposits.Candidates)
		treasury.POST("/deposits", h.Deposits.Create)
		treasury.GET("/deposits/:id", h.Deposits.Get)
		treasury.PUT("/deposits/:id/external-closure", h.Deposits.SetExternalClosure)
	}

	if h.Balance != nil {
		treasury.GET("/balance", h.Balance.Statement)
	}

	if h.Settings != nil {
		settings := api.Group("/settings")
		settings.GET("/treasury", h.Settings.Get)
		settings.PUT("/treasury", h.Settings.Update)
		settings.GET("/treasury/base-balance/audit", h.Settings.BaseBalanceAuditTrail)
	}
}
