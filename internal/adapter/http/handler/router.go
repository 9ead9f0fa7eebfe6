package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"elitepay/internal/adapter/http/middleware"
	"elitepay/internal/adapter/storage/redis"
	"elitepay/internal/core/ports"
)

const maxBodyBytes = 64 << 10

// RouterDeps bundles everything the router needs. RateLimits is
// optional; a nil store disables rate limiting.
type RouterDeps struct {
	Cards      *CardHandler
	Ledger     *LedgerHandler
	Limits     *LimitHandler
	Admin      *AdminHandler
	Health     *HealthHandler
	Tokens     ports.TokenService
	RateLimits *redis.RateLimitStore
	Log        zerolog.Logger
}

// SetupRouter wires the middleware chain and the API route table.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(deps.Log),
		middleware.Recovery(deps.Log),
		middleware.MaxBodySize(maxBodyBytes),
	)

	// rl returns a no-op when rate limiting is disabled.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimits == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := middleware.DefaultRateLimitRules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimits, group, rule, deps.Log)
	}

	r.GET("/health", deps.Health.Check)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/scan", rl("scan"), deps.Cards.Scan)
		v1.GET("/scans/last", deps.Cards.LastScan)
		v1.GET("/balance/:uid", deps.Cards.GetBalance)
		v1.POST("/register", deps.Cards.Register)

		v1.POST("/topup", rl("topup"), deps.Ledger.TopUp)
		v1.POST("/deduct", rl("deduct"), deps.Ledger.Deduct)
		v1.POST("/convert", rl("convert"), deps.Ledger.Convert)

		v1.POST("/limits", rl("limits"), deps.Limits.SetLimit)
		v1.GET("/limits/:uid", deps.Limits.GetLimits)
		v1.DELETE("/limits/:uid/:kind", rl("limits"), deps.Limits.RemoveLimit)

		v1.POST("/admin/login", rl("admin_login"), deps.Admin.Login)

		authed := v1.Group("", middleware.JWTAuth(deps.Tokens), rl("admin"))
		{
			authed.GET("/fees", deps.Admin.ListFees)
			authed.GET("/transactions", deps.Admin.ListTransactions)
			authed.POST("/admin/reconcile/:uid", deps.Admin.Reconcile)
		}
	}

	return r
}
