package main

import (
	"workshop-intake/internal/httpapi"
	"workshop-intake/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", h.Healthz)

	// Voice platform entry points. The inbound route is called by the
	// platform on every new call; the webhooks report lifecycle events and
	// are HMAC-verified in production.
	r.POST("/calls/inbound", h.InboundCall)
	r.POST("/webhooks/voice/call-started", h.CallStarted)
	r.POST("/webhooks/voice/call-ended", h.CallEnded)

	// protected API group
	v1 := r.Group("/v1")

	v1.POST("/auth/token", h.IssueToken)

	protected := v1.Group("")
	protected.Use(authMW)
	protected.Use(rbac.RequireWorkshop())
	protected.Use(rbac.RequireAnyRole(rbac.RoleOwner, rbac.RoleStaff, rbac.RoleAdmin))
	{
		protected.GET("/calls/:call_id", h.GetCall)

		workshopGroup := protected.Group("/workshops/:workshop_id")
		{
			workshopGroup.GET("/calls", h.ListWorkshopCalls)
			workshopGroup.GET("/stats", h.WorkshopStats)
		}
	}
}
