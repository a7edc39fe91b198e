/**
 * HTTP surface.
 *
 * Thin adapters over the store and validator. Routes and status codes are
 * contractual; everything else is framing.
 */

package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fathomdocs/ocr-service/internal/events"
	"github.com/fathomdocs/ocr-service/internal/store"
)

// Handlers carries the dependencies of the HTTP layer.
type Handlers struct {
	store     *store.Store
	events    *events.Publisher
	appDomain string
}

// NewHandlers wires the HTTP layer.
func NewHandlers(st *store.Store, ev *events.Publisher, appDomain string) *Handlers {
	return &Handlers{store: st, events: ev, appDomain: appDomain}
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(h *Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.Default())

	api := router.Group("/api")
	{
		api.POST("/upload", h.Upload)
		api.GET("/status/:id", h.Status)
		api.GET("/openapi", h.OpenAPI)
		api.GET("/health", h.Health)

		admin := api.Group("/admin")
		{
			admin.GET("/stats", h.AdminStats)
			admin.GET("/jobs", h.AdminListJobs)
			admin.GET("/jobs/:id", h.AdminGetJob)
			admin.DELETE("/jobs/:id", h.AdminDeleteJob)
			admin.PATCH("/jobs/:id", h.AdminPatchJob)
		}
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
