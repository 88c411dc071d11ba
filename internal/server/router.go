// Package server wires the HTTP surface: routing, CORS, auth gating and
// request logging.
package server

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/teamplan/planboard/internal/auth"
	"github.com/teamplan/planboard/internal/config"
	"github.com/teamplan/planboard/internal/contentplan"
	"github.com/teamplan/planboard/internal/health"
	"github.com/teamplan/planboard/internal/roles"
	"github.com/teamplan/planboard/internal/users"
)

// Deps carries everything the route table needs.
type Deps struct {
	Config  *config.Config
	Log     *slog.Logger
	Content *contentplan.Service
	Users   users.Store
	Roles   roles.Table
}

// NewRouter builds the gin engine with the full API route table. Reads are
// public; every mutation sits behind bearer auth.
func NewRouter(deps Deps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(deps.Log))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := auth.RequireAuth(deps.Config.JWTSecret)

	api := router.Group("/api")
	{
		api.GET("/health", health.Handler)

		api.GET("/content-plan", contentplan.GetRangeHandler(deps.Content))
		api.GET("/content-plan/:bucket/:id/assets", contentplan.ListAssetsHandler(deps.Content))
		api.GET("/content-plan/:bucket/:id/tasks", contentplan.ListLinkedTasksHandler(deps.Content))

		api.GET("/users", requireAuth, users.ListHandler(deps.Users))
		api.POST("/users", requireAuth, users.CreateHandler(deps.Users, deps.Roles))
		api.PUT("/users/:id", requireAuth, users.UpdateHandler(deps.Users, deps.Roles))
		api.DELETE("/users/:id", requireAuth, users.DeleteHandler(deps.Users, deps.Roles))

		plan := api.Group("/content-plan", requireAuth)
		{
			plan.POST("/:bucket", contentplan.CreateItemHandler(deps.Content))
			plan.PUT("/:bucket/:id", contentplan.UpdateItemHandler(deps.Content))
			plan.DELETE("/:bucket/:id", contentplan.DeleteItemHandler(deps.Content))

			plan.POST("/:bucket/:id/assets", contentplan.CreateAssetHandler(deps.Content))
			plan.DELETE("/:bucket/:id/assets/:assetId", contentplan.DeleteAssetHandler(deps.Content))

			plan.POST("/:bucket/:id/tasks", contentplan.LinkTaskHandler(deps.Content))
			plan.DELETE("/:bucket/:id/tasks/:taskId", contentplan.UnlinkTaskHandler(deps.Content))
		}
	}

	return router
}

// requestLogger emits one structured line per request.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
