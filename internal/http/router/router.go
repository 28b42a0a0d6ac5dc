// Package router assembles the Gin engine from the platform middleware and
// the registered modules.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apphttp "timeclock_backend/internal/http"
	"timeclock_backend/platform/config"
	"timeclock_backend/platform/httpkit"
	"timeclock_backend/platform/logger"
)

// Options configures router assembly.
type Options struct {
	Config  *config.Config
	Logger  *logger.Logger
	Limiter httpkit.Limiter
	// Ready verifies database connectivity for /api/ready.
	Ready   func() error
	Modules []apphttp.Module
}

// New builds the Gin engine: recovery, request logging, security headers,
// CORS and rate limiting, then health endpoints and every module's routes.
func New(opts Options) *gin.Engine {
	if opts.Config.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(opts.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(cors.New(corsConfig(opts.Config)))
	if opts.Limiter != nil {
		engine.Use(httpkit.RateLimit(opts.Limiter, opts.Logger))
	}

	engine.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/api/ready", func(c *gin.Context) {
		if opts.Ready != nil {
			if err := opts.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	authMiddleware := httpkit.AuthRequired(opts.Config)

	v1 := engine.Group("/api/v1")
	protected := v1.Group("")
	protected.Use(authMiddleware)
	admin := protected.Group("/admin")
	admin.Use(httpkit.RequireRole(httpkit.RoleAdmin))

	ctx := &apphttp.RouterContext{
		Engine:         engine,
		V1:             v1,
		Protected:      protected,
		Admin:          admin,
		AuthMiddleware: authMiddleware,
	}

	for _, module := range opts.Modules {
		module.RegisterRoutes(ctx)
		opts.Logger.Info("module routes registered", "module", module.Name())
	}

	return engine
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", httpkit.RequestIDHeader},
		ExposeHeaders:    []string{httpkit.RequestIDHeader},
		AllowCredentials: cfg.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if cfg.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.GetCORSOrigins()
	}
	return corsCfg
}
