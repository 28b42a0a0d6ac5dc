// Package http wires modules into the Gin engine and owns the shared router
// composition: middleware ordering, route groups and health endpoints.
package http

import "github.com/gin-gonic/gin"

// Module is implemented by each bounded context that exposes HTTP routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext carries the route groups modules mount their routes on.
type RouterContext struct {
	// Engine is the root Gin engine, for routes outside /api/v1.
	Engine *gin.Engine
	// V1 is the unauthenticated /api/v1 group.
	V1 *gin.RouterGroup
	// Protected is the authenticated /api/v1 group.
	Protected *gin.RouterGroup
	// Admin is the administrator-only /api/v1/admin group.
	Admin *gin.RouterGroup
	// AuthMiddleware authenticates requests, for modules that compose their
	// own groups.
	AuthMiddleware gin.HandlerFunc
}
