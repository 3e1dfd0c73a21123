// Package http wires feature modules into one gin engine.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mafiaidola/leads-manager-sub000/platform/config"
)

// Module is a feature package that mounts routes on the router.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands each module the route groups it may mount on.
type RouterContext struct {
	Engine    *gin.Engine
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Config    config.HTTPConfig
}
