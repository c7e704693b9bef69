package router

import "github.com/gin-gonic/gin"

// Registry collects group middleware and modules and mounts them under one
// prefix, in the order they were added. Mounting happens once.
type Registry struct {
	Engine *gin.Engine
	API    *gin.RouterGroup

	middlewares []gin.HandlerFunc
	modules     []Module
	mounted     bool
}

func NewRegistry(engine *gin.Engine, prefix string) *Registry {
	return &Registry{Engine: engine, API: engine.Group(prefix)}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) { r.middlewares = append(r.middlewares, mw...) }

func (r *Registry) Add(mods ...Module) { r.modules = append(r.modules, mods...) }

// RegisterAll mounts every module and returns the engine's route table.
// Later calls only return the table.
func (r *Registry) RegisterAll() gin.RoutesInfo {
	if !r.mounted {
		r.mounted = true
		r.API.Use(r.middlewares...)
		for _, m := range r.modules {
			m.Register(r.API)
		}
	}
	return r.Engine.Routes()
}
