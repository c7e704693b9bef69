package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/blood-donor-registry/internal/interface/http"
	"github.com/oksasatya/blood-donor-registry/internal/interface/middleware"
)

// UserModule wires the caller's own profile routes behind the auth gate.
// Protected: GET /api/profile, PUT /api/update-profile
type UserModule struct {
	Handler *handlers.UserHandler
	Gate    gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, gate gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Gate: gate}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(m.Gate)
	{
		auth.GET("/profile", middleware.WithUser(m.Handler.GetProfile))
		auth.PUT("/update-profile", middleware.WithUser(m.Handler.UpdateProfile))
	}
}
