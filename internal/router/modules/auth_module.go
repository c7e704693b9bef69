package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/blood-donor-registry/internal/interface/http"
)

// AuthModule serves the public credential routes.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/register", m.Handler.Register)
	rg.POST("/login", m.Handler.Login)
}
