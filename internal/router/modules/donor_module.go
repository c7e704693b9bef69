package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/blood-donor-registry/internal/interface/http"
)

// DonorModule exposes the public donor lookups.
type DonorModule struct {
	Handler *handlers.DonorHandler
}

func NewDonorModule(h *handlers.DonorHandler) *DonorModule {
	return &DonorModule{Handler: h}
}

func (m *DonorModule) Register(rg *gin.RouterGroup) {
	rg.GET("/donors", m.Handler.Search)
	rg.GET("/donor/:id", m.Handler.GetDonor)
}
