package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	"github.com/oksasatya/blood-donor-registry/pkg/response"
)

// DonorHandler serves the public donor lookups. Neither route needs a token.
type DonorHandler struct {
	Svc    DonorService
	Logger *logrus.Logger
}

func NewDonorHandler(svc DonorService, logger *logrus.Logger) *DonorHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DonorHandler{Svc: svc, Logger: logger}
}

// Search GET /api/donors?bloodGroup=&city=
func (h *DonorHandler) Search(c *gin.Context) {
	views, err := h.Svc.Search(c.Request.Context(), repository.DonorFilter{
		BloodGroup: c.Query("bloodGroup"),
		City:       c.Query("city"),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, views, "donors", map[string]any{"count": len(views)})
}

// GetDonor GET /api/donor/:id
func (h *DonorHandler) GetDonor(c *gin.Context) {
	v, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "donor", nil)
}
