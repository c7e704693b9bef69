package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/interface/middleware"
	"github.com/oksasatya/blood-donor-registry/pkg/response"
)

const msgInternal = "internal server error"

// writeError maps application errors to responses. Anything unrecognised is
// logged and reported as a 500 without detail.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, application.ErrDuplicateEmail):
		response.Error(c, http.StatusConflict, "User already exists", nil)
	case errors.Is(err, application.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "Invalid email or password", nil)
	case errors.Is(err, application.ErrUnknownSubject):
		response.Error(c, http.StatusUnauthorized, middleware.MsgUnknownSubject, nil)
	case errors.Is(err, application.ErrDonorNotFound):
		response.Error(c, http.StatusNotFound, "Donor not found", nil)
	case errors.Is(err, application.ErrBloodGroupRequired):
		response.Error(c, http.StatusBadRequest, "invalid payload", map[string]string{"bloodGroup": "is required"})
	case errors.Is(err, application.ErrDonorAlreadyExists):
		response.Error(c, http.StatusConflict, "Donor record already exists", nil)
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"route":      c.FullPath(),
		}).Error("request failed")
		response.Error(c, http.StatusInternalServerError, msgInternal, nil)
	}
}
