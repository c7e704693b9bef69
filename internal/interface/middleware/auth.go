package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/pkg/helpers"
	"github.com/oksasatya/blood-donor-registry/pkg/metrics"
	"github.com/oksasatya/blood-donor-registry/pkg/response"
)

// CtxUserKey holds the authenticated *entity.User in the Gin context.
const CtxUserKey = "authUser"

const (
	MsgTokenMissing   = "Token is missing"
	MsgTokenExpired   = "Token has expired"
	MsgTokenInvalid   = "Invalid token"
	MsgUnknownSubject = "Invalid token: User not found"
)

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// SubjectResolver loads the identity a token subject names.
type SubjectResolver interface {
	ResolveSubject(ctx context.Context, userID string) (*entity.User, error)
}

// Auth rejects requests without a valid bearer token for an existing user,
// and stores the resolved user under CtxUserKey. The scheme word before the
// token is not checked.
func Auth(tokens TokenVerifier, users SubjectResolver, logger *logrus.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			m.IncAuthRejection(metrics.ReasonMissing)
			response.Abort(c, http.StatusUnauthorized, MsgTokenMissing, nil)
			return
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			if errors.Is(err, helpers.ErrTokenExpired) {
				m.IncAuthRejection(metrics.ReasonExpired)
				response.Abort(c, http.StatusUnauthorized, MsgTokenExpired, nil)
				return
			}
			m.IncAuthRejection(metrics.ReasonMalformed)
			response.Abort(c, http.StatusUnauthorized, MsgTokenInvalid, nil)
			return
		}

		u, err := users.ResolveSubject(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, application.ErrUnknownSubject) {
				m.IncAuthRejection(metrics.ReasonUnknownSubject)
				response.Abort(c, http.StatusUnauthorized, MsgUnknownSubject, nil)
				return
			}
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("resolve token subject failed")
			response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}

		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// bearerToken takes the second space-separated segment of the header.
func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// AuthenticatedHandler is a handler that receives the resolved identity.
type AuthenticatedHandler func(c *gin.Context, u *entity.User)

// WithUser adapts h to a gin handler. It must run behind Auth.
func WithUser(h AuthenticatedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get(CtxUserKey)
		u, _ := v.(*entity.User)
		if !ok || u == nil {
			response.Abort(c, http.StatusUnauthorized, MsgTokenMissing, nil)
			return
		}
		h(c, u)
	}
}
