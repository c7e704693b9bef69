package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/pkg/response"
	"github.com/oksasatya/blood-donor-registry/pkg/validation"
)

type AuthHandler struct {
	Svc    AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc AuthService, logger *logrus.Logger) *AuthHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email                string   `json:"email" binding:"required,email"`
	Password             string   `json:"password" binding:"required"`
	FirstName            string   `json:"firstName" binding:"required,notblank"`
	LastName             string   `json:"lastName" binding:"required,notblank"`
	PhoneNumber          string   `json:"phoneNumber" binding:"required,notblank"`
	City                 string   `json:"city" binding:"required,notblank"`
	IsDonor              bool     `json:"isDonor"`
	BloodGroup           string   `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	LastDonationDate     string   `json:"lastDonationDate"`
	AvailableForDonation bool     `json:"availableForDonation"`
	ConsentToContact     bool     `json:"consentToContact"`
	Latitude             *float64 `json:"latitude" binding:"omitempty,latitude"`
	Longitude            *float64 `json:"longitude" binding:"omitempty,longitude"`
}

type registerResponse struct {
	ID string `json:"id"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// Register POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		City:        req.City,
		IsDonor:     req.IsDonor,
		Donor: application.DonorFields{
			BloodGroup:           req.BloodGroup,
			LastDonationDate:     req.LastDonationDate,
			AvailableForDonation: req.AvailableForDonation,
			ConsentToContact:     req.ConsentToContact,
			Latitude:             req.Latitude,
			Longitude:            req.Longitude,
		},
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, registerResponse{ID: u.ID}, "User registered successfully", nil)
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, loginResponse{
		Token: res.Token,
		User:  newUserView(res.User, res.IsDonor),
	}, "login successful", map[string]any{"expires_at": res.ExpiresAt.UTC().Format(time.RFC3339)})
}
