package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/nullable"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/pkg/response"
	"github.com/oksasatya/blood-donor-registry/pkg/validation"
)

type UserHandler struct {
	Svc    ProfileService
	Logger *logrus.Logger
}

func NewUserHandler(svc ProfileService, logger *logrus.Logger) *UserHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &UserHandler{Svc: svc, Logger: logger}
}

type userView struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	City        string `json:"city"`
	IsDonor     bool   `json:"isDonor"`
}

func newUserView(u entity.User, isDonor bool) userView {
	return userView{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		City:        u.City,
		IsDonor:     isDonor,
	}
}

type donorView struct {
	BloodGroup           string   `json:"bloodGroup"`
	LastDonationDate     *string  `json:"lastDonationDate"`
	AvailableForDonation bool     `json:"availableForDonation"`
	ConsentToContact     bool     `json:"consentToContact"`
	Latitude             *float64 `json:"latitude"`
	Longitude            *float64 `json:"longitude"`
}

type profileView struct {
	userView
	Donor *donorView `json:"donor,omitempty"`
}

func newProfileView(p *application.Profile) profileView {
	out := profileView{userView: newUserView(p.User, p.Donor != nil)}
	if d := p.Donor; d != nil {
		out.Donor = &donorView{
			BloodGroup:           d.BloodGroup,
			LastDonationDate:     d.LastDonated(),
			AvailableForDonation: d.AvailableForDonation,
			ConsentToContact:     d.ConsentToContact,
			Latitude:             d.Latitude,
			Longitude:            d.Longitude,
		}
	}
	return out
}

// updateProfileRequest distinguishes an absent field from an explicit null
// for the clearable donor fields.
type updateProfileRequest struct {
	FirstName            *string                    `json:"firstName" binding:"omitempty,notblank"`
	LastName             *string                    `json:"lastName" binding:"omitempty,notblank"`
	PhoneNumber          *string                    `json:"phoneNumber" binding:"omitempty,notblank"`
	City                 *string                    `json:"city" binding:"omitempty,notblank"`
	IsDonor              *bool                      `json:"isDonor"`
	BloodGroup           *string                    `json:"bloodGroup" binding:"omitempty,max=16"`
	LastDonationDate     nullable.Nullable[string]  `json:"lastDonationDate"`
	AvailableForDonation *bool                      `json:"availableForDonation"`
	ConsentToContact     *bool                      `json:"consentToContact"`
	Latitude             nullable.Nullable[float64] `json:"latitude"`
	Longitude            nullable.Nullable[float64] `json:"longitude"`
}

func (r updateProfileRequest) checkCoordinates() map[string]string {
	out := map[string]string{}
	if v, err := r.Latitude.Get(); err == nil && (v < -90 || v > 90) {
		out["latitude"] = "must be a valid latitude"
	}
	if v, err := r.Longitude.Get(); err == nil && (v < -180 || v > 180) {
		out["longitude"] = "must be a valid longitude"
	}
	return out
}

func (r updateProfileRequest) input() application.UpdateProfileInput {
	return application.UpdateProfileInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		City:        r.City,
		IsDonor:     r.IsDonor,
		Donor: application.DonorPatch{
			BloodGroup:           r.BloodGroup,
			LastDonationDate:     r.LastDonationDate,
			AvailableForDonation: r.AvailableForDonation,
			ConsentToContact:     r.ConsentToContact,
			Latitude:             r.Latitude,
			Longitude:            r.Longitude,
		},
	}
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context, u *entity.User) {
	p, err := h.Svc.GetProfile(c.Request.Context(), u.ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newProfileView(p), "profile", nil)
}

// UpdateProfile PUT /api/update-profile
func (h *UserHandler) UpdateProfile(c *gin.Context, u *entity.User) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if details := req.checkCoordinates(); len(details) > 0 {
		response.Error(c, http.StatusBadRequest, "invalid payload", details)
		return
	}

	p, err := h.Svc.UpdateProfile(c.Request.Context(), u.ID, req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, newProfileView(p), "Profile updated successfully", nil)
}
