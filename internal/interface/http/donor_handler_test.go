package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oksasatya/blood-donor-registry/internal/application"
	"github.com/oksasatya/blood-donor-registry/internal/domain/entity"
	"github.com/oksasatya/blood-donor-registry/internal/domain/repository"
	handlers "github.com/oksasatya/blood-donor-registry/internal/interface/http"
	"github.com/oksasatya/blood-donor-registry/internal/interface/http/mocks"
)

func newDonorRouter(t *testing.T) (*gin.Engine, *mocks.MockDonorService) {
	t.Helper()
	svc := mocks.NewMockDonorService(gomock.NewController(t))
	logger, _ := test.NewNullLogger()
	h := handlers.NewDonorHandler(svc, logger)

	r := gin.New()
	r.GET("/api/donors", h.Search)
	r.GET("/api/donor/:id", h.GetDonor)
	return r, svc
}

func TestSearch_PassesFilters(t *testing.T) {
	r, svc := newDonorRouter(t)
	coords := [2]float64{6.5, 3.3}
	svc.EXPECT().Search(gomock.Any(), repository.DonorFilter{BloodGroup: "O+", City: "lagos"}).
		Return([]entity.PublicDonorView{{ID: "d-1", Name: "Ada Obi", BloodGroup: "O+", Location: "Lagos",
			ContactNumber: "+234", Available: true, Coordinates: &coords}}, nil)

	w, env := do(t, r, http.MethodGet, "/api/donors?bloodGroup=O%2B&city=lagos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":"d-1","name":"Ada Obi","bloodGroup":"O+","location":"Lagos",
		"contactNumber":"+234","available":true,"coordinates":[6.5,3.3]}]`, string(env.Data))
	assert.EqualValues(t, 1, env.Meta["count"])
}

func TestSearch_NoFiltersAndNoMatches(t *testing.T) {
	r, svc := newDonorRouter(t)
	svc.EXPECT().Search(gomock.Any(), repository.DonorFilter{}).Return([]entity.PublicDonorView{}, nil)

	w, env := do(t, r, http.MethodGet, "/api/donors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestSearch_StoreFailure(t *testing.T) {
	r, svc := newDonorRouter(t)
	svc.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	w, env := do(t, r, http.MethodGet, "/api/donors?city=x", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
}

func TestGetDonor(t *testing.T) {
	r, svc := newDonorRouter(t)
	svc.EXPECT().GetByID(gomock.Any(), "d-1").Return(&entity.PublicDonorView{ID: "d-1", BloodGroup: "AB-"}, nil)
	svc.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, application.ErrDonorNotFound)

	w, env := do(t, r, http.MethodGet, "/api/donor/d-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"bloodGroup":"AB-"`)
	assert.NotContains(t, string(env.Data), "coordinates")

	w, env = do(t, r, http.MethodGet, "/api/donor/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Donor not found", env.Message)
}
