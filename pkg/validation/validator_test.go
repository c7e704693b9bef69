package validation

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=6"`
	BloodGroup string `json:"bloodGroup" binding:"omitempty,bloodgroup"`
	IsDonor    bool   `json:"isDonor"`
}

func bind(t *testing.T, body string) error {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Init()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var s sample
	return c.ShouldBindJSON(&s)
}

func TestToDetails_UsesJSONFieldNames(t *testing.T) {
	err := bind(t, `{"email":"nope","password":"abc"}`)
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 6 characters long", details["password"])
}

func TestToDetails_BloodGroupAlias(t *testing.T) {
	assert.NoError(t, bind(t, `{"email":"a@example.com","password":"secret1","bloodGroup":"O+"}`))
	assert.NoError(t, bind(t, `{"email":"a@example.com","password":"secret1"}`))

	err := bind(t, `{"email":"a@example.com","password":"secret1","bloodGroup":"   "}`)
	require.Error(t, err)
	assert.Equal(t, "must not be blank", ToDetails(err)["bloodGroup"])

	err = bind(t, `{"email":"a@example.com","password":"secret1","bloodGroup":"this-is-not-a-blood-group"}`)
	require.Error(t, err)
	assert.Contains(t, ToDetails(err)["bloodGroup"], "at most 16")
}

func TestToDetails_PayloadErrors(t *testing.T) {
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(bind(t, `{"email": }`)))
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(bind(t, `{"email":`)))
	assert.Equal(t, map[string]string{"payload": "request body is empty"}, ToDetails(bind(t, ``)))
	assert.Equal(t, map[string]string{"isDonor": "must be a boolean"}, ToDetails(bind(t, `{"isDonor":"yes"}`)))
	assert.Nil(t, ToDetails(nil))
}
