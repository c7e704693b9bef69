package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/blood-donor-registry/config"
)

func testConfig() *config.Config {
	return &config.Config{AppName: "Registry", CompanyName: "Acme Health", SupportURL: "https://help.example.com"}
}

func TestRender_WelcomeDonor(t *testing.T) {
	data := NewWelcomeData(testConfig(), "Ada Obi", "ada@example.com", WithDonor("O+", false))

	subject, text, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Contains(t, subject, "Welcome to Registry, Ada Obi")
	assert.Contains(t, text, "blood group O+")
	assert.Contains(t, text, "will not show up in donor search")
	assert.Contains(t, html, "<strong>O+</strong>")
	assert.Contains(t, html, "Acme Health")
}

func TestRender_WelcomeNonDonorFallbacks(t *testing.T) {
	data := NewWelcomeData(&config.Config{}, "Ada Obi", "ada@example.com")

	subject, text, _, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.Contains(t, subject, "the blood donor registry")
	assert.Contains(t, text, "register as a donor from your profile")
	assert.Contains(t, text, "Blood Donor Registry")
}

func TestRender_ProfileUpdatedListsChanges(t *testing.T) {
	at := time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)
	data := NewProfileUpdatedData(testConfig(), "Ada Obi", "ada@example.com",
		map[string]string{"city": "Ibadan", "bloodGroup": "A+"}, WithTime(at))

	_, text, html, err := Render(ProfileUpdated, data)
	require.NoError(t, err)
	assert.Contains(t, text, "01 May 2025, 09:30 UTC")
	assert.Contains(t, text, "- bloodGroup: A+\n- city: Ibadan")
	assert.Contains(t, html, "<strong>Ibadan</strong>")
}

func TestRender_EscapesHTML(t *testing.T) {
	data := NewWelcomeData(testConfig(), "<script>x</script>", "ada@example.com")

	_, _, html, err := Render(Welcome, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	assert.False(t, Known("login_otp"))
	_, _, _, err := Render("login_otp", map[string]any{})
	assert.Error(t, err)
}
