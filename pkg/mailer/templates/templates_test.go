package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ResetPassword(t *testing.T) {
	exp := time.Date(2026, 1, 2, 15, 4, 0, 0, time.UTC)
	data := NewEmailData("Shop", "reset_password", "a@x.com",
		WithResetURL("http://localhost:8080/reset/abc123"),
		WithExpiresAt(exp),
		WithIP("203.0.113.7"),
	)

	subject, html, err := Render(ResetPassword, data)
	require.NoError(t, err)

	assert.Equal(t, "Password reset", subject)
	assert.Contains(t, html, `href="http://localhost:8080/reset/abc123"`)
	assert.Contains(t, html, "02 January 2026, 15:04 UTC")
	assert.Contains(t, html, "203.0.113.7")
}

func TestRender_SignupCompletedEscapesInput(t *testing.T) {
	data := NewEmailData("", "signup_completed", "<script>@x.com")

	subject, html, err := Render(SignupCompleted, data)
	require.NoError(t, err)

	assert.Equal(t, "Signup completed!", subject)
	assert.Contains(t, html, "our shop")
	assert.NotContains(t, html, "<script>")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, _, err := Render("nope", EmailData{})
	assert.Error(t, err)
}

func TestToMap(t *testing.T) {
	m := ToMap(NewEmailData("Shop", "reset_password", "a@x.com"))
	assert.Equal(t, "a@x.com", m["Email"])
	assert.Equal(t, "Shop", m["AppName"])
}
