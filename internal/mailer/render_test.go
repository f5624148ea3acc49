package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEscapesData(t *testing.T) {
	out, err := Render("registration_confirmation", map[string]any{
		"Title":      "Inscription",
		"Greeting":   "Dr. <b>Smith</b>",
		"Partner":    map[string]string{"Name": "Université Laval"},
		"AdminEmail": "admin@go2skul.com",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Université Laval")
	assert.Contains(t, out, "Dr. &lt;b&gt;Smith&lt;/b&gt;")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("nope", nil)
	assert.Error(t, err)
}
