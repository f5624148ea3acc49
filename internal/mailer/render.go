package mailer

import (
	"bytes"
	"embed"
	htmltmpl "html/template"
	"sync"

	"github.com/pkg/errors"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var (
	templates *htmltmpl.Template
	tmplInit  sync.Once
	tmplErr   error
)

func parseTemplates() {
	templates, tmplErr = htmltmpl.New("").Option("missingkey=error").ParseFS(templateFS, "templates/*.gohtml")
}

// Render executes one of the embedded notification templates, e.g.
// "registration_admin".
func Render(name string, data any) (string, error) {
	tmplInit.Do(parseTemplates) // only once, on first use
	if tmplErr != nil {
		return "", errors.Wrap(tmplErr, "parsing mail templates")
	}
	var buff bytes.Buffer
	if err := templates.ExecuteTemplate(&buff, name+".gohtml", data); err != nil {
		return "", errors.Wrapf(err, "rendering %s", name)
	}
	return buff.String(), nil
}
