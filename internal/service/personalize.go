// internal/service/personalize.go
package service

import (
	"regexp"
	"strings"

	"github.com/unclebandit/edutour-mailer/internal/model"
)

// FallbackGreeting replaces {{contact_person}} when the partner has no contact.
const FallbackGreeting = "Cher Partenaire"

var variableRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Personalize substitutes the partner tokens in html in a single pass.
// Any other {{token}} is left exactly as written.
func Personalize(html string, p model.Partner) string {
	contact := p.ContactPerson
	if contact == "" {
		contact = FallbackGreeting
	}
	r := strings.NewReplacer(
		"{{contact_person}}", contact,
		"{{institution_name}}", p.Name,
		"{{country}}", p.Country,
		"{{city}}", p.City,
	)
	return r.Replace(html)
}

// ExtractVariables lists the placeholders used in html, keyed by name.
func ExtractVariables(html string) model.Variables {
	vars := model.Variables{}
	for _, m := range variableRegex.FindAllStringSubmatch(html, -1) {
		vars[m[1]] = "{{" + m[1] + "}}"
	}
	return vars
}
