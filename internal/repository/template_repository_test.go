package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/edutour-mailer/internal/model"
)

func TestTemplateCreateAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := &TemplateRepository{DB: db}

	var bound string
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO email_templates")).
		WithArgs(idThenAny(&bound, 9)...).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tpl := &model.EmailTemplate{
		Name:         "Invitation",
		Subject:      "Bonjour",
		HTMLContent:  "<p>{{contact_person}}</p>",
		Variables:    model.Variables{"contact_person": "{{contact_person}}"},
		TemplateType: "newsletter",
	}
	require.NoError(t, repo.Create(context.Background(), tpl))

	assert.NotEmpty(t, tpl.ID)
	assert.Equal(t, bound, tpl.ID)
}
