package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/queue"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

func TestWorkerRevertsWhenNothingSent(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.StatusSending})
	w := &service.Worker{
		Dispatcher:   &stubDispatcher{err: appErrors.ErrTransportNotConfigured},
		CampaignRepo: repo,
	}

	err := w.Handle(queue.DispatchJob{CampaignID: "c1"})
	assert.ErrorIs(t, err, appErrors.ErrTransportNotConfigured)
	assert.Equal(t, model.StatusDraft, repo.get("c1").Status)
}

func TestWorkerLeavesCampaignOwnedByAnotherRun(t *testing.T) {
	repo := newMockCampaignRepo(&model.Campaign{ID: "c1", Status: model.StatusSending})
	w := &service.Worker{
		Dispatcher:   &stubDispatcher{err: appErrors.ErrDispatchInProgress},
		CampaignRepo: repo,
	}

	assert.Error(t, w.Handle(queue.DispatchJob{CampaignID: "c1"}))
	assert.Equal(t, model.StatusSending, repo.get("c1").Status)
}

func TestWorkerSuccess(t *testing.T) {
	d := &stubDispatcher{res: &service.DispatchResult{SuccessfulSends: 3, Attempted: 3}}
	w := &service.Worker{Dispatcher: d, CampaignRepo: newMockCampaignRepo()}

	assert.NoError(t, w.Handle(queue.DispatchJob{CampaignID: "c1"}))
	assert.Equal(t, []string{"c1"}, d.calls)
}
