// internal/service/campaign_service.go
package service

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/queue"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

// CampaignService composes campaigns and hands them to the dispatch pipeline.
type CampaignService struct {
	CampaignRepo  repository.CampaignRepositoryInterface
	PartnerRepo   repository.PartnerRepositoryInterface
	TemplateRepo  repository.TemplateRepositoryInterface
	RecipientRepo repository.RecipientRepositoryInterface
	Dispatcher    CampaignDispatcher
	// Queue is used instead of Dispatcher when Async is set.
	Queue  queue.Queue
	Async  bool
	Logger *zap.Logger
}

type CampaignInput struct {
	Name               string   `json:"name" validate:"required,max=200"`
	Subject            string   `json:"subject" validate:"required,max=300"`
	HTMLContent        string   `json:"html_content"`
	TemplateID         *string  `json:"template_id" validate:"omitempty,uuid"`
	TargetPartnerTypes []string `json:"target_partner_types" validate:"dive,partner_type"`
	CreatedBy          *string  `json:"-"`
}

// SendOutcome reports how a send was triggered. Result is nil when queued.
type SendOutcome struct {
	Campaign *model.Campaign `json:"campaign"`
	Queued   bool            `json:"queued"`
	Result   *DispatchResult `json:"result,omitempty"`
}

type CampaignDetails struct {
	*model.Campaign
	Stats      map[string]int            `json:"stats"`
	Recipients []model.CampaignRecipient `json:"recipients"`
}

type Preview struct {
	Subject     string `json:"subject"`
	HTML        string `json:"html"`
	PartnerName string `json:"partner_name"`
}

// SamplePartner fills previews when no real partner is chosen.
var SamplePartner = model.Partner{
	Name:          "University of Toronto",
	Type:          model.PartnerForeignUniversity,
	ContactPerson: "Dr. Sarah Johnson",
	Country:       "Canada",
	City:          "Toronto",
}

func (s *CampaignService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// RecipientCount returns how many active partners the given types reach.
func (s *CampaignService) RecipientCount(ctx context.Context, types []model.PartnerType) (int, error) {
	if len(types) == 0 {
		return 0, nil
	}
	for _, t := range types {
		if !t.Valid() {
			return 0, appErrors.NewValidationError(appErrors.FieldError{Field: "types", Error: "type de partenaire inconnu: " + string(t)})
		}
	}
	return s.PartnerRepo.CountActiveByTypes(ctx, types)
}

// apply copies input onto c, filling content from the chosen template when
// the body is empty, and recomputes the audience size.
func (s *CampaignService) apply(ctx context.Context, c *model.Campaign, in CampaignInput) error {
	if in.TemplateID != nil && *in.TemplateID == "" {
		in.TemplateID = nil
	}
	if in.TemplateID != nil && (strings.TrimSpace(in.HTMLContent) == "" || strings.TrimSpace(in.Subject) == "") {
		tpl, err := s.TemplateRepo.GetByID(ctx, *in.TemplateID)
		if err != nil {
			return err
		}
		if strings.TrimSpace(in.HTMLContent) == "" {
			in.HTMLContent = tpl.HTMLContent
		}
		if strings.TrimSpace(in.Subject) == "" {
			in.Subject = tpl.Subject
		}
	}
	if err := validateStruct(in); err != nil {
		return err
	}

	c.Name = in.Name
	c.Subject = in.Subject
	c.HTMLContent = in.HTMLContent
	c.TemplateID = in.TemplateID
	c.TargetPartnerTypes = in.TargetPartnerTypes
	if c.CreatedBy == nil {
		c.CreatedBy = in.CreatedBy
	}

	n, err := s.RecipientCount(ctx, c.TargetTypes())
	if err != nil {
		return err
	}
	c.TotalRecipients = n
	return nil
}

// SaveDraft creates a new draft campaign.
func (s *CampaignService) SaveDraft(ctx context.Context, in CampaignInput) (*model.Campaign, error) {
	c := &model.Campaign{Status: model.StatusDraft}
	if err := s.apply(ctx, c, in); err != nil {
		return nil, err
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update saves new content on an editable campaign and puts it back to draft.
func (s *CampaignService) Update(ctx context.Context, id string, in CampaignInput) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsEditable() {
		return nil, appErrors.NewInvalidTransition(string(c.Status), string(model.StatusDraft))
	}
	if err := s.apply(ctx, c, in); err != nil {
		return nil, err
	}
	c.Transition(model.StatusDraft)
	c.ScheduledAt = nil
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Send saves the campaign as sending and triggers the dispatch pipeline.
// With an empty id a new campaign is created from in; otherwise in, when
// given, replaces the stored content first.
func (s *CampaignService) Send(ctx context.Context, id string, in *CampaignInput) (*SendOutcome, error) {
	var (
		c   *model.Campaign
		err error
	)
	isNew := id == ""
	if isNew {
		if in == nil {
			return nil, appErrors.NewValidationError(appErrors.FieldError{Field: "name", Error: "ce champ est obligatoire"})
		}
		c = &model.Campaign{Status: model.StatusDraft}
	} else if c, err = s.CampaignRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if in != nil {
		if !c.IsEditable() {
			return nil, appErrors.NewInvalidTransition(string(c.Status), string(model.StatusSending))
		}
		if err := s.apply(ctx, c, *in); err != nil {
			return nil, err
		}
	} else if c.TotalRecipients, err = s.RecipientCount(ctx, c.TargetTypes()); err != nil {
		return nil, err
	}

	if strings.TrimSpace(c.HTMLContent) == "" {
		return nil, appErrors.ErrEmptyContent
	}
	if c.TotalRecipients == 0 {
		return nil, appErrors.ErrNoRecipients
	}
	from := c.Status
	if !c.Transition(model.StatusSending) {
		return nil, appErrors.NewInvalidTransition(string(from), string(model.StatusSending))
	}

	if isNew {
		err = s.CampaignRepo.Create(ctx, c)
	} else {
		err = s.CampaignRepo.Update(ctx, c)
	}
	if err != nil {
		return nil, err
	}

	log := s.logger().With(zap.String("campaign_id", c.ID))
	out := &SendOutcome{Campaign: c}

	if s.Async && s.Queue != nil {
		if err := s.Queue.Publish(queue.TopicCampaignDispatch, queue.DispatchJob{CampaignID: c.ID}); err != nil {
			s.revertToDraft(ctx, log, c)
			return nil, errors.Wrap(err, "Échec du démarrage du processus d'envoi")
		}
		out.Queued = true
		log.Info("campaign queued for dispatch")
		return out, nil
	}

	// The run outlives the caller; a dropped HTTP client must not cut it short.
	res, err := s.Dispatcher.Dispatch(context.WithoutCancel(ctx), c.ID)
	out.Result = res
	if err != nil {
		if revertable(res, err) {
			s.revertToDraft(ctx, log, c)
		}
		return out, errors.Wrap(err, "Échec du démarrage du processus d'envoi")
	}
	if fresh, gerr := s.CampaignRepo.GetByID(ctx, c.ID); gerr == nil {
		out.Campaign = fresh
	}
	return out, nil
}

func (s *CampaignService) revertToDraft(ctx context.Context, log *zap.Logger, c *model.Campaign) {
	if err := s.CampaignRepo.UpdateStatus(ctx, c.ID, model.StatusDraft); err != nil {
		log.Error("reverting campaign to draft", zap.Error(err))
		return
	}
	c.Status = model.StatusDraft
}

// revertable reports whether a failed dispatch sent nothing and was not
// turned away because another run owns the campaign.
func revertable(res *DispatchResult, err error) bool {
	if err == nil || (res != nil && res.Attempted > 0) {
		return false
	}
	return !errors.Is(err, appErrors.ErrDispatchInProgress) && !appErrors.IsCampaignNotFound(err)
}

// Schedule records a future send time. Nothing sends scheduled campaigns
// automatically; the admin still triggers the send.
func (s *CampaignService) Schedule(ctx context.Context, id string, at time.Time) (*model.Campaign, error) {
	if !at.After(time.Now()) {
		return nil, appErrors.NewValidationError(appErrors.FieldError{Field: "scheduled_at", Error: "la date doit être dans le futur"})
	}
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if !c.Transition(model.StatusScheduled) {
		return nil, appErrors.NewInvalidTransition(string(from), string(model.StatusScheduled))
	}
	c.ScheduledAt = &at
	if err := s.CampaignRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CampaignService) Cancel(ctx context.Context, id string) (*model.Campaign, error) {
	return s.move(ctx, id, model.StatusCancelled, func(c *model.Campaign) bool { return true })
}

// Restore brings a cancelled campaign back to draft.
func (s *CampaignService) Restore(ctx context.Context, id string) (*model.Campaign, error) {
	return s.move(ctx, id, model.StatusDraft, func(c *model.Campaign) bool {
		return c.Status == model.StatusCancelled
	})
}

// Reset returns a stalled sending campaign to draft. Campaigns still owned
// by a live run are refused.
func (s *CampaignService) Reset(ctx context.Context, id string) (*model.Campaign, error) {
	return s.move(ctx, id, model.StatusDraft, func(c *model.Campaign) bool {
		return c.Status == model.StatusSending && c.StalledAt != nil
	})
}

func (s *CampaignService) move(ctx context.Context, id string, to model.CampaignStatus, allowed func(*model.Campaign) bool) (*model.Campaign, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if !allowed(c) || !c.Transition(to) {
		return nil, appErrors.NewInvalidTransition(string(from), string(to))
	}
	if err := s.CampaignRepo.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	c.StalledAt = nil
	s.logger().Info("campaign status changed",
		zap.String("campaign_id", id), zap.String("from", string(from)), zap.String("to", string(to)))
	return c, nil
}

// Delete removes a campaign and its recipient rows.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsDeletable() {
		return appErrors.NewInvalidTransition(string(c.Status), "deleted")
	}
	return s.CampaignRepo.Delete(ctx, id)
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, page, pageSize int, status, search string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(ctx, offset, pageSize, status, search)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}

// GetCampaignDetails returns the campaign with its recipient report.
func (s *CampaignService) GetCampaignDetails(ctx context.Context, id string) (*CampaignDetails, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats, err := s.RecipientRepo.StatsByCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.RecipientRepo.ListByCampaign(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CampaignDetails{Campaign: c, Stats: stats, Recipients: rows}, nil
}

// RenderPreview personalizes the campaign for one partner, or for
// SamplePartner when partnerID is empty.
func (s *CampaignService) RenderPreview(ctx context.Context, id, partnerID string) (*Preview, error) {
	c, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p := SamplePartner
	if partnerID != "" {
		found, err := s.PartnerRepo.GetByID(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		p = *found
	}
	return &Preview{
		Subject:     c.Subject,
		HTML:        Personalize(c.HTMLContent, p),
		PartnerName: p.Name,
	}, nil
}
