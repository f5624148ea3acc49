package controller_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
	"github.com/unclebandit/edutour-mailer/internal/service"
)

// --- Campaigns ---

type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns []*model.Campaign
}

func (m *MockCampaignRepo) find(id string) (*model.Campaign, bool) {
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, true
		}
	}
	return nil, false
}

func (m *MockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	m.campaigns = append(m.campaigns, &cp)
	return nil
}

func (m *MockCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.find(id)
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) ListCampaigns(_ context.Context, offset, limit int, status, search string) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var filtered []*model.Campaign
	for _, c := range m.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		filtered = append(filtered, c)
	}
	total := len(filtered)

	start := offset
	end := offset + limit
	if start > total {
		return []*model.Campaign{}, total, nil
	}
	if end > total {
		end = total
	}
	return filtered[start:end], total, nil
}

func (m *MockCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.find(c.ID)
	if !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	*stored = *c
	return nil
}

func (m *MockCampaignRepo) UpdateStatus(_ context.Context, id string, status model.CampaignStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.find(id)
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	stored.Status = status
	return nil
}

func (m *MockCampaignRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.campaigns {
		if c.ID == id {
			m.campaigns = append(m.campaigns[:i], m.campaigns[i+1:]...)
			return nil
		}
	}
	return appErrors.NewCampaignNotFound(id)
}

func (m *MockCampaignRepo) Finalize(_ context.Context, id string, f repository.Finalization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.find(id)
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	stored.Status = model.StatusSent
	stored.SentAt = &f.SentAt
	stored.SuccessfulSends = f.SuccessfulSends
	stored.FailedSends = f.FailedSends
	return nil
}

func (m *MockCampaignRepo) ClaimLease(context.Context, string, string, time.Time) (bool, error) {
	return true, nil
}
func (m *MockCampaignRepo) RenewLease(context.Context, string, string, time.Time) error { return nil }
func (m *MockCampaignRepo) ReleaseLease(context.Context, string, string) error { return nil }
func (m *MockCampaignRepo) ListStalled(context.Context, time.Time, time.Time) ([]*model.Campaign, error) {
	return nil, nil
}
func (m *MockCampaignRepo) MarkStalled(context.Context, string, time.Time) error { return nil }

// --- Partners ---

type MockPartnerRepo struct {
	mu       sync.Mutex
	partners []model.Partner
}

func (m *MockPartnerRepo) Create(_ context.Context, p *model.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	m.partners = append(m.partners, *p)
	return nil
}

func (m *MockPartnerRepo) GetByID(_ context.Context, id string) (*model.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.partners {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, appErrors.ErrPartnerNotFound
}

func (m *MockPartnerRepo) List(_ context.Context, f repository.PartnerFilter) ([]model.Partner, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Partner
	for _, p := range m.partners {
		if f.Type != "" && p.Type != f.Type {
			continue
		}
		if f.Active != nil && p.IsActive != *f.Active {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *MockPartnerRepo) Update(context.Context, *model.Partner) error { return nil }
func (m *MockPartnerRepo) SetActive(context.Context, string, bool) error { return nil }
func (m *MockPartnerRepo) Delete(context.Context, string) error { return nil }

func (m *MockPartnerRepo) ListActiveByTypes(_ context.Context, types []model.PartnerType) ([]model.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Partner
	for _, p := range m.partners {
		if !p.IsActive {
			continue
		}
		for _, t := range types {
			if p.Type == t {
				out = append(out, p)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MockPartnerRepo) CountActiveByTypes(ctx context.Context, types []model.PartnerType) (int, error) {
	ps, err := m.ListActiveByTypes(ctx, types)
	return len(ps), err
}

// --- Recipients ---

type MockRecipientRepo struct {
	rows     []model.CampaignRecipient
	partners *MockPartnerRepo
}

func (m *MockRecipientRepo) BulkInsert(_ context.Context, rows []model.CampaignRecipient) error {
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *MockRecipientRepo) Insert(_ context.Context, row model.CampaignRecipient) error {
	m.rows = append(m.rows, row)
	return nil
}

func (m *MockRecipientRepo) ListByCampaign(_ context.Context, campaignID string) ([]model.CampaignRecipient, error) {
	var out []model.CampaignRecipient
	for _, r := range m.rows {
		if r.CampaignID != campaignID {
			continue
		}
		if m.partners != nil {
			for _, p := range m.partners.partners {
				if p.ID == r.PartnerID {
					name := p.Name
					r.PartnerName = &name
				}
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *MockRecipientRepo) StatsByCampaign(ctx context.Context, campaignID string) (map[string]int, error) {
	rows, _ := m.ListByCampaign(ctx, campaignID)
	stats := map[string]int{}
	for _, r := range rows {
		stats[string(r.Status)]++
	}
	return stats, nil
}

// --- Templates ---

type MockTemplateRepo struct {
	templates []*model.EmailTemplate
}

func (m *MockTemplateRepo) Create(_ context.Context, t *model.EmailTemplate) error {
	t.ID = uuid.NewString()
	m.templates = append(m.templates, t)
	return nil
}

func (m *MockTemplateRepo) GetByID(_ context.Context, id string) (*model.EmailTemplate, error) {
	for _, t := range m.templates {
		if t.ID == id {
			cp := *t
			return &cp, nil
		}
	}
	return nil, appErrors.ErrTemplateNotFound
}

func (m *MockTemplateRepo) List(context.Context) ([]model.EmailTemplate, error) {
	out := make([]model.EmailTemplate, 0, len(m.templates))
	for _, t := range m.templates {
		out = append(out, *t)
	}
	return out, nil
}

func (m *MockTemplateRepo) Update(context.Context, *model.EmailTemplate) error { return nil }
func (m *MockTemplateRepo) Delete(context.Context, string) error { return nil }

// --- Dispatch ---

type stubDispatcher struct {
	res   *service.DispatchResult
	err   error
	calls []string
}

func (s *stubDispatcher) Dispatch(_ context.Context, id string) (*service.DispatchResult, error) {
	s.calls = append(s.calls, id)
	return s.res, s.err
}

// --- Stats ---

// MockStatsRepo derives the dashboard counters from the other fixtures.
type MockStatsRepo struct {
	campaigns *MockCampaignRepo
	partners  *MockPartnerRepo
	templates *MockTemplateRepo
}

func (m *MockStatsRepo) Dashboard(context.Context) (*model.DashboardStats, error) {
	s := &model.DashboardStats{
		Partners:  len(m.partners.partners),
		Campaigns: len(m.campaigns.campaigns),
		Templates: len(m.templates.templates),
	}
	for _, c := range m.campaigns.campaigns {
		s.TotalSent += c.SuccessfulSends
	}
	return s, nil
}

var _ repository.StatsRepositoryInterface = (*MockStatsRepo)(nil)
