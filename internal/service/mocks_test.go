package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/edutour-mailer/internal/errors"
	"github.com/unclebandit/edutour-mailer/internal/mailer"
	"github.com/unclebandit/edutour-mailer/internal/model"
	"github.com/unclebandit/edutour-mailer/internal/repository"
)

// ====================== Campaigns ======================

type MockCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*model.Campaign
	mutations int

	finalized   []repository.Finalization
	finalizeErr error
	leaseTaken  bool
	released    int
	stalled     []string
}

func newMockCampaignRepo(cs ...*model.Campaign) *MockCampaignRepo {
	m := &MockCampaignRepo{campaigns: map[string]*model.Campaign{}}
	for _, c := range cs {
		m.campaigns[c.ID] = c
	}
	return m
}

func (m *MockCampaignRepo) get(id string) *model.Campaign {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil
	}
	cp := *c
	return &cp
}

func (m *MockCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations++
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return nil, appErrors.NewCampaignNotFound(id)
	}
	cp := *c
	return &cp, nil
}

func (m *MockCampaignRepo) ListCampaigns(_ context.Context, offset, limit int, status, search string) ([]*model.Campaign, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := []*model.Campaign{}
	for _, c := range m.campaigns {
		if status != "" && string(c.Status) != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name > all[j].Name })
	if offset >= len(all) {
		return []*model.Campaign{}, len(all), nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], len(all), nil
}

func (m *MockCampaignRepo) Update(_ context.Context, c *model.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[c.ID]; !ok {
		return appErrors.NewCampaignNotFound(c.ID)
	}
	m.mutations++
	cp := *c
	m.campaigns[c.ID] = &cp
	return nil
}

func (m *MockCampaignRepo) UpdateStatus(_ context.Context, id string, status model.CampaignStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	m.mutations++
	c.Status = status
	c.StalledAt = nil
	return nil
}

func (m *MockCampaignRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.campaigns[id]; !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	m.mutations++
	delete(m.campaigns, id)
	return nil
}

func (m *MockCampaignRepo) Finalize(_ context.Context, id string, f repository.Finalization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	c, ok := m.campaigns[id]
	if !ok {
		return appErrors.NewCampaignNotFound(id)
	}
	m.mutations++
	m.finalized = append(m.finalized, f)
	sentAt := f.SentAt
	c.Status = model.StatusSent
	c.SentAt = &sentAt
	c.TotalRecipients = f.TotalRecipients
	c.SuccessfulSends = f.SuccessfulSends
	c.FailedSends = f.FailedSends
	c.DispatchHolder = nil
	c.DispatchLeaseExpiresAt = nil
	return nil
}

func (m *MockCampaignRepo) ClaimLease(_ context.Context, id, holder string, expiresAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaseTaken {
		return false, nil
	}
	c, ok := m.campaigns[id]
	if !ok {
		return false, nil
	}
	m.mutations++
	c.DispatchHolder = &holder
	c.DispatchLeaseExpiresAt = &expiresAt
	return true, nil
}

func (m *MockCampaignRepo) RenewLease(_ context.Context, id, holder string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[id]
	if !ok || c.DispatchHolder == nil || *c.DispatchHolder != holder {
		return appErrors.ErrLeaseLost
	}
	c.DispatchLeaseExpiresAt = &expiresAt
	return nil
}

// dropHolder clears the lease the way the reconciler and a manual reset do.
func (m *MockCampaignRepo) dropHolder(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.campaigns[id]; ok {
		c.DispatchHolder = nil
		c.DispatchLeaseExpiresAt = nil
	}
}

func (m *MockCampaignRepo) ReleaseLease(_ context.Context, id, holder string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released++
	if c, ok := m.campaigns[id]; ok && c.DispatchHolder != nil && *c.DispatchHolder == holder {
		c.DispatchHolder = nil
		c.DispatchLeaseExpiresAt = nil
	}
	return nil
}

func (m *MockCampaignRepo) ListStalled(_ context.Context, now, idleBefore time.Time) ([]*model.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Campaign{}
	for _, c := range m.campaigns {
		if c.Status != model.StatusSending || c.StalledAt != nil {
			continue
		}
		expired := c.DispatchHolder != nil && c.DispatchLeaseExpiresAt.Before(now)
		idle := c.DispatchHolder == nil && c.UpdatedAt != nil && c.UpdatedAt.Before(idleBefore)
		if expired || idle {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockCampaignRepo) MarkStalled(_ context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stalled = append(m.stalled, id)
	if c, ok := m.campaigns[id]; ok {
		c.StalledAt = &at
		c.DispatchHolder = nil
		c.DispatchLeaseExpiresAt = nil
	}
	return nil
}

var _ repository.CampaignRepositoryInterface = (*MockCampaignRepo)(nil)

// ====================== Partners ======================

type MockPartnerRepo struct {
	mu       sync.Mutex
	partners []model.Partner
	listErr  error
}

func (m *MockPartnerRepo) Create(_ context.Context, p *model.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now()
	m.partners = append(m.partners, *p)
	return nil
}

func (m *MockPartnerRepo) GetByID(_ context.Context, id string) (*model.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.partners {
		if m.partners[i].ID == id {
			p := m.partners[i]
			return &p, nil
		}
	}
	return nil, appErrors.ErrPartnerNotFound
}

func (m *MockPartnerRepo) List(_ context.Context, f repository.PartnerFilter) ([]model.Partner, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Partner{}
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

func (m *MockPartnerRepo) Update(_ context.Context, p *model.Partner) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.partners {
		if m.partners[i].ID == p.ID {
			m.partners[i] = *p
			return nil
		}
	}
	return appErrors.ErrPartnerNotFound
}

func (m *MockPartnerRepo) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.partners {
		if m.partners[i].ID == id {
			m.partners[i].IsActive = active
			return nil
		}
	}
	return appErrors.ErrPartnerNotFound
}

func (m *MockPartnerRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.partners {
		if m.partners[i].ID == id {
			m.partners = append(m.partners[:i], m.partners[i+1:]...)
			return nil
		}
	}
	return appErrors.ErrPartnerNotFound
}

func (m *MockPartnerRepo) ListActiveByTypes(_ context.Context, types []model.PartnerType) ([]model.Partner, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []model.Partner{}
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
	return out, nil
}

func (m *MockPartnerRepo) CountActiveByTypes(ctx context.Context, types []model.PartnerType) (int, error) {
	ps, err := m.ListActiveByTypes(ctx, types)
	return len(ps), err
}

var _ repository.PartnerRepositoryInterface = (*MockPartnerRepo)(nil)

// ====================== Recipients ======================

type MockRecipientRepo struct {
	mu          sync.Mutex
	rows        []model.CampaignRecipient
	bulkCalls   int
	insertCalls int
	bulkErr     error
}

func (m *MockRecipientRepo) BulkInsert(_ context.Context, rows []model.CampaignRecipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bulkCalls++
	if m.bulkErr != nil {
		return m.bulkErr
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *MockRecipientRepo) Insert(_ context.Context, row model.CampaignRecipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insertCalls++
	m.rows = append(m.rows, row)
	return nil
}

func (m *MockRecipientRepo) ListByCampaign(_ context.Context, campaignID string) ([]model.CampaignRecipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.CampaignRecipient{}
	for _, r := range m.rows {
		if r.CampaignID == campaignID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRecipientRepo) StatsByCampaign(ctx context.Context, campaignID string) (map[string]int, error) {
	rows, _ := m.ListByCampaign(ctx, campaignID)
	stats := map[string]int{"total": 0, "pending": 0, "sent": 0, "delivered": 0, "failed": 0}
	for _, r := range rows {
		stats[string(r.Status)]++
		stats["total"]++
	}
	return stats, nil
}

var _ repository.RecipientRepositoryInterface = (*MockRecipientRepo)(nil)

// ====================== Templates ======================

type MockTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*model.EmailTemplate
}

func newMockTemplateRepo(ts ...*model.EmailTemplate) *MockTemplateRepo {
	m := &MockTemplateRepo{templates: map[string]*model.EmailTemplate{}}
	for _, t := range ts {
		m.templates[t.ID] = t
	}
	return m
}

func (m *MockTemplateRepo) Create(_ context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *MockTemplateRepo) GetByID(_ context.Context, id string) (*model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.templates[id]
	if !ok {
		return nil, appErrors.ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MockTemplateRepo) List(_ context.Context) ([]model.EmailTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.EmailTemplate{}
	for _, t := range m.templates {
		out = append(out, *t)
	}
	return out, nil
}

func (m *MockTemplateRepo) Update(_ context.Context, t *model.EmailTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[t.ID]; !ok {
		return appErrors.ErrTemplateNotFound
	}
	cp := *t
	m.templates[t.ID] = &cp
	return nil
}

func (m *MockTemplateRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return appErrors.ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

var _ repository.TemplateRepositoryInterface = (*MockTemplateRepo)(nil)

// ====================== Profile ======================

type MockProfileRepo struct {
	profile *model.OrganizationProfile
}

func (m *MockProfileRepo) Get(context.Context) (*model.OrganizationProfile, error) {
	if m.profile == nil {
		return &model.OrganizationProfile{ID: 1}, nil
	}
	cp := *m.profile
	return &cp, nil
}

func (m *MockProfileRepo) Upsert(_ context.Context, p *model.OrganizationProfile) error {
	cp := *p
	m.profile = &cp
	return nil
}

var _ repository.ProfileRepositoryInterface = (*MockProfileRepo)(nil)

// ====================== Mailer ======================

type fakeMailer struct {
	mu     sync.Mutex
	sent   []mailer.Message
	reject map[string]string
	onSend func()
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if f.onSend != nil {
		f.onSend()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if reason, ok := f.reject[msg.To]; ok {
		return errors.New(reason)
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.To)
	}
	return out
}

// --- Stats ---

type MockStatsRepo struct {
	stats model.DashboardStats
	err   error
}

func (m *MockStatsRepo) Dashboard(context.Context) (*model.DashboardStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	cp := m.stats
	return &cp, nil
}

var _ repository.StatsRepositoryInterface = (*MockStatsRepo)(nil)
