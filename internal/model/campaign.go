// internal/model/campaign.go
package model

import (
	"time"

	"github.com/lib/pq"
)

type CampaignStatus string

const (
	StatusDraft     CampaignStatus = "draft"
	StatusSending   CampaignStatus = "sending"
	StatusScheduled CampaignStatus = "scheduled"
	StatusSent      CampaignStatus = "sent"
	StatusCancelled CampaignStatus = "cancelled"
)

// Nothing moves a campaign out of "scheduled" on its own; the state only
// records intent until an admin sends or cancels it.
var transitions = map[CampaignStatus][]CampaignStatus{
	StatusDraft:     {StatusDraft, StatusSending, StatusScheduled, StatusCancelled},
	StatusScheduled: {StatusScheduled, StatusDraft, StatusSending, StatusCancelled},
	StatusCancelled: {StatusDraft},
	StatusSending:   {StatusSent, StatusDraft},
	StatusSent:      {},
}

func (s CampaignStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether a campaign may move from s to next.
func (s CampaignStatus) CanTransition(next CampaignStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Campaign struct {
	ID                 string         `db:"id" json:"id"`
	Name               string         `db:"name" json:"name"`
	Subject            string         `db:"subject" json:"subject"`
	HTMLContent        string         `db:"html_content" json:"html_content"`
	TemplateID         *string        `db:"template_id" json:"template_id,omitempty"`
	TargetPartnerTypes pq.StringArray `db:"target_partner_types" json:"target_partner_types"`
	Status             CampaignStatus `db:"status" json:"status"`
	ScheduledAt        *time.Time     `db:"scheduled_at" json:"scheduled_at,omitempty"`
	SentAt             *time.Time     `db:"sent_at" json:"sent_at,omitempty"`
	TotalRecipients    int            `db:"total_recipients" json:"total_recipients"`
	SuccessfulSends    int            `db:"successful_sends" json:"successful_sends"`
	FailedSends        int            `db:"failed_sends" json:"failed_sends"`
	CreatedBy          *string        `db:"created_by" json:"created_by,omitempty"`

	// lease held by the dispatch run currently working on the campaign
	DispatchHolder         *string    `db:"dispatch_holder" json:"-"`
	DispatchLeaseExpiresAt *time.Time `db:"dispatch_lease_expires_at" json:"-"`
	StalledAt              *time.Time `db:"stalled_at" json:"stalled_at,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Transition moves the campaign to next or returns false when the edge
// does not exist.
func (c *Campaign) Transition(next CampaignStatus) bool {
	if !c.Status.CanTransition(next) {
		return false
	}
	c.Status = next
	return true
}

// IsEditable reports whether content and targeting may still change.
func (c *Campaign) IsEditable() bool {
	return c.Status == StatusDraft || c.Status == StatusScheduled || c.Status == StatusCancelled
}

func (c *Campaign) IsDeletable() bool {
	return c.Status != StatusSending
}

func (c *Campaign) TargetTypes() []PartnerType {
	types := make([]PartnerType, 0, len(c.TargetPartnerTypes))
	for _, t := range c.TargetPartnerTypes {
		types = append(types, PartnerType(t))
	}
	return types
}
