// internal/model/recipient.go
package model

import "time"

type RecipientStatus string

const (
	RecipientPending   RecipientStatus = "pending"
	RecipientSent      RecipientStatus = "sent"
	RecipientDelivered RecipientStatus = "delivered"
	RecipientFailed    RecipientStatus = "failed"
)

// CampaignRecipient is written once per partner by a dispatch run and never updated.
type CampaignRecipient struct {
	ID                  string          `db:"id" json:"id"`
	CampaignID          string          `db:"campaign_id" json:"campaign_id"`
	PartnerID           string          `db:"partner_id" json:"partner_id"`
	Email               string          `db:"email" json:"email"`
	Status              RecipientStatus `db:"status" json:"status"` // sent, failed
	SentAt              *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
	ErrorMessage        *string         `db:"error_message" json:"error_message,omitempty"`
	PersonalizedContent *string         `db:"personalized_content" json:"personalized_content,omitempty"`
	// PartnerName is filled by report queries; nil once the partner is deleted.
	PartnerName         *string         `db:"partner_name" json:"partner_name,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
