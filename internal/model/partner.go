// internal/model/partner.go
package model

import "time"

type PartnerType string

const (
	PartnerForeignUniversity PartnerType = "foreign_university"
	PartnerLocalSchool       PartnerType = "local_school"
	PartnerEducationAgent    PartnerType = "education_agent"
)

func (t PartnerType) Valid() bool {
	switch t {
	case PartnerForeignUniversity, PartnerLocalSchool, PartnerEducationAgent:
		return true
	}
	return false
}

// Label is the French display name used in notification emails.
func (t PartnerType) Label() string {
	switch t {
	case PartnerForeignUniversity:
		return "Université Étrangère"
	case PartnerLocalSchool:
		return "École Locale"
	case PartnerEducationAgent:
		return "Agent Éducatif"
	}
	return string(t)
}

type Partner struct {
	ID            string      `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	Type          PartnerType `db:"type" json:"type"`
	Email         string      `db:"email" json:"email"`
	ContactPerson string      `db:"contact_person" json:"contact_person,omitempty"`
	Phone         string      `db:"phone" json:"phone,omitempty"`
	Country       string      `db:"country" json:"country,omitempty"`
	City          string      `db:"city" json:"city,omitempty"`
	Website       string      `db:"website" json:"website,omitempty"`
	Description   string      `db:"description" json:"description,omitempty"`
	IsActive      bool        `db:"is_active" json:"is_active"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}
