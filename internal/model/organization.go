// internal/model/organization.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Instagram string `json:"instagram,omitempty"`
}

func (s SocialLinks) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *SocialLinks) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = SocialLinks{}
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("social_links: unsupported type %T", src)
}

// OrganizationProfile is the singleton describing the sending organization.
type OrganizationProfile struct {
	ID                   int         `db:"id" json:"id"`
	Name                 string      `db:"name" json:"name"`
	Slogan               string      `db:"slogan" json:"slogan"`
	Mission              string      `db:"mission" json:"mission"`
	LogoURL              string      `db:"logo_url" json:"logo_url"`
	Address              string      `db:"address" json:"address"`
	City                 string      `db:"city" json:"city"`
	Country              string      `db:"country" json:"country"`
	AccreditationDetails string      `db:"accreditation_details" json:"accreditation_details"`
	SocialLinks          SocialLinks `db:"social_links" json:"social_links"`
	UpdatedAt            time.Time   `db:"updated_at" json:"updated_at"`
}
