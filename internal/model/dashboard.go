package model

// DashboardStats is the home page summary.
type DashboardStats struct {
	Partners  int `db:"partners" json:"partners"`
	Campaigns int `db:"campaigns" json:"campaigns"`
	Templates int `db:"templates" json:"templates"`
	// TotalSent sums successful_sends over every campaign.
	TotalSent int `db:"total_sent" json:"total_sent"`
}
