package models

// UserProfile is the minimal profile projection the coaching context needs.
// Profile management itself lives outside this service; we only read it.
type UserProfile struct {
	Model

	UserID      string `json:"user_id" gorm:"not null;uniqueIndex"`
	DisplayName string `json:"display_name"`
	Language    string `json:"language"`
}

// WellbeingSnapshot is a self-reported wellbeing check-in (1-10). Only the
// newest snapshot per user is read by the context builder.
type WellbeingSnapshot struct {
	Model

	UserID string `json:"user_id" gorm:"not null;index"`
	Score  int    `json:"score"`
	Note   string `json:"note,omitempty"`
}
