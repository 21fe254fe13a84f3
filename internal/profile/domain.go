package profile

import (
	"strings"
	"time"

	"weatherbot-api/internal/common"
)

// UserProfile holds identity, onboarding progress and resolved location for
// one conversation partner. Created on first contact, never deleted by the
// core.
type UserProfile struct {
	UserID         common.UserID          `json:"user_id" gorm:"primaryKey;type:varchar(255)"`
	FirstName      string                 `json:"first_name" gorm:"type:varchar(255)"`
	LastName       string                 `json:"last_name" gorm:"type:varchar(255)"`
	LocationText   string                 `json:"location_text" gorm:"type:varchar(255)"`
	Lat            *float64               `json:"lat"`
	Lon            *float64               `json:"lon"`
	Stage          common.OnboardingStage `json:"stage" gorm:"type:varchar(32);not null;default:'awaiting_first_name'"`
	LastSeenAt     *time.Time             `json:"last_seen_at" gorm:"type:timestamp"`
	LastIncomingAt *time.Time             `json:"last_incoming_at" gorm:"type:timestamp"`
	LastWelcomeAt  *time.Time             `json:"last_welcome_at" gorm:"type:timestamp"`
	CreatedAt      time.Time              `json:"created_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time              `json:"updated_at" gorm:"type:timestamp;not null;default:CURRENT_TIMESTAMP"`
}

// NewUserProfile creates a profile at the start of onboarding
func NewUserProfile(userID common.UserID) *UserProfile {
	return &UserProfile{
		UserID: userID,
		Stage:  common.StageAwaitingFirstName,
	}
}

// HasLocation reports whether a usable location has been resolved
func (p *UserProfile) HasLocation() bool {
	return p.LocationText != "" && p.Lat != nil && p.Lon != nil
}

// SetLocation stores a resolved place
func (p *UserProfile) SetLocation(text string, lat, lon float64) {
	p.LocationText = text
	p.Lat = &lat
	p.Lon = &lon
}

// DisplayFirstName returns the stored first name or a neutral fallback
func (p *UserProfile) DisplayFirstName() string {
	if name := strings.TrimSpace(p.FirstName); name != "" {
		return name
	}
	return "there"
}

// TableName returns the table name for the UserProfile model
func (UserProfile) TableName() string {
	return "user_profiles"
}
