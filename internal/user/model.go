package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user: not found")

// User is the durable profile record kept for every account, distinct from
// the external authentication identity that points at it.
type User struct {
	ID                string
	Email             string
	DisplayName       string
	Role              Role
	PhotoURL          string
	Phone             string
	IsActive          bool
	IsProfileComplete bool
	OnboardingStep    int
	Settings          Settings
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Settings holds per-user preferences. Sections are pointers so a partial
// update can merge one section without clobbering the others.
type Settings struct {
	Notifications *NotificationSettings `json:"notifications,omitempty"`
	Preferences   *PreferenceSettings   `json:"preferences,omitempty"`
	Security      *SecuritySettings     `json:"security,omitempty"`
}

type NotificationSettings struct {
	Email      bool `json:"email"`
	SMS        bool `json:"sms"`
	DataAlerts bool `json:"data_alerts"`
}

type PreferenceSettings struct {
	Language   string `json:"language"`
	Timezone   string `json:"timezone"`
	DateFormat string `json:"date_format"`
}

type SecuritySettings struct {
	TwoFactor bool `json:"two_factor"`
}

// Merge overlays the non-nil sections of other onto s.
func (s Settings) Merge(other Settings) Settings {
	if other.Notifications != nil {
		s.Notifications = other.Notifications
	}
	if other.Preferences != nil {
		s.Preferences = other.Preferences
	}
	if other.Security != nil {
		s.Security = other.Security
	}
	return s
}

// ProfileUpdate carries the user-editable profile fields. Nil means
// "leave unchanged".
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
	Phone       *string
}

// ResearcherProfile is the verification record required before a researcher
// account is considered complete. Keyed by the owning user's id.
type ResearcherProfile struct {
	UserID             string
	InstitutionName    string
	InstitutionType    string // university, private, government
	RoleDesignation    string
	ProjectName        string
	ResearchArea       string
	VerificationStatus string // pending, verified, rejected
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
