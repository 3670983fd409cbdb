package profile

import "github.com/CavinKrenik/RecovrSocial/internal/milestone"

// DateLayout is the calendar-date format the clean date is stored in.
const DateLayout = "2006-01-02"

type Profile struct {
	UserID         string `json:"user_id"`
	Nickname       string `json:"nickname"`
	CleanDate      string `json:"clean_date,omitempty"`
	AnonymousMode  bool   `json:"anonymous_mode"`
	ProfileVisible bool   `json:"profile_visible"`
}

type UpdateProfileRequest struct {
	Nickname string `json:"nickname"`
}

type SetCleanDateRequest struct {
	CleanDate string `json:"clean_date"`
}

type PrivacyRequest struct {
	AnonymousMode  bool `json:"anonymous_mode"`
	ProfileVisible bool `json:"profile_visible"`
}

// Tracker is the clean-time read model shown on the tracker page and the
// profile header. When no clean date is set, CleanDateSet is false and the
// rest of the fields are the zero "not set" state.
type Tracker struct {
	CleanDateSet  bool                  `json:"clean_date_set"`
	CleanDate     string                `json:"clean_date,omitempty"`
	DaysClean     int                   `json:"days_clean"`
	NextMilestone milestone.Milestone   `json:"next_milestone"`
	DaysToNext    int                   `json:"days_to_next"`
	Progress      float64               `json:"progress"`
	Achieved      []milestone.Milestone `json:"achieved_milestones"`
}
