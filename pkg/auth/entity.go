package auth

import (
	"time"

	"github.com/google/uuid"
)

// Experience levels a user can declare on their profile.
var ExperienceLevels = []string{"fresher", "junior", "mid", "senior", "lead", "executive"}

// User is a domain entity representing an account and its profile.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`

	Profile     Profile     `json:"profile"`
	Preferences Preferences `json:"preferences"`

	EmailVerified bool       `json:"emailVerified"`
	IsActive      bool       `json:"isActive"`
	LastLogin     *time.Time `json:"lastLogin,omitempty"`

	// Pending email verification / password reset state. Hashes only.
	VerifyOTPHash    string     `json:"-"`
	VerifyOTPExpires *time.Time `json:"-"`
	ResetTokenHash   string     `json:"-"`
	ResetExpires     *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Profile struct {
	FirstName    string         `json:"firstName,omitempty"`
	LastName     string         `json:"lastName,omitempty"`
	Avatar       string         `json:"avatar,omitempty"`
	Bio          string         `json:"bio,omitempty"`
	Location     string         `json:"location,omitempty"`
	PhoneNumber  string         `json:"phoneNumber,omitempty"`
	LinkedinURL  string         `json:"linkedinUrl,omitempty"`
	GithubURL    string         `json:"githubUrl,omitempty"`
	PortfolioURL string         `json:"portfolioUrl,omitempty"`
	ResumeURL    string         `json:"resumeUrl,omitempty"`
	Skills       []string       `json:"skills,omitempty"`
	Experience   string         `json:"experience,omitempty"`
	JobPrefs     JobPreferences `json:"jobPreferences"`
	Goals        Goals          `json:"goals"`
}

type JobPreferences struct {
	JobTypes          []string    `json:"jobTypes,omitempty"`
	WorkMode          []string    `json:"workMode,omitempty"`
	PreferredRoles    []string    `json:"preferredRoles,omitempty"`
	SalaryExpectation SalaryRange `json:"salaryExpectation"`
}

type SalaryRange struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
}

type Goals struct {
	DailyApplicationTarget  int      `json:"dailyApplicationTarget"`
	WeeklyApplicationTarget int      `json:"weeklyApplicationTarget"`
	TargetRole              string   `json:"targetRole,omitempty"`
	TargetCompanies         []string `json:"targetCompanies,omitempty"`
}

type Preferences struct {
	EmailNotifications bool   `json:"emailNotifications"`
	PushNotifications  bool   `json:"pushNotifications"`
	ReminderFrequency  string `json:"reminderFrequency"`
	Theme              string `json:"theme"`
}

// DefaultProfile returns profile defaults applied at registration.
func DefaultProfile(firstName, lastName string) Profile {
	return Profile{
		FirstName:  firstName,
		LastName:   lastName,
		Experience: "fresher",
		Goals: Goals{
			DailyApplicationTarget:  5,
			WeeklyApplicationTarget: 25,
		},
	}
}

// DefaultPreferences returns notification/UI defaults applied at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		PushNotifications:  true,
		ReminderFrequency:  "daily",
		Theme:              "system",
	}
}

// FullName mirrors the display-name rule: both names, or whichever is set, or the username.
func (u User) FullName() string {
	switch {
	case u.Profile.FirstName != "" && u.Profile.LastName != "":
		return u.Profile.FirstName + " " + u.Profile.LastName
	case u.Profile.FirstName != "":
		return u.Profile.FirstName
	case u.Profile.LastName != "":
		return u.Profile.LastName
	default:
		return u.Username
	}
}

// PublicProfile is the subset of a user visible to anyone by username.
type PublicProfile struct {
	Username  string    `json:"username"`
	Profile   any       `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
}

// Public returns the externally visible slice of the profile.
func (u User) Public() PublicProfile {
	return PublicProfile{
		Username: u.Username,
		Profile: map[string]any{
			"firstName":    u.Profile.FirstName,
			"lastName":     u.Profile.LastName,
			"fullName":     u.FullName(),
			"avatar":       u.Profile.Avatar,
			"bio":          u.Profile.Bio,
			"location":     u.Profile.Location,
			"linkedinUrl":  u.Profile.LinkedinURL,
			"githubUrl":    u.Profile.GithubURL,
			"portfolioUrl": u.Profile.PortfolioURL,
			"skills":       u.Profile.Skills,
			"experience":   u.Profile.Experience,
		},
		CreatedAt: u.CreatedAt,
	}
}
