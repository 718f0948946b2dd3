package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/jobtrack/pkg/validation"
)

var (
	phoneRe    = regexp.MustCompile(`^[+]?[1-9][0-9]{0,15}$`)
	linkedinRe = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/.*$`)
	githubRe   = regexp.MustCompile(`^https?://(www\.)?github\.com/.*$`)
	httpURLRe  = regexp.MustCompile(`^https?://.*$`)
)

var (
	jobTypeValues  = []string{"full-time", "part-time", "contract", "internship", "freelance"}
	workModeValues = []string{"remote", "onsite", "hybrid"}
	reminderValues = []string{"daily", "weekly", "never"}
	themeValues    = []string{"light", "dark", "system"}
)

// ProfileUseCase covers reading and editing account profile data.
type ProfileUseCase interface {
	Get(ctx context.Context, userID uuid.UUID) (User, error)
	PublicByUsername(ctx context.Context, username string) (PublicProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (User, error)
	UpdateSkills(ctx context.Context, userID uuid.UUID, skills []string) (User, error)
	UpdateJobPreferences(ctx context.Context, userID uuid.UUID, patch JobPreferencesPatch) (User, error)
	UpdateGoals(ctx context.Context, userID uuid.UUID, patch GoalsPatch) (User, error)
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (User, error)
}

// ProfilePatch is the allow-listed set of editable profile/preference fields.
// Nil means "leave unchanged".
type ProfilePatch struct {
	FirstName    *string
	LastName     *string
	Bio          *string
	Location     *string
	PhoneNumber  *string
	LinkedinURL  *string
	GithubURL    *string
	PortfolioURL *string
	ResumeURL    *string
	Experience   *string

	EmailNotifications *bool
	PushNotifications  *bool
	ReminderFrequency  *string
	Theme              *string
}

type JobPreferencesPatch struct {
	JobTypes       *[]string
	WorkMode       *[]string
	PreferredRoles *[]string
	SalaryMin      *float64
	SalaryMax      *float64
	SalaryCurrency *string
}

type GoalsPatch struct {
	DailyApplicationTarget  *int
	WeeklyApplicationTarget *int
	TargetRole              *string
	TargetCompanies         *[]string
}

type profileService struct {
	repo UserRepository
}

// NewProfileService returns the default implementation of ProfileUseCase.
func NewProfileService(repo UserRepository) ProfileUseCase {
	return &profileService{repo: repo}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *profileService) PublicByUsername(ctx context.Context, username string) (PublicProfile, error) {
	user, err := s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return PublicProfile{}, ErrNotFound
	}
	if !user.IsActive {
		return PublicProfile{}, ErrNotFound
	}
	return user.Public(), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (User, error) {
	verr := &validation.Error{}
	checkLen(verr, patch.FirstName, 50, "profile.firstName", "First name cannot exceed 50 characters")
	checkLen(verr, patch.LastName, 50, "profile.lastName", "Last name cannot exceed 50 characters")
	checkLen(verr, patch.Bio, 500, "profile.bio", "Bio cannot exceed 500 characters")
	checkLen(verr, patch.Location, 100, "profile.location", "Location cannot exceed 100 characters")
	checkMatch(verr, patch.PhoneNumber, phoneRe, "profile.phoneNumber", "Please enter a valid phone number")
	checkMatch(verr, patch.LinkedinURL, linkedinRe, "profile.linkedinUrl", "Please enter a valid LinkedIn URL")
	checkMatch(verr, patch.GithubURL, githubRe, "profile.githubUrl", "Please enter a valid GitHub URL")
	checkMatch(verr, patch.PortfolioURL, httpURLRe, "profile.portfolioUrl", "Please enter a valid portfolio URL")
	checkMatch(verr, patch.ResumeURL, httpURLRe, "profile.resumeUrl", "Please enter a valid resume URL")
	checkEnum(verr, patch.Experience, ExperienceLevels, "profile.experience", "Invalid experience level")
	checkEnum(verr, patch.ReminderFrequency, reminderValues, "preferences.reminderFrequency", "Invalid reminder frequency")
	checkEnum(verr, patch.Theme, themeValues, "preferences.theme", "Invalid theme")
	if verr.HasErrors() {
		return User{}, verr
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}

	setString(&user.Profile.FirstName, patch.FirstName)
	setString(&user.Profile.LastName, patch.LastName)
	setString(&user.Profile.Bio, patch.Bio)
	setString(&user.Profile.Location, patch.Location)
	setString(&user.Profile.PhoneNumber, patch.PhoneNumber)
	setString(&user.Profile.LinkedinURL, patch.LinkedinURL)
	setString(&user.Profile.GithubURL, patch.GithubURL)
	setString(&user.Profile.PortfolioURL, patch.PortfolioURL)
	setString(&user.Profile.ResumeURL, patch.ResumeURL)
	setString(&user.Profile.Experience, patch.Experience)
	if patch.EmailNotifications != nil {
		user.Preferences.EmailNotifications = *patch.EmailNotifications
	}
	if patch.PushNotifications != nil {
		user.Preferences.PushNotifications = *patch.PushNotifications
	}
	setString(&user.Preferences.ReminderFrequency, patch.ReminderFrequency)
	setString(&user.Preferences.Theme, patch.Theme)

	return s.save(ctx, user)
}

func (s *profileService) UpdateSkills(ctx context.Context, userID uuid.UUID, skills []string) (User, error) {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if len(skill) > 50 {
			return User{}, validation.Single("skills", "Each skill cannot exceed 50 characters")
		}
		cleaned = append(cleaned, skill)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.Profile.Skills = cleaned
	return s.save(ctx, user)
}

func (s *profileService) UpdateJobPreferences(ctx context.Context, userID uuid.UUID, patch JobPreferencesPatch) (User, error) {
	verr := &validation.Error{}
	if patch.JobTypes != nil {
		for _, t := range *patch.JobTypes {
			if !contains(jobTypeValues, t) {
				verr.Add("jobPreferences.jobTypes", "Invalid job type: "+t)
			}
		}
	}
	if patch.WorkMode != nil {
		for _, m := range *patch.WorkMode {
			if !contains(workModeValues, m) {
				verr.Add("jobPreferences.workMode", "Invalid work mode: "+m)
			}
		}
	}
	if verr.HasErrors() {
		return User{}, verr
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if patch.JobTypes != nil {
		user.Profile.JobPrefs.JobTypes = *patch.JobTypes
	}
	if patch.WorkMode != nil {
		user.Profile.JobPrefs.WorkMode = *patch.WorkMode
	}
	if patch.PreferredRoles != nil {
		user.Profile.JobPrefs.PreferredRoles = *patch.PreferredRoles
	}
	// Salary expectation merges key-by-key, never wholesale.
	if patch.SalaryMin != nil {
		user.Profile.JobPrefs.SalaryExpectation.Min = patch.SalaryMin
	}
	if patch.SalaryMax != nil {
		user.Profile.JobPrefs.SalaryExpectation.Max = patch.SalaryMax
	}
	setString(&user.Profile.JobPrefs.SalaryExpectation.Currency, patch.SalaryCurrency)

	return s.save(ctx, user)
}

func (s *profileService) UpdateGoals(ctx context.Context, userID uuid.UUID, patch GoalsPatch) (User, error) {
	verr := &validation.Error{}
	if patch.DailyApplicationTarget != nil && (*patch.DailyApplicationTarget < 1 || *patch.DailyApplicationTarget > 50) {
		verr.Add("goals.dailyApplicationTarget", "Daily application target must be between 1 and 50")
	}
	if patch.WeeklyApplicationTarget != nil && (*patch.WeeklyApplicationTarget < 1 || *patch.WeeklyApplicationTarget > 200) {
		verr.Add("goals.weeklyApplicationTarget", "Weekly application target must be between 1 and 200")
	}
	if patch.TargetRole != nil && len(*patch.TargetRole) > 100 {
		verr.Add("goals.targetRole", "Target role cannot exceed 100 characters")
	}
	if verr.HasErrors() {
		return User{}, verr
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if patch.DailyApplicationTarget != nil {
		user.Profile.Goals.DailyApplicationTarget = *patch.DailyApplicationTarget
	}
	if patch.WeeklyApplicationTarget != nil {
		user.Profile.Goals.WeeklyApplicationTarget = *patch.WeeklyApplicationTarget
	}
	setString(&user.Profile.Goals.TargetRole, patch.TargetRole)
	if patch.TargetCompanies != nil {
		user.Profile.Goals.TargetCompanies = *patch.TargetCompanies
	}
	return s.save(ctx, user)
}

func (s *profileService) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (User, error) {
	if !httpURLRe.MatchString(avatarURL) {
		return User{}, validation.Single("avatar", "Avatar must be a valid URL")
	}
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	user.Profile.Avatar = avatarURL
	return s.save(ctx, user)
}

func (s *profileService) save(ctx context.Context, user User) (User, error) {
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func checkLen(verr *validation.Error, v *string, max int, field, msg string) {
	if v != nil && len(*v) > max {
		verr.Add(field, msg)
	}
}

func checkMatch(verr *validation.Error, v *string, re *regexp.Regexp, field, msg string) {
	if v != nil && *v != "" && !re.MatchString(*v) {
		verr.Add(field, msg)
	}
}

func checkEnum(verr *validation.Error, v *string, allowed []string, field, msg string) {
	if v != nil && *v != "" && !contains(allowed, *v) {
		verr.Add(field, msg)
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
