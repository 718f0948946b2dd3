package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobtrack/pkg/validation"
)

func seedProfileUser(repo *memRepo) User {
	user := User{
		ID:          uuid.New(),
		Username:    "jdoe",
		Email:       "jdoe@example.com",
		Profile:     DefaultProfile("Jane", "Doe"),
		Preferences: DefaultPreferences(),
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	repo.users[user.ID] = user
	return user
}

func TestUpdateProfilePartialPatch(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	bio := "  Backend developer.  "
	theme := "dark"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfilePatch{
		Bio:   &bio,
		Theme: &theme,
	})
	require.NoError(t, err)

	assert.Equal(t, "Backend developer.", updated.Profile.Bio)
	assert.Equal(t, "dark", updated.Preferences.Theme)
	// Untouched fields survive.
	assert.Equal(t, "Jane", updated.Profile.FirstName)
	assert.Equal(t, "daily", updated.Preferences.ReminderFrequency)
}

func TestUpdateProfileValidatesURLs(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	linkedin := "https://twitter.com/jdoe"
	github := "https://github.com/jdoe"
	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfilePatch{
		LinkedinURL: &linkedin,
		GithubURL:   &github,
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "profile.linkedinUrl", verr.Fields[0].Field)
}

func TestUpdateSkillsCleansInput(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	updated, err := svc.UpdateSkills(context.Background(), user.ID, []string{" Go ", "", "PostgreSQL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, updated.Profile.Skills)
}

func TestUpdateJobPreferencesMergesSalary(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	min := 60000.0
	cur := "EUR"
	updated, err := svc.UpdateJobPreferences(context.Background(), user.ID, JobPreferencesPatch{
		SalaryMin:      &min,
		SalaryCurrency: &cur,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Profile.JobPrefs.SalaryExpectation.Min)
	assert.Equal(t, 60000.0, *updated.Profile.JobPrefs.SalaryExpectation.Min)
	assert.Nil(t, updated.Profile.JobPrefs.SalaryExpectation.Max)

	max := 90000.0
	updated, err = svc.UpdateJobPreferences(context.Background(), user.ID, JobPreferencesPatch{SalaryMax: &max})
	require.NoError(t, err)
	// Earlier keys survive a later partial patch.
	require.NotNil(t, updated.Profile.JobPrefs.SalaryExpectation.Min)
	assert.Equal(t, "EUR", updated.Profile.JobPrefs.SalaryExpectation.Currency)
}

func TestUpdateJobPreferencesRejectsUnknownJobType(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	types := []string{"full-time", "gig"}
	_, err := svc.UpdateJobPreferences(context.Background(), user.ID, JobPreferencesPatch{JobTypes: &types})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields[0].Message, "gig")
}

func TestUpdateGoalsBounds(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	tooMany := 500
	_, err := svc.UpdateGoals(context.Background(), user.ID, GoalsPatch{WeeklyApplicationTarget: &tooMany})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	weekly := 40
	updated, err := svc.UpdateGoals(context.Background(), user.ID, GoalsPatch{WeeklyApplicationTarget: &weekly})
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Profile.Goals.WeeklyApplicationTarget)
	assert.Equal(t, 5, updated.Profile.Goals.DailyApplicationTarget)
}

func TestUpdateAvatarRequiresURL(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	_, err := svc.UpdateAvatar(context.Background(), user.ID, "not-a-url")
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)

	updated, err := svc.UpdateAvatar(context.Background(), user.ID, "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.png", updated.Profile.Avatar)
}

func TestPublicByUsernameHidesInactive(t *testing.T) {
	repo := newMemRepo()
	svc := NewProfileService(repo)
	user := seedProfileUser(repo)

	pub, err := svc.PublicByUsername(context.Background(), " JDoe ")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", pub.Username)

	user.IsActive = false
	repo.users[user.ID] = user
	_, err = svc.PublicByUsername(context.Background(), "jdoe")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFullNameFallbacks(t *testing.T) {
	u := User{Username: "jdoe"}
	assert.Equal(t, "jdoe", u.FullName())
	u.Profile.FirstName = "Jane"
	assert.Equal(t, "Jane", u.FullName())
	u.Profile.LastName = "Doe"
	assert.Equal(t, "Jane Doe", u.FullName())
}
