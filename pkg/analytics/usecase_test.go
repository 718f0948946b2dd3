package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobtrack/pkg/application"
	"github.com/artem13815/jobtrack/pkg/auth"
)

// stubRepo serves canned aggregation results and remembers query bounds.
type stubRepo struct {
	overview     OverviewStats
	months       []MonthBucket
	companies    []CompanyStats
	distribution []StatusCount
	sources      []SourceStats
	daily        []DailyCount
	perf         PerformanceCounts
	byJobType    []GroupPerformance
	byWorkMode   []GroupPerformance
	tasks        []UpcomingTask
	taskStats    TaskStats
	activity     []ActivityEntry

	activityLimit int
}

func (r *stubRepo) Overview(context.Context, uuid.UUID) (OverviewStats, error) {
	return r.overview, nil
}

func (r *stubRepo) MonthlyCounts(context.Context, uuid.UUID, time.Time) ([]MonthBucket, error) {
	return r.months, nil
}

func (r *stubRepo) TopCompanies(context.Context, uuid.UUID, int) ([]CompanyStats, error) {
	return r.companies, nil
}

func (r *stubRepo) StatusDistribution(context.Context, uuid.UUID) ([]StatusCount, error) {
	return r.distribution, nil
}

func (r *stubRepo) ResponsesBySource(context.Context, uuid.UUID) ([]SourceStats, error) {
	return r.sources, nil
}

func (r *stubRepo) DailyCounts(context.Context, uuid.UUID, time.Time) ([]DailyCount, error) {
	return r.daily, nil
}

func (r *stubRepo) PerformanceCounts(context.Context, uuid.UUID, time.Time) (PerformanceCounts, error) {
	return r.perf, nil
}

func (r *stubRepo) PerformanceByJobType(context.Context, uuid.UUID) ([]GroupPerformance, error) {
	return r.byJobType, nil
}

func (r *stubRepo) PerformanceByWorkMode(context.Context, uuid.UUID) ([]GroupPerformance, error) {
	return r.byWorkMode, nil
}

func (r *stubRepo) UpcomingTasks(context.Context, uuid.UUID, time.Time) ([]UpcomingTask, error) {
	return r.tasks, nil
}

func (r *stubRepo) TaskStats(context.Context, uuid.UUID, time.Time, time.Time) (TaskStats, error) {
	return r.taskStats, nil
}

func (r *stubRepo) RecentActivity(_ context.Context, _ uuid.UUID, limit int) ([]ActivityEntry, error) {
	r.activityLimit = limit
	return r.activity, nil
}

// stubUsers resolves a single user or reports not found.
type stubUsers struct {
	user auth.User
	err  error
}

func (r *stubUsers) Create(context.Context, auth.User) error { return nil }
func (r *stubUsers) GetByID(context.Context, uuid.UUID) (auth.User, error) {
	return r.user, r.err
}
func (r *stubUsers) GetByLogin(context.Context, string) (auth.User, error) {
	return r.user, r.err
}
func (r *stubUsers) GetByUsername(context.Context, string) (auth.User, error) {
	return r.user, r.err
}
func (r *stubUsers) GetByEmail(context.Context, string) (auth.User, error) {
	return r.user, r.err
}
func (r *stubUsers) GetByResetTokenHash(context.Context, string) (auth.User, error) {
	return r.user, r.err
}
func (r *stubUsers) Update(context.Context, auth.User) error { return nil }

func TestOverviewMonthOrderAndLabels(t *testing.T) {
	repo := &stubRepo{
		months: []MonthBucket{
			{Year: 2025, Month: 3, Count: 4},
			{Year: 2024, Month: 11, Count: 7},
			{Year: 2025, Month: 1, Count: 2},
		},
	}
	svc := NewService(repo, &stubUsers{err: auth.ErrNotFound})

	out, err := svc.Overview(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, out.ApplicationsByMonth, 3)
	assert.Equal(t, "2024-11", out.ApplicationsByMonth[0].Label)
	assert.Equal(t, "2025-01", out.ApplicationsByMonth[1].Label)
	assert.Equal(t, "2025-03", out.ApplicationsByMonth[2].Label)
}

func TestOverviewSourceRates(t *testing.T) {
	repo := &stubRepo{
		sources: []SourceStats{
			{Source: "linkedin", Total: 8, Responses: 2},
			{Source: "referral", Total: 4, Responses: 3},
			{Source: "job_board", Total: 0, Responses: 0},
		},
	}
	svc := NewService(repo, &stubUsers{err: auth.ErrNotFound})

	out, err := svc.Overview(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, out.ResponseBySource, 3)
	// Sorted by response rate, best source first.
	assert.Equal(t, "referral", out.ResponseBySource[0].Source)
	assert.Equal(t, 75.0, out.ResponseBySource[0].ResponseRate)
	assert.Equal(t, "linkedin", out.ResponseBySource[1].Source)
	assert.Equal(t, 25.0, out.ResponseBySource[1].ResponseRate)
	// Zero applications from a source means a 0 rate, not NaN.
	assert.Equal(t, 0.0, out.ResponseBySource[2].ResponseRate)
}

func TestWeeklyUsesUserTarget(t *testing.T) {
	repo := &stubRepo{
		daily: []DailyCount{
			{Day: "2025-08-27", Count: 3},
			{Day: "2025-08-25", Count: 2},
		},
	}
	user := auth.User{ID: uuid.New()}
	user.Profile.Goals.WeeklyApplicationTarget = 10
	svc := NewService(repo, &stubUsers{user: user})

	out, err := svc.Weekly(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, 5, out.TotalThisWeek)
	assert.Equal(t, 10, out.WeeklyTarget)
	assert.Equal(t, 50, out.Progress)
	// Day buckets come back chronological.
	assert.Equal(t, "2025-08-25", out.DailyApplications[0].Day)
}

func TestWeeklyFallsBackToDefaultTarget(t *testing.T) {
	repo := &stubRepo{daily: []DailyCount{{Day: "2025-08-26", Count: 4}}}
	// User exists but never set a weekly goal.
	svc := NewService(repo, &stubUsers{user: auth.User{ID: uuid.New()}})

	out, err := svc.Weekly(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 25, out.WeeklyTarget)
	assert.Equal(t, 16, out.Progress)
}

func TestWeeklyPropagatesUserLookupError(t *testing.T) {
	repo := &stubRepo{daily: []DailyCount{{Day: "2025-08-26", Count: 4}}}
	svc := NewService(repo, &stubUsers{err: auth.ErrNotFound})

	_, err := svc.Weekly(context.Background(), uuid.New())
	require.ErrorIs(t, err, auth.ErrNotFound)
}

func TestPerformanceRates(t *testing.T) {
	repo := &stubRepo{
		perf: PerformanceCounts{Total: 12, Interviews: 4, Offers: 1, Responses: 7},
		byJobType: []GroupPerformance{
			{Group: "contract", Total: 3, Interviews: 0},
			{Group: "full-time", Total: 9, Interviews: 4},
		},
	}
	svc := NewService(repo, &stubUsers{err: auth.ErrNotFound})

	out, err := svc.Performance(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 33, out.Metrics.InterviewRate)
	assert.Equal(t, 8, out.Metrics.OfferRate)
	assert.Equal(t, 58, out.Metrics.ResponseRate)
	// Groups sorted by interview rate.
	assert.Equal(t, "full-time", out.JobTypePerformance[0].Group)
	assert.Equal(t, 44, out.JobTypePerformance[0].InterviewRate)
	assert.Equal(t, 0, out.JobTypePerformance[1].InterviewRate)
}

func TestInterviewStatusesExcludePendingStages(t *testing.T) {
	// An application still waiting on a technical test has not reached an
	// interview yet. Only a held interview or a landed offer counts.
	assert.Equal(t, []application.Status{
		application.StatusInterview,
		application.StatusOffer,
	}, InterviewStatuses)
	assert.NotContains(t, InterviewStatuses, application.StatusTechnicalTest)
}

func TestPerformanceZeroDenominator(t *testing.T) {
	svc := NewService(&stubRepo{}, &stubUsers{err: auth.ErrNotFound})

	out, err := svc.Performance(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, out.Metrics.InterviewRate)
	assert.Equal(t, 0, out.Metrics.OfferRate)
	assert.Equal(t, 0, out.Metrics.ResponseRate)
}

func TestTaskDigestOverdueAnnotation(t *testing.T) {
	now := time.Now().UTC()
	repo := &stubRepo{
		tasks: []UpcomingTask{
			{Title: "future", DueDate: now.Add(48 * time.Hour)},
			{Title: "overdue", DueDate: now.Add(-24 * time.Hour)},
		},
		taskStats: TaskStats{Total: 5, Completed: 2, Overdue: 1, DueThisWeek: 2},
	}
	svc := NewService(repo, &stubUsers{err: auth.ErrNotFound})

	out, err := svc.TaskDigest(context.Background(), uuid.New())
	require.NoError(t, err)

	require.Len(t, out.UpcomingTasks, 2)
	// Earliest due date first, overdue flagged.
	assert.Equal(t, "overdue", out.UpcomingTasks[0].Title)
	assert.True(t, out.UpcomingTasks[0].IsOverdue)
	assert.False(t, out.UpcomingTasks[1].IsOverdue)
	assert.Equal(t, 5, out.Stats.Total)
}

func TestRecentActivityLimits(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubUsers{err: auth.ErrNotFound})
	owner := uuid.New()

	_, err := svc.RecentActivity(context.Background(), owner, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, repo.activityLimit)

	_, err = svc.RecentActivity(context.Background(), owner, 500)
	require.NoError(t, err)
	assert.Equal(t, 100, repo.activityLimit)

	_, err = svc.RecentActivity(context.Background(), owner, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, repo.activityLimit)
}

func TestRecentActivityNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	repo := &stubRepo{
		activity: []ActivityEntry{
			{Title: "old", Type: application.EventApplied, Date: now.Add(-48 * time.Hour)},
			{Title: "new", Type: application.EventStatusUpdated, Date: now},
		},
	}
	svc := NewService(repo, &stubUsers{err: auth.ErrNotFound})

	entries, err := svc.RecentActivity(context.Background(), uuid.New(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "new", entries[0].Title)
	assert.Equal(t, "old", entries[1].Title)
}
