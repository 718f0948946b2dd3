package analytics

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/jobtrack/pkg/auth"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// UseCase computes read-only summaries over one user's applications.
// It never mutates state, and every rate guards the zero-denominator case
// by returning 0.
type UseCase interface {
	Overview(ctx context.Context, userID uuid.UUID) (Overview, error)
	Weekly(ctx context.Context, userID uuid.UUID) (WeeklyStats, error)
	Performance(ctx context.Context, userID uuid.UUID) (Performance, error)
	TaskDigest(ctx context.Context, userID uuid.UUID) (TaskDigest, error)
	RecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityEntry, error)
}

type service struct {
	repo  Repository
	users auth.UserRepository
}

// NewService returns the default implementation of UseCase.
func NewService(repo Repository, users auth.UserRepository) UseCase {
	return &service{repo: repo, users: users}
}

func (s *service) Overview(ctx context.Context, userID uuid.UUID) (Overview, error) {
	stats, err := s.repo.Overview(ctx, userID)
	if err != nil {
		return Overview{}, err
	}

	since := time.Now().UTC().AddDate(0, -12, 0)
	byMonth, err := s.repo.MonthlyCounts(ctx, userID, since)
	if err != nil {
		return Overview{}, err
	}
	// Chronological, oldest month first.
	sort.Slice(byMonth, func(i, j int) bool {
		if byMonth[i].Year != byMonth[j].Year {
			return byMonth[i].Year < byMonth[j].Year
		}
		return byMonth[i].Month < byMonth[j].Month
	})
	for i := range byMonth {
		byMonth[i].Label = fmt.Sprintf("%04d-%02d", byMonth[i].Year, byMonth[i].Month)
	}

	companies, err := s.repo.TopCompanies(ctx, userID, 10)
	if err != nil {
		return Overview{}, err
	}
	distribution, err := s.repo.StatusDistribution(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	bySource, err := s.repo.ResponsesBySource(ctx, userID)
	if err != nil {
		return Overview{}, err
	}
	for i := range bySource {
		bySource[i].ResponseRate = rate(bySource[i].Responses, bySource[i].Total)
	}
	sort.SliceStable(bySource, func(i, j int) bool {
		return bySource[i].ResponseRate > bySource[j].ResponseRate
	})

	return Overview{
		Overview:            stats,
		ApplicationsByMonth: byMonth,
		TopCompanies:        companies,
		StatusDistribution:  distribution,
		ResponseBySource:    bySource,
	}, nil
}

func (s *service) Weekly(ctx context.Context, userID uuid.UUID) (WeeklyStats, error) {
	now := time.Now().UTC()
	daily, err := s.repo.DailyCounts(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return WeeklyStats{}, err
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Day < daily[j].Day })

	total := 0
	for _, d := range daily {
		total += d.Count
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return WeeklyStats{}, err
	}
	target := user.Profile.Goals.WeeklyApplicationTarget
	if target <= 0 {
		target = 25
	}

	return WeeklyStats{
		DailyApplications: daily,
		TotalThisWeek:     total,
		WeeklyTarget:      target,
		Progress:          roundRate(total, target),
	}, nil
}

func (s *service) Performance(ctx context.Context, userID uuid.UUID) (Performance, error) {
	now := time.Now().UTC()
	counts, err := s.repo.PerformanceCounts(ctx, userID, now)
	if err != nil {
		return Performance{}, err
	}
	metrics := PerformanceMetrics{
		PerformanceCounts: counts,
		InterviewRate:     roundRate(counts.Interviews, counts.Total),
		OfferRate:         roundRate(counts.Offers, counts.Total),
		ResponseRate:      roundRate(counts.Responses, counts.Total),
	}

	byJobType, err := s.repo.PerformanceByJobType(ctx, userID)
	if err != nil {
		return Performance{}, err
	}
	byWorkMode, err := s.repo.PerformanceByWorkMode(ctx, userID)
	if err != nil {
		return Performance{}, err
	}
	annotateGroupRates(byJobType)
	annotateGroupRates(byWorkMode)

	return Performance{
		Metrics:             metrics,
		JobTypePerformance:  byJobType,
		WorkModePerformance: byWorkMode,
	}, nil
}

func (s *service) TaskDigest(ctx context.Context, userID uuid.UUID) (TaskDigest, error) {
	now := time.Now().UTC()
	weekAhead := now.AddDate(0, 0, 7)

	tasks, err := s.repo.UpcomingTasks(ctx, userID, weekAhead)
	if err != nil {
		return TaskDigest{}, err
	}
	for i := range tasks {
		tasks[i].IsOverdue = tasks[i].DueDate.Before(now)
	}
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].DueDate.Before(tasks[j].DueDate) })

	stats, err := s.repo.TaskStats(ctx, userID, now, weekAhead)
	if err != nil {
		return TaskDigest{}, err
	}
	return TaskDigest{UpcomingTasks: tasks, Stats: stats}, nil
}

func (s *service) RecentActivity(ctx context.Context, userID uuid.UUID, limit int) ([]ActivityEntry, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}
	entries, err := s.repo.RecentActivity(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	// Newest first.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date) })
	return entries, nil
}

func annotateGroupRates(groups []GroupPerformance) {
	for i := range groups {
		groups[i].InterviewRate = roundRate(groups[i].Interviews, groups[i].Total)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].InterviewRate > groups[j].InterviewRate
	})
}

// rate returns a percentage, 0 when the denominator is 0.
func rate(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den) * 100
}

// roundRate is rate rounded to the nearest integer percent.
func roundRate(num, den int) int {
	return int(math.Round(rate(num, den)))
}
