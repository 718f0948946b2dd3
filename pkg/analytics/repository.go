package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the read-only aggregation port. Every query is scoped to
// one owner; implementations must never let another user's rows leak into
// the result. Archived applications are included (only listings hide them).
type Repository interface {
	Overview(ctx context.Context, ownerID uuid.UUID) (OverviewStats, error)
	MonthlyCounts(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]MonthBucket, error)
	TopCompanies(ctx context.Context, ownerID uuid.UUID, limit int) ([]CompanyStats, error)
	StatusDistribution(ctx context.Context, ownerID uuid.UUID) ([]StatusCount, error)
	ResponsesBySource(ctx context.Context, ownerID uuid.UUID) ([]SourceStats, error)
	DailyCounts(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]DailyCount, error)
	PerformanceCounts(ctx context.Context, ownerID uuid.UUID, now time.Time) (PerformanceCounts, error)
	PerformanceByJobType(ctx context.Context, ownerID uuid.UUID) ([]GroupPerformance, error)
	PerformanceByWorkMode(ctx context.Context, ownerID uuid.UUID) ([]GroupPerformance, error)
	// UpcomingTasks returns incomplete tasks with a due date at or before the
	// until bound, oldest due date first.
	UpcomingTasks(ctx context.Context, ownerID uuid.UUID, until time.Time) ([]UpcomingTask, error)
	TaskStats(ctx context.Context, ownerID uuid.UUID, now, weekAhead time.Time) (TaskStats, error)
	RecentActivity(ctx context.Context, ownerID uuid.UUID, limit int) ([]ActivityEntry, error)
}
