package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/jobtrack/pkg/analytics"
)

// AnalyticsRepository runs owner-scoped aggregations over the application
// tables. It owns no schema; ApplicationRepository creates the tables.
// Archived applications count here even though listings hide them.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// interviewStatusList renders analytics.InterviewStatuses as text for use
// with status = ANY($n).
func interviewStatusList() []string {
	out := make([]string, len(analytics.InterviewStatuses))
	for i, s := range analytics.InterviewStatuses {
		out[i] = string(s)
	}
	return out
}

func (r *AnalyticsRepository) Overview(ctx context.Context, ownerID uuid.UUID) (analytics.OverviewStats, error) {
	var s analytics.OverviewStats
	err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'applied'),
	COUNT(*) FILTER (WHERE status = 'in_review'),
	COUNT(*) FILTER (WHERE status = 'interview'),
	COUNT(*) FILTER (WHERE status = 'technical_test'),
	COUNT(*) FILTER (WHERE status = 'offer'),
	COUNT(*) FILTER (WHERE status = 'rejected'),
	COUNT(*) FILTER (WHERE status = 'withdrawn'),
	COUNT(*) FILTER (WHERE status = 'ghosted'),
	COALESCE(AVG(EXTRACT(EPOCH FROM (response_date - application_date)) / 86400)
		FILTER (WHERE response_date IS NOT NULL), 0)
FROM applications WHERE user_id = $1
`, ownerID).Scan(&s.Total, &s.Applied, &s.InReview, &s.Interview, &s.TechnicalTest,
		&s.Offer, &s.Rejected, &s.Withdrawn, &s.Ghosted, &s.AvgResponseTime)
	return s, err
}

func (r *AnalyticsRepository) MonthlyCounts(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]analytics.MonthBucket, error) {
	rows, err := r.pool.Query(ctx, `
SELECT
	EXTRACT(YEAR FROM application_date)::int,
	EXTRACT(MONTH FROM application_date)::int,
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'offer'),
	COUNT(*) FILTER (WHERE status = 'interview'),
	COUNT(*) FILTER (WHERE status = 'rejected')
FROM applications
WHERE user_id = $1 AND application_date >= $2
GROUP BY 1, 2
`, ownerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []analytics.MonthBucket
	for rows.Next() {
		var b analytics.MonthBucket
		if err := rows.Scan(&b.Year, &b.Month, &b.Count, &b.Offers, &b.Interviews, &b.Rejected); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	return buckets, rows.Err()
}

func (r *AnalyticsRepository) TopCompanies(ctx context.Context, ownerID uuid.UUID, limit int) ([]analytics.CompanyStats, error) {
	rows, err := r.pool.Query(ctx, `
SELECT
	company,
	COUNT(*),
	COUNT(*) FILTER (WHERE status = 'offer'),
	COUNT(*) FILTER (WHERE status = 'interview'),
	COUNT(*) FILTER (WHERE status = 'rejected')
FROM applications
WHERE user_id = $1
GROUP BY company
ORDER BY COUNT(*) DESC, company
LIMIT $2
`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []analytics.CompanyStats
	for rows.Next() {
		var c analytics.CompanyStats
		if err := rows.Scan(&c.Company, &c.Count, &c.Offers, &c.Interviews, &c.Rejected); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (r *AnalyticsRepository) StatusDistribution(ctx context.Context, ownerID uuid.UUID) ([]analytics.StatusCount, error) {
	rows, err := r.pool.Query(ctx, `
SELECT status, COUNT(*) FROM applications WHERE user_id = $1 GROUP BY status ORDER BY COUNT(*) DESC
`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []analytics.StatusCount
	for rows.Next() {
		var c analytics.StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *AnalyticsRepository) ResponsesBySource(ctx context.Context, ownerID uuid.UUID) ([]analytics.SourceStats, error) {
	rows, err := r.pool.Query(ctx, `
SELECT
	application_source,
	COUNT(*),
	COUNT(*) FILTER (WHERE response_date IS NOT NULL)
FROM applications
WHERE user_id = $1
GROUP BY application_source
`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []analytics.SourceStats
	for rows.Next() {
		var s analytics.SourceStats
		if err := rows.Scan(&s.Source, &s.Total, &s.Responses); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *AnalyticsRepository) DailyCounts(ctx context.Context, ownerID uuid.UUID, since time.Time) ([]analytics.DailyCount, error) {
	rows, err := r.pool.Query(ctx, `
SELECT to_char(application_date, 'YYYY-MM-DD'), COUNT(*)
FROM applications
WHERE user_id = $1 AND application_date >= $2
GROUP BY 1
ORDER BY 1
`, ownerID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []analytics.DailyCount
	for rows.Next() {
		var d analytics.DailyCount
		if err := rows.Scan(&d.Day, &d.Count); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *AnalyticsRepository) PerformanceCounts(ctx context.Context, ownerID uuid.UUID, now time.Time) (analytics.PerformanceCounts, error) {
	var c analytics.PerformanceCounts
	err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE status = ANY($3)),
	COUNT(*) FILTER (WHERE status = 'offer'),
	COUNT(*) FILTER (WHERE response_date IS NOT NULL),
	COALESCE(AVG(EXTRACT(EPOCH FROM ($2 - application_date)) / 86400), 0)
FROM applications WHERE user_id = $1
`, ownerID, now, interviewStatusList()).Scan(&c.Total, &c.Interviews, &c.Offers, &c.Responses, &c.AvgDaysSinceApplication)
	return c, err
}

func (r *AnalyticsRepository) PerformanceByJobType(ctx context.Context, ownerID uuid.UUID) ([]analytics.GroupPerformance, error) {
	return r.performanceByField(ctx, ownerID, "jobType")
}

func (r *AnalyticsRepository) PerformanceByWorkMode(ctx context.Context, ownerID uuid.UUID) ([]analytics.GroupPerformance, error) {
	return r.performanceByField(ctx, ownerID, "workMode")
}

// performanceByField groups on a key inside the job_details JSONB column.
func (r *AnalyticsRepository) performanceByField(ctx context.Context, ownerID uuid.UUID, field string) ([]analytics.GroupPerformance, error) {
	rows, err := r.pool.Query(ctx, `
SELECT
	job_details->>$2,
	COUNT(*),
	COUNT(*) FILTER (WHERE status = ANY($3)),
	COUNT(*) FILTER (WHERE status = 'offer')
FROM applications
WHERE user_id = $1 AND COALESCE(job_details->>$2, '') <> ''
GROUP BY 1
ORDER BY COUNT(*) DESC
`, ownerID, field, interviewStatusList())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []analytics.GroupPerformance
	for rows.Next() {
		var g analytics.GroupPerformance
		if err := rows.Scan(&g.Group, &g.Total, &g.Interviews, &g.Offers); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *AnalyticsRepository) UpcomingTasks(ctx context.Context, ownerID uuid.UUID, until time.Time) ([]analytics.UpcomingTask, error) {
	rows, err := r.pool.Query(ctx, `
SELECT t.id, t.title, t.description, t.due_date, t.priority,
	a.id, a.job_title, a.company, a.status
FROM application_tasks t
JOIN applications a ON a.id = t.application_id
WHERE a.user_id = $1 AND t.completed = FALSE AND t.due_date IS NOT NULL AND t.due_date <= $2
ORDER BY t.due_date
`, ownerID, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []analytics.UpcomingTask
	for rows.Next() {
		var t analytics.UpcomingTask
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority,
			&t.Application.ID, &t.Application.JobTitle, &t.Application.Company, &t.Application.Status); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *AnalyticsRepository) TaskStats(ctx context.Context, ownerID uuid.UUID, now, weekAhead time.Time) (analytics.TaskStats, error) {
	var s analytics.TaskStats
	err := r.pool.QueryRow(ctx, `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE t.completed),
	COUNT(*) FILTER (WHERE NOT t.completed AND t.due_date < $2),
	COUNT(*) FILTER (WHERE NOT t.completed AND t.due_date >= $2 AND t.due_date <= $3)
FROM application_tasks t
JOIN applications a ON a.id = t.application_id
WHERE a.user_id = $1
`, ownerID, now, weekAhead).Scan(&s.Total, &s.Completed, &s.Overdue, &s.DueThisWeek)
	return s, err
}

func (r *AnalyticsRepository) RecentActivity(ctx context.Context, ownerID uuid.UUID, limit int) ([]analytics.ActivityEntry, error) {
	rows, err := r.pool.Query(ctx, `
SELECT e.id, e.type, e.title, e.description, e.date, e.metadata,
	a.id, a.job_title, a.company, a.status
FROM application_timeline e
JOIN applications a ON a.id = e.application_id
WHERE a.user_id = $1
ORDER BY e.date DESC
LIMIT $2
`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []analytics.ActivityEntry
	for rows.Next() {
		var (
			e    analytics.ActivityEntry
			meta []byte
		)
		if err := rows.Scan(&e.ID, &e.Type, &e.Title, &e.Description, &e.Date, &meta,
			&e.Application.ID, &e.Application.JobTitle, &e.Application.Company, &e.Application.Status); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
