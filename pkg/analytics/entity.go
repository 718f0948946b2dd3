package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/jobtrack/pkg/application"
)

// OverviewStats is the per-status breakdown plus average days-to-response
// across applications that received a response.
type OverviewStats struct {
	Total           int     `json:"total"`
	Applied         int     `json:"applied"`
	InReview        int     `json:"inReview"`
	Interview       int     `json:"interview"`
	TechnicalTest   int     `json:"technicalTest"`
	Offer           int     `json:"offer"`
	Rejected        int     `json:"rejected"`
	Withdrawn       int     `json:"withdrawn"`
	Ghosted         int     `json:"ghosted"`
	AvgResponseTime float64 `json:"avgResponseTime"`
}

// MonthBucket is one calendar month of application activity.
type MonthBucket struct {
	Year       int    `json:"year"`
	Month      int    `json:"month"`
	Label      string `json:"label"`
	Count      int    `json:"count"`
	Offers     int    `json:"offers"`
	Interviews int    `json:"interviews"`
	Rejected   int    `json:"rejected"`
}

type CompanyStats struct {
	Company    string `json:"company"`
	Count      int    `json:"count"`
	Offers     int    `json:"offers"`
	Interviews int    `json:"interviews"`
	Rejected   int    `json:"rejected"`
}

type StatusCount struct {
	Status application.Status `json:"status"`
	Count  int                `json:"count"`
}

type SourceStats struct {
	Source       string  `json:"source"`
	Total        int     `json:"total"`
	Responses    int     `json:"responses"`
	ResponseRate float64 `json:"responseRate"`
}

// Overview bundles the dashboard payload.
type Overview struct {
	Overview            OverviewStats  `json:"overview"`
	ApplicationsByMonth []MonthBucket  `json:"applicationsByMonth"`
	TopCompanies        []CompanyStats `json:"topCompanies"`
	StatusDistribution  []StatusCount  `json:"statusDistribution"`
	ResponseBySource    []SourceStats  `json:"responseBySource"`
}

type DailyCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// WeeklyStats tracks progress against the user's weekly application target.
type WeeklyStats struct {
	DailyApplications []DailyCount `json:"dailyApplications"`
	TotalThisWeek     int          `json:"totalThisWeek"`
	WeeklyTarget      int          `json:"weeklyTarget"`
	Progress          int          `json:"progress"`
}

// InterviewStatuses are the lifecycle stages that count as having reached
// an interview. A pending technical test does not qualify.
var InterviewStatuses = []application.Status{
	application.StatusInterview,
	application.StatusOffer,
}

// PerformanceCounts are the raw numerators/denominators behind the rates.
type PerformanceCounts struct {
	Total                   int     `json:"total"`
	Interviews              int     `json:"interviews"`
	Offers                  int     `json:"offers"`
	Responses               int     `json:"responses"`
	AvgDaysSinceApplication float64 `json:"avgDaysSinceApplication"`
}

type PerformanceMetrics struct {
	PerformanceCounts
	InterviewRate int `json:"interviewRate"`
	OfferRate     int `json:"offerRate"`
	ResponseRate  int `json:"responseRate"`
}

// GroupPerformance is the interview/offer breakdown for one job type or
// work mode.
type GroupPerformance struct {
	Group         string `json:"group"`
	Total         int    `json:"total"`
	Interviews    int    `json:"interviews"`
	Offers        int    `json:"offers"`
	InterviewRate int    `json:"interviewRate"`
}

type Performance struct {
	Metrics             PerformanceMetrics `json:"metrics"`
	JobTypePerformance  []GroupPerformance `json:"jobTypePerformance"`
	WorkModePerformance []GroupPerformance `json:"workModePerformance"`
}

// ApplicationRef identifies the application a task or timeline entry
// belongs to.
type ApplicationRef struct {
	ID       uuid.UUID          `json:"id"`
	JobTitle string             `json:"jobTitle"`
	Company  string             `json:"company"`
	Status   application.Status `json:"status"`
}

type UpcomingTask struct {
	ID          uuid.UUID      `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	DueDate     time.Time      `json:"dueDate"`
	Priority    string         `json:"priority"`
	Application ApplicationRef `json:"application"`
	IsOverdue   bool           `json:"isOverdue"`
}

type TaskStats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	Overdue     int `json:"overdue"`
	DueThisWeek int `json:"dueThisWeek"`
}

// TaskDigest lists incomplete tasks due within the next 7 days, annotated
// with overdue state, plus aggregate counters.
type TaskDigest struct {
	UpcomingTasks []UpcomingTask `json:"upcomingTasks"`
	Stats         TaskStats      `json:"stats"`
}

type ActivityEntry struct {
	ID          uuid.UUID             `json:"id"`
	Type        application.EventType `json:"type"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Date        time.Time             `json:"date"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
	Application ApplicationRef        `json:"application"`
}
