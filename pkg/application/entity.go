package application

import (
	"time"

	"github.com/google/uuid"
)

// Status is the stage of an application in its fixed lifecycle.
// Archiving is deliberately not a status: it is an orthogonal flag,
// mirrored by ArchivedAt (see SetArchived).
type Status string

const (
	StatusApplied       Status = "applied"
	StatusInReview      Status = "in_review"
	StatusInterview     Status = "interview"
	StatusTechnicalTest Status = "technical_test"
	StatusOffer         Status = "offer"
	StatusRejected      Status = "rejected"
	StatusWithdrawn     Status = "withdrawn"
	StatusGhosted       Status = "ghosted"
)

// Statuses lists every valid lifecycle status.
var Statuses = []Status{
	StatusApplied, StatusInReview, StatusInterview, StatusTechnicalTest,
	StatusOffer, StatusRejected, StatusWithdrawn, StatusGhosted,
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// EventType tags a timeline entry.
type EventType string

const (
	EventApplied            EventType = "applied"
	EventInterviewScheduled EventType = "interview_scheduled"
	EventInterviewCompleted EventType = "interview_completed"
	EventTestSent           EventType = "test_sent"
	EventTestCompleted      EventType = "test_completed"
	EventOfferReceived      EventType = "offer_received"
	EventRejected           EventType = "rejected"
	EventFollowedUp         EventType = "followed_up"
	EventStatusUpdated      EventType = "status_updated"
	EventNoteAdded          EventType = "note_added"
)

var eventTypes = []EventType{
	EventApplied, EventInterviewScheduled, EventInterviewCompleted,
	EventTestSent, EventTestCompleted, EventOfferReceived,
	EventRejected, EventFollowedUp, EventStatusUpdated, EventNoteAdded,
}

func (t EventType) Valid() bool {
	for _, v := range eventTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Sources an application can originate from.
var Sources = []string{
	"company_website", "linkedin", "indeed", "glassdoor",
	"referral", "recruiter", "job_board", "other",
}

var (
	priorities     = []string{"low", "medium", "high"}
	taskPriorities = []string{"low", "medium", "high", "urgent"}
	workModes      = []string{"remote", "onsite", "hybrid"}
	jobTypes       = []string{"full-time", "part-time", "contract", "internship", "freelance"}
	salaryTypes    = []string{"hourly", "monthly", "yearly"}
)

// Application is a single tracked job application owned by one user.
type Application struct {
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"userId"`

	JobTitle string `json:"jobTitle"`
	Company  string `json:"company"`
	Status   Status `json:"status"`

	ApplicationDate time.Time  `json:"applicationDate"`
	ResponseDate    *time.Time `json:"responseDate,omitempty"`

	JobDetails        JobDetails    `json:"jobDetails"`
	ApplicationSource string        `json:"applicationSource"`
	ContactPerson     ContactPerson `json:"contactPerson"`
	ResumeUsed        ResumeUsed    `json:"resumeUsed"`
	CoverLetter       CoverLetter   `json:"coverLetter"`
	OfferDetails      OfferDetails  `json:"offerDetails"`

	FollowUps   []FollowUp   `json:"followUps,omitempty"`
	Interviews  []Interview  `json:"interviews,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	Tasks    []Task          `json:"tasks,omitempty"`
	Timeline []TimelineEvent `json:"timeline,omitempty"`

	Notes           string   `json:"notes,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Priority        string   `json:"priority"`
	RejectionReason string   `json:"rejectionReason,omitempty"`

	IsArchived bool       `json:"isArchived"`
	ArchivedAt *time.Time `json:"archivedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResponseTime returns whole days between application and first response,
// or nil when no response was recorded yet.
func (a Application) ResponseTime() *int {
	if a.ResponseDate == nil {
		return nil
	}
	days := int(a.ResponseDate.Sub(a.ApplicationDate).Hours()/24 + 0.999999)
	if days < 0 {
		days = 0
	}
	return &days
}

type JobDetails struct {
	URL          string   `json:"url,omitempty"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Salary       Salary   `json:"salary"`
	Location     string   `json:"location,omitempty"`
	WorkMode     string   `json:"workMode,omitempty"`
	JobType      string   `json:"jobType,omitempty"`
}

type Salary struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Type     string   `json:"type,omitempty"`
}

type ContactPerson struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Role        string `json:"role,omitempty"`
	LinkedinURL string `json:"linkedinUrl,omitempty"`
}

type ResumeUsed struct {
	Version string `json:"version,omitempty"`
	URL     string `json:"url,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type CoverLetter struct {
	Used       bool   `json:"used"`
	Customized bool   `json:"customized"`
	URL        string `json:"url,omitempty"`
}

type FollowUp struct {
	Date     time.Time `json:"date"`
	Method   string    `json:"method,omitempty"`
	Response bool      `json:"response"`
	Notes    string    `json:"notes,omitempty"`
}

type Interview struct {
	Type          string     `json:"type,omitempty"`
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
	// Duration in minutes.
	Duration     int      `json:"duration,omitempty"`
	Interviewers []string `json:"interviewers,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Feedback     string   `json:"feedback,omitempty"`
	Result       string   `json:"result,omitempty"`
}

type Attachment struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Type       string    `json:"type,omitempty"`
	Size       int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type OfferDetails struct {
	Salary           Salary     `json:"salary"`
	Benefits         []string   `json:"benefits,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	ResponseDeadline *time.Time `json:"responseDeadline,omitempty"`
	Negotiable       bool       `json:"negotiable"`
	Accepted         *bool      `json:"accepted,omitempty"`
	DeclinedReason   string     `json:"declinedReason,omitempty"`
}

// Task is an independently completable to-do attached to an application.
type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Priority    string     `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TimelineEvent is an immutable log record: entries are appended and never
// edited or removed.
type TimelineEvent struct {
	ID          uuid.UUID      `json:"id"`
	Type        EventType      `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        time.Time      `json:"date"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}
