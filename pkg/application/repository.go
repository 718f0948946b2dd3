package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound covers both missing records and records owned by someone
	// else: callers must not be able to tell the two apart.
	ErrNotFound     = errors.New("application not found")
	ErrTaskNotFound = errors.New("task not found")
)

// Sort orders accepted by List.
var SortOrders = []string{"newest", "oldest", "company", "status", "priority"}

// Filter narrows an owner's application listing.
type Filter struct {
	Status          *Status
	Company         string
	Search          string
	IncludeArchived bool
	Sort            string
	Page            int
	Limit           int
}

// StatusCounts is the per-status breakdown attached to listings.
type StatusCounts struct {
	Total         int `json:"total"`
	Applied       int `json:"applied"`
	InReview      int `json:"inReview"`
	Interview     int `json:"interview"`
	TechnicalTest int `json:"technicalTest"`
	Offer         int `json:"offer"`
	Rejected      int `json:"rejected"`
	Withdrawn     int `json:"withdrawn"`
	Ghosted       int `json:"ghosted"`
}

// Repository is the persistence port for applications and their
// sub-collections. All methods are owner-scoped; a row that exists but
// belongs to a different owner surfaces as ErrNotFound.
type Repository interface {
	// Create persists the application and its initial timeline entry in one
	// transactional unit.
	Create(ctx context.Context, app Application, initial TimelineEvent) error

	// List returns a page of applications (without tasks/timeline) plus the
	// total match count. Archived records are excluded unless the filter
	// opts in.
	List(ctx context.Context, ownerID uuid.UUID, f Filter) ([]Application, int, error)

	// Stats counts the owner's non-archived applications per status.
	Stats(ctx context.Context, ownerID uuid.UUID) (StatusCounts, error)

	// Get loads one application including tasks and timeline.
	Get(ctx context.Context, ownerID, id uuid.UUID) (Application, error)

	// Update persists the mutated row together with any timeline entries the
	// mutation produced, in one transaction. Timeline rows are insert-only.
	Update(ctx context.Context, app Application, events []TimelineEvent) error

	Delete(ctx context.Context, ownerID, id uuid.UUID) error

	SetArchived(ctx context.Context, ownerID, id uuid.UUID, archived bool, archivedAt *time.Time) error

	AddTask(ctx context.Context, ownerID, appID uuid.UUID, task Task) error
	GetTask(ctx context.Context, ownerID, appID, taskID uuid.UUID) (Task, error)
	UpdateTask(ctx context.Context, ownerID, appID uuid.UUID, task Task) error
	DeleteTask(ctx context.Context, ownerID, appID, taskID uuid.UUID) error

	AppendTimeline(ctx context.Context, ownerID, appID uuid.UUID, event TimelineEvent) error
}
