package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/jobtrack/pkg/validation"
)

// UseCase enforces the application lifecycle invariants:
//
//   - the timeline is append-only,
//   - ResponseDate is set at most once, by the first transition away from
//     "applied", and is never reset,
//   - ArchivedAt follows the archive flag's transitions,
//   - a task's CompletedAt follows its Completed transitions.
//
// A status change, its timeline entry and the ResponseDate update are
// persisted as one transactional unit (Repository.Update).
type UseCase interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (Application, error)
	List(ctx context.Context, ownerID uuid.UUID, f Filter) (ListResult, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (Application, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch Patch) (Application, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	SetArchived(ctx context.Context, ownerID, id uuid.UUID, archived bool) (Application, error)

	AddTask(ctx context.Context, ownerID, appID uuid.UUID, in TaskInput) (Task, error)
	UpdateTask(ctx context.Context, ownerID, appID, taskID uuid.UUID, patch TaskPatch) (Task, error)
	RemoveTask(ctx context.Context, ownerID, appID, taskID uuid.UUID) error

	AddTimelineEvent(ctx context.Context, ownerID, appID uuid.UUID, in EventInput) (TimelineEvent, error)
}

type CreateInput struct {
	JobTitle          string
	Company           string
	ApplicationDate   *time.Time
	ApplicationSource string
	Priority          string
	Notes             string
	Tags              []string
	JobDetails        JobDetailsPatch
	ContactPerson     *ContactPerson
	ResumeUsed        *ResumeUsed
	CoverLetter       *CoverLetter
}

// Patch is the allow-listed set of updatable fields. Nil means "leave
// unchanged"; JobDetails merges key-by-key rather than replacing wholesale.
type Patch struct {
	JobTitle          *string
	Company           *string
	Status            *Status
	ApplicationDate   *time.Time
	ApplicationSource *string
	Notes             *string
	Tags              *[]string
	Priority          *string
	RejectionReason   *string
	JobDetails        *JobDetailsPatch
	ContactPerson     *ContactPerson
	ResumeUsed        *ResumeUsed
	CoverLetter       *CoverLetter
	OfferDetails      *OfferDetails
	FollowUps         *[]FollowUp
	Interviews        *[]Interview
}

type JobDetailsPatch struct {
	URL            *string
	Description    *string
	Requirements   *[]string
	Location       *string
	WorkMode       *string
	JobType        *string
	SalaryMin      *float64
	SalaryMax      *float64
	SalaryCurrency *string
	SalaryType     *string
}

type TaskInput struct {
	Title       string
	Description string
	DueDate     *time.Time
	Priority    string
}

type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Completed   *bool
	Priority    *string
}

type EventInput struct {
	Type        EventType
	Title       string
	Description string
	Metadata    map[string]any
}

type ListResult struct {
	Applications []Application
	Stats        StatusCounts
	Page         int
	Limit        int
	Total        int
	Pages        int
}

type service struct {
	repo Repository
}

// NewService returns the default implementation of UseCase.
func NewService(repo Repository) UseCase { return &service{repo: repo} }

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, in CreateInput) (Application, error) {
	in.JobTitle = strings.TrimSpace(in.JobTitle)
	in.Company = strings.TrimSpace(in.Company)

	verr := &validation.Error{}
	if in.JobTitle == "" {
		verr.Add("jobTitle", "Job title is required")
	} else if len(in.JobTitle) > 200 {
		verr.Add("jobTitle", "Job title cannot exceed 200 characters")
	}
	if in.Company == "" {
		verr.Add("company", "Company name is required")
	} else if len(in.Company) > 100 {
		verr.Add("company", "Company name cannot exceed 100 characters")
	}
	if len(in.Notes) > 5000 {
		verr.Add("notes", "Notes cannot exceed 5000 characters")
	}
	if in.ApplicationSource != "" && !contains(Sources, in.ApplicationSource) {
		verr.Add("applicationSource", "Invalid application source")
	}
	if in.Priority != "" && !contains(priorities, in.Priority) {
		verr.Add("priority", "Invalid priority")
	}
	validateTags(verr, in.Tags)
	validateJobDetails(verr, in.JobDetails)
	if verr.HasErrors() {
		return Application{}, verr
	}

	now := time.Now().UTC()
	appDate := now
	if in.ApplicationDate != nil {
		appDate = in.ApplicationDate.UTC()
	}
	source := in.ApplicationSource
	if source == "" {
		source = "other"
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}

	app := Application{
		ID:                uuid.New(),
		UserID:            ownerID,
		JobTitle:          in.JobTitle,
		Company:           in.Company,
		Status:            StatusApplied,
		ApplicationDate:   appDate,
		ApplicationSource: source,
		Priority:          priority,
		Notes:             in.Notes,
		Tags:              in.Tags,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	applyJobDetails(&app.JobDetails, in.JobDetails)
	if in.ContactPerson != nil {
		app.ContactPerson = *in.ContactPerson
	}
	if in.ResumeUsed != nil {
		app.ResumeUsed = *in.ResumeUsed
	}
	if in.CoverLetter != nil {
		app.CoverLetter = *in.CoverLetter
	}

	initial := TimelineEvent{
		ID:          uuid.New(),
		Type:        EventApplied,
		Title:       "Application submitted",
		Description: fmt.Sprintf("Applied for %s at %s", app.JobTitle, app.Company),
		Date:        now,
	}
	if err := s.repo.Create(ctx, app, initial); err != nil {
		return Application{}, err
	}
	app.Timeline = []TimelineEvent{initial}
	return app, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, f Filter) (ListResult, error) {
	verr := &validation.Error{}
	if f.Status != nil && !f.Status.Valid() {
		verr.Add("status", "Invalid status")
	}
	if len(f.Company) > 100 {
		verr.Add("company", "Company filter cannot exceed 100 characters")
	}
	if len(f.Search) > 200 {
		verr.Add("search", "Search query cannot exceed 200 characters")
	}
	if f.Sort != "" && !contains(SortOrders, f.Sort) {
		verr.Add("sort", "Invalid sort order")
	}
	if verr.HasErrors() {
		return ListResult{}, verr
	}

	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Sort == "" {
		f.Sort = "newest"
	}

	apps, total, err := s.repo.List(ctx, ownerID, f)
	if err != nil {
		return ListResult{}, err
	}
	stats, err := s.repo.Stats(ctx, ownerID)
	if err != nil {
		return ListResult{}, err
	}
	pages := (total + f.Limit - 1) / f.Limit
	return ListResult{
		Applications: apps,
		Stats:        stats,
		Page:         f.Page,
		Limit:        f.Limit,
		Total:        total,
		Pages:        pages,
	}, nil
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (Application, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, patch Patch) (Application, error) {
	verr := &validation.Error{}
	if patch.JobTitle != nil {
		t := strings.TrimSpace(*patch.JobTitle)
		if t == "" {
			verr.Add("jobTitle", "Job title is required")
		} else if len(t) > 200 {
			verr.Add("jobTitle", "Job title cannot exceed 200 characters")
		}
		patch.JobTitle = &t
	}
	if patch.Company != nil {
		c := strings.TrimSpace(*patch.Company)
		if c == "" {
			verr.Add("company", "Company name is required")
		} else if len(c) > 100 {
			verr.Add("company", "Company name cannot exceed 100 characters")
		}
		patch.Company = &c
	}
	if patch.Status != nil && !patch.Status.Valid() {
		verr.Add("status", "Invalid status")
	}
	if patch.Notes != nil && len(*patch.Notes) > 5000 {
		verr.Add("notes", "Notes cannot exceed 5000 characters")
	}
	if patch.ApplicationSource != nil && !contains(Sources, *patch.ApplicationSource) {
		verr.Add("applicationSource", "Invalid application source")
	}
	if patch.Priority != nil && !contains(priorities, *patch.Priority) {
		verr.Add("priority", "Invalid priority")
	}
	if patch.Tags != nil {
		validateTags(verr, *patch.Tags)
	}
	if patch.JobDetails != nil {
		validateJobDetails(verr, *patch.JobDetails)
	}
	if verr.HasErrors() {
		return Application{}, verr
	}

	app, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Application{}, err
	}

	now := time.Now().UTC()
	oldStatus := app.Status

	if patch.JobTitle != nil {
		app.JobTitle = *patch.JobTitle
	}
	if patch.Company != nil {
		app.Company = *patch.Company
	}
	if patch.ApplicationDate != nil {
		app.ApplicationDate = patch.ApplicationDate.UTC()
	}
	if patch.ApplicationSource != nil {
		app.ApplicationSource = *patch.ApplicationSource
	}
	if patch.Notes != nil {
		app.Notes = *patch.Notes
	}
	if patch.Tags != nil {
		app.Tags = *patch.Tags
	}
	if patch.Priority != nil {
		app.Priority = *patch.Priority
	}
	if patch.RejectionReason != nil {
		app.RejectionReason = *patch.RejectionReason
	}
	if patch.JobDetails != nil {
		applyJobDetails(&app.JobDetails, *patch.JobDetails)
	}
	if patch.ContactPerson != nil {
		app.ContactPerson = *patch.ContactPerson
	}
	if patch.ResumeUsed != nil {
		app.ResumeUsed = *patch.ResumeUsed
	}
	if patch.CoverLetter != nil {
		app.CoverLetter = *patch.CoverLetter
	}
	if patch.OfferDetails != nil {
		app.OfferDetails = *patch.OfferDetails
	}
	if patch.FollowUps != nil {
		app.FollowUps = *patch.FollowUps
	}
	if patch.Interviews != nil {
		app.Interviews = *patch.Interviews
	}

	var events []TimelineEvent
	if patch.Status != nil && *patch.Status != oldStatus {
		app.Status = *patch.Status
		events = append(events, TimelineEvent{
			ID:          uuid.New(),
			Type:        EventStatusUpdated,
			Title:       fmt.Sprintf("Status changed to %s", app.Status),
			Description: fmt.Sprintf("Application status updated from %s to %s", oldStatus, app.Status),
			Date:        now,
		})
		// First transition away from "applied" marks the response; never reset.
		if app.Status != StatusApplied && app.ResponseDate == nil {
			app.ResponseDate = &now
		}
	}

	app.UpdatedAt = now
	if err := s.repo.Update(ctx, app, events); err != nil {
		return Application{}, err
	}
	app.Timeline = append(app.Timeline, events...)
	return app, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func (s *service) SetArchived(ctx context.Context, ownerID, id uuid.UUID, archived bool) (Application, error) {
	app, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Application{}, err
	}
	now := time.Now().UTC()
	switch {
	case archived && !app.IsArchived:
		app.ArchivedAt = &now
	case !archived:
		app.ArchivedAt = nil
	}
	app.IsArchived = archived
	app.UpdatedAt = now
	if err := s.repo.SetArchived(ctx, ownerID, id, app.IsArchived, app.ArchivedAt); err != nil {
		return Application{}, err
	}
	return app, nil
}

func (s *service) AddTask(ctx context.Context, ownerID, appID uuid.UUID, in TaskInput) (Task, error) {
	in.Title = strings.TrimSpace(in.Title)

	verr := &validation.Error{}
	if in.Title == "" {
		verr.Add("title", "Task title is required")
	} else if len(in.Title) > 200 {
		verr.Add("title", "Task title cannot exceed 200 characters")
	}
	if len(in.Description) > 1000 {
		verr.Add("description", "Task description cannot exceed 1000 characters")
	}
	if in.Priority != "" && !contains(taskPriorities, in.Priority) {
		verr.Add("priority", "Invalid task priority")
	}
	if verr.HasErrors() {
		return Task{}, verr
	}

	now := time.Now().UTC()
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	task := Task{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.AddTask(ctx, ownerID, appID, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *service) UpdateTask(ctx context.Context, ownerID, appID, taskID uuid.UUID, patch TaskPatch) (Task, error) {
	verr := &validation.Error{}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			verr.Add("title", "Task title is required")
		} else if len(t) > 200 {
			verr.Add("title", "Task title cannot exceed 200 characters")
		}
		patch.Title = &t
	}
	if patch.Description != nil && len(*patch.Description) > 1000 {
		verr.Add("description", "Task description cannot exceed 1000 characters")
	}
	if patch.Priority != nil && !contains(taskPriorities, *patch.Priority) {
		verr.Add("priority", "Invalid task priority")
	}
	if verr.HasErrors() {
		return Task{}, verr
	}

	task, err := s.repo.GetTask(ctx, ownerID, appID, taskID)
	if err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Completed != nil && *patch.Completed != task.Completed {
		task.Completed = *patch.Completed
		if task.Completed {
			task.CompletedAt = &now
		} else {
			task.CompletedAt = nil
		}
	}
	task.UpdatedAt = now

	if err := s.repo.UpdateTask(ctx, ownerID, appID, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *service) RemoveTask(ctx context.Context, ownerID, appID, taskID uuid.UUID) error {
	return s.repo.DeleteTask(ctx, ownerID, appID, taskID)
}

func (s *service) AddTimelineEvent(ctx context.Context, ownerID, appID uuid.UUID, in EventInput) (TimelineEvent, error) {
	verr := &validation.Error{}
	if !in.Type.Valid() {
		verr.Add("type", "Invalid timeline event type")
	}
	if strings.TrimSpace(in.Title) == "" {
		verr.Add("title", "Timeline event title is required")
	}
	if verr.HasErrors() {
		return TimelineEvent{}, verr
	}

	event := TimelineEvent{
		ID:          uuid.New(),
		Type:        in.Type,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Date:        time.Now().UTC(),
		Metadata:    in.Metadata,
	}
	if err := s.repo.AppendTimeline(ctx, ownerID, appID, event); err != nil {
		return TimelineEvent{}, err
	}
	return event, nil
}

func applyJobDetails(dst *JobDetails, patch JobDetailsPatch) {
	if patch.URL != nil {
		dst.URL = *patch.URL
	}
	if patch.Description != nil {
		dst.Description = *patch.Description
	}
	if patch.Requirements != nil {
		dst.Requirements = *patch.Requirements
	}
	if patch.Location != nil {
		dst.Location = *patch.Location
	}
	if patch.WorkMode != nil {
		dst.WorkMode = *patch.WorkMode
	}
	if patch.JobType != nil {
		dst.JobType = *patch.JobType
	}
	if patch.SalaryMin != nil {
		dst.Salary.Min = patch.SalaryMin
	}
	if patch.SalaryMax != nil {
		dst.Salary.Max = patch.SalaryMax
	}
	if patch.SalaryCurrency != nil {
		dst.Salary.Currency = *patch.SalaryCurrency
	}
	if patch.SalaryType != nil {
		dst.Salary.Type = *patch.SalaryType
	}
}

func validateJobDetails(verr *validation.Error, patch JobDetailsPatch) {
	if patch.URL != nil && *patch.URL != "" && !strings.HasPrefix(*patch.URL, "http://") && !strings.HasPrefix(*patch.URL, "https://") {
		verr.Add("jobDetails.url", "Job URL must be a valid URL")
	}
	if patch.Description != nil && len(*patch.Description) > 5000 {
		verr.Add("jobDetails.description", "Job description cannot exceed 5000 characters")
	}
	if patch.WorkMode != nil && *patch.WorkMode != "" && !contains(workModes, *patch.WorkMode) {
		verr.Add("jobDetails.workMode", "Invalid work mode")
	}
	if patch.JobType != nil && *patch.JobType != "" && !contains(jobTypes, *patch.JobType) {
		verr.Add("jobDetails.jobType", "Invalid job type")
	}
	if patch.SalaryType != nil && *patch.SalaryType != "" && !contains(salaryTypes, *patch.SalaryType) {
		verr.Add("jobDetails.salary.type", "Invalid salary type")
	}
}

func validateTags(verr *validation.Error, tags []string) {
	for _, tag := range tags {
		if len(tag) > 50 {
			verr.Add("tags", "Tag cannot exceed 50 characters")
			return
		}
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
