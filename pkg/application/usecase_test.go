package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/jobtrack/pkg/validation"
)

// stubRepo records calls and serves canned applications keyed by id.
type stubRepo struct {
	apps  map[uuid.UUID]Application
	tasks map[uuid.UUID]Task

	created        []Application
	createdEvents  []TimelineEvent
	updated        []Application
	updatedEvents  [][]TimelineEvent
	archivedFlag   *bool
	archivedAt     *time.Time
	appendedEvents []TimelineEvent
	deletedTasks   []uuid.UUID

	err error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		apps:  make(map[uuid.UUID]Application),
		tasks: make(map[uuid.UUID]Task),
	}
}

func (r *stubRepo) Create(_ context.Context, app Application, initial TimelineEvent) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, app)
	r.createdEvents = append(r.createdEvents, initial)
	return nil
}

func (r *stubRepo) List(_ context.Context, _ uuid.UUID, _ Filter) ([]Application, int, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	out := make([]Application, 0, len(r.apps))
	for _, a := range r.apps {
		out = append(out, a)
	}
	return out, 45, nil
}

func (r *stubRepo) Stats(_ context.Context, _ uuid.UUID) (StatusCounts, error) {
	return StatusCounts{Total: len(r.apps)}, r.err
}

func (r *stubRepo) Get(_ context.Context, _, id uuid.UUID) (Application, error) {
	if r.err != nil {
		return Application{}, r.err
	}
	app, ok := r.apps[id]
	if !ok {
		return Application{}, ErrNotFound
	}
	return app, nil
}

func (r *stubRepo) Update(_ context.Context, app Application, events []TimelineEvent) error {
	if r.err != nil {
		return r.err
	}
	r.updated = append(r.updated, app)
	r.updatedEvents = append(r.updatedEvents, events)
	r.apps[app.ID] = app
	return nil
}

func (r *stubRepo) Delete(_ context.Context, _, id uuid.UUID) error {
	if _, ok := r.apps[id]; !ok {
		return ErrNotFound
	}
	delete(r.apps, id)
	return nil
}

func (r *stubRepo) SetArchived(_ context.Context, _, id uuid.UUID, archived bool, archivedAt *time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.archivedFlag = &archived
	r.archivedAt = archivedAt
	return nil
}

func (r *stubRepo) AddTask(_ context.Context, _, appID uuid.UUID, task Task) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.apps[appID]; !ok {
		return ErrNotFound
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *stubRepo) GetTask(_ context.Context, _, appID, taskID uuid.UUID) (Task, error) {
	if _, ok := r.apps[appID]; !ok {
		return Task{}, ErrNotFound
	}
	task, ok := r.tasks[taskID]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return task, nil
}

func (r *stubRepo) UpdateTask(_ context.Context, _, _ uuid.UUID, task Task) error {
	r.tasks[task.ID] = task
	return r.err
}

func (r *stubRepo) DeleteTask(_ context.Context, _, _, taskID uuid.UUID) error {
	r.deletedTasks = append(r.deletedTasks, taskID)
	return r.err
}

func (r *stubRepo) AppendTimeline(_ context.Context, _, appID uuid.UUID, event TimelineEvent) error {
	if _, ok := r.apps[appID]; !ok {
		return ErrNotFound
	}
	r.appendedEvents = append(r.appendedEvents, event)
	return nil
}

func seedApp(r *stubRepo, status Status) Application {
	app := Application{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		JobTitle:        "Backend Engineer",
		Company:         "Acme",
		Status:          status,
		ApplicationDate: time.Now().UTC().Add(-72 * time.Hour),
		Priority:        "medium",
		CreatedAt:       time.Now().UTC().Add(-72 * time.Hour),
		UpdatedAt:       time.Now().UTC().Add(-72 * time.Hour),
	}
	r.apps[app.ID] = app
	return app
}

func TestCreateDefaultsAndInitialEvent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	owner := uuid.New()

	app, err := svc.Create(context.Background(), owner, CreateInput{
		JobTitle: "  Go Developer ",
		Company:  "Initech",
	})
	require.NoError(t, err)

	assert.Equal(t, "Go Developer", app.JobTitle)
	assert.Equal(t, StatusApplied, app.Status)
	assert.Equal(t, "other", app.ApplicationSource)
	assert.Equal(t, "medium", app.Priority)
	assert.Equal(t, owner, app.UserID)
	assert.False(t, app.ApplicationDate.IsZero())

	require.Len(t, repo.createdEvents, 1)
	initial := repo.createdEvents[0]
	assert.Equal(t, EventApplied, initial.Type)
	assert.Equal(t, "Application submitted", initial.Title)
	assert.Contains(t, initial.Description, "Go Developer")
	assert.Contains(t, initial.Description, "Initech")
	require.Len(t, app.Timeline, 1)
	assert.Equal(t, initial.ID, app.Timeline[0].ID)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		JobTitle:          "",
		Company:           "",
		ApplicationSource: "carrier_pigeon",
		Priority:          "extreme",
	})
	require.Error(t, err)

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "Job title is required", fields["jobTitle"])
	assert.Equal(t, "Company name is required", fields["company"])
	assert.Equal(t, "Invalid application source", fields["applicationSource"])
	assert.Equal(t, "Invalid priority", fields["priority"])
}

func TestCreateRejectsBadJobURL(t *testing.T) {
	svc := NewService(newStubRepo())
	url := "ftp://jobs.example.com/posting"

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		JobTitle:   "Dev",
		Company:    "Acme",
		JobDetails: JobDetailsPatch{URL: &url},
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "jobDetails.url", verr.Fields[0].Field)
}

func TestUpdateStatusChangeAppendsOneEvent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	status := StatusInterview
	updated, err := svc.Update(context.Background(), app.UserID, app.ID, Patch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, StatusInterview, updated.Status)
	require.Len(t, repo.updatedEvents, 1)
	require.Len(t, repo.updatedEvents[0], 1)
	ev := repo.updatedEvents[0][0]
	assert.Equal(t, EventStatusUpdated, ev.Type)
	assert.Equal(t, "Status changed to interview", ev.Title)
	assert.Contains(t, ev.Description, "from applied to interview")
}

func TestUpdateSameStatusNoEvent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusInterview)

	status := StatusInterview
	_, err := svc.Update(context.Background(), app.UserID, app.ID, Patch{Status: &status})
	require.NoError(t, err)
	require.Len(t, repo.updatedEvents, 1)
	assert.Empty(t, repo.updatedEvents[0])
}

func TestUpdateResponseDateSetOnceNeverReset(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	status := StatusInReview
	updated, err := svc.Update(context.Background(), app.UserID, app.ID, Patch{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, updated.ResponseDate)
	first := *updated.ResponseDate

	// A later status change keeps the original response date.
	status = StatusOffer
	updated, err = svc.Update(context.Background(), app.UserID, app.ID, Patch{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, updated.ResponseDate)
	assert.Equal(t, first, *updated.ResponseDate)

	// Moving back to applied does not clear it either.
	status = StatusApplied
	updated, err = svc.Update(context.Background(), app.UserID, app.ID, Patch{Status: &status})
	require.NoError(t, err)
	require.NotNil(t, updated.ResponseDate)
	assert.Equal(t, first, *updated.ResponseDate)
}

func TestUpdateBackToAppliedDoesNotSetResponseDate(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusGhosted)

	status := StatusApplied
	updated, err := svc.Update(context.Background(), app.UserID, app.ID, Patch{Status: &status})
	require.NoError(t, err)
	assert.Nil(t, updated.ResponseDate)
}

func TestUpdateMergesJobDetails(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)
	app.JobDetails = JobDetails{Location: "Berlin", WorkMode: "hybrid"}
	repo.apps[app.ID] = app

	loc := "Remote"
	min := 90000.0
	updated, err := svc.Update(context.Background(), app.UserID, app.ID, Patch{
		JobDetails: &JobDetailsPatch{Location: &loc, SalaryMin: &min},
	})
	require.NoError(t, err)

	assert.Equal(t, "Remote", updated.JobDetails.Location)
	// Untouched keys survive a partial patch.
	assert.Equal(t, "hybrid", updated.JobDetails.WorkMode)
	require.NotNil(t, updated.JobDetails.Salary.Min)
	assert.Equal(t, 90000.0, *updated.JobDetails.Salary.Min)
}

func TestUpdateUnknownApplication(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	notes := "ping"
	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), Patch{Notes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetArchivedTransitions(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	archived, err := svc.SetArchived(context.Background(), app.UserID, app.ID, true)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)
	require.NotNil(t, archived.ArchivedAt)
	require.NotNil(t, repo.archivedFlag)
	assert.True(t, *repo.archivedFlag)

	repo.apps[app.ID] = archived
	restored, err := svc.SetArchived(context.Background(), app.UserID, app.ID, false)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived)
	assert.Nil(t, restored.ArchivedAt)
	assert.Nil(t, repo.archivedAt)
}

func TestListDefaults(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	owner := uuid.New()
	seedApp(repo, StatusApplied)

	res, err := svc.List(context.Background(), owner, Filter{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.Limit)
	assert.Equal(t, 45, res.Total)
	assert.Equal(t, 3, res.Pages)
}

func TestListRejectsBadSort(t *testing.T) {
	svc := NewService(newStubRepo())

	_, err := svc.List(context.Background(), uuid.New(), Filter{Sort: "alphabetical"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sort", verr.Fields[0].Field)
}

func TestAddTaskDefaults(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	task, err := svc.AddTask(context.Background(), app.UserID, app.ID, TaskInput{Title: " Send thank-you note "})
	require.NoError(t, err)
	assert.Equal(t, "Send thank-you note", task.Title)
	assert.Equal(t, "medium", task.Priority)
	assert.False(t, task.Completed)
	assert.NotEqual(t, uuid.Nil, task.ID)
}

func TestAddTaskValidation(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	_, err := svc.AddTask(context.Background(), app.UserID, app.ID, TaskInput{Title: "", Priority: "asap"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 2)
}

func TestUpdateTaskCompletionRoundTrip(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)
	task := Task{ID: uuid.New(), Title: "Prep interview", Priority: "high"}
	repo.tasks[task.ID] = task

	done := true
	updated, err := svc.UpdateTask(context.Background(), app.UserID, app.ID, task.ID, TaskPatch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)
	require.NotNil(t, updated.CompletedAt)

	undone := false
	updated, err = svc.UpdateTask(context.Background(), app.UserID, app.ID, task.ID, TaskPatch{Completed: &undone})
	require.NoError(t, err)
	assert.False(t, updated.Completed)
	assert.Nil(t, updated.CompletedAt)
}

func TestUpdateTaskMissingTask(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	title := "x"
	_, err := svc.UpdateTask(context.Background(), app.UserID, app.ID, uuid.New(), TaskPatch{Title: &title})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAddTimelineEvent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	ev, err := svc.AddTimelineEvent(context.Background(), app.UserID, app.ID, EventInput{
		Type:     EventFollowedUp,
		Title:    " Followed up with recruiter ",
		Metadata: map[string]any{"method": "email"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Followed up with recruiter", ev.Title)
	assert.False(t, ev.Date.IsZero())
	require.Len(t, repo.appendedEvents, 1)
	assert.Equal(t, "email", repo.appendedEvents[0].Metadata["method"])
}

func TestAddTimelineEventRejectsUnknownType(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	app := seedApp(repo, StatusApplied)

	_, err := svc.AddTimelineEvent(context.Background(), app.UserID, app.ID, EventInput{
		Type:  "promoted",
		Title: "n/a",
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Fields[0].Field)
}

func TestCreateRepositoryErrorPropagates(t *testing.T) {
	repo := newStubRepo()
	repo.err = errors.New("connection refused")
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{JobTitle: "Dev", Company: "Acme"})
	assert.EqualError(t, err, "connection refused")
}

func TestResponseTimeDays(t *testing.T) {
	applied := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	responded := applied.Add(49 * time.Hour)
	app := Application{ApplicationDate: applied, ResponseDate: &responded}

	days := app.ResponseTime()
	require.NotNil(t, days)
	assert.Equal(t, 3, *days)

	assert.Nil(t, Application{ApplicationDate: applied}.ResponseTime())
}
