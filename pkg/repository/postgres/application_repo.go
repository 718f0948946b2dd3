package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/artem13815/jobtrack/pkg/application"
)

// ApplicationRepository stores applications with nested records as JSONB,
// and tasks/timeline as child tables. Timeline rows are insert-only.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(pool *pgxpool.Pool) (*ApplicationRepository, error) {
	r := &ApplicationRepository{pool: pool}
	if err := r.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ApplicationRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS applications (
	id UUID PRIMARY KEY,
	user_id UUID NOT NULL,
	job_title TEXT NOT NULL,
	company TEXT NOT NULL,
	status TEXT NOT NULL,
	application_date TIMESTAMPTZ NOT NULL,
	response_date TIMESTAMPTZ,
	job_details JSONB NOT NULL DEFAULT '{}',
	application_source TEXT NOT NULL DEFAULT 'other',
	contact_person JSONB NOT NULL DEFAULT '{}',
	resume_used JSONB NOT NULL DEFAULT '{}',
	cover_letter JSONB NOT NULL DEFAULT '{}',
	offer_details JSONB NOT NULL DEFAULT '{}',
	follow_ups JSONB NOT NULL DEFAULT '[]',
	interviews JSONB NOT NULL DEFAULT '[]',
	attachments JSONB NOT NULL DEFAULT '[]',
	notes TEXT NOT NULL DEFAULT '',
	tags TEXT[] NOT NULL DEFAULT '{}',
	priority TEXT NOT NULL DEFAULT 'medium',
	rejection_reason TEXT NOT NULL DEFAULT '',
	is_archived BOOLEAN NOT NULL DEFAULT FALSE,
	archived_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_applications_user ON applications(user_id);
CREATE INDEX IF NOT EXISTS idx_applications_user_status ON applications(user_id, status);
CREATE TABLE IF NOT EXISTS application_tasks (
	id UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	due_date TIMESTAMPTZ,
	completed BOOLEAN NOT NULL DEFAULT FALSE,
	completed_at TIMESTAMPTZ,
	priority TEXT NOT NULL DEFAULT 'medium',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_application ON application_tasks(application_id);
CREATE TABLE IF NOT EXISTS application_timeline (
	id UUID PRIMARY KEY,
	application_id UUID NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
	type TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	date TIMESTAMPTZ NOT NULL,
	metadata JSONB NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_timeline_application ON application_timeline(application_id, date);
`)
	return err
}

const applicationColumns = `
id, user_id, job_title, company, status, application_date, response_date,
job_details, application_source, contact_person, resume_used, cover_letter,
offer_details, follow_ups, interviews, attachments,
notes, tags, priority, rejection_reason, is_archived, archived_at,
created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, app application.Application, initial application.TimelineEvent) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	app.UpdatedAt = now

	cols, err := marshalNested(app)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
INSERT INTO applications (`+applicationColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
`, app.ID, app.UserID, app.JobTitle, app.Company, app.Status,
		app.ApplicationDate, app.ResponseDate,
		cols.jobDetails, app.ApplicationSource, cols.contactPerson, cols.resumeUsed, cols.coverLetter,
		cols.offerDetails, cols.followUps, cols.interviews, cols.attachments,
		app.Notes, app.Tags, app.Priority, app.RejectionReason, app.IsArchived, app.ArchivedAt,
		app.CreatedAt, app.UpdatedAt)
	if err != nil {
		return err
	}
	if err := insertTimeline(ctx, tx, app.ID, initial); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *ApplicationRepository) List(ctx context.Context, ownerID uuid.UUID, f application.Filter) ([]application.Application, int, error) {
	where := []string{"user_id = $1"}
	args := []any{ownerID}

	if !f.IncludeArchived {
		where = append(where, "is_archived = FALSE")
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Company != "" {
		args = append(args, "%"+f.Company+"%")
		where = append(where, fmt.Sprintf("company ILIKE $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(job_title ILIKE $%d OR company ILIKE $%d OR notes ILIKE $%d)", n, n, n))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM applications WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := orderClause(f.Sort)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		applicationColumns, cond, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	apps := make([]application.Application, 0, f.Limit)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func orderClause(sort string) string {
	switch sort {
	case "oldest":
		return "application_date ASC"
	case "company":
		return "company ASC, application_date DESC"
	case "status":
		return "status ASC, application_date DESC"
	case "priority":
		return "CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, application_date DESC"
	default: // newest
		return "application_date DESC, created_at DESC"
	}
}

func (r *ApplicationRepository) Stats(ctx context.Context, ownerID uuid.UUID) (application.StatusCounts, error) {
	var c application.StatusCounts
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
	COUNT(*) FILTER (WHERE status = 'ghosted')
FROM applications WHERE user_id = $1 AND is_archived = FALSE
`, ownerID).Scan(&c.Total, &c.Applied, &c.InReview, &c.Interview, &c.TechnicalTest,
		&c.Offer, &c.Rejected, &c.Withdrawn, &c.Ghosted)
	return c, err
}

func (r *ApplicationRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (application.Application, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+applicationColumns+` FROM applications WHERE id = $1 AND user_id = $2
`, id, ownerID)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, err
	}

	app.Tasks, err = r.listTasks(ctx, id)
	if err != nil {
		return application.Application{}, err
	}
	app.Timeline, err = r.listTimeline(ctx, id)
	if err != nil {
		return application.Application{}, err
	}
	return app, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app application.Application, events []application.TimelineEvent) error {
	app.UpdatedAt = time.Now().UTC()

	cols, err := marshalNested(app)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
UPDATE applications SET
	job_title = $3, company = $4, status = $5,
	application_date = $6, response_date = $7,
	job_details = $8, application_source = $9, contact_person = $10,
	resume_used = $11, cover_letter = $12, offer_details = $13,
	follow_ups = $14, interviews = $15, attachments = $16,
	notes = $17, tags = $18, priority = $19, rejection_reason = $20,
	is_archived = $21, archived_at = $22, updated_at = $23
WHERE id = $1 AND user_id = $2
`, app.ID, app.UserID, app.JobTitle, app.Company, app.Status,
		app.ApplicationDate, app.ResponseDate,
		cols.jobDetails, app.ApplicationSource, cols.contactPerson,
		cols.resumeUsed, cols.coverLetter, cols.offerDetails,
		cols.followUps, cols.interviews, cols.attachments,
		app.Notes, app.Tags, app.Priority, app.RejectionReason,
		app.IsArchived, app.ArchivedAt, app.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	for _, ev := range events {
		if err := insertTimeline(ctx, tx, app.ID, ev); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ApplicationRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) SetArchived(ctx context.Context, ownerID, id uuid.UUID, archived bool, archivedAt *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE applications SET is_archived = $3, archived_at = $4, updated_at = $5
WHERE id = $1 AND user_id = $2
`, id, ownerID, archived, archivedAt, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return application.ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) AddTask(ctx context.Context, ownerID, appID uuid.UUID, task application.Task) error {
	if err := r.ensureOwned(ctx, ownerID, appID); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `
INSERT INTO application_tasks (id, application_id, title, description, due_date, completed, completed_at, priority, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, task.ID, appID, task.Title, task.Description, task.DueDate,
		task.Completed, task.CompletedAt, task.Priority, task.CreatedAt, task.UpdatedAt)
	return err
}

func (r *ApplicationRepository) GetTask(ctx context.Context, ownerID, appID, taskID uuid.UUID) (application.Task, error) {
	var t application.Task
	err := r.pool.QueryRow(ctx, `
SELECT t.id, t.title, t.description, t.due_date, t.completed, t.completed_at, t.priority, t.created_at, t.updated_at
FROM application_tasks t
JOIN applications a ON a.id = t.application_id
WHERE t.id = $1 AND t.application_id = $2 AND a.user_id = $3
`, taskID, appID, ownerID).Scan(&t.ID, &t.Title, &t.Description, &t.DueDate,
		&t.Completed, &t.CompletedAt, &t.Priority, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := r.ensureOwned(ctx, ownerID, appID); err != nil {
			return application.Task{}, err
		}
		return application.Task{}, application.ErrTaskNotFound
	}
	return t, err
}

func (r *ApplicationRepository) UpdateTask(ctx context.Context, ownerID, appID uuid.UUID, task application.Task) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE application_tasks t SET
	title = $4, description = $5, due_date = $6,
	completed = $7, completed_at = $8, priority = $9, updated_at = $10
FROM applications a
WHERE t.id = $1 AND t.application_id = $2 AND a.id = t.application_id AND a.user_id = $3
`, task.ID, appID, ownerID, task.Title, task.Description, task.DueDate,
		task.Completed, task.CompletedAt, task.Priority, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if err := r.ensureOwned(ctx, ownerID, appID); err != nil {
			return err
		}
		return application.ErrTaskNotFound
	}
	return nil
}

func (r *ApplicationRepository) DeleteTask(ctx context.Context, ownerID, appID, taskID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
DELETE FROM application_tasks t
USING applications a
WHERE t.id = $1 AND t.application_id = $2 AND a.id = t.application_id AND a.user_id = $3
`, taskID, appID, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if err := r.ensureOwned(ctx, ownerID, appID); err != nil {
			return err
		}
		return application.ErrTaskNotFound
	}
	return nil
}

func (r *ApplicationRepository) AppendTimeline(ctx context.Context, ownerID, appID uuid.UUID, event application.TimelineEvent) error {
	if err := r.ensureOwned(ctx, ownerID, appID); err != nil {
		return err
	}
	return insertTimeline(ctx, r.pool, appID, event)
}

// ensureOwned distinguishes a missing application from a missing child row.
func (r *ApplicationRepository) ensureOwned(ctx context.Context, ownerID, appID uuid.UUID) error {
	var one int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM applications WHERE id = $1 AND user_id = $2`, appID, ownerID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return application.ErrNotFound
	}
	return err
}

func (r *ApplicationRepository) listTasks(ctx context.Context, appID uuid.UUID) ([]application.Task, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, title, description, due_date, completed, completed_at, priority, created_at, updated_at
FROM application_tasks WHERE application_id = $1 ORDER BY created_at
`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []application.Task
	for rows.Next() {
		var t application.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate,
			&t.Completed, &t.CompletedAt, &t.Priority, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *ApplicationRepository) listTimeline(ctx context.Context, appID uuid.UUID) ([]application.TimelineEvent, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, type, title, description, date, metadata
FROM application_timeline WHERE application_id = $1 ORDER BY date, id
`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []application.TimelineEvent
	for rows.Next() {
		var (
			ev   application.TimelineEvent
			meta []byte
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Title, &ev.Description, &ev.Date, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &ev.Metadata); err != nil {
				return nil, err
			}
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// execer is satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertTimeline(ctx context.Context, db execer, appID uuid.UUID, ev application.TimelineEvent) error {
	if ev.ID == uuid.Nil {
		ev.ID = uuid.New()
	}
	if ev.Date.IsZero() {
		ev.Date = time.Now().UTC()
	}
	meta := []byte(`{}`)
	if ev.Metadata != nil {
		var err error
		if meta, err = json.Marshal(ev.Metadata); err != nil {
			return err
		}
	}
	_, err := db.Exec(ctx, `
INSERT INTO application_timeline (id, application_id, type, title, description, date, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, ev.ID, appID, ev.Type, ev.Title, ev.Description, ev.Date, meta)
	return err
}

// nestedColumns carries the JSONB-encoded nested records of one application.
type nestedColumns struct {
	jobDetails    []byte
	contactPerson []byte
	resumeUsed    []byte
	coverLetter   []byte
	offerDetails  []byte
	followUps     []byte
	interviews    []byte
	attachments   []byte
}

func marshalNested(app application.Application) (nestedColumns, error) {
	var (
		c   nestedColumns
		err error
	)
	if c.jobDetails, err = json.Marshal(app.JobDetails); err != nil {
		return c, err
	}
	if c.contactPerson, err = json.Marshal(app.ContactPerson); err != nil {
		return c, err
	}
	if c.resumeUsed, err = json.Marshal(app.ResumeUsed); err != nil {
		return c, err
	}
	if c.coverLetter, err = json.Marshal(app.CoverLetter); err != nil {
		return c, err
	}
	if c.offerDetails, err = json.Marshal(app.OfferDetails); err != nil {
		return c, err
	}
	if c.followUps, err = marshalSlice(app.FollowUps); err != nil {
		return c, err
	}
	if c.interviews, err = marshalSlice(app.Interviews); err != nil {
		return c, err
	}
	if c.attachments, err = marshalSlice(app.Attachments); err != nil {
		return c, err
	}
	return c, nil
}

// marshalSlice never emits JSON null for a nil slice.
func marshalSlice[T any](s []T) ([]byte, error) {
	if s == nil {
		return []byte(`[]`), nil
	}
	return json.Marshal(s)
}

func scanApplication(row pgx.Row) (application.Application, error) {
	var (
		app  application.Application
		cols nestedColumns
	)
	err := row.Scan(
		&app.ID, &app.UserID, &app.JobTitle, &app.Company, &app.Status,
		&app.ApplicationDate, &app.ResponseDate,
		&cols.jobDetails, &app.ApplicationSource, &cols.contactPerson,
		&cols.resumeUsed, &cols.coverLetter, &cols.offerDetails,
		&cols.followUps, &cols.interviews, &cols.attachments,
		&app.Notes, &app.Tags, &app.Priority, &app.RejectionReason,
		&app.IsArchived, &app.ArchivedAt, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return application.Application{}, err
	}
	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{cols.jobDetails, &app.JobDetails},
		{cols.contactPerson, &app.ContactPerson},
		{cols.resumeUsed, &app.ResumeUsed},
		{cols.coverLetter, &app.CoverLetter},
		{cols.offerDetails, &app.OfferDetails},
		{cols.followUps, &app.FollowUps},
		{cols.interviews, &app.Interviews},
		{cols.attachments, &app.Attachments},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return application.Application{}, err
		}
	}
	return app, nil
}
