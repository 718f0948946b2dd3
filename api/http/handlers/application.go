package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/jobtrack/api/http/presenter"
	"github.com/artem13815/jobtrack/pkg/application"
)

type ApplicationHandler struct {
	useCase application.UseCase
	log     *zap.Logger
}

func NewApplicationHandler(useCase application.UseCase, log *zap.Logger) *ApplicationHandler {
	return &ApplicationHandler{useCase: useCase, log: log}
}

type salaryBody struct {
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Currency *string  `json:"currency"`
	Type     *string  `json:"type"`
}

type jobDetailsBody struct {
	URL          *string     `json:"url"`
	Description  *string     `json:"description"`
	Requirements *[]string   `json:"requirements"`
	Location     *string     `json:"location"`
	WorkMode     *string     `json:"workMode"`
	JobType      *string     `json:"jobType"`
	Salary       *salaryBody `json:"salary"`
}

func (b *jobDetailsBody) toPatch() application.JobDetailsPatch {
	if b == nil {
		return application.JobDetailsPatch{}
	}
	patch := application.JobDetailsPatch{
		URL:          b.URL,
		Description:  b.Description,
		Requirements: b.Requirements,
		Location:     b.Location,
		WorkMode:     b.WorkMode,
		JobType:      b.JobType,
	}
	if b.Salary != nil {
		patch.SalaryMin = b.Salary.Min
		patch.SalaryMax = b.Salary.Max
		patch.SalaryCurrency = b.Salary.Currency
		patch.SalaryType = b.Salary.Type
	}
	return patch
}

type createApplicationRequest struct {
	JobTitle          string                     `json:"jobTitle"`
	Company           string                     `json:"company"`
	ApplicationDate   *time.Time                 `json:"applicationDate"`
	ApplicationSource string                     `json:"applicationSource"`
	Priority          string                     `json:"priority"`
	Notes             string                     `json:"notes"`
	Tags              []string                   `json:"tags"`
	JobDetails        *jobDetailsBody            `json:"jobDetails"`
	ContactPerson     *application.ContactPerson `json:"contactPerson"`
	ResumeUsed        *application.ResumeUsed    `json:"resumeUsed"`
	CoverLetter       *application.CoverLetter   `json:"coverLetter"`
}

// Create registers a new application. Status always starts as "applied" and
// the first timeline entry is written in the same transaction.
// @Summary Create application
// @Tags    applications
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body createApplicationRequest true "application payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ValidationResponse
// @Router  /applications [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req createApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	app, err := h.useCase.Create(c.Context(), userID, application.CreateInput{
		JobTitle:          req.JobTitle,
		Company:           req.Company,
		ApplicationDate:   req.ApplicationDate,
		ApplicationSource: req.ApplicationSource,
		Priority:          req.Priority,
		Notes:             req.Notes,
		Tags:              req.Tags,
		JobDetails:        req.JobDetails.toPatch(),
		ContactPerson:     req.ContactPerson,
		ResumeUsed:        req.ResumeUsed,
		CoverLetter:       req.CoverLetter,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.DataMessage(c, http.StatusCreated, "Application created successfully", app)
}

// List returns a filtered, paginated page of the owner's applications plus
// per-status counts. Archived records are hidden unless includeArchived=true.
// @Summary List applications
// @Tags    applications
// @Produce json
// @Security BearerAuth
// @Param   status query string false "status filter"
// @Param   company query string false "company substring"
// @Param   search query string false "search in title/company/notes"
// @Param   includeArchived query bool false "include archived"
// @Param   sort query string false "newest|oldest|company|status|priority"
// @Param   page query int false "page (1-based)"
// @Param   limit query int false "page size (max 100)"
// @Success 200 {object} map[string]any
// @Router  /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	f := application.Filter{
		Company:         strings.TrimSpace(c.Query("company")),
		Search:          strings.TrimSpace(c.Query("search")),
		IncludeArchived: c.QueryBool("includeArchived"),
		Sort:            c.Query("sort"),
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		status := application.Status(v)
		f.Status = &status
	}
	if n, err := strconv.Atoi(c.Query("page")); err == nil {
		f.Page = n
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil {
		f.Limit = n
	}

	result, err := h.useCase.List(c.Context(), userID, f)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, fiber.Map{
		"applications": result.Applications,
		"stats":        result.Stats,
		"pagination": fiber.Map{
			"page":  result.Page,
			"limit": result.Limit,
			"total": result.Total,
			"pages": result.Pages,
		},
	})
}

// Get loads one application with its tasks and timeline.
// @Summary Get application
// @Tags    applications
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id} [get]
func (h *ApplicationHandler) Get(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	app, err := h.useCase.Get(c.Context(), userID, id)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, app)
}

type updateApplicationRequest struct {
	JobTitle          *string                    `json:"jobTitle"`
	Company           *string                    `json:"company"`
	Status            *application.Status        `json:"status"`
	ApplicationDate   *time.Time                 `json:"applicationDate"`
	ApplicationSource *string                    `json:"applicationSource"`
	Notes             *string                    `json:"notes"`
	Tags              *[]string                  `json:"tags"`
	Priority          *string                    `json:"priority"`
	RejectionReason   *string                    `json:"rejectionReason"`
	JobDetails        *jobDetailsBody            `json:"jobDetails"`
	ContactPerson     *application.ContactPerson `json:"contactPerson"`
	ResumeUsed        *application.ResumeUsed    `json:"resumeUsed"`
	CoverLetter       *application.CoverLetter   `json:"coverLetter"`
	OfferDetails      *application.OfferDetails  `json:"offerDetails"`
	FollowUps         *[]application.FollowUp    `json:"followUps"`
	Interviews        *[]application.Interview   `json:"interviews"`
}

// Update patches the allow-listed fields. A status change writes a timeline
// entry and, on the first move away from "applied", sets the response date.
// @Summary Update application
// @Tags    applications
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Param   input body updateApplicationRequest true "application patch"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id} [put]
func (h *ApplicationHandler) Update(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	var req updateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	patch := application.Patch{
		JobTitle:          req.JobTitle,
		Company:           req.Company,
		Status:            req.Status,
		ApplicationDate:   req.ApplicationDate,
		ApplicationSource: req.ApplicationSource,
		Notes:             req.Notes,
		Tags:              req.Tags,
		Priority:          req.Priority,
		RejectionReason:   req.RejectionReason,
		ContactPerson:     req.ContactPerson,
		ResumeUsed:        req.ResumeUsed,
		CoverLetter:       req.CoverLetter,
		OfferDetails:      req.OfferDetails,
		FollowUps:         req.FollowUps,
		Interviews:        req.Interviews,
	}
	if req.JobDetails != nil {
		jd := req.JobDetails.toPatch()
		patch.JobDetails = &jd
	}
	app, err := h.useCase.Update(c.Context(), userID, id, patch)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.DataMessage(c, http.StatusOK, "Application updated successfully", app)
}

// Delete removes an application and, by cascade, its tasks and timeline.
// @Summary Delete application
// @Tags    applications
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id} [delete]
func (h *ApplicationHandler) Delete(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	if err := h.useCase.Delete(c.Context(), userID, id); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "Application deleted successfully")
}

type archiveRequest struct {
	Archived *bool `json:"archived"`
}

// Archive toggles the archive flag. Omitting the body archives.
// @Summary Archive or unarchive application
// @Tags    applications
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Param   input body archiveRequest false "archive flag (default true)"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/archive [patch]
func (h *ApplicationHandler) Archive(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	archived := true
	if len(c.Body()) > 0 {
		var req archiveRequest
		if err := c.BodyParser(&req); err != nil {
			return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
		}
		if req.Archived != nil {
			archived = *req.Archived
		}
	}
	app, err := h.useCase.SetArchived(c.Context(), userID, id, archived)
	if err != nil {
		return fail(c, h.log, err)
	}
	msg := "Application archived successfully"
	if !archived {
		msg = "Application unarchived successfully"
	}
	return presenter.DataMessage(c, http.StatusOK, msg, app)
}

type taskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    string     `json:"priority"`
}

// AddTask attaches a to-do to an application.
// @Summary Add task
// @Tags    applications
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Param   input body taskRequest true "task payload"
// @Success 201 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/tasks [post]
func (h *ApplicationHandler) AddTask(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	appID, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	var req taskRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	task, err := h.useCase.AddTask(c.Context(), userID, appID, application.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.DataMessage(c, http.StatusCreated, "Task added successfully", task)
}

type taskPatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority"`
}

// UpdateTask patches a task. Flipping completed drives completedAt.
// @Summary Update task
// @Tags    applications
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Param   taskId path string true "task id"
// @Param   input body taskPatchRequest true "task patch"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/tasks/{taskId} [put]
func (h *ApplicationHandler) UpdateTask(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	appID, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	taskID, err := uuidParam(c, "taskId")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Task not found")
	}
	var req taskPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	task, err := h.useCase.UpdateTask(c.Context(), userID, appID, taskID, application.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Completed:   req.Completed,
		Priority:    req.Priority,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.DataMessage(c, http.StatusOK, "Task updated successfully", task)
}

// DeleteTask removes a task.
// @Summary Delete task
// @Tags    applications
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Param   taskId path string true "task id"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/tasks/{taskId} [delete]
func (h *ApplicationHandler) DeleteTask(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	appID, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	taskID, err := uuidParam(c, "taskId")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Task not found")
	}
	if err := h.useCase.RemoveTask(c.Context(), userID, appID, taskID); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "Task deleted successfully")
}

type timelineRequest struct {
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

// AddTimelineEvent appends a manual entry to the append-only timeline.
// @Summary Add timeline event
// @Tags    applications
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   id path string true "application id"
// @Param   input body timelineRequest true "event payload"
// @Success 201 {object} map[string]any
// @Failure 400 {object} presenter.ValidationResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /applications/{id}/timeline [post]
func (h *ApplicationHandler) AddTimelineEvent(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	appID, err := uuidParam(c, "id")
	if err != nil {
		return presenter.Error(c, http.StatusNotFound, "Application not found")
	}
	var req timelineRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	event, err := h.useCase.AddTimelineEvent(c.Context(), userID, appID, application.EventInput{
		Type:        application.EventType(req.Type),
		Title:       req.Title,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.DataMessage(c, http.StatusCreated, "Timeline event added successfully", event)
}
