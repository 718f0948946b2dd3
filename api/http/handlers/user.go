package handlers

import (
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/jobtrack/api/http/presenter"
	"github.com/artem13815/jobtrack/pkg/auth"
	"github.com/artem13815/jobtrack/pkg/uploader"
)

type UserHandler struct {
	profiles auth.ProfileUseCase
	accounts auth.AuthUseCase
	uploads  uploader.Uploader
	log      *zap.Logger
}

func NewUserHandler(profiles auth.ProfileUseCase, accounts auth.AuthUseCase, uploads uploader.Uploader, log *zap.Logger) *UserHandler {
	return &UserHandler{profiles: profiles, accounts: accounts, uploads: uploads, log: log}
}

// Profile returns the authenticated account's full profile.
// @Summary Get own profile
// @Tags    user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]any
// @Router  /user/profile [get]
func (h *UserHandler) Profile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	user, err := h.profiles.Get(c.Context(), userID)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.User(c, http.StatusOK, "", user, "")
}

type profileRequest struct {
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Bio          *string `json:"bio"`
	Location     *string `json:"location"`
	PhoneNumber  *string `json:"phoneNumber"`
	LinkedinURL  *string `json:"linkedinUrl"`
	GithubURL    *string `json:"githubUrl"`
	PortfolioURL *string `json:"portfolioUrl"`
	ResumeURL    *string `json:"resumeUrl"`
	Experience   *string `json:"experience"`

	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
	ReminderFrequency  *string `json:"reminderFrequency"`
	Theme              *string `json:"theme"`
}

// UpdateProfile patches the allow-listed profile and preference fields.
// @Summary Update profile
// @Tags    user
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body profileRequest true "profile patch"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ValidationResponse
// @Router  /user/profile [put]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	user, err := h.profiles.UpdateProfile(c.Context(), userID, auth.ProfilePatch{
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Bio:                req.Bio,
		Location:           req.Location,
		PhoneNumber:        req.PhoneNumber,
		LinkedinURL:        req.LinkedinURL,
		GithubURL:          req.GithubURL,
		PortfolioURL:       req.PortfolioURL,
		ResumeURL:          req.ResumeURL,
		Experience:         req.Experience,
		EmailNotifications: req.EmailNotifications,
		PushNotifications:  req.PushNotifications,
		ReminderFrequency:  req.ReminderFrequency,
		Theme:              req.Theme,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.User(c, http.StatusOK, "Profile updated successfully", user, "")
}

type skillsRequest struct {
	Skills []string `json:"skills"`
}

// UpdateSkills replaces the skill list.
// @Summary Update skills
// @Tags    user
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body skillsRequest true "skills"
// @Success 200 {object} map[string]any
// @Router  /user/skills [put]
func (h *UserHandler) UpdateSkills(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req skillsRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	user, err := h.profiles.UpdateSkills(c.Context(), userID, req.Skills)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.User(c, http.StatusOK, "Skills updated successfully", user, "")
}

type jobPreferencesRequest struct {
	JobTypes       *[]string `json:"jobTypes"`
	WorkMode       *[]string `json:"workMode"`
	PreferredRoles *[]string `json:"preferredRoles"`
	SalaryMin      *float64  `json:"salaryMin"`
	SalaryMax      *float64  `json:"salaryMax"`
	SalaryCurrency *string   `json:"salaryCurrency"`
}

// UpdateJobPreferences patches job-search preferences.
// @Summary Update job preferences
// @Tags    user
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body jobPreferencesRequest true "job preferences patch"
// @Success 200 {object} map[string]any
// @Router  /user/job-preferences [put]
func (h *UserHandler) UpdateJobPreferences(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req jobPreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	user, err := h.profiles.UpdateJobPreferences(c.Context(), userID, auth.JobPreferencesPatch{
		JobTypes:       req.JobTypes,
		WorkMode:       req.WorkMode,
		PreferredRoles: req.PreferredRoles,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		SalaryCurrency: req.SalaryCurrency,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.User(c, http.StatusOK, "Job preferences updated successfully", user, "")
}

type goalsRequest struct {
	DailyApplicationTarget  *int      `json:"dailyApplicationTarget"`
	WeeklyApplicationTarget *int      `json:"weeklyApplicationTarget"`
	TargetRole              *string   `json:"targetRole"`
	TargetCompanies         *[]string `json:"targetCompanies"`
}

// UpdateGoals patches application targets.
// @Summary Update goals
// @Tags    user
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body goalsRequest true "goals patch"
// @Success 200 {object} map[string]any
// @Router  /user/goals [put]
func (h *UserHandler) UpdateGoals(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req goalsRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	user, err := h.profiles.UpdateGoals(c.Context(), userID, auth.GoalsPatch{
		DailyApplicationTarget:  req.DailyApplicationTarget,
		WeeklyApplicationTarget: req.WeeklyApplicationTarget,
		TargetRole:              req.TargetRole,
		TargetCompanies:         req.TargetCompanies,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.User(c, http.StatusOK, "Goals updated successfully", user, "")
}

type avatarRequest struct {
	Avatar string `json:"avatar"`
}

// UpdateAvatar sets the avatar to an already-hosted URL.
// @Summary Update avatar URL
// @Tags    user
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body avatarRequest true "avatar URL"
// @Success 200 {object} map[string]any
// @Router  /user/avatar [put]
func (h *UserHandler) UpdateAvatar(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req avatarRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	user, err := h.profiles.UpdateAvatar(c.Context(), userID, req.Avatar)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.User(c, http.StatusOK, "Avatar updated successfully", user, "")
}

// UploadAvatar pushes a multipart image to the image host and stores its URL.
// @Summary Upload avatar image
// @Tags    user
// @Accept  mpfd
// @Produce json
// @Security BearerAuth
// @Param   avatar formData file true "avatar image (max 5MB)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /user/avatar/upload [post]
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "avatar file is required")
	}
	if fileHeader.Size > uploader.MaxImageSize {
		return presenter.Error(c, http.StatusBadRequest, uploader.ErrTooLarge.Error())
	}
	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, h.log, err)
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, uploader.MaxImageSize+1))
	if err != nil {
		return fail(c, h.log, err)
	}

	url, err := h.uploads.UploadImage(c.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return fail(c, h.log, err)
	}
	user, err := h.profiles.UpdateAvatar(c.Context(), userID, url)
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.User(c, http.StatusOK, "Avatar uploaded successfully", user, "")
}

// PublicProfile returns the public subset of an active account by username.
// @Summary Public profile
// @Tags    user
// @Produce json
// @Param   username path string true "username"
// @Success 200 {object} map[string]any
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /user/{username} [get]
func (h *UserHandler) PublicProfile(c *fiber.Ctx) error {
	profile, err := h.profiles.PublicByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Data(c, http.StatusOK, profile)
}

type deactivateRequest struct {
	Password string `json:"password"`
}

// DeactivateAccount disables the account after a password check. The record
// is kept; nothing is hard-deleted.
// @Summary Deactivate account
// @Tags    user
// @Accept  json
// @Produce json
// @Security BearerAuth
// @Param   input body deactivateRequest true "password confirmation"
// @Success 200 {object} map[string]any
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /user/account [delete]
func (h *UserHandler) DeactivateAccount(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return presenter.Error(c, http.StatusUnauthorized, "Not authorized")
	}
	var req deactivateRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid JSON payload")
	}
	if err := h.accounts.Deactivate(c.Context(), userID, req.Password); err != nil {
		return fail(c, h.log, err)
	}
	return presenter.Message(c, http.StatusOK, "Account deactivated successfully")
}
