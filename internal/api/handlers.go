package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/julianstephens/studyflow/internal/export"
	"github.com/julianstephens/studyflow/internal/lock"
	"github.com/julianstephens/studyflow/internal/models"
	"github.com/julianstephens/studyflow/internal/optimizer"
	"github.com/julianstephens/studyflow/internal/planner"
	"github.com/julianstephens/studyflow/internal/scheduler"
	"github.com/julianstephens/studyflow/internal/stats"
	"github.com/julianstephens/studyflow/internal/storage"
	"github.com/julianstephens/studyflow/internal/utils"
	"github.com/julianstephens/studyflow/internal/validation"
)

type Handler struct {
	store   storage.Provider
	planner *planner.Service
	now     func() time.Time
}

func NewHandler(store storage.Provider, svc *planner.Service) *Handler {
	return &Handler{store: store, planner: svc, now: time.Now}
}

func HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// respondErr maps domain errors onto status codes.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		RespondError(c, http.StatusNotFound, CodeNotFound, err)
	case errors.Is(err, validation.ErrInvalid):
		RespondError(c, http.StatusBadRequest, CodeInvalid, err)
	case errors.Is(err, scheduler.ErrCannotPlan):
		RespondError(c, http.StatusUnprocessableEntity, CodeCannotPlan, err)
	case errors.Is(err, lock.ErrLocked):
		RespondError(c, http.StatusConflict, CodeLocked, err)
	default:
		RespondError(c, http.StatusInternalServerError, CodeInternal, err)
	}
}

func (h *Handler) location() *time.Location {
	settings, err := h.store.GetSettings()
	if err != nil {
		return time.Local
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (h *Handler) plan(c *gin.Context) (models.PlanRecord, bool) {
	var (
		plan models.PlanRecord
		err  error
	)
	if v := c.Query("version"); v != "" {
		version, convErr := strconv.Atoi(v)
		if convErr != nil || version < 1 {
			RespondError(c, http.StatusBadRequest, CodeBadRequest, fmt.Errorf("invalid version %q", v))
			return plan, false
		}
		plan, err = h.store.GetPlan(version)
	} else {
		plan, err = h.store.GetLatestPlan()
	}
	if err != nil {
		respondErr(c, err)
		return plan, false
	}
	return plan, true
}

// GetPlan returns the latest plan, or ?version=N.
func (h *Handler) GetPlan(c *gin.Context) {
	plan, ok := h.plan(c)
	if !ok {
		return
	}
	RespondOK(c, plan)
}

type regenerateResponse struct {
	Plan        models.PlanRecord      `json:"plan"`
	Adjustments []optimizer.Adjustment `json:"adjustments,omitempty"`
	BackupPath  string                 `json:"backup_path,omitempty"`
}

func (h *Handler) RegeneratePlan(c *gin.Context) {
	result, err := h.planner.Regenerate(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondCreated(c, regenerateResponse{
		Plan:        result.Plan,
		Adjustments: result.Adjustments,
		BackupPath:  result.BackupPath,
	})
}

func (h *Handler) PlanICS(c *gin.Context) {
	plan, ok := h.plan(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="studyflow-v%d.ics"`, plan.PlanVersion))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(export.ICS(plan)))
}

func (h *Handler) PlanStats(c *gin.Context) {
	plan, ok := h.plan(c)
	if !ok {
		return
	}
	RespondOK(c, stats.Compute(plan, h.now(), h.location()))
}

type sessionStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateSession(c *gin.Context) {
	var req sessionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	status, err := models.ParseSessionStatus(req.Status)
	if err != nil {
		RespondError(c, http.StatusBadRequest, CodeInvalid, err)
		return
	}

	id := c.Param("id")
	plan, err := h.store.GetLatestPlan()
	if err != nil {
		respondErr(c, err)
		return
	}
	idx := plan.FindSession(id)
	if idx < 0 {
		RespondError(c, http.StatusNotFound, CodeNotFound, fmt.Errorf("session %s: %w", id, storage.ErrNotFound))
		return
	}
	if plan.Sessions[idx].IsBreak() {
		RespondError(c, http.StatusBadRequest, CodeInvalid, fmt.Errorf("break session %s does not track status", id))
		return
	}

	session, err := h.store.UpdateSessionStatus(id, status, h.now())
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, session)
}

func (h *Handler) ListTasks(c *gin.Context) {
	var (
		tasks []models.Task
		err   error
	)
	if c.Query("include_deleted") == "true" {
		tasks, err = h.store.GetAllTasksIncludingDeleted()
	} else {
		tasks, err = h.store.GetAllTasks()
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"tasks": tasks})
}

type taskRequest struct {
	Subject         string              `json:"subject" binding:"required"`
	Title           string              `json:"title" binding:"required"`
	Deadline        string              `json:"deadline" binding:"required"`
	Timezone        string              `json:"timezone"`
	Difficulty      int                 `json:"difficulty" binding:"required"`
	DurationMin     float64             `json:"duration_min" binding:"required,gt=0"`
	DurationMax     float64             `json:"duration_max"`
	DurationUnit    models.DurationUnit `json:"duration_unit"`
	Importance      int                 `json:"importance"`
	ContentFocus    string              `json:"content_focus"`
	SuccessCriteria []string            `json:"success_criteria"`
	Milestones      []models.Milestone  `json:"milestones"`
	Notes           string              `json:"notes"`
}

func (r taskRequest) toTask(loc *time.Location) (models.Task, error) {
	if r.Timezone != "" {
		tz, err := utils.LoadLocation(r.Timezone)
		if err != nil {
			return models.Task{}, &validation.Error{Field: "timezone", Message: fmt.Sprintf("unknown timezone %q", r.Timezone)}
		}
		loc = tz
	}
	deadline, err := utils.ParseDeadline(r.Deadline, loc)
	if err != nil {
		return models.Task{}, &validation.Error{Field: "deadline", Message: err.Error()}
	}
	task := models.Task{
		ID:              uuid.New().String(),
		Subject:         r.Subject,
		Title:           r.Title,
		Deadline:        deadline,
		Timezone:        r.Timezone,
		Difficulty:      r.Difficulty,
		Importance:      r.Importance,
		ContentFocus:    r.ContentFocus,
		SuccessCriteria: r.SuccessCriteria,
		Milestones:      r.Milestones,
		Notes:           r.Notes,
	}
	maxValue := r.DurationMax
	if maxValue == 0 {
		maxValue = r.DurationMin
	}
	task.SetDuration(r.DurationMin, maxValue, r.DurationUnit)
	for i := range task.Milestones {
		if task.Milestones[i].ID == "" {
			task.Milestones[i].ID = uuid.New().String()
		}
	}
	task.Normalize()
	return task, nil
}

func (h *Handler) CreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	task, err := req.toTask(h.location())
	if err != nil {
		respondErr(c, err)
		return
	}
	if err := validation.ValidateNewTask(task, h.now()); err != nil {
		respondErr(c, err)
		return
	}
	if err := h.store.AddTask(task); err != nil {
		respondErr(c, err)
		return
	}
	RespondCreated(c, task)
}

func (h *Handler) ListSlots(c *gin.Context) {
	slots, err := h.store.GetAllSlots()
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"slots": slots})
}

type slotRequest struct {
	Day   string `json:"day" binding:"required"`
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	weekday, err := utils.ParseWeekday(req.Day)
	if err != nil {
		respondErr(c, &validation.Error{Field: "day", Message: err.Error()})
		return
	}
	start, err := utils.ParseTimeToMinutes(req.Start)
	if err != nil {
		respondErr(c, &validation.Error{Field: "start", Message: fmt.Sprintf("invalid time %q", req.Start)})
		return
	}
	end, err := utils.ParseSlotEnd(req.End)
	if err != nil {
		respondErr(c, &validation.Error{Field: "end", Message: err.Error()})
		return
	}
	slot := models.FreeSlot{
		ID:        uuid.New().String(),
		Weekday:   weekday,
		StartMin:  start,
		EndMin:    end,
		Source:    models.SlotSourceUser,
		CreatedAt: h.now(),
	}
	if err := validation.ValidateSlot(slot); err != nil {
		respondErr(c, err)
		return
	}
	if err := h.store.AddSlot(slot); err != nil {
		respondErr(c, err)
		return
	}
	RespondCreated(c, slot)
}

func (h *Handler) ListHabits(c *gin.Context) {
	habits, err := h.store.GetAllHabits(c.Query("include_deleted") == "true")
	if err != nil {
		respondErr(c, err)
		return
	}
	RespondOK(c, gin.H{"habits": habits})
}

type habitRequest struct {
	Name    string              `json:"name" binding:"required"`
	Cadence models.HabitCadence `json:"cadence" binding:"required"`
	Weekday string              `json:"weekday"`
	Minutes int                 `json:"minutes" binding:"required"`
	Preset  models.HabitPreset  `json:"preset"`
}

func (h *Handler) CreateHabit(c *gin.Context) {
	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
		return
	}
	habit := models.Habit{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Cadence:   req.Cadence,
		Minutes:   req.Minutes,
		Preset:    req.Preset,
		CreatedAt: h.now(),
	}
	if req.Weekday != "" {
		wd, err := utils.ParseWeekday(req.Weekday)
		if err != nil {
			respondErr(c, &validation.Error{Field: "weekday", Message: err.Error()})
			return
		}
		habit.Weekday = &wd
	}
	if err := validation.ValidateHabit(habit); err != nil {
		respondErr(c, err)
		return
	}
	if err := h.store.AddHabit(habit); err != nil {
		respondErr(c, err)
		return
	}
	RespondCreated(c, habit)
}
