package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fixitnow/maintenance-backend/internal/middleware"
	"github.com/fixitnow/maintenance-backend/internal/models"
	"github.com/fixitnow/maintenance-backend/internal/services"
)

// ComplaintHandler handles complaint-related HTTP requests
type ComplaintHandler struct {
	lifecycle *services.LifecycleService
	audit     *services.AuditService
	logger    *logrus.Logger
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(lifecycle *services.LifecycleService, audit *services.AuditService, logger *logrus.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		lifecycle: lifecycle,
		audit:     audit,
		logger:    logger,
	}
}

// CreateComplaintRequest represents the complaint creation request body
type CreateComplaintRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description" binding:"required"`
	Category    models.Category `json:"category" binding:"required"`
	Priority    models.Priority `json:"priority"`
	Location    models.Location `json:"location"`
}

// UpdateComplaintRequest represents the reporter's detail revision body
type UpdateComplaintRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
}

// AssignRequest represents the assignment request body
type AssignRequest struct {
	AssignedTo string `json:"assignedTo" binding:"required"`
}

// SetStatusRequest represents the status transition request body
type SetStatusRequest struct {
	Status models.Status `json:"status" binding:"required"`
}

// AddNoteRequest represents the note append request body
type AddNoteRequest struct {
	Content string `json:"content" binding:"required"`
}

// List handles GET /api/v1/complaints. Reporters only ever see their own
// complaints; the scope filter is forced server-side.
func (h *ComplaintHandler) List(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	filter := models.ComplaintFilter{
		Status:   models.Status(c.Query("status")),
		Category: models.Category(c.Query("category")),
		Priority: models.Priority(c.Query("priority")),
		Search:   c.Query("search"),
	}

	if filter.Status != "" && !filter.Status.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid status filter",
		})
		return
	}
	if filter.Category != "" && !filter.Category.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid category filter",
		})
		return
	}
	if filter.Priority != "" && !filter.Priority.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid priority filter",
		})
		return
	}

	if userCtx.Role == models.RoleReporter {
		reporterID := userCtx.UserID
		filter.ReportedBy = &reporterID
	} else {
		if raw := c.Query("assignedTo"); raw != "" {
			staffID, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error:   "invalid_id",
					Message: "Invalid assignedTo filter",
				})
				return
			}
			filter.AssignedTo = &staffID
		}
		if raw := c.Query("reportedBy"); raw != "" {
			reporterID, err := uuid.Parse(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Error:   "invalid_id",
					Message: "Invalid reportedBy filter",
				})
				return
			}
			filter.ReportedBy = &reporterID
		}
	}

	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), 10)
	if limit > 100 {
		limit = 100
	}

	result, err := h.lifecycle.List(filter, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Create handles POST /api/v1/complaints
func (h *ComplaintHandler) Create(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	var req CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	complaint, err := h.lifecycle.Create(services.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Location:    req.Location,
	}, userCtx.Actor())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"complaint": complaint})
}

// Get handles GET /api/v1/complaints/:id
func (h *ComplaintHandler) Get(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	complaint, err := h.lifecycle.Get(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Reporters can only read their own complaints
	if userCtx.Role == models.RoleReporter && complaint.ReportedBy != userCtx.UserID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to view this complaint",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaint": complaint})
}

// Update handles PUT /api/v1/complaints/:id
func (h *ComplaintHandler) Update(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	complaint, err := h.lifecycle.UpdateDetails(id, userCtx.Actor(), req.Title, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaint": complaint})
}

// Assign handles PATCH /api/v1/complaints/:id/assign
func (h *ComplaintHandler) Assign(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	staffID, err := uuid.Parse(req.AssignedTo)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid staff ID format",
		})
		return
	}

	complaint, err := h.lifecycle.Assign(id, staffID, userCtx.Actor(), c.Request.UserAgent())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaint": complaint})
}

// SetStatus handles PATCH /api/v1/complaints/:id/status
func (h *ComplaintHandler) SetStatus(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	complaint, err := h.lifecycle.SetStatus(id, req.Status, userCtx.Actor(), c.Request.UserAgent())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaint": complaint})
}

// AddNote handles POST /api/v1/complaints/:id/notes
func (h *ComplaintHandler) AddNote(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	complaint, err := h.lifecycle.AddNote(id, req.Content, userCtx.Actor(), c.Request.UserAgent())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"complaint": complaint})
}

// History handles GET /api/v1/complaints/:id/events (admin only, enforced
// by route middleware)
func (h *ComplaintHandler) History(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	events, err := h.audit.History(id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"total":  len(events),
	})
}

// Delete handles DELETE /api/v1/complaints/:id
func (h *ComplaintHandler) Delete(c *gin.Context) {
	userCtx := middleware.MustGetUserContext(c)

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.lifecycle.Delete(id, userCtx.Actor(), c.Request.UserAgent()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Complaint deleted"})
}

func (h *ComplaintHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid complaint ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service errors to HTTP responses
func (h *ComplaintHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Complaint not found",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to perform this action",
		})
	case errors.Is(err, services.ErrIneligibleStaff):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "ineligible_staff",
			Message: "Staff member is not eligible for this complaint's category",
		})
	case errors.Is(err, services.ErrInvalidTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid_transition",
			Message: "The complaint cannot move to the requested state",
		})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request data",
		})
	default:
		h.logger.WithError(err).Error("Complaint operation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Operation failed, please try again",
		})
	}
}

func parsePositiveInt(raw string, defaultValue int) int {
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return defaultValue
	}
	return value
}
