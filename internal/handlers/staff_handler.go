package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/fixitnow/maintenance-backend/internal/database"
	"github.com/fixitnow/maintenance-backend/internal/models"
	"github.com/fixitnow/maintenance-backend/internal/services"
)

// StaffHandler handles maintenance staff directory HTTP requests. Every
// mutation invalidates the router's cached candidate lists for the
// affected categories.
type StaffHandler struct {
	staffRepo  *database.StaffRepository
	router     *services.RouterService
	bcryptCost int
	logger     *logrus.Logger
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(staffRepo *database.StaffRepository, router *services.RouterService, bcryptCost int, logger *logrus.Logger) *StaffHandler {
	return &StaffHandler{
		staffRepo:  staffRepo,
		router:     router,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// CreateStaffRequest represents the staff creation request body
type CreateStaffRequest struct {
	Name       string   `json:"name" binding:"required"`
	Email      string   `json:"email" binding:"required,email"`
	Password   string   `json:"password" binding:"required,min=8"`
	Department string   `json:"department"`
	Phone      string   `json:"phone"`
	Categories []string `json:"categories" binding:"required,min=1"`
}

// UpdateStaffRequest represents the staff update request body
type UpdateStaffRequest struct {
	Name       string   `json:"name" binding:"required"`
	Department string   `json:"department"`
	Phone      string   `json:"phone"`
	Categories []string `json:"categories" binding:"required,min=1"`
}

// SetActiveRequest represents the activation toggle request body
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// ListEligible handles GET /api/v1/staff/eligible?category=plumbing.
// Returns the router's candidate list for a category; results may be
// cached and are advisory only.
func (h *StaffHandler) ListEligible(c *gin.Context) {
	category := models.Category(c.Query("category"))
	if !category.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "A valid category query parameter is required",
		})
		return
	}

	staff := h.router.ResolveStaff(category)

	c.JSON(http.StatusOK, gin.H{
		"staff": staff,
		"total": len(staff),
	})
}

// List handles GET /api/v1/admin/maintenance-staff
func (h *StaffHandler) List(c *gin.Context) {
	staff, err := h.staffRepo.List()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list maintenance staff")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to retrieve staff",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"staff": staff,
		"total": len(staff),
	})
}

// Create handles POST /api/v1/admin/maintenance-staff
func (h *StaffHandler) Create(c *gin.Context) {
	var req CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	categories, ok := h.validCategories(c, req.Categories)
	if !ok {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash staff password")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create staff member",
		})
		return
	}

	staff := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Department:   models.NewNullString(req.Department),
		Phone:        models.NewNullString(req.Phone),
		Categories:   pq.StringArray(categories),
		Active:       true,
	}
	if err := h.staffRepo.Create(staff); err != nil {
		h.logger.WithError(err).Error("Failed to create staff member")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create staff member",
		})
		return
	}

	h.invalidateCategories(categories)

	c.JSON(http.StatusCreated, gin.H{"staff": staff})
}

// Get handles GET /api/v1/admin/maintenance-staff/:id
func (h *StaffHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	staff, err := h.staffRepo.GetByID(id)
	if err != nil {
		h.respondStaffError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// Update handles PUT /api/v1/admin/maintenance-staff/:id. Both the old and
// new category sets are invalidated so no stale list survives a skill change.
func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	categories, ok := h.validCategories(c, req.Categories)
	if !ok {
		return
	}

	existing, err := h.staffRepo.GetByID(id)
	if err != nil {
		h.respondStaffError(c, err)
		return
	}

	if err := h.staffRepo.Update(id, strings.TrimSpace(req.Name), req.Department, req.Phone, categories); err != nil {
		h.respondStaffError(c, err)
		return
	}

	h.invalidateCategories(existing.Categories)
	h.invalidateCategories(categories)

	staff, err := h.staffRepo.GetByID(id)
	if err != nil {
		h.respondStaffError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// SetActive handles PATCH /api/v1/admin/maintenance-staff/:id/active.
// Deactivation removes the member from future candidate lists but leaves
// their current assignments untouched.
func (h *StaffHandler) SetActive(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	existing, err := h.staffRepo.GetByID(id)
	if err != nil {
		h.respondStaffError(c, err)
		return
	}

	if err := h.staffRepo.SetActive(id, *req.Active); err != nil {
		h.respondStaffError(c, err)
		return
	}

	h.invalidateCategories(existing.Categories)

	h.logger.WithFields(logrus.Fields{
		"staff_id": id,
		"active":   *req.Active,
	}).Info("Staff active flag changed")

	staff, err := h.staffRepo.GetByID(id)
	if err != nil {
		h.respondStaffError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

func (h *StaffHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid staff ID format",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *StaffHandler) validCategories(c *gin.Context, raw []string) ([]string, bool) {
	seen := make(map[string]bool, len(raw))
	categories := make([]string, 0, len(raw))
	for _, value := range raw {
		category := models.Category(strings.TrimSpace(value))
		if !category.IsValid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Invalid category: " + value,
			})
			return nil, false
		}
		if !seen[string(category)] {
			seen[string(category)] = true
			categories = append(categories, string(category))
		}
	}
	return categories, true
}

func (h *StaffHandler) invalidateCategories(categories []string) {
	converted := make([]models.Category, 0, len(categories))
	for _, category := range categories {
		converted = append(converted, models.Category(category))
	}
	h.router.Invalidate(converted...)
}

func (h *StaffHandler) respondStaffError(c *gin.Context, err error) {
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Staff member not found",
		})
		return
	}
	h.logger.WithError(err).Error("Staff directory operation failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "database_error",
		Message: "Operation failed, please try again",
	})
}
