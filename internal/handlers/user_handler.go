// internal/handlers/user_handler.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"attendance_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler { return &UserHandler{DB: db} }

func userView(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"full_name":  u.FullName,
		"email":      u.Email,
		"role":       u.Role,
		"manager_id": u.ManagerID,
		"created_at": u.CreatedAt,
	}
}

func (h *UserHandler) Me(c *gin.Context) {
	userID := c.GetString("user_id")

	var u models.User
	if err := h.DB.First(&u, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userView(&u)})
}

// List applies the same visibility scope as attendance listing: ADMIN and
// MANAGER see everyone, TEAM_LEAD sees self plus direct reports, MEMBER sees
// only self.
func (h *UserHandler) List(c *gin.Context) {
	me := c.GetString("user_id")
	role := models.UserRole(c.GetString("role"))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}
	skip := (page - 1) * limit

	q := h.DB.Model(&models.User{})
	switch role {
	case models.RoleAdmin, models.RoleManager:
		// all users
	case models.RoleTeamLead:
		q = q.Where("id = ? OR manager_id = ?", me, me)
	default:
		q = q.Where("id = ?", me)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	var rows []models.User
	if err := q.Order("created_at desc").Offset(skip).Limit(limit).Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
		return
	}

	items := make([]gin.H, 0, len(rows))
	for i := range rows {
		items = append(items, userView(&rows[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"items": items,
	})
}

func (h *UserHandler) Get(c *gin.Context) {
	targetID := strings.TrimSpace(c.Param("id"))
	if err := uuid.Validate(targetID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a uuid"})
		return
	}

	me := c.GetString("user_id")
	role := models.UserRole(c.GetString("role"))

	allowed := role == models.RoleAdmin || role == models.RoleManager || targetID == me
	if !allowed && role == models.RoleTeamLead {
		var n int64
		if err := h.DB.Model(&models.User{}).
			Where("id = ? AND manager_id = ?", targetID, me).
			Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "load failed"})
			return
		}
		allowed = n > 0
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot access this user"})
		return
	}

	var u models.User
	if err := h.DB.First(&u, "id = ?", targetID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userView(&u)})
}
