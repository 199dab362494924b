// internal/handlers/policy_handler.go
package handlers

import (
	"net/http"

	"attendance_backend/internal/attendance"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PolicyHandler struct {
	Policies attendance.PolicyStore
}

func NewPolicyHandler(db *gorm.DB) *PolicyHandler {
	return &PolicyHandler{Policies: attendance.NewPolicyStore(db)}
}

// Get returns the singleton policy, lazily seeding the defaults on first
// access.
func (h *PolicyHandler) Get(c *gin.Context) {
	pol, err := h.Policies.GetOrCreateDefault()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Failed to fetch policy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": pol})
}

// Update applies a partial patch. Rejects an empty patch and any patch whose
// merged result would violate fullDayMinWorkMinutes >= halfDayMinWorkMinutes.
func (h *PolicyHandler) Update(c *gin.Context) {
	var patch attendance.PolicyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid body", "error": err.Error()})
		return
	}

	pol, err := h.Policies.Patch(patch, c.GetString("user_id"))
	if err != nil {
		if attendance.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Failed to update policy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": pol})
}
