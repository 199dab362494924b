// internal/routes/router.go
package routes

import (
	"attendance_backend/internal/handlers"
	"attendance_backend/internal/middleware"
	"attendance_backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	authH := handlers.NewAuthHandler(db)
	userH := handlers.NewUserHandler(db)
	attH := handlers.NewAttendanceHandler(db)
	polH := handlers.NewPolicyHandler(db)
	healthH := handlers.NewHealthHandler(db)

	r.GET("/health", healthH.Check)

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/login", authH.Login)
		auth.POST("/totp/verify", authH.VerifyTOTPSetup)
		auth.POST("/register",
			middleware.AuthRequired(),
			middleware.RequireRoles(models.RoleAdmin, models.RoleManager),
			authH.Register)
	}

	users := api.Group("/users", middleware.AuthRequired())
	{
		users.GET("/me", userH.Me)
		users.GET("", userH.List)
		users.GET("/:id", userH.Get)
	}

	att := api.Group("/attendance", middleware.AuthRequired())
	{
		att.POST("/punch", attH.Punch)
		att.GET("", attH.List)

		att.GET("/policy", polH.Get)
		att.PATCH("/policy",
			middleware.RequireRoles(models.RoleAdmin, models.RoleManager),
			polH.Update)

		att.PATCH("/:user_id/:date/punches/:punch_id",
			middleware.RequireRoles(models.RoleAdmin, models.RoleManager),
			attH.EditPunch)
		att.DELETE("/:user_id/:date/punches/:punch_id",
			middleware.RequireRoles(models.RoleAdmin, models.RoleManager),
			attH.DeletePunch)
	}

	return r
}
