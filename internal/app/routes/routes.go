package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/oguzk/learnsphere/internal/app/controllers"
	"github.com/oguzk/learnsphere/internal/app/models"
	"github.com/oguzk/learnsphere/internal/app/models/dto"
	"github.com/oguzk/learnsphere/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	courseController *controllers.CourseController,
	enrollmentController *controllers.EnrollmentController,
	privilegeController *controllers.PrivilegeController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.Refresh)
		auth.POST("/logout", authController.Logout)
	}

	// --- Public Course routes ---
	// The catalog is browsable without a token
	v1.GET("/courses", courseController.Search)
	v1.GET("/courses/enrollable", courseController.Enrollable)
	v1.GET("/courses/status-summary", courseController.StatusSummary)
	v1.GET("/privileges/catalog", privilegeController.Catalog)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		authenticated.GET("/auth/me", authController.Me)

		courses := authenticated.Group("/courses")
		{
			courses.POST("", courseController.Create)
			courses.GET("/mine", courseController.MyCourses)
			courses.GET("/:id", courseController.Get)
			courses.PUT("/:id", courseController.Update)
			courses.DELETE("/:id", courseController.Delete)

			// Lifecycle transitions; approve and reject are re-checked
			// as admin-only inside the service
			courses.POST("/:id/submit-for-review", courseController.SubmitForReview)
			courses.POST("/:id/publish", courseController.Publish)
			courses.POST("/:id/suspend", courseController.Suspend)
			courses.POST("/:id/archive", courseController.Archive)

			// Fees and discounts
			courses.GET("/:id/fee", courseController.Fee)
			courses.PUT("/:id/discount", courseController.SetDiscount)
			courses.DELETE("/:id/discount", courseController.RemoveDiscount)

			// Banner upload
			courses.POST("/:id/banner", courseController.UploadBanner)

			// Statistics
			courses.GET("/:id/statistics", courseController.Statistics)

			// Enrollment, self-service and on behalf of students
			courses.POST("/:id/enroll", enrollmentController.EnrollSelf)
			courses.DELETE("/:id/enroll", enrollmentController.UnenrollSelf)
			courses.GET("/:id/enrollments", enrollmentController.CourseEnrollments)
			courses.POST("/:id/enrollments", enrollmentController.EnrollStudent)
			courses.POST("/:id/enrollments/bulk", enrollmentController.BulkEnroll)
			courses.DELETE("/:id/enrollments/:studentId", enrollmentController.UnenrollStudent)
		}

		enrollments := authenticated.Group("/enrollments")
		{
			enrollments.GET("/mine", enrollmentController.MyEnrollments)
			enrollments.GET("/my-courses", enrollmentController.MyCourses)
			enrollments.GET("/history", enrollmentController.MyHistory)
			enrollments.GET("/my-students", enrollmentController.MyStudents)
		}

		authenticated.GET("/privileges/mine", privilegeController.MyPrivileges)
		authenticated.GET("/instructors/:id/privileges", privilegeController.ListByInstructor)

		// --- Admin routes ---
		admin := authenticated.Group("/admin")
		admin.Use(authMiddleware.RoleRequired(string(models.RoleAdmin)))
		{
			admin.POST("/users", userController.Create)
			admin.GET("/users", userController.List)
			admin.GET("/users/:id", userController.Get)
			admin.POST("/users/:id/deactivate", userController.Deactivate)
			admin.DELETE("/users/:id", userController.Delete)

			admin.POST("/courses/:id/approve", courseController.Approve)
			admin.POST("/courses/:id/reject", courseController.Reject)

			admin.POST("/privileges", privilegeController.Assign)
			admin.GET("/privileges", privilegeController.ListAll)
			admin.DELETE("/privileges/:id/:name", privilegeController.Revoke)
			admin.POST("/privileges/bulk-assign", privilegeController.BulkAssign)
			admin.POST("/privileges/bulk-revoke", privilegeController.BulkRevoke)

			admin.GET("/enrollments/statistics", enrollmentController.Statistics)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(200, dto.APIResponse{
			Success: true,
			Data:    gin.H{"status": "ok"},
		})
	})
}
