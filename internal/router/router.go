package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/softdeck/softdeck/internal/handlers"
	"github.com/softdeck/softdeck/internal/middleware"
	"github.com/softdeck/softdeck/internal/types"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)
		api.POST("/token/refresh", handlers.RefreshToken)

		users := api.Group("/users", middleware.AuthMiddleware())
		{
			users.GET("", handlers.ListUsers)
			users.POST("", handlers.Register)
			users.GET("/:user_id", handlers.GetUser)
			users.PATCH("/:user_id", handlers.UpdateUser)
			users.DELETE("/:user_id", handlers.DeleteUser)
		}

		projects := api.Group("/projects", middleware.AuthMiddleware())
		{
			projects.POST("", handlers.CreateProject)
			projects.GET("", handlers.ListProjects)
			projects.GET("/:project_id", handlers.GetProject)
			projects.PATCH("/:project_id", handlers.UpdateProject)
			projects.DELETE("/:project_id", handlers.DeleteProject)

			projects.GET("/:project_id/contributors", handlers.ListContributors)
			projects.POST("/:project_id/contributors", handlers.AddContributor)
			projects.DELETE("/:project_id/contributors/:contributor_id", handlers.RemoveContributor)

			projects.GET("/:project_id/issues", handlers.ListIssues)
			projects.POST("/:project_id/issues", handlers.CreateIssue)
			projects.GET("/:project_id/issues/:issue_id", handlers.GetIssue)
			projects.PATCH("/:project_id/issues/:issue_id", handlers.UpdateIssue)
			projects.DELETE("/:project_id/issues/:issue_id", handlers.DeleteIssue)

			projects.GET("/:project_id/issues/:issue_id/comments", handlers.ListComments)
			projects.POST("/:project_id/issues/:issue_id/comments", handlers.CreateComment)
			projects.GET("/:project_id/issues/:issue_id/comments/:comment_id", handlers.GetComment)
			projects.PATCH("/:project_id/issues/:issue_id/comments/:comment_id", handlers.UpdateComment)
			projects.DELETE("/:project_id/issues/:issue_id/comments/:comment_id", handlers.DeleteComment)
		}
	}

	return r
}
