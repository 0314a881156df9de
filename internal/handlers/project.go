package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/softdeck/softdeck/db"
	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/softdeck/softdeck/internal/authz"
	"github.com/softdeck/softdeck/internal/models"
	"github.com/softdeck/softdeck/internal/utils"
	"gorm.io/gorm"
)

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Type        string `json:"type" binding:"required,oneof=BACKEND FRONTEND IOS ANDROID"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Type        *string `json:"type" binding:"omitempty,oneof=BACKEND FRONTEND IOS ANDROID"`
}

type ProjectListView struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	AuthorID uint   `json:"author_id"`
}

type ProjectDetailView struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	AuthorID    uint   `json:"author_id"`
}

func toProjectDetail(project models.Project) ProjectDetailView {
	return ProjectDetailView{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Type:        project.Type,
		AuthorID:    project.AuthorID,
	}
}

// CreateProject persists the project and the author's automatic contributor
// membership in one transaction: both land or neither does.
func CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return
	}

	project := models.Project{
		Title:       body.Title,
		Description: body.Description,
		Type:        body.Type,
		AuthorID:    userID,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		return tx.Create(&models.Contributor{UserID: userID, ProjectID: project.ID}).Error
	})

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierr.Write(ctx, apierr.Conflict("a project with this title already exists"))
			return
		}
		slog.Error("failed to create project", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusCreated, toProjectDetail(project))
}

func ListProjects(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return
	}

	var projects []models.Project

	if err := authz.VisibleProjects(db.DB, userID).Order("projects.id").Find(&projects).Error; err != nil {
		slog.Error("failed to list projects", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	response := make([]ProjectListView, 0, len(projects))

	for _, project := range projects {
		response = append(response, ProjectListView{
			ID:       project.ID,
			Title:    project.Title,
			Type:     project.Type,
			AuthorID: project.AuthorID,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func GetProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return
	}

	projectID, ok := uintParam(ctx, "project_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("project not found"))
		return
	}

	project, err := authz.GetProject(db.DB, projectID)

	if err != nil {
		apierr.Write(ctx, err)
		return
	}

	// Detail access uses the same scope as list access; only the projection
	// differs.
	if err := authz.RequireProjectAccess(db.DB, userID, project); err != nil {
		apierr.Write(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, toProjectDetail(project))
}

func UpdateProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return
	}

	projectID, ok := uintParam(ctx, "project_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("project not found"))
		return
	}

	project, err := authz.GetProject(db.DB, projectID)

	if err != nil {
		apierr.Write(ctx, err)
		return
	}

	if err := authz.RequireProjectAuthor(userID, project); err != nil {
		apierr.Write(ctx, err)
		return
	}

	var body UpdateProjectRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	if body.Title != nil {
		project.Title = *body.Title
	}

	if body.Description != nil {
		project.Description = *body.Description
	}

	if body.Type != nil {
		project.Type = *body.Type
	}

	if err := db.DB.Save(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierr.Write(ctx, apierr.Conflict("a project with this title already exists"))
			return
		}
		slog.Error("failed to update project", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusOK, toProjectDetail(project))
}

// DeleteProject removes the project; contributors, issues and their comments
// cascade away at the storage layer in the same transaction.
func DeleteProject(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return
	}

	projectID, ok := uintParam(ctx, "project_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("project not found"))
		return
	}

	project, err := authz.GetProject(db.DB, projectID)

	if err != nil {
		apierr.Write(ctx, err)
		return
	}

	if err := authz.RequireProjectAuthor(userID, project); err != nil {
		apierr.Write(ctx, err)
		return
	}

	if err := db.DB.Delete(&project).Error; err != nil {
		slog.Error("failed to delete project", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.Status(http.StatusNoContent)
}
