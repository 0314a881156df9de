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

type AddContributorRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type ContributorView struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	ProjectID uint   `json:"project_id"`
}

func ListContributors(ctx *gin.Context) {
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

	if err := authz.RequireProjectAccess(db.DB, userID, project); err != nil {
		apierr.Write(ctx, err)
		return
	}

	var contributors []models.Contributor

	if err := db.DB.Preload("User").Where("project_id = ?", projectID).Order("id").Find(&contributors).Error; err != nil {
		slog.Error("failed to list contributors", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	response := make([]ContributorView, 0, len(contributors))

	for _, contributor := range contributors {
		response = append(response, ContributorView{
			ID:        contributor.ID,
			UserID:    contributor.UserID,
			Username:  contributor.User.Username,
			ProjectID: contributor.ProjectID,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

// AddContributor is team management, an author-only capability. The unique
// (user, project) index backs the duplicate check, so two concurrent adds
// cannot both succeed.
func AddContributor(ctx *gin.Context) {
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

	var body AddContributorRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	var target models.User

	if err := db.DB.First(&target, body.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(ctx, apierr.Validation("user_id", "user does not exist"))
			return
		}
		slog.Error("failed to fetch user", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	contributor := models.Contributor{UserID: target.ID, ProjectID: project.ID}

	if err := db.DB.Create(&contributor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			apierr.Write(ctx, apierr.Conflict("user is already a contributor of this project"))
			return
		}
		slog.Error("failed to add contributor", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusCreated, ContributorView{
		ID:        contributor.ID,
		UserID:    target.ID,
		Username:  target.Username,
		ProjectID: project.ID,
	})
}

func RemoveContributor(ctx *gin.Context) {
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

	contributorID, ok := uintParam(ctx, "contributor_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("contributor not found for this project"))
		return
	}

	var contributor models.Contributor

	err = db.DB.Where("id = ? AND project_id = ?", contributorID, projectID).First(&contributor).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(ctx, apierr.NotFound("contributor not found for this project"))
			return
		}
		slog.Error("failed to fetch contributor", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	if err := db.DB.Delete(&contributor).Error; err != nil {
		slog.Error("failed to remove contributor", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.Status(http.StatusNoContent)
}
