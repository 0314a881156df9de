package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/softdeck/softdeck/db"
	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/softdeck/softdeck/internal/authz"
	"github.com/softdeck/softdeck/internal/models"
	"github.com/softdeck/softdeck/internal/utils"
	"gorm.io/gorm"
)

type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority" binding:"required,oneof=LOW MEDIUM HIGH"`
	Tag         string `json:"tag" binding:"required,oneof=BUG FEATURE TASK"`
	Status      string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS FINISHED"`
	AssignedTo  *uint  `json:"assigned_to"`
}

type UpdateIssueRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1"`
	Description *string `json:"description"`
	Priority    *string `json:"priority" binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Tag         *string `json:"tag" binding:"omitempty,oneof=BUG FEATURE TASK"`
	Status      *string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS FINISHED"`
	AssignedTo  *uint   `json:"assigned_to"`
}

type IssueListView struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Priority string `json:"priority"`
	Tag      string `json:"tag"`
	Status   string `json:"status"`
	AuthorID uint   `json:"author_id"`
}

type IssueDetailView struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Tag         string    `json:"tag"`
	Status      string    `json:"status"`
	ProjectID   uint      `json:"project_id"`
	AuthorID    uint      `json:"author_id"`
	AssignedTo  *uint     `json:"assigned_to"`
	CreatedTime time.Time `json:"created_time"`
}

func toIssueDetail(issue models.Issue) IssueDetailView {
	return IssueDetailView{
		ID:          issue.ID,
		Title:       issue.Title,
		Description: issue.Description,
		Priority:    issue.Priority,
		Tag:         issue.Tag,
		Status:      issue.Status,
		ProjectID:   issue.ProjectID,
		AuthorID:    issue.AuthorID,
		AssignedTo:  issue.AssignedToID,
		CreatedTime: issue.CreatedAt,
	}
}

// projectScope resolves the project from the path and verifies the principal
// may see inside it. Every issue and comment route enters through here.
func projectScope(ctx *gin.Context) (models.Project, uint, bool) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		apierr.Write(ctx, apierr.Unauthenticated("user not authenticated"))
		return models.Project{}, 0, false
	}

	projectID, ok := uintParam(ctx, "project_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("project not found"))
		return models.Project{}, 0, false
	}

	project, err := authz.GetProject(db.DB, projectID)

	if err != nil {
		apierr.Write(ctx, err)
		return models.Project{}, 0, false
	}

	if err := authz.RequireProjectAccess(db.DB, userID, project); err != nil {
		apierr.Write(ctx, err)
		return models.Project{}, 0, false
	}

	return project, userID, true
}

func getProjectIssue(ctx *gin.Context, projectID uint) (models.Issue, bool) {
	issueID, ok := uintParam(ctx, "issue_id")

	if !ok {
		apierr.Write(ctx, apierr.NotFound("issue not found"))
		return models.Issue{}, false
	}

	var issue models.Issue

	err := db.DB.Where("id = ? AND project_id = ?", issueID, projectID).First(&issue).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(ctx, apierr.NotFound("issue not found"))
			return models.Issue{}, false
		}
		slog.Error("failed to fetch issue", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return models.Issue{}, false
	}

	return issue, true
}

// requireAssigneeMembership enforces that an assignee, when set, is a
// contributor of the project. Checked on create and on update alike.
func requireAssigneeMembership(projectID uint, assignedTo *uint) error {
	if assignedTo == nil {
		return nil
	}

	member, err := authz.IsMember(db.DB, *assignedTo, projectID)
	if err != nil {
		return err
	}

	if !member {
		return apierr.Validation("assigned_to", "assignee must be a contributor of the project")
	}

	return nil
}

func ListIssues(ctx *gin.Context) {
	project, _, ok := projectScope(ctx)

	if !ok {
		return
	}

	var issues []models.Issue

	if err := db.DB.Where("project_id = ?", project.ID).Order("id").Find(&issues).Error; err != nil {
		slog.Error("failed to list issues", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	response := make([]IssueListView, 0, len(issues))

	for _, issue := range issues {
		response = append(response, IssueListView{
			ID:       issue.ID,
			Title:    issue.Title,
			Priority: issue.Priority,
			Tag:      issue.Tag,
			Status:   issue.Status,
			AuthorID: issue.AuthorID,
		})
	}

	ctx.JSON(http.StatusOK, response)
}

func GetIssue(ctx *gin.Context) {
	project, _, ok := projectScope(ctx)

	if !ok {
		return
	}

	issue, ok := getProjectIssue(ctx, project.ID)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, toIssueDetail(issue))
}

// CreateIssue forces the author to the requesting principal; a client-supplied
// author field is never trusted.
func CreateIssue(ctx *gin.Context) {
	project, userID, ok := projectScope(ctx)

	if !ok {
		return
	}

	var body CreateIssueRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	if err := requireAssigneeMembership(project.ID, body.AssignedTo); err != nil {
		apierr.Write(ctx, err)
		return
	}

	status := body.Status
	if status == "" {
		status = models.IssueStatusTodo
	}

	issue := models.Issue{
		Title:        body.Title,
		Description:  body.Description,
		Priority:     body.Priority,
		Tag:          body.Tag,
		Status:       status,
		ProjectID:    project.ID,
		AuthorID:     userID,
		AssignedToID: body.AssignedTo,
	}

	if err := db.DB.Create(&issue).Error; err != nil {
		slog.Error("failed to create issue", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusCreated, toIssueDetail(issue))
}

func UpdateIssue(ctx *gin.Context) {
	project, userID, ok := projectScope(ctx)

	if !ok {
		return
	}

	issue, ok := getProjectIssue(ctx, project.ID)

	if !ok {
		return
	}

	if err := authz.RequireAuthor(userID, issue.AuthorID); err != nil {
		apierr.Write(ctx, err)
		return
	}

	var body UpdateIssueRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	if body.AssignedTo != nil {
		if err := requireAssigneeMembership(project.ID, body.AssignedTo); err != nil {
			apierr.Write(ctx, err)
			return
		}
		issue.AssignedToID = body.AssignedTo
	}

	if body.Title != nil {
		issue.Title = *body.Title
	}

	if body.Description != nil {
		issue.Description = *body.Description
	}

	if body.Priority != nil {
		issue.Priority = *body.Priority
	}

	if body.Tag != nil {
		issue.Tag = *body.Tag
	}

	if body.Status != nil {
		issue.Status = *body.Status
	}

	if err := db.DB.Save(&issue).Error; err != nil {
		slog.Error("failed to update issue", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusOK, toIssueDetail(issue))
}

func DeleteIssue(ctx *gin.Context) {
	project, userID, ok := projectScope(ctx)

	if !ok {
		return
	}

	issue, ok := getProjectIssue(ctx, project.ID)

	if !ok {
		return
	}

	if err := authz.RequireAuthor(userID, issue.AuthorID); err != nil {
		apierr.Write(ctx, err)
		return
	}

	if err := db.DB.Delete(&issue).Error; err != nil {
		slog.Error("failed to delete issue", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.Status(http.StatusNoContent)
}
