package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/softdeck/softdeck/db"
	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/softdeck/softdeck/internal/authz"
	"github.com/softdeck/softdeck/internal/models"
	"gorm.io/gorm"
)

type CreateCommentRequest struct {
	Description string `json:"description" binding:"required"`
}

type UpdateCommentRequest struct {
	Description string `json:"description" binding:"required"`
}

type CommentListView struct {
	ID       uuid.UUID `json:"id"`
	AuthorID uint      `json:"author_id"`
}

type CommentDetailView struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	IssueID     uint      `json:"issue_id"`
	AuthorID    uint      `json:"author_id"`
	CreatedTime time.Time `json:"created_time"`
}

func toCommentDetail(comment models.Comment) CommentDetailView {
	return CommentDetailView{
		ID:          comment.ID,
		Description: comment.Description,
		IssueID:     comment.IssueID,
		AuthorID:    comment.AuthorID,
		CreatedTime: comment.CreatedAt,
	}
}

// issueScope enters the comment routes: project membership check plus issue
// resolution within that project.
func issueScope(ctx *gin.Context) (models.Issue, uint, bool) {
	project, userID, ok := projectScope(ctx)

	if !ok {
		return models.Issue{}, 0, false
	}

	issue, ok := getProjectIssue(ctx, project.ID)

	if !ok {
		return models.Issue{}, 0, false
	}

	return issue, userID, true
}

func getIssueComment(ctx *gin.Context, issueID uint) (models.Comment, bool) {
	commentID, err := uuid.Parse(ctx.Param("comment_id"))

	if err != nil {
		apierr.Write(ctx, apierr.NotFound("comment not found"))
		return models.Comment{}, false
	}

	var comment models.Comment

	err = db.DB.Where("id = ? AND issue_id = ?", commentID, issueID).First(&comment).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierr.Write(ctx, apierr.NotFound("comment not found"))
			return models.Comment{}, false
		}
		slog.Error("failed to fetch comment", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return models.Comment{}, false
	}

	return comment, true
}

func ListComments(ctx *gin.Context) {
	issue, _, ok := issueScope(ctx)

	if !ok {
		return
	}

	var comments []models.Comment

	if err := db.DB.Where("issue_id = ?", issue.ID).Order("created_at").Find(&comments).Error; err != nil {
		slog.Error("failed to list comments", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	response := make([]CommentListView, 0, len(comments))

	for _, comment := range comments {
		response = append(response, CommentListView{ID: comment.ID, AuthorID: comment.AuthorID})
	}

	ctx.JSON(http.StatusOK, response)
}

func GetComment(ctx *gin.Context) {
	issue, _, ok := issueScope(ctx)

	if !ok {
		return
	}

	comment, ok := getIssueComment(ctx, issue.ID)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, toCommentDetail(comment))
}

// CreateComment forces the author to the requesting principal and mints a
// fresh random identifier.
func CreateComment(ctx *gin.Context) {
	issue, userID, ok := issueScope(ctx)

	if !ok {
		return
	}

	var body CreateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	comment := models.Comment{
		ID:          uuid.New(),
		Description: body.Description,
		IssueID:     issue.ID,
		AuthorID:    userID,
	}

	if err := db.DB.Create(&comment).Error; err != nil {
		slog.Error("failed to create comment", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusCreated, toCommentDetail(comment))
}

func UpdateComment(ctx *gin.Context) {
	issue, userID, ok := issueScope(ctx)

	if !ok {
		return
	}

	comment, ok := getIssueComment(ctx, issue.ID)

	if !ok {
		return
	}

	if err := authz.RequireAuthor(userID, comment.AuthorID); err != nil {
		apierr.Write(ctx, err)
		return
	}

	var body UpdateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		apierr.Write(ctx, apierr.Validation("", "invalid request body"))
		return
	}

	comment.Description = body.Description

	if err := db.DB.Save(&comment).Error; err != nil {
		slog.Error("failed to update comment", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.JSON(http.StatusOK, toCommentDetail(comment))
}

func DeleteComment(ctx *gin.Context) {
	issue, userID, ok := issueScope(ctx)

	if !ok {
		return
	}

	comment, ok := getIssueComment(ctx, issue.ID)

	if !ok {
		return
	}

	if err := authz.RequireAuthor(userID, comment.AuthorID); err != nil {
		apierr.Write(ctx, err)
		return
	}

	if err := db.DB.Delete(&comment).Error; err != nil {
		slog.Error("failed to delete comment", "error", err)
		apierr.Write(ctx, apierr.Internal())
		return
	}

	ctx.Status(http.StatusNoContent)
}
