package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/softdeck/softdeck/internal/apierr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	r := setupTest(t)
	_, authorToken := registerAndLogin(t, r, "author")
	bobID, bobToken := registerAndLogin(t, r, "bob")
	_, strangerToken := registerAndLogin(t, r, "stranger")

	project := createProject(t, r, authorToken, "Alpha")
	addContributor(t, r, authorToken, project.ID, bobID)
	issue := createIssue(t, r, authorToken, project.ID, gin.H{
		"title":    "discussion",
		"priority": "LOW",
		"tag":      "TASK",
	})

	t.Run("contributor comments with an opaque id", func(t *testing.T) {
		comment := createComment(t, r, bobToken, project.ID, issue.ID, "first!")

		assert.Equal(t, bobID, comment.AuthorID)

		parsed, err := uuid.Parse(comment.ID)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, parsed)
	})

	t.Run("two comments get distinct ids", func(t *testing.T) {
		a := createComment(t, r, bobToken, project.ID, issue.ID, "one")
		b := createComment(t, r, bobToken, project.ID, issue.ID, "two")
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("non-member cannot comment", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost,
			fmt.Sprintf("/api/projects/%d/issues/%d/comments", project.ID, issue.ID), strangerToken,
			gin.H{"description": "drive-by"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("empty description is rejected", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPost,
			fmt.Sprintf("/api/projects/%d/issues/%d/comments", project.ID, issue.ID), bobToken,
			gin.H{"description": ""})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCommentVisibilityAndMutation(t *testing.T) {
	r := setupTest(t)
	_, authorToken := registerAndLogin(t, r, "author")
	bobID, bobToken := registerAndLogin(t, r, "bob")
	_, strangerToken := registerAndLogin(t, r, "stranger")

	project := createProject(t, r, authorToken, "Alpha")
	addContributor(t, r, authorToken, project.ID, bobID)
	issue := createIssue(t, r, authorToken, project.ID, gin.H{
		"title":    "discussion",
		"priority": "LOW",
		"tag":      "TASK",
	})
	comment := createComment(t, r, bobToken, project.ID, issue.ID, "original")

	base := fmt.Sprintf("/api/projects/%d/issues/%d/comments", project.ID, issue.ID)

	t.Run("member reads list and detail", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, base, authorToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var list []commentView
		decodeJSON(t, rec, &list)
		assert.Len(t, list, 1)

		rec = doRequest(t, r, http.MethodGet, base+"/"+comment.ID, authorToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-member is denied", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, base, strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = doRequest(t, r, http.MethodGet, base+"/"+comment.ID, strangerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("malformed comment id is not found", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, base+"/not-a-uuid", authorToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown comment id is not found", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodGet, base+"/"+uuid.NewString(), authorToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("only the comment author may update", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodPatch, base+"/"+comment.ID, authorToken, gin.H{
			"description": "edited by someone else",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, apierr.CodeForbidden, errorCode(t, rec))

		rec = doRequest(t, r, http.MethodPatch, base+"/"+comment.ID, bobToken, gin.H{
			"description": "edited",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		var updated commentView
		decodeJSON(t, rec, &updated)
		assert.Equal(t, "edited", updated.Description)
	})

	t.Run("only the comment author may delete", func(t *testing.T) {
		rec := doRequest(t, r, http.MethodDelete, base+"/"+comment.ID, authorToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = doRequest(t, r, http.MethodDelete, base+"/"+comment.ID, bobToken, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = doRequest(t, r, http.MethodGet, base+"/"+comment.ID, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
