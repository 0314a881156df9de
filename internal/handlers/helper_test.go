package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/softdeck/softdeck/db"
	"github.com/softdeck/softdeck/internal/auth"
	"github.com/softdeck/softdeck/internal/router"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTest wires the router against a fresh in-memory database. The DSN is
// keyed by test name so connections from gorm's pool share one database
// without leaking state between tests.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	require.NoError(t, auth.Configure("test-secret", 15*time.Minute, 24*time.Hour))

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())

	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	db.DB = database
	require.NoError(t, db.MigrateDatabase())

	return router.NewRouter()
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer = bytes.NewBuffer(nil)

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body errorBody
	decodeJSON(t, rec, &body)
	return body.Error.Code
}

type userView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// registerAndLogin creates a user and returns its id and an access token.
func registerAndLogin(t *testing.T, r *gin.Engine, username string) (uint, string) {
	t.Helper()

	rec := doRequest(t, r, http.MethodPost, "/api/register", "", gin.H{
		"username": username,
		"email":    username + "@example.com",
		"password": "Test@1234",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created userView
	decodeJSON(t, rec, &created)

	rec = doRequest(t, r, http.MethodPost, "/api/login", "", gin.H{
		"username": username,
		"password": "Test@1234",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pair auth.TokenPair
	decodeJSON(t, rec, &pair)
	require.NotEmpty(t, pair.Access)

	return created.ID, pair.Access
}

type projectView struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	AuthorID uint   `json:"author_id"`
}

func createProject(t *testing.T, r *gin.Engine, token, title string) projectView {
	t.Helper()

	rec := doRequest(t, r, http.MethodPost, "/api/projects", token, gin.H{
		"title":       title,
		"description": "test project",
		"type":        "BACKEND",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var project projectView
	decodeJSON(t, rec, &project)
	return project
}

type contributorView struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	ProjectID uint   `json:"project_id"`
}

func addContributor(t *testing.T, r *gin.Engine, token string, projectID, userID uint) contributorView {
	t.Helper()

	rec := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/projects/%d/contributors", projectID), token, gin.H{
		"user_id": userID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var contributor contributorView
	decodeJSON(t, rec, &contributor)
	return contributor
}

type issueView struct {
	ID         uint   `json:"id"`
	Title      string `json:"title"`
	Priority   string `json:"priority"`
	Tag        string `json:"tag"`
	Status     string `json:"status"`
	ProjectID  uint   `json:"project_id"`
	AuthorID   uint   `json:"author_id"`
	AssignedTo *uint  `json:"assigned_to"`
}

func createIssue(t *testing.T, r *gin.Engine, token string, projectID uint, body gin.H) issueView {
	t.Helper()

	rec := doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/projects/%d/issues", projectID), token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var issue issueView
	decodeJSON(t, rec, &issue)
	return issue
}

type commentView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	IssueID     uint   `json:"issue_id"`
	AuthorID    uint   `json:"author_id"`
}

func createComment(t *testing.T, r *gin.Engine, token string, projectID, issueID uint, description string) commentView {
	t.Helper()

	rec := doRequest(t, r, http.MethodPost,
		fmt.Sprintf("/api/projects/%d/issues/%d/comments", projectID, issueID), token,
		gin.H{"description": description})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var comment commentView
	decodeJSON(t, rec, &comment)
	return comment
}
