package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"habit-goal/internal/config"
	"habit-goal/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	return NewRouter(testutil.OpenTestDB(t), cfg)
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func register(t *testing.T, r *gin.Engine, username string) string {
	t.Helper()
	w := doJSON(t, r, "POST", "/api/auth/register", "", gin.H{"username": username, "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, w, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestAuthFlow(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice")

	w := doJSON(t, r, "POST", "/api/auth/login", "", gin.H{"username": "alice", "password": "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	r := newTestRouter(t)
	w := doJSON(t, r, "GET", "/api/habits", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHabitLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "alice")

	w := doJSON(t, r, "POST", "/api/habits", token, gin.H{"name": "read", "frequency": "daily"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var habit struct {
		ID int `json:"id"`
	}
	decode(t, w, &habit)

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/habits/%d/completions", habit.ID), token, gin.H{"date": "2024-03-09", "quality": 4})
	require.Equal(t, http.StatusOK, w.Code)
	var toggle struct {
		Completed bool `json:"completed"`
	}
	decode(t, w, &toggle)
	assert.True(t, toggle.Completed)

	w = doJSON(t, r, "GET", "/api/habits", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []struct {
		ID          int `json:"id"`
		Completions int `json:"completions"`
	}
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Completions)

	w = doJSON(t, r, "DELETE", fmt.Sprintf("/api/habits/%d", habit.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/habits/%d", habit.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	r := newTestRouter(t)
	alice := register(t, r, "alice")
	bob := register(t, r, "bob")

	w := doJSON(t, r, "POST", "/api/habits", alice, gin.H{"name": "read"})
	require.Equal(t, http.StatusOK, w.Code)
	var habit struct {
		ID int `json:"id"`
	}
	decode(t, w, &habit)

	// someone else's habit is forbidden, a missing one is not found
	w = doJSON(t, r, "GET", fmt.Sprintf("/api/habits/%d", habit.ID), bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, r, "GET", "/api/habits/999", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoalProgressEndpoint(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "alice")

	w := doJSON(t, r, "POST", "/api/habits", token, gin.H{"name": "read"})
	require.Equal(t, http.StatusOK, w.Code)
	var habit struct {
		ID int `json:"id"`
	}
	decode(t, w, &habit)

	w = doJSON(t, r, "POST", "/api/goals", token, gin.H{
		"title": "reading list", "target_date": "2030-01-01", "target_amount": 10,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var goal struct {
		ID int `json:"id"`
	}
	decode(t, w, &goal)

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/goals/%d/habits", goal.ID), token, gin.H{
		"habit_id": habit.ID, "contribution_weight": 0.5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, r, "POST", fmt.Sprintf("/api/habits/%d/completions", habit.ID), token, gin.H{"date": "2024-03-09"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/goals/%d/progress", goal.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var report struct {
		TotalCompletions    int         `json:"total_completions"`
		QualityDistribution map[int]int `json:"quality_distribution"`
	}
	decode(t, w, &report)
	assert.Equal(t, 1, report.TotalCompletions)
	assert.Equal(t, 1, report.QualityDistribution[3]) // unrated defaults to 3

	w = doJSON(t, r, "GET", fmt.Sprintf("/api/goals/%d/insights", goal.ID), token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportPreviewAndConfirm(t *testing.T) {
	r := newTestRouter(t)
	token := register(t, r, "alice")

	w := doJSON(t, r, "POST", "/api/habits", token, gin.H{"name": "Read"})
	require.Equal(t, http.StatusOK, w.Code)

	csv := "date,habit,quality\n2024-03-09,Read,4\nnot-a-date,Read,2\n2024-03-08,Unknown,3\n"
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "history.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/api/import/preview", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview struct {
		Token           string   `json:"token"`
		BadRows         int      `json:"bad_rows"`
		UnmatchedHabits []string `json:"unmatched_habits"`
	}
	decode(t, rec, &preview)
	require.NotEmpty(t, preview.Token)
	assert.Equal(t, 1, preview.BadRows)
	assert.Equal(t, []string{"Unknown"}, preview.UnmatchedHabits)

	w = doJSON(t, r, "POST", "/api/import/confirm", token, gin.H{"token": preview.Token})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}
	decode(t, w, &result)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	// a second confirm with the same token must fail
	w = doJSON(t, r, "POST", "/api/import/confirm", token, gin.H{"token": preview.Token})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
