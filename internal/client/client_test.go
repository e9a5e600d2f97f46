package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-sphere/internal/dto"
	"github.com/yukikurage/task-sphere/internal/models"
	"github.com/yukikurage/task-sphere/internal/testutil"
)

func TestNew_RejectsRelativeURL(t *testing.T) {
	_, err := New("localhost:8080/api")
	assert.Error(t, err)
}

func TestClient_SessionRoundTrip(t *testing.T) {
	srv := testutil.NewServer(t, nil)
	ctx := context.Background()

	c, err := New(srv.URL)
	require.NoError(t, err)
	assert.Empty(t, c.Token())

	_, err = c.ListTasks(ctx, nil)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	user, err := c.Signup(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	require.NotEmpty(t, c.Token())

	// A second client restored from the saved token shares the session.
	restored, err := New(srv.URL)
	require.NoError(t, err)
	restored.SetToken(c.Token())

	me, err := restored.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, me.ID)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())

	_, err = c.Me(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
}

func TestClient_TaskOperations(t *testing.T) {
	srv := testutil.NewServer(t, nil)
	ctx := context.Background()

	c, err := New(srv.URL)
	require.NoError(t, err)
	_, err = c.Signup(ctx, "Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	a, err := c.CreateTask(ctx, "A", models.TimeframeDaily)
	require.NoError(t, err)
	b, err := c.CreateTask(ctx, "B", models.TimeframeDaily)
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, "W", models.TimeframeWeekly)
	require.NoError(t, err)

	count, err := c.ReorderTasks(ctx, models.TimeframeDaily, []string{b.ID, a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	daily := models.TimeframeDaily
	tasks, err := c.ListTasks(ctx, &daily)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "B", tasks[0].Text)
	assert.Equal(t, "A", tasks[1].Text)

	done := true
	updated, err := c.UpdateTask(ctx, a.ID, dto.UpdateTaskRequest{Completed: &done})
	require.NoError(t, err)
	assert.True(t, updated.Completed)

	got, err := c.GetTask(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	require.NoError(t, c.DeleteTask(ctx, a.ID))
	_, err = c.GetTask(ctx, a.ID)
	assert.True(t, IsStatus(err, http.StatusNotFound))

	all, err := c.ListTasks(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = c.SuggestTasks(ctx, "plan", models.TimeframeDaily)
	assert.True(t, IsStatus(err, http.StatusServiceUnavailable))
}

func TestClient_ValidationErrorMessage(t *testing.T) {
	srv := testutil.NewServer(t, nil)

	c, err := New(srv.URL)
	require.NoError(t, err)

	_, err = c.Signup(context.Background(), "Alice", "alice@example.com", "short")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Password must be at least 8 characters", apiErr.Message)
}
