package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/task-sphere/internal/dto"
	"github.com/yukikurage/task-sphere/internal/models"
	"github.com/yukikurage/task-sphere/internal/repository"
	"github.com/yukikurage/task-sphere/internal/services"
)

type stubCompleter struct {
	content string
}

func (s stubCompleter) CreateChatCompletion(context.Context, openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: s.content}}},
	}, nil
}

func (s *HandlerTestSuite) createTask(session *http.Cookie, text string, tf models.Timeframe) dto.TaskDTO {
	w := s.do(http.MethodPost, "/api/tasks", dto.CreateTaskRequest{Text: text, Timeframe: tf}, session)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var task dto.TaskDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func (s *HandlerTestSuite) listTasks(session *http.Cookie, tf models.Timeframe) []dto.TaskDTO {
	w := s.do(http.MethodGet, "/api/tasks?timeframe="+string(tf), nil, session)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var tasks []dto.TaskDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	return tasks
}

func (s *HandlerTestSuite) TestCreateTask_AppendsAndValidates() {
	_, session := s.signup("Alice", "alice@example.com")

	first := s.createTask(session, "A", models.TimeframeDaily)
	second := s.createTask(session, "B", models.TimeframeDaily)
	yearly := s.createTask(session, "Y", models.TimeframeYearly)

	s.Equal(0, first.Position)
	s.Equal(1, second.Position)
	s.Equal(0, yearly.Position)
	s.False(first.Completed)

	w := s.do(http.MethodPost, "/api/tasks", dto.CreateTaskRequest{Text: "", Timeframe: models.TimeframeDaily}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/tasks", dto.CreateTaskRequest{Text: "x", Timeframe: "hourly"}, session)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Invalid timeframe", s.apiError(w).Message)
}

func (s *HandlerTestSuite) TestListTasks_FiltersAndRejectsBadTimeframe() {
	_, session := s.signup("Alice", "alice@example.com")
	s.createTask(session, "d", models.TimeframeDaily)
	s.createTask(session, "w", models.TimeframeWeekly)

	w := s.do(http.MethodGet, "/api/tasks", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	var all []dto.TaskDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &all))
	s.Len(all, 2)

	weekly := s.listTasks(session, models.TimeframeWeekly)
	s.Require().Len(weekly, 1)
	s.Equal("w", weekly[0].Text)

	w = s.do(http.MethodGet, "/api/tasks?timeframe=hourly", nil, session)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerTestSuite) TestListTasks_EmptyIsArray() {
	_, session := s.signup("Alice", "alice@example.com")

	w := s.do(http.MethodGet, "/api/tasks", nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *HandlerTestSuite) TestTaskLifecycle() {
	_, session := s.signup("Alice", "alice@example.com")
	task := s.createTask(session, "write report", models.TimeframeWeekly)

	w := s.do(http.MethodGet, "/api/tasks/"+task.ID, nil, session)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]bool{"completed": true}, session)
	s.Require().Equal(http.StatusOK, w.Code)
	var updated dto.TaskDTO
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	s.True(updated.Completed)
	s.Equal("write report", updated.Text)
	s.Equal(task.Position, updated.Position)

	w = s.do(http.MethodPut, "/api/tasks/"+task.ID, map[string]string{"text": ""}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/tasks/"+task.ID, nil, session)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"success":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/tasks/"+task.ID, nil, session)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestTaskByID_NotFound() {
	_, session := s.signup("Alice", "alice@example.com")

	for _, id := range []string{"not-a-uuid", uuid.NewString()} {
		w := s.do(http.MethodGet, "/api/tasks/"+id, nil, session)
		s.Equal(http.StatusNotFound, w.Code)
		s.Equal("Task not found", s.apiError(w).Message)
	}
}

func (s *HandlerTestSuite) TestReorder_AliceAndBob() {
	_, alice := s.signup("Alice", "alice@example.com")
	_, bob := s.signup("Bob", "bob@example.com")

	a := s.createTask(alice, "A", models.TimeframeDaily)
	b := s.createTask(alice, "B", models.TimeframeDaily)
	c := s.createTask(alice, "C", models.TimeframeDaily)
	s.Equal([]int{0, 1, 2}, []int{a.Position, b.Position, c.Position})

	w := s.do(http.MethodPut, "/api/tasks/reorder", dto.ReorderTasksRequest{
		Tasks:     []dto.TaskRef{{ID: c.ID}, {ID: a.ID}, {ID: b.ID}},
		Timeframe: models.TimeframeDaily,
	}, alice)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"success":true,"count":3}`, w.Body.String())

	tasks := s.listTasks(alice, models.TimeframeDaily)
	s.Require().Len(tasks, 3)
	s.Equal([]string{"C", "A", "B"}, []string{tasks[0].Text, tasks[1].Text, tasks[2].Text})
	s.Equal([]int{0, 1, 2}, []int{tasks[0].Position, tasks[1].Position, tasks[2].Position})

	// Bob cannot reorder Alice's tasks, and nothing changes.
	w = s.do(http.MethodPut, "/api/tasks/reorder", dto.ReorderTasksRequest{
		Tasks:     []dto.TaskRef{{ID: a.ID}, {ID: b.ID}, {ID: c.ID}},
		Timeframe: models.TimeframeDaily,
	}, bob)
	s.Equal(http.StatusForbidden, w.Code)

	// Bob cannot touch them individually either.
	w = s.do(http.MethodPut, "/api/tasks/"+a.ID, map[string]bool{"completed": true}, bob)
	s.Equal(http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, "/api/tasks/"+a.ID, nil, bob)
	s.Equal(http.StatusForbidden, w.Code)

	tasks = s.listTasks(alice, models.TimeframeDaily)
	s.Equal([]string{"C", "A", "B"}, []string{tasks[0].Text, tasks[1].Text, tasks[2].Text})
	s.False(tasks[1].Completed)

	s.Empty(s.listTasks(bob, models.TimeframeDaily))
}

func (s *HandlerTestSuite) TestReorder_MixedOwnershipIsAtomic() {
	_, alice := s.signup("Alice", "alice@example.com")
	_, bob := s.signup("Bob", "bob@example.com")

	a := s.createTask(alice, "A", models.TimeframeDaily)
	b := s.createTask(alice, "B", models.TimeframeDaily)
	foreign := s.createTask(bob, "X", models.TimeframeDaily)

	w := s.do(http.MethodPut, "/api/tasks/reorder", dto.ReorderTasksRequest{
		Tasks:     []dto.TaskRef{{ID: b.ID}, {ID: foreign.ID}, {ID: a.ID}},
		Timeframe: models.TimeframeDaily,
	}, alice)
	s.Equal(http.StatusForbidden, w.Code)

	tasks := s.listTasks(alice, models.TimeframeDaily)
	s.Equal([]string{"A", "B"}, []string{tasks[0].Text, tasks[1].Text})
}

func (s *HandlerTestSuite) TestReorder_BadRequests() {
	_, session := s.signup("Alice", "alice@example.com")

	w := s.do(http.MethodPut, "/api/tasks/reorder", map[string]string{"timeframe": "daily"}, session)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Tasks array is required", s.apiError(w).Message)

	w = s.do(http.MethodPut, "/api/tasks/reorder", dto.ReorderTasksRequest{Tasks: []dto.TaskRef{}, Timeframe: "hourly"}, session)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/tasks/reorder", dto.ReorderTasksRequest{Tasks: []dto.TaskRef{}, Timeframe: models.TimeframeDaily}, session)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"success":true,"count":0}`, w.Body.String())
}

func (s *HandlerTestSuite) TestSuggest() {
	_, session := s.signup("Alice", "alice@example.com")
	body := dto.SuggestTasksRequest{Text: "plan the offsite", Timeframe: models.TimeframeMonthly}

	w := s.do(http.MethodPost, "/api/tasks/suggest", body, session)
	s.Equal(http.StatusServiceUnavailable, w.Code)

	suggestions := services.NewSuggestionServiceWithClient(stubCompleter{content: `[{"text":"Book venue"},{"text":"Send invites"}]`}, "")
	s.deps.TaskService = services.NewTaskService(repository.NewTaskRepository(s.db), suggestions)
	s.router = NewRouter(s.deps)

	w = s.do(http.MethodPost, "/api/tasks/suggest", body, session)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"suggestions":[{"text":"Book venue"},{"text":"Send invites"}]}`, w.Body.String())

	s.Empty(s.listTasks(session, models.TimeframeMonthly))
}

