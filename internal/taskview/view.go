// Package taskview keeps a local copy of a user's tasks and applies toggle and
// reorder optimistically, falling back to the server's list on failure.
package taskview

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yukikurage/task-sphere/internal/dto"
	"github.com/yukikurage/task-sphere/internal/models"
)

// ErrUnknownTask is returned for ids that are not in the local cache.
var ErrUnknownTask = errors.New("task not in view")

// API is the subset of the HTTP client the view drives.
type API interface {
	ListTasks(ctx context.Context, timeframe *models.Timeframe) ([]dto.TaskDTO, error)
	CreateTask(ctx context.Context, text string, timeframe models.Timeframe) (*dto.TaskDTO, error)
	UpdateTask(ctx context.Context, id string, req dto.UpdateTaskRequest) (*dto.TaskDTO, error)
	DeleteTask(ctx context.Context, id string) error
	ReorderTasks(ctx context.Context, timeframe models.Timeframe, ids []string) (int64, error)
}

// State tags a cached task with how it relates to the server.
type State int

const (
	// Committed tasks match what the server last returned.
	Committed State = iota
	// Pending tasks carry a local change the server has not confirmed yet.
	Pending
	// Reverted tasks had a change rejected and were reloaded from the server,
	// or restored to their last known state when the reload failed too.
	Reverted
)

func (s State) String() string {
	switch s {
	case Committed:
		return "committed"
	case Pending:
		return "pending"
	case Reverted:
		return "reverted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Entry is one cached task.
type Entry struct {
	Task  dto.TaskDTO
	State State
}

// View is safe for concurrent use. Network calls are made without holding
// the lock.
type View struct {
	api API

	mu      sync.Mutex
	entries map[string]*Entry
}

func New(api API) *View {
	return &View{
		api:     api,
		entries: make(map[string]*Entry),
	}
}

// Refresh replaces the cache with the server's list.
func (v *View) Refresh(ctx context.Context) error {
	tasks, err := v.api.ListTasks(ctx, nil)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	entries := make(map[string]*Entry, len(tasks))
	for _, task := range tasks {
		entries[task.ID] = &Entry{Task: task, State: Committed}
	}

	v.mu.Lock()
	v.entries = entries
	v.mu.Unlock()
	return nil
}

// Visible returns the timeframe's tasks ordered by position.
func (v *View) Visible(timeframe models.Timeframe) []Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked(timeframe)
}

// Get returns the cached entry for id.
func (v *View) Get(id string) (Entry, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	e, ok := v.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Toggle flips completed locally, then asks the server to do the same.
func (v *View) Toggle(ctx context.Context, id string) error {
	v.mu.Lock()
	e, ok := v.entries[id]
	if !ok {
		v.mu.Unlock()
		return ErrUnknownTask
	}
	before := map[string]Entry{id: *e}
	e.Task.Completed = !e.Task.Completed
	e.State = Pending
	completed := e.Task.Completed
	v.mu.Unlock()

	updated, err := v.api.UpdateTask(ctx, id, dto.UpdateTaskRequest{Completed: &completed})
	if err != nil {
		return v.resync(ctx, err, before)
	}

	v.commit(*updated)
	return nil
}

// MoveTo moves a task to index within its timeframe and persists the full
// resulting order. index is clamped to the bucket.
func (v *View) MoveTo(ctx context.Context, id string, index int) error {
	v.mu.Lock()
	e, ok := v.entries[id]
	if !ok {
		v.mu.Unlock()
		return ErrUnknownTask
	}
	timeframe := e.Task.Timeframe

	visible := v.visibleLocked(timeframe)
	ids := make([]string, 0, len(visible))
	for _, entry := range visible {
		if entry.Task.ID != id {
			ids = append(ids, entry.Task.ID)
		}
	}
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	ids = append(ids[:index], append([]string{id}, ids[index:]...)...)

	before := make(map[string]Entry, len(ids))
	for pos, taskID := range ids {
		entry := v.entries[taskID]
		before[taskID] = *entry
		entry.Task.Position = pos
		entry.State = Pending
	}
	v.mu.Unlock()

	if _, err := v.api.ReorderTasks(ctx, timeframe, ids); err != nil {
		return v.resync(ctx, err, before)
	}

	v.mu.Lock()
	for _, taskID := range ids {
		if entry, ok := v.entries[taskID]; ok {
			entry.State = Committed
		}
	}
	v.mu.Unlock()
	return nil
}

// Add creates a task on the server and caches the result.
func (v *View) Add(ctx context.Context, text string, timeframe models.Timeframe) (*dto.TaskDTO, error) {
	task, err := v.api.CreateTask(ctx, text, timeframe)
	if err != nil {
		return nil, err
	}

	v.commit(*task)
	return task, nil
}

// Edit replaces a task's text on the server and caches the result.
func (v *View) Edit(ctx context.Context, id, text string) (*dto.TaskDTO, error) {
	task, err := v.api.UpdateTask(ctx, id, dto.UpdateTaskRequest{Text: &text})
	if err != nil {
		return nil, err
	}

	v.commit(*task)
	return task, nil
}

// Remove deletes a task on the server, then drops it from the cache.
func (v *View) Remove(ctx context.Context, id string) error {
	if err := v.api.DeleteTask(ctx, id); err != nil {
		return err
	}

	v.mu.Lock()
	delete(v.entries, id)
	v.mu.Unlock()
	return nil
}

func (v *View) commit(task dto.TaskDTO) {
	v.mu.Lock()
	v.entries[task.ID] = &Entry{Task: task, State: Committed}
	v.mu.Unlock()
}

// resync reloads from the server after a rejected optimistic change and tags
// the affected tasks Reverted. If the reload fails as well, the entries in
// before are put back as they were. cause is always returned.
func (v *View) resync(ctx context.Context, cause error, before map[string]Entry) error {
	refreshErr := v.Refresh(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	for id, prev := range before {
		entry, ok := v.entries[id]
		if !ok {
			continue
		}
		if refreshErr != nil {
			*entry = prev
		}
		entry.State = Reverted
	}

	if refreshErr != nil {
		return fmt.Errorf("%w (resync failed: %v)", cause, refreshErr)
	}
	return cause
}

func (v *View) visibleLocked(timeframe models.Timeframe) []Entry {
	out := make([]Entry, 0, len(v.entries))
	for _, e := range v.entries {
		if e.Task.Timeframe == timeframe {
			out = append(out, *e)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Task.Position != out[j].Task.Position {
			return out[i].Task.Position < out[j].Task.Position
		}
		return out[i].Task.CreatedAt.Before(out[j].Task.CreatedAt)
	})
	return out
}
