package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promanhq/proman/internal/domain/entity"
	repo "github.com/promanhq/proman/internal/domain/repository"
)

type fakeTaskRepo struct {
	byID  map[string]*entity.Task
	order []string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{byID: make(map[string]*entity.Task)}
}

func (f *fakeTaskRepo) Create(t *entity.Task, team []string) error {
	t.ID = uuid.NewString()
	for _, uid := range team {
		t.Team = append(t.Team, entity.TeamMember{ID: uid})
	}
	cp := *t
	f.byID[t.ID] = &cp
	f.order = append(f.order, t.ID)
	return nil
}

func (f *fakeTaskRepo) GetByID(id string) (*entity.Task, error) {
	t, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTaskRepo) List(fl repo.TaskFilter) ([]*entity.Task, error) {
	var out []*entity.Task
	// newest first, like the SQL ORDER BY created_at DESC
	for i := len(f.order) - 1; i >= 0; i-- {
		t := f.byID[f.order[i]]
		if t.IsTrashed != fl.IsTrashed {
			continue
		}
		if fl.Stage != "" && t.Stage != fl.Stage {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeTaskRepo) Update(t *entity.Task, team []string) error {
	old, ok := f.byID[t.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cp := *t
	cp.Team = old.Team
	if team != nil {
		cp.Team = nil
		for _, uid := range team {
			cp.Team = append(cp.Team, entity.TeamMember{ID: uid})
		}
	}
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTaskRepo) UpdateStage(id, stage string) error {
	t, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	t.Stage = stage
	return nil
}

func (f *fakeTaskRepo) SetTrashed(id string, trashed bool) error {
	t, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	t.IsTrashed = trashed
	return nil
}

func (f *fakeTaskRepo) Delete(id string) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeTaskRepo) DeleteTrashed() error {
	for id, t := range f.byID {
		if t.IsTrashed {
			delete(f.byID, id)
		}
	}
	return nil
}

func (f *fakeTaskRepo) RestoreTrashed() error {
	for _, t := range f.byID {
		t.IsTrashed = false
	}
	return nil
}

func (f *fakeTaskRepo) AddSubTask(taskID string, st *entity.SubTask) error {
	t, ok := f.byID[taskID]
	if !ok {
		return repo.ErrNotFound
	}
	st.ID = uuid.NewString()
	st.TaskID = taskID
	t.SubTasks = append(t.SubTasks, *st)
	return nil
}

func (f *fakeTaskRepo) SetSubTaskCompleted(taskID, subTaskID string, done bool) error {
	t, ok := f.byID[taskID]
	if !ok {
		return repo.ErrNotFound
	}
	for i := range t.SubTasks {
		if t.SubTasks[i].ID == subTaskID {
			t.SubTasks[i].IsCompleted = done
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *fakeTaskRepo) AddActivity(taskID string, a *entity.Activity) error {
	t, ok := f.byID[taskID]
	if !ok {
		return repo.ErrNotFound
	}
	a.ID = uuid.NewString()
	a.TaskID = taskID
	t.Activities = append(t.Activities, *a)
	return nil
}

func (f *fakeTaskRepo) AppendAsset(taskID, url string) error {
	t, ok := f.byID[taskID]
	if !ok {
		return repo.ErrNotFound
	}
	t.Assets = append(t.Assets, url)
	return nil
}

type fakeNotifRepo struct {
	created []*entity.Notification
}

func (f *fakeNotifRepo) Create(n *entity.Notification) error {
	n.ID = uuid.NewString()
	f.created = append(f.created, n)
	return nil
}

func (f *fakeNotifRepo) ListUnread(userID string) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range f.created {
		for _, uid := range n.Team {
			if uid == userID {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

func (f *fakeNotifRepo) MarkRead(userID, id string) error { return nil }
func (f *fakeNotifRepo) MarkAllRead(userID string) error  { return nil }

func newTaskFixture(t *testing.T) (*TaskService, *fakeTaskRepo, *fakeNotifRepo) {
	t.Helper()
	tasks := newFakeTaskRepo()
	notifs := &fakeNotifRepo{}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTaskService(tasks, newFakeUserRepo(), notifs, testLogger(), nil, nil, "", func() time.Time { return now })
	return svc, tasks, notifs
}

func TestCreateTaskDefaultsAndNotifies(t *testing.T) {
	svc, tasks, notifs := newTaskFixture(t)

	created, err := svc.Create(context.Background(), "admin-1", CreateTaskInput{
		Title:    "Ship the release",
		Team:     []string{"u1", "u2"},
		Stage:    "TODO",
		Priority: "HIGH",
		Date:     "2026-03-10",
		Links:    "https://a.example, https://b.example",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StageTodo, created.Stage)
	assert.Equal(t, entity.PriorityHigh, created.Priority)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, created.Links)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), created.Date)

	stored := tasks.byID[created.ID]
	require.Len(t, stored.Activities, 1)
	assert.Equal(t, "assigned", stored.Activities[0].Type)
	assert.Contains(t, stored.Activities[0].Activity, "and 1 others")

	require.Len(t, notifs.created, 1)
	assert.ElementsMatch(t, []string{"u1", "u2"}, notifs.created[0].Team)
}

func TestDuplicateTask(t *testing.T) {
	svc, tasks, _ := newTaskFixture(t)
	ctx := context.Background()

	src, err := svc.Create(ctx, "admin-1", CreateTaskInput{
		Title: "Original", Team: []string{"u1"}, Stage: "todo", Priority: "medium",
	})
	require.NoError(t, err)
	require.NoError(t, svc.AddSubTask(ctx, src.ID, "step one", "setup", ""))

	dup, err := svc.Duplicate(ctx, "admin-1", src.ID)
	require.NoError(t, err)
	assert.Equal(t, "Duplicate - Original", dup.Title)
	assert.Equal(t, src.Stage, dup.Stage)

	stored := tasks.byID[dup.ID]
	require.Len(t, stored.SubTasks, 1)
	assert.Equal(t, "step one", stored.SubTasks[0].Title)
	require.Len(t, stored.Team, 1)
	assert.Equal(t, "u1", stored.Team[0].ID)

	_, err = svc.Duplicate(ctx, "admin-1", uuid.NewString())
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestStageAndSubTaskUpdates(t *testing.T) {
	svc, tasks, _ := newTaskFixture(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "admin-1", CreateTaskInput{Title: "T", Stage: "todo", Priority: "low"})
	require.NoError(t, err)

	require.NoError(t, svc.ChangeStage(ctx, task.ID, "In Progress"))
	assert.Equal(t, entity.StageInProgress, tasks.byID[task.ID].Stage)

	require.NoError(t, svc.AddSubTask(ctx, task.ID, "sub", "tag", "2026-03-05"))
	sub := tasks.byID[task.ID].SubTasks[0]
	assert.False(t, sub.IsCompleted)

	require.NoError(t, svc.SetSubTaskCompleted(ctx, task.ID, sub.ID, true))
	assert.True(t, tasks.byID[task.ID].SubTasks[0].IsCompleted)

	assert.ErrorIs(t, svc.ChangeStage(ctx, uuid.NewString(), "todo"), ErrTaskNotFound)
	assert.ErrorIs(t, svc.AddSubTask(ctx, uuid.NewString(), "x", "", ""), ErrTaskNotFound)
}

func TestTrashDeleteRestore(t *testing.T) {
	svc, tasks, _ := newTaskFixture(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, "admin-1", CreateTaskInput{Title: "A", Stage: "todo", Priority: "low"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, "admin-1", CreateTaskInput{Title: "B", Stage: "todo", Priority: "low"})
	require.NoError(t, err)

	require.NoError(t, svc.Trash(ctx, a.ID))
	assert.True(t, tasks.byID[a.ID].IsTrashed)

	live, err := svc.List(ctx, "", false, "")
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, b.ID, live[0].ID)

	require.NoError(t, svc.DeleteRestore(ctx, a.ID, "restore"))
	assert.False(t, tasks.byID[a.ID].IsTrashed)

	require.NoError(t, svc.Trash(ctx, a.ID))
	require.NoError(t, svc.DeleteRestore(ctx, "", "deleteAll"))
	_, ok := tasks.byID[a.ID]
	assert.False(t, ok)

	require.NoError(t, svc.DeleteRestore(ctx, b.ID, "delete"))
	assert.Empty(t, tasks.byID)

	assert.Error(t, svc.DeleteRestore(ctx, "", "explode"))
}

func TestDashboardAggregates(t *testing.T) {
	svc, _, _ := newTaskFixture(t)
	ctx := context.Background()

	specs := []struct{ stage, priority string }{
		{"todo", "high"},
		{"todo", "medium"},
		{"in progress", "high"},
		{"completed", "low"},
	}
	for i, sp := range specs {
		_, err := svc.Create(ctx, "admin-1", CreateTaskInput{
			Title: "T" + uuid.NewString()[:4], Stage: sp.stage, Priority: sp.priority,
		})
		require.NoError(t, err, "task %d", i)
	}
	trashed, err := svc.Create(ctx, "admin-1", CreateTaskInput{Title: "gone", Stage: "todo", Priority: "high"})
	require.NoError(t, err)
	require.NoError(t, svc.Trash(ctx, trashed.ID))

	stats, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTasks)
	assert.Equal(t, 2, stats.Tasks["todo"])
	assert.Equal(t, 1, stats.Tasks["in progress"])
	assert.Equal(t, 1, stats.Tasks["completed"])

	// graph ordered high, medium, low with zero-count priorities omitted
	require.Len(t, stats.GraphData, 3)
	assert.Equal(t, GraphPoint{Name: "high", Total: 2}, stats.GraphData[0])
	assert.Equal(t, GraphPoint{Name: "medium", Total: 1}, stats.GraphData[1])
	assert.Equal(t, GraphPoint{Name: "low", Total: 1}, stats.GraphData[2])
}
