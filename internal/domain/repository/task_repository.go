package repository

import "github.com/promanhq/proman/internal/domain/entity"

// TaskFilter narrows List results. Stage and Search are optional.
type TaskFilter struct {
	Stage     string
	IsTrashed bool
	Search    string
}

type TaskRepository interface {
	Create(t *entity.Task, team []string) error
	GetByID(id string) (*entity.Task, error)
	List(f TaskFilter) ([]*entity.Task, error)
	Update(t *entity.Task, team []string) error
	UpdateStage(id, stage string) error
	SetTrashed(id string, trashed bool) error
	Delete(id string) error
	DeleteTrashed() error
	RestoreTrashed() error

	AddSubTask(taskID string, st *entity.SubTask) error
	SetSubTaskCompleted(taskID, subTaskID string, done bool) error
	AddActivity(taskID string, a *entity.Activity) error
	AppendAsset(taskID, url string) error
}
