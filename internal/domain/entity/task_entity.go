package entity

import (
	"time"
)

// Task stages and priorities are stored lowercase.
const (
	StageTodo       = "todo"
	StageInProgress = "in progress"
	StageCompleted  = "completed"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityNormal = "normal"
	PriorityLow    = "low"
)

type SubTask struct {
	ID          string
	TaskID      string
	Title       string
	Tag         string
	Date        time.Time
	IsCompleted bool
}

// Activity is an append-only log entry on a task.
type Activity struct {
	ID       string
	TaskID   string
	Type     string // assigned, started, in progress, bug, completed, commented
	Activity string
	ByUserID string
	ByName   string
	Date     time.Time
}

type Task struct {
	ID          string
	Title       string
	Date        time.Time
	Priority    string
	Stage       string
	Description string
	Assets      []string
	Links       []string
	IsTrashed   bool
	Team        []TeamMember
	SubTasks    []SubTask
	Activities  []Activity
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamMember is the projection of a user embedded in task responses.
type TeamMember struct {
	ID    string
	Name  string
	Title string
	Role  string
	Email string
}
