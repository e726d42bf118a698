package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/promanhq/proman/internal/domain/entity"
	repo "github.com/promanhq/proman/internal/domain/repository"
	"github.com/promanhq/proman/pkg/helpers"
	"github.com/promanhq/proman/pkg/mailer"
)

// TaskService implements task CRUD with sub-tasks, activity logs,
// notification fan-out, dashboard statistics, and GCS asset uploads.
// The RabbitMQ publisher and GCS client are optional; when nil the
// corresponding side effects are skipped.
type TaskService struct {
	Tasks     repo.TaskRepository
	Users     repo.UserRepository
	Notifs    repo.NotificationRepository
	Logger    *logrus.Logger
	Pub       *helpers.RabbitPublisher
	GCS       *storage.Client
	GCSBucket string
	Clock     helpers.Clock
}

func NewTaskService(tasks repo.TaskRepository, users repo.UserRepository, notifs repo.NotificationRepository, logger *logrus.Logger, pub *helpers.RabbitPublisher, gcs *storage.Client, gcsBucket string, clock helpers.Clock) *TaskService {
	if clock == nil {
		clock = helpers.SystemClock
	}
	return &TaskService{Tasks: tasks, Users: users, Notifs: notifs, Logger: logger, Pub: pub, GCS: gcs, GCSBucket: gcsBucket, Clock: clock}
}

type CreateTaskInput struct {
	Title       string
	Team        []string
	Stage       string
	Date        string
	Priority    string
	Assets      []string
	Links       string // comma separated, as submitted by the client
	Description string
}

func (s *TaskService) Create(ctx context.Context, actorID string, in CreateTaskInput) (*entity.Task, error) {
	text := "New task has been assigned to you"
	if len(in.Team) > 1 {
		text += fmt.Sprintf(" and %d others", len(in.Team)-1)
	}
	text += fmt.Sprintf(". The task priority is set a %s priority, so check and act accordingly. The task date is %s. Thank you!!!",
		strings.ToLower(in.Priority), in.Date)

	t := &entity.Task{
		Title:       in.Title,
		Priority:    strings.ToLower(in.Priority),
		Stage:       strings.ToLower(in.Stage),
		Description: in.Description,
		Assets:      in.Assets,
		Links:       splitLinks(in.Links),
		Date:        s.Clock(),
	}
	if in.Date != "" {
		if d, err := parseDate(in.Date); err == nil {
			t.Date = d
		}
	}

	if err := s.Tasks.Create(t, in.Team); err != nil {
		return nil, err
	}
	if err := s.Tasks.AddActivity(t.ID, &entity.Activity{
		Type:     "assigned",
		Activity: text,
		ByUserID: actorID,
		Date:     s.Clock(),
	}); err != nil {
		return nil, err
	}

	s.notifyTeam(ctx, t, in.Team, text)
	return t, nil
}

// Duplicate copies a task (title prefixed) together with its team and
// sub-tasks, then fans out assignment notifications again.
func (s *TaskService) Duplicate(ctx context.Context, actorID, id string) (*entity.Task, error) {
	src, err := s.Tasks.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	team := make([]string, 0, len(src.Team))
	for _, m := range src.Team {
		team = append(team, m.ID)
	}

	text := fmt.Sprintf("New task has been assigned to you. The task priority is set a %s priority, so check and act accordingly. The task date is %s. Thank you!!!",
		src.Priority, src.Date.Format("Mon Jan 2 2006"))

	dup := &entity.Task{
		Title:       "Duplicate - " + src.Title,
		Date:        src.Date,
		Priority:    src.Priority,
		Stage:       src.Stage,
		Description: src.Description,
		Assets:      src.Assets,
		Links:       src.Links,
	}
	if err := s.Tasks.Create(dup, team); err != nil {
		return nil, err
	}
	for _, st := range src.SubTasks {
		sub := st
		if err := s.Tasks.AddSubTask(dup.ID, &sub); err != nil {
			return nil, err
		}
	}
	if err := s.Tasks.AddActivity(dup.ID, &entity.Activity{
		Type:     "assigned",
		Activity: text,
		ByUserID: actorID,
		Date:     s.Clock(),
	}); err != nil {
		return nil, err
	}

	s.notifyTeam(ctx, dup, team, text)
	return dup, nil
}

type UpdateTaskInput struct {
	Title       string
	Team        []string
	Stage       string
	Date        string
	Priority    string
	Assets      []string
	Links       string
	Description string
}

func (s *TaskService) Update(ctx context.Context, id string, in UpdateTaskInput) error {
	t, err := s.Tasks.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	t.Title = in.Title
	t.Priority = strings.ToLower(in.Priority)
	t.Stage = strings.ToLower(in.Stage)
	t.Assets = in.Assets
	t.Links = splitLinks(in.Links)
	t.Description = in.Description
	if in.Date != "" {
		if d, err := parseDate(in.Date); err == nil {
			t.Date = d
		}
	}
	return s.Tasks.Update(t, in.Team)
}

func (s *TaskService) ChangeStage(ctx context.Context, id, stage string) error {
	if err := s.Tasks.UpdateStage(id, strings.ToLower(stage)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) AddSubTask(ctx context.Context, taskID, title, tag, date string) error {
	st := &entity.SubTask{Title: title, Tag: tag, Date: s.Clock()}
	if date != "" {
		if d, err := parseDate(date); err == nil {
			st.Date = d
		}
	}
	if err := s.Tasks.AddSubTask(taskID, st); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) SetSubTaskCompleted(ctx context.Context, taskID, subTaskID string, done bool) error {
	if err := s.Tasks.SetSubTaskCompleted(taskID, subTaskID, done); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) List(ctx context.Context, stage string, trashed bool, search string) ([]*entity.Task, error) {
	return s.Tasks.List(repo.TaskFilter{Stage: strings.ToLower(stage), IsTrashed: trashed, Search: search})
}

func (s *TaskService) Get(ctx context.Context, id string) (*entity.Task, error) {
	t, err := s.Tasks.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TaskService) PostActivity(ctx context.Context, taskID, actorID, actType, text string) error {
	if err := s.Tasks.AddActivity(taskID, &entity.Activity{
		Type:     actType,
		Activity: text,
		ByUserID: actorID,
		Date:     s.Clock(),
	}); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

func (s *TaskService) Trash(ctx context.Context, id string) error {
	if err := s.Tasks.SetTrashed(id, true); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTaskNotFound
		}
		return err
	}
	return nil
}

// DeleteRestore performs one of: delete, deleteAll, restore, restoreAll.
func (s *TaskService) DeleteRestore(ctx context.Context, id, actionType string) error {
	switch actionType {
	case "delete":
		return s.Tasks.Delete(id)
	case "deleteAll":
		return s.Tasks.DeleteTrashed()
	case "restore":
		if err := s.Tasks.SetTrashed(id, false); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		return nil
	case "restoreAll":
		return s.Tasks.RestoreTrashed()
	default:
		return fmt.Errorf("unknown action type %q", actionType)
	}
}

type GraphPoint struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

type DashboardStats struct {
	TotalTasks int            `json:"totalTasks"`
	Last10Task []*entity.Task `json:"last10Task"`
	Users      []*entity.User `json:"users"`
	Tasks      map[string]int `json:"tasks"`
	GraphData  []GraphPoint   `json:"graphData"`
}

// Dashboard aggregates non-trashed tasks by stage and priority plus the
// latest tasks and active users.
func (s *TaskService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	all, err := s.Tasks.List(repo.TaskFilter{IsTrashed: false})
	if err != nil {
		return nil, err
	}
	users, err := s.Users.ListActive(10)
	if err != nil {
		return nil, err
	}

	byStage := make(map[string]int)
	byPriority := make(map[string]int)
	for _, t := range all {
		byStage[t.Stage]++
		byPriority[t.Priority]++
	}
	graph := make([]GraphPoint, 0, len(byPriority))
	for _, p := range []string{entity.PriorityHigh, entity.PriorityMedium, entity.PriorityNormal, entity.PriorityLow} {
		if n, ok := byPriority[p]; ok {
			graph = append(graph, GraphPoint{Name: p, Total: n})
		}
	}

	last := all
	if len(last) > 10 {
		last = last[:10]
	}
	return &DashboardStats{
		TotalTasks: len(all),
		Last10Task: last,
		Users:      users,
		Tasks:      byStage,
		GraphData:  graph,
	}, nil
}

// UploadAsset stores a file in the GCS bucket and appends its public URL
// to the task's assets.
func (s *TaskService) UploadAsset(ctx context.Context, taskID, filename, contentType string, r io.Reader) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("asset storage not configured")
	}
	if _, err := s.Tasks.GetByID(taskID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrTaskNotFound
		}
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("tasks", taskID, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	if err := s.Tasks.AppendAsset(taskID, url); err != nil {
		return "", err
	}
	return url, nil
}

// notifyTeam records an in-app notification and, when the publisher is
// wired, queues assignment emails for the worker to deliver.
func (s *TaskService) notifyTeam(ctx context.Context, t *entity.Task, team []string, text string) {
	if err := s.Notifs.Create(&entity.Notification{
		TaskID:   t.ID,
		Text:     text,
		NotiType: "alert",
		Team:     team,
	}); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("task_id", t.ID).Warn("notification create failed")
	}

	if s.Pub == nil {
		return
	}
	for _, uid := range team {
		u, err := s.Users.GetByID(uid)
		if err != nil {
			continue
		}
		job := mailer.EmailJob{
			To:       u.Email,
			Template: "task_assigned",
			Data: map[string]any{
				"Name":      u.Name,
				"Text":      text,
				"TaskTitle": t.Title,
				"Priority":  t.Priority,
				"DueDate":   t.Date.Format("Mon Jan 2 2006"),
			},
		}
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", uid).Warn("assignment email enqueue failed")
		}
	}
}

// parseDate accepts the formats the SPA submits for task dates.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02T15:04"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func splitLinks(links string) []string {
	if strings.TrimSpace(links) == "" {
		return nil
	}
	parts := strings.Split(links, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
