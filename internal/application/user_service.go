package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/promanhq/proman/internal/domain/entity"
	repo "github.com/promanhq/proman/internal/domain/repository"
	"github.com/promanhq/proman/pkg/helpers"
)

// UserService covers team administration: listing, profile updates,
// password changes, activation toggling, deletion, and notifications.
// Elasticsearch is optional; when unconfigured, team search falls back
// to the repository's SQL filter.
type UserService struct {
	Repo         repo.UserRepository
	Notifs       repo.NotificationRepository
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
}

func NewUserService(r repo.UserRepository, n repo.NotificationRepository, logger *logrus.Logger, es *elasticsearch.Client, esUsersIndex string) *UserService {
	return &UserService{Repo: r, Notifs: n, Logger: logger, ES: es, ESUsersIndex: esUsersIndex}
}

// GetTeam lists users, optionally filtered by a search term over name,
// title, role, and email.
func (s *UserService) GetTeam(ctx context.Context, search string) ([]*entity.User, error) {
	if search != "" && s.ES != nil && s.ESUsersIndex != "" {
		if users, err := s.searchTeamES(ctx, search); err == nil {
			return users, nil
		} else if s.Logger != nil {
			s.Logger.WithError(err).Warn("es team search failed, falling back to sql")
		}
	}
	return s.Repo.List(search)
}

type UpdateProfileInput struct {
	TargetID string // empty means self
	Name     string
	Title    string
	Role     string
}

// UpdateProfile edits profile fields. Admins may edit any user; others
// can only edit themselves.
func (s *UserService) UpdateProfile(ctx context.Context, actorID string, actorIsAdmin bool, in UpdateProfileInput) (*entity.User, error) {
	id := actorID
	if actorIsAdmin && in.TargetID != "" {
		id = in.TargetID
	}

	u, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if in.Name != "" {
		u.Name = in.Name
	}
	if in.Title != "" {
		u.Title = in.Title
	}
	if in.Role != "" {
		u.Role = in.Role
	}
	if err := s.Repo.Update(u); err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, newPassword string) error {
	if _, err := s.Repo.GetByID(userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(userID, hash)
}

// SetActive activates or deactivates an account (admin operation).
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*entity.User, error) {
	u, err := s.Repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := s.Repo.SetActive(id, active); err != nil {
		return nil, err
	}
	u.IsActive = active
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(id)
}

func (s *UserService) Notifications(ctx context.Context, userID string) ([]*entity.Notification, error) {
	return s.Notifs.ListUnread(userID)
}

// MarkNotificationRead marks one notification (or all with id=="") read
// for the user.
func (s *UserService) MarkNotificationRead(ctx context.Context, userID, id string, all bool) error {
	if all {
		return s.Notifs.MarkAllRead(userID)
	}
	return s.Notifs.MarkRead(userID, id)
}

func (s *UserService) searchTeamES(ctx context.Context, q string) ([]*entity.User, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"name^2", "email", "title", "role"},
			},
		},
		"size": 50,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.New("es search: " + res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string `json:"_id"`
				Source struct {
					Name     string `json:"name"`
					Email    string `json:"email"`
					Title    string `json:"title"`
					Role     string `json:"role"`
					IsActive bool   `json:"is_active"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]*entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, &entity.User{
			ID:       h.ID,
			Name:     h.Source.Name,
			Email:    h.Source.Email,
			Title:    h.Source.Title,
			Role:     h.Source.Role,
			IsActive: h.Source.IsActive,
		})
	}
	return out, nil
}

// indexUser mirrors the latest profile into the users index; failures
// are logged and swallowed since the SQL store is authoritative.
func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"name":      u.Name,
		"email":     u.Email,
		"title":     u.Title,
		"role":      u.Role,
		"is_active": u.IsActive,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}
