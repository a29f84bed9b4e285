package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go-wbs-tracker/internal/model"
)

// In-memory implementations of the store interfaces. They mirror the
// Postgres repositories' semantics (ordering, lazy token expiry, no-op
// updates of absent rows) and back the unit tests, which must not
// depend on a running database.

type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]model.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: map[int64]model.User{}}
}

func (r *MemoryUserRepository) Create(_ context.Context, username string, passwordHash string) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username {
			return model.User{}, model.ErrUserAlreadyExists
		}
	}

	r.nextID++
	u := model.User{
		ID:           r.nextID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[u.ID] = u
	return u, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, model.ErrUserNotFound
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

type storedToken struct {
	userID    int64
	expiresAt time.Time
}

type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]storedToken
}

func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{tokens: map[string]storedToken{}}
}

func (r *MemoryTokenRepository) Store(_ context.Context, token string, userID int64, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = storedToken{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *MemoryTokenRepository) Lookup(_ context.Context, token string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tokens[token]
	if !ok || !t.expiresAt.After(time.Now()) {
		return 0, model.ErrTokenNotFound
	}
	return t.userID, nil
}

func (r *MemoryTokenRepository) Delete(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, token)
	return nil
}

func (r *MemoryTokenRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	now := time.Now()
	for token, t := range r.tokens {
		if !t.expiresAt.After(now) {
			delete(r.tokens, token)
			removed++
		}
	}
	return removed, nil
}

type MemoryTaskRepository struct {
	mu     sync.RWMutex
	nextID int64
	tasks  map[int64]model.Task
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{tasks: map[int64]model.Task{}}
}

func (r *MemoryTaskRepository) List(_ context.Context) ([]model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		tasks = append(tasks, t)
	}

	sort.Slice(tasks, func(i, j int) bool {
		pi, pj := tasks[i].ParentTaskID, tasks[j].ParentTaskID
		switch {
		case pi == nil && pj != nil:
			return true
		case pi != nil && pj == nil:
			return false
		case pi != nil && pj != nil && *pi != *pj:
			return *pi < *pj
		}
		if tasks[i].SortOrder != tasks[j].SortOrder {
			return tasks[i].SortOrder < tasks[j].SortOrder
		}
		return tasks[i].TaskID < tasks[j].TaskID
	})
	return tasks, nil
}

func (r *MemoryTaskRepository) Insert(_ context.Context, t model.Task) (model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	t.TaskID = r.nextID
	r.tasks[t.TaskID] = t
	return t, nil
}

func (r *MemoryTaskRepository) Update(_ context.Context, id int64, patch model.UpdateTaskRequest) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if patch.Empty() {
		return nil, fmt.Errorf("update task: no fields to set")
	}

	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}

	if patch.TaskName != nil {
		t.TaskName = *patch.TaskName
	}
	if patch.MajorCategory != nil {
		t.MajorCategory = *patch.MajorCategory
	}
	if patch.SubCategory != nil {
		t.SubCategory = *patch.SubCategory
	}
	if patch.Assignee != nil {
		t.Assignee = *patch.Assignee
	}
	if patch.PlannedStartDate != nil {
		t.PlannedStartDate = *patch.PlannedStartDate
	}
	if patch.PlannedEndDate != nil {
		t.PlannedEndDate = *patch.PlannedEndDate
	}
	if patch.ActualStartDate != nil {
		t.ActualStartDate = patch.ActualStartDate
	}
	if patch.ActualEndDate != nil {
		t.ActualEndDate = patch.ActualEndDate
	}
	if patch.ProgressPercent != nil {
		t.ProgressPercent = int(*patch.ProgressPercent)
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.ParentTaskID != nil {
		t.ParentTaskID = patch.ParentTaskID
	}
	if patch.SortOrder != nil {
		t.SortOrder = *patch.SortOrder
	}

	r.tasks[id] = t
	return &t, nil
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return 0, nil
	}
	delete(r.tasks, id)
	return 1, nil
}

type MemoryLinkRepository struct {
	mu     sync.RWMutex
	nextID int64
	links  map[int64]model.Link
}

func NewMemoryLinkRepository() *MemoryLinkRepository {
	return &MemoryLinkRepository{links: map[int64]model.Link{}}
}

func (r *MemoryLinkRepository) List(_ context.Context) ([]model.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	links := make([]model.Link, 0, len(r.links))
	for _, l := range r.links {
		links = append(links, l)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].LinkID < links[j].LinkID })
	return links, nil
}

func (r *MemoryLinkRepository) Insert(_ context.Context, l model.Link) (model.Link, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	l.LinkID = r.nextID
	r.links[l.LinkID] = l
	return l, nil
}

func (r *MemoryLinkRepository) Delete(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[id]; !ok {
		return 0, nil
	}
	delete(r.links, id)
	return 1, nil
}
