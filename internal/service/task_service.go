package service

import (
	"context"

	"go-wbs-tracker/internal/event"
	"go-wbs-tracker/internal/model"
	"go-wbs-tracker/pkg/apierror"
)

// TaskStore is the durable task store surface. Update of an absent id
// returns (nil, nil); Delete returns the number of rows removed.
type TaskStore interface {
	List(ctx context.Context) ([]model.Task, error)
	Insert(ctx context.Context, t model.Task) (model.Task, error)
	Update(ctx context.Context, id int64, patch model.UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type TaskService struct {
	store TaskStore
	bus   event.Bus
}

func NewTaskService(store TaskStore, bus event.Bus) *TaskService {
	return &TaskService{store: store, bus: bus}
}

func (s *TaskService) List(ctx context.Context) ([]model.Task, error) {
	return s.store.List(ctx)
}

// Create validates and inserts a task, then notifies listeners. The
// event is published only after the insert has committed.
func (s *TaskService) Create(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	if err := validateTaskFields(req.ProgressPercent, optionalStatus(req.Status)); err != nil {
		return model.Task{}, err
	}
	if req.TaskName == "" || req.MajorCategory == "" || req.SubCategory == "" ||
		req.Assignee == "" || req.PlannedStartDate == "" || req.PlannedEndDate == "" ||
		req.Status == "" {
		return model.Task{}, apierror.BadRequest("Missing required task fields")
	}

	task := model.Task{
		TaskName:         req.TaskName,
		MajorCategory:    req.MajorCategory,
		SubCategory:      req.SubCategory,
		Assignee:         req.Assignee,
		PlannedStartDate: req.PlannedStartDate,
		PlannedEndDate:   req.PlannedEndDate,
		ActualStartDate:  req.ActualStartDate,
		ActualEndDate:    req.ActualEndDate,
		Status:           req.Status,
		ParentTaskID:     req.ParentTaskID,
	}
	if req.ProgressPercent != nil {
		task.ProgressPercent = int(*req.ProgressPercent)
	}
	if req.SortOrder != nil {
		task.SortOrder = *req.SortOrder
	}

	created, err := s.store.Insert(ctx, task)
	if err != nil {
		return model.Task{}, err
	}

	s.bus.Publish(event.Event{Type: event.TypeTaskCreated, Payload: created})
	return created, nil
}

// Update applies a partial update. Updating an absent id is a no-op
// success: it returns nil and publishes nothing.
func (s *TaskService) Update(ctx context.Context, id int64, patch model.UpdateTaskRequest) (*model.Task, error) {
	if err := validateTaskFields(patch.ProgressPercent, patch.Status); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apierror.BadRequest("No fields to update")
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	s.bus.Publish(event.Event{Type: event.TypeTaskUpdated, Payload: *updated})
	return updated, nil
}

// Delete removes a task and reports how many rows went away. Children
// of a deleted parent keep their dangling parent reference; see the
// schema notes.
func (s *TaskService) Delete(ctx context.Context, id int64) (int64, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.bus.Publish(event.Event{Type: event.TypeTaskDeleted, Payload: model.DeletedTask{TaskID: id}})
	}
	return deleted, nil
}

func optionalStatus(status string) *string {
	if status == "" {
		return nil
	}
	return &status
}

func validateTaskFields(progress *float64, status *string) error {
	if progress != nil && (*progress < 0 || *progress > 100) {
		return apierror.BadRequest("Invalid progress_percent")
	}
	if status != nil && !model.IsAllowedStatus(*status) {
		return apierror.BadRequest("Invalid status")
	}
	return nil
}
