package service

import (
	"context"

	"go-wbs-tracker/internal/event"
	"go-wbs-tracker/internal/model"
	"go-wbs-tracker/pkg/apierror"
)

// LinkStore is the durable dependency-link store surface.
type LinkStore interface {
	List(ctx context.Context) ([]model.Link, error)
	Insert(ctx context.Context, l model.Link) (model.Link, error)
	Delete(ctx context.Context, id int64) (int64, error)
}

type LinkService struct {
	store LinkStore
	bus   event.Bus
}

func NewLinkService(store LinkStore, bus event.Bus) *LinkService {
	return &LinkService{store: store, bus: bus}
}

func (s *LinkService) List(ctx context.Context) ([]model.Link, error) {
	return s.store.List(ctx)
}

// Create inserts a dependency link between two tasks. No cycle
// detection is attempted.
func (s *LinkService) Create(ctx context.Context, req model.CreateLinkRequest) (model.Link, error) {
	if req.SourceTaskID == nil || req.TargetTaskID == nil {
		return model.Link{}, apierror.BadRequest("source_task_id and target_task_id required")
	}

	link := model.Link{
		SourceTaskID: *req.SourceTaskID,
		TargetTaskID: *req.TargetTaskID,
	}
	if req.LinkType != nil {
		if !model.IsAllowedLinkType(*req.LinkType) {
			return model.Link{}, apierror.BadRequest("Invalid link_type")
		}
		link.LinkType = *req.LinkType
	}

	created, err := s.store.Insert(ctx, link)
	if err != nil {
		return model.Link{}, err
	}

	s.bus.Publish(event.Event{Type: event.TypeLinkCreated, Payload: created})
	return created, nil
}

func (s *LinkService) Delete(ctx context.Context, id int64) (int64, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.bus.Publish(event.Event{Type: event.TypeLinkDeleted, Payload: model.DeletedLink{LinkID: id}})
	}
	return deleted, nil
}
