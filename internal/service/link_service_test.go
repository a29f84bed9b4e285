package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"go-wbs-tracker/internal/event"
	"go-wbs-tracker/internal/model"
	"go-wbs-tracker/internal/repository"
)

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func TestLinkCreatePublishesEvent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bus := &recorderBus{}
	svc := NewLinkService(repository.NewMemoryLinkRepository(), bus)

	created, err := svc.Create(ctx, model.CreateLinkRequest{
		SourceTaskID: int64Ptr(1),
		TargetTaskID: int64Ptr(2),
		LinkType:     intPtr(model.LinkFinishToStart),
	})
	require.NoError(t, err)
	require.NotZero(t, created.LinkID)

	events := bus.recorded()
	require.Len(t, events, 1)
	require.Equal(t, event.TypeLinkCreated, events[0].Type)
	require.Equal(t, created, events[0].Payload)
}

func TestLinkCreateValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bus := &recorderBus{}
	svc := NewLinkService(repository.NewMemoryLinkRepository(), bus)

	t.Run("missing endpoints", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CreateLinkRequest{SourceTaskID: int64Ptr(1)})
		requireInvalidInput(t, err)
	})

	t.Run("unknown link type", func(t *testing.T) {
		_, err := svc.Create(ctx, model.CreateLinkRequest{
			SourceTaskID: int64Ptr(1),
			TargetTaskID: int64Ptr(2),
			LinkType:     intPtr(7),
		})
		requireInvalidInput(t, err)
	})

	require.Empty(t, bus.recorded())
}

func TestLinkDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	bus := &recorderBus{}
	svc := NewLinkService(repository.NewMemoryLinkRepository(), bus)

	created, err := svc.Create(ctx, model.CreateLinkRequest{
		SourceTaskID: int64Ptr(1),
		TargetTaskID: int64Ptr(2),
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.LinkID)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	events := bus.recorded()
	require.Len(t, events, 2)
	require.Equal(t, event.TypeLinkDeleted, events[1].Type)
	require.Equal(t, model.DeletedLink{LinkID: created.LinkID}, events[1].Payload)

	deleted, err = svc.Delete(ctx, created.LinkID)
	require.NoError(t, err)
	require.Equal(t, int64(0), deleted)
	require.Len(t, bus.recorded(), 2)
}
