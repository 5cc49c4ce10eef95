package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/mocks"
)

func TestCalendarService_Range(t *testing.T) {
	now := time.Date(2026, 5, 14, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("defaults to current month", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockEventRepository(ctrl)
		svc := NewCalendarService(repo, func() time.Time { return now })

		repo.EXPECT().ListRange(ctx, model.EventRange{
			OwnerID: ownerA,
			From:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			To:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		}).Return([]*model.CalendarEvent{{ID: "e1"}}, nil)

		events, err := svc.Range(ctx, model.EventRange{OwnerID: ownerA})
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("open ended window gets one month", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockEventRepository(ctrl)
		svc := NewCalendarService(repo, func() time.Time { return now })
		from := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

		repo.EXPECT().ListRange(ctx, model.EventRange{OwnerID: ownerA, From: from, To: from.AddDate(0, 1, 0)}).Return(nil, nil)
		_, err := svc.Range(ctx, model.EventRange{OwnerID: ownerA, From: from})
		require.NoError(t, err)
	})

	t.Run("rejects inverted and oversized windows", func(t *testing.T) {
		svc := NewCalendarService(mocks.NewMockEventRepository(gomock.NewController(t)), nil)
		_, err := svc.Range(ctx, model.EventRange{OwnerID: ownerA, From: now, To: now})
		assert.True(t, apperrors.IsValidation(err))

		_, err = svc.Range(ctx, model.EventRange{OwnerID: ownerA, From: now, To: now.AddDate(2, 0, 0)})
		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestCalendarService_CreateAndDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockEventRepository(ctrl)
	svc := NewCalendarService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "", &model.CreateEventRequest{})
	assert.True(t, apperrors.IsUnauthorized(err))

	repo.EXPECT().Delete(ctx, "e1", ownerA).Return(true, nil)
	assert.NoError(t, svc.Delete(ctx, "e1", ownerA))
}
