// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/platform/apperr"
	"github.com/taibuivan/linguaphoto/internal/platform/queue"
	"github.com/taibuivan/linguaphoto/internal/translation"
)

/*
TestDispatcher_Submit queues one job and rejects a second submission.
*/
func TestDispatcher_Submit(t *testing.T) {
	ctx := context.Background()
	jobs := queue.NewMemoryQueue(8)
	set := translation.NewMemoryInFlight()
	dispatcher := translation.NewDispatcher(set, jobs, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, dispatcher.Submit(ctx, "img-1", ownerID))

	err := dispatcher.Submit(ctx, "img-1", ownerID)
	assert.True(t, errors.Is(err, translation.ErrAlreadyInFlight))
	assert.True(t, apperr.HasCode(err, "CONFLICT"))
	assert.Equal(t, 1, jobs.Len())

	queued, err := jobs.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, queued.Token)
	assert.Equal(t, queue.Job{ImageID: "img-1", UserID: ownerID, Attempt: 1, Token: queued.Token}, *queued)

	// The queued token owns the marker.
	owned, err := set.Refresh(ctx, "img-1", queued.Token)
	require.NoError(t, err)
	assert.True(t, owned)

	held, err := set.Contains(ctx, "img-1")
	require.NoError(t, err)
	assert.True(t, held)
}

/*
TestDispatcher_EnqueueFailureReleases keeps the image submittable after a transport error.
*/
func TestDispatcher_EnqueueFailureReleases(t *testing.T) {
	ctx := context.Background()
	jobs := queue.NewMemoryQueue(1)
	require.NoError(t, jobs.Close())

	set := translation.NewMemoryInFlight()
	dispatcher := translation.NewDispatcher(set, jobs, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := dispatcher.Submit(ctx, "img-1", ownerID)
	assert.ErrorIs(t, err, queue.ErrClosed)

	held, err := set.Contains(ctx, "img-1")
	require.NoError(t, err)
	assert.False(t, held)
}
