// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/ai"
	"github.com/taibuivan/linguaphoto/internal/library/image"
	"github.com/taibuivan/linguaphoto/internal/platform/queue"
	"github.com/taibuivan/linguaphoto/internal/translation"
)

func job(imageID string) queue.Job {
	return queue.Job{ImageID: imageID, UserID: ownerID, Attempt: 1}
}

/*
TestRun_Greeting covers the single-segment example end to end.
*/
func TestRun_Greeting(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "img-1", "/photo.png")
	h.transcriber.result = []ai.Transcription{{Text: "你好", Pinyin: "nǐ hǎo", Translation: "Hello"}}

	outcome, err := h.workflow.Run(context.Background(), job("img-1"))
	require.NoError(t, err)
	assert.Equal(t, translation.OutcomeCompleted, outcome)

	// The downloaded bytes and their type reach the transcriber.
	assert.Equal(t, []string{"image/png:" + string(photoBytes)}, h.transcriber.seen)

	stored := h.load(t, "img-1")
	assert.True(t, stored.IsTranslated)
	require.Len(t, stored.Transcriptions, 1)

	segment := stored.Transcriptions[0]
	assert.Equal(t, "你好", segment.Text)
	assert.Equal(t, "nǐ hǎo", segment.Pinyin)
	assert.Equal(t, "Hello", segment.Translation)
	assert.NotEmpty(t, segment.AudioURL)
	assert.Regexp(t, `^[0-9a-f-]{36}\.mp3$`, segment.AudioKey)
	assert.Equal(t, h.source.URL+"/"+segment.AudioKey, segment.AudioURL)

	audio, contentType, found := h.objects.Object(segment.AudioKey)
	require.True(t, found)
	assert.Equal(t, "mp3:你好", string(audio))
	assert.Equal(t, "audio/mpeg", contentType)

	delivered := h.notifier.For(ownerID)
	require.Len(t, delivered, 1)
	pushed := delivered[0].(*image.Image)
	assert.True(t, pushed.IsTranslated)
	assert.Equal(t, stored.Transcriptions, pushed.Transcriptions)
}

/*
TestRun_SegmentsInOrder yields one signed clip per segment, in reading order.
*/
func TestRun_SegmentsInOrder(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "img-1", "/photo.png")
	h.transcriber.result = []ai.Transcription{
		{Text: "我在找工作", Pinyin: "wǒ zài zhǎo gōngzuò", Translation: "I am looking for a job."},
		{Text: "我找到了工作", Pinyin: "wǒ zhǎodào le gōngzuò", Translation: "I found a job."},
		{Text: "谢谢", Pinyin: "xièxie", Translation: "Thanks"},
	}

	outcome, err := h.workflow.Run(context.Background(), job("img-1"))
	require.NoError(t, err)
	assert.Equal(t, translation.OutcomeCompleted, outcome)

	stored := h.load(t, "img-1")
	require.Len(t, stored.Transcriptions, 3)
	for index, segment := range stored.Transcriptions {
		assert.Equal(t, h.transcriber.result[index].Text, segment.Text)
		assert.NotEmpty(t, segment.AudioURL)
	}
	assert.Len(t, h.objects.Keys(), 3)
}

/*
TestRun_SegmentAudioFailure leaves only the failed segment without audio.
*/
func TestRun_SegmentAudioFailure(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "img-1", "/photo.png")
	h.transcriber.result = []ai.Transcription{{Text: "一"}, {Text: "二"}, {Text: "三"}}
	h.synthesizer.failOn = map[string]bool{"二": true}

	outcome, err := h.workflow.Run(context.Background(), job("img-1"))
	require.NoError(t, err)
	assert.Equal(t, translation.OutcomeCompleted, outcome)

	stored := h.load(t, "img-1")
	require.Len(t, stored.Transcriptions, 3)
	assert.NotEmpty(t, stored.Transcriptions[0].AudioURL)
	assert.Empty(t, stored.Transcriptions[1].AudioURL)
	assert.Empty(t, stored.Transcriptions[1].AudioKey)
	assert.NotEmpty(t, stored.Transcriptions[2].AudioURL)
}

/*
TestRun_LeavesImageUntouched covers the skip and failure paths.
*/
func TestRun_LeavesImageUntouched(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		transcribeErr  error
		outcome        translation.Outcome
		transcribeCall int
	}{
		{"download_not_found", "/missing.png", nil, translation.OutcomeSkipped, 0},
		{"transcription_failed", "/photo.png", errors.New("model unavailable"), translation.OutcomeFailed, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.seed(t, "img-1", tt.path)
			h.transcriber.err = tt.transcribeErr

			outcome, err := h.workflow.Run(context.Background(), job("img-1"))
			assert.Error(t, err)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.transcribeCall, h.transcriber.Calls())

			stored := h.load(t, "img-1")
			assert.False(t, stored.IsTranslated)
			assert.Empty(t, stored.Transcriptions)
			assert.Empty(t, h.notifier.For(ownerID))
			assert.Empty(t, h.objects.Keys())
		})
	}
}

/*
TestRun_SignsFreshSourceURL downloads through a new URL for the stored object
instead of the expired one recorded at upload.
*/
func TestRun_SignsFreshSourceURL(t *testing.T) {
	tests := []struct {
		name      string
		objectKey string
		outcome   translation.Outcome
		staleHits int32
	}{
		{"stored_object", "photo.png", translation.OutcomeCompleted, 0},
		{"no_object_key_uses_recorded_url", "", translation.OutcomeSkipped, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			record := h.seed(t, "img-1", "/photo.png")
			h.transcriber.result = []ai.Transcription{{Text: "你好"}}

			if tt.objectKey != record.ObjectKey {
				require.NoError(t, h.images.Delete(context.Background(), record.ID))
				record.ObjectKey = tt.objectKey
				require.NoError(t, h.images.Create(context.Background(), record))
			}

			outcome, _ := h.workflow.Run(context.Background(), job("img-1"))
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.staleHits, h.staleHits.Load())
		})
	}
}

/*
TestRun_MissingImage is skipped without contacting any upstream.
*/
func TestRun_MissingImage(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.workflow.Run(context.Background(), job("ghost"))
	assert.Error(t, err)
	assert.Equal(t, translation.OutcomeSkipped, outcome)
	assert.Zero(t, h.transcriber.Calls())
}

/*
TestRun_OfflineOwner still persists the translation.
*/
func TestRun_OfflineOwner(t *testing.T) {
	h := newHarness(t)
	h.notifier.online = false
	h.seed(t, "img-1", "/photo.png")
	h.transcriber.result = []ai.Transcription{{Text: "你好"}}

	outcome, err := h.workflow.Run(context.Background(), job("img-1"))
	require.NoError(t, err)
	assert.Equal(t, translation.OutcomeCompleted, outcome)
	assert.True(t, h.load(t, "img-1").IsTranslated)
}

/*
TestRun_RetranslationReplacesClips removes the clips of the previous run.
*/
func TestRun_RetranslationReplacesClips(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "img-1", "/photo.png")
	h.transcriber.result = []ai.Transcription{{Text: "你好"}}

	_, err := h.workflow.Run(context.Background(), job("img-1"))
	require.NoError(t, err)
	firstKey := h.load(t, "img-1").Transcriptions[0].AudioKey

	_, err = h.workflow.Run(context.Background(), job("img-1"))
	require.NoError(t, err)

	secondKey := h.load(t, "img-1").Transcriptions[0].AudioKey
	assert.NotEqual(t, firstKey, secondKey)
	assert.Equal(t, []string{secondKey}, h.objects.Keys())
}
