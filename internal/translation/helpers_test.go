// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package translation_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/ai"
	"github.com/taibuivan/linguaphoto/internal/library/image"
	"github.com/taibuivan/linguaphoto/internal/platform/docstore"
	"github.com/taibuivan/linguaphoto/internal/platform/objectstore"
	"github.com/taibuivan/linguaphoto/internal/translation"
)

const ownerID = "user-owner"

var photoBytes = []byte("\x89PNG\r\n\x1a\nfake-photo")

type fakeTranscriber struct {
	mu        sync.Mutex
	calls     int
	failFirst int
	result    []ai.Transcription
	err       error
	seen      []string

	// gate, when set, holds every call open until it is closed.
	gate chan struct{}
}

func (transcriber *fakeTranscriber) Transcribe(_ context.Context, photo []byte, contentType string) ([]ai.Transcription, error) {
	transcriber.mu.Lock()
	transcriber.calls++
	transcriber.seen = append(transcriber.seen, contentType+":"+string(photo))
	call := transcriber.calls
	transcriber.mu.Unlock()

	if transcriber.gate != nil {
		<-transcriber.gate
	}

	if call <= transcriber.failFirst {
		return nil, errors.New("upstream overloaded")
	}
	return transcriber.result, transcriber.err
}

func (transcriber *fakeTranscriber) Calls() int {
	transcriber.mu.Lock()
	defer transcriber.mu.Unlock()
	return transcriber.calls
}

type fakeSynthesizer struct {
	failOn map[string]bool
}

func (synthesizer *fakeSynthesizer) Synthesize(_ context.Context, text string) ([]byte, error) {
	if synthesizer.failOn[text] {
		return nil, errors.New("speech rejected")
	}
	return []byte("mp3:" + text), nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	online    bool
	delivered map[string][]any
}

func (notifier *recordingNotifier) Notify(userID string, payload any) bool {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	if !notifier.online {
		return false
	}
	if notifier.delivered == nil {
		notifier.delivered = make(map[string][]any)
	}
	notifier.delivered[userID] = append(notifier.delivered[userID], payload)
	return true
}

func (notifier *recordingNotifier) For(userID string) []any {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return notifier.delivered[userID]
}

type harness struct {
	images      *image.DocstoreRepository
	objects     *objectstore.MemoryStore
	transcriber *fakeTranscriber
	synthesizer *fakeSynthesizer
	notifier    *recordingNotifier
	workflow    *translation.Workflow
	source      *httptest.Server
	logger      *slog.Logger

	// staleHits counts requests to the expired upload-time URL.
	staleHits atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		images:      image.NewDocstoreRepository(docstore.NewMemoryStore()),
		transcriber: &fakeTranscriber{},
		synthesizer: &fakeSynthesizer{},
		notifier:    &recordingNotifier{online: true},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	// The origin plays the object store: signed URLs resolve to its paths.
	mux := http.NewServeMux()
	mux.HandleFunc("/photo.png", func(writer http.ResponseWriter, _ *http.Request) {
		writer.Header().Set("Content-Type", "image/png")
		_, _ = writer.Write(photoBytes)
	})
	mux.HandleFunc("/expired", func(writer http.ResponseWriter, _ *http.Request) {
		h.staleHits.Add(1)
		writer.WriteHeader(http.StatusForbidden)
	})
	h.source = httptest.NewServer(mux)
	t.Cleanup(h.source.Close)

	h.objects = objectstore.NewMemoryStore(h.source.URL, nil)

	h.workflow = translation.NewWorkflow(translation.Dependencies{
		Images:      h.images,
		Objects:     h.objects,
		Transcriber: h.transcriber,
		Synthesizer: h.synthesizer,
		Notifier:    h.notifier,
		HTTPClient:  h.source.Client(),
		URLTTL:      time.Hour,
		Logger:      h.logger,
	})

	return h
}

// seed records an image stored under path on the fake origin. Its recorded
// upload URL has expired, so only a freshly signed URL reaches the bytes.
func (h *harness) seed(t *testing.T, id, path string) *image.Image {
	t.Helper()

	record := &image.Image{
		ID:           id,
		UserID:       ownerID,
		CollectionID: "collection-1",
		ImageURL:     h.source.URL + "/expired",
		ObjectKey:    strings.TrimPrefix(path, "/"),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, h.images.Create(context.Background(), record))
	return record
}

func (h *harness) load(t *testing.T, id string) *image.Image {
	t.Helper()
	loaded, err := h.images.FindByID(context.Background(), id)
	require.NoError(t, err)
	return loaded
}
