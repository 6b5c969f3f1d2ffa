// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/linguaphoto/internal/ai"
)

// fakeUpstream mimics the chat completion and speech endpoints.
type fakeUpstream struct {
	content     string
	chatStatus  int
	lastChat    map[string]any
	lastSpeech  map[string]any
	speechBytes []byte
}

func (upstream *fakeUpstream) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	body, _ := io.ReadAll(request.Body)

	switch request.URL.Path {
	case "/v1/chat/completions":
		_ = json.Unmarshal(body, &upstream.lastChat)
		if upstream.chatStatus != 0 {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(upstream.chatStatus)
			_, _ = writer.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
			return
		}
		writer.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(writer).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": upstream.content},
			}},
		})
	case "/v1/audio/speech":
		_ = json.Unmarshal(body, &upstream.lastSpeech)
		writer.Header().Set("Content-Type", "audio/mpeg")
		_, _ = writer.Write(upstream.speechBytes)
	default:
		http.NotFound(writer, request)
	}
}

func newUpstream(t *testing.T, upstream *fakeUpstream) ai.Options {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)
	return ai.Options{APIKey: "sk-test", BaseURL: server.URL + "/v1"}
}

/*
TestTranscriber_Transcribe verifies the request shape and response parsing.
*/
func TestTranscriber_Transcribe(t *testing.T) {
	upstream := &fakeUpstream{
		content: `{"transcriptions":[{"text":"你好","pinyin":"ni\u030chǎo","translation":"Hello"},{"text":" 我找到了工作。 ","pinyin":"wǒ zhǎodàole gōngzuò.","translation":"I found a job."}]}`,
	}
	transcriber := ai.NewTranscriber(ai.NewClient(newUpstream(t, upstream)))

	segments, err := transcriber.Transcribe(context.Background(), []byte("jpeg-bytes"), "image/png")
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// 1. Order preserved, text normalized
	assert.Equal(t, ai.Transcription{Text: "你好", Pinyin: "nǐhǎo", Translation: "Hello"}, segments[0])
	assert.Equal(t, "我找到了工作。", segments[1].Text)

	// 2. Request carries model, token cap, JSON mode and the data URL
	assert.Equal(t, "gpt-4o", upstream.lastChat["model"])
	assert.EqualValues(t, 1024, upstream.lastChat["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, upstream.lastChat["response_format"])

	raw, err := json.Marshal(upstream.lastChat["messages"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "data:image/png;base64,anBlZy1ieXRlcw==")
	assert.Contains(t, string(raw), "Pinyin")
}

/*
TestTranscriber_Failures covers upstream errors and unusable content.
*/
func TestTranscriber_Failures(t *testing.T) {
	tests := []struct {
		name     string
		upstream *fakeUpstream
	}{
		{"upstream_error", &fakeUpstream{chatStatus: http.StatusTooManyRequests}},
		{"empty_content", &fakeUpstream{content: "  "}},
		{"not_json", &fakeUpstream{content: "I see a cat."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transcriber := ai.NewTranscriber(ai.NewClient(newUpstream(t, tt.upstream)))
			segments, err := transcriber.Transcribe(context.Background(), []byte("x"), "image/jpeg")
			assert.Error(t, err)
			assert.Nil(t, segments)
		})
	}
}

/*
TestTranscriber_NoText returns an empty list for a photo without text.
*/
func TestTranscriber_NoText(t *testing.T) {
	upstream := &fakeUpstream{content: `{"transcriptions":[]}`}
	transcriber := ai.NewTranscriber(ai.NewClient(newUpstream(t, upstream)))

	segments, err := transcriber.Transcribe(context.Background(), []byte("x"), "")
	require.NoError(t, err)
	assert.Empty(t, segments)

	raw, _ := json.Marshal(upstream.lastChat["messages"])
	assert.True(t, strings.Contains(string(raw), "data:image/jpeg;base64,"))
}

/*
TestSynthesizer_Synthesize verifies the speech request and returned bytes.
*/
func TestSynthesizer_Synthesize(t *testing.T) {
	upstream := &fakeUpstream{speechBytes: []byte("ID3-mp3-bytes")}
	synthesizer := ai.NewSynthesizer(ai.NewClient(newUpstream(t, upstream)), "alloy")

	audio, err := synthesizer.Synthesize(context.Background(), "你好")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-mp3-bytes"), audio)

	assert.Equal(t, "tts-1", upstream.lastSpeech["model"])
	assert.Equal(t, "你好", upstream.lastSpeech["input"])
	assert.Equal(t, "alloy", upstream.lastSpeech["voice"])
	assert.Equal(t, "mp3", upstream.lastSpeech["response_format"])

	_, err = synthesizer.Synthesize(context.Background(), "   ")
	assert.ErrorIs(t, err, ai.ErrEmptyText)
}
