// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrEmptyText is returned when asked to voice blank text.
var ErrEmptyText = errors.New("ai: nothing to synthesize")

// Synthesizer voices text through the speech endpoint.
type Synthesizer struct {
	client *openai.Client
	voice  openai.SpeechVoice
}

// NewSynthesizer creates a [Synthesizer] speaking with voice (e.g. "nova").
func NewSynthesizer(client *openai.Client, voice string) *Synthesizer {
	if voice == "" {
		voice = string(openai.VoiceNova)
	}
	return &Synthesizer{client: client, voice: openai.SpeechVoice(voice)}
}

// Synthesize returns the mp3 bytes of text read aloud.
func (synthesizer *Synthesizer) Synthesize(context context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}

	response, err := synthesizer.client.CreateSpeech(context, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          synthesizer.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: speech request failed: %w", err)
	}
	defer response.Close()

	audio, err := io.ReadAll(response)
	if err != nil {
		return nil, fmt.Errorf("ai: read speech response: %w", err)
	}
	return audio, nil
}
