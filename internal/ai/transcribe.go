// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/linguaphoto/internal/platform/constants"
)

// ErrEmptyResponse is returned when the model answers without any content.
var ErrEmptyResponse = errors.New("ai: empty transcription response")

// transcriptionPrompt fixes both the output schema and the reading order.
const transcriptionPrompt = `This is a photo containing Chinese characters. For each section of characters
in order, provide the transcription, Pinyin, and English translation,
returning it as a JSON object. Read sections in natural reading order: for
vertical text (for example manga), right-to-left then top-to-bottom; otherwise
left-to-right then top-to-bottom. For example, this is a valid response:

{
    "transcriptions": [
        {
            "text": "你好，我朋友！",
            "pinyin": "nǐhǎo, wǒ péngyǒu!",
            "translation": "Hello, my friend!"
        },
        {
            "text": "我找到了工作。",
            "pinyin": "wǒ zhǎodàole gōngzuò.",
            "translation": "I found a job."
        }
    ]
}`

// Transcription is one section of text read from a photo.
type Transcription struct {
	Text        string `json:"text"`
	Pinyin      string `json:"pinyin"`
	Translation string `json:"translation"`
}

type transcriptionResponse struct {
	Transcriptions []Transcription `json:"transcriptions"`
}

// Transcriber reads Chinese text out of photos with a vision chat model.
type Transcriber struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewTranscriber creates a [Transcriber] using the default model settings.
func NewTranscriber(client *openai.Client) *Transcriber {
	return &Transcriber{
		client:    client,
		model:     constants.TranscriptionModel,
		maxTokens: constants.TranscriptionMaxTokens,
	}
}

/*
Transcribe sends the photo to the model and returns its sections in reading order.

Parameters:
  - image: Raw image bytes
  - contentType: MIME type used for the data URL (defaults to image/jpeg)

Returns:
  - []Transcription: Possibly empty when the photo has no text
  - error: Upstream or decoding failure
*/
func (transcriber *Transcriber) Transcribe(context context.Context, image []byte, contentType string) ([]Transcription, error) {
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)

	response, err := transcriber.client.CreateChatCompletion(context, openai.ChatCompletionRequest{
		Model:     transcriber.model,
		MaxTokens: transcriber.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: transcriptionPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ai: transcription request failed: %w", err)
	}

	if len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}

	return parseTranscriptions(response.Choices[0].Message.Content)
}

// parseTranscriptions decodes the model output and NFC-normalizes every field.
func parseTranscriptions(content string) ([]Transcription, error) {
	var decoded transcriptionResponse
	if err := json.Unmarshal([]byte(content), &decoded); err != nil {
		return nil, fmt.Errorf("ai: decode transcription response: %w", err)
	}

	segments := make([]Transcription, 0, len(decoded.Transcriptions))
	for _, segment := range decoded.Transcriptions {
		segments = append(segments, Transcription{
			Text:        norm.NFC.String(strings.TrimSpace(segment.Text)),
			Pinyin:      norm.NFC.String(strings.TrimSpace(segment.Pinyin)),
			Translation: norm.NFC.String(strings.TrimSpace(segment.Translation)),
		})
	}
	return segments, nil
}
