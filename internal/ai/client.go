// Copyright (c) 2026 LinguaPhoto. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ai wraps the upstream models used by the translation workflow.

  - [Transcriber]: a vision-language chat model reads the Chinese text in a photo
    and returns ordered (text, pinyin, translation) triples.
  - [Synthesizer]: a text-to-speech model voices a single segment.

Both talk to an OpenAI-compatible API; the base URL is configurable so a proxy
or a local stub can stand in.
*/
package ai

import (
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// Options configures the shared API client.
type Options struct {
	APIKey  string
	BaseURL string

	// HTTPClient overrides the transport; nil uses [http.DefaultClient].
	HTTPClient *http.Client
}

// NewClient builds the OpenAI client shared by [Transcriber] and [Synthesizer].
func NewClient(options Options) *openai.Client {
	config := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		config.BaseURL = options.BaseURL
	}
	if options.HTTPClient != nil {
		config.HTTPClient = options.HTTPClient
	}
	return openai.NewClientWithConfig(config)
}
