/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package greeting asks a hosted language model for a short card message.
// From the caller's view generation never fails: every failure maps to a
// fixed fallback sentence.
package greeting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	applog "lumina/internal/log"
	"lumina/internal/telemetry"
)

// Fallback texts.
const (
	MissingKeyText = "Happy Birthday! (API Key missing)"
	ErrorText      = "Wishing you a wonderful day!"
	EmptyText      = "Wishing you joy and happiness!"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 20 * time.Second

	promptTemplate = "Write a short, warm, and elegant greeting card message for the following occasion/recipient: \"%s\". " +
		"Keep it under 30 words. Do not use quotes in the output. Just the message text."
)

// ErrMissingKey is returned by Client.Call when no API key is configured.
var ErrMissingKey = errors.New("greeting: API key missing")

// Outcome classifies a generation attempt.
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeMissingKey Outcome = "missing_key"
	OutcomeError      Outcome = "error"
	OutcomeEmpty      Outcome = "empty"
)

// Entry is one generation attempt as seen by a Recorder.
type Entry struct {
	Prompt    string
	Text      string
	Outcome   Outcome
	CreatedAt time.Time
}

// Recorder receives every attempt, e.g. for a history store.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// Generator produces greeting text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) string
}

// Config configures a Client.
type Config struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the generateContent REST endpoint.
type Client struct {
	BaseURL  string
	Model    string
	apiKey   string
	client   *http.Client
	recorder Recorder
	log      *slog.Logger
}

// NewClient creates a client. Empty fields take the defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Model:   cfg.Model,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  &http.Client{Timeout: cfg.Timeout},
		log:     applog.WithComponent("greeting"),
	}
}

// SetRecorder attaches a history recorder.
func (c *Client) SetRecorder(r Recorder) { c.recorder = r }

// Generate returns model text or one of the fallback sentences.
func (c *Client) Generate(ctx context.Context, prompt string) string {
	l := applog.WithOperation(c.log, "generate")
	text, err := c.Call(ctx, prompt)
	out := OutcomeOK
	switch {
	case errors.Is(err, ErrMissingKey):
		l.Warn("no API key configured")
		text, out = MissingKeyText, OutcomeMissingKey
	case err != nil:
		l.Warn("generation failed", applog.Err(err))
		text, out = ErrorText, OutcomeError
	case text == "":
		l.Warn("model returned no text")
		text, out = EmptyText, OutcomeEmpty
	default:
		l.Info("greeting generated", slog.Int("chars", len(text)))
	}
	l = l.With(slog.String(applog.KeyOutcome, string(out)))
	if c.recorder != nil {
		e := Entry{Prompt: prompt, Text: text, Outcome: out, CreatedAt: time.Now().UTC()}
		if rerr := c.recorder.Record(ctx, e); rerr != nil {
			l.Warn("history record failed", applog.Err(rerr))
		}
	}
	l.Debug("generate done")
	telemetry.GreetingGenerated(string(out))
	return text
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Call performs one request and returns the trimmed text of the first
// candidate, or an error.
func (c *Client) Call(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrMissingKey
	}
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: BuildPrompt(prompt)}}}}})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("server POST %s: %s", req.URL.Path, resp.Status)
	}
	if err := validateResponse(raw); err != nil {
		return "", err
	}
	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		return "", nil
	}
	var b strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return Clean(b.String()), nil
}

// BuildPrompt wraps the user's occasion into the instruction sent to the model.
func BuildPrompt(occasion string) string {
	return fmt.Sprintf(promptTemplate, strings.TrimSpace(occasion))
}

// Clean trims whitespace and one pair of surrounding quotation marks.
func Clean(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range [][2]string{{"\"", "\""}, {"“", "”"}, {"'", "'"}} {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
			break
		}
	}
	return s
}
