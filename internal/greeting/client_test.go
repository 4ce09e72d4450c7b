/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package greeting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type memRecorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *memRecorder) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func TestGenerate_MissingKey(t *testing.T) {
	rec := &memRecorder{}
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	c.SetRecorder(rec)
	if got := c.Generate(context.Background(), "Mum's 60th"); got != MissingKeyText {
		t.Fatalf("got %q", got)
	}
	if len(rec.entries) != 1 || rec.entries[0].Outcome != OutcomeMissingKey {
		t.Fatalf("recorder entries: %+v", rec.entries)
	}
}

func TestGenerate_Success(t *testing.T) {
	var gotKey, gotPath, gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		gotPath = r.URL.Path
		var req generateRequest
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &req)
		if len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"  \"Happy 60th, Mum!"},{"text":" Love always.\"\n"}]}}]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/", APIKey: "k-123"})
	got := c.Generate(context.Background(), "Mum's 60th")
	if got != "Happy 60th, Mum! Love always." {
		t.Fatalf("got %q", got)
	}
	if gotKey != "k-123" {
		t.Fatalf("api key header %q", gotKey)
	}
	if gotPath != "/v1beta/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("path %q", gotPath)
	}
	if !strings.Contains(gotPrompt, "Mum's 60th") || !strings.Contains(gotPrompt, "under 30 words") {
		t.Fatalf("prompt %q", gotPrompt)
	}
}

func TestGenerate_Fallbacks(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		want    string
		outcome Outcome
	}{
		{"http error", http.StatusInternalServerError, `{"error":{"code":500}}`, ErrorText, OutcomeError},
		{"bad json", http.StatusOK, `{not json`, ErrorText, OutcomeError},
		{"wrong shape", http.StatusOK, `{"candidates":"nope"}`, ErrorText, OutcomeError},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, EmptyText, OutcomeEmpty},
		{"blank text", http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  \n "}]}}]}`, EmptyText, OutcomeEmpty},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()
			rec := &memRecorder{}
			c := NewClient(Config{BaseURL: srv.URL, APIKey: "k"})
			c.SetRecorder(rec)
			if got := c.Generate(context.Background(), "x"); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
			if rec.entries[0].Outcome != tc.outcome {
				t.Fatalf("outcome %q", rec.entries[0].Outcome)
			}
		})
	}
}

func TestGenerate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	c := NewClient(Config{BaseURL: srv.URL, APIKey: "k", Timeout: 50 * time.Millisecond})
	if got := c.Generate(context.Background(), "x"); got != ErrorText {
		t.Fatalf("got %q", got)
	}
}

func TestClean(t *testing.T) {
	cases := map[string]string{
		"  hi  ":          "hi",
		"\"quoted\"":      "quoted",
		"“curly”":         "curly",
		"'single'":        "single",
		"don't stop":      "don't stop",
		"\"":              "\"",
		"\"a\" and \"b\"": "a\" and \"b",
	}
	for in, want := range cases {
		if got := Clean(in); got != want {
			t.Fatalf("Clean(%q)=%q want %q", in, got, want)
		}
	}
}

func TestBuildPrompt_KeepsMultiLineOccasionRaw(t *testing.T) {
	got := BuildPrompt("  Mum's 60th\nshe loves \"roses\"  ")
	if !strings.Contains(got, "recipient: \"Mum's 60th\nshe loves \"roses\"\".") {
		t.Fatalf("occasion should be quoted verbatim, got %q", got)
	}
	if strings.Contains(got, `\n`) {
		t.Fatalf("newline was escaped: %q", got)
	}
}
