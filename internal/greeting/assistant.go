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
	"strings"
	"sync/atomic"
)

// Assistant gates generation: blank prompts are ignored and only one
// request may be in flight.
type Assistant struct {
	gen     Generator
	pending atomic.Bool
}

func NewAssistant(g Generator) *Assistant { return &Assistant{gen: g} }

// Pending reports whether a request is running.
func (a *Assistant) Pending() bool { return a.pending.Load() }

// Write generates text for prompt. ok is false when the prompt is blank or a
// request is already pending.
func (a *Assistant) Write(ctx context.Context, prompt string) (text string, ok bool) {
	if strings.TrimSpace(prompt) == "" || a.gen == nil {
		return "", false
	}
	if !a.pending.CompareAndSwap(false, true) {
		return "", false
	}
	defer a.pending.Store(false)
	return a.gen.Generate(ctx, prompt), true
}
