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
	"testing"
)

type blockingGen struct {
	started chan struct{}
	release chan struct{}
	calls   int
}

func (b *blockingGen) Generate(ctx context.Context, prompt string) string {
	b.calls++
	close(b.started)
	<-b.release
	return "for " + prompt
}

func TestAssistant_BlankPromptIgnored(t *testing.T) {
	g := &blockingGen{started: make(chan struct{}), release: make(chan struct{})}
	a := NewAssistant(g)
	if _, ok := a.Write(context.Background(), "   "); ok {
		t.Fatalf("blank prompt should be ignored")
	}
	if g.calls != 0 {
		t.Fatalf("generator should not be called")
	}
}

func TestAssistant_SingleInFlight(t *testing.T) {
	g := &blockingGen{started: make(chan struct{}), release: make(chan struct{})}
	a := NewAssistant(g)
	done := make(chan string)
	go func() {
		text, _ := a.Write(context.Background(), "Grandpa")
		done <- text
	}()
	<-g.started
	if !a.Pending() {
		t.Fatalf("expected pending")
	}
	if _, ok := a.Write(context.Background(), "again"); ok {
		t.Fatalf("second request must be refused while pending")
	}
	close(g.release)
	if got := <-done; got != "for Grandpa" {
		t.Fatalf("got %q", got)
	}
	if a.Pending() {
		t.Fatalf("pending flag not cleared")
	}
}
