/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and a rescue copy of the
// card being edited.
package crash

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "lumina/internal/log"
	"lumina/internal/scene"
	"lumina/internal/telemetry"
	"lumina/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Snapshotter exposes the card state worth rescuing.
type Snapshotter interface {
	Snapshot() scene.Snapshot
}

// Dir is where reports and rescue files go; empty means the temp dir.
var Dir = ""

// Recover captures a panic, logs it with the stack, writes a report file and,
// when src is non-nil, a JSON rescue copy of the card. It then exits with 2.
//
// Usage: defer crash.Recover(session)
func Recover(src Snapshotter) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(r, stack)
	if err != nil {
		l.Error("crash report not written", applog.Err(err))
	}
	if src != nil {
		if path, err := writeRescue(src); err != nil {
			l.Error("card rescue failed", applog.Err(err))
		} else {
			l.Info("card rescue written", slog.String("path", path))
		}
	}

	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	// os.Exit skips deferred flushes, so let the crash upload finish here
	telemetry.Default().Flush(context.Background())
	exitFn(2)
}

func outDir() string {
	if Dir != "" {
		_ = os.MkdirAll(Dir, 0o755)
		return Dir
	}
	return os.TempDir()
}

func stamp() string { return time.Now().Format("20060102-150405") }

func writeReport(panicVal any, stack []byte) (string, error) {
	path := filepath.Join(outDir(), fmt.Sprintf("crash-%s.log", stamp()))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Lumina Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// stack only; no card content leaves the machine
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

func writeRescue(src Snapshotter) (string, error) {
	snap := src.Snapshot()
	data, err := json.MarshalIndent(struct {
		Settings any `json:"settings"`
		Elements any `json:"elements"`
	}{snap.Settings, snap.Elements}, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir(), fmt.Sprintf("card-rescue-%s.json", stamp()))
	return path, os.WriteFile(path, data, 0o644)
}
