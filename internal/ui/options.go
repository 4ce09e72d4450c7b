/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"

	"lumina/internal/editor"
	"lumina/internal/export"
	"lumina/internal/greeting"
)

// HistorySource lists previously generated greetings.
type HistorySource interface {
	Recent(ctx context.Context, n int) ([]greeting.Entry, error)
}

// Options carry everything the desktop UI needs from the caller.
type Options struct {
	Session *editor.Session
	// Printer receives the card when the user prints. Nil disables printing.
	Printer export.Printer
	// ExportOptions apply to Save As.
	ExportOptions export.Options
	// History is optional.
	History HistorySource
}
