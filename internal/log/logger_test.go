/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestPlainHandlerOutput(t *testing.T) {
	var sb strings.Builder
	h := &plainHandler{level: slog.LevelInfo, w: &sb}
	l := slog.New(h).With(slog.String("component", "layout"))
	l.Info("page recompute", slog.Int("pages", 3))
	out := sb.String()
	for _, want := range []string{"INF", "page recompute", "component=layout", "pages=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestPlainHandlerLevelFilter(t *testing.T) {
	var sb strings.Builder
	h := &plainHandler{level: slog.LevelWarn, w: &sb}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be filtered at warn level")
	}
	slog.New(h).Info("dropped")
	if sb.Len() != 0 {
		t.Fatalf("expected no output, got %q", sb.String())
	}
}

func TestWithComponentAndOperation(t *testing.T) {
	Init(Options{Level: "error"})
	l := WithOperation(WithComponent("autosave"), "flush")
	if l == nil {
		t.Fatalf("nil logger")
	}
}
