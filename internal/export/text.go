/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goscreenwriter/internal/screenplay"
)

// textIndent returns the column indent used in the plain-text rendition.
func textIndent(role screenplay.Role) int {
	switch role {
	case screenplay.RoleSpeaker:
		return 22
	case screenplay.RoleDirections:
		return 16
	case screenplay.RoleDialog:
		return 10
	default:
		return 0
	}
}

// RenderText produces the plain-text rendition of the screenplay: headers
// and speakers uppercased, dialog blocks indented, chapter breaks rendered
// as a separator rule.
func RenderText(doc *screenplay.Document) []byte {
	var b strings.Builder
	if t := strings.TrimSpace(doc.Title()); t != "" {
		b.WriteString(strings.ToUpper(t))
		b.WriteString("\n\n")
	}
	for _, ln := range doc.Lines() {
		switch ln.Role {
		case screenplay.RoleChapterBreak:
			b.WriteString("\n===== ")
			b.WriteString(strings.TrimSpace(ln.Text))
			b.WriteString(" =====\n\n")
			continue
		case screenplay.RoleHeader, screenplay.RoleSpeaker:
			writeIndented(&b, strings.ToUpper(ln.Text), textIndent(ln.Role))
		default:
			writeIndented(&b, ln.Text, textIndent(ln.Role))
		}
		if ln.Role == screenplay.RoleHeader || ln.Role == screenplay.RoleAction || ln.Role == screenplay.RoleDialog {
			b.WriteString("\n")
		}
	}
	return []byte(b.String())
}

func writeIndented(b *strings.Builder, text string, indent int) {
	pad := strings.Repeat(" ", indent)
	for _, seg := range splitSegments(text) {
		b.WriteString(pad)
		b.WriteString(seg)
		b.WriteString("\n")
	}
}

// ExportText writes the plain-text rendition to outPath.
func ExportText(doc *screenplay.Document, outPath string) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, RenderText(doc), 0o644); err != nil {
		return fmt.Errorf("write text: %w", err)
	}
	return nil
}
