/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a screenplay document to its delivery formats.
// The PDF exporter follows the fixed-pitch screenplay page: US Letter,
// Courier 12, one PDF page per computed layout page so the exported page
// count always matches the editor's pagination.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	"goscreenwriter/internal/layout"
	"goscreenwriter/internal/screenplay"
)

// Page geometry in points. Courier 12 advances 7.2pt per character and
// 12pt per line; 54 text lines fill the area between the margins.
const (
	pageWidthPt  = 612.0
	pageHeightPt = 792.0
	topMarginPt  = 72.0
	lineHeightPt = 12.0
	charWidthPt  = 7.2
	fontSizePt   = 12.0
)

// leftMarginPt returns the role's left margin on the page.
func leftMarginPt(role screenplay.Role) float64 {
	switch role {
	case screenplay.RoleSpeaker:
		return 266
	case screenplay.RoleDirections:
		return 223
	case screenplay.RoleDialog:
		return 180
	default:
		// header, action and chapter breaks sit on the body margin
		return 108
	}
}

// PDFOptions controls PDF export behavior.
type PDFOptions struct {
	PageNumbers bool
	Author      string
}

// ExportPDF writes the screenplay as a multi-page PDF at outPath. The page
// partition must come from the same line sequence as the document.
func ExportPDF(doc *screenplay.Document, pages []layout.Page, outPath string, opt PDFOptions) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	pdf := buildPDF(doc, pages, opt)

	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// buildPDF assembles the document pages; separated from ExportPDF so the
// page structure can be inspected without touching the filesystem.
func buildPDF(doc *screenplay.Document, pages []layout.Page, opt PDFOptions) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidthPt, Ht: pageHeightPt},
		OrientationStr: "P",
	})
	pdf.SetTitle(doc.Title(), true)
	if opt.Author != "" {
		pdf.SetAuthor(opt.Author, true)
	}
	// Courier keeps the fixed-pitch column math exact without embedding.
	pdf.SetFont("Courier", "", fontSizePt)
	pdf.SetAutoPageBreak(false, 0)

	lines := doc.Lines()
	if len(pages) == 0 {
		pages = []layout.Page{{Start: 0, End: len(lines)}}
	}
	for pageNo, pg := range pages {
		pdf.AddPage()
		if opt.PageNumbers && pageNo > 0 {
			num := fmt.Sprintf("%d.", pageNo+1)
			x := pageWidthPt - 72 - float64(len(num))*charWidthPt
			pdf.Text(x, topMarginPt-24, num)
		}
		y := topMarginPt + lineHeightPt
		for i := pg.Start; i < pg.End && i < len(lines); i++ {
			ln := lines[i]
			x := leftMarginPt(ln.Role)
			for _, out := range wrapForRole(ln) {
				pdf.Text(x, y, out)
				y += lineHeightPt
			}
		}
	}
	return pdf
}

// wrapForRole breaks a line's text into printed rows at the role's column
// width, mirroring the pagination estimate. An empty line still prints one
// blank row.
func wrapForRole(ln screenplay.Line) []string {
	cols := layout.Columns(ln.Role)
	var out []string
	for _, seg := range splitSegments(ln.Text) {
		runes := []rune(seg)
		if len(runes) == 0 {
			out = append(out, "")
			continue
		}
		for len(runes) > 0 {
			n := cols
			if n > len(runes) {
				n = len(runes)
			}
			out = append(out, string(runes[:n]))
			runes = runes[n:]
		}
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

func splitSegments(text string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			segs = append(segs, text[start:i])
			start = i + 1
		}
	}
	segs = append(segs, text[start:])
	return segs
}
