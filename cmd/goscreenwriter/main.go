/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"goscreenwriter/internal/autosave"
	"goscreenwriter/internal/backend"
	"goscreenwriter/internal/config"
	"goscreenwriter/internal/crash"
	"goscreenwriter/internal/export"
	"goscreenwriter/internal/layout"
	applog "goscreenwriter/internal/log"
	"goscreenwriter/internal/screenplay"
	"goscreenwriter/internal/storage"
	"goscreenwriter/internal/version"
)

func usage() {
	fmt.Println("Go Screenwriter — screenplay editor toolkit")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  goscreenwriter version|-v|--version          Show version")
	fmt.Println("  goscreenwriter init <dir> <title>            Create a new screenplay project at <dir>")
	fmt.Println("  goscreenwriter open <dir>                    Open project at <dir> and print a summary")
	fmt.Println("  goscreenwriter import <dir> <file>           Import a plain-text script into the project")
	fmt.Println("  goscreenwriter export-pdf <dir> [out.pdf]    Export the screenplay as PDF")
	fmt.Println("  goscreenwriter export-text <dir> [out.txt]   Export the screenplay as plain text")
	fmt.Println("  goscreenwriter versions <dir>                List the stored version history")
	fmt.Println("  goscreenwriter commit <dir> <description>    Commit the current state as a milestone version")
	fmt.Println("  goscreenwriter serve                         Run the sync backend server")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Go Screenwriter — screenplay editor toolkit")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <title>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			title := args[3]
			l.Info("init project", slog.String("root", abs), slog.String("title", title))
			doc := screenplay.NewDocument(filepath.Base(abs), title)
			m := storage.Manifest{Document: screenplay.Encode(doc, screenplay.LayoutSummary{PageCount: 1})}
			h, err := storage.InitProject(abs, m)
			if err != nil {
				fail(l, "init failed", err)
			}
			ph = h
			fmt.Println("Created screenplay project at", abs)
			return
		case "open":
			h, doc, pages := openProject(l, args, &ph)
			fmt.Printf("Opened screenplay: %s\n", doc.Title())
			fmt.Printf("Lines: %d  Pages: %d  Version: %d.%d\n", doc.Len(), len(pages), h.Manifest.Major, h.Manifest.Minor)
			for _, ch := range doc.Chapters() {
				fmt.Println("Chapter:", ch)
			}
			fmt.Println("Root:", h.Root)
			return
		case "import":
			if len(args) < 4 {
				fmt.Println("import requires <dir> and <file>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			src := args[3]
			b, err := os.ReadFile(src)
			if err != nil {
				fail(l, "read import file failed", err)
			}
			h, err := storage.Open(abs)
			if err != nil {
				fail(l, "open failed", err)
			}
			ph = h
			doc, parseErrs := screenplay.Parse(h.Manifest.Document.ID, h.Manifest.Document.Title, string(b))
			for _, pe := range parseErrs {
				fmt.Printf("Warning: line %d: %s\n", pe.Line, pe.Message)
			}
			eng := newEngine()
			pages := eng.Recompute(doc.Lines())
			h.Manifest.Document = screenplay.Encode(doc, screenplay.LayoutSummary{PageCount: len(pages), Chapters: doc.Chapters()})
			if err := storage.Save(h); err != nil {
				fail(l, "save after import failed", err)
			}
			fmt.Printf("Imported %d lines across %d pages.\n", doc.Len(), len(pages))
			return
		case "export-pdf":
			h, doc, pages := openProject(l, args, &ph)
			out := "screenplay.pdf"
			if len(args) >= 4 {
				out = args[3]
			}
			if !filepath.IsAbs(out) {
				out = filepath.Join(h.Root, "exports", out)
			}
			if err := export.ExportPDF(doc, pages, out, export.PDFOptions{PageNumbers: true, Author: h.Manifest.Author}); err != nil {
				fail(l, "pdf export failed", err)
			}
			fmt.Println("Wrote", out)
			return
		case "export-text":
			h, doc, _ := openProject(l, args, &ph)
			out := "screenplay.txt"
			if len(args) >= 4 {
				out = args[3]
			}
			if !filepath.IsAbs(out) {
				out = filepath.Join(h.Root, "exports", out)
			}
			if err := export.ExportText(doc, out); err != nil {
				fail(l, "text export failed", err)
			}
			fmt.Println("Wrote", out)
			return
		case "versions":
			h, doc, _ := openProject(l, args, &ph)
			db, err := storage.InitOrOpenIndex(h.Root)
			if err != nil {
				fail(l, "open index failed", err)
			}
			defer db.Close()
			cfg, _, _ := config.Load()
			list, err := storage.NewIndexStore(db).List(context.Background(), doc.ID(), cfg.Editor.VersionKeepDepth)
			if err != nil {
				fail(l, "list versions failed", err)
			}
			if len(list) == 0 {
				fmt.Println("No stored versions yet.")
				return
			}
			for _, rec := range list {
				desc := rec.Description
				if desc != "" {
					desc = "  " + desc
				}
				fmt.Printf("%-8s %-10s %s%s\n", rec.Version(), rec.Kind, rec.SavedAt.Local().Format(time.RFC3339), desc)
			}
			return
		case "commit":
			if len(args) < 4 {
				fmt.Println("commit requires <dir> and <description>")
				usage()
				os.Exit(2)
			}
			h, doc, pages := openProject(l, args, &ph)
			desc := args[3]
			db, err := storage.InitOrOpenIndex(h.Root)
			if err != nil {
				fail(l, "open index failed", err)
			}
			defer db.Close()
			cfg, _, _ := config.Load()
			store := storage.NewIndexStore(db)
			saver := autosave.NewSaver(store, autosave.Config{})
			saver.SetDocument(doc.ID(), doc.Title(), h.Manifest.Major, h.Manifest.Minor, nil)
			snap, err := screenplay.Marshal(doc, screenplay.LayoutSummary{PageCount: len(pages), Chapters: doc.Chapters()})
			if err != nil {
				fail(l, "serialize failed", err)
			}
			if err := saver.CommitVersion(context.Background(), snap, desc); err != nil {
				fail(l, "commit failed", err)
			}
			h.Manifest.Major++
			h.Manifest.Minor = 0
			if err := storage.Save(h); err != nil {
				fail(l, "save manifest failed", err)
			}
			if _, err := store.Prune(context.Background(), doc.ID(), cfg.Editor.VersionKeepDepth); err != nil {
				l.Warn("prune failed", slog.Any("err", err))
			}
			fmt.Printf("Committed version %d.0: %s\n", h.Manifest.Major, desc)
			return
		case "serve":
			if err := backend.Start(); err != nil {
				fail(l, "server failed", err)
			}
			return
		}
	}

	usage()
}

// openProject resolves args[2], opens the project and recomputes pagination.
func openProject(l *slog.Logger, args []string, ph **storage.ProjectHandle) (*storage.ProjectHandle, *screenplay.Document, []layout.Page) {
	if len(args) < 3 {
		fmt.Println(args[1], "requires <dir>")
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open project", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open failed", err)
	}
	*ph = h
	doc, err := screenplay.Decode(h.Manifest.Document)
	if err != nil {
		fail(l, "decode document failed", err)
	}
	pages := newEngine().Recompute(doc.Lines())
	return h, doc, pages
}

func newEngine() *layout.Engine {
	cfg, _, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	return layout.NewEngine(cfg.Editor.PageCapacity, cfg.Editor.OverflowAllowance, nil)
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
