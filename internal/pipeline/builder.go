package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/guides/internal/compiler"
	"github.com/dgallion1/guides/internal/diag"
	"github.com/dgallion1/guides/internal/doctree"
	"github.com/dgallion1/guides/internal/extension"
	"github.com/dgallion1/guides/internal/parser"
	"github.com/dgallion1/guides/internal/render"
	"github.com/dgallion1/guides/internal/resolver"
	"golang.org/x/sync/errgroup"
)

// OutputExtensions maps formats to the file extension of their output.
var OutputExtensions = map[string]string{
	"html":  ".html",
	"latex": ".tex",
	"rst":   ".rst",
	"text":  ".txt",
}

// OutputExtension returns the extension for format, "." + format when it
// is not listed in OutputExtensions.
func OutputExtension(format string) string {
	if ext, ok := OutputExtensions[format]; ok {
		return ext
	}
	return "." + format
}

// BookFile is the output file id of the LaTeX master document.
const BookFile = "_book"

// Builder compiles a source tree into every configured output format.
// Builds on one Builder run one at a time; the cache is shared between
// them.
type Builder struct {
	Extensions *extension.Registry
	Renderers  *render.Registry
	Compiler   *compiler.Compiler
	Templates  render.Templates

	Formats []string
	Root    string
	Tags    []string
	Workers int

	Cache *Cache
	Log   *slog.Logger

	mu sync.Mutex
}

// Result is the outcome of one build.
type Result struct {
	Index     *resolver.Index
	Documents map[string]*compiler.Compiled
	TOC       *compiler.TOCEntry

	// Outputs maps format → document file id → rendered text.
	Outputs map[string]map[string]string

	Diagnostics diag.List
	Counts      Counts
	Duration    time.Duration
}

// Counts summarizes the work done by a build.
type Counts struct {
	Sources  int `json:"sources"`
	Reused   int `json:"reused"`
	Parsed   int `json:"parsed"`
	Rendered int `json:"rendered"`
	Bytes    int `json:"bytes"`
}

type source struct {
	path string
	data []byte
	sum  uint64
	doc  *doctree.Document
}

// Build runs the three phases over the supported files in fsys: parse
// every source, index and compile every document, then render each
// format. Authoring problems end up in Result.Diagnostics; an error is
// returned only when the build itself cannot complete, such as a missing
// renderer or a cancelled context.
func (b *Builder) Build(ctx context.Context, fsys fs.FS) (*Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()
	log := b.logger()

	sources, err := collect(fsys)
	if err != nil {
		return nil, fmt.Errorf("collect sources: %w", err)
	}
	res := &Result{
		Documents: make(map[string]*compiler.Compiled, len(sources)),
		Outputs:   map[string]map[string]string{},
	}
	res.Counts.Sources = len(sources)

	// Phase 1: parse.
	parseDiags := make([]diag.List, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, src.path)
			if err != nil {
				return fmt.Errorf("read %s: %w", src.path, err)
			}
			src.data = data
			src.sum = Fingerprint(data)
			if doc, ok := b.Cache.Get(src.path, src.sum); ok {
				src.doc = doc
				return nil
			}
			doc, err := b.parse(src)
			if err != nil {
				parseDiags[i].Add(diag.Error, diag.Location{File: src.path}, "%v", err)
				return nil
			}
			src.doc = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []*doctree.Document
	keep := make(map[string]bool, len(sources))
	for i, src := range sources {
		res.Diagnostics = append(res.Diagnostics, parseDiags[i]...)
		if src.doc == nil {
			continue
		}
		keep[src.path] = true
		if b.Cache.Put(src.path, src.sum, src.doc) {
			res.Counts.Parsed++
		} else {
			res.Counts.Reused++
		}
		docs = append(docs, src.doc)
	}
	b.Cache.Prune(keep)
	log.Debug("parsed sources", "sources", len(sources), "reused", res.Counts.Reused)

	// Barrier: the index is built once and only read afterwards.
	res.Index = resolver.BuildIndex(docs)
	res.Diagnostics = append(res.Diagnostics, res.Index.Diagnostics...)

	// Phase 2: compile.
	compiled := make([]*compiler.Compiled, len(docs))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			c, err := b.compiler().Compile(doc, res.Index)
			if err != nil {
				return err
			}
			compiled[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, c := range compiled {
		res.Documents[c.Document.File] = c
		res.Diagnostics = append(res.Diagnostics, c.AllDiagnostics()...)
	}
	if _, ok := res.Documents[b.Root]; ok {
		res.TOC = compiler.ProjectTOC(b.Root, res.Documents)
	} else if len(docs) > 0 {
		res.Diagnostics.Add(diag.Warning, diag.Location{File: b.Root}, "root document %q not found", b.Root)
	}

	// Phase 3: render.
	if err := b.renderAll(ctx, res, compiled); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	log.Info("build complete",
		"documents", len(docs),
		"formats", strings.Join(b.Formats, ","),
		"warnings", res.Diagnostics.Count(diag.Warning),
		"errors", res.Diagnostics.Count(diag.Error),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (b *Builder) renderAll(ctx context.Context, res *Result, compiled []*compiler.Compiled) error {
	type job struct {
		format string
		doc    *doctree.Document
	}
	var jobs []job
	for _, f := range b.Formats {
		if !b.Renderers.Has(f) {
			return fmt.Errorf("format %s: %w", f, render.ErrNoRenderer)
		}
		res.Outputs[f] = make(map[string]string, len(compiled))
		for _, c := range compiled {
			jobs = append(jobs, job{f, c.Document})
		}
	}

	out := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers())
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := render.Document(b.Renderers, j.doc, j.format, render.Options{
				Tags:      b.Tags,
				Templates: b.Templates,
				Extension: OutputExtension(j.format),
				TitleOf:   res.Index.Title,
			})
			if err != nil {
				return err
			}
			out[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, j := range jobs {
		res.Outputs[j.format][j.doc.File] = out[i]
		res.Counts.Rendered++
		res.Counts.Bytes += len(out[i])
	}
	return b.renderBook(res)
}

// renderBook adds the LaTeX master document that includes the root.
func (b *Builder) renderBook(res *Result) error {
	outputs, ok := res.Outputs["latex"]
	if !ok || b.Templates == nil || res.TOC == nil {
		return nil
	}
	title, _ := res.Index.Title(b.Root)
	s, err := b.Templates.Render("latex/preamble", map[string]any{
		"Title": title,
		"Files": []string{b.Root},
	})
	if errors.Is(err, render.ErrNoTemplate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("latex book: %w", err)
	}
	outputs[BookFile] = s
	return nil
}

func (b *Builder) parse(src *source) (*doctree.Document, error) {
	p, err := parser.ForFile(src.path, b.Extensions)
	if err != nil {
		return nil, err
	}
	doc, err := p.Parse(bytes.NewReader(src.data), src.path)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}

func (b *Builder) compiler() *compiler.Compiler {
	if b.Compiler != nil {
		return b.Compiler
	}
	return compiler.New(resolver.Default(nil))
}

func (b *Builder) workers() int {
	if b.Workers <= 0 {
		return 1
	}
	return b.Workers
}

func (b *Builder) logger() *slog.Logger {
	if b.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Log
}

// collect lists the supported source files below the root of fsys in
// sorted order. Directories whose names start with "_" or "." are skipped.
func collect(fsys fs.FS) ([]*source, error) {
	var out []*source
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !parser.IsSupportedExtension(name) {
			return nil
		}
		out = append(out, &source{path: path.Clean(p)})
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out, err
}
