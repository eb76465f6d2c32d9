// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package input builds the uniform paragraph/run Document from word
// processor files. Each source format is an Adapter; a Registry picks the
// adapter for a file by extension and, failing that, by content.
package input

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/pkg/types"
)

// sniffSize is how many leading bytes are passed to Sniff.
const sniffSize = 512

// Adapter reads one source format into a Document.
type Adapter interface {
	// Name identifies the format (e.g. "docx").
	Name() string

	// Extensions lists lower-case file extensions, dot included.
	Extensions() []string

	// Sniff reports whether the content looks like this format. head holds
	// the first bytes of the file.
	Sniff(path string, head []byte) bool

	// Read parses the file at path.
	Read(ctx context.Context, path string) (*types.Document, error)
}

// Options tunes how documents are normalized after reading.
type Options struct {
	// Ignore lists source style names treated as unstyled.
	Ignore []string

	// Comments keeps comments, which are otherwise dropped. They are
	// emitted as footnotes.
	Comments bool
}

// Registry dispatches files to adapters.
type Registry struct {
	adapters []Adapter
	opts     Options
}

// NewRegistry returns a registry trying adapters in the given order.
func NewRegistry(opts Options, adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters, opts: opts}
}

// Detect returns the adapter for path, or an UnsupportedFormatError.
func (r *Registry) Detect(path string) (Adapter, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range r.adapters {
		for _, e := range a.Extensions() {
			if e == ext {
				return a, nil
			}
		}
	}

	head, err := readHead(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	for _, a := range r.adapters {
		if a.Sniff(path, head) {
			logging.Debug("format detected from content", "path", path, "format", a.Name())
			return a, nil
		}
	}
	reason := "no adapter recognizes the content"
	if ext != "" {
		reason = fmt.Sprintf("extension %q is not supported and %s", ext, reason)
	}
	return nil, &wperrors.UnsupportedFormatError{Path: path, Reason: reason}
}

// Open reads path with the matching adapter.
func (r *Registry) Open(ctx context.Context, path string) (*types.Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	a, err := r.Detect(path)
	if err != nil {
		return nil, err
	}
	doc, err := a.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	doc.Source = path
	doc.Format = a.Name()
	r.normalize(doc)
	logging.Debug("document read", "path", path, "format", doc.Format, "paragraphs", len(doc.Paragraphs))
	return doc, nil
}

// OpenAll reads every path and appends the documents in order into one.
func (r *Registry) OpenAll(ctx context.Context, paths []string) (*types.Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input documents")
	}
	var merged *types.Document
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := r.Open(ctx, p)
		if err != nil {
			return nil, err
		}
		if merged == nil {
			merged = doc
			continue
		}
		merged.Append(doc)
	}
	return merged, nil
}

// normalize clears ignored styles, drops comments unless they are kept,
// and merges neighbouring runs that end up with the same style. Note
// paragraphs get the same treatment.
func (r *Registry) normalize(doc *types.Document) {
	ignored := map[string]bool{}
	for _, s := range r.opts.Ignore {
		ignored[s] = true
	}
	doc.Paragraphs = r.normalizeParagraphs(doc.Paragraphs, ignored)
}

func (r *Registry) normalizeParagraphs(paras []types.Paragraph, ignored map[string]bool) []types.Paragraph {
	for i := range paras {
		p := &paras[i]
		if ignored[p.Style] {
			p.Style = ""
		}
		runs := p.Runs
		p.Runs = nil
		for _, run := range runs {
			style := run.Style
			if ignored[style] {
				style = ""
			}
			p.AddText(style, run.Text)
			for _, n := range run.Notes {
				if n.Kind == types.NoteComment && !r.opts.Comments {
					continue
				}
				n.Paragraphs = r.normalizeParagraphs(n.Paragraphs, ignored)
				p.AddNote(style, n)
			}
		}
	}
	return paras
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	head := make([]byte, sniffSize)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return head[:n], nil
}

var zipMagic = []byte("PK\x03\x04")

func isZip(head []byte) bool {
	return bytes.HasPrefix(head, zipMagic)
}

// zipHas reports whether the archive at path contains the named part.
func zipHas(path, name string) bool {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return false
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

// readZipPart returns the contents of one archive member. ok is false when
// the member is absent.
func readZipPart(zr *zip.Reader, name string) (data []byte, ok bool, err error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		return data, true, err
	}
	return nil, false, nil
}
