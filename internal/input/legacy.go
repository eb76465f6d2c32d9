// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pdiddy/wp2tt/internal/container"
	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/pkg/types"
)

var (
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	rtfMagic = []byte(`{\rtf`)
)

// LegacyAdapter handles binary .doc and .rtf files by piping them through a
// conversion image that writes .docx to stdout, then parsing that.
type LegacyAdapter struct {
	image  string
	detect func(ctx context.Context) (container.Runtime, error)

	mu       sync.Mutex
	resolved bool
	runtime  container.Runtime
	err      error
}

// NewLegacyAdapter returns an adapter running cfg.Image under cfg.Runtime,
// or under the first ready runtime when none is configured. The runtime is
// located on first use.
func NewLegacyAdapter(cfg types.ContainerConfig) *LegacyAdapter {
	return &LegacyAdapter{
		image: cfg.Image,
		detect: func(ctx context.Context) (container.Runtime, error) {
			return container.Detect(ctx, cfg.Runtime)
		},
	}
}

// NewLegacyAdapterWithRuntime uses rt instead of detecting one.
func NewLegacyAdapterWithRuntime(image string, rt container.Runtime) *LegacyAdapter {
	return &LegacyAdapter{
		image:  image,
		detect: func(context.Context) (container.Runtime, error) { return rt, nil },
	}
}

func (*LegacyAdapter) Name() string { return "legacy" }

func (*LegacyAdapter) Extensions() []string { return []string{".doc", ".dot", ".rtf"} }

func (*LegacyAdapter) Sniff(_ string, head []byte) bool {
	return bytes.HasPrefix(head, oleMagic) || bytes.HasPrefix(head, rtfMagic)
}

// resolveRuntime locates the runtime and checks the image once per adapter.
// An outcome is not kept when ctx ended during the lookup, so one cancelled
// caller does not decide for the others.
func (a *LegacyAdapter) resolveRuntime(ctx context.Context) (container.Runtime, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.resolved {
		return a.runtime, a.err
	}

	rt, err := a.detect(ctx)
	if err == nil {
		err = rt.HasImage(ctx, a.image)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	a.runtime, a.err, a.resolved = rt, err, true
	return rt, err
}

func (a *LegacyAdapter) Read(ctx context.Context, path string) (*types.Document, error) {
	rt, err := a.resolveRuntime(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &wperrors.UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("legacy formats need the %s image: %v", a.image, err),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	logging.Debug("converting legacy document", "path", path, "runtime", rt.Name(), "image", a.image)
	job := container.Job{Image: a.image, Target: "docx", Input: f, Output: &out}
	if err := rt.Convert(ctx, job); err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: "conversion", Err: err}
	}
	if out.Len() == 0 {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: "conversion", Err: fmt.Errorf("converter produced no output")}
	}

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	if err != nil {
		return nil, &wperrors.MalformedDocumentError{Path: path, Part: "conversion", Err: err}
	}
	return readDocx(path, zr)
}

// DefaultRegistry returns a registry with every built-in adapter. Legacy
// conversion runs under the given container settings.
func DefaultRegistry(opts Options, legacy types.ContainerConfig) *Registry {
	return NewRegistry(opts,
		DocxAdapter{},
		OdtAdapter{},
		FodtAdapter{},
		MarkdownAdapter{},
		NewLegacyAdapter(legacy),
	)
}
