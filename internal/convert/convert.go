// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert runs the conversion pipeline: read documents, resolve
// their styles through the style map and rules, and write tagged text.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/wp2tt/internal/cache"
	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/internal/input"
	"github.com/pdiddy/wp2tt/internal/logging"
	"github.com/pdiddy/wp2tt/internal/rules"
	"github.com/pdiddy/wp2tt/internal/stylemap"
	"github.com/pdiddy/wp2tt/internal/tagged"
	"github.com/pdiddy/wp2tt/pkg/types"
)

// utf8Suffix is appended to the output path for the debug UTF-8 copy.
const utf8Suffix = ".utf8"

// Job is one conversion: the inputs are appended into a single output.
type Job struct {
	Inputs []string
	Output string
}

// Result describes a finished conversion.
type Result struct {
	RunID  string
	Output string
	Stats  Stats
	Cached bool
}

// Converter turns a Job into tagged text on disk.
type Converter interface {
	Convert(ctx context.Context, job Job) (Result, error)
}

// Cache stores encoded outputs by key and records runs. *cache.Store
// implements it.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, data []byte) error
	RecordRun(ctx context.Context, rec types.RunRecord) (string, error)
}

// Pipeline is the Converter used by the CLI. It is safe for concurrent use;
// each Convert builds its own rule engine.
type Pipeline struct {
	cfg      types.Config
	registry *input.Registry
	cache    Cache
}

// NewPipeline returns a pipeline reading documents through registry. cache
// may be nil.
func NewPipeline(cfg types.Config, registry *input.Registry, c Cache) *Pipeline {
	return &Pipeline{cfg: cfg, registry: registry, cache: c}
}

// DefaultOutput derives the output path from the first input by replacing
// its extension with .txt.
func DefaultOutput(in string) string {
	ext := filepath.Ext(in)
	out := strings.TrimSuffix(in, ext) + ".txt"
	if out == in {
		out = strings.TrimSuffix(in, ext) + ".tagged.txt"
	}
	return out
}

// mapping holds the loaded style map and rules with their raw bytes, which
// feed the cache key.
type mapping struct {
	styles   *stylemap.StyleMap
	rules    *rules.Set
	mapData  []byte
	ruleData []byte
}

func (p *Pipeline) loadMapping() (*mapping, error) {
	mc := p.cfg.Mapping
	opts := stylemap.Options{Policy: mc.Policy, Fallback: mc.Fallback, Ignore: mc.IgnoreStyles}
	m := &mapping{}

	var err error
	if mc.StyleMap != "" {
		if m.mapData, err = readSetting("style_map", mc.StyleMap); err != nil {
			return nil, err
		}
		m.styles, err = stylemap.Parse(mc.StyleMap, m.mapData, opts)
	} else {
		m.styles, err = stylemap.New(opts)
	}
	if err != nil {
		return nil, err
	}

	if mc.Rules != "" {
		if m.ruleData, err = readSetting("rules", mc.Rules); err != nil {
			return nil, err
		}
		if m.rules, err = rules.Parse(mc.Rules, m.ruleData); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// readSetting reads a file named by a configuration key.
func readSetting(field, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &wperrors.ConfigError{Field: field, Message: err.Error()}
	}
	return data, nil
}

func (p *Pipeline) emitOptions(doc *types.Document) tagged.Options {
	oc := p.cfg.Output
	opts := tagged.Options{Encoding: oc.Encoding, Maqaf: oc.Maqaf, Vav: oc.Vav}
	switch oc.RTL {
	case types.RTLOn:
		opts.RTL = true
	case types.RTLOff:
		opts.RTL = false
	default:
		opts.RTL = doc != nil && doc.RTL
	}
	return opts
}

// cacheKey hashes everything that influences the output bytes.
func (p *Pipeline) cacheKey(job Job, m *mapping) (string, error) {
	parts := [][]byte{[]byte(p.settingsFingerprint()), m.mapData, m.ruleData}
	for _, in := range job.Inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", in, err)
		}
		parts = append(parts, []byte(filepath.Ext(in)), data)
	}
	return cache.Key(parts...), nil
}

// settingsFingerprint covers every setting that changes the output bytes,
// including the converter image legacy inputs go through.
func (p *Pipeline) settingsFingerprint() string {
	mc, oc, cc := p.cfg.Mapping, p.cfg.Output, p.cfg.Container
	return strings.Join([]string{
		string(mc.Policy), mc.Fallback.Paragraph, mc.Fallback.Character,
		strings.Join(mc.IgnoreStyles, "\x1f"), mc.StopMarker, fmt.Sprint(mc.Comments),
		string(oc.Encoding), string(oc.RTL),
		fmt.Sprint(oc.Maqaf), fmt.Sprint(oc.Vav),
		cc.Image, cc.Runtime,
	}, "\x1e")
}

// Convert runs one job. The style map and rules are loaded before any input
// is read, so mapping errors surface first.
func (p *Pipeline) Convert(ctx context.Context, job Job) (Result, error) {
	if len(job.Inputs) == 0 {
		return Result{}, fmt.Errorf("no input documents")
	}
	if job.Output == "" {
		job.Output = DefaultOutput(job.Inputs[0])
	}
	rec := types.RunRecord{ID: uuid.NewString(), Inputs: job.Inputs, Output: job.Output, Started: time.Now().UTC()}
	ctx = logging.WithRunID(ctx, rec.ID)

	res, err := p.convert(ctx, job, &rec)
	rec.Finished = time.Now().UTC()
	switch {
	case err != nil:
		rec.Status = types.ConversionFailed
		rec.Error = err.Error()
	case res.Cached:
		rec.Status = types.ConversionCached
	default:
		rec.Status = types.ConversionDone
	}
	p.record(ctx, rec)
	res.RunID = rec.ID
	return res, err
}

func (p *Pipeline) convert(ctx context.Context, job Job, rec *types.RunRecord) (Result, error) {
	res := Result{Output: job.Output}
	log := logging.FromContext(ctx)

	m, err := p.loadMapping()
	if err != nil {
		return res, err
	}

	if p.cache != nil {
		key, err := p.cacheKey(job, m)
		if err != nil {
			return res, err
		}
		rec.Key = key
		data, ok, err := p.cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache lookup failed", "error", err)
		} else if ok {
			if err := tagged.WriteFile(job.Output, data); err != nil {
				return res, err
			}
			log.Info("output restored from cache", "output", job.Output)
			res.Cached = true
			rec.CacheHit = true
			return res, nil
		}
	}

	doc, err := p.registry.OpenAll(ctx, job.Inputs)
	if err != nil {
		return res, err
	}
	if marker := p.cfg.Mapping.StopMarker; marker != "" {
		applyStopMarker(ctx, doc, marker)
	}

	engine := rules.NewEngine(m.styles, m.rules)
	resolved := engine.Resolve(doc)
	res.Stats = collectStats(doc, resolved, m.styles, engine.Applied())
	rec.Paragraphs = len(resolved)

	opts := p.emitOptions(doc)
	text := tagged.Emit(resolved, opts)
	data, err := tagged.Encode(text, opts.Encoding)
	if err != nil {
		return res, err
	}
	if err := tagged.WriteFile(job.Output, data); err != nil {
		return res, err
	}
	if p.cfg.Output.DebugUTF8 {
		if err := tagged.WriteFile(job.Output+utf8Suffix, []byte(text)); err != nil {
			return res, err
		}
	}
	log.Info("converted", "inputs", len(job.Inputs), "output", job.Output,
		"paragraphs", res.Stats.Paragraphs, "runs", res.Stats.Runs)

	if p.cache != nil && rec.Key != "" {
		if err := p.cache.Put(ctx, rec.Key, data); err != nil {
			log.Warn("caching output failed", "error", err)
		}
	}
	return res, nil
}

// record stores the run in the history, logging rather than failing.
func (p *Pipeline) record(ctx context.Context, rec types.RunRecord) {
	if p.cache == nil {
		return
	}
	if _, err := p.cache.RecordRun(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn("recording run failed", "error", err)
	}
}

// applyStopMarker drops the first paragraph whose text starts with marker
// and everything after it.
func applyStopMarker(ctx context.Context, doc *types.Document, marker string) {
	for i, para := range doc.Paragraphs {
		if strings.HasPrefix(para.Text(), marker) {
			logging.FromContext(ctx).Info("stop marker found", "paragraph", i+1)
			doc.Paragraphs = doc.Paragraphs[:i]
			return
		}
	}
	logging.FromContext(ctx).Info("stop marker was never found", "marker", marker)
}
