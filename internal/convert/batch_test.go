// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConverter implements Converter for testing. Jobs whose first input is
// listed in fail return an error; delay slows particular inputs down.
type fakeConverter struct {
	mu     sync.Mutex
	calls  []string
	fail   map[string]bool
	cached map[string]bool
	delay  map[string]time.Duration
}

func (f *fakeConverter) Convert(_ context.Context, job Job) (Result, error) {
	in := job.Inputs[0]
	time.Sleep(f.delay[in])
	f.mu.Lock()
	f.calls = append(f.calls, in)
	f.mu.Unlock()
	if f.fail[in] {
		return Result{}, errors.New("container crashed")
	}
	if err := os.WriteFile(job.Output, []byte("out"), 0o644); err != nil {
		return Result{}, err
	}
	return Result{Output: job.Output, Cached: f.cached[in]}, nil
}

func setupInputs(t *testing.T, names ...string) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = writeTestFile(t, dir, n, "# "+n)
	}
	return dir, paths
}

func TestConvertBatch(t *testing.T) {
	_, inputs := setupInputs(t, "a.md", "b.md", "c.md", "d.md")
	fc := &fakeConverter{
		fail:   map[string]bool{inputs[2]: true},
		cached: map[string]bool{inputs[3]: true},
		delay:  map[string]time.Duration{inputs[0]: 50 * time.Millisecond},
	}

	var out bytes.Buffer
	result := ConvertBatch(context.Background(), fc, BatchJobs(inputs, ""), BatchOptions{Workers: 4}, &out)

	assert.Equal(t, BatchResult{Converted: 2, Cached: 1, Failed: 1}, result)
	assert.True(t, result.HasFailures())
	assert.Equal(t, 4, result.Total())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "converted: a.txt", lines[0], "status lines follow input order")
	assert.Equal(t, "converted: b.txt", lines[1])
	assert.Equal(t, "failed:    c.txt (container crashed)", lines[2])
	assert.Equal(t, "cached:    d.txt", lines[3])
	assert.Contains(t, out.String(), "Batch summary: 2 converted, 1 cached, 0 skipped, 1 failed (total: 4)")
}

func TestConvertBatch_SkipsUpToDate(t *testing.T) {
	_, inputs := setupInputs(t, "a.md", "b.md")
	jobs := BatchJobs(inputs, "")

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(inputs[0], past, past))
	require.NoError(t, os.WriteFile(jobs[0].Output, []byte("old"), 0o644))

	fc := &fakeConverter{}
	var out bytes.Buffer
	result := ConvertBatch(context.Background(), fc, jobs, BatchOptions{Workers: 2}, &out)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Converted)
	assert.Equal(t, []string{inputs[1]}, fc.calls)
	assert.Contains(t, out.String(), "skipped:   a.txt (up to date)")

	fc = &fakeConverter{}
	result = ConvertBatch(context.Background(), fc, jobs, BatchOptions{Workers: 2, Force: true}, &bytes.Buffer{})
	assert.Equal(t, 2, result.Converted)
	assert.Len(t, fc.calls, 2)
}

func TestConvertBatch_Cancelled(t *testing.T) {
	_, inputs := setupInputs(t, "a.md", "b.md")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fc := &fakeConverter{}
	result := ConvertBatch(ctx, fc, BatchJobs(inputs, ""), BatchOptions{}, &bytes.Buffer{})
	assert.Equal(t, 2, result.Failed)
	assert.Empty(t, fc.calls)
}

func TestBatchJobs(t *testing.T) {
	jobs := BatchJobs([]string{"in/a.docx", "b.odt"}, "out")
	assert.Equal(t, []Job{
		{Inputs: []string{"in/a.docx"}, Output: filepath.Join("out", "a.txt")},
		{Inputs: []string{"b.odt"}, Output: filepath.Join("out", "b.txt")},
	}, jobs)

	jobs = BatchJobs([]string{"in/a.docx"}, "")
	assert.Equal(t, "in/a.txt", jobs[0].Output)
}
