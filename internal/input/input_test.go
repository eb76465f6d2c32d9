// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/wp2tt/internal/container"
	wperrors "github.com/pdiddy/wp2tt/internal/errors"
	"github.com/pdiddy/wp2tt/pkg/types"
)

// fakeRuntime stands in for docker/podman. Convert copies docx to the job output.
type fakeRuntime struct {
	docx     []byte
	imageErr error
	runErr   error
	gotImage string
	gotInput []byte
	checks   int
}

func (f *fakeRuntime) Name() string               { return "fake" }
func (f *fakeRuntime) Ready(context.Context) bool { return true }
func (f *fakeRuntime) HasImage(ctx context.Context, _ string) error {
	f.checks++
	if err := ctx.Err(); err != nil {
		return err
	}
	return f.imageErr
}

func (f *fakeRuntime) Convert(_ context.Context, job container.Job) error {
	f.gotImage = job.Image
	f.gotInput, _ = io.ReadAll(job.Input)
	if f.runErr != nil {
		return f.runErr
	}
	_, err := job.Output.Write(f.docx)
	return err
}

func testRegistry(opts Options, rt *fakeRuntime) *Registry {
	return NewRegistry(opts, DocxAdapter{}, OdtAdapter{}, FodtAdapter{}, MarkdownAdapter{},
		NewLegacyAdapterWithRuntime("soffice:test", rt))
}

func TestRegistry_Detect(t *testing.T) {
	reg := testRegistry(Options{}, &fakeRuntime{})
	docx := zipBytes(t, docxParts(sampleDocxBody)...)

	tests := []struct {
		name string
		file string
		data []byte
		want string
	}{
		{"docx by extension", "a.docx", docx, "docx"},
		{"extension is case insensitive", "a.DOCX", docx, "docx"},
		{"docx sniffed", "a.bin", docx, "docx"},
		{"odt by extension", "a.odt", []byte("x"), "odt"},
		{"flat odt sniffed", "a.xml", fodtData(), "fodt"},
		{"markdown", "notes.md", []byte("# hi"), "markdown"},
		{"rtf sniffed", "letter.txt", []byte(`{\rtf1\ansi hello}`), "legacy"},
		{"doc by extension", "old.doc", []byte("x"), "legacy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := reg.Detect(writeFile(t, tt.file, tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.Name())
		})
	}
}

func TestRegistry_DetectUnsupported(t *testing.T) {
	reg := testRegistry(Options{}, &fakeRuntime{})
	_, err := reg.Detect(writeFile(t, "data.txt", []byte("just some text")))
	require.Error(t, err)

	var ufe *wperrors.UnsupportedFormatError
	require.ErrorAs(t, err, &ufe)
	assert.Contains(t, ufe.Reason, ".txt")
	assert.Equal(t, wperrors.ExitUnsupportedFormat, wperrors.ExitCode(err))
}

func TestRegistry_Open(t *testing.T) {
	reg := testRegistry(Options{Ignore: []string{"Strong Emphasis"}}, &fakeRuntime{})
	path := docxFile(t, "doc.docx", sampleDocxBody)

	doc, err := reg.Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, "docx", doc.Format)
	require.Len(t, doc.Paragraphs, 5)
	assert.Equal(t, []types.Run{{Text: "Plain bold tail\tx"}}, doc.Paragraphs[1].Runs,
		"ignored character style merges into its neighbours")
}

func TestRegistry_OpenMissing(t *testing.T) {
	reg := testRegistry(Options{}, &fakeRuntime{})
	_, err := reg.Open(context.Background(), "/nonexistent/file.docx")
	require.Error(t, err)
	assert.Equal(t, wperrors.ExitFailure, wperrors.ExitCode(err))
}

func TestRegistry_OpenAll(t *testing.T) {
	reg := testRegistry(Options{}, &fakeRuntime{})
	a := writeFile(t, "a.md", []byte("# A\n\nfirst\n"))
	b := writeFile(t, "b.md", []byte("second\n"))

	doc, err := reg.OpenAll(context.Background(), []string{a, b})
	require.NoError(t, err)
	var texts []string
	for _, p := range doc.Paragraphs {
		texts = append(texts, p.Text())
	}
	assert.Equal(t, []string{"A", "first", "second"}, texts)

	_, err = reg.OpenAll(context.Background(), nil)
	assert.Error(t, err)
}

func TestLegacyAdapter(t *testing.T) {
	rt := &fakeRuntime{docx: zipBytes(t, docxParts(sampleDocxBody)...)}
	reg := testRegistry(Options{}, rt)
	path := writeFile(t, "old.doc", []byte("legacy bytes"))

	doc, err := reg.Open(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "legacy", doc.Format)
	assert.Equal(t, "soffice:test", rt.gotImage)
	assert.Equal(t, []byte("legacy bytes"), rt.gotInput)
	assert.Len(t, doc.Paragraphs, 5)
}

func TestLegacyAdapter_Failures(t *testing.T) {
	path := writeFile(t, "old.rtf", []byte(`{\rtf1}`))

	a := NewLegacyAdapterWithRuntime("img", &fakeRuntime{imageErr: errors.New("no image")})
	_, err := a.Read(context.Background(), path)
	assert.ErrorIs(t, err, wperrors.ErrUnsupportedFormat)

	a = NewLegacyAdapterWithRuntime("img", &fakeRuntime{runErr: errors.New("boom")})
	_, err = a.Read(context.Background(), path)
	assert.ErrorIs(t, err, wperrors.ErrMalformedDocument)

	a = NewLegacyAdapterWithRuntime("img", &fakeRuntime{docx: bytes.Repeat([]byte("x"), 10)})
	_, err = a.Read(context.Background(), path)
	assert.ErrorIs(t, err, wperrors.ErrMalformedDocument)
}

func TestLegacyAdapter_CancelledLookupIsRetried(t *testing.T) {
	rt := &fakeRuntime{docx: zipBytes(t, docxParts(sampleDocxBody)...)}
	a := NewLegacyAdapterWithRuntime("img", rt)
	path := writeFile(t, "old.doc", []byte("legacy bytes"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := a.Read(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, wperrors.ErrUnsupportedFormat)

	for i := 0; i < 2; i++ {
		doc, err := a.Read(context.Background(), path)
		require.NoError(t, err)
		assert.Len(t, doc.Paragraphs, 5)
	}
	assert.Equal(t, 2, rt.checks, "a successful lookup is kept")
}

func TestRegistry_Comments(t *testing.T) {
	comment := types.Note{Kind: types.NoteComment, Paragraphs: []types.Paragraph{{Runs: []types.Run{{Text: "c"}}}}}
	footnote := types.Note{Kind: types.NoteFootnote, Paragraphs: []types.Paragraph{
		{Style: "annotation reference", Runs: []types.Run{{Text: "f"}}},
	}}
	build := func() *types.Document {
		return &types.Document{Paragraphs: []types.Paragraph{{Runs: []types.Run{
			{Text: "a", Notes: []types.Note{comment, footnote}},
			{Text: "b"},
		}}}}
	}

	doc := build()
	NewRegistry(Options{Ignore: []string{"annotation reference"}}).normalize(doc)
	require.Len(t, doc.Paragraphs[0].Runs, 2)
	notes := doc.Paragraphs[0].Runs[0].Notes
	require.Len(t, notes, 1)
	assert.Equal(t, types.NoteFootnote, notes[0].Kind)
	assert.Equal(t, "", notes[0].Paragraphs[0].Style)
	assert.Equal(t, "b", doc.Paragraphs[0].Runs[1].Text)

	doc = build()
	NewRegistry(Options{Comments: true}).normalize(doc)
	assert.Len(t, doc.Paragraphs[0].Runs[0].Notes, 2)
}
