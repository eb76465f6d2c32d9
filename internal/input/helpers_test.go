// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	wordNSDecl = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
	odfNSDecl  = `xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
		`xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" ` +
		`xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" ` +
		`xmlns:table="urn:oasis:names:tc:opendocument:xmlns:table:1.0" ` +
		`xmlns:draw="urn:oasis:names:tc:opendocument:xmlns:drawing:1.0"`
)

// part is one archive member.
type part struct {
	name string
	body string
}

func zipBytes(t *testing.T, parts ...part) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func docxParts(body string) []part {
	return []part{
		{name: "[Content_Types].xml", body: `<?xml version="1.0"?><Types/>`},
		{name: docxDocumentPart, body: `<?xml version="1.0" encoding="UTF-8"?>` +
			`<w:document ` + wordNSDecl + `><w:body>` + body + `<w:sectPr/></w:body></w:document>`},
		{name: docxStylesPart, body: `<?xml version="1.0" encoding="UTF-8"?><w:styles ` + wordNSDecl + `>` +
			`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>` +
			`<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>` +
			`<w:style w:type="character" w:default="1" w:styleId="DefaultParagraphFont"><w:name w:val="Default Paragraph Font"/></w:style>` +
			`<w:style w:type="character" w:styleId="Emph"><w:name w:val="Strong Emphasis"/></w:style>` +
			`</w:styles>`},
	}
}

func docxFile(t *testing.T, name, body string) string {
	t.Helper()
	return writeFile(t, name, zipBytes(t, docxParts(body)...))
}
