// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package input

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Namespaces used by the XML adapters. Queries bind prefixes to these URIs,
// so documents using other prefixes still match.
var (
	wordNS = map[string]string{
		"w": "http://schemas.openxmlformats.org/wordprocessingml/2006/main",
	}
	odfNS = map[string]string{
		"office": "urn:oasis:names:tc:opendocument:xmlns:office:1.0",
		"style":  "urn:oasis:names:tc:opendocument:xmlns:style:1.0",
		"text":   "urn:oasis:names:tc:opendocument:xmlns:text:1.0",
	}
)

// mustCompile compiles a namespace-aware XPath expression at init time.
func mustCompile(expr string, ns map[string]string) *xpath.Expr {
	e, err := xpath.CompileWithNS(expr, ns)
	if err != nil {
		panic(fmt.Sprintf("invalid xpath %q: %v", expr, err))
	}
	return e
}

func parseXML(data []byte) (*xmlquery.Node, error) {
	return xmlquery.Parse(bytes.NewReader(data))
}

// attr returns the value of the attribute with the given local name,
// whatever its prefix.
func attr(n *xmlquery.Node, local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// hasAttr reports whether n carries an attribute with the given local name.
func hasAttr(n *xmlquery.Node, local string) bool {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return true
		}
	}
	return false
}

// child returns the first element child with the given local name.
func child(n *xmlquery.Node, local string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

// isText reports whether n carries character data.
func isText(n *xmlquery.Node) bool {
	return n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode
}
