package core

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/weave/pkg/errors"
)

const jsonDoc = `{
  "type": "testBox",
  "props": {"width": 200, "height": 100},
  "children": [{"type": "testLeaf", "key": "a"}]
}`

const yamlDoc = `
version: "1.0.0"
root:
  type: testBox
  props: {width: 200, height: 100}
  children:
    - type: testLeaf
      key: a
`

const tomlDoc = `
version = "1.2.0"

[root]
type = "testBox"

[root.props]
width = 200
height = 100

[[root.children]]
type = "testLeaf"
key = "a"
`

func TestDecodeDocumentFormats(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json", jsonDoc, FormatJSON},
		{"yaml", yamlDoc, FormatYAML},
		{"toml", tomlDoc, FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := DecodeDocument([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("DecodeDocument: %v", err)
			}
			if desc.Type != "testBox" || desc.Props.Float("width", 0) != 200 || desc.Props.Float("height", 0) != 100 {
				t.Errorf("root = %+v", desc)
			}
			if len(desc.Children) != 1 || desc.Children[0].Key != "a" || desc.Children[0].Type != "testLeaf" {
				t.Errorf("children = %+v", desc.Children)
			}
		})
	}
}

func TestDecodeDocumentRejectsVersion(t *testing.T) {
	data := []byte(`{"version": "2.0.0", "root": {"type": "testBox"}}`)
	_, err := DecodeDocument(data, FormatJSON)
	if !stderrors.Is(err, errors.ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}

	data = []byte(`{"version": "latest", "root": {"type": "testBox"}}`)
	if _, err := DecodeDocument(data, FormatJSON); !stderrors.Is(err, errors.ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeDocumentErrors(t *testing.T) {
	if _, err := DecodeDocument([]byte(`{"props": {}}`), FormatJSON); err == nil {
		t.Error("a description without a type should fail")
	}
	if _, err := DecodeDocument([]byte(`{`), FormatJSON); err == nil {
		t.Error("malformed JSON should fail")
	}
	if _, err := DecodeDocument([]byte(`type: x`), Format("xml")); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.json": FormatJSON, "b.YML": FormatYAML, "c.toml": FormatTOML} {
		if got, ok := FormatFromPath(path); !ok || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v", path, got, ok)
		}
	}
	if _, ok := FormatFromPath("x.txt"); ok {
		t.Error("unexpected format for .txt")
	}
}
