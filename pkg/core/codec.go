package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-drift/weave/pkg/errors"
	jsoniter "github.com/json-iterator/go"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// Format names a description encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// SupportedMajor is the document major version this package reads.
const SupportedMajor = "v1"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Document is an optional envelope around a root description.
type Document struct {
	Version string       `json:"version" yaml:"version" toml:"version"`
	Root    *Description `json:"root" yaml:"root" toml:"root"`
}

// DecodeDocument parses a description in the given format. The input is
// either a bare description or a Document whose version must have major
// version SupportedMajor.
func DecodeDocument(data []byte, format Format) (Description, error) {
	var doc Document
	if err := unmarshal(data, format, &doc); err != nil {
		return Description{}, fmt.Errorf("decode %s document: %w", format, err)
	}
	if doc.Root != nil {
		if err := checkVersion(doc.Version); err != nil {
			return Description{}, err
		}
		return validate(*doc.Root)
	}

	var desc Description
	if err := unmarshal(data, format, &desc); err != nil {
		return Description{}, fmt.Errorf("decode %s description: %w", format, err)
	}
	return validate(desc)
}

func unmarshal(data []byte, format Format, out any) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, out)
	case FormatYAML:
		return yaml.Unmarshal(data, out)
	case FormatTOML:
		return toml.Unmarshal(data, out)
	}
	return fmt.Errorf("unknown format %q", format)
}

func checkVersion(version string) error {
	v := version
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a semantic version", errors.ErrUnsupportedVersion, version)
	}
	if semver.Major(v) != SupportedMajor {
		return fmt.Errorf("%w: %s (want %s.x)", errors.ErrUnsupportedVersion, version, SupportedMajor)
	}
	return nil
}

func validate(desc Description) (Description, error) {
	if desc.Type == "" {
		return Description{}, fmt.Errorf("description has no type")
	}
	return desc, nil
}
