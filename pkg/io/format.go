package io

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/declutter/pkg/errors"
)

// Format identifies a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatGeoJSON Format = "geojson"
)

// Formats lists every supported format.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatGeoJSON}

var extFormats = map[string]Format{
	".json":    FormatJSON,
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".toml":    FormatTOML,
	".geojson": FormatGeoJSON,
}

// ParseFormat converts a format name ("yml" is accepted for YAML).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "geojson":
		return FormatGeoJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (must be one of: json, yaml, toml, geojson)", s)
}

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extFormats[ext]; ok {
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot detect format of %q; use an explicit format", path)
}

// Ext returns the canonical file extension for f, including the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return "." + string(f)
}

// ContentType returns the MIME type used when serving f over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatTOML:
		return "application/toml"
	case FormatGeoJSON:
		return "application/geo+json"
	default:
		return "application/json"
	}
}
