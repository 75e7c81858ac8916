package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/reposition"
)

// Read decodes and validates an entity document from r.
// Read does not close r.
func Read(r io.Reader, format Format) ([]reposition.Entity, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Decode(data, format)
}

// Decode parses an in-memory document.
func Decode(data []byte, format Format) ([]reposition.Entity, error) {
	if format == FormatGeoJSON {
		return decodeGeoJSON(data)
	}

	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", format)
	}
	return doc.Decode()
}

// Write encodes entities to w in the given format.
func Write(w io.Writer, entities []reposition.Entity, format Format) error {
	data, err := Encode(entities, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Encode renders entities as a document in the given format.
func Encode(entities []reposition.Entity, format Format) ([]byte, error) {
	if format == FormatGeoJSON {
		return encodeGeoJSON(entities)
	}

	doc := NewDocument(entities)
	var buf bytes.Buffer
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode: %w", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format %q", format)
	}
	return buf.Bytes(), nil
}

// Import reads an entity document from path. An empty format is detected
// from the file extension.
func Import(path string, format Format) ([]reposition.Entity, error) {
	format, err := resolveFormat(path, format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file not found: %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	entities, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, nil
}

// Export writes entities to path. An empty format is detected from the file
// extension.
func Export(entities []reposition.Entity, path string, format Format) error {
	format, err := resolveFormat(path, format)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(f, entities, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func resolveFormat(path string, format Format) (Format, error) {
	if format != "" {
		return format, nil
	}
	return DetectFormat(path)
}
