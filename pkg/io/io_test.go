package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/geom"
	"github.com/matzehuels/declutter/pkg/reposition"
)

func sample() []reposition.Entity {
	return []reposition.Entity{
		{ID: "a", Label: "Town hall", Bounds: geom.NewBounds(0, 0, 10, 10)},
		{ID: "b", Bounds: geom.NewBounds(5, 5, 15, 15), Fix: reposition.FixWest, MaxDistance: lo.ToPtr(40.0)},
		{ID: "c", Bounds: geom.NewBounds(-2.5, 1, 3, 4.5), Fix: reposition.FixAll},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, sample(), f))

			got, err := Read(&buf, f)
			require.NoError(t, err)
			assert.Equal(t, sample(), got)
		})
	}
}

func TestReadFormats(t *testing.T) {
	tests := []struct {
		format Format
		input  string
	}{
		{FormatJSON, `{"entities": [{"id": "a", "min": [0, 0], "max": [10, 10], "fix": "n"}]}`},
		{FormatYAML, "entities:\n  - id: a\n    min: [0, 0]\n    max: [10, 10]\n    fix: north\n"},
		{FormatTOML, "[[entities]]\nid = \"a\"\nmin = [0.0, 0.0]\nmax = [10.0, 10.0]\nfix = \"n\"\n"},
		{FormatGeoJSON, `{"type": "FeatureCollection", "features": [{"type": "Feature", "id": "a",
			"geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]},
			"properties": {"fix": "n"}}]}`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			got, err := Read(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, "a", got[0].ID)
			assert.Equal(t, geom.NewBounds(0, 0, 10, 10), got[0].Bounds)
			assert.Equal(t, reposition.FixNorth, got[0].Fix)
			assert.Nil(t, got[0].MaxDistance)
		})
	}
}

func TestGeoJSONNumericID(t *testing.T) {
	input := `{"type": "FeatureCollection", "features": [{"type": "Feature", "id": 7,
		"geometry": {"type": "Point", "coordinates": [3, 4]}, "properties": {"max_distance": 5}}]}`
	got, err := Decode([]byte(input), FormatGeoJSON)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].ID)
	assert.Equal(t, geom.NewBounds(3, 4, 3, 4), got[0].Bounds)
	require.NotNil(t, got[0].MaxDistance)
	assert.Equal(t, 5.0, *got[0].MaxDistance)
}

func TestGeneratedIDs(t *testing.T) {
	defer func(orig func(int, Record) string) { newID = orig }(newID)
	newID = func(i int, _ Record) string {
		return "gen-" + string(rune('0'+i))
	}

	got, err := Decode([]byte(`{"entities": [{"min": [0,0], "max": [1,1]}, {"id": "x", "min": [0,0], "max": [1,1]}, {"min": [0,0], "max": [1,1]}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []string{"gen-0", "x", "gen-2"}, lo.Map(got, func(e reposition.Entity, _ int) string { return e.ID }))
}

func TestGeneratedIDsAreStable(t *testing.T) {
	doc := []byte(`{"entities": [{"min": [0,0], "max": [1,1]}, {"min": [0,0], "max": [1,1]}, {"min": [5,5], "max": [6,6]}]}`)
	ids := func() []string {
		got, err := Decode(doc, FormatJSON)
		require.NoError(t, err)
		return lo.Map(got, func(e reposition.Entity, _ int) string { return e.ID })
	}

	first := ids()
	assert.Equal(t, first, ids())
	for _, id := range first {
		assert.Len(t, id, 36)
	}
	// Identical boxes at different positions in the document still differ.
	assert.NotEqual(t, first[0], first[1])
	assert.NotEqual(t, first[1], first[2])
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
		index int
	}{
		{"inverted", `{"entities": [{"id": "a", "min": [10,0], "max": [0,10]}]}`, errors.ErrCodeInvalidBounds, 0},
		{"unknown fix", `{"entities": [{"id": "a", "min": [0,0], "max": [1,1]}, {"id": "b", "min": [0,0], "max": [1,1], "fix": "up"}]}`, errors.ErrCodeInvalidFix, 1},
		{"duplicate", `{"entities": [{"id": "a", "min": [0,0], "max": [1,1]}, {"id": "a", "min": [2,2], "max": [3,3]}]}`, errors.ErrCodeDuplicateID, 1},
		{"negative distance", `{"entities": [{"id": "a", "min": [0,0], "max": [1,1], "max_distance": -1}]}`, errors.ErrCodeInvalidInput, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input), FormatJSON)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err))

			var ee *errors.EntityError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.index, ee.Index)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			_, err := Decode([]byte("{{{ not a document"), f)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
		})
	}

	_, err := Decode([]byte("{}"), Format("xml"))
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestDecodeEmpty(t *testing.T) {
	got, err := Decode([]byte(`{"entities": []}`), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"labels.json", FormatJSON, false},
		{"labels.YAML", FormatYAML, false},
		{"labels.yml", FormatYAML, false},
		{"dir/labels.toml", FormatTOML, false},
		{"labels.geojson", FormatGeoJSON, false},
		{"labels.csv", "", true},
		{"labels", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DetectFormat(tt.path)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)
	assert.Equal(t, ".yaml", f.Ext())
	assert.Equal(t, "application/geo+json", FormatGeoJSON.ContentType())

	_, err = ParseFormat("csv")
	assert.Error(t, err)
}

func TestImportExport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels.yaml")

	require.NoError(t, Export(sample(), path, ""))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "min: [0, 0]")

	got, err := Import(path, "")
	require.NoError(t, err)
	assert.Equal(t, sample(), got)

	_, err = Import(filepath.Join(dir, "missing.json"), "")
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()

	err := Export(sample(), filepath.Join(dir, "missing", "out.json"), "")
	assert.Error(t, err)

	_, err = os.Stat("/dev/full")
	if err != nil {
		t.Skip("no /dev/full on this system")
	}
	assert.Error(t, Export(sample(), "/dev/full", FormatJSON), "write failure must be reported")
}
