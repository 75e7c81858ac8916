package io

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/geom"
	"github.com/matzehuels/declutter/pkg/reposition"
)

// idNamespace scopes the name-based UUIDs of generated entity ids.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/matzehuels/declutter/entity"))

// newID generates ids for entities that arrive without one. The id is a
// UUID v5 over the entity's position in the document and its corners, so
// decoding the same document twice yields the same ids and the same cache
// keys.
var newID = func(i int, r Record) string {
	name := fmt.Sprintf("%d:%g,%g:%g,%g", i, r.Min[0], r.Min[1], r.Max[0], r.Max[1])
	return uuid.NewSHA1(idNamespace, []byte(name)).String()
}

// Document is the serialized form shared by the JSON, YAML and TOML codecs
// and by the HTTP API.
type Document struct {
	Entities []Record `json:"entities" yaml:"entities" toml:"entities"`
}

// Record is one serialized entity.
type Record struct {
	ID          string     `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
	Label       string     `json:"label,omitempty" yaml:"label,omitempty" toml:"label,omitempty"`
	Min         [2]float64 `json:"min" yaml:"min,flow" toml:"min"`
	Max         [2]float64 `json:"max" yaml:"max,flow" toml:"max"`
	Fix         string     `json:"fix,omitempty" yaml:"fix,omitempty" toml:"fix,omitempty"`
	MaxDistance *float64   `json:"max_distance,omitempty" yaml:"max_distance,omitempty" toml:"max_distance,omitempty"`
}

// NewDocument serializes entities.
func NewDocument(entities []reposition.Entity) Document {
	doc := Document{Entities: make([]Record, len(entities))}
	for i, e := range entities {
		doc.Entities[i] = Record{
			ID:          e.ID,
			Label:       e.Label,
			Min:         [2]float64{e.Bounds.Min[0], e.Bounds.Min[1]},
			Max:         [2]float64{e.Bounds.Max[0], e.Bounds.Max[1]},
			Fix:         string(e.Fix),
			MaxDistance: e.MaxDistance,
		}
	}
	return doc
}

// Decode validates the document and converts it into solver entities.
// Missing ids are filled in with name-based UUIDs.
func (d Document) Decode() ([]reposition.Entity, error) {
	out := make([]reposition.Entity, len(d.Entities))
	seen := make(map[string]int, len(d.Entities))

	for i, r := range d.Entities {
		if err := errors.ValidateCorners(r.Min[0], r.Min[1], r.Max[0], r.Max[1]); err != nil {
			return nil, errors.At(i, r.ID, err)
		}

		fix, err := reposition.ParseFix(r.Fix)
		if err != nil {
			return nil, errors.At(i, r.ID, errors.New(errors.ErrCodeInvalidFix, "%v", err))
		}

		if err := errors.ValidateMaxDistance(r.MaxDistance); err != nil {
			return nil, errors.At(i, r.ID, err)
		}

		id := r.ID
		if id == "" {
			id = newID(i, r)
		}
		if err := errors.ValidateID(id); err != nil {
			return nil, errors.At(i, "", err)
		}
		if prev, dup := seen[id]; dup {
			return nil, errors.At(i, id, errors.New(errors.ErrCodeDuplicateID, "id already used by entity %d", prev))
		}
		seen[id] = i

		var maxDist *float64
		if r.MaxDistance != nil {
			v := *r.MaxDistance
			maxDist = &v
		}

		out[i] = reposition.Entity{
			ID:          id,
			Label:       r.Label,
			Bounds:      geom.NewBounds(r.Min[0], r.Min[1], r.Max[0], r.Max[1]),
			Fix:         fix,
			MaxDistance: maxDist,
		}
	}
	return out, nil
}
