package io

import (
	"fmt"

	"github.com/paulmach/orb/geojson"

	"github.com/matzehuels/declutter/pkg/errors"
	"github.com/matzehuels/declutter/pkg/reposition"
)

func decodeGeoJSON(data []byte) ([]reposition.Entity, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode geojson")
	}

	doc := Document{Entities: make([]Record, len(fc.Features))}
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, errors.At(i, featureID(f), errors.New(errors.ErrCodeInvalidBounds, "feature has no geometry"))
		}
		b := f.Geometry.Bound()
		rec := Record{
			ID:    featureID(f),
			Label: stringProp(f.Properties, "label"),
			Fix:   stringProp(f.Properties, "fix"),
			Min:   [2]float64{b.Min[0], b.Min[1]},
			Max:   [2]float64{b.Max[0], b.Max[1]},
		}
		if v, ok := f.Properties["max_distance"].(float64); ok {
			rec.MaxDistance = &v
		}
		doc.Entities[i] = rec
	}
	return doc.Decode()
}

func encodeGeoJSON(entities []reposition.Entity) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, e := range entities {
		f := geojson.NewFeature(e.Bounds.ToPolygon())
		f.ID = e.ID
		f.Properties["id"] = e.ID
		if e.Label != "" {
			f.Properties["label"] = e.Label
		}
		if e.Fix != reposition.FixNone {
			f.Properties["fix"] = string(e.Fix)
		}
		if e.MaxDistance != nil {
			f.Properties["max_distance"] = *e.MaxDistance
		}
		fc.Append(f)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode geojson: %w", err)
	}
	return data, nil
}

// featureID prefers the "id" property over the feature id, which GeoJSON
// allows to be a number.
func featureID(f *geojson.Feature) string {
	if s := stringProp(f.Properties, "id"); s != "" {
		return s
	}
	switch id := f.ID.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%g", id)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func stringProp(p geojson.Properties, key string) string {
	s, _ := p[key].(string)
	return s
}
