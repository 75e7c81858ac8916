// Package io reads and writes entity documents.
//
// # Overview
//
// An entity document is a list of rectangles with optional movement
// constraints. The same shape is accepted as JSON, YAML and TOML; GeoJSON
// feature collections are supported for data that comes out of GIS tools.
//
// # Document Format
//
//	{
//	  "entities": [
//	    {"id": "a", "label": "Town hall", "min": [0, 0], "max": [10, 10]},
//	    {"id": "b", "min": [5, 5], "max": [15, 15], "fix": "w", "max_distance": 40}
//	  ]
//	}
//
// Required per entity:
//   - min, max: the lower-left and upper-right corners
//
// Optional:
//   - id: unique identifier (a UUID is generated when omitted)
//   - label: display text
//   - fix: "n", "s", "e", "w" or "all"
//   - max_distance: search radius cap
//
// # GeoJSON
//
// Each feature's geometry bound becomes the entity rectangle. The id is read
// from the feature id or the "id" property; label, fix and max_distance come
// from properties. Writing emits each rectangle as a closed Polygon ring.
//
// # Validation
//
// [Read] validates every entity before returning it: corners must be finite
// and ordered, fix must be known, ids must be unique. Failures are
// [errors.EntityError] values carrying the entity index.
//
// [errors.EntityError]: github.com/matzehuels/declutter/pkg/errors.EntityError
package io
