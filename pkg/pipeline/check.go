package pipeline

import (
	"github.com/matzehuels/declutter/pkg/reposition"
)

// Conflict describes one overlapping pair by entity id.
type Conflict struct {
	A    string     `json:"a"`
	B    string     `json:"b"`
	Min  [2]float64 `json:"min"`
	Max  [2]float64 `json:"max"`
	Area float64    `json:"area"`
}

// Conflicts lists every overlapping pair in entities.
func Conflicts(entities []reposition.Entity) []Conflict {
	pairs := reposition.Overlaps(entities)
	out := make([]Conflict, len(pairs))
	for i, p := range pairs {
		out[i] = Conflict{
			A:    entities[p.I].ID,
			B:    entities[p.J].ID,
			Min:  [2]float64{p.Area.Min[0], p.Area.Min[1]},
			Max:  [2]float64{p.Area.Max[0], p.Area.Max[1]},
			Area: (p.Area.Max[0] - p.Area.Min[0]) * (p.Area.Max[1] - p.Area.Min[1]),
		}
	}
	return out
}
