package reposition_test

import (
	"fmt"

	"github.com/matzehuels/declutter/pkg/geom"
	"github.com/matzehuels/declutter/pkg/reposition"
)

func ExampleReposition() {
	entities := []reposition.Entity{
		{ID: "foo", Bounds: geom.NewBounds(0, 0, 10, 10)},
		{ID: "bar", Bounds: geom.NewBounds(5, 5, 15, 15)},
		{ID: "baz", Bounds: geom.NewBounds(12, 3, 22, 13)},
	}

	for _, e := range reposition.Reposition(entities, reposition.WithResolution(1)) {
		fmt.Printf("%s (%g,%g)-(%g,%g)\n", e.ID, e.Bounds.Min[0], e.Bounds.Min[1], e.Bounds.Max[0], e.Bounds.Max[1])
	}
	// Output:
	// foo (0,-6)-(10,4)
	// bar (1,5)-(11,15)
	// baz (12,4)-(22,14)
}

func ExampleSolve() {
	entities := []reposition.Entity{
		{ID: "pin", Bounds: geom.NewBounds(0, 0, 10, 10), Fix: reposition.FixAll},
		{ID: "label", Bounds: geom.NewBounds(5, 5, 15, 15)},
	}

	res := reposition.Solve(entities)
	fmt.Println("converged:", res.Converged, "iterations:", res.Iterations)
	fmt.Printf("label: (%g,%g)\n", res.Entities[1].Bounds.Min[0], res.Entities[1].Bounds.Min[1])
	// Output:
	// converged: true iterations: 2
	// label: (5,11)
}
