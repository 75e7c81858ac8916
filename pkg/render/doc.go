// Package render draws entity arrangements.
//
// # Overview
//
// This package contains the renderers used by the CLI and the HTTP API:
//
//   - Before/after previews of a solved arrangement (in [preview])
//   - Overlap graphs showing which entities collide (in [conflict])
//   - Generic format conversion (SVG to PDF/PNG)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg := preview.RenderSVG(before, after)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// # Previews
//
// The [preview] subpackage draws every entity at its original position as a
// dashed outline and at its resolved position as a filled box, joined by a
// displacement line.
//
// # Overlap Graphs
//
// The [conflict] subpackage renders one node per colliding entity and one
// edge per overlapping pair using Graphviz.
//
//	dot := conflict.ToDOT(entities, reposition.Overlaps(entities), conflict.Options{})
//	svg, err := conflict.RenderSVG(ctx, dot)
//
// [preview]: github.com/matzehuels/declutter/pkg/render/preview
// [conflict]: github.com/matzehuels/declutter/pkg/render/conflict
package render

// Format constants for rendered outputs.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Convert turns SVG bytes into the requested format. SVG input is returned
// unchanged.
func Convert(svg []byte, format string) ([]byte, error) {
	switch format {
	case FormatSVG, "":
		return svg, nil
	case FormatPNG:
		return ToPNG(svg, 2.0)
	case FormatPDF:
		return ToPDF(svg)
	}
	return nil, errUnsupported(format)
}

// ContentType returns the MIME type of a rendered format.
func ContentType(format string) string {
	switch format {
	case FormatPNG:
		return "image/png"
	case FormatPDF:
		return "application/pdf"
	}
	return "image/svg+xml"
}
