package cache

import "time"

// Keyer builds cache keys for pipeline stages.
type Keyer interface {
	// ResultKey identifies a solved arrangement.
	ResultKey(docHash string, opts ResultKeyOpts) string

	// PreviewKey identifies a rendered preview of a solved arrangement.
	PreviewKey(resultHash string, opts PreviewKeyOpts) string

	// GraphKey identifies a rendered overlap graph.
	GraphKey(docHash string) string
}

// ResultKeyOpts holds the solver options that change the outcome.
type ResultKeyOpts struct {
	Resolution  float64 `json:"resolution"`
	BudgetMS    int64   `json:"budget_ms"`
	AngleStep   float64 `json:"angle_step"`
	SearchLimit int     `json:"search_limit"`
}

// PreviewKeyOpts holds the render options that change a preview.
type PreviewKeyOpts struct {
	Format      string `json:"format"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ShowLabels  bool   `json:"show_labels"`
	ShowOrigins bool   `json:"show_origins"`
}

// DefaultKeyer hashes its inputs into namespaced keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(docHash string, opts ResultKeyOpts) string {
	return hashKey("result", docHash, opts)
}

// PreviewKey implements Keyer.
func (DefaultKeyer) PreviewKey(resultHash string, opts PreviewKeyOpts) string {
	return hashKey("preview", resultHash, opts)
}

// GraphKey implements Keyer.
func (DefaultKeyer) GraphKey(docHash string) string {
	return hashKey("graph", docHash)
}

// Entry lifetimes per stage.
const (
	TTLResult  = 7 * 24 * time.Hour
	TTLPreview = 24 * time.Hour
	TTLGraph   = 24 * time.Hour
)
