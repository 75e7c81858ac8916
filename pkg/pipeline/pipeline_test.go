package pipeline

import (
	"testing"
	"time"

	"github.com/matzehuels/declutter/pkg/errors"
)

func TestValidatePreviewFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidatePreviewFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePreviewFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}

	if err := opts.ValidateForResolve(); err != nil {
		t.Errorf("Empty options should pass: %v", err)
	}

	if opts.Resolution != DefaultResolution {
		t.Errorf("Resolution should be %g, got %g", DefaultResolution, opts.Resolution)
	}
	if opts.Budget() != DefaultBudget {
		t.Errorf("Budget should be %s, got %s", DefaultBudget, opts.Budget())
	}
	if opts.AngleStep != DefaultAngleStep {
		t.Errorf("AngleStep should be %g, got %g", DefaultAngleStep, opts.AngleStep)
	}
	if opts.SearchLimit != DefaultSearchLimit {
		t.Errorf("SearchLimit should be %d, got %d", DefaultSearchLimit, opts.SearchLimit)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForResolve(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative resolution", Options{Resolution: -1}},
		{"negative budget", Options{BudgetMS: -5}},
		{"angle step too large", Options{AngleStep: 720}},
		{"negative search limit", Options{SearchLimit: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForResolve()
			if !errors.Is(err, errors.ErrCodeInvalidOption) {
				t.Errorf("ValidateForResolve() = %v, want %s", err, errors.ErrCodeInvalidOption)
			}
		})
	}

	opts := Options{Resolution: 5, BudgetMS: 1000}
	if err := opts.ValidateForResolve(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Budget() != time.Second {
		t.Errorf("Budget() = %s, want 1s", opts.Budget())
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{Width: -1}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Negative width should fail")
	}

	opts = Options{PreviewFormat: "gif"}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Unknown preview format should fail")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Resolution: 2}

	// First call
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}

	original := opts.String()
	originalWidth := opts.Width
	originalFormat := opts.PreviewFormat

	// Second call should be idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}

	if opts.String() != original {
		t.Errorf("solver options changed on second call: %s != %s", opts.String(), original)
	}
	if opts.Width != originalWidth {
		t.Error("Width changed on second call")
	}
	if opts.PreviewFormat != originalFormat {
		t.Error("PreviewFormat changed on second call")
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if opts.Width != DefaultWidth {
		t.Errorf("Width should be %d, got %d", DefaultWidth, opts.Width)
	}
	if opts.PreviewFormat != DefaultPreviewFormat {
		t.Errorf("PreviewFormat should be %s, got %s", DefaultPreviewFormat, opts.PreviewFormat)
	}
}

func TestKeyOptsFollowOptions(t *testing.T) {
	a := Options{Resolution: 1}
	b := Options{Resolution: 5}
	a.SetResolveDefaults()
	b.SetResolveDefaults()

	if a.ResultKeyOpts() == b.ResultKeyOpts() {
		t.Error("ResultKeyOpts should differ by resolution")
	}

	a.SetRenderDefaults()
	c := a
	c.Labels = true
	if a.PreviewKeyOpts() == c.PreviewKeyOpts() {
		t.Error("PreviewKeyOpts should differ by labels")
	}
}

func TestOptionsString(t *testing.T) {
	opts := Options{}
	opts.SetResolveDefaults()
	want := "resolution=1 budget=300ms angle_step=45 search_limit=1000"
	if got := opts.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
