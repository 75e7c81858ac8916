package render

import (
	"testing"

	"github.com/matzehuels/declutter/pkg/errors"
)

func TestConvertSVGPassthrough(t *testing.T) {
	in := []byte("<svg/>")
	for _, f := range []string{"", FormatSVG} {
		out, err := Convert(in, f)
		if err != nil {
			t.Fatalf("Convert(%q) error: %v", f, err)
		}
		if string(out) != string(in) {
			t.Errorf("Convert(%q) = %s, want passthrough", f, out)
		}
	}
}

func TestConvertUnsupported(t *testing.T) {
	_, err := Convert([]byte("<svg/>"), "gif")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Convert(gif) error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestConvertMissingBinary(t *testing.T) {
	defer func(orig string) { rsvgBinary = orig }(rsvgBinary)
	rsvgBinary = "declutter-no-such-rsvg-convert"

	_, err := ToPNG([]byte("<svg/>"), 1)
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ToPNG without converter error = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatSVG: "image/svg+xml",
		FormatPNG: "image/png",
		FormatPDF: "application/pdf",
		"":        "image/svg+xml",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}
