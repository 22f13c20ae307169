package conversion_test

import (
	"path/filepath"
	"testing"

	"downconv/internal/conversion"
)

func TestDestinationName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Artist - Album [24bit FLAC]", "Artist - Album [FLAC]"},
		{"Artist - Album [24 bit FLAC]", "Artist - Album [FLAC]"},
		{"Artist - Album (2020) [24BIT flac]", "Artist - Album (2020) [FLAC]"},
		{"Artist - Album [Flac]", "Artist - Album [16bit FLAC]"},
		{"Artist - Album [FLAC 96kHz]", "Artist - Album [16bit FLAC 96kHz]"},
		{"Artist - Album", "Artist - Album [FLAC]"},
		{"Artist - Album [WEB]", "Artist - Album [WEB] [FLAC]"},
	}
	for _, tc := range cases {
		if got := conversion.DestinationName(tc.in); got != tc.want {
			t.Fatalf("DestinationName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDestinationForUsesSameParent(t *testing.T) {
	source := filepath.Join("/music", "incoming", "Artist - Album [24bit FLAC]")
	dest := conversion.DestinationFor(source + "/")

	if dest.Name != "Artist - Album [FLAC]" {
		t.Fatalf("unexpected name %q", dest.Name)
	}
	want := filepath.Join("/music", "incoming", "Artist - Album [FLAC]")
	if dest.Path != want {
		t.Fatalf("unexpected path %q, want %q", dest.Path, want)
	}
}
