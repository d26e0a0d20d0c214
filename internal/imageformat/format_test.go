package imageformat_test

import (
	"testing"

	"picdup/internal/imageformat"
)

func TestIsSupported(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"archive/shot.PnG", true},
		{"scan.tiff", true},
		{"scan.tif", true},
		{"modern.heic", true},
		{"modern.webp", true},
		{"clip.mp4", false},
		{"notes.txt", false},
		{"noextension", false},
		{"trailing.dot.", false},
		{".hidden", false},
	}
	for _, tc := range cases {
		if got := imageformat.IsSupported(tc.path); got != tc.want {
			t.Errorf("IsSupported(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"photo.JPG", "jpg"},
		{"dir/photo.jpeg", "jpeg"},
		{"noextension", ""},
		{"double.tar.gz", "gz"},
	}
	for _, tc := range cases {
		if got := imageformat.Format(tc.path); got != tc.want {
			t.Errorf("Format(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}

func TestSupportedIsSortedAndComplete(t *testing.T) {
	names := imageformat.Supported()
	if len(names) != 10 {
		t.Fatalf("expected 10 supported formats, got %d: %v", len(names), names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("supported list not sorted: %v", names)
		}
	}
}
