package scoring

import "testing"

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-50, 0},
		{0, 0},
		{55, 55},
		{100, 100},
		{140, 100},
	}
	for _, tc := range tests {
		if got := clamp(tc.in); got != tc.want {
			t.Errorf("clamp(%d): got %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Serve images in next-gen formats", "serve-images-in-next-gen-formats"},
		{"  Reduce   unused JavaScript ", "reduce-unused-javascript"},
		{"Minify CSS", "minify-css"},
	}
	for _, tc := range tests {
		if got := slug(tc.in); got != tc.want {
			t.Errorf("slug(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
