package model

import "testing"

func TestSlugFromName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Igreja Batista Central", "igreja-batista-central"},
		{"collapses internal whitespace", "  Multi   Space  ", "multi-space"},
		{"single word", "Grace", "grace"},
		{"tabs and newlines", "First\tBaptist\nChurch", "first-baptist-church"},
		{"already lower", "hope chapel", "hope-chapel"},
		{"empty", "", ""},
		{"only whitespace", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlugFromName(tc.in); got != tc.want {
				t.Fatalf("SlugFromName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
