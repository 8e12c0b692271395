package util

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
)

var slugAlphabet = regexp.MustCompile(`^[a-z0-9-]+$`)

func TestEncodeSlug(t *testing.T) {
	tests := []struct {
		title string
		id    uint
		want  string
	}{
		{"Course 2", 5, "course-2-5"},
		{"Intro to Go", 42, "intro-to-go-42"},
		{"  Hello,   World!  ", 7, "-hello-world--7"},
		{"C++ & Rust -- a comparison", 3, "c-rust-a-comparison-3"},
		{"", 9, "-9"},
		{"!!!", 11, "-11"},
	}

	for _, tt := range tests {
		got := EncodeSlug(tt.title, tt.id)
		if got != tt.want {
			t.Errorf("EncodeSlug(%q, %d) = %q, want %q", tt.title, tt.id, got, tt.want)
		}
	}
}

func TestEncodeSlugTruncatesTitle(t *testing.T) {
	title := strings.Repeat("abcdefghij", 10)
	got := EncodeSlug(title, 123)
	want := title[:50] + "-123"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestSlugRoundTrip(t *testing.T) {
	titles := []string{
		"",
		"?!.,;:",
		"Course 2",
		"Course 2023",
		"2024",
		strings.Repeat("long title with words ", 10),
		"Ünïcödé Çourse",
		"tabs\tand\nnewlines",
		"trailing-hyphen-",
		"---",
	}
	ids := []uint{1, 5, 42, 1000000}

	for _, title := range titles {
		for _, id := range ids {
			slug := EncodeSlug(title, id)
			if !slugAlphabet.MatchString(slug) {
				t.Errorf("EncodeSlug(%q, %d) = %q contains characters outside [a-z0-9-]", title, id, slug)
			}
			if got, want := DecodeSlug(slug), strconv.FormatUint(uint64(id), 10); got != want {
				t.Errorf("DecodeSlug(EncodeSlug(%q, %d)) = %q, want %q", title, id, got, want)
			}
		}
	}
}

func TestDecodeSlug(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{"42", "42"},
		{"course-2-5", "5"},
		{"no-id-here", "no-id-here"},
		{"", ""},
		{"trailing-", "trailing-"},
		{"-7", "7"},
	}

	for _, tt := range tests {
		if got := DecodeSlug(tt.slug); got != tt.want {
			t.Errorf("DecodeSlug(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestParseSlugID(t *testing.T) {
	tests := []struct {
		slug   string
		want   uint
		wantOK bool
	}{
		{"intro-to-go-42", 42, true},
		{"42", 42, true},
		{"no-id-here", 0, false},
		{"course-0", 0, false},
		{"", 0, false},
		{"course-99999999999999999999999", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseSlugID(tt.slug)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseSlugID(%q) = (%d, %v), want (%d, %v)", tt.slug, got, ok, tt.want, tt.wantOK)
		}
	}
}
