package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewEntry(t *testing.T) {
	entry, err := NewEntry("  Ambush in the forest ", " Three bandits and a hungry wolf. ",
		WithMood(" tense "), WithTags("combat", " ", " forest "))
	if err != nil {
		t.Fatal(err)
	}

	if entry.Title != "Ambush in the forest" || entry.Body != "Three bandits and a hungry wolf." {
		t.Errorf("Expected title and body to be trimmed, got %q / %q", entry.Title, entry.Body)
	}
	if entry.Mood != "tense" {
		t.Errorf("Expected mood 'tense', got %q", entry.Mood)
	}
	if diff := cmp.Diff([]string{"combat", "forest"}, entry.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
	if len(entry.ID) != 16 {
		t.Errorf("Expected a 16 character ID, got %q", entry.ID)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	other, _ := NewEntry("t", "b")
	if other.ID == entry.ID {
		t.Error("Expected entries to get distinct IDs")
	}
}

func TestNewEntryValidation(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		err   error
	}{
		{"missing title", "", "body", ErrMissingTitle},
		{"blank title", "   ", "body", ErrMissingTitle},
		{"missing body", "title", "", ErrMissingBody},
		{"blank body", "title", "\n\t", ErrMissingBody},
		{"long body", "title", strings.Repeat("x", MaxBodyLen+1), ErrBodyTooLong},
		{"max body", "title", strings.Repeat("x", MaxBodyLen), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEntry(tt.title, tt.body)
			if !errors.Is(err, tt.err) {
				t.Errorf("Expected error %v, got %v", tt.err, err)
			}
		})
	}
}

func TestSampleEntries(t *testing.T) {
	samples := SampleEntries()
	if len(samples) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(samples))
	}
	for _, s := range samples {
		if s.Title == "" || s.Body == "" || s.Mood == "" {
			t.Errorf("Expected sample to be fully populated: %+v", s)
		}
	}
}
