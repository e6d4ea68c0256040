package db

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSet(t *testing.T) {
	tags := NewSet()

	for _, tag := range []string{"quest", "combat", "gold", "quest"} {
		tags.Add(tag)
	}
	if tags.Size != 3 {
		t.Errorf("Expected duplicate tags to be ignored, size is %d", tags.Size)
	}
	if diff := cmp.Diff([]string{"combat", "gold", "quest"}, tags.Members()); diff != "" {
		t.Errorf("Members() mismatch (-want +got):\n%s", diff)
	}

	if tags.Has("river") || !tags.Has("gold") {
		t.Error("Unexpected Has result")
	}
	if tags.Delete("river") {
		t.Error("Expected deleting a missing tag to report false")
	}

	for _, tag := range tags.Members() {
		if !tags.Delete(tag) {
			t.Errorf("Expected Delete('%s') to report true", tag)
		}
	}
	if tags.Size != 0 || len(tags.Members()) != 0 {
		t.Error("Expected an empty set")
	}
}
