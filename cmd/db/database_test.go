package db

import (
	"errors"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustEntry(t *testing.T, title string, opts ...EntryOption) Entry {
	t.Helper()
	entry, err := NewEntry(title, title+" body", opts...)
	if err != nil {
		t.Fatal(err)
	}
	return entry
}

func titles(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Title)
	}
	return out
}

func TestDiary(t *testing.T) {
	for name, linkage := range linkages {
		t.Run(name, func(t *testing.T) {
			d := NewDatabase(linkage)

			for _, title := range []string{"one", "two", "three"} {
				if _, err := d.DiaryPushFront("log", mustEntry(t, title)); err != nil {
					t.Fatal(err)
				}
			}
			entries, _ := d.DiaryEntries("log")
			if diff := cmp.Diff([]string{"three", "two", "one"}, titles(entries)); diff != "" {
				t.Fatalf("DiaryEntries() mismatch (-want +got):\n%s", diff)
			}

			removed, err := d.DiaryPopFront("log")
			if err != nil || removed.Title != "three" {
				t.Fatalf("Expected DiaryPopFront() to return 'three', got %q (%v)", removed.Title, err)
			}

			if n, err := d.DiaryPushBack("log", mustEntry(t, "four")); err != nil || n != 3 {
				t.Fatalf("Expected DiaryPushBack() to return 3, got %d (%v)", n, err)
			}
			removed, err = d.DiaryPopBack("log")
			if err != nil || removed.Title != "four" {
				t.Fatalf("Expected DiaryPopBack() to return 'four', got %q (%v)", removed.Title, err)
			}

			d.DiaryPopFront("log")
			d.DiaryPopFront("log")
			if _, err := d.DiaryPopFront("log"); !errors.Is(err, ErrEmptyList) {
				t.Fatalf("Expected ErrEmptyList, got %v", err)
			}
			if _, err := d.DiaryPopBack("log"); !errors.Is(err, ErrEmptyList) {
				t.Fatalf("Expected ErrEmptyList, got %v", err)
			}

			if empty, _ := d.DiaryIsEmpty("log"); !empty {
				t.Error("Expected diary to be empty")
			}
			if d.Type("log") != "diary" {
				t.Error("Expected an emptied diary to keep its key")
			}
		})
	}
}

func TestDiaryMissingKey(t *testing.T) {
	d := NewDatabase(Doubly)

	if _, err := d.DiaryPopFront("nope"); !errors.Is(err, ErrEmptyList) {
		t.Errorf("Expected ErrEmptyList, got %v", err)
	}
	if entries, err := d.DiaryEntries("nope"); err != nil || len(entries) != 0 {
		t.Errorf("Expected no entries, got %v (%v)", entries, err)
	}
	if empty, err := d.DiaryIsEmpty("nope"); err != nil || !empty {
		t.Error("Expected a missing diary to be empty")
	}
	if n, err := d.DiaryLen("nope"); err != nil || n != 0 {
		t.Error("Expected a missing diary to have length 0")
	}
	if d.Size() != 0 {
		t.Error("Expected reads not to create keys")
	}
}

func TestDiarySeedResetTags(t *testing.T) {
	d := NewDatabase(Singly)

	n, err := d.DiarySeed("log")
	if err != nil || n != 3 {
		t.Fatalf("Expected DiarySeed() to return 3, got %d (%v)", n, err)
	}
	samples := SampleEntries()
	entries, _ := d.DiaryEntries("log")
	want := []string{samples[1].Title, samples[0].Title, samples[2].Title}
	if diff := cmp.Diff(want, titles(entries)); diff != "" {
		t.Errorf("Seed order mismatch (-want +got):\n%s", diff)
	}

	d.DiaryPushBack("log", mustEntry(t, "tagged", WithTags("road", "guild")))
	d.DiaryPushBack("log", mustEntry(t, "tagged again", WithTags("road")))
	tags, _ := d.DiaryTags("log")
	if !reflect.DeepEqual(tags, []string{"guild", "road"}) {
		t.Errorf("Expected distinct sorted tags, got %v", tags)
	}

	if err := d.DiaryReset("log"); err != nil {
		t.Fatal(err)
	}
	if n, _ := d.DiaryLen("log"); n != 0 {
		t.Error("Expected DiaryReset() to drop all entries")
	}
	if d.Type("log") != "diary" {
		t.Error("Expected DiaryReset() to keep the key")
	}
}

func TestWrongType(t *testing.T) {
	d := NewDatabase(Doubly)
	d.RPush("list", "a")
	d.DiaryPushFront("log", mustEntry(t, "x"))

	if _, err := d.DiaryPushFront("list", mustEntry(t, "y")); !errors.Is(err, ErrWrongType) {
		t.Errorf("Expected ErrWrongType, got %v", err)
	}
	if _, err := d.DiaryPopBack("list"); !errors.Is(err, ErrWrongType) {
		t.Errorf("Expected ErrWrongType, got %v", err)
	}
	if _, _, err := d.LPop("log"); !errors.Is(err, ErrWrongType) {
		t.Errorf("Expected ErrWrongType, got %v", err)
	}
	if _, err := d.QAdd("log", "v"); !errors.Is(err, ErrWrongType) {
		t.Errorf("Expected ErrWrongType, got %v", err)
	}
	if _, err := d.SAdd("list", "v"); !errors.Is(err, ErrWrongType) {
		t.Errorf("Expected ErrWrongType, got %v", err)
	}
}

func TestLists(t *testing.T) {
	d := NewDatabase(Doubly)

	d.RPush("l", "2", "5", "7")
	if n, _ := d.LPush("l", "1", "0"); n != 5 {
		t.Errorf("Expected LPush() to return 5, got %d", n)
	}

	tests := []struct {
		start, stop int
		want        []string
	}{
		{0, -1, []string{"0", "1", "2", "5", "7"}},
		{1, 2, []string{"1", "2"}},
		{-2, -1, []string{"5", "7"}},
		{3, 100, []string{"5", "7"}},
		{-100, 0, []string{"0"}},
		{4, 2, []string{}},
		{9, 12, []string{}},
	}
	for _, tt := range tests {
		got, err := d.LRange("l", tt.start, tt.stop)
		if err != nil || !reflect.DeepEqual(got, tt.want) {
			t.Errorf("LRange(%d, %d) = %v (%v), want %v", tt.start, tt.stop, got, err, tt.want)
		}
	}

	if v, found, _ := d.RPop("l"); !found || v != "7" {
		t.Error("Expected RPop() to return 7")
	}
	if v, found, _ := d.LPop("l"); !found || v != "0" {
		t.Error("Expected LPop() to return 0")
	}
	if n, _ := d.LLen("l"); n != 3 {
		t.Errorf("Expected LLen() to be 3, got %d", n)
	}

	d.LPop("l")
	d.LPop("l")
	d.LPop("l")
	if d.Type("l") != "none" {
		t.Error("Expected a drained list to be deleted")
	}
	if _, found, err := d.LPop("l"); found || err != nil {
		t.Error("Expected LPop() on a missing key to report not found")
	}
}

func TestQueuesAndSets(t *testing.T) {
	d := NewDatabase(Doubly)

	d.QAdd("q", "a", "b")
	if v, ok, _ := d.QPop("q"); !ok || v != "a" {
		t.Error("Expected QPop() to return a")
	}
	if n, _ := d.QLen("q"); n != 1 {
		t.Error("Expected QLen() to be 1")
	}
	if v, ok, _ := d.QPeek("q"); !ok || v != "b" {
		t.Error("Expected QPeek() to return b")
	}
	if n, _ := d.QLen("q"); n != 1 {
		t.Error("Expected QPeek() to leave the queue untouched")
	}
	d.QPop("q")
	if _, ok, _ := d.QPeek("q"); ok {
		t.Error("Expected QPeek() on a missing queue to report false")
	}
	if d.Type("q") != "none" {
		t.Error("Expected a drained queue to be deleted")
	}

	if n, _ := d.SAdd("s", "x", "y", "x"); n != 2 {
		t.Errorf("Expected SAdd() to add 2 members, got %d", n)
	}
	if ok, _ := d.SIsMember("s", "y"); !ok {
		t.Error("Expected y to be a member")
	}
	if n, _ := d.SCard("s"); n != 2 {
		t.Error("Expected SCard() to be 2")
	}
	if n, _ := d.SRem("s", "x", "y", "z"); n != 2 {
		t.Errorf("Expected SRem() to remove 2 members, got %d", n)
	}
	if d.Type("s") != "none" {
		t.Error("Expected an empty set to be deleted")
	}
}

func TestKeysAndDel(t *testing.T) {
	d := NewDatabase(Doubly)
	d.RPush("list:1", "a")
	d.RPush("list:2", "a")
	d.DiaryPushFront("diary", mustEntry(t, "x"))

	keys, err := d.Keys("list:*")
	if err != nil || !reflect.DeepEqual(keys, []string{"list:1", "list:2"}) {
		t.Errorf("Unexpected Keys() result %v (%v)", keys, err)
	}
	if _, err := d.Keys("["); err == nil {
		t.Error("Expected a malformed pattern to fail")
	}

	if n := d.Del("list:1", "missing"); n != 1 {
		t.Errorf("Expected Del() to return 1, got %d", n)
	}
	if d.Size() != 2 {
		t.Errorf("Expected Size() to be 2, got %d", d.Size())
	}

	d.FlushAll()
	if d.Size() != 0 {
		t.Error("Expected FlushAll() to remove every key")
	}
}
