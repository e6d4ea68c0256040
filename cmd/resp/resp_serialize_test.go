package resp

import (
	"errors"
	"testing"
	"time"
)

func TestSerialize(t *testing.T) {
	if r, err := Serialize(nil); r != "$-1\r\n" || err != nil {
		t.Error("Expected other result for Serialize(nil)")
	}

	if r, err := Serialize(12); r != ":12\r\n" || err != nil {
		t.Error("Expected other result for Serialize(12)")
	}

	if r, err := Serialize(-5); r != ":-5\r\n" || err != nil {
		t.Error("Expected other result for Serialize(-5)")
	}

	if r, err := Serialize("hello there!"); r != "$12\r\nhello there!\r\n" || err != nil {
		t.Error("Expected other result for Serialize('hello there!')")
	}

	if r, err := Serialize(""); r != "$0\r\n\r\n" || err != nil {
		t.Error("Expected other result for Serialize('')")
	}

	arr := []any{3, "word", -1}
	if r, err := Serialize(arr); r != "*3\r\n:3\r\n$4\r\nword\r\n:-1\r\n" || err != nil {
		t.Error("Expected other result for Serialize([3, 'word', -1])")
	}

	arr = []any{}
	if r, err := Serialize(arr); r != "*0\r\n" || err != nil {
		t.Error("Expected other result for Serialize([])")
	}

	if r, err := Serialize([]string(nil)); r != "*0\r\n" || err != nil {
		t.Error("Expected other result for Serialize(nil slice)")
	}

	if r, err := Serialize(errors.New("custom error")); r != "-custom error\r\n" || err != nil {
		t.Error("Expected other result for Serialize(err)")
	}

	if r, err := Serialize(true); r != "#t\r\n" || err != nil {
		t.Error("Expected other result for Serialize(true)")
	}

	if _, err := Serialize(1.5); err == nil {
		t.Error("Expected floats to be rejected")
	}
}

func TestSerializeSimple(t *testing.T) {
	if SerializeSimpleStr("OK") != "+OK\r\n" {
		t.Error("Expected other result from SerializeSimpleStr('OK')")
	}

	if SerializeSimpleStr("") != "+\r\n" {
		t.Error("Expected other result from SerializeSimpleStr('')")
	}

	if r, _ := Serialize(OK); r != "+OK\r\n" {
		t.Error("Expected other result from Serialize(OK)")
	}
}

type Person struct {
	Name string
	Age  int
}

func TestSerializeStruct(t *testing.T) {
	b := Person{Name: "Bill", Age: 22}
	expected := "%2\r\n$4\r\nName\r\n$4\r\nBill\r\n$3\r\nAge\r\n:22\r\n"
	if r, err := Serialize(b); r != expected || err != nil {
		t.Errorf("Expected '%s' and got '%s'", expected, r)
	}

	if r, err := Serialize(&b); r != expected || err != nil {
		t.Errorf("Expected pointers to be dereferenced, got '%s'", r)
	}
}

type taggedEntry struct {
	Title   string    `resp:"title"`
	Tags    []string  `resp:"tags"`
	At      time.Time `resp:"at"`
	Skipped string    `resp:"-"`
	hidden  int
}

func TestSerializeTaggedStruct(t *testing.T) {
	e := taggedEntry{
		Title:   "Runes",
		Tags:    []string{"bridge"},
		At:      time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Skipped: "x",
		hidden:  1,
	}
	expected := "%3\r\n" +
		"$5\r\ntitle\r\n$5\r\nRunes\r\n" +
		"$4\r\ntags\r\n*1\r\n$6\r\nbridge\r\n" +
		"$2\r\nat\r\n$20\r\n2024-03-05T10:00:00Z\r\n"
	if r, err := Serialize(e); r != expected || err != nil {
		t.Errorf("Expected '%q' and got '%q' (%v)", expected, r, err)
	}
}

func TestSerializeMapSorted(t *testing.T) {
	m := map[string]any{"b": 2, "a": "x"}
	expected := "%2\r\n$1\r\na\r\n$1\r\nx\r\n$1\r\nb\r\n:2\r\n"
	if r, err := Serialize(m); r != expected || err != nil {
		t.Errorf("Expected '%q' and got '%q'", expected, r)
	}
}
