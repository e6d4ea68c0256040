package main

import (
	"reflect"
	"testing"

	"github.com/redis/go-redis/v9"
)

// These tests run against a live server started with the default options.

func TestDiary(t *testing.T) {
	memo := GetClient()
	defer memo.FlushAll(ctx) // Cleanup

	memo.Do(ctx, "dlpush", "log", "Old map", "Found it in the attic")
	memo.Do(ctx, "dlpush", "log", "Dragon sighted", "Over the northern ridge", "tags", "dragon")
	memo.Do(ctx, "drpush", "log", "Prologue", "Where it all began")

	reply, err := memo.Do(ctx, "dentries", "log").Result()
	if err != nil {
		t.Fatal(err)
	}
	titles, err := Titles(reply)
	if err != nil || !reflect.DeepEqual(titles, []string{"Dragon sighted", "Old map", "Prologue"}) {
		t.Error("Expected entries from the most recent one, got", titles)
	}

	n, err := memo.Do(ctx, "dlen", "log").Int()
	if n != 3 || err != nil {
		t.Error("Expected dlen('log') to return 3")
	}

	for _, cmd := range []string{"dlpop", "drpop", "dlpop"} {
		if err := memo.Do(ctx, cmd, "log").Err(); err != nil {
			t.Errorf("Expected %s to succeed, got %v", cmd, err)
		}
	}

	err = memo.Do(ctx, "dlpop", "log").Err()
	if err == nil || err.Error() != "EMPTY nothing to remove from 'log': list is empty" {
		t.Error("Expected an EMPTY error, got", err)
	}

	empty, err := memo.Do(ctx, "dempty", "log").Bool()
	if !empty || err != nil {
		t.Error("Expected dempty('log') to return true")
	}
}

func TestLists(t *testing.T) {
	memo := GetClient()
	defer memo.FlushAll(ctx) // Cleanup

	memo.RPush(ctx, "list", "b", "c")
	memo.LPush(ctx, "list", "a")

	values, err := memo.LRange(ctx, "list", 0, -1).Result()
	if err != nil || !reflect.DeepEqual(values, []string{"a", "b", "c"}) {
		t.Error("Expected lrange to return [a b c], got", values)
	}

	value, err := memo.RPop(ctx, "list").Result()
	if value != "c" || err != nil {
		t.Error("Expected rpop('list') to return 'c'")
	}

	memo.Del(ctx, "list")
	err = memo.LPop(ctx, "list").Err()
	if err != redis.Nil {
		t.Error("Expected lpop on a missing list to return nil")
	}
}

func TestWrongType(t *testing.T) {
	memo := GetClient()
	defer memo.FlushAll(ctx) // Cleanup

	memo.SAdd(ctx, "tags", "x")
	err := memo.Do(ctx, "dlpush", "tags", "title", "body").Err()
	if err == nil || err.Error()[:9] != "WRONGTYPE" {
		t.Error("Expected a WRONGTYPE error, got", err)
	}
}
