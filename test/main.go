package main

import (
	"fmt"
	"log"
)

func main() {
	memo := GetClient()
	defer memo.Close()

	memo.Do(ctx, "dreset", "log")
	memo.Do(ctx, "dlpush", "log", "Old map", "Found it in the attic", "tags", "map")
	memo.Do(ctx, "dlpush", "log", "Dragon sighted", "Over the northern ridge", "mood", "scared")
	memo.Do(ctx, "drpush", "log", "Prologue", "Where it all began")

	reply, err := memo.Do(ctx, "dentries", "log").Result()
	if err != nil {
		log.Fatal(err)
	}

	titles, err := Titles(reply)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(titles)
}
