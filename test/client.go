package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

func GetClient() *redis.Client {
	addr := os.Getenv("MEMO_ADDR")
	if addr == "" {
		addr = "localhost:5678"
	}

	memo := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: "memo",
		Password: "memo",
		Protocol: 3,
	})

	err := memo.Ping(ctx).Err()
	if err != nil {
		fmt.Println("Could not connect to Memo server, make sure it is running")
		fmt.Println(err)
		os.Exit(1)
	}

	return memo
}

// Titles extracts the entry titles of a dentries reply.
func Titles(reply any) ([]string, error) {
	entries, ok := reply.([]any)
	if !ok {
		return nil, fmt.Errorf("unexpected reply %T", reply)
	}

	titles := make([]string, 0, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[any]any)
		if !ok {
			return nil, fmt.Errorf("unexpected entry %T", e)
		}
		titles = append(titles, fmt.Sprint(entry["title"]))
	}
	return titles, nil
}
