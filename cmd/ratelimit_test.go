package main

import (
	"testing"
	"time"
)

func TestClientLimiter(t *testing.T) {
	l := NewClientLimiter(0.001, 1)

	if !l.Allow("10.0.0.1") {
		t.Error("Expected the first request to pass")
	}
	if l.Allow("10.0.0.1") {
		t.Error("Expected the second request to be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("Expected other clients to have their own bucket")
	}

	if n := l.Prune(time.Hour); n != 0 {
		t.Errorf("Expected no idle clients, pruned %d", n)
	}
	if n := l.Prune(0); n != 2 {
		t.Errorf("Expected both clients to be pruned, got %d", n)
	}
}
