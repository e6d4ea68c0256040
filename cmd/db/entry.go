package db

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"
)

const MaxBodyLen = 600

var (
	ErrMissingTitle = errors.New("title is required")
	ErrMissingBody  = errors.New("entry body must not be empty")
	ErrBodyTooLong  = errors.New("entry body is longer than 600 characters")
)

// Entry is a single diary record.
type Entry struct {
	ID        string    `json:"id" resp:"id"`
	Title     string    `json:"title" resp:"title"`
	Body      string    `json:"body" resp:"body"`
	Mood      string    `json:"mood,omitempty" resp:"mood"`
	Tags      []string  `json:"tags,omitempty" resp:"tags"`
	CreatedAt time.Time `json:"created_at" resp:"created_at"`
}

type EntryOption func(*Entry)

func WithMood(mood string) EntryOption {
	return func(e *Entry) {
		e.Mood = strings.TrimSpace(mood)
	}
}

func WithTags(tags ...string) EntryOption {
	return func(e *Entry) {
		for _, tag := range tags {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				e.Tags = append(e.Tags, tag)
			}
		}
	}
}

func withCreatedAt(t time.Time) EntryOption {
	return func(e *Entry) {
		e.CreatedAt = t
	}
}

// NewEntry validates the user supplied fields and builds an Entry with a fresh
// ID and creation time.
func NewEntry(title string, body string, opts ...EntryOption) (Entry, error) {
	title, body = strings.TrimSpace(title), strings.TrimSpace(body)
	if title == "" {
		return Entry{}, ErrMissingTitle
	}
	if body == "" {
		return Entry{}, ErrMissingBody
	}
	if len([]rune(body)) > MaxBodyLen {
		return Entry{}, ErrBodyTooLong
	}

	entry := Entry{ID: newEntryID(), Title: title, Body: body, CreatedAt: time.Now().UTC()}
	for _, opt := range opts {
		opt(&entry)
	}
	return entry, nil
}

func newEntryID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

// SampleEntries returns the entries used to seed an empty diary for demos.
func SampleEntries() []Entry {
	now := time.Now().UTC()
	samples := []struct {
		title, mood, body string
	}{
		{"The bug showed up again", "stress", "The system went down today while nobody was watching. I suspect a race condition."},
		{"Calm refactor", "calm", "Simplified the flow and now everything reads better. Less magic, more clarity."},
		{"A bright idea", "inspired", "A linked list is a good fit for entries that keep growing without relocating everything."},
	}

	out := make([]Entry, 0, len(samples))
	for _, s := range samples {
		entry, err := NewEntry(s.title, s.body, WithMood(s.mood), withCreatedAt(now))
		if err != nil {
			panic(err)
		}
		out = append(out, entry)
	}
	return out
}
