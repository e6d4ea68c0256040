package main

import (
	"fmt"
	"log/slog"
	"os"

	"skabillium/memo/cmd/resp"
)

const DefaultJournalPath = "journal.log"

// Journal appends every successful mutating command to a file, RESP encoded.
// It is an audit trail of operations and is never replayed.
type Journal struct {
	file   *os.File
	ch     chan []string
	done   chan struct{}
	logger *slog.Logger
}

func OpenJournal(path string, logger *slog.Logger) (*Journal, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{file: file, ch: make(chan []string, 256), done: make(chan struct{}), logger: logger}
	go j.writeLoop()
	return j, nil
}

func (j *Journal) writeLoop() {
	defer close(j.done)

	for args := range j.ch {
		line, err := resp.Serialize(args)
		if err != nil {
			j.logger.Error("journal serialize", "err", err)
			continue
		}
		if _, err := j.file.WriteString(line); err != nil {
			j.logger.Error("journal write", "path", j.file.Name(), "err", err)
		}
	}
}

// Record queues a command for writing. It is a no-op on a nil Journal.
func (j *Journal) Record(args []string) {
	if j == nil {
		return
	}
	j.ch <- args
}

// Close flushes pending records and closes the file.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}

	close(j.ch)
	<-j.done
	return j.file.Close()
}
