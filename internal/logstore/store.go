package logstore

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Record is one line of the log file.
type Record struct {
	Timestamp     string         `json:"timestamp"`
	UserText      string         `json:"userText"`
	AssistantText string         `json:"assistantText"`
	Sources       []string       `json:"sources"`
	Meta          map[string]any `json:"meta"`
}

// Writer appends records as JSON lines. Appends are serialised so concurrent
// requests never interleave within a line.
type Writer struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenWriter creates the parent directory if needed and opens path for appending.
func OpenWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return &Writer{path: path, f: f}, nil
}

func (w *Writer) Path() string { return w.path }

// Append writes rec as a single line. Nil sources and meta are written as [] and {}.
func (w *Writer) Append(rec Record) error {
	if rec.Sources == nil {
		rec.Sources = []string{}
	}
	if rec.Meta == nil {
		rec.Meta = map[string]any{}
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding log record: %w", err)
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return errors.New("log writer is closed")
	}
	if _, err := w.f.Write(line); err != nil {
		return fmt.Errorf("appending log record: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

// Read decodes every non-blank line of r. A malformed line fails the whole
// read with its 1-based line number.
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 8<<20)

	var out []Record
	n := 0
	for sc.Scan() {
		n++
		line := sc.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	return out, nil
}
