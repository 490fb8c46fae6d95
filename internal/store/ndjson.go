package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Log is an append-only newline-delimited JSON file of T records.
type Log[T any] struct {
	path string
	mu   sync.Mutex
}

func NewLog[T any](path string) *Log[T] {
	return &Log[T]{path: path}
}

func (l *Log[T]) Path() string { return l.path }

func (l *Log[T]) Append(rec T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.append(rec)
}

// ReadAll returns every decodable record; broken lines are skipped.
func (l *Log[T]) ReadAll() ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readAll()
}

// Update runs fn over the current records while holding the write lock and
// appends whatever records fn returns.
func (l *Log[T]) Update(fn func(records []T) ([]T, error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.readAll()
	if err != nil {
		return err
	}
	add, err := fn(records)
	if err != nil {
		return err
	}
	for _, rec := range add {
		if err := l.append(rec); err != nil {
			return err
		}
	}
	return nil
}

func (l *Log[T]) append(rec T) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(l.path), err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", filepath.Base(l.path), err)
	}
	return f.Close()
}

func (l *Log[T]) readAll() ([]T, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(l.path), err)
	}
	defer f.Close()

	out := []T{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filepath.Base(l.path), err)
	}
	return out, nil
}
