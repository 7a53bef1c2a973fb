// Package jsonutil provides JSON helpers with consistent, byte-stable
// formatting for gitai's persisted logs and settings files.
package jsonutil

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalIndentWithNewline is like json.MarshalIndent but appends a
// trailing newline, so persisted JSON files end with a proper POSIX line
// ending.
func MarshalIndentWithNewline(v any, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent(prefix, indent)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// MarshalCompact marshals v as a single compact JSON line, without a
// trailing newline. Used for JSONL record bodies.
func MarshalCompact(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON line: %w", err)
	}
	return data, nil
}

// EachLine scans r line by line, skipping blank lines, and calls fn with
// each non-blank line's bytes. Used by the JSONL-based logs to tolerate a
// trailing partial line written by a crashed process without failing the
// whole read.
func EachLine(r io.Reader, fn func(line []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning lines: %w", err)
	}
	return nil
}
