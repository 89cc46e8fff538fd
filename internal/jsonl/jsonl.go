// Package jsonl reads and writes newline-delimited JSON record files.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// FieldParseError describes a line that could not be decoded.
type FieldParseError struct {
	Line int
	Err  error
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *FieldParseError) Unwrap() error {
	return e.Err
}

// Writer encodes one JSON value per line. HTML characters are not escaped
// so message bodies round-trip byte for byte.
type Writer struct {
	file  *os.File
	buf   *bufio.Writer
	enc   *json.Encoder
	count int
}

// Create truncates or creates path and returns a Writer for it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewWriter(f)
	w.file = f
	return w, nil
}

// NewWriter wraps an arbitrary stream. Close flushes but does not close w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &Writer{buf: buf, enc: enc}
}

// Write appends v as a single line.
func (w *Writer) Write(v any) error {
	if err := w.enc.Encode(v); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns the number of lines written.
func (w *Writer) Count() int {
	return w.count
}

// Close flushes buffered output and closes the underlying file if Create
// opened it.
func (w *Writer) Close() error {
	flushErr := w.buf.Flush()
	if w.file == nil {
		return flushErr
	}
	if err := w.file.Close(); err != nil && flushErr == nil {
		return err
	}
	return flushErr
}

// Decode reads r line by line, decoding each non-blank line into a T and
// passing it to fn. Lines that fail to decode are collected as
// *FieldParseError and skipped. Errors returned by fn or by the reader stop
// iteration.
func Decode[T any](r io.Reader, fn func(line int, v T) error) ([]*FieldParseError, error) {
	reader := bufio.NewReader(r)
	var skipped []*FieldParseError
	lineNo := 0
	for {
		raw, readErr := reader.ReadBytes('\n')
		if len(raw) > 0 {
			lineNo++
			trimmed := bytes.TrimSpace(raw)
			if len(trimmed) > 0 {
				var v T
				if err := json.Unmarshal(trimmed, &v); err != nil {
					skipped = append(skipped, &FieldParseError{Line: lineNo, Err: err})
				} else if err := fn(lineNo, v); err != nil {
					return skipped, err
				}
			}
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return skipped, nil
			}
			return skipped, readErr
		}
	}
}

// DecodeFile opens path and runs Decode over it.
func DecodeFile[T any](path string, fn func(line int, v T) error) ([]*FieldParseError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, fn)
}
