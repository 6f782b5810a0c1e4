package sse

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

const (
	initialBufferSize = 64 * 1024
	maxLineSize       = 1024 * 1024
)

// Reader parses events from an event stream.
type Reader struct {
	scanner *bufio.Scanner
	started bool

	data    strings.Builder
	hasData bool
	typ     string
	lastID  string
	retry   int
}

// NewReader returns a Reader consuming src.
func NewReader(src io.Reader) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, initialBufferSize), maxLineSize)
	scanner.Split(scanLines)
	return &Reader{scanner: scanner}
}

// Next blocks until the next event is dispatched. It returns io.EOF once the
// source is exhausted; a trailing event without its terminating blank line is
// discarded. Any other error comes from the underlying reader.
func (r *Reader) Next() (Event, error) {
	for r.scanner.Scan() {
		line := r.scanner.Text()
		if !r.started {
			r.started = true
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if line == "" {
			if ev, ok := r.dispatch(); ok {
				return ev, nil
			}
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		r.parseLine(line)
	}

	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}

func (r *Reader) parseLine(line string) {
	field, value, found := strings.Cut(line, ":")
	if found {
		value = strings.TrimPrefix(value, " ")
	}

	switch field {
	case "data":
		if r.hasData {
			r.data.WriteByte('\n')
		}
		r.data.WriteString(value)
		r.hasData = true
	case "event":
		r.typ = value
	case "id":
		if !strings.ContainsRune(value, 0) {
			r.lastID = value
		}
	case "retry":
		if !isDigits(value) {
			return
		}
		if ms, err := strconv.Atoi(value); err == nil {
			r.retry = ms
		}
	}
}

// dispatch emits the accumulated event. Events without any data field are
// dropped, matching browser EventSource behavior.
func (r *Reader) dispatch() (Event, bool) {
	defer func() {
		r.data.Reset()
		r.hasData = false
		r.typ = ""
	}()

	if !r.hasData {
		return Event{}, false
	}

	return Event{
		Type:  r.typ,
		Data:  r.data.String(),
		ID:    r.lastID,
		Retry: r.retry,
	}, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// scanLines splits on "\n", "\r\n" and a lone "\r".
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// A trailing "\r" may be the first half of "\r\n".
		return 0, nil, nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
