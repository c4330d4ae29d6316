// Package ndjson implements newline-delimited JSON framing over byte
// streams. The Reader accumulates raw bytes across reads and splits on
// newline boundaries, since pipe I/O gives no alignment guarantee with
// record boundaries.
package ndjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// DefaultMaxRecordSize caps how much unterminated data the Reader will
// buffer before giving up on the current record.
const DefaultMaxRecordSize = 1024 * 1024

// ErrTooLong is returned when a single record exceeds the Reader's
// maximum record size.
var ErrTooLong = errors.New("ndjson: record exceeds maximum size")

const readChunkSize = 4096

// Reader reads newline-delimited records from an underlying stream.
// Blank lines are skipped. A non-empty unterminated trailer at EOF is
// delivered as a final record. Reader is single-pass and not safe for
// concurrent use.
type Reader struct {
	r       io.Reader
	buf     []byte
	chunk   []byte
	max     int
	err     error
	sawEOF  bool
	drained bool
}

// NewReader returns a Reader with the default maximum record size.
func NewReader(r io.Reader) *Reader {
	return NewReaderSize(r, DefaultMaxRecordSize)
}

// NewReaderSize returns a Reader that refuses to buffer more than max
// bytes for a single record. max <= 0 falls back to the default.
func NewReaderSize(r io.Reader, max int) *Reader {
	if max <= 0 {
		max = DefaultMaxRecordSize
	}
	return &Reader{
		r:     r,
		chunk: make([]byte, readChunkSize),
		max:   max,
	}
}

// ReadLine returns the next record, without its trailing newline.
// It returns io.EOF once the stream is exhausted, or ErrTooLong if the
// current record exceeds the size limit. After a non-EOF error the
// Reader is unusable.
func (r *Reader) ReadLine() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}

	for {
		if line, ok := r.nextBuffered(); ok {
			return line, nil
		}

		if len(r.buf) > r.max {
			r.err = ErrTooLong
			return nil, r.err
		}

		if r.sawEOF {
			return r.drainTrailer()
		}

		n, err := r.r.Read(r.chunk)
		if n > 0 {
			r.buf = append(r.buf, r.chunk[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				r.err = err
				return nil, r.err
			}
			r.sawEOF = true
		}
	}
}

// nextBuffered extracts the next complete non-blank line from the buffer.
func (r *Reader) nextBuffered() ([]byte, bool) {
	for {
		idx := bytes.IndexByte(r.buf, '\n')
		if idx < 0 {
			return nil, false
		}
		line := trimCR(r.buf[:idx])
		r.buf = r.buf[idx+1:]
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		return out, true
	}
}

// drainTrailer hands back any unterminated data left at EOF.
func (r *Reader) drainTrailer() ([]byte, error) {
	if r.drained {
		r.err = io.EOF
		return nil, r.err
	}
	r.drained = true

	trailer := trimCR(bytes.TrimRight(r.buf, "\n"))
	r.buf = nil
	if len(bytes.TrimSpace(trailer)) == 0 {
		r.err = io.EOF
		return nil, r.err
	}
	out := make([]byte, len(trailer))
	copy(out, trailer)
	return out, nil
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}

// Writer writes newline-terminated records to an underlying stream.
type Writer struct {
	w io.Writer
}

// NewWriter returns a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteRaw writes one record followed by a newline. The record must not
// itself contain a newline.
func (w *Writer) WriteRaw(record []byte) error {
	if _, err := w.w.Write(record); err != nil {
		return err
	}
	_, err := w.w.Write([]byte{'\n'})
	return err
}

// WriteJSON marshals v and writes it as one record.
func (w *Writer) WriteJSON(v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return w.WriteRaw(b)
}
