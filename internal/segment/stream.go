// Package segment holds the primitives used to persist state into a city
// save: resource keys, a keyed blob store and little-endian field streams.
package segment

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Writer encodes fixed-size fields. The first error is sticky; later writes
// are no-ops and Err reports it.
type Writer struct {
	w   io.Writer
	buf [8]byte
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

func (w *Writer) Int64(v int64) {
	binary.LittleEndian.PutUint64(w.buf[:8], uint64(v))
	w.write(w.buf[:8])
}

func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

// Bool is written as a single byte.
func (w *Writer) Bool(v bool) {
	w.buf[0] = 0
	if v {
		w.buf[0] = 1
	}
	w.write(w.buf[:1])
}

func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.err = fmt.Errorf("write segment: %w", err)
	}
}

// Reader decodes fields written by Writer. Like Writer, errors are sticky and
// reads after a failure return zero values.
type Reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (r *Reader) Uint32() uint32 {
	if !r.read(4) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[:4])
}

func (r *Reader) Int64() int64 {
	if !r.read(8) {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(r.buf[:8]))
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

func (r *Reader) Bool() bool {
	if !r.read(1) {
		return false
	}
	return r.buf[0] != 0
}

func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) read(n int) bool {
	if r.err != nil {
		return false
	}
	if _, err := io.ReadFull(r.r, r.buf[:n]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		r.err = fmt.Errorf("read segment: %w", err)
		return false
	}
	return true
}
