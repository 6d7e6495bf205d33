// Package binwriter implements a cursor-based encoder over a fixed-size byte
// buffer. Every write is bounds checked against the writer's capacity.
package binwriter

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	ErrBufferOverflow = errors.New("binwriter: buffer overflow")
	ErrStringTooLong  = errors.New("binwriter: string too long for fixed field")
	ErrInvalidString  = errors.New("binwriter: string contains multi-byte character")
)

// Writer writes typed values at a cursor into a shared buffer. A Writer
// returned by Slice shares the buffer of its parent but keeps its own cursor
// and is limited to the reserved region.
//
// The first failed operation is remembered; every later call is a no-op that
// returns the same error.
type Writer struct {
	buf   []byte
	order binary.ByteOrder
	start int
	end   int
	pos   int
	err   error
}

// New returns a little-endian writer over buf.
func New(buf []byte) *Writer {
	return NewWithOrder(buf, binary.LittleEndian)
}

func NewWithOrder(buf []byte, order binary.ByteOrder) *Writer {
	return &Writer{
		buf:   buf,
		order: order,
		end:   len(buf),
	}
}

// Offset is the cursor relative to the start of this writer's region.
func (w *Writer) Offset() int {
	return w.pos - w.start
}

// Len is the capacity of this writer's region.
func (w *Writer) Len() int {
	return w.end - w.start
}

func (w *Writer) Remaining() int {
	return w.end - w.pos
}

// Bytes returns this writer's region of the shared buffer.
func (w *Writer) Bytes() []byte {
	return w.buf[w.start:w.end]
}

func (w *Writer) Order() binary.ByteOrder {
	return w.order
}

func (w *Writer) Err() error {
	return w.err
}

// reserve checks that n bytes fit at the cursor and returns the slice to
// fill. The cursor is advanced only when the check passes.
func (w *Writer) reserve(n int) ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if n < 0 || n > w.end-w.pos {
		w.err = fmt.Errorf("%w: %d bytes at offset %d (capacity %d)", ErrBufferOverflow, n, w.Offset(), w.Len())
		return nil, w.err
	}
	b := w.buf[w.pos : w.pos+n]
	w.pos += n
	return b, nil
}

func (w *Writer) U8(v uint8) error {
	b, err := w.reserve(1)
	if err != nil {
		return err
	}
	b[0] = v
	return nil
}

func (w *Writer) U16(v uint16) error {
	b, err := w.reserve(2)
	if err != nil {
		return err
	}
	w.order.PutUint16(b, v)
	return nil
}

func (w *Writer) U32(v uint32) error {
	b, err := w.reserve(4)
	if err != nil {
		return err
	}
	w.order.PutUint32(b, v)
	return nil
}

func (w *Writer) I8(v int8) error {
	return w.U8(uint8(v))
}

func (w *Writer) I16(v int16) error {
	return w.U16(uint16(v))
}

func (w *Writer) I32(v int32) error {
	return w.U32(uint32(v))
}

func (w *Writer) Bool(v bool) error {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

// FixedString writes s one byte per character followed by a NUL, and advances
// the cursor by exactly size bytes. Bytes after the terminator are left as
// they are in the buffer.
func (w *Writer) FixedString(s string, size int) error {
	if w.err != nil {
		return w.err
	}
	if err := CheckFixedString(s, size); err != nil {
		w.err = err
		return err
	}
	b, err := w.reserve(size)
	if err != nil {
		return err
	}
	n := copy(b, s)
	b[n] = 0
	return nil
}

// CString writes s and a NUL terminator, advancing len(s)+1 bytes.
func (w *Writer) CString(s string) error {
	return w.FixedString(s, len(s)+1)
}

// CheckFixedString reports whether FixedString(s, size) would accept s.
func CheckFixedString(s string, size int) error {
	if len(s) >= size {
		return fmt.Errorf("%w: %q needs %d bytes, field has %d", ErrStringTooLong, s, len(s)+1, size)
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return fmt.Errorf("%w: %q", ErrInvalidString, s)
		}
	}
	return nil
}

// Skip advances the cursor without writing.
func (w *Writer) Skip(n int) error {
	_, err := w.reserve(n)
	return err
}

// Seek moves the cursor to off, relative to the start of this writer's region.
func (w *Writer) Seek(off int) error {
	if w.err != nil {
		return w.err
	}
	if off < 0 || off > w.Len() {
		w.err = fmt.Errorf("%w: seek to %d (capacity %d)", ErrBufferOverflow, off, w.Len())
		return w.err
	}
	w.pos = w.start + off
	return nil
}

func (w *Writer) Rewind() error {
	return w.Seek(0)
}

// Slice reserves the next size bytes and returns a writer over them. The
// returned writer shares the buffer and byte order; this writer's cursor
// moves past the reserved region.
func (w *Writer) Slice(size int) (*Writer, error) {
	from := w.pos
	if _, err := w.reserve(size); err != nil {
		return nil, err
	}
	return &Writer{
		buf:   w.buf,
		order: w.order,
		start: from,
		end:   from + size,
		pos:   from,
	}, nil
}
