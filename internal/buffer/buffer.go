package buffer

import (
	"errors"
	"io"
)

const (
	defaultBufSize           = 8 * 1024
	maxConsecutiveEmptyReads = 100
)

// ErrInvalidMark is returned by Reset when no mark is set or the mark was dropped
// because more than its read limit was consumed.
var ErrInvalidMark = errors.New("buffer: mark has been invalidated")

// Reader is a buffered reader over a forward-only io.Reader that supports returning to a
// previously marked position. The zero value is not usable; create one with NewReader.
type Reader struct {
	rd  io.Reader
	buf []byte
	pos int // next byte to hand out
	cnt int // number of valid bytes in buf

	markPos   int // -1 when no mark is set
	markLimit int

	err error
}

// NewReader returns a Reader reading from rd and buffering into buf. The caller keeps
// ownership of buf; the Reader only replaces it when a mark requires more room than it has.
func NewReader(rd io.Reader, buf []byte) *Reader {
	if len(buf) == 0 {
		buf = make([]byte, defaultBufSize)
	}
	return &Reader{
		rd:      rd,
		buf:     buf[:cap(buf)],
		markPos: -1,
	}
}

// Mark records the current position. A later Reset returns to it as long as no more than
// readLimit bytes have been read since.
func (r *Reader) Mark(readLimit int) {
	r.markLimit = readLimit
	r.markPos = r.pos
}

// Reset moves the read position back to the last mark.
func (r *Reader) Reset() error {
	if r.markPos < 0 {
		return ErrInvalidMark
	}
	r.pos = r.markPos
	return nil
}

// Buffered returns the number of bytes that can be read without touching the underlying reader.
func (r *Reader) Buffered() int { return r.cnt - r.pos }

func (r *Reader) readErr() error {
	err := r.err
	r.err = nil
	return err
}

// fill reads a new chunk into the buffer. It must only be called once the buffer is drained.
func (r *Reader) fill() {
	if r.markPos < 0 || r.pos-r.markPos >= r.markLimit {
		// nothing to keep
		r.markPos = -1
		r.pos, r.cnt = 0, 0
	} else if r.markPos > 0 {
		// slide the marked span to the front
		n := copy(r.buf, r.buf[r.markPos:r.cnt])
		r.pos -= r.markPos
		r.cnt = n
		r.markPos = 0
	}

	if r.cnt == len(r.buf) {
		// the marked span fills the whole buffer and is still inside its limit
		size := 2 * len(r.buf)
		if size > r.markLimit || size < 0 {
			size = r.markLimit
		}
		nb := make([]byte, size)
		copy(nb, r.buf[:r.cnt])
		r.buf = nb
	}

	for i := maxConsecutiveEmptyReads; i > 0; i-- {
		n, err := r.rd.Read(r.buf[r.cnt:])
		if n < 0 {
			panic(errors.New("buffer: reader returned negative count from Read"))
		}
		r.cnt += n
		if err != nil {
			r.err = err
			return
		}
		if n > 0 {
			return
		}
	}
	r.err = io.ErrNoProgress
}

// Read implements the io.Reader interface.
func (r *Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		if r.Buffered() > 0 {
			return 0, nil
		}
		return 0, r.readErr()
	}
	if r.pos >= r.cnt {
		if r.err != nil {
			return 0, r.readErr()
		}
		if r.markPos < 0 && len(p) >= len(r.buf) {
			// large read with nothing to remember, skip the copy
			return r.rd.Read(p)
		}
		r.fill()
		if r.pos >= r.cnt {
			return 0, r.readErr()
		}
	}
	n = copy(p, r.buf[r.pos:r.cnt])
	r.pos += n
	return n, nil
}

// ReadByte implements the io.ByteReader interface.
func (r *Reader) ReadByte() (byte, error) {
	for r.pos >= r.cnt {
		if r.err != nil {
			return 0, r.readErr()
		}
		r.fill()
	}
	c := r.buf[r.pos]
	r.pos++
	return c, nil
}

// TrackingReader remembers the first error, other than io.EOF, returned by the reader it
// wraps. Decoders use it to tell a failing transport apart from malformed content.
type TrackingReader struct {
	rd  io.Reader
	err error
}

func NewTrackingReader(rd io.Reader) *TrackingReader {
	return &TrackingReader{rd: rd}
}

// Read implements the io.Reader interface.
func (t *TrackingReader) Read(p []byte) (int, error) {
	n, err := t.rd.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}

// Err returns the first transport error seen, if any.
func (t *TrackingReader) Err() error {
	return t.err
}
