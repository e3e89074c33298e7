// Package gifbitmap decodes a byte source into either a still bitmap or an animated GIF.
//
// A Decoder sniffs the first bytes of the source, hands GIFs to a GifDecoder and
// everything else (including GIFs with a single frame) to a BitmapDecoder.
package gifbitmap

import (
	"fmt"
	"io"
	"math"
	"sync/atomic"

	"github.com/apex/log"

	"github.com/blacktop/imgsniff/internal/buffer"
	"github.com/blacktop/imgsniff/pkg/bytepool"
	"github.com/blacktop/imgsniff/pkg/imgtype"
)

// MarkLimitBytes is how far the stream must be rewindable for type detection.
const MarkLimitBytes = imgtype.MarkLimitBytes

// BitmapDecoder decodes still images. It returns a nil resource and a nil error when the
// data is not something it can decode.
type BitmapDecoder interface {
	Decode(src Source, width, height int) (BitmapResource, error)
	ID() string
}

// GifDecoder decodes animated images. It returns a nil resource and a nil error when the
// data is not something it can decode.
type GifDecoder interface {
	Decode(r io.Reader, width, height int) (GifResource, error)
	ID() string
}

// BytePool hands out scratch buffers. Every buffer from Get is given back with Put.
type BytePool interface {
	Get() []byte
	Put(b []byte) bool
}

// MarkResetReader is a stream that can go back to a marked position.
type MarkResetReader interface {
	io.Reader
	Mark(readLimit int)
	Reset() error
}

// StreamFactory wraps a forward-only stream so it can be rewound, buffering into buf.
type StreamFactory interface {
	Build(r io.Reader, buf []byte) MarkResetReader
}

// StreamFactoryFunc adapts a function to the StreamFactory interface.
type StreamFactoryFunc func(r io.Reader, buf []byte) MarkResetReader

func (f StreamFactoryFunc) Build(r io.Reader, buf []byte) MarkResetReader { return f(r, buf) }

// BufferedStreamFactory builds a buffer.Reader backed by the supplied buffer.
type BufferedStreamFactory struct{}

func (BufferedStreamFactory) Build(r io.Reader, buf []byte) MarkResetReader {
	return buffer.NewReader(r, buf)
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithParser replaces the header based type parser.
func WithParser(p imgtype.Parser) Option {
	return func(d *Decoder) { d.parser = p }
}

// WithStreamFactory replaces the factory that makes streams rewindable.
func WithStreamFactory(f StreamFactory) Option {
	return func(d *Decoder) { d.streams = f }
}

// WithPool sets the pool scratch buffers are taken from.
func WithPool(p BytePool) Option {
	return func(d *Decoder) { d.pool = p }
}

// Decoder picks between a GifDecoder and a BitmapDecoder based on the source's header.
// It is safe for concurrent use.
type Decoder struct {
	bitmapDecoder BitmapDecoder
	gifDecoder    GifDecoder
	parser        imgtype.Parser
	streams       StreamFactory
	pool          BytePool

	id atomic.Pointer[string]
}

// NewDecoder returns a Decoder using the given backends.
func NewDecoder(bitmapDecoder BitmapDecoder, gifDecoder GifDecoder, opts ...Option) *Decoder {
	d := &Decoder{
		bitmapDecoder: bitmapDecoder,
		gifDecoder:    gifDecoder,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.parser == nil {
		d.parser = imgtype.NewHeaderParser()
	}
	if d.streams == nil {
		d.streams = BufferedStreamFactory{}
	}
	if d.pool == nil {
		d.pool = bytepool.New(bytepool.TempBytesSize, bytepool.MaxSize)
	}
	return d
}

// Decode decodes src. width and height are handed to the backends untouched.
//
// A nil Wrapper with a nil error means neither backend could decode the data; an error
// is only returned when reading the source fails.
func (d *Decoder) Decode(src Source, width, height int) (Wrapper, error) {
	if !src.valid() {
		return nil, ErrNoSource
	}
	buf := d.pool.Get()
	defer d.pool.Put(buf)

	return d.decode(src, width, height, buf)
}

func (d *Decoder) decode(src Source, width, height int, buf []byte) (Wrapper, error) {
	var bis MarkResetReader
	if src.Stream != nil {
		bis = d.streams.Build(src.Stream, buf)
		bis.Mark(MarkLimitBytes)
		typ, err := d.parser.Parse(bis)
		if err != nil {
			return nil, fmt.Errorf("failed to parse image type: %w", err)
		}
		if err := bis.Reset(); err != nil {
			return nil, fmt.Errorf("failed to rewind after parsing image type: %w", err)
		}
		log.WithField("type", typ).Debug("Detected image type")

		if typ == imgtype.GIF {
			result, err := d.decodeGifWrapper(bis, width, height)
			if err != nil {
				return nil, err
			}
			if result != nil {
				return result, nil
			}
		}
	}

	// only the buffered stream can be rewound, so the bitmap decoder has to read from it
	// rather than from the original stream
	toDecode := src
	if bis != nil {
		toDecode = Source{Stream: bis, File: src.File}
	}
	return d.decodeBitmapWrapper(toDecode, width, height)
}

func (d *Decoder) decodeGifWrapper(bis MarkResetReader, width, height int) (Wrapper, error) {
	// keep everything the gif decoder reads so the bitmap decoder can start over
	bis.Mark(math.MaxInt)

	res, err := d.gifDecoder.Decode(bis, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gif: %w", err)
	}
	if res != nil {
		if res.FrameCount() > 1 {
			return NewAnimated(res), nil
		}
		log.Debug("Single frame gif, decoding as bitmap")
		res.Recycle()
	}

	if err := bis.Reset(); err != nil {
		return nil, fmt.Errorf("failed to rewind after gif decode: %w", err)
	}
	// stop retaining the whole stream while the bitmap decoder reads it
	bis.Mark(MarkLimitBytes)
	return nil, nil
}

func (d *Decoder) decodeBitmapWrapper(src Source, width, height int) (Wrapper, error) {
	res, err := d.bitmapDecoder.Decode(src, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to decode bitmap: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	return NewBitmap(res), nil
}

// ID identifies the decoder for cache keys: the gif decoder's ID followed by the
// bitmap decoder's ID.
func (d *Decoder) ID() string {
	if id := d.id.Load(); id != nil {
		return *id
	}
	// racing callers store the same string
	id := d.gifDecoder.ID() + d.bitmapDecoder.ID()
	d.id.Store(&id)
	return id
}
