package gifbitmap

import (
	"errors"
	"image"
	"io"
	"os"
)

// SizeOriginal asks a backend to keep the decoded image at its native size.
const SizeOriginal = -1

// ErrNoSource is returned when a Source has neither a stream nor a file.
var ErrNoSource = errors.New("gifbitmap: source has neither a stream nor a file")

// Source is the input to a decode. At least one of Stream or File must be set; both are
// borrowed for the duration of a single call and are never closed by the decoder.
type Source struct {
	Stream io.Reader
	File   *os.File
}

func (s Source) valid() bool {
	return s.Stream != nil || s.File != nil
}

// Resource is a decoded value whose memory is handed back with Recycle.
// Recycle must be called at most once.
type Resource interface {
	// Size returns the number of bytes held by the resource.
	Size() int
	Recycle()
}

// BitmapResource holds a single still image.
type BitmapResource interface {
	Resource
	Image() image.Image
}

// GifResource holds an animated image.
type GifResource interface {
	Resource
	FrameCount() int
}

// Wrapper is the result of a decode. It is either a *Bitmap or an *Animated.
type Wrapper interface {
	IsAnimated() bool
	// Resource returns the wrapped resource.
	Resource() Resource
	// Size returns the size of the wrapped resource.
	Size() int
	// Recycle recycles the wrapped resource.
	Recycle()

	wrapper()
}

// Bitmap is a Wrapper around a still image.
type Bitmap struct {
	res BitmapResource
}

// NewBitmap wraps res. It returns nil if res is nil.
func NewBitmap(res BitmapResource) *Bitmap {
	if res == nil {
		return nil
	}
	return &Bitmap{res: res}
}

func (b *Bitmap) IsAnimated() bool { return false }
func (b *Bitmap) Resource() Resource { return b.res }
func (b *Bitmap) Bitmap() BitmapResource { return b.res }
func (b *Bitmap) Size() int { return b.res.Size() }
func (b *Bitmap) Recycle() { b.res.Recycle() }
func (*Bitmap) wrapper() {}

// Animated is a Wrapper around an animated image with more than one frame.
type Animated struct {
	res GifResource
}

// NewAnimated wraps res. It returns nil if res is nil.
func NewAnimated(res GifResource) *Animated {
	if res == nil {
		return nil
	}
	return &Animated{res: res}
}

func (a *Animated) IsAnimated() bool { return true }
func (a *Animated) Resource() Resource { return a.res }
func (a *Animated) Gif() GifResource { return a.res }
func (a *Animated) Size() int { return a.res.Size() }
func (a *Animated) Recycle() { a.res.Recycle() }
func (*Animated) wrapper() {}
