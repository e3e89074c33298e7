// Package bitmap decodes still images for the gifbitmap dispatcher.
//
// Besides the formats registered by the standard library and imaging (JPEG, PNG, GIF,
// BMP and TIFF) it registers WebP and QOI.
package bitmap

import (
	"errors"
	"fmt"
	"image"
	"io"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/apex/log"
	"github.com/disintegration/imaging"
	_ "github.com/xfmoulet/qoi"
	_ "golang.org/x/image/webp"

	"github.com/blacktop/imgsniff/internal/buffer"
	"github.com/blacktop/imgsniff/pkg/gifbitmap"
)

const id = "BitmapDecoder.imgsniff.bitmap"

// ErrUnknownFilter is returned for a resampling filter name that is not supported.
var ErrUnknownFilter = errors.New("unknown resample filter")

var filters = map[string]imaging.ResampleFilter{
	"nearest":    imaging.NearestNeighbor,
	"box":        imaging.Box,
	"linear":     imaging.Linear,
	"catmullrom": imaging.CatmullRom,
	"lanczos":    imaging.Lanczos,
}

// FilterNames returns the supported resampling filter names.
func FilterNames() []string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Config holds the decoder settings.
type Config struct {
	// AutoOrient applies the EXIF orientation of JPEGs.
	AutoOrient bool
	// Filter is the resampling filter used when downsampling to the size hints.
	Filter string
}

// Decoder decodes still images with github.com/disintegration/imaging.
type Decoder struct {
	conf   Config
	filter imaging.ResampleFilter
}

// NewDecoder returns a Decoder. A nil conf decodes without orientation and downsamples
// with the box filter.
func NewDecoder(conf *Config) (*Decoder, error) {
	d := &Decoder{conf: Config{Filter: "box"}}
	if conf != nil {
		d.conf = *conf
	}
	d.conf.Filter = strings.ToLower(d.conf.Filter)
	if d.conf.Filter == "" {
		d.conf.Filter = "box"
	}
	f, ok := filters[d.conf.Filter]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFilter, d.conf.Filter, FilterNames())
	}
	d.filter = f
	return d, nil
}

// Decode decodes src.Stream, falling back to src.File when the stream does not hold a
// decodable image. If width and height are positive the image is downsampled by the
// largest power of two that keeps it at least that big.
func (d *Decoder) Decode(src gifbitmap.Source, width, height int) (gifbitmap.BitmapResource, error) {
	if src.Stream != nil {
		res, err := d.decode(src.Stream, width, height)
		if err != nil || res != nil {
			return res, err
		}
	}
	if src.File != nil {
		info, err := src.File.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", src.File.Name(), err)
		}
		log.WithField("file", src.File.Name()).Debug("Decoding bitmap from file")
		return d.decode(io.NewSectionReader(src.File, 0, info.Size()), width, height)
	}
	return nil, nil
}

func (d *Decoder) decode(r io.Reader, width, height int) (gifbitmap.BitmapResource, error) {
	tr := buffer.NewTrackingReader(r)
	img, err := imaging.Decode(tr, imaging.AutoOrientation(d.conf.AutoOrient))
	if err != nil {
		if tr.Err() != nil {
			return nil, fmt.Errorf("failed to read image: %w", tr.Err())
		}
		log.WithError(err).Debug("Not a decodable bitmap")
		return nil, nil
	}
	if sample := sampleSize(img.Bounds(), width, height); sample > 1 {
		b := img.Bounds()
		log.WithFields(log.Fields{
			"size":   fmt.Sprintf("%dx%d", b.Dx(), b.Dy()),
			"target": fmt.Sprintf("%dx%d", width, height),
			"sample": sample,
		}).Debug("Downsampling bitmap")
		img = imaging.Resize(img, b.Dx()/sample, b.Dy()/sample, d.filter)
	}
	return NewResource(img), nil
}

// sampleSize returns the largest power of two both dimensions of b can be divided by
// while staying at least width x height.
func sampleSize(b image.Rectangle, width, height int) int {
	if width <= 0 || height <= 0 {
		return 1
	}
	sample := 1
	for b.Dx()/(sample*2) >= width && b.Dy()/(sample*2) >= height {
		sample *= 2
	}
	return sample
}

// ID identifies the decoder and the settings that change its output.
func (d *Decoder) ID() string {
	var sb strings.Builder
	sb.WriteString(id)
	if d.conf.AutoOrient {
		sb.WriteString(".orient")
	}
	sb.WriteString(".")
	sb.WriteString(d.conf.Filter)
	return sb.String()
}

// Resource is a decoded still image.
type Resource struct {
	img      image.Image
	size     int
	recycled atomic.Bool
}

func NewResource(img image.Image) *Resource {
	b := img.Bounds()
	return &Resource{img: img, size: b.Dx() * b.Dy() * 4}
}

// Image returns the decoded image. It is nil once the resource was recycled.
func (r *Resource) Image() image.Image {
	if r.recycled.Load() {
		return nil
	}
	return r.img
}

// Size is the number of bytes the image takes at four bytes per pixel.
func (r *Resource) Size() int { return r.size }

// Recycle drops the image. It panics when called twice.
func (r *Resource) Recycle() {
	if !r.recycled.CompareAndSwap(false, true) {
		panic("bitmap: resource recycled twice")
	}
	r.img = nil
}
