// Package gifdec decodes animated GIFs for the gifbitmap dispatcher.
package gifdec

import (
	"fmt"
	"image/gif"
	"io"
	"sync/atomic"

	"github.com/apex/log"

	"github.com/blacktop/imgsniff/internal/buffer"
	"github.com/blacktop/imgsniff/pkg/gifbitmap"
)

const id = "GifResourceDecoder.imgsniff.gifdec"

// Config holds the decoder settings.
type Config struct {
	// MaxFrames rejects GIFs with more frames than this (0 means no limit).
	MaxFrames int
}

// Decoder decodes every frame of a GIF stream.
type Decoder struct {
	conf Config
}

// NewDecoder returns a Decoder. A nil conf uses the defaults.
func NewDecoder(conf *Config) *Decoder {
	d := &Decoder{}
	if conf != nil {
		d.conf = *conf
	}
	return d
}

// Decode reads a GIF from r. Malformed or empty GIFs yield a nil resource and a nil
// error; only failures of r itself are returned as errors.
// The size hints are not used, frames are always kept at their native size.
func (d *Decoder) Decode(r io.Reader, width, height int) (gifbitmap.GifResource, error) {
	tr := buffer.NewTrackingReader(r)
	g, err := gif.DecodeAll(tr)
	if err != nil {
		if tr.Err() != nil {
			return nil, fmt.Errorf("failed to read gif: %w", tr.Err())
		}
		log.WithError(err).Debug("Not a decodable gif")
		return nil, nil
	}
	if len(g.Image) == 0 {
		log.Debug("Gif has no frames")
		return nil, nil
	}
	if d.conf.MaxFrames > 0 && len(g.Image) > d.conf.MaxFrames {
		log.WithFields(log.Fields{
			"frames": len(g.Image),
			"max":    d.conf.MaxFrames,
		}).Debug("Gif has too many frames")
		return nil, nil
	}
	return NewResource(g), nil
}

// ID identifies the decoder and the settings that change its output.
func (d *Decoder) ID() string {
	if d.conf.MaxFrames > 0 {
		return fmt.Sprintf("%s.max%d", id, d.conf.MaxFrames)
	}
	return id
}

// Resource is a decoded GIF.
type Resource struct {
	g        *gif.GIF
	size     int
	recycled atomic.Bool
}

func NewResource(g *gif.GIF) *Resource {
	var size int
	for _, frame := range g.Image {
		size += len(frame.Pix) + 4*len(frame.Palette)
	}
	return &Resource{g: g, size: size}
}

// GIF returns the decoded GIF. It is nil once the resource was recycled.
func (r *Resource) GIF() *gif.GIF {
	if r.recycled.Load() {
		return nil
	}
	return r.g
}

func (r *Resource) FrameCount() int {
	if r.recycled.Load() {
		return 0
	}
	return len(r.g.Image)
}

// Size is the number of bytes held by the frame pixels and palettes.
func (r *Resource) Size() int { return r.size }

// Recycle drops the frames. It panics when called twice.
func (r *Resource) Recycle() {
	if !r.recycled.CompareAndSwap(false, true) {
		panic("gifdec: resource recycled twice")
	}
	r.g.Image = nil
	r.g.Delay = nil
	r.g.Disposal = nil
}
