// Package source opens image inputs for decoding, transparently decompressing them.
package source

import (
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/apex/log"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	filetype "gopkg.in/h2non/filetype.v1"
	"gopkg.in/h2non/filetype.v1/matchers"

	"github.com/blacktop/imgsniff/internal/magic"
	"github.com/blacktop/imgsniff/pkg/gifbitmap"
)

// sniffSize covers the longest signature filetype looks at
const sniffSize = 262

// Stdin is the path that reads from standard input.
const Stdin = "-"

// ErrUnsupportedCompression is returned for containers that hold more than one file.
var ErrUnsupportedCompression = errors.New("unsupported compression")

type Compression string

const (
	None  Compression = "none"
	Gzip  Compression = "gzip"
	Bzip2 Compression = "bzip2"
	Xz    Compression = "xz"
	Zstd  Compression = "zstd"
)

// Input is an opened image input.
type Input struct {
	Name        string
	Compression Compression
	// Size is the size of the (possibly compressed) file, 0 for stdin.
	Size int64

	src     gifbitmap.Source
	closers []func() error
}

// Source returns the decode source. Only uncompressed files carry a file handle since a
// compressed file cannot be decoded directly.
func (i *Input) Source() gifbitmap.Source { return i.src }

// Close closes the decompressor and the file.
func (i *Input) Close() error {
	var errs []error
	for j := len(i.closers) - 1; j >= 0; j-- {
		if err := i.closers[j](); err != nil {
			errs = append(errs, err)
		}
	}
	i.closers = nil
	return errors.Join(errs...)
}

// Open opens the image at path, or standard input if path is Stdin.
func Open(path string) (*Input, error) {
	if path == Stdin {
		return &Input{
			Name:        "stdin",
			Compression: None,
			src:         gifbitmap.Source{Stream: os.Stdin},
		}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	in, err := open(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return in, nil
}

func open(f *os.File) (*Input, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", f.Name(), err)
	}
	in := &Input{
		Name:    f.Name(),
		Size:    info.Size(),
		closers: []func() error{f.Close},
	}

	hdr := make([]byte, sniffSize)
	n, err := f.ReadAt(hdr, 0)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read header of %s: %w", f.Name(), err)
	}
	hdr = hdr[:n]

	in.Compression = detect(hdr)
	log.WithFields(log.Fields{
		"file":        f.Name(),
		"compression": in.Compression,
	}).Debug("Opening image")

	switch in.Compression {
	case None:
		in.src = gifbitmap.Source{Stream: f, File: f}
	case Gzip:
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		in.closers = append(in.closers, zr.Close)
		in.src = gifbitmap.Source{Stream: zr}
	case Bzip2:
		in.src = gifbitmap.Source{Stream: bzip2.NewReader(f)}
	case Xz:
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz reader: %w", err)
		}
		in.src = gifbitmap.Source{Stream: xr}
	case Zstd:
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		in.closers = append(in.closers, func() error {
			zr.Close()
			return nil
		})
		in.src = gifbitmap.Source{Stream: zr}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCompression, in.Compression)
	}
	return in, nil
}

func detect(hdr []byte) Compression {
	if magic.IsZstd(hdr) {
		return Zstd
	}
	kind, _ := filetype.Match(hdr)
	switch kind {
	case matchers.TypeGz:
		return Gzip
	case matchers.TypeBz2:
		return Bzip2
	case matchers.TypeXz:
		return Xz
	case matchers.TypeZip, matchers.TypeTar, matchers.Type7z, matchers.TypeRar:
		return Compression(kind.Extension)
	default:
		return None
	}
}
