// Package imgtype classifies image streams by their leading bytes.
package imgtype

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/blacktop/imgsniff/internal/magic"
)

// MarkLimitBytes is the most a Parser may read before the stream has to be rewound.
// Well formed headers need a few dozen bytes; the rest is headroom for containers that
// put metadata before the signature.
const MarkLimitBytes = 2048

// ErrUnknownParser is returned by ParserFor for an unregistered parser name.
var ErrUnknownParser = errors.New("unknown image type parser")

type ImageType uint8

const (
	Unknown ImageType = iota
	GIF
	JPEG
	PNG
	PNGA // PNG with an alpha capable colour type
	WebP
	BMP
	QOI
)

func (t ImageType) String() string {
	switch t {
	case GIF:
		return "gif"
	case JPEG:
		return "jpeg"
	case PNG:
		return "png"
	case PNGA:
		return "png (alpha)"
	case WebP:
		return "webp"
	case BMP:
		return "bmp"
	case QOI:
		return "qoi"
	default:
		return "unknown"
	}
}

// HasAlpha reports whether images of this type may be transparent.
func (t ImageType) HasAlpha() bool {
	switch t {
	case GIF, PNGA, WebP, QOI:
		return true
	default:
		return false
	}
}

// Parser reads a bounded prefix of r and reports the image type. Parsers never read
// more than MarkLimitBytes and do not rewind r; the caller does.
type Parser interface {
	Parse(r io.Reader) (ImageType, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(r io.Reader) (ImageType, error)

func (f ParserFunc) Parse(r io.Reader) (ImageType, error) { return f(r) }

var parsers = map[string]func() Parser{
	"header":   func() Parser { return NewHeaderParser() },
	"mime":     func() Parser { return NewMIMEParser() },
	"filetype": func() Parser { return NewFileTypeParser() },
}

// ParserNames returns the names accepted by ParserFor.
func ParserNames() []string {
	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParserFor returns a new Parser by name.
func ParserFor(name string) (Parser, error) {
	newParser, ok := parsers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownParser, name, ParserNames())
	}
	return newParser(), nil
}

// HeaderParser matches the first few bytes against known signatures.
type HeaderParser struct{}

func NewHeaderParser() *HeaderParser { return &HeaderParser{} }

func (HeaderParser) Parse(r io.Reader) (ImageType, error) {
	hdr, err := magic.ReadHeader(r)
	if err != nil {
		return Unknown, fmt.Errorf("failed to read image header: %w", err)
	}
	return classify(hdr), nil
}

func classify(hdr []byte) ImageType {
	switch {
	case magic.IsJPEG(hdr):
		return JPEG
	case magic.IsPNG(hdr):
		if magic.PNGHasAlpha(hdr) {
			return PNGA
		}
		return PNG
	case magic.IsGIF(hdr):
		return GIF
	case magic.IsWebP(hdr):
		return WebP
	case magic.IsQOI(hdr):
		return QOI
	case magic.IsBMP(hdr):
		return BMP
	default:
		return Unknown
	}
}

// readPrefix reads up to MarkLimitBytes from r. A short read is not an error.
func readPrefix(r io.Reader) ([]byte, error) {
	buf := make([]byte, MarkLimitBytes)
	n, err := io.ReadFull(r, buf)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
		return buf[:n], nil
	default:
		return nil, fmt.Errorf("failed to read image prefix: %w", err)
	}
}
