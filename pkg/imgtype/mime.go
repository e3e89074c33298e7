package imgtype

import (
	"io"

	"github.com/gabriel-vasile/mimetype"
	filetype "gopkg.in/h2non/filetype.v1"
	"gopkg.in/h2non/filetype.v1/matchers"

	"github.com/blacktop/imgsniff/internal/magic"
)

var mimeTypes = map[string]ImageType{
	"image/gif":  GIF,
	"image/jpeg": JPEG,
	"image/png":  PNG,
	"image/webp": WebP,
	"image/bmp":  BMP,
}

// MIMEParser classifies the stream prefix with github.com/gabriel-vasile/mimetype.
type MIMEParser struct{}

func NewMIMEParser() *MIMEParser { return &MIMEParser{} }

func (MIMEParser) Parse(r io.Reader) (ImageType, error) {
	prefix, err := readPrefix(r)
	if err != nil {
		return Unknown, err
	}
	for m := mimetype.Detect(prefix); m != nil; m = m.Parent() {
		if t, ok := mimeTypes[m.String()]; ok {
			return refine(t, prefix), nil
		}
	}
	if magic.IsQOI(prefix) {
		return QOI, nil
	}
	return Unknown, nil
}

// FileTypeParser classifies the stream prefix with gopkg.in/h2non/filetype.v1.
type FileTypeParser struct{}

func NewFileTypeParser() *FileTypeParser { return &FileTypeParser{} }

func (FileTypeParser) Parse(r io.Reader) (ImageType, error) {
	prefix, err := readPrefix(r)
	if err != nil {
		return Unknown, err
	}
	kind, _ := filetype.Match(prefix)
	switch kind {
	case matchers.TypeGif:
		return GIF, nil
	case matchers.TypeJpeg:
		return JPEG, nil
	case matchers.TypePng:
		return refine(PNG, prefix), nil
	case matchers.TypeWebp:
		return WebP, nil
	case matchers.TypeBmp:
		return BMP, nil
	}
	if magic.IsQOI(prefix) {
		return QOI, nil
	}
	return Unknown, nil
}

// refine adds what MIME detection cannot tell, i.e. PNG transparency.
func refine(t ImageType, prefix []byte) ImageType {
	if t == PNG && magic.PNGHasAlpha(prefix) {
		return PNGA
	}
	return t
}
