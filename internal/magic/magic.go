package magic

import (
	"bytes"
	"encoding/binary"
	"io"
)

// HeaderSize is the number of leading bytes needed to tell every known signature apart
const HeaderSize = 32

type Magic uint32

const (
	MagicGIF  Magic = 0x474946   // 'GIF' (24-bit)
	MagicJPEG Magic = 0xffd8     // SOI (16-bit)
	MagicPNG  Magic = 0x89504e47 // '\x89PNG'
	MagicRIFF Magic = 0x52494646 // 'RIFF'
	MagicWEBP Magic = 0x57454250 // 'WEBP'
	MagicBMP  Magic = 0x424d     // 'BM' (16-bit)
	MagicQOI  Magic = 0x716f6966 // 'qoif'
	MagicZstd Magic = 0xfd2fb528 // little-endian frame magic
)

const (
	// offset of the IHDR colour type byte in a PNG stream
	pngColorTypeOffset = 25
	// colour types >= 3 (palette, gray+alpha, rgba) may carry transparency
	pngColorTypeAlpha = 3
)

var (
	gif87a = []byte("GIF87a")
	gif89a = []byte("GIF89a")
)

func be16(hdr []byte) Magic { return Magic(binary.BigEndian.Uint16(hdr)) }
func be32(hdr []byte) Magic { return Magic(binary.BigEndian.Uint32(hdr)) }

// IsGIF reports whether hdr starts with a GIF87a or GIF89a signature.
func IsGIF(hdr []byte) bool {
	return bytes.HasPrefix(hdr, gif87a) || bytes.HasPrefix(hdr, gif89a)
}

func IsJPEG(hdr []byte) bool {
	return len(hdr) >= 3 && be16(hdr) == MagicJPEG && hdr[2] == 0xff
}

func IsPNG(hdr []byte) bool {
	return len(hdr) >= 8 && be32(hdr) == MagicPNG && bytes.Equal(hdr[4:8], []byte{0x0d, 0x0a, 0x1a, 0x0a})
}

// PNGHasAlpha reports whether the IHDR colour type of a PNG header allows transparency.
// The header must contain at least the first 26 bytes of the stream.
func PNGHasAlpha(hdr []byte) bool {
	return len(hdr) > pngColorTypeOffset && hdr[pngColorTypeOffset] >= pngColorTypeAlpha
}

func IsWebP(hdr []byte) bool {
	return len(hdr) >= 12 && be32(hdr) == MagicRIFF && be32(hdr[8:]) == MagicWEBP
}

func IsBMP(hdr []byte) bool {
	return len(hdr) >= 2 && be16(hdr) == MagicBMP
}

func IsQOI(hdr []byte) bool {
	return len(hdr) >= 4 && be32(hdr) == MagicQOI
}

func IsZstd(hdr []byte) bool {
	return len(hdr) >= 4 && Magic(binary.LittleEndian.Uint32(hdr)) == MagicZstd
}

// ReadHeader reads up to HeaderSize bytes from r. A short read is not an error.
func ReadHeader(r io.Reader) ([]byte, error) {
	hdr := make([]byte, HeaderSize)
	n, err := io.ReadFull(r, hdr)
	switch err {
	case nil, io.EOF, io.ErrUnexpectedEOF:
		return hdr[:n], nil
	default:
		return nil, err
	}
}
