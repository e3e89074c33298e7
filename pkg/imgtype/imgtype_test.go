package imgtype

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"testing"
	"testing/iotest"

	"golang.org/x/image/bmp"
)

func encoded(t *testing.T, enc func(io.Writer, image.Image) error, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := enc(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	return buf.Bytes()
}

func fixtures(t *testing.T) map[string][]byte {
	opaque := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range opaque.Pix {
		opaque.Pix[i] = 0xff
	}
	translucent := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	translucent.SetNRGBA(1, 1, color.NRGBA{R: 0xff, A: 0x80})
	paletted := image.NewPaletted(image.Rect(0, 0, 4, 4), color.Palette{color.Black, color.White})

	return map[string][]byte{
		"gif": encoded(t, func(w io.Writer, m image.Image) error { return gif.Encode(w, m, nil) }, paletted),
		"jpeg": encoded(t, func(w io.Writer, m image.Image) error {
			return jpeg.Encode(w, m, nil)
		}, opaque),
		"png":  encoded(t, png.Encode, image.NewGray(image.Rect(0, 0, 4, 4))),
		"pnga": encoded(t, png.Encode, translucent),
		"bmp":  encoded(t, bmp.Encode, opaque),
		"webp": append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 \x18\x00\x00\x00"), make([]byte, 24)...),
		"qoi":  append([]byte("qoif\x00\x00\x00\x04\x00\x00\x00\x04\x04\x00"), make([]byte, 16)...),
		"text": []byte("this is not an image at all"),
		"zero": {},
	}
}

func TestParsers(t *testing.T) {
	data := fixtures(t)
	tests := []struct {
		name    string
		fixture string
		want    ImageType
	}{
		{name: "gif", fixture: "gif", want: GIF},
		{name: "jpeg", fixture: "jpeg", want: JPEG},
		{name: "png", fixture: "png", want: PNG},
		{name: "png with alpha", fixture: "pnga", want: PNGA},
		{name: "bmp", fixture: "bmp", want: BMP},
		{name: "webp", fixture: "webp", want: WebP},
		{name: "qoi", fixture: "qoi", want: QOI},
		{name: "text", fixture: "text", want: Unknown},
		{name: "zero length", fixture: "zero", want: Unknown},
	}
	for _, name := range ParserNames() {
		p, err := ParserFor(name)
		if err != nil {
			t.Fatalf("ParserFor(%q) error = %v", name, err)
		}
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got, err := p.Parse(bytes.NewReader(data[tt.fixture]))
				if err != nil {
					t.Fatalf("Parse() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("Parse() = %v, want %v", got, tt.want)
				}
			})
		}
	}
}

func TestParsersReadBounded(t *testing.T) {
	big := make([]byte, 3*MarkLimitBytes)
	copy(big, "GIF89a")
	for _, name := range ParserNames() {
		t.Run(name, func(t *testing.T) {
			p, _ := ParserFor(name)
			r := bytes.NewReader(big)
			if _, err := p.Parse(r); err != nil {
				t.Fatal(err)
			}
			if read := len(big) - r.Len(); read > MarkLimitBytes {
				t.Errorf("Parse() read %d bytes, limit is %d", read, MarkLimitBytes)
			}
		})
	}
}

func TestParsersPropagateReadError(t *testing.T) {
	errBoom := errors.New("boom")
	for _, name := range ParserNames() {
		t.Run(name, func(t *testing.T) {
			p, _ := ParserFor(name)
			if _, err := p.Parse(iotest.ErrReader(errBoom)); !errors.Is(err, errBoom) {
				t.Errorf("Parse() error = %v, want %v", err, errBoom)
			}
		})
	}
}

func TestParserFor(t *testing.T) {
	if _, err := ParserFor("exif"); !errors.Is(err, ErrUnknownParser) {
		t.Errorf("ParserFor() error = %v, want %v", err, ErrUnknownParser)
	}
}

func TestImageTypeString(t *testing.T) {
	tests := []struct {
		t    ImageType
		want string
	}{
		{GIF, "gif"},
		{PNGA, "png (alpha)"},
		{Unknown, "unknown"},
		{ImageType(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("ImageType(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}
