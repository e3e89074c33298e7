package buffer

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func testData(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 7)
	}
	return b
}

func TestReaderMarkReset(t *testing.T) {
	type args struct {
		size    int
		bufSize int
		limit   int
		consume int
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "within buffer",
			args: args{size: 4096, bufSize: 64, limit: 32, consume: 16},
		},
		{
			name: "exactly the limit",
			args: args{size: 4096, bufSize: 64, limit: 64, consume: 64},
		},
		{
			name: "grows past the buffer",
			args: args{size: 4096, bufSize: 64, limit: 2048, consume: 2000},
		},
		{
			name: "unbounded limit over whole stream",
			args: args{size: 4096, bufSize: 64, limit: int(^uint(0) >> 1), consume: 4096},
		},
		{
			name:    "limit exceeded",
			args:    args{size: 4096, bufSize: 64, limit: 16, consume: 200},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testData(tt.args.size)
			r := NewReader(iotest.HalfReader(bytes.NewReader(data)), make([]byte, tt.args.bufSize))
			r.Mark(tt.args.limit)
			if _, err := io.ReadFull(r, make([]byte, tt.args.consume)); err != nil {
				t.Fatalf("ReadFull() error = %v", err)
			}
			err := r.Reset()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Reset() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMark) {
					t.Errorf("Reset() error = %v, want %v", err, ErrInvalidMark)
				}
				return
			}
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("ReadAll() after Reset returned %d bytes, want the original %d", len(got), len(data))
			}
		})
	}
}

func TestReaderUsesSuppliedBuffer(t *testing.T) {
	buf := make([]byte, 128)
	data := testData(100)
	r := NewReader(bytes.NewReader(data), buf)
	r.Mark(2048)
	if _, err := io.ReadFull(r, make([]byte, 10)); err != nil {
		t.Fatal(err)
	}
	if &r.buf[0] != &buf[0] {
		t.Error("Reader replaced the supplied buffer although the data fit")
	}
	if !bytes.Equal(buf[:10], data[:10]) {
		t.Error("supplied buffer does not back the read data")
	}
}

func TestReaderNoMark(t *testing.T) {
	if err := NewReader(bytes.NewReader(nil), nil).Reset(); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("Reset() without Mark error = %v, want %v", err, ErrInvalidMark)
	}
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader(bytes.NewReader(nil), make([]byte, 16))
	r.Mark(16)
	if n, err := r.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Errorf("Read() = %d, %v, want 0, EOF", n, err)
	}
	if err := r.Reset(); err != nil {
		t.Errorf("Reset() error = %v", err)
	}
}

func TestReaderReadByte(t *testing.T) {
	data := []byte("GIF89a")
	r := NewReader(iotest.OneByteReader(bytes.NewReader(data)), make([]byte, 2))
	r.Mark(16)
	var got []byte
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, c)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadByte() = %q, want %q", got, data)
	}
	if err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	if c, _ := r.ReadByte(); c != 'G' {
		t.Errorf("ReadByte() after Reset = %q, want 'G'", c)
	}
}

func TestReaderPropagatesError(t *testing.T) {
	errBoom := errors.New("boom")
	r := NewReader(iotest.ErrReader(errBoom), make([]byte, 16))
	if _, err := r.Read(make([]byte, 4)); !errors.Is(err, errBoom) {
		t.Errorf("Read() error = %v, want %v", err, errBoom)
	}
}

func TestTrackingReader(t *testing.T) {
	errBoom := errors.New("boom")
	tests := []struct {
		name string
		rd   io.Reader
		want error
	}{
		{
			name: "eof is not tracked",
			rd:   bytes.NewReader([]byte("abc")),
			want: nil,
		},
		{
			name: "transport error",
			rd:   io.MultiReader(bytes.NewReader([]byte("abc")), iotest.ErrReader(errBoom)),
			want: errBoom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTrackingReader(tt.rd)
			io.ReadAll(tr)
			if got := tr.Err(); !errors.Is(got, tt.want) || (got == nil) != (tt.want == nil) {
				t.Errorf("Err() = %v, want %v", got, tt.want)
			}
		})
	}
}
