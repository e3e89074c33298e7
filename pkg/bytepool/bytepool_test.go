package bytepool

import (
	"sync"
	"testing"
)

func TestPoolReuse(t *testing.T) {
	p := New(1024, 4096)
	b := p.Get()
	if len(b) != 1024 {
		t.Fatalf("Get() len = %d, want 1024", len(b))
	}
	if !p.Put(b) {
		t.Fatal("Put() dropped a pool sized buffer")
	}
	if got := p.Get(); &got[0] != &b[0] {
		t.Error("Get() did not reuse the released buffer")
	}
	if got, want := p.Stats(), (Stats{Gets: 2, Puts: 1, Hits: 1}); got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestPoolPut(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want bool
	}{
		{name: "pool sized", buf: make([]byte, 1024), want: true},
		{name: "resliced", buf: make([]byte, 1024)[:10], want: true},
		{name: "foreign size", buf: make([]byte, 512), want: false},
		{name: "nil", buf: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(1024, 4096).Put(tt.buf); got != tt.want {
				t.Errorf("Put() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPoolBounded(t *testing.T) {
	p := New(1024, 2048)
	bufs := [][]byte{p.Get(), p.Get(), p.Get()}
	var kept int
	for _, b := range bufs {
		if p.Put(b) {
			kept++
		}
	}
	if kept != 2 {
		t.Errorf("kept %d buffers, want 2", kept)
	}
	if got := p.Stats().Pooled; got != 2 {
		t.Errorf("Stats().Pooled = %d, want 2", got)
	}
}

func TestPoolDefaults(t *testing.T) {
	p := New(0, 0)
	if p.BufferSize() != TempBytesSize {
		t.Errorf("BufferSize() = %d, want %d", p.BufferSize(), TempBytesSize)
	}
	if p.maxBufs != MaxSize/TempBytesSize {
		t.Errorf("maxBufs = %d, want %d", p.maxBufs, MaxSize/TempBytesSize)
	}
}

func TestPoolConcurrent(t *testing.T) {
	p := New(256, 256*8)
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(id byte) {
			defer wg.Done()
			for range 100 {
				b := p.Get()
				for j := range b {
					b[j] = id
				}
				for j := range b {
					if b[j] != id {
						t.Errorf("buffer shared between goroutines")
						return
					}
				}
				p.Put(b)
			}
		}(byte(i))
	}
	wg.Wait()
	if s := p.Stats(); s.Gets != s.Puts {
		t.Errorf("Stats() gets = %d, puts = %d", s.Gets, s.Puts)
	}
}
