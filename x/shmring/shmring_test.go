package shmring

import (
	"testing"
)

func TestOrderAcrossWrapWithPartialProgress(t *testing.T) {
	r := New(64)

	const N = 2000
	src := make([]byte, N)
	for i := range src {
		src[i] = byte(i)
	}

	p := src
	dst := make([]byte, N)
	off := 0

	for off < N {
		// producer accepts at most 7 bytes per step
		if len(p) > 0 {
			step := len(p)
			if step > 7 {
				step = 7
			}
			p = p[r.WriteFrom(p[:step]):]
		}

		var tmp [17]byte
		n := r.ReadInto(tmp[:])
		copy(dst[off:], tmp[:n])
		off += n
	}

	for i := 0; i < N; i++ {
		if dst[i] != src[i] {
			t.Fatalf("mismatch at %d: got=%d want=%d", i, dst[i], src[i])
		}
	}
}

func TestReadableWritableEdges(t *testing.T) {
	r := New(8)
	select {
	case <-r.Readable():
		t.Fatal("unexpected Readable on empty ring")
	default:
	}
	if n := r.WriteFrom([]byte{1, 2, 3}); n != 3 {
		t.Fatalf("write 3 -> %d", n)
	}
	select {
	case <-r.Readable():
	default:
		t.Fatal("expected Readable")
	}
	select {
	case <-r.Readable():
		t.Fatal("unexpected extra Readable")
	default:
	}

	if n := r.WriteFrom(make([]byte, 16)); n != 5 {
		t.Fatalf("fill -> %d want 5", n)
	}
	if r.Space() != 0 {
		t.Fatalf("space=%d", r.Space())
	}
	r.ReadInto(make([]byte, 1))
	select {
	case <-r.Writable():
	default:
		t.Fatal("expected Writable after leaving full")
	}
}

func TestReset(t *testing.T) {
	r := New(4)
	r.WriteFrom([]byte{1, 2, 3})
	r.Reset()
	if r.Available() != 0 || r.Space() != 4 {
		t.Fatalf("avail=%d space=%d", r.Available(), r.Space())
	}
}
