package balance

import (
	"testing"
	"time"
)

func TestChunksCoverInterval(t *testing.T) {
	limit := int64(1) << 26
	lb := New(0, limit, 4)

	var pos int64
	for {
		c, ok := lb.NextChunk(0)
		if !ok {
			break
		}
		if c.Low != pos {
			t.Fatalf("chunk starts at %d, want %d", c.Low, pos)
		}
		if c.High <= c.Low || c.High > limit {
			t.Fatalf("bad chunk [%d, %d)", c.Low, c.High)
		}
		if c.SegmentSize%128 != 0 {
			t.Fatalf("segment size %d not a multiple of 128", c.SegmentSize)
		}
		pos = c.High
	}
	if pos != limit {
		t.Fatalf("chunks end at %d, want %d", pos, limit)
	}
}

func TestChunksResumeFromLow(t *testing.T) {
	lb := New(1<<24, 1<<25, 2)
	c, ok := lb.NextChunk(0)
	if !ok || c.Low != 1<<24 {
		t.Fatalf("first chunk starts at %d, want %d", c.Low, int64(1)<<24)
	}
}

func TestGrowOnFastChunks(t *testing.T) {
	lb := New(0, 1<<40, 1)

	first, _ := lb.NextChunk(0)
	second, _ := lb.NextChunk(time.Second)
	if second.Segments <= first.Segments {
		t.Fatalf("fast chunk did not grow: %d -> %d segments",
			first.Segments, second.Segments)
	}

	// Once the segment cap is reached, the segment size grows instead.
	var c Chunk
	for i := 0; i < 10; i++ {
		c, _ = lb.NextChunk(time.Second)
	}
	if c.Segments != maxSegmentsPerChunk {
		t.Fatalf("segments = %d, want cap %d", c.Segments, maxSegmentsPerChunk)
	}
	grown, _ := lb.NextChunk(time.Second)
	if grown.SegmentSize <= c.SegmentSize {
		t.Fatalf("segment size did not grow past the segment cap")
	}
}

func TestShrinkOnSlowChunks(t *testing.T) {
	lb := New(0, 1<<40, 1)
	lb.SetGeometry(1<<26, 8)

	c, _ := lb.NextChunk(2 * time.Minute)
	if c.SegmentSize >= 1<<26 {
		t.Fatalf("slow chunk did not shrink: segment size %d", c.SegmentSize)
	}

	// Shrinking floors at the minimum segment size, then reduces segments.
	for i := 0; i < 20; i++ {
		c, _ = lb.NextChunk(2 * time.Minute)
	}
	if c.SegmentSize != minSegmentSize {
		t.Fatalf("segment size = %d, want floor %d", c.SegmentSize, minSegmentSize)
	}
	if c.Segments != 1 {
		t.Fatalf("segments = %d, want 1", c.Segments)
	}
}

func TestNeutralElapsedKeepsGeometry(t *testing.T) {
	lb := New(0, 1<<40, 2)
	first, _ := lb.NextChunk(0)
	second, _ := lb.NextChunk(30 * time.Second)
	if second.Segments != first.Segments || second.SegmentSize != first.SegmentSize {
		t.Fatalf("geometry changed on in-band elapsed time")
	}
}

func TestP2CoverAndResize(t *testing.T) {
	z := int64(1) << 28
	p := NewP2(0, z, 4)

	lo, hi, ok := p.Next(0)
	if !ok || lo != 0 {
		t.Fatalf("first interval [%d, %d)", lo, hi)
	}
	firstDist := hi - lo

	_, hi2, _ := p.Next(time.Second)
	pos := hi2
	for {
		var ok bool
		lo, hi, ok = p.Next(30 * time.Second)
		if !ok {
			break
		}
		if lo != pos {
			t.Fatalf("gap: interval starts at %d, want %d", lo, pos)
		}
		pos = hi
	}
	if pos != z {
		t.Fatalf("intervals end at %d, want %d", pos, z)
	}
	if firstDist%128 != 0 {
		t.Fatalf("interval width %d not a multiple of 128", firstDist)
	}
}

func TestP2DistBounds(t *testing.T) {
	p := NewP2(0, 1<<40, 2)

	for i := 0; i < 30; i++ {
		p.Next(time.Second)
	}
	if d := p.Dist(); d > p.maxDist {
		t.Fatalf("dist %d exceeds per-thread share %d", d, p.maxDist)
	}

	for i := 0; i < 30; i++ {
		p.Next(2 * time.Minute)
	}
	if d := p.Dist(); d < minSegmentSize {
		t.Fatalf("dist %d below floor %d", d, minSegmentSize)
	}
}
